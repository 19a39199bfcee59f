package unavailability

import (
	"context"
	"sync"
	"testing"
	"time"

	"reservo/database/repository"
	memoryRepo "reservo/database/repository/memory"
	"reservo/models"
	"reservo/services/availability"
	"reservo/services/lock"
	"reservo/utils"
)

type harness struct {
	store  *memoryRepo.Store
	tenant *repository.Tenant
	engine *availability.Engine
	svc    *Service
}

func newHarness(t *testing.T, policy Policy) *harness {
	t.Helper()
	store := memoryRepo.NewStore()
	store.PutCompany(models.CompanySettings{ID: "c", Timezone: "UTC"})
	store.PutUser(models.User{ID: "p1", Name: "Ada", Role: models.RoleProfessional, IsActive: true})
	store.PutSchedule(models.WeeklySchedule{ID: "w1", ProfessionalID: "p1", Days: models.DefaultWeek(), IsActive: true})

	engine := availability.NewEngine(availability.DefaultPolicy(), nil)
	engine.SetClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	svc := NewService(engine, lock.NewLocalLocker(time.Second), policy, nil)
	return &harness{store: store, tenant: store.Tenant("acme"), engine: engine, svc: svc}
}

func at(month time.Month, day, h, m int) time.Time {
	return time.Date(2030, month, day, h, m, 0, 0, time.UTC)
}

func block(typ models.UnavailableType, start, end time.Time) CreateRequest {
	return CreateRequest{ProfessionalID: "p1", Type: typ, StartDate: start, EndDate: end, Reason: "errand"}
}

func weekly(start time.Time, length time.Duration) CreateRequest {
	req := block(models.UnavailableBreak, start, start.Add(length))
	req.IsRecurring = true
	req.RecurrencePattern = &models.RecurrencePattern{Frequency: models.FrequencyWeekly, Interval: 1}
	return req
}

func TestCreateBlockRemovesSlots(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	b, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(1, 7, 10, 0), at(1, 7, 12, 0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == "" {
		t.Fatal("expected an id")
	}

	pa, err := h.engine.GetAvailability(ctx, h.tenant, "p1", "2030-01-07", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range pa.Slots {
		blocked := s.StartTime == "10:00" || s.StartTime == "11:00"
		if s.IsAvailable == blocked {
			t.Fatalf("slot %s available=%v", s.StartTime, s.IsAvailable)
		}
	}
}

func TestCreateBlockRules(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	past := time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		req   CreateRequest
		check func(error) bool
	}{
		{"inverted", block(models.UnavailablePersonal, at(1, 7, 12, 0), at(1, 7, 10, 0)), utils.IsValidation},
		{"unknown type", block("nap", at(1, 7, 10, 0), at(1, 7, 12, 0)), utils.IsValidation},
		{"in the past", block(models.UnavailablePersonal, at(1, 7, 10, 0).AddDate(0, 0, -14), at(1, 7, 12, 0).AddDate(0, 0, -14)), utils.IsValidation},
		{"break too long", block(models.UnavailableBreak, at(1, 7, 9, 0), at(1, 7, 14, 0)), utils.IsPolicyViolation},
		{"vacation too short", block(models.UnavailableVacation, at(1, 7, 9, 0), at(1, 7, 11, 0)), utils.IsPolicyViolation},
		{"before business hours", block(models.UnavailablePersonal, at(1, 7, 5, 0), at(1, 7, 7, 0)), utils.IsPolicyViolation},
		{"after business hours", block(models.UnavailablePersonal, at(1, 7, 21, 0), at(1, 7, 22, 30)), utils.IsPolicyViolation},
		{"unknown professional", CreateRequest{ProfessionalID: "ghost", Type: models.UnavailablePersonal, StartDate: at(1, 7, 10, 0), EndDate: at(1, 7, 12, 0)}, utils.IsNotFound},
	}
	for _, tc := range cases {
		if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, tc.req); !tc.check(err) {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}

	recurrence := []struct {
		name    string
		pattern *models.RecurrencePattern
	}{
		{"missing pattern", nil},
		{"zero interval", &models.RecurrencePattern{Frequency: models.FrequencyWeekly, Interval: 0}},
		{"interval above cap", &models.RecurrencePattern{Frequency: models.FrequencyWeekly, Interval: 53}},
		{"unknown frequency", &models.RecurrencePattern{Frequency: "yearly", Interval: 1}},
		{"end in the past", &models.RecurrencePattern{Frequency: models.FrequencyDaily, Interval: 1, EndDate: &past}},
	}
	for _, tc := range recurrence {
		req := block(models.UnavailableBreak, at(1, 7, 12, 0), at(1, 7, 12, 30))
		req.IsRecurring = true
		req.RecurrencePattern = tc.pattern
		if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, req); !utils.IsPolicyViolation(err) {
			t.Fatalf("%s: expected policy violation, got %v", tc.name, err)
		}
	}
}

func TestOvernightBlockSkipsBusinessHours(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	if _, err := h.svc.ValidateAndCreateUnavailableBlock(context.Background(), h.tenant,
		block(models.UnavailableSickLeave, at(1, 7, 20, 0), at(1, 8, 8, 0))); err != nil {
		t.Fatalf("overnight block should be accepted: %v", err)
	}
}

func TestCreateBlockConflictsWithBooking(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	h.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: at(1, 7, 11, 0), EndDate: at(1, 7, 12, 0), Status: models.BookingConfirmed})

	_, err := h.svc.ValidateAndCreateUnavailableBlock(context.Background(), h.tenant, block(models.UnavailablePersonal, at(1, 7, 10, 0), at(1, 7, 12, 0)))
	if !utils.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if refs := err.(*utils.ConflictError).Conflicts; len(refs) != 1 || refs[0].ID != "b1" {
		t.Fatalf("unexpected conflicts %+v", refs)
	}
}

func TestRecurringBlockChecksHorizon(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, DefaultPolicy())
	h.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: at(1, 21, 12, 0), EndDate: at(1, 21, 13, 0), Status: models.BookingPending})
	if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, weekly(at(1, 7, 12, 0), 30*time.Minute)); !utils.IsConflict(err) {
		t.Fatalf("third occurrence collides with b1, got %v", err)
	}

	h = newHarness(t, DefaultPolicy())
	h.store.PutBooking(models.Booking{ID: "b2", ProfessionalID: "p1", StartDate: at(6, 3, 12, 0), EndDate: at(6, 3, 13, 0), Status: models.BookingPending})
	if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, weekly(at(1, 7, 12, 0), 30*time.Minute)); err != nil {
		t.Fatalf("bookings past the check horizon are not checked: %v", err)
	}
}

func TestMonthlyLimit(t *testing.T) {
	policy := DefaultPolicy()
	policy.MonthlyLimits[models.UnavailablePersonal] = 2
	h := newHarness(t, policy)
	ctx := context.Background()

	for _, day := range []int{7, 8} {
		if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(1, day, 10, 0), at(1, day, 12, 0))); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(1, 9, 10, 0), at(1, 9, 12, 0))); !utils.IsPolicyViolation(err) {
		t.Fatalf("expected monthly limit violation, got %v", err)
	}
	if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(2, 4, 10, 0), at(2, 4, 12, 0))); err != nil {
		t.Fatalf("a new month starts a new count: %v", err)
	}
}

func TestUpdateBlock(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	b, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, weekly(at(1, 7, 12, 0), 30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	h.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: at(1, 8, 15, 0), EndDate: at(1, 8, 16, 0), Status: models.BookingConfirmed})

	// Moving a few minutes overlaps only the block's own old position.
	start, end := at(1, 7, 12, 15), at(1, 7, 12, 45)
	if _, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{StartDate: &start, EndDate: &end}); err != nil {
		t.Fatalf("self overlap should be excluded: %v", err)
	}

	start, end = at(1, 8, 15, 0), at(1, 8, 15, 30)
	if _, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{StartDate: &start, EndDate: &end}); !utils.IsConflict(err) {
		t.Fatalf("expected conflict with b1, got %v", err)
	}

	// Metadata edits on a block that has already started are fine.
	h.engine.SetClock(func() time.Time { return at(1, 20, 0, 0) })
	reason := "lunch"
	off := false
	got, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{Reason: &reason})
	if err != nil {
		t.Fatal(err)
	}
	if got.Reason != reason || !got.IsRecurring {
		t.Fatalf("unexpected block %+v", got)
	}
	if _, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{IsRecurring: &off}); !utils.IsValidation(err) {
		t.Fatalf("changing timing of a past block should fail, got %v", err)
	}
}

func TestUpdateClearsPattern(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	b, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, weekly(at(1, 7, 12, 0), 30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	off := false
	got, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{IsRecurring: &off})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsRecurring || got.RecurrencePattern != nil {
		t.Fatalf("pattern should be cleared: %+v", got)
	}
}

func TestDeleteBlock(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	b, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(1, 7, 10, 0), at(1, 7, 12, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.svc.DeleteUnavailableBlock(ctx, h.tenant, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.GetUnavailableBlock(ctx, h.tenant, b.ID); !utils.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := h.svc.DeleteUnavailableBlock(ctx, h.tenant, b.ID); !utils.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListAndExpandBlocks(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	lunch, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, weekly(at(1, 7, 12, 0), 30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	errand, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(1, 9, 9, 0), at(1, 9, 10, 0)))
	if err != nil {
		t.Fatal(err)
	}

	listed, err := h.svc.ListUnavailableBlocks(ctx, h.tenant, "p1", "2030-01-10", "2030-01-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != lunch.ID {
		t.Fatalf("only the recurring template reaches into the window, got %+v", listed)
	}

	occs, err := h.svc.ExpandUnavailableBlocks(ctx, h.tenant, "p1", "2030-01-07", "2030-01-20")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		id    string
		start time.Time
	}{
		{lunch.ID, at(1, 7, 12, 0)},
		{errand.ID, at(1, 9, 9, 0)},
		{lunch.ID, at(1, 14, 12, 0)},
	}
	if len(occs) != len(want) {
		t.Fatalf("expected %d intervals, got %d", len(want), len(occs))
	}
	for i, w := range want {
		if occs[i].BlockID != w.id || !occs[i].StartDate.Equal(w.start) {
			t.Fatalf("interval %d = %s at %s", i, occs[i].BlockID, occs[i].StartDate)
		}
	}

	if _, err := h.svc.ExpandUnavailableBlocks(ctx, h.tenant, "p1", "2030-01-20", "2030-01-07"); !utils.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// pausingBlocks holds the first GetByID, after it has read, until resume
// is closed.
type pausingBlocks struct {
	repository.UnavailableRepository
	once    sync.Once
	entered chan struct{}
	resume  chan struct{}
}

func (r *pausingBlocks) GetByID(ctx context.Context, id string) (*models.UnavailableBlock, error) {
	b, err := r.UnavailableRepository.GetByID(ctx, id)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.resume
	}
	return b, err
}

func TestConcurrentBlockUpdatesKeepLatestTiming(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	b, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailablePersonal, at(1, 7, 10, 0), at(1, 7, 12, 0)))
	if err != nil {
		t.Fatal(err)
	}
	paused := &pausingBlocks{UnavailableRepository: h.tenant.Unavailable, entered: make(chan struct{}), resume: make(chan struct{})}
	h.tenant.Unavailable = paused

	done := make(chan error, 1)
	go func() {
		reason := "dentist"
		_, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{Reason: &reason})
		done <- err
	}()
	<-paused.entered

	start, end := at(1, 7, 14, 0), at(1, 7, 16, 0)
	if _, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{StartDate: &start, EndDate: &end}); err != nil {
		t.Fatalf("move block: %v", err)
	}
	close(paused.resume)
	if err := <-done; err != nil {
		t.Fatalf("reason update: %v", err)
	}

	got, err := h.svc.GetUnavailableBlock(ctx, h.tenant, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartDate.Equal(start) || !got.EndDate.Equal(end) || got.Reason != "dentist" {
		t.Fatalf("lost an update: %+v", got)
	}
}

func TestPatternRequiresRecurring(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	pattern := &models.RecurrencePattern{Frequency: models.FrequencyWeekly, Interval: 1}

	req := block(models.UnavailableBreak, at(1, 7, 12, 0), at(1, 7, 12, 30))
	req.RecurrencePattern = pattern
	if _, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, req); !utils.IsValidation(err) {
		t.Fatalf("create: expected validation error, got %v", err)
	}

	b, err := h.svc.ValidateAndCreateUnavailableBlock(ctx, h.tenant, block(models.UnavailableBreak, at(1, 7, 12, 0), at(1, 7, 12, 30)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{RecurrencePattern: pattern}); !utils.IsValidation(err) {
		t.Fatalf("pattern on a one-off block: expected validation error, got %v", err)
	}
	off := false
	if _, err := h.svc.UpdateUnavailableBlock(ctx, h.tenant, b.ID, UpdateRequest{IsRecurring: &off, RecurrencePattern: pattern}); !utils.IsValidation(err) {
		t.Fatalf("isRecurring=false with a pattern: expected validation error, got %v", err)
	}
}
