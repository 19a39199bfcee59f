package availability

import (
	"context"
	"reflect"
	"testing"
	"time"

	"reservo/database/repository"
	memoryRepo "reservo/database/repository/memory"
	"reservo/models"
	"reservo/utils"
)

type fixture struct {
	store  *memoryRepo.Store
	tenant *repository.Tenant
	engine *Engine
}

// newFixture seeds professional p1 on the default week with company hours
// 08:00-18:00 UTC and a 60 minute service s1. The clock reads 2030-01-01.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memoryRepo.NewStore()
	store.PutCompany(models.CompanySettings{ID: "c", Timezone: "UTC", WorkingHours: &models.TimeBlock{Start: "08:00", End: "18:00"}})
	store.PutUser(models.User{ID: "p1", Name: "Ada", Role: models.RoleProfessional, IsActive: true})
	store.PutService(models.Service{ID: "s1", Name: "Cut", Duration: 60, Price: 40, IsActive: true})
	store.PutSchedule(models.WeeklySchedule{ID: "w1", ProfessionalID: "p1", Days: models.DefaultWeek(), IsActive: true})

	engine := NewEngine(DefaultPolicy(), nil)
	engine.SetClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	return &fixture{store: store, tenant: store.Tenant("acme"), engine: engine}
}

func utcAt(day, h, m int) time.Time {
	return time.Date(2030, 1, day, h, m, 0, 0, time.UTC)
}

func availableCount(slots []models.AvailabilitySlot) int {
	n := 0
	for _, s := range slots {
		if s.IsAvailable {
			n++
		}
	}
	return n
}

func TestGetAvailabilityFlagsBookedSlot(t *testing.T) {
	f := newFixture(t)
	f.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: utcAt(7, 10, 0), EndDate: utcAt(7, 11, 0), Status: models.BookingConfirmed})

	pa, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "2030-01-07", "s1")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if len(pa.Slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(pa.Slots))
	}
	for _, s := range pa.Slots {
		want := s.StartTime != "10:00"
		if s.IsAvailable != want {
			t.Fatalf("slot %s available=%v, want %v", s.StartTime, s.IsAvailable, want)
		}
	}
}

func TestGetAvailabilityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: utcAt(7, 9, 0), EndDate: utcAt(7, 10, 0), Status: models.BookingPending})
	ctx := context.Background()

	first, err := f.engine.GetAvailability(ctx, f.tenant, "p1", "2030-01-07", "s1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.engine.GetAvailability(ctx, f.tenant, "p1", "2030-01-07", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls returned different results")
	}
}

func TestGetAvailabilityEmptyOnDayOff(t *testing.T) {
	f := newFixture(t)
	// 2030-01-06 is a Sunday.
	pa, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "2030-01-06", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if pa.Slots == nil || len(pa.Slots) != 0 {
		t.Fatalf("expected an empty, non-nil slot list, got %v", pa.Slots)
	}
}

func TestGetAvailabilityWithoutSchedule(t *testing.T) {
	f := newFixture(t)
	pa, err := f.engine.GetAvailability(context.Background(), f.tenant, "p2", "2030-01-07", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(pa.Slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(pa.Slots))
	}
}

func TestGetAvailabilityRecurringBreak(t *testing.T) {
	f := newFixture(t)
	f.store.PutBlock(models.UnavailableBlock{
		ID: "lunch", ProfessionalID: "p1", Type: models.UnavailableBreak,
		StartDate: time.Date(2029, 12, 31, 12, 0, 0, 0, time.UTC), EndDate: time.Date(2029, 12, 31, 12, 30, 0, 0, time.UTC),
		IsRecurring: true, RecurrencePattern: &models.RecurrencePattern{Frequency: models.FrequencyWeekly, Interval: 1},
	})

	pa, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "2030-01-07", "s1")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range pa.Slots {
		if s.StartTime == "12:00" && s.IsAvailable {
			t.Fatalf("12:00 slot should be blocked by the weekly break")
		}
	}
	if availableCount(pa.Slots) != 9 {
		t.Fatalf("expected 9 free slots, got %d", availableCount(pa.Slots))
	}
}

func TestGetAvailabilityBlockFromPreviousDay(t *testing.T) {
	f := newFixture(t)
	f.store.PutBlock(models.UnavailableBlock{
		ID: "night", ProfessionalID: "p1", Type: models.UnavailablePersonal,
		StartDate: utcAt(6, 22, 0), EndDate: utcAt(7, 9, 30),
	})

	pa, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "2030-01-07", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if pa.Slots[0].IsAvailable || pa.Slots[1].IsAvailable {
		t.Fatalf("08:00 and 09:00 should be blocked")
	}
	if !pa.Slots[2].IsAvailable {
		t.Fatalf("10:00 should be free")
	}
}

func TestResolveDurationPrefersOverride(t *testing.T) {
	f := newFixture(t)
	custom := 90
	f.store.PutProfessionalService(models.ProfessionalService{ID: "ps", ProfessionalID: "p1", ServiceID: "s1", CustomDuration: &custom, IsActive: true})

	pa, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "2030-01-07", "s1")
	if err != nil {
		t.Fatal(err)
	}
	// 600 minutes of company hours hold six 90 minute slots.
	if len(pa.Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(pa.Slots))
	}
	if pa.Slots[1].StartTime != "09:30" {
		t.Fatalf("second slot starts %s", pa.Slots[1].StartTime)
	}
}

func TestGetAvailabilityUnknownService(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "2030-01-07", "nope")
	if !utils.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetAvailabilityBadDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GetAvailability(context.Background(), f.tenant, "p1", "07/01/2030", "s1")
	if !utils.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetAvailabilityForMany(t *testing.T) {
	f := newFixture(t)
	f.store.PutSchedule(models.WeeklySchedule{ID: "w0", ProfessionalID: "a0", Days: models.DefaultWeek(), IsActive: true})

	got, err := f.engine.GetAvailabilityForMany(context.Background(), f.tenant, []string{"p1", "ghost", "a0", "p1"}, "2030-01-07", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 professionals, got %d", len(got))
	}
	if got[0].ProfessionalID != "a0" || got[1].ProfessionalID != "p1" {
		t.Fatalf("unexpected order: %s, %s", got[0].ProfessionalID, got[1].ProfessionalID)
	}
}

func TestGetAvailabilityRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	days, err := f.engine.GetAvailabilityRange(ctx, f.tenant, "p1", "2030-01-05", "2030-01-08", "s1")
	if err != nil {
		t.Fatal(err)
	}
	var dates []string
	for _, d := range days {
		dates = append(dates, d.Date)
	}
	want := []string{"2030-01-05", "2030-01-07", "2030-01-08"}
	if !reflect.DeepEqual(dates, want) {
		t.Fatalf("got %v, want %v", dates, want)
	}

	if _, err := f.engine.GetAvailabilityRange(ctx, f.tenant, "p1", "2030-01-08", "2030-01-05", "s1"); !utils.IsValidation(err) {
		t.Fatalf("expected validation error for reversed range, got %v", err)
	}
	if _, err := f.engine.GetAvailabilityRange(ctx, f.tenant, "p1", "2030-01-01", "2030-06-01", "s1"); !utils.IsValidation(err) {
		t.Fatalf("expected validation error for long range, got %v", err)
	}
}

func TestGetNextAvailableSlots(t *testing.T) {
	f := newFixture(t)
	f.engine.SetClock(func() time.Time { return utcAt(7, 10, 30) })
	f.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: utcAt(7, 12, 0), EndDate: utcAt(7, 13, 0), Status: models.BookingConfirmed})
	ctx := context.Background()

	slots, err := f.engine.GetNextAvailableSlots(ctx, f.tenant, "p1", "s1", 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"11:00", "13:00", "14:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i, s := range slots {
		if s.StartTime != want[i] || !s.IsAvailable {
			t.Fatalf("slot %d = %s (available=%v), want %s", i, s.StartTime, s.IsAvailable, want[i])
		}
	}

	all, err := f.engine.GetNextAvailableSlots(ctx, f.tenant, "p1", "s1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != DefaultNextSlotsLimit {
		t.Fatalf("expected default limit of %d, got %d", DefaultNextSlotsLimit, len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].StartDate.Before(all[i].StartDate) {
			t.Fatalf("slots out of order at %d", i)
		}
	}

	if _, err := f.engine.GetNextAvailableSlots(ctx, f.tenant, "p1", "s1", MaxNextSlotsLimit+1); !utils.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: utcAt(7, 10, 0), EndDate: utcAt(7, 11, 0), Status: models.BookingConfirmed})
	f.store.PutBooking(models.Booking{ID: "b2", ProfessionalID: "p1", StartDate: utcAt(7, 14, 0), EndDate: utcAt(7, 15, 0), Status: models.BookingCancelled})
	ctx := context.Background()

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"overlapping", utcAt(7, 10, 30), utcAt(7, 11, 30), false},
		{"touching before", utcAt(7, 9, 0), utcAt(7, 10, 0), true},
		{"touching after", utcAt(7, 11, 0), utcAt(7, 12, 0), true},
		{"cancelled booking", utcAt(7, 14, 0), utcAt(7, 15, 0), true},
	}
	for _, tc := range cases {
		got, err := f.engine.CheckAvailability(ctx, f.tenant, "p1", tc.start, tc.end)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := f.engine.CheckAvailability(ctx, f.tenant, "p1", utcAt(7, 11, 0), utcAt(7, 11, 0)); !utils.IsValidation(err) {
		t.Fatalf("expected validation error for empty interval, got %v", err)
	}
}

func TestValidateIntervalNamesConflicts(t *testing.T) {
	f := newFixture(t)
	f.store.PutBooking(models.Booking{ID: "b1", ProfessionalID: "p1", StartDate: utcAt(7, 10, 0), EndDate: utcAt(7, 11, 0), Status: models.BookingPending})
	f.store.PutBlock(models.UnavailableBlock{ID: "u1", ProfessionalID: "p1", Type: models.UnavailableBreak, StartDate: utcAt(7, 11, 0), EndDate: utcAt(7, 11, 30)})

	err := f.engine.ValidateInterval(context.Background(), f.tenant, "p1", utcAt(7, 10, 30), utcAt(7, 11, 15), "")
	if !utils.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	refs := err.(*utils.ConflictError).Conflicts
	if len(refs) != 2 || refs[0].ID != "b1" || refs[1].ID != "u1" {
		t.Fatalf("unexpected conflicts: %+v", refs)
	}

	if err := f.engine.ValidateInterval(context.Background(), f.tenant, "p1", utcAt(7, 10, 0), utcAt(7, 11, 0), "b1"); err != nil {
		t.Fatalf("excluding the booking itself should pass, got %v", err)
	}
}
