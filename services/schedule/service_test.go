package schedule

import (
	"context"
	"reflect"
	"testing"
	"time"

	"reservo/database/repository"
	memoryRepo "reservo/database/repository/memory"
	"reservo/models"
	"reservo/services/availability"
	"reservo/utils"
)

func newService(t *testing.T) (*Service, *repository.Tenant) {
	t.Helper()
	store := memoryRepo.NewStore()
	store.PutCompany(models.CompanySettings{ID: "c", Timezone: "UTC", WorkingHours: &models.TimeBlock{Start: "09:00", End: "17:00"}})
	store.PutUser(models.User{ID: "p1", Name: "Ada", Role: models.RoleProfessional, IsActive: true})
	store.PutUser(models.User{ID: "c1", Name: "Linus", Role: models.RoleClient, IsActive: true})
	engine := availability.NewEngine(availability.DefaultPolicy(), nil)
	engine.SetClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	return NewService(engine, nil), store.Tenant("acme")
}

func custom(blocks ...models.TimeBlock) models.DaySchedule {
	return models.DaySchedule{IsWorking: true, Type: models.DayTypeCustomBlocks, Blocks: blocks}
}

func TestValidateDay(t *testing.T) {
	cases := []struct {
		name string
		day  models.DaySchedule
		ok   bool
	}{
		{"full time", models.DaySchedule{IsWorking: true, Type: models.DayTypeFullTime}, true},
		{"day off", models.DaySchedule{IsWorking: false, Type: models.DayTypeFullTime}, true},
		{"touching blocks", custom(models.TimeBlock{Start: "09:00", End: "12:00"}, models.TimeBlock{Start: "12:00", End: "15:00"}), true},
		{"unsorted blocks", custom(models.TimeBlock{Start: "14:00", End: "16:00"}, models.TimeBlock{Start: "09:00", End: "12:00"}), true},
		{"overlapping blocks", custom(models.TimeBlock{Start: "09:00", End: "12:30"}, models.TimeBlock{Start: "12:00", End: "15:00"}), false},
		{"empty custom day", custom(), false},
		{"inverted block", custom(models.TimeBlock{Start: "12:00", End: "09:00"}), false},
		{"bad clock", custom(models.TimeBlock{Start: "9am", End: "12:00"}), false},
		{"blocks on day off", models.DaySchedule{IsWorking: false, Type: models.DayTypeCustomBlocks, Blocks: []models.TimeBlock{{Start: "09:00", End: "10:00"}}}, false},
		{"unknown type", models.DaySchedule{IsWorking: true, Type: "shift"}, false},
		{"day off without type", models.DaySchedule{IsWorking: false}, true},
		{"working day without type", models.DaySchedule{IsWorking: true}, true},
		{"blocks without type", models.DaySchedule{IsWorking: true, Blocks: []models.TimeBlock{{Start: "09:00", End: "10:00"}}}, false},
	}
	for _, tc := range cases {
		err := ValidateDay("monday", tc.day)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !utils.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestValidateWeekRejectsUnknownKey(t *testing.T) {
	err := ValidateWeek(map[string]models.DaySchedule{"Monday": {IsWorking: true, Type: models.DayTypeFullTime}})
	if !utils.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSchedule(t *testing.T) {
	svc, tenant := newService(t)
	ctx := context.Background()

	w, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsActive || len(w.Days) != 7 {
		t.Fatalf("unexpected schedule %+v", w)
	}

	if _, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1"}); !utils.IsConflict(err) {
		t.Fatalf("second active schedule should conflict, got %v", err)
	}
	inactive := false
	if _, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1", IsActive: &inactive}); err != nil {
		t.Fatalf("an inactive draft is allowed: %v", err)
	}
	if _, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "c1"}); !utils.IsNotFound(err) {
		t.Fatalf("clients cannot own schedules, got %v", err)
	}
}

func TestUpdateScheduleReplacesDay(t *testing.T) {
	svc, tenant := newService(t)
	ctx := context.Background()
	w, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1", Days: map[string]models.DaySchedule{
		"monday": custom(models.TimeBlock{Start: "08:00", End: "10:00"}, models.TimeBlock{Start: "14:00", End: "18:00"}),
	}})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateSchedule(ctx, tenant, w.ID, UpdateRequest{Days: map[string]models.DaySchedule{
		"monday": custom(models.TimeBlock{Start: "11:00", End: "12:00"}),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if blocks := updated.Days["monday"].Blocks; len(blocks) != 1 || blocks[0].Start != "11:00" {
		t.Fatalf("monday should be replaced whole, got %+v", blocks)
	}

	hours, err := svc.AvailableHours(ctx, tenant, "p1", "Monday")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(hours, []models.TimeBlock{{Start: "11:00", End: "12:00"}}) {
		t.Fatalf("unexpected hours %+v", hours)
	}
}

func TestUpdateScheduleActivation(t *testing.T) {
	svc, tenant := newService(t)
	ctx := context.Background()
	if _, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1"}); err != nil {
		t.Fatal(err)
	}
	off := false
	draft, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1", IsActive: &off})
	if err != nil {
		t.Fatal(err)
	}
	on := true
	if _, err := svc.UpdateSchedule(ctx, tenant, draft.ID, UpdateRequest{IsActive: &on}); !utils.IsConflict(err) {
		t.Fatalf("activating a second schedule should conflict, got %v", err)
	}
}

func TestDeleteSchedule(t *testing.T) {
	svc, tenant := newService(t)
	ctx := context.Background()
	w, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteSchedule(ctx, tenant, w.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetActiveSchedule(ctx, tenant, "p1"); !utils.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1"}); err != nil {
		t.Fatalf("a new schedule may follow a deleted one: %v", err)
	}
}

func TestWorkingDaysAndHours(t *testing.T) {
	svc, tenant := newService(t)
	ctx := context.Background()
	if _, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1", Days: map[string]models.DaySchedule{
		"saturday": {IsWorking: false, Type: models.DayTypeFullTime},
	}}); err != nil {
		t.Fatal(err)
	}

	days, err := svc.WorkingDays(ctx, tenant, "p1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	if !reflect.DeepEqual(days, want) {
		t.Fatalf("got %v, want %v", days, want)
	}

	hours, err := svc.AvailableHours(ctx, tenant, "p1", "tuesday")
	if err != nil {
		t.Fatal(err)
	}
	if len(hours) != 1 || hours[0].Start != "09:00" || hours[0].End != "17:00" {
		t.Fatalf("full_time day should use company hours, got %+v", hours)
	}
	off, err := svc.AvailableHours(ctx, tenant, "p1", "sunday")
	if err != nil || len(off) != 0 {
		t.Fatalf("expected no hours on sunday, got %+v, %v", off, err)
	}
	if _, err := svc.AvailableHours(ctx, tenant, "p1", "someday"); !utils.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScheduleDaysDefaultToFullTime(t *testing.T) {
	svc, tenant := newService(t)
	ctx := context.Background()

	w, err := svc.CreateSchedule(ctx, tenant, CreateRequest{ProfessionalID: "p1", Days: map[string]models.DaySchedule{
		"monday": {IsWorking: true},
		"sunday": {IsWorking: false},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, k := range []string{"monday", "sunday"} {
		if w.Days[k].Type != models.DayTypeFullTime {
			t.Fatalf("%s: type %q", k, w.Days[k].Type)
		}
	}

	w, err = svc.UpdateSchedule(ctx, tenant, w.ID, UpdateRequest{Days: map[string]models.DaySchedule{"saturday": {IsWorking: false}}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if d := w.Days["saturday"]; d.IsWorking || d.Type != models.DayTypeFullTime {
		t.Fatalf("saturday: %+v", d)
	}
}
