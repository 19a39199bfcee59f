package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	memoryRepo "reservo/database/repository/memory"
	"reservo/models"
	"reservo/services/availability"
	"reservo/services/booking"
	"reservo/services/lock"
	"reservo/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func newWorker(t *testing.T, now time.Time) (*NoShowWorker, *booking.Service, *memoryRepo.Tenants) {
	t.Helper()
	tenants := memoryRepo.NewTenants()
	store := tenants.Store("acme")
	store.PutBooking(models.Booking{
		ID:             "b1",
		ClientID:       "c1",
		ProfessionalID: "p1",
		ServiceID:      "s1",
		StartDate:      time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2030, 1, 7, 11, 0, 0, 0, time.UTC),
		Status:         models.BookingConfirmed,
	})

	engine := availability.NewEngine(availability.DefaultPolicy(), nil)
	engine.SetClock(func() time.Time { return now })
	svc := booking.NewService(engine, lock.NewLocalLocker(time.Second), nil, nil, booking.Policy{}, nil)
	return &NoShowWorker{tenants: tenants, bookings: svc, logger: zap.NewNop()}, svc, tenants
}

func TestHandleNoShowTaskMarksBooking(t *testing.T) {
	w, svc, tenants := newWorker(t, time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC))
	task, _, err := tasks.NewNoShowTask(models.NoShowPayload{TenantID: "acme", BookingID: "b1"}, time.Now())
	if err != nil {
		t.Fatalf("NewNoShowTask: %v", err)
	}
	if err := w.HandleNoShowTask(context.Background(), task); err != nil {
		t.Fatalf("HandleNoShowTask: %v", err)
	}

	tenant, _ := tenants.Resolve(context.Background(), "acme")
	b, err := svc.GetBooking(context.Background(), tenant, "b1")
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if b.Status != models.BookingNoShow {
		t.Fatalf("expected no_show, got %s", b.Status)
	}
}

func TestHandleNoShowTaskBeforeEndIsNoop(t *testing.T) {
	w, svc, tenants := newWorker(t, time.Date(2030, 1, 7, 10, 30, 0, 0, time.UTC))
	task, _, _ := tasks.NewNoShowTask(models.NoShowPayload{TenantID: "acme", BookingID: "b1"}, time.Now())
	if err := w.HandleNoShowTask(context.Background(), task); err != nil {
		t.Fatalf("HandleNoShowTask: %v", err)
	}
	tenant, _ := tenants.Resolve(context.Background(), "acme")
	b, _ := svc.GetBooking(context.Background(), tenant, "b1")
	if b.Status != models.BookingConfirmed {
		t.Fatalf("booking should be untouched, got %s", b.Status)
	}
}

func TestHandleNoShowTaskSkipsBadInput(t *testing.T) {
	w, _, _ := newWorker(t, time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC))

	bad := asynq.NewTask(tasks.TypeNoShowCheck, []byte("{not json"))
	if err := w.HandleNoShowTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}

	task, _, _ := tasks.NewNoShowTask(models.NoShowPayload{TenantID: "bad tenant!", BookingID: "b1"}, time.Now())
	if err := w.HandleNoShowTask(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for invalid tenant, got %v", err)
	}

	gone, _, _ := tasks.NewNoShowTask(models.NoShowPayload{TenantID: "acme", BookingID: "missing"}, time.Now())
	if err := w.HandleNoShowTask(context.Background(), gone); err != nil {
		t.Fatalf("missing booking should be skipped, got %v", err)
	}
}
