package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservo/database/repository"
	bookingRepo "reservo/database/repository/booking"
	"reservo/models"
	"reservo/services/availability"
	"reservo/services/events"
	"reservo/services/lock"
	"reservo/services/tasks"
	"reservo/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Policy holds the deployment switches of the booking lifecycle.
type Policy struct {
	AllowOffSlot       bool          // accept intervals that do not match a generated slot
	AllowStaffOverride bool          // let a request's StaffOverride skip slot alignment
	AutoNoShow         bool          // schedule a no-show check at end + NoShowGrace
	NoShowGrace        time.Duration // delay after the booking end
}

// Service validates and stores bookings for any tenant.
type Service struct {
	engine    *availability.Engine
	locker    lock.Locker
	publisher events.Publisher
	scheduler tasks.Scheduler
	policy    Policy
	logger    *zap.Logger
}

func NewService(engine *availability.Engine, locker lock.Locker, publisher events.Publisher, scheduler tasks.Scheduler, policy Policy, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if scheduler == nil {
		scheduler = tasks.NopScheduler{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:    engine,
		locker:    locker,
		publisher: publisher,
		scheduler: scheduler,
		policy:    policy,
		logger:    logger,
	}
}

// withCalendarLock runs fn while holding the professional's calendar lock.
func (s *Service) withCalendarLock(ctx context.Context, t *repository.Tenant, professionalID string, fn func() error) error {
	release, err := s.locker.Acquire(ctx, lock.Key(t.ID, professionalID))
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return utils.NewConflictError("calendar is being modified by another request, retry")
		}
		return fmt.Errorf("failed to lock calendar of %s: %w", professionalID, err)
	}
	defer release()
	return fn()
}

// mutate re-reads the booking while holding its professional's calendar
// lock, applies fn and stores the result. Every write of an existing booking
// goes through here so a reschedule is never undone by a stale copy.
func (s *Service) mutate(ctx context.Context, t *repository.Tenant, id string, fn func(*models.Booking) error) (*models.Booking, error) {
	current, err := s.GetBooking(ctx, t, id)
	if err != nil {
		return nil, err
	}
	var out *models.Booking
	err = s.withCalendarLock(ctx, t, current.ProfessionalID, func() error {
		b, err := s.GetBooking(ctx, t, id)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		b.UpdatedAt = s.engine.Now().UTC()
		if err := t.Bookings.Update(ctx, b); err != nil {
			return updateErr(b, err)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// storeErr maps the storage backstop onto a ConflictError.
func storeErr(b *models.Booking, err error) error {
	if errors.Is(err, bookingRepo.ErrSlotTaken) {
		return utils.NewConflictError("an occupying booking already holds this interval",
			utils.ConflictRef{Kind: availability.KindBooking, StartDate: b.StartDate, EndDate: b.EndDate})
	}
	return fmt.Errorf("failed to store booking: %w", err)
}

func (s *Service) publish(ctx context.Context, t *repository.Tenant, typ string, b *models.Booking, previous models.BookingStatus) {
	evt := models.BookingEvent{
		ID:             uuid.New().String(),
		Type:           typ,
		TenantID:       t.ID,
		BookingID:      b.ID,
		ProfessionalID: b.ProfessionalID,
		ClientID:       b.ClientID,
		Status:         b.Status,
		PreviousStatus: previous,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		OccurredAt:     s.engine.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", typ), zap.String("bookingId", b.ID), zap.String("tenantId", t.ID), zap.Error(err))
	}
}

func (s *Service) scheduleNoShow(ctx context.Context, t *repository.Tenant, b *models.Booking) {
	if !s.policy.AutoNoShow || !b.Status.Occupies() {
		return
	}
	payload := models.NoShowPayload{TenantID: t.ID, BookingID: b.ID}
	if err := s.scheduler.ScheduleNoShowCheck(ctx, payload, b.EndDate.Add(s.policy.NoShowGrace)); err != nil {
		s.logger.Warn("failed to schedule no-show check",
			zap.String("bookingId", b.ID), zap.String("tenantId", t.ID), zap.Error(err))
	}
}

// GetBooking returns one booking by id.
func (s *Service) GetBooking(ctx context.Context, t *repository.Tenant, id string) (*models.Booking, error) {
	b, err := t.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("booking", id)
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return b, nil
}

// ListFilter narrows ListBookings. Dates are inclusive YYYY-MM-DD in the
// tenant timezone.
type ListFilter struct {
	ProfessionalID string
	ClientID       string
	Status         models.BookingStatus
	From           string
	To             string
	Limit          int64
}

// ListBookings returns bookings matching f ordered by start.
func (s *Service) ListBookings(ctx context.Context, t *repository.Tenant, f ListFilter) ([]models.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, utils.NewValidationError("status", fmt.Sprintf("unknown status %q", f.Status))
	}
	filter := bookingRepo.Filter{
		ProfessionalID: f.ProfessionalID,
		ClientID:       f.ClientID,
		Status:         f.Status,
		Limit:          f.Limit,
	}
	if f.From != "" || f.To != "" {
		cal, err := s.engine.Calendar(ctx, t)
		if err != nil {
			return nil, err
		}
		if f.From != "" {
			d, err := utils.ParseDate(f.From, cal.Location)
			if err != nil {
				return nil, err
			}
			filter.From = d
		}
		if f.To != "" {
			d, err := utils.ParseDate(f.To, cal.Location)
			if err != nil {
				return nil, err
			}
			_, filter.To = utils.DayBounds(d, cal.Location)
		}
		if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
			return nil, utils.NewValidationError("to", "from must be on or before to")
		}
	}
	out, err := t.Bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if out == nil {
		out = []models.Booking{}
	}
	return out, nil
}
