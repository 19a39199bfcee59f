package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservo/database/repository"
	"reservo/models"
	"reservo/services/availability"
	"reservo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CreateRequest is the input of ValidateAndCreateBooking.
type CreateRequest struct {
	ClientID       string               `json:"clientId"`
	ProfessionalID string               `json:"professionalId"`
	ServiceID      string               `json:"serviceId"`
	StartDate      time.Time            `json:"startDate"`
	EndDate        time.Time            `json:"endDate"`
	Status         models.BookingStatus `json:"status,omitempty"` // pending (default) or confirmed
	Notes          string               `json:"notes,omitempty"`
	InternalNotes  string               `json:"internalNotes,omitempty"`
	Price          *float64             `json:"price,omitempty"`
	CreatedBy      string               `json:"createdBy,omitempty"`
	StaffOverride  bool                 `json:"staffOverride,omitempty"`
}

func (r *CreateRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ClientID) == "":
		return utils.NewValidationError("clientId", "client id is required")
	case strings.TrimSpace(r.ProfessionalID) == "":
		return utils.NewValidationError("professionalId", "professional id is required")
	case strings.TrimSpace(r.ServiceID) == "":
		return utils.NewValidationError("serviceId", "service id is required")
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return utils.NewValidationError("startDate", "start and end dates are required")
	case !r.StartDate.Before(r.EndDate):
		return utils.NewValidationError("endDate", "start date must be before end date")
	case r.Price != nil && *r.Price < 0:
		return utils.NewValidationError("price", "price cannot be negative")
	}
	if r.Status != "" && r.Status != models.BookingPending && r.Status != models.BookingConfirmed {
		return utils.NewValidationError("status", "a new booking must be pending or confirmed")
	}
	return nil
}

// ValidateAndCreateBooking checks the request against the professional's
// schedule and calendar and stores it. The overlap check and the insert
// run under the professional's calendar lock.
func (s *Service) ValidateAndCreateBooking(ctx context.Context, t *repository.Tenant, req CreateRequest) (*models.Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	prof, err := t.Users.GetByID(ctx, req.ProfessionalID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to load professional %s: %w", req.ProfessionalID, err)
	}
	if !prof.IsProfessional() {
		return nil, utils.NewNotFoundError("professional", req.ProfessionalID)
	}

	svc, err := t.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("service", req.ServiceID)
		}
		return nil, fmt.Errorf("failed to load service %s: %w", req.ServiceID, err)
	}
	if !svc.IsActive {
		return nil, utils.NewPolicyError("inactive_service", "", fmt.Sprintf("service %s is not bookable", svc.ID))
	}

	sched, err := s.engine.ActiveSchedule(ctx, t, req.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, utils.NewNotFoundError("schedule", req.ProfessionalID)
	}
	if err := s.checkPlacement(ctx, t, sched, req.ProfessionalID, req.ServiceID, req.StartDate, req.EndDate, req.StaffOverride); err != nil {
		return nil, err
	}

	price, err := s.resolvePrice(ctx, t, svc, req)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now().UTC()
	b := &models.Booking{
		ClientID:       req.ClientID,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
		Price:          price,
		Notes:          req.Notes,
		InternalNotes:  req.InternalNotes,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	status := req.Status
	if status == "" {
		status = models.BookingPending
	}
	b.SetStatus(status)

	err = s.withCalendarLock(ctx, t, req.ProfessionalID, func() error {
		if err := s.engine.ValidateInterval(ctx, t, req.ProfessionalID, b.StartDate, b.EndDate, ""); err != nil {
			return err
		}
		if err := t.Bookings.Create(ctx, b); err != nil {
			return storeErr(b, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("tenantId", t.ID), zap.String("bookingId", b.ID),
		zap.String("professionalId", b.ProfessionalID), zap.Time("start", b.StartDate))
	s.publish(ctx, t, models.EventBookingCreated, b, "")
	s.scheduleNoShow(ctx, t, b)
	return b, nil
}

// checkPlacement requires a working weekday and, unless off-slot bookings
// are allowed, an interval equal to one of the day's generated slots.
func (s *Service) checkPlacement(ctx context.Context, t *repository.Tenant, sched *models.WeeklySchedule, professionalID, serviceID string, start, end time.Time, override bool) error {
	cal, err := s.engine.Calendar(ctx, t)
	if err != nil {
		return err
	}
	local := start.In(cal.Location)
	day := sched.Day(utils.WeekdayKey(local.Weekday()))
	if !day.IsWorking {
		return utils.NewPolicyError("non_working_day", utils.WeekdayKey(local.Weekday()),
			fmt.Sprintf("professional %s does not work on %s", professionalID, utils.WeekdayKey(local.Weekday())))
	}
	if s.policy.AllowOffSlot || (override && s.policy.AllowStaffOverride) {
		return nil
	}

	duration, err := s.engine.ResolveDuration(ctx, t, professionalID, serviceID)
	if err != nil {
		return err
	}
	dayStart, _ := utils.DayBounds(local, cal.Location)
	slots, err := availability.GenerateSlots(day, dayStart, duration, cal.Hours, cal.Location)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot.StartDate.Equal(start) && slot.EndDate.Equal(end) {
			return nil
		}
	}
	return utils.NewPolicyError("slot_alignment", fmt.Sprintf("%dm", duration),
		"requested interval does not match a generated slot of the professional's schedule")
}

// resolvePrice picks the professional's custom price, then the service
// price, then the price given on the request.
func (s *Service) resolvePrice(ctx context.Context, t *repository.Tenant, svc *models.Service, req CreateRequest) (float64, error) {
	ps, err := t.Catalog.GetProfessionalService(ctx, req.ProfessionalID, req.ServiceID)
	switch {
	case err == nil:
		if ps.IsActive && ps.CustomPrice != nil {
			return *ps.CustomPrice, nil
		}
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return 0, fmt.Errorf("failed to load professional service: %w", err)
	}
	if svc.Price > 0 || req.Price == nil {
		return svc.Price, nil
	}
	return *req.Price, nil
}
