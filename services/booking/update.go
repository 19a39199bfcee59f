package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservo/database/repository"
	"reservo/models"
	"reservo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UpdateRequest is a partial update. Nil fields are left unchanged.
// StartDate and EndDate move the booking and must be given together.
type UpdateRequest struct {
	Notes         *string    `json:"notes,omitempty"`
	InternalNotes *string    `json:"internalNotes,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	StaffOverride bool       `json:"staffOverride,omitempty"`
}

func (r *UpdateRequest) reschedules() bool {
	return r.StartDate != nil || r.EndDate != nil
}

// UpdateBooking applies req field by field to the stored booking. A
// reschedule is validated against the calendar without the booking itself.
func (s *Service) UpdateBooking(ctx context.Context, t *repository.Tenant, id string, req UpdateRequest) (*models.Booking, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, utils.NewValidationError("price", "price cannot be negative")
	}
	if req.reschedules() {
		if req.StartDate == nil || req.EndDate == nil {
			return nil, utils.NewValidationError("startDate", "start and end dates must be changed together")
		}
		if !req.StartDate.Before(*req.EndDate) {
			return nil, utils.NewValidationError("endDate", "start date must be before end date")
		}
	}

	var rescheduled bool
	b, err := s.mutate(ctx, t, id, func(b *models.Booking) error {
		if req.Notes != nil {
			b.Notes = *req.Notes
		}
		if req.InternalNotes != nil {
			b.InternalNotes = *req.InternalNotes
		}
		if req.Price != nil {
			b.Price = *req.Price
		}
		if !req.reschedules() {
			return nil
		}

		if b.Status.Terminal() {
			return utils.NewPolicyError("reschedule_terminal", string(b.Status),
				fmt.Sprintf("booking %s is %s and cannot be rescheduled", id, b.Status))
		}
		sched, err := s.engine.ActiveSchedule(ctx, t, b.ProfessionalID)
		if err != nil {
			return err
		}
		if sched == nil {
			return utils.NewNotFoundError("schedule", b.ProfessionalID)
		}
		start, end := req.StartDate.UTC(), req.EndDate.UTC()
		if err := s.checkPlacement(ctx, t, sched, b.ProfessionalID, b.ServiceID, start, end, req.StaffOverride); err != nil {
			return err
		}
		if err := s.engine.ValidateInterval(ctx, t, b.ProfessionalID, start, end, b.ID); err != nil {
			return err
		}
		b.StartDate, b.EndDate = start, end
		rescheduled = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rescheduled {
		return b, nil
	}

	s.logger.Info("booking rescheduled",
		zap.String("tenantId", t.ID), zap.String("bookingId", b.ID), zap.Time("start", b.StartDate))
	s.publish(ctx, t, models.EventBookingRescheduled, b, "")
	s.scheduleNoShow(ctx, t, b)
	return b, nil
}

func updateErr(b *models.Booking, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.NewNotFoundError("booking", b.ID)
	}
	return storeErr(b, err)
}
