package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reservo/database/repository"
	"reservo/models"
	"reservo/utils"

	"go.uber.org/zap"
)

// transitions lists the allowed moves out of each non-terminal status.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled, models.BookingNoShow},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled, models.BookingNoShow},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Service) transition(ctx context.Context, t *repository.Tenant, id string, to models.BookingStatus, apply func(*models.Booking) error) (*models.Booking, error) {
	var from models.BookingStatus
	b, err := s.mutate(ctx, t, id, func(b *models.Booking) error {
		from = b.Status
		if !CanTransition(from, to) {
			return utils.NewPolicyError("status_transition", string(from)+"->"+string(to),
				fmt.Sprintf("booking %s cannot move from %s to %s", id, from, to))
		}
		if apply != nil {
			if err := apply(b); err != nil {
				return err
			}
		}
		b.SetStatus(to)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.String("tenantId", t.ID), zap.String("bookingId", id),
		zap.String("from", string(from)), zap.String("to", string(to)))
	s.publish(ctx, t, models.EventBookingStatusChanged, b, from)
	return b, nil
}

func (s *Service) Confirm(ctx context.Context, t *repository.Tenant, id string) (*models.Booking, error) {
	return s.transition(ctx, t, id, models.BookingConfirmed, nil)
}

func (s *Service) Complete(ctx context.Context, t *repository.Tenant, id string) (*models.Booking, error) {
	return s.transition(ctx, t, id, models.BookingCompleted, nil)
}

// Cancel frees the booking's interval. Reason and actor are required.
func (s *Service) Cancel(ctx context.Context, t *repository.Tenant, id, reason, cancelledBy string) (*models.Booking, error) {
	reason, cancelledBy = strings.TrimSpace(reason), strings.TrimSpace(cancelledBy)
	if reason == "" {
		return nil, utils.NewValidationError("cancellationReason", "a cancellation reason is required")
	}
	if cancelledBy == "" {
		return nil, utils.NewValidationError("cancelledBy", "the cancelling user is required")
	}
	return s.transition(ctx, t, id, models.BookingCancelled, func(b *models.Booking) error {
		now := s.engine.Now().UTC()
		b.CancellationReason = reason
		b.CancelledBy = cancelledBy
		b.CancelledAt = &now
		return nil
	})
}

// MarkNoShow is only allowed once the booking has ended.
func (s *Service) MarkNoShow(ctx context.Context, t *repository.Tenant, id string) (*models.Booking, error) {
	return s.transition(ctx, t, id, models.BookingNoShow, func(b *models.Booking) error {
		if s.engine.Now().Before(b.EndDate) {
			return utils.NewPolicyError("no_show_before_end", b.EndDate.UTC().Format(time.RFC3339),
				fmt.Sprintf("booking %s has not ended yet", b.ID))
		}
		return nil
	})
}

// HandleNoShowCheck runs the delayed check. Bookings that were confirmed
// into completion, cancelled or already marked are left alone.
func (s *Service) HandleNoShowCheck(ctx context.Context, t *repository.Tenant, payload models.NoShowPayload) error {
	b, err := s.GetBooking(ctx, t, payload.BookingID)
	if err != nil {
		if utils.IsNotFound(err) {
			s.logger.Info("no-show check skipped, booking gone", zap.String("bookingId", payload.BookingID))
			return nil
		}
		return err
	}
	if !b.Status.Occupies() {
		return nil
	}
	if _, err := s.MarkNoShow(ctx, t, b.ID); err != nil {
		if utils.IsPolicyViolation(err) {
			// Rescheduled later than the check; a new check was queued with it.
			return nil
		}
		return err
	}
	return nil
}
