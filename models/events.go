package models

import "time"

const (
	EventBookingCreated       = "booking.created"
	EventBookingRescheduled   = "booking.rescheduled"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking write commits.
type BookingEvent struct {
	ID             string        `json:"id"`
	Type           string        `json:"type"`
	TenantID       string        `json:"tenantId"`
	BookingID      string        `json:"bookingId"`
	ProfessionalID string        `json:"professionalId"`
	ClientID       string        `json:"clientId"`
	Status         BookingStatus `json:"status"`
	PreviousStatus BookingStatus `json:"previousStatus,omitempty"`
	StartDate      time.Time     `json:"startDate"`
	EndDate        time.Time     `json:"endDate"`
	OccurredAt     time.Time     `json:"occurredAt"`
}

// NoShowPayload is the body of the delayed no-show check task.
type NoShowPayload struct {
	TenantID  string `json:"tenantId"`
	BookingID string `json:"bookingId"`
}
