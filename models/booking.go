package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

// Occupies reports whether a booking in this status blocks the calendar.
func (s BookingStatus) Occupies() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingNoShow
}

func (s BookingStatus) Valid() bool {
	return s.Occupies() || s.Terminal()
}

// Booking reserves [StartDate, EndDate) of a professional's time for a client.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	ClientID           string        `bson:"clientId" json:"clientId"`
	ProfessionalID     string        `bson:"professionalId" json:"professionalId"`
	ServiceID          string        `bson:"serviceId" json:"serviceId"`
	StartDate          time.Time     `bson:"startDate" json:"startDate"`
	EndDate            time.Time     `bson:"endDate" json:"endDate"`
	Status             BookingStatus `bson:"status" json:"status"`
	Occupies           bool          `bson:"occupies" json:"-"` // mirrors Status.Occupies() for indexing
	Price              float64       `bson:"price" json:"price"`
	Notes              string        `bson:"notes,omitempty" json:"notes,omitempty"`
	InternalNotes      string        `bson:"internalNotes,omitempty" json:"internalNotes,omitempty"`
	CancellationReason string        `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledBy        string        `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedBy          string        `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SetStatus updates Status and keeps Occupies in sync.
func (b *Booking) SetStatus(s BookingStatus) {
	b.Status = s
	b.Occupies = s.Occupies()
}
