package models

import "time"

// AvailabilitySlot is one candidate booking window.
type AvailabilitySlot struct {
	StartTime   string    `json:"startTime"` // "HH:mm"
	EndTime     string    `json:"endTime"`   // "HH:mm"
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	IsAvailable bool      `json:"isAvailable"`
}

// ProfessionalAvailability is the slot list of one professional on one date.
type ProfessionalAvailability struct {
	ProfessionalID string             `json:"professionalId"`
	Date           string             `json:"date"` // YYYY-MM-DD
	Slots          []AvailabilitySlot `json:"slots"`
}

// Occurrence is one concrete interval of a recurring unavailable block.
type Occurrence struct {
	BlockID   string          `json:"blockId"`
	Type      UnavailableType `json:"type"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
}
