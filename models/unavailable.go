package models

import "time"

type UnavailableType string

const (
	UnavailableVacation  UnavailableType = "vacation"
	UnavailableSickLeave UnavailableType = "sick_leave"
	UnavailablePersonal  UnavailableType = "personal"
	UnavailableBreak     UnavailableType = "break"
	UnavailableCustom    UnavailableType = "custom"
)

func (t UnavailableType) Valid() bool {
	switch t {
	case UnavailableVacation, UnavailableSickLeave, UnavailablePersonal, UnavailableBreak, UnavailableCustom:
		return true
	}
	return false
}

type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
)

// RecurrencePattern repeats a block every Interval periods until EndDate.
type RecurrencePattern struct {
	Frequency RecurrenceFrequency `bson:"frequency" json:"frequency"`
	Interval  int                 `bson:"interval" json:"interval"`
	EndDate   *time.Time          `bson:"endDate,omitempty" json:"endDate,omitempty"` // bounds occurrence starts, inclusive
}

// UnavailableBlock removes time from a professional's calendar.
type UnavailableBlock struct {
	ID                string             `bson:"id" json:"id"`
	ProfessionalID    string             `bson:"professionalId" json:"professionalId"`
	StartDate         time.Time          `bson:"startDate" json:"startDate"`
	EndDate           time.Time          `bson:"endDate" json:"endDate"`
	Type              UnavailableType    `bson:"type" json:"type"`
	Reason            string             `bson:"reason,omitempty" json:"reason,omitempty"`
	IsRecurring       bool               `bson:"isRecurring" json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `bson:"recurrencePattern,omitempty" json:"recurrencePattern,omitempty"`
	CreatedBy         string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (b *UnavailableBlock) Duration() time.Duration {
	return b.EndDate.Sub(b.StartDate)
}
