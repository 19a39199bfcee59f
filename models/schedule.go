package models

import "time"

// DayType tags how a working day's hours are defined.
type DayType string

const (
	DayTypeFullTime     DayType = "full_time"     // company working hours
	DayTypeCustomBlocks DayType = "custom_blocks" // explicit blocks
)

// TimeBlock is a same-day window in "HH:mm".
type TimeBlock struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// DaySchedule describes one weekday of a WeeklySchedule.
type DaySchedule struct {
	IsWorking bool        `bson:"isWorking" json:"isWorking"`
	Type      DayType     `bson:"type" json:"type"`
	Blocks    []TimeBlock `bson:"blocks,omitempty" json:"blocks,omitempty"` // only for custom_blocks
}

// WeeklySchedule is a professional's recurring week, keyed by weekday name.
type WeeklySchedule struct {
	ID             string                 `bson:"id" json:"id"`
	ProfessionalID string                 `bson:"professionalId" json:"professionalId"`
	Days           map[string]DaySchedule `bson:"days" json:"days"`
	IsActive       bool                   `bson:"isActive" json:"isActive"`
	DeletedAt      *time.Time             `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt      time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// Day returns the schedule for a weekday. Missing days are non-working.
func (w *WeeklySchedule) Day(key string) DaySchedule {
	if w == nil || w.Days == nil {
		return DaySchedule{}
	}
	return w.Days[key]
}

// DefaultWeek is Monday to Saturday on company hours, Sunday off.
func DefaultWeek() map[string]DaySchedule {
	full := DaySchedule{IsWorking: true, Type: DayTypeFullTime}
	return map[string]DaySchedule{
		"monday":    full,
		"tuesday":   full,
		"wednesday": full,
		"thursday":  full,
		"friday":    full,
		"saturday":  full,
		"sunday":    {IsWorking: false, Type: DayTypeFullTime},
	}
}
