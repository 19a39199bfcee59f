package availability

import (
	"fmt"
	"sort"
	"time"

	"reservo/models"
	"reservo/utils"
)

// WorkingHours is a same-day window in minutes since midnight.
type WorkingHours struct {
	Start int
	End   int
}

// ParseWorkingHours converts an "HH:mm" pair, requiring start < end.
func ParseWorkingHours(start, end string) (WorkingHours, error) {
	s, err := utils.ParseClock(start)
	if err != nil {
		return WorkingHours{}, err
	}
	e, err := utils.ParseClock(end)
	if err != nil {
		return WorkingHours{}, err
	}
	if s >= e {
		return WorkingHours{}, utils.NewValidationError("workingHours", fmt.Sprintf("start %s must be before end %s", start, end))
	}
	return WorkingHours{Start: s, End: e}, nil
}

// dayWindows returns the blocks of a working day, sorted by start.
func dayWindows(day models.DaySchedule, hours WorkingHours) ([]WorkingHours, error) {
	if !day.IsWorking {
		return nil, nil
	}
	switch day.Type {
	case models.DayTypeFullTime:
		return []WorkingHours{hours}, nil
	case models.DayTypeCustomBlocks:
		windows := make([]WorkingHours, 0, len(day.Blocks))
		for _, b := range day.Blocks {
			w, err := ParseWorkingHours(b.Start, b.End)
			if err != nil {
				return nil, err
			}
			windows = append(windows, w)
		}
		sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
		return windows, nil
	default:
		return nil, utils.NewValidationError("type", fmt.Sprintf("unknown day type %q", day.Type))
	}
}

// GenerateSlots cuts each working window of day into back-to-back slots of
// duration minutes. Windows are never merged and a trailing remainder
// shorter than duration produces no slot. Every slot starts available.
func GenerateSlots(day models.DaySchedule, date time.Time, duration int, hours WorkingHours, loc *time.Location) ([]models.AvailabilitySlot, error) {
	if duration <= 0 {
		return nil, utils.NewValidationError("duration", "duration must be a positive number of minutes")
	}
	windows, err := dayWindows(day, hours)
	if err != nil {
		return nil, err
	}

	var slots []models.AvailabilitySlot
	for _, w := range windows {
		for cur := w.Start; cur+duration <= w.End; cur += duration {
			slots = append(slots, models.AvailabilitySlot{
				StartTime:   utils.FormatClock(cur),
				EndTime:     utils.FormatClock(cur + duration),
				StartDate:   utils.AtClock(date, cur, loc),
				EndDate:     utils.AtClock(date, cur+duration, loc),
				IsAvailable: true,
			})
		}
	}
	return slots, nil
}
