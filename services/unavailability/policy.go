package unavailability

import (
	"fmt"
	"time"

	"reservo/models"
	"reservo/utils"
)

// DurationLimit bounds the length of one block type.
type DurationLimit struct {
	Min time.Duration
	Max time.Duration
}

// Policy is the set of business rules applied to unavailable blocks.
type Policy struct {
	Durations        map[models.UnavailableType]DurationLimit
	MonthlyLimits    map[models.UnavailableType]int
	BusinessStart    int // minutes since midnight
	BusinessEnd      int
	MaxIntervals     map[models.RecurrenceFrequency]int
	CheckHorizonDays int
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func DefaultPolicy() Policy {
	return Policy{
		Durations: map[models.UnavailableType]DurationLimit{
			models.UnavailableBreak:     {Min: hours(0.25), Max: hours(4)},
			models.UnavailablePersonal:  {Min: hours(1), Max: hours(24)},
			models.UnavailableSickLeave: {Min: hours(4), Max: hours(720)},
			models.UnavailableVacation:  {Min: hours(8), Max: hours(2160)},
			models.UnavailableCustom:    {Min: hours(0.25), Max: hours(168)},
		},
		MonthlyLimits: map[models.UnavailableType]int{
			models.UnavailableVacation:  10,
			models.UnavailableSickLeave: 5,
			models.UnavailablePersonal:  15,
			models.UnavailableBreak:     60,
			models.UnavailableCustom:    20,
		},
		BusinessStart: 6 * 60,
		BusinessEnd:   22 * 60,
		MaxIntervals: map[models.RecurrenceFrequency]int{
			models.FrequencyDaily:   365,
			models.FrequencyWeekly:  52,
			models.FrequencyMonthly: 12,
		},
		CheckHorizonDays: 90,
	}
}

// SetDuration overrides the bounds of one type, given in hours.
func (p *Policy) SetDuration(t models.UnavailableType, minHours, maxHours float64) error {
	if !t.Valid() {
		return fmt.Errorf("unknown unavailability type %q", t)
	}
	if minHours <= 0 || maxHours < minHours {
		return fmt.Errorf("invalid duration bounds for %s: %v-%vh", t, minHours, maxHours)
	}
	if p.Durations == nil {
		p.Durations = make(map[models.UnavailableType]DurationLimit)
	}
	p.Durations[t] = DurationLimit{Min: hours(minHours), Max: hours(maxHours)}
	return nil
}

// SetMonthlyLimit overrides how many blocks of one type fit in a month.
func (p *Policy) SetMonthlyLimit(t models.UnavailableType, n int) error {
	if !t.Valid() {
		return fmt.Errorf("unknown unavailability type %q", t)
	}
	if n < 0 {
		return fmt.Errorf("negative monthly limit for %s: %d", t, n)
	}
	if p.MonthlyLimits == nil {
		p.MonthlyLimits = make(map[models.UnavailableType]int)
	}
	p.MonthlyLimits[t] = n
	return nil
}

// SetBusinessHours parses an "HH:mm" window for same-day blocks.
func (p *Policy) SetBusinessHours(start, end string) error {
	s, err := utils.ParseClock(start)
	if err != nil {
		return err
	}
	e, err := utils.ParseClock(end)
	if err != nil {
		return err
	}
	if s >= e {
		return fmt.Errorf("business hours %s-%s are empty", start, end)
	}
	p.BusinessStart, p.BusinessEnd = s, e
	return nil
}

func checkInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return utils.NewValidationError("startDate", "start and end dates are required")
	}
	if !start.Before(end) {
		return utils.NewValidationError("endDate", "start date must be before end date")
	}
	return nil
}

func checkNotPast(start, now time.Time) error {
	if start.Before(now) {
		return utils.NewValidationError("startDate", "start date cannot be in the past")
	}
	return nil
}

func (p Policy) checkRecurrence(b *models.UnavailableBlock, now time.Time) error {
	if !b.IsRecurring {
		return nil
	}
	rp := b.RecurrencePattern
	if rp == nil {
		return utils.NewPolicyError("recurrence_pattern", "", "a recurring block needs a recurrence pattern")
	}
	limit, ok := p.MaxIntervals[rp.Frequency]
	if !ok {
		return utils.NewPolicyError("recurrence_frequency", string(rp.Frequency),
			fmt.Sprintf("unknown recurrence frequency %q", rp.Frequency))
	}
	if rp.Interval < 1 {
		return utils.NewPolicyError("recurrence_interval", "1", "recurrence interval must be at least 1")
	}
	if rp.Interval > limit {
		return utils.NewPolicyError("recurrence_interval", fmt.Sprint(limit),
			fmt.Sprintf("a %s recurrence may repeat at most every %d periods", rp.Frequency, limit))
	}
	if rp.EndDate != nil && !rp.EndDate.After(now) {
		return utils.NewPolicyError("recurrence_end", "", "recurrence end date must be in the future")
	}
	return nil
}

func (p Policy) checkDuration(t models.UnavailableType, d time.Duration) error {
	limit, ok := p.Durations[t]
	if !ok {
		return nil
	}
	if d < limit.Min || d > limit.Max {
		return utils.NewPolicyError("duration", fmt.Sprintf("%s-%s", limit.Min, limit.Max),
			fmt.Sprintf("a %s block must last between %s and %s", t, limit.Min, limit.Max))
	}
	return nil
}

// checkBusinessHours applies only to blocks that start and end on the same
// local day.
func (p Policy) checkBusinessHours(start, end time.Time, loc *time.Location) error {
	if !utils.SameDay(start, end, loc) {
		return nil
	}
	if utils.MinutesOfDay(start, loc) < p.BusinessStart || utils.MinutesOfDay(end, loc) > p.BusinessEnd {
		window := utils.FormatClock(p.BusinessStart) + "-" + utils.FormatClock(p.BusinessEnd)
		return utils.NewPolicyError("business_hours", window,
			fmt.Sprintf("same-day blocks must fall within business hours %s", window))
	}
	return nil
}
