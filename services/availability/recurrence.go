package availability

import (
	"fmt"
	"time"

	"reservo/models"
	"reservo/utils"

	"github.com/teambition/rrule-go"
)

// DefaultMaxOccurrences bounds one expansion when no limit is configured.
const DefaultMaxOccurrences = 5000

// Expander turns recurring unavailable blocks into concrete intervals.
// It is stateless: expanding [a, c] equals expanding [a, b) and [b, c].
type Expander struct {
	MaxOccurrences int
}

func (x Expander) limit() int {
	if x.MaxOccurrences <= 0 {
		return DefaultMaxOccurrences
	}
	return x.MaxOccurrences
}

// Expand returns the occurrences of block whose start lies in
// [rangeStart, rangeEnd] and not after the pattern end date. Wall-clock
// arithmetic happens in loc, so a 09:00 series stays at 09:00 across DST.
// Monthly series keep the template's day of month and clamp it to the last
// day of shorter months.
func (x Expander) Expand(block models.UnavailableBlock, rangeStart, rangeEnd time.Time, loc *time.Location) ([]models.Occurrence, error) {
	if !block.IsRecurring || block.RecurrencePattern == nil {
		return nil, nil
	}
	p := block.RecurrencePattern
	if p.Interval < 1 {
		return nil, utils.NewValidationError("recurrencePattern.interval", "interval must be at least 1")
	}

	until := rangeEnd
	if p.EndDate != nil && p.EndDate.Before(until) {
		until = *p.EndDate
	}
	start := block.StartDate.In(loc).Truncate(time.Second)
	if start.After(until) || rangeEnd.Before(rangeStart) {
		return nil, nil
	}

	opt, err := ruleFor(p, start, rangeStart.In(loc), loc)
	if err != nil {
		return nil, err
	}
	opt.Until = until

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule for block %s: %w", block.ID, err)
	}

	duration := block.Duration()
	next := rule.Iterator()
	var out []models.Occurrence
	for n := 0; ; n++ {
		occ, ok := next()
		if !ok || occ.After(until) {
			break
		}
		if n >= x.limit() {
			return nil, utils.NewPolicyError("max_recurrence_occurrences", fmt.Sprint(x.limit()),
				fmt.Sprintf("block %s expands to more than %d occurrences in the requested range", block.ID, x.limit()))
		}
		if occ.Before(rangeStart) || occ.Before(start) {
			continue
		}
		out = append(out, models.Occurrence{
			BlockID:   block.ID,
			Type:      block.Type,
			StartDate: occ,
			EndDate:   occ.Add(duration),
		})
	}
	return out, nil
}

// ruleFor builds the rule and moves its start forward by whole periods so
// iteration begins near rangeStart with the original phase.
func ruleFor(p *models.RecurrencePattern, start, rangeStart time.Time, loc *time.Location) (rrule.ROption, error) {
	opt := rrule.ROption{Interval: p.Interval, Dtstart: start}

	switch p.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly:
		period := p.Interval
		opt.Freq = rrule.DAILY
		if p.Frequency == models.FrequencyWeekly {
			period = 7 * p.Interval
			opt.Freq = rrule.WEEKLY
		}
		if days := utils.CivilDaysBetween(start, rangeStart); days > 0 {
			opt.Dtstart = start.AddDate(0, 0, (days/period)*period)
		}
	case models.FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
		day := start.Day()
		if day <= 28 {
			opt.Bymonthday = []int{day}
		} else {
			// Last existing day among 28..day, so the 31st becomes Feb 28/29 and Apr 30.
			for d := 28; d <= day; d++ {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
			opt.Bysetpos = []int{-1}
		}
		months := (rangeStart.Year()-start.Year())*12 + int(rangeStart.Month()) - int(start.Month())
		if skip := (months / p.Interval) * p.Interval; skip > 0 {
			opt.Dtstart = time.Date(start.Year(), start.Month()+time.Month(skip), 1,
				start.Hour(), start.Minute(), start.Second(), 0, loc)
		}
	default:
		return opt, utils.NewValidationError("recurrencePattern.frequency", fmt.Sprintf("unknown frequency %q", p.Frequency))
	}
	return opt, nil
}
