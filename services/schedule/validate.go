package schedule

import (
	"fmt"
	"sort"

	"reservo/models"
	"reservo/utils"
)

// ValidateDay checks one weekday definition. An empty type counts as
// full_time.
func ValidateDay(key string, d models.DaySchedule) error {
	field := "days." + key
	d = withDefaultType(d)
	switch d.Type {
	case models.DayTypeFullTime, models.DayTypeCustomBlocks:
	default:
		return utils.NewValidationError(field+".type", fmt.Sprintf("unknown day type %q", d.Type))
	}
	if !d.IsWorking {
		if len(d.Blocks) > 0 {
			return utils.NewValidationError(field+".blocks", "a non-working day cannot have blocks")
		}
		return nil
	}
	if d.Type == models.DayTypeFullTime {
		if len(d.Blocks) > 0 {
			return utils.NewValidationError(field+".blocks", "a full_time day uses company hours and takes no blocks")
		}
		return nil
	}
	if len(d.Blocks) == 0 {
		return utils.NewValidationError(field+".blocks", "a custom_blocks working day needs at least one block")
	}

	type span struct{ start, end int }
	spans := make([]span, 0, len(d.Blocks))
	for i, b := range d.Blocks {
		s, err := utils.ParseClock(b.Start)
		if err != nil {
			return utils.NewValidationError(fmt.Sprintf("%s.blocks[%d].start", field, i), err.Error())
		}
		e, err := utils.ParseClock(b.End)
		if err != nil {
			return utils.NewValidationError(fmt.Sprintf("%s.blocks[%d].end", field, i), err.Error())
		}
		if s >= e {
			return utils.NewValidationError(fmt.Sprintf("%s.blocks[%d]", field, i), "start must be before end")
		}
		spans = append(spans, span{s, e})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i-1].end > spans[i].start {
			return utils.NewValidationError(field+".blocks", fmt.Sprintf("blocks %s-%s and %s-%s overlap",
				utils.FormatClock(spans[i-1].start), utils.FormatClock(spans[i-1].end),
				utils.FormatClock(spans[i].start), utils.FormatClock(spans[i].end)))
		}
	}
	return nil
}

// ValidateWeek checks every day and rejects unknown weekday keys.
func ValidateWeek(days map[string]models.DaySchedule) error {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if d, ok := utils.ParseWeekday(k); !ok || utils.WeekdayKey(d) != k {
			return utils.NewValidationError("days", fmt.Sprintf("unknown weekday %q", k))
		}
		if err := ValidateDay(k, days[k]); err != nil {
			return err
		}
	}
	return nil
}
