package availability

import (
	"testing"
	"time"

	"reservo/models"
	"reservo/utils"
)

func recurring(start time.Time, length time.Duration, freq models.RecurrenceFrequency, interval int, end *time.Time) models.UnavailableBlock {
	return models.UnavailableBlock{
		ID:                "blk",
		ProfessionalID:    "p1",
		StartDate:         start,
		EndDate:           start.Add(length),
		Type:              models.UnavailableBreak,
		IsRecurring:       true,
		RecurrencePattern: &models.RecurrencePattern{Frequency: freq, Interval: interval, EndDate: end},
	}
}

func assertStarts(t *testing.T, occs []models.Occurrence, want []time.Time) {
	t.Helper()
	if len(occs) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(occs), len(want))
	}
	for i := range want {
		if !occs[i].StartDate.Equal(want[i]) {
			t.Fatalf("occurrence %d starts %s, want %s", i, occs[i].StartDate, want[i])
		}
	}
}

func TestExpandWeeklyBreakOverThreeWeeks(t *testing.T) {
	block := recurring(time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC), 30*time.Minute, models.FrequencyWeekly, 1, nil)
	from := time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 21)

	occs, err := Expander{}.Expand(block, from, to, time.UTC)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}
	for i, o := range occs {
		want := time.Date(2030, 1, 7+7*i, 12, 0, 0, 0, time.UTC)
		if !o.StartDate.Equal(want) {
			t.Fatalf("occurrence %d starts %s, want %s", i, o.StartDate, want)
		}
		if o.EndDate.Sub(o.StartDate) != 30*time.Minute {
			t.Fatalf("occurrence %d lasts %s", i, o.EndDate.Sub(o.StartDate))
		}
	}
}

func TestExpandMonthlyClampsToLastDay(t *testing.T) {
	block := recurring(time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC), time.Hour, models.FrequencyMonthly, 1, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)

	occs, err := Expander{}.Expand(block, from, to, time.UTC)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []time.Time{
		time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC),
	}
	assertStarts(t, occs, want)
}

func TestExpandMonthlyIntervalSkipsAhead(t *testing.T) {
	block := recurring(time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC), time.Hour, models.FrequencyMonthly, 2, nil)
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 23, 0, 0, 0, time.UTC)

	occs, err := Expander{}.Expand(block, from, to, time.UTC)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []time.Time{
		time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 31, 10, 0, 0, 0, time.UTC),
	}
	assertStarts(t, occs, want)
}

func TestExpandDailyMatchesStepping(t *testing.T) {
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	block := recurring(start, time.Hour, models.FrequencyDaily, 3, nil)
	from := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2030, 3, 20, 0, 0, 0, 0, time.UTC)

	occs, err := Expander{MaxOccurrences: 50}.Expand(block, from, to, time.UTC)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	var want []time.Time
	for cur := start; !cur.After(to); cur = cur.AddDate(0, 0, 3) {
		if !cur.Before(from) {
			want = append(want, cur)
		}
	}
	assertStarts(t, occs, want)
}

func TestExpandIsRestartable(t *testing.T) {
	block := recurring(time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC), 30*time.Minute, models.FrequencyWeekly, 1, nil)
	a := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)
	c := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	x := Expander{}

	full, err := x.Expand(block, a, c, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	first, err := x.Expand(block, a, b, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	second, err := x.Expand(block, b, c, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	joined := append(first, second...)
	want := make([]time.Time, len(full))
	for i, o := range full {
		want[i] = o.StartDate
	}
	assertStarts(t, joined, want)
}

func TestExpandStopsAtPatternEnd(t *testing.T) {
	end := time.Date(2030, 1, 9, 9, 0, 0, 0, time.UTC)
	block := recurring(time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC), time.Hour, models.FrequencyDaily, 1, &end)
	occs, err := Expander{}.Expand(block, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences up to and including the end date, got %d", len(occs))
	}
}

func TestExpandFailsFastPastLimit(t *testing.T) {
	block := recurring(time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC), time.Hour, models.FrequencyDaily, 1, nil)
	_, err := Expander{MaxOccurrences: 3}.Expand(block, time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 20, 0, 0, 0, 0, time.UTC), time.UTC)
	if !utils.IsPolicyViolation(err) {
		t.Fatalf("expected policy violation, got %v", err)
	}
}

func TestExpandIgnoresOneOffBlocks(t *testing.T) {
	block := recurring(time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC), time.Hour, models.FrequencyDaily, 1, nil)
	block.IsRecurring = false
	occs, err := Expander{}.Expand(block, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	if err != nil || occs != nil {
		t.Fatalf("expected nothing for a one-off block, got %v, %v", occs, err)
	}
}

func TestExpandKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	block := recurring(time.Date(2024, 3, 4, 9, 0, 0, 0, loc), time.Hour, models.FrequencyWeekly, 1, nil)
	occs, err := Expander{}.Expand(block, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), time.Date(2024, 3, 20, 0, 0, 0, 0, loc), loc)
	if err != nil {
		t.Fatal(err)
	}
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}
	for _, o := range occs {
		if local := o.StartDate.In(loc); local.Hour() != 9 {
			t.Fatalf("occurrence drifted to %s", local)
		}
	}
}
