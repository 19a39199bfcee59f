package availability

import (
	"sort"
	"time"

	"reservo/models"
	"reservo/utils"
)

// Kinds of busy intervals.
const (
	KindBooking     = "booking"
	KindUnavailable = "unavailable_block"
)

// Busy is an interval during which a professional cannot take a booking.
type Busy struct {
	Kind  string
	ID    string
	Type  models.UnavailableType // set for unavailable blocks
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [s1, e1) and [s2, e2) intersect. Intervals that
// only touch at an endpoint do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// MarkConflicts returns a copy of slots with IsAvailable cleared on every
// slot that overlaps a busy interval. Slots are never removed.
func MarkConflicts(slots []models.AvailabilitySlot, busy []Busy) []models.AvailabilitySlot {
	out := make([]models.AvailabilitySlot, len(slots))
	copy(out, slots)
	for i := range out {
		for _, b := range busy {
			if Overlaps(out[i].StartDate, out[i].EndDate, b.Start, b.End) {
				out[i].IsAvailable = false
				break
			}
		}
	}
	return out
}

// Conflicting returns a reference to every busy interval overlapping
// [start, end), ordered by start.
func Conflicting(busy []Busy, start, end time.Time) []utils.ConflictRef {
	var refs []utils.ConflictRef
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			refs = append(refs, utils.ConflictRef{Kind: b.Kind, ID: b.ID, StartDate: b.Start, EndDate: b.End})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].StartDate.Before(refs[j].StartDate) })
	return refs
}
