package schedule

import (
	"fmt"
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// Interval is a half-open [Start, End) span of occupied calendar time.
// Only SCHEDULED appointments should be turned into intervals; cancelled and
// completed ones never block.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses the half-open test: a slot that starts exactly when another
// appointment ends is not a conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// BusyQuery returns the occupied intervals for one date. A query error must
// abort the scan: an unanswered conflict check is never treated as "free".
type BusyQuery func(date timeops.Date) ([]Interval, error)

// SlotsForDate enumerates the bookable start instants on one date: every
// allow-listed time for that weekday that passes IsBookable and does not
// overlap an occupied interval. Results are chronological.
func SlotsForDate(date timeops.Date, sched *clinic.Schedule, busy []Interval, durationMinutes int, now time.Time) []time.Time {
	duration := time.Duration(durationMinutes) * time.Minute

	var slots []time.Time
	for _, tod := range sched.HoursFor(date.Weekday()) {
		candidate := timeops.Combine(date, tod, sched.Location)
		if ok, _ := IsBookable(candidate, sched, now); !ok {
			continue
		}

		slot := Interval{Start: candidate, End: candidate.Add(duration)}
		conflict := false
		for _, b := range busy {
			if slot.Overlaps(b) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, candidate)
		}
	}
	return slots
}

// NextAvailableSlots scans forward from `after` for up to maxDaysLookahead
// calendar days and collects at most `limit` bookable instants at or after
// `after`, in chronological order. `now` anchors the advance-notice check,
// which stays relative to the wall clock even when `after` is in the future.
// Exhausting the window returns a short result, not an error: absent
// availability is a normal outcome.
func NextAvailableSlots(after time.Time, sched *clinic.Schedule, limit int, query BusyQuery, maxDaysLookahead int, now time.Time) ([]time.Time, error) {
	if limit <= 0 {
		return nil, nil
	}

	var results []time.Time
	date := timeops.DateOf(after.In(sched.Location))

	for day := 0; day < maxDaysLookahead && len(results) < limit; day++ {
		if sched.IsClosedDate(date) {
			date = date.AddDays(1)
			continue
		}
		if len(sched.HoursFor(date.Weekday())) == 0 {
			date = date.AddDays(1)
			continue
		}

		busy, err := query(date)
		if err != nil {
			// Fail closed: without a trustworthy conflict check nothing on
			// this date may be offered.
			return nil, fmt.Errorf("query appointments for %s: %w", date.Compact(), err)
		}

		for _, slot := range SlotsForDate(date, sched, busy, sched.ConsultationMinutes, now) {
			if slot.Before(after) {
				continue
			}
			results = append(results, slot)
			if len(results) == limit {
				break
			}
		}

		date = date.AddDays(1)
	}

	return results, nil
}
