package reminder

import (
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// Window describes the band before an appointment in which the one-time
// reminder should fire: centered Offset ahead of now, Width wide. The
// dispatch job polls, so the band must be wide enough that no appointment
// slips between runs.
type Window struct {
	Offset time.Duration
	Width  time.Duration
}

// DefaultWindow notifies patients 22 to 24 hours before the appointment.
var DefaultWindow = Window{Offset: 23 * time.Hour, Width: 2 * time.Hour}

// Bounds resolves the window to an explicit half-open [lower, upper) pair.
func (w Window) Bounds(now time.Time) (lower, upper time.Time) {
	center := now.Add(w.Offset)
	return center.Add(-w.Width / 2), center.Add(w.Width / 2)
}

// CandidateDates lists the calendar dates the window can touch, for the
// repository's coarse pre-filter.
func (w Window) CandidateDates(now time.Time, loc *time.Location) []timeops.Date {
	lower, upper := w.Bounds(now)

	var dates []timeops.Date
	d := timeops.DateOf(lower.In(loc))
	last := timeops.DateOf(upper.In(loc))
	for !last.Before(d) {
		dates = append(dates, d)
		d = d.AddDays(1)
	}
	return dates
}

// DueForReminder filters candidates down to appointments whose start instant
// falls inside the window and which have not been notified yet. Only
// scheduled appointments qualify; the caller persists reminder_sent_at after
// a successful dispatch, which is what keeps a second run inside the same
// window from re-notifying.
func DueForReminder(now time.Time, w Window, candidates []appointment.Appointment, loc *time.Location) []appointment.Appointment {
	lower, upper := w.Bounds(now)

	var due []appointment.Appointment
	for _, a := range candidates {
		if a.Status != appointment.StatusScheduled {
			continue
		}
		if a.ReminderSentAt != nil {
			continue
		}
		start := a.StartAt(loc)
		if start.Before(lower) || !start.Before(upper) {
			continue
		}
		due = append(due, a)
	}
	return due
}
