package schedule

import (
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// Reason tells the conversational layer why a candidate was rejected, so it
// can phrase a specific message instead of a generic failure.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonTooSoonOrPast       Reason = "too_soon_or_past"
	ReasonClinicClosedDate    Reason = "clinic_closed_date"
	ReasonClinicClosedWeekday Reason = "clinic_closed_weekday"
	ReasonNotABookableTime    Reason = "not_a_bookable_time"
)

// IsBookable decides whether one candidate instant may start an appointment.
// Checks run in a fixed order and stop at the first failure; callers depend
// on getting the most specific reason, so the order must not change:
// notice window, closed date, closed weekday, allow-listed time.
func IsBookable(candidate time.Time, sched *clinic.Schedule, now time.Time) (bool, Reason) {
	local := candidate.In(sched.Location)

	if !local.After(now.In(sched.Location).Add(sched.MinAdvanceNotice)) {
		return false, ReasonTooSoonOrPast
	}

	date := timeops.DateOf(local)
	if sched.IsClosedDate(date) {
		return false, ReasonClinicClosedDate
	}

	hours := sched.HoursFor(date.Weekday())
	if len(hours) == 0 {
		return false, ReasonClinicClosedWeekday
	}

	tod := timeops.TimeOfDayOf(local)
	for _, h := range hours {
		if h == tod {
			return true, ReasonNone
		}
	}
	return false, ReasonNotABookableTime
}
