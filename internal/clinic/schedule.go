package clinic

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

var (
	ErrInvalidDuration = errors.New("consultation duration must be positive")
	ErrNoOpeningHours  = errors.New("schedule has no bookable times on any weekday")
	ErrUnknownTimezone = errors.New("unknown clinic timezone")
	ErrNegativeNotice  = errors.New("minimum advance notice cannot be negative")
)

// Schedule is the clinic's operating rules: a fixed menu of bookable start
// times per weekday, fully closed dates, consultation length and the minimum
// advance-notice policy. Immutable once built; Holder swaps whole values on
// reload.
type Schedule struct {
	WeeklyHours         map[time.Weekday][]timeops.TimeOfDay
	ClosedDates         map[timeops.Date]struct{}
	ConsultationMinutes int
	MinAdvanceNotice    time.Duration
	Location            *time.Location
}

// ConsultationDuration returns the consultation length as a duration.
func (s *Schedule) ConsultationDuration() time.Duration {
	return time.Duration(s.ConsultationMinutes) * time.Minute
}

// HoursFor returns the bookable start times for a weekday, sorted
// chronologically. Empty means the clinic is closed that weekday.
func (s *Schedule) HoursFor(day time.Weekday) []timeops.TimeOfDay {
	return s.WeeklyHours[day]
}

// IsClosedDate reports whether the date is a declared holiday, which
// overrides the weekday rules.
func (s *Schedule) IsClosedDate(d timeops.Date) bool {
	_, closed := s.ClosedDates[d]
	return closed
}

// validate is the load-time gate: a schedule that cannot be reasoned about
// must never serve queries.
func (s *Schedule) validate() error {
	if s.ConsultationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if s.MinAdvanceNotice < 0 {
		return ErrNegativeNotice
	}
	open := false
	for _, hours := range s.WeeklyHours {
		if len(hours) > 0 {
			open = true
			break
		}
	}
	if !open {
		return ErrNoOpeningHours
	}
	return nil
}

// normalize sorts each weekday's allow-list and collapses duplicate entries,
// so availability results come out chronological even when the config file
// lists times out of order.
func (s *Schedule) normalize() {
	for day, hours := range s.WeeklyHours {
		sort.Slice(hours, func(i, j int) bool {
			return hours[i].MinutesOfDay() < hours[j].MinutesOfDay()
		})
		dedup := hours[:0]
		for i, h := range hours {
			if i == 0 || h != hours[i-1] {
				dedup = append(dedup, h)
			}
		}
		s.WeeklyHours[day] = dedup
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdayNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q in weekly_hours", name)
	}
	return day, nil
}
