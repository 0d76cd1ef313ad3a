package timeops

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrInvalidDateFormat = errors.New("date must be in DD/MM/YYYY format")
	ErrInvalidDate       = errors.New("date does not exist on the calendar")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
)

// Exactly two digits for day and month, four for year. Single-digit
// components are rejected on purpose: a lenient parser hands patients
// the wrong date silently.
var (
	displayDateRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	compactDateRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	timeOfDayRe   = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// Date is a calendar date with no time-of-day and no timezone attached.
// It only becomes an instant through Combine.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDisplayDate parses the strict user-facing DD/MM/YYYY form.
func ParseDisplayDate(s string) (Date, error) {
	m := displayDateRe.FindStringSubmatch(s)
	if m == nil {
		return Date{}, ErrInvalidDateFormat
	}
	return newDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
}

// ParseCompactDate parses the persisted YYYYMMDD form.
func ParseCompactDate(s string) (Date, error) {
	m := compactDateRe.FindStringSubmatch(s)
	if m == nil {
		return Date{}, fmt.Errorf("%w: want YYYYMMDD, got %q", ErrInvalidDateFormat, s)
	}
	return newDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

func newDate(year, month, day int) (Date, error) {
	// Round-trip through time.Date catches impossible dates such as 31/02,
	// which normalization would otherwise slide into March.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, ErrInvalidDate
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// DateOf extracts the calendar date of an instant in the instant's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Compact renders the persisted YYYYMMDD form.
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// Display renders the user-facing DD/MM/YYYY form.
func (d Date) Display() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// Weekday reports the day of the week this date falls on.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return DateOf(t)
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses the strict HH:MM form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayRe.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, ErrInvalidTimeFormat
	}
	hour, minute := atoi(m[1]), atoi(m[2])
	if hour > 23 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q is out of range", ErrInvalidTimeFormat, s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeOfDayOf extracts the wall-clock time of an instant in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesOfDay returns minutes elapsed since midnight, for ordering.
func (t TimeOfDay) MinutesOfDay() int {
	return t.Hour*60 + t.Minute
}

// Combine joins a calendar date and a wall-clock time into an instant in loc.
// Every instant that leaves this package carries its zone; naive timestamps
// never cross a component boundary.
func Combine(d Date, t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// atoi is safe here: all callers pass digit-only regexp captures.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
