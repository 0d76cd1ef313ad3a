package appointment

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/schedule"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

type Status string

const (
	// StatusScheduled is the only status that occupies calendar time.
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Appointment struct {
	ID               uuid.UUID
	PatientName      string
	PatientPhone     string
	PatientBirthDate string // DD/MM/YYYY as given, identity only, not validated here
	Date             timeops.Date
	Time             timeops.TimeOfDay
	// DurationMinutes is copied from the schedule at creation and stored
	// independently, so later config edits cannot corrupt existing bookings.
	DurationMinutes int
	Status          Status
	ReminderSentAt  *time.Time
	CancelledAt     *time.Time
	CancelledReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StartAt returns the appointment's zoned start instant.
func (a *Appointment) StartAt(loc *time.Location) time.Time {
	return timeops.Combine(a.Date, a.Time, loc)
}

// Interval returns the occupied [start, start+duration) span.
func (a *Appointment) Interval(loc *time.Location) schedule.Interval {
	start := a.StartAt(loc)
	return schedule.Interval{
		Start: start,
		End:   start.Add(time.Duration(a.DurationMinutes) * time.Minute),
	}
}

// Blocks reports whether this appointment occupies calendar time.
// Cancelled and completed appointments never block a new booking.
func (a *Appointment) Blocks() bool {
	return a.Status == StatusScheduled
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone strips formatting and prefixes the Brazilian country code
// when it is missing. Returns "" for input that cannot be a phone number.
func NormalizePhone(phone string) string {
	clean := nonDigits.ReplaceAllString(phone, "")
	if clean == "" || len(clean) > 15 {
		return ""
	}
	if len(clean) >= 10 && clean[:2] != "55" {
		clean = "55" + clean
	}
	return clean
}
