package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrReminderAlreadySent = errors.New("reminder already sent for appointment")
	ErrAlreadyCancelled    = errors.New("appointment is already cancelled")
)

// Repository contains all DB interactions needed by the booking service and
// the reminder worker.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindScheduledOnDate feeds the conflict check: only appointments with
	// status scheduled come back.
	FindScheduledOnDate(ctx context.Context, date timeops.Date) ([]Appointment, error)

	// FindDueForReminder is a coarse pre-filter by candidate dates; the
	// reminder package does the fine-grained windowing.
	FindDueForReminder(ctx context.Context, dates []timeops.Date) ([]Appointment, error)

	Create(ctx context.Context, appt *Appointment) error

	// MarkReminderSent sets reminder_sent_at exactly once; a second call for
	// the same appointment returns ErrReminderAlreadySent.
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// Cancel is a soft delete: status flips to cancelled and the slot frees
	// immediately; the row is never removed.
	Cancel(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}
