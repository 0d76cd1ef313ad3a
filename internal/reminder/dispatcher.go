package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// Store is the slice of the appointment repository the dispatcher needs.
type Store interface {
	FindDueForReminder(ctx context.Context, dates []timeops.Date) ([]appointment.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TextSender delivers one outbound message. One-way: delivery status beyond
// the immediate error is not this package's concern.
type TextSender interface {
	SendText(ctx context.Context, to, body string) error
}

// Dispatcher finds appointments inside the reminder window and notifies each
// patient once. Safe to run on any interval shorter than the window width.
type Dispatcher struct {
	store         Store
	sender        TextSender
	window        Window
	clock         timeops.Clock
	loc           *time.Location
	clinicAddress string
	log           zerolog.Logger
}

func NewDispatcher(store Store, sender TextSender, window Window, clock timeops.Clock, loc *time.Location, clinicAddress string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:         store,
		sender:        sender,
		window:        window,
		clock:         clock,
		loc:           loc,
		clinicAddress: clinicAddress,
		log:           log,
	}
}

// Run processes one reminder sweep and returns how many reminders went out.
// A failed send leaves reminder_sent_at null so the next sweep retries it;
// marking happens only after the message is away.
func (d *Dispatcher) Run(ctx context.Context) (int, error) {
	now := d.clock.Now()

	candidates, err := d.store.FindDueForReminder(ctx, d.window.CandidateDates(now, d.loc))
	if err != nil {
		return 0, fmt.Errorf("find reminder candidates: %w", err)
	}

	due := DueForReminder(now, d.window, candidates, d.loc)
	if len(due) == 0 {
		return 0, nil
	}

	d.log.Info().Int("count", len(due)).Msg("dispatching appointment reminders")

	sent := 0
	for i := range due {
		a := &due[i]
		if err := d.dispatchOne(ctx, a, now); err != nil {
			d.log.Error().Err(err).
				Str("appointment_id", a.ID.String()).
				Msg("reminder dispatch failed")
			continue
		}
		sent++
	}
	return sent, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, a *appointment.Appointment, now time.Time) error {
	body := FormatPreAppointmentReminder(a.PatientName, a.StartAt(d.loc), d.clinicAddress)

	if err := d.sender.SendText(ctx, a.PatientPhone, body); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	if err := d.store.MarkReminderSent(ctx, a.ID, now); err != nil {
		// Another sweep won the race between send and mark; the patient was
		// notified either way.
		if errors.Is(err, appointment.ErrReminderAlreadySent) {
			return nil
		}
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	d.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("phone", a.PatientPhone).
		Msg("reminder sent")
	return nil
}
