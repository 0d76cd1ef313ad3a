package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
	"github.com/clinicdesk/clinic-scheduling/internal/schedule"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

const DefaultLookaheadDays = 60

var (
	ErrSlotTaken       = errors.New("slot already has a scheduled appointment")
	ErrDateBeingBooked = errors.New("another booking for this date is in progress, please retry")
	ErrMissingPatient  = errors.New("patient name and phone are required")
)

// NotBookableError carries the policy rejection reason so the conversational
// layer can phrase a specific message.
type NotBookableError struct {
	Reason schedule.Reason
}

func (e *NotBookableError) Error() string {
	return fmt.Sprintf("slot is not bookable: %s", e.Reason)
}

// Service owns the booking flow. The schedule, repository and locker are
// injected; the service itself keeps no mutable state.
type Service struct {
	repo          Repository
	locker        redisclient.Locker
	schedules     *clinic.Holder
	clock         timeops.Clock
	lookaheadDays int
	log           zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, schedules *clinic.Holder, clock timeops.Clock, log zerolog.Logger) *Service {
	return &Service{
		repo:          repo,
		locker:        locker,
		schedules:     schedules,
		clock:         clock,
		lookaheadDays: DefaultLookaheadDays,
		log:           log,
	}
}

// WithLookaheadDays changes how far NextSlots scans. Mostly for tests.
func (s *Service) WithLookaheadDays(days int) *Service {
	s.lookaheadDays = days
	return s
}

// busyIntervals loads the occupied spans for one date. Errors propagate so
// callers fail closed instead of treating the date as free.
func (s *Service) busyIntervals(ctx context.Context, sched *clinic.Schedule, date timeops.Date) ([]schedule.Interval, error) {
	existing, err := s.repo.FindScheduledOnDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load appointments for %s: %w", date.Compact(), err)
	}
	busy := make([]schedule.Interval, 0, len(existing))
	for i := range existing {
		if existing[i].Blocks() {
			busy = append(busy, existing[i].Interval(sched.Location))
		}
	}
	return busy, nil
}

// Availability returns the bookable start instants for one date.
func (s *Service) Availability(ctx context.Context, date timeops.Date) ([]time.Time, error) {
	sched := s.schedules.Current()
	busy, err := s.busyIntervals(ctx, sched, date)
	if err != nil {
		return nil, err
	}
	return schedule.SlotsForDate(date, sched, busy, sched.ConsultationMinutes, s.clock.Now()), nil
}

// NextSlots returns up to limit bookable instants at or after `after`.
func (s *Service) NextSlots(ctx context.Context, after time.Time, limit int) ([]time.Time, error) {
	sched := s.schedules.Current()
	query := func(date timeops.Date) ([]schedule.Interval, error) {
		return s.busyIntervals(ctx, sched, date)
	}
	return schedule.NextAvailableSlots(after, sched, limit, query, s.lookaheadDays, s.clock.Now())
}

// BookingRequest is a patient's confirmed slot choice.
type BookingRequest struct {
	PatientName      string
	PatientPhone     string
	PatientBirthDate string
	Date             timeops.Date
	Time             timeops.TimeOfDay
}

// Book validates the candidate against clinic policy and, inside the per-date
// lock, re-checks conflicts against a fresh snapshot before writing. The
// availability answer a patient saw earlier is only valid at the instant its
// snapshot was taken, so the re-check is not optional.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	phone := NormalizePhone(req.PatientPhone)
	if req.PatientName == "" || phone == "" {
		return nil, ErrMissingPatient
	}

	sched := s.schedules.Current()
	now := s.clock.Now()
	candidate := timeops.Combine(req.Date, req.Time, sched.Location)

	if ok, reason := schedule.IsBookable(candidate, sched, now); !ok {
		return nil, &NotBookableError{Reason: reason}
	}

	appt := &Appointment{
		ID:               uuid.New(),
		PatientName:      req.PatientName,
		PatientPhone:     phone,
		PatientBirthDate: req.PatientBirthDate,
		Date:             req.Date,
		Time:             req.Time,
		DurationMinutes:  sched.ConsultationMinutes,
		Status:           StatusScheduled,
	}

	err := s.locker.WithDateLock(ctx, req.Date, func(lockCtx context.Context) error {
		busy, err := s.busyIntervals(lockCtx, sched, req.Date)
		if err != nil {
			// Fail closed: an unanswered conflict check rejects the booking.
			return err
		}

		slot := schedule.Interval{
			Start: candidate,
			End:   candidate.Add(sched.ConsultationDuration()),
		}
		for _, b := range busy {
			if slot.Overlaps(b) {
				return ErrSlotTaken
			}
		}

		if err := s.repo.Create(lockCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDateBeingBooked
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("date", appt.Date.Compact()).
		Str("time", appt.Time.String()).
		Msg("appointment booked")

	return appt, nil
}

// Get retrieves one appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Cancel soft-cancels a scheduled appointment, freeing its slot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	if err := s.repo.Cancel(ctx, id, reason, s.clock.Now()); err != nil {
		return err
	}
	s.log.Info().
		Str("appointment_id", id.String()).
		Str("reason", reason).
		Msg("appointment cancelled")
	return nil
}
