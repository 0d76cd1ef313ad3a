package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// Dates persist in the compact YYYYMMDD form and times as HH:MM; the scan
// and insert helpers below are the only code that touches those encodings.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, patient_name, patient_phone, patient_birth_date,
	appointment_date, appointment_time, duration_minutes, status,
	reminder_sent_at, cancelled_at, cancelled_reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a       Appointment
		dateStr string
		timeStr string
		status  string
	)

	err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.PatientPhone,
		&a.PatientBirthDate,
		&dateStr,
		&timeStr,
		&a.DurationMinutes,
		&status,
		&a.ReminderSentAt,
		&a.CancelledAt,
		&a.CancelledReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date, err = timeops.ParseCompactDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: stored date: %w", a.ID, err)
	}
	a.Time, err = timeops.ParseTimeOfDay(timeStr)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: stored time: %w", a.ID, err)
	}
	a.Status = Status(status)

	return &a, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindScheduledOnDate(ctx context.Context, date timeops.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_date = $1
		  AND status = 'scheduled'
		ORDER BY appointment_time
	`, date.Compact())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) FindDueForReminder(ctx context.Context, dates []timeops.Date) ([]Appointment, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	compact := make([]string, len(dates))
	for i, d := range dates {
		compact[i] = d.Compact()
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_date = ANY($1)
		  AND status = 'scheduled'
		  AND reminder_sent_at IS NULL
		ORDER BY appointment_date, appointment_time
	`, compact)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) Create(ctx context.Context, appt *Appointment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, patient_name, patient_phone, patient_birth_date,
			appointment_date, appointment_time, duration_minutes, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at
	`,
		appt.ID,
		appt.PatientName,
		appt.PatientPhone,
		appt.PatientBirthDate,
		appt.Date.Compact(),
		appt.Time.String(),
		appt.DurationMinutes,
		string(appt.Status),
	)
	if err := row.Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET reminder_sent_at = $2,
		    updated_at = now()
		WHERE id = $1
		  AND reminder_sent_at IS NULL
	`, id, at)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrReminderAlreadySent
	}
	return nil
}

func (r *PgRepository) Cancel(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
		    cancelled_at = $2,
		    cancelled_reason = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'scheduled'
	`, id, at, strings.TrimSpace(reason))
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		appt, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if appt.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		return fmt.Errorf("appointment %s is %s and cannot be cancelled", id, appt.Status)
	}
	return nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
