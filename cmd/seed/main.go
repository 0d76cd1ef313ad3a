package main

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/logging"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

const seedDays = 30

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("seed", "dev")
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New("seed", cfg.Env)
	log.Info().Str("file", cfg.ClinicFile).Msg("seed starting")

	sched, err := clinic.FileSource{Path: cfg.ClinicFile}.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("clinic schedule load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	created, err := seedAppointments(context.Background(), pool, sched)
	if err != nil {
		log.Fatal().Err(err).Msg("seed appointments error")
	}

	log.Info().Int("created", created).Msg("seed complete")
}

// seedAppointments books a random share of each open day's slots over the
// next seedDays days. Slots within a day are unique, so the result has no
// conflicts by construction.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, sched *clinic.Schedule) (int, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	day := timeops.DateOf(time.Now().In(sched.Location))
	created := 0

	for i := 0; i < seedDays; i++ {
		day = day.AddDays(1)
		if sched.IsClosedDate(day) {
			continue
		}

		for _, slot := range sched.HoursFor(day.Weekday()) {
			// Leave roughly a third of the slots open.
			if gofakeit.Number(0, 2) == 0 {
				continue
			}

			phone := appointment.NormalizePhone(gofakeit.Phone())
			birth := gofakeit.DateRange(
				time.Date(1940, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2010, time.December, 31, 0, 0, 0, 0, time.UTC),
			).Format("02/01/2006")

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (
					id, patient_name, patient_phone, patient_birth_date,
					appointment_date, appointment_time, duration_minutes, status,
					created_at, updated_at
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, 'scheduled', now(), now())
			`, uuid.New(), gofakeit.Name(), phone, birth,
				day.Compact(), slot.String(), sched.ConsultationMinutes)
			if err != nil {
				return 0, err
			}
			created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return created, nil
}
