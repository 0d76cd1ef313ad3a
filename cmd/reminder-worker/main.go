package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/logging"
	"github.com/clinicdesk/clinic-scheduling/internal/notify"
	"github.com/clinicdesk/clinic-scheduling/internal/reminder"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("reminder-worker", "dev")
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New("reminder-worker", cfg.Env)
	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("offset", cfg.ReminderOffset).
		Dur("width", cfg.ReminderWidth).
		Msg("reminder-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedules, err := clinic.NewHolder(clinic.FileSource{Path: cfg.ClinicFile})
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.ClinicFile).Msg("clinic schedule load error")
	}

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	sender, err := notify.NewWhatsAppCloudSender(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID)
	if err != nil {
		log.Fatal().Err(err).Msg("whatsapp sender init error")
	}

	loc := schedules.Current().Location
	dispatcher := reminder.NewDispatcher(
		appointment.NewPgRepository(pgPool),
		sender,
		reminder.Window{Offset: cfg.ReminderOffset, Width: cfg.ReminderWidth},
		timeops.NewSystemClock(loc),
		loc,
		cfg.ClinicAddress,
		log,
	)

	// Run once at startup.
	runOnce(rootCtx, dispatcher, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, dispatcher, log)
		}
	}
}

func runOnce(ctx context.Context, d *reminder.Dispatcher, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	sent, err := d.Run(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("reminder sweep error")
		return
	}
	log.Info().Int("sent", sent).Dur("took", time.Since(start)).Msg("reminder sweep complete")
}
