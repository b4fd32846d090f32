package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/config"
	"github.com/themobileprof/mamacare-be/internal/db"
	"github.com/themobileprof/mamacare-be/internal/jobs"
	"github.com/themobileprof/mamacare-be/internal/outreach"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

// Run from a scheduler, e.g.
//
//	jobs -job daily_tips
//	jobs -job weekly_calls          (skips unless Mon/Wed/Fri)
//	jobs -job weekly_calls -force
func main() {
	job := flag.String("job", "", fmt.Sprintf("job to run: %s, %s, %s or %s",
		jobs.JobCheckupReminder, jobs.JobDailyTips, jobs.JobDailyCalls, jobs.JobWeeklyCalls))
	force := flag.Bool("force", false, "run weekly_calls on any day")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall deadline")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", "mamacare-jobs", "job", *job)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	database, err := db.New(db.Config{URL: cfg.DatabaseURL, MaxConnections: cfg.JobConcurrency + 2})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	carrier := twilio.NewClient(twilio.Config{
		AccountSID:     cfg.TwilioAccountSID,
		AuthToken:      cfg.TwilioAuthToken,
		VoiceNumber:    cfg.TwilioPhoneNumber,
		WhatsAppNumber: cfg.TwilioWhatsAppNumber,
	}, logger)
	if !carrier.Configured() {
		logger.Error("Twilio credentials are required")
		os.Exit(1)
	}
	sender := outreach.NewService(carrier, audit.NewLogger(database.Audit()), cfg.PublicBaseURL, logger)

	runner := jobs.NewRunner(jobs.Config{
		Users:       database.Users(),
		Patients:    database.Patients(),
		Sender:      sender,
		Concurrency: cfg.JobConcurrency,
		Location:    cfg.Location(),
		Logger:      logger,
	})

	var summary jobs.Summary
	switch *job {
	case jobs.JobCheckupReminder:
		summary, err = runner.CheckupReminders(ctx)
	case jobs.JobDailyTips:
		summary, err = runner.DailyTips(ctx)
	case jobs.JobDailyCalls:
		summary, err = runner.DailyCalls(ctx)
	case jobs.JobWeeklyCalls:
		if today := time.Now().In(cfg.Location()); !*force && !jobs.WeeklyCallDay(today) {
			logger.Info("not a weekly call day, skipping", "weekday", today.Weekday().String())
			return
		}
		summary, err = runner.WeeklyCalls(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("job failed", "error", err)
		os.Exit(1)
	}
	logger.Info("job finished", "summary", summary.String())
}
