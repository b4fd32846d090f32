// Package jobs runs the scheduled outreach batches. Every batch fans out
// per profile; one failed unit never stops the others.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/metrics"
	"github.com/themobileprof/mamacare-be/internal/outreach"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

// Job names
const (
	JobCheckupReminder = "checkup_reminder"
	JobDailyTips       = "daily_tips"
	JobDailyCalls      = "daily_calls"
	JobWeeklyCalls     = "weekly_calls"
)

// Daily calls go to patients in this week range
const (
	MinCallWeek = 12
	MaxCallWeek = 40
)

// DefaultWeek is assumed when a patient's week is unknown
const DefaultWeek = 20

// Profiles lists profiles of one collection
type Profiles interface {
	List(ctx context.Context, healthType identity.HealthType, activeOnly bool, limit int) ([]*identity.Profile, error)
}

// Sender delivers outbound messages and calls
type Sender interface {
	SendMessage(ctx context.Context, req outreach.MessageRequest) (audit.MessageLog, error)
	PlaceCall(ctx context.Context, req outreach.CallRequest) (audit.CallLog, error)
}

// Summary counts the units of one batch
type Summary struct {
	Job     string `json:"job"`
	Total   int    `json:"total"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: total=%d sent=%d failed=%d skipped=%d", s.Job, s.Total, s.Sent, s.Failed, s.Skipped)
}

type outcome int

const (
	skipped outcome = iota
	sent
	failed
)

// Config configures a Runner
type Config struct {
	// Users is the primary profile collection
	Users Profiles
	// Patients is the legacy collection used by the daily jobs
	Patients    Profiles
	Sender      Sender
	Concurrency int
	Location    *time.Location
	Metrics     *metrics.Metrics
	Logger      *logging.Logger
}

// Runner executes batch jobs
type Runner struct {
	users       Profiles
	patients    Profiles
	sender      Sender
	concurrency int
	loc         *time.Location
	metrics     *metrics.Metrics
	logger      *logging.Logger
	now         func() time.Time
}

// NewRunner creates a job runner
func NewRunner(cfg Config) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Runner{
		users:       cfg.Users,
		patients:    cfg.Patients,
		sender:      cfg.Sender,
		concurrency: cfg.Concurrency,
		loc:         cfg.Location,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// CheckupReminders messages active maternity users whose next checkup
// falls on today's date in the configured timezone
func (r *Runner) CheckupReminders(ctx context.Context) (Summary, error) {
	users, err := r.users.List(ctx, identity.HealthMaternity, true, 0)
	if err != nil {
		return Summary{Job: JobCheckupReminder}, fmt.Errorf("failed to list users: %w", err)
	}
	today := r.now().In(r.loc).Format(time.DateOnly)

	return r.fanOut(ctx, JobCheckupReminder, users, func(ctx context.Context, p *identity.Profile) outcome {
		if p.NextCheckup == nil || p.NextCheckup.In(r.loc).Format(time.DateOnly) != today {
			return skipped
		}
		return r.message(ctx, p, reminderMessage(explicitHindi(p.Language), p.Name), audit.TypeCheckupReminder)
	}), nil
}

// DailyTips sends each patient the tip of the day
func (r *Runner) DailyTips(ctx context.Context) (Summary, error) {
	patients, err := r.patients.List(ctx, "", false, 0)
	if err != nil {
		return Summary{Job: JobDailyTips}, fmt.Errorf("failed to list patients: %w", err)
	}
	now := r.now().In(r.loc)
	tip := TipFor(int(now.Weekday()))

	return r.fanOut(ctx, JobDailyTips, patients, func(ctx context.Context, p *identity.Profile) outcome {
		week := p.LMPWeek(now, DefaultWeek)
		return r.message(ctx, p, tipMessage(tip, tipLanguage(p.Language), p.Name, week), audit.TypeAutomatedDaily)
	}), nil
}

// DailyCalls places a health-tip call to every patient between weeks
// MinCallWeek and MaxCallWeek. The week comes from LMP; patients without
// one are called at DefaultWeek.
func (r *Runner) DailyCalls(ctx context.Context) (Summary, error) {
	patients, err := r.patients.List(ctx, "", false, 0)
	if err != nil {
		return Summary{Job: JobDailyCalls}, fmt.Errorf("failed to list patients: %w", err)
	}
	now := r.now().In(r.loc)

	return r.fanOut(ctx, JobDailyCalls, patients, func(ctx context.Context, p *identity.Profile) outcome {
		week := p.LMPWeek(now, DefaultWeek)
		if week < MinCallWeek || week > MaxCallWeek {
			return skipped
		}
		return r.call(ctx, p, week, audit.TypeAutomatedDaily)
	}), nil
}

// WeeklyCalls calls every active user. The scheduler runs it on
// Monday, Wednesday and Friday.
func (r *Runner) WeeklyCalls(ctx context.Context) (Summary, error) {
	users, err := r.users.List(ctx, "", true, 0)
	if err != nil {
		return Summary{Job: JobWeeklyCalls}, fmt.Errorf("failed to list users: %w", err)
	}

	return r.fanOut(ctx, JobWeeklyCalls, users, func(ctx context.Context, p *identity.Profile) outcome {
		return r.call(ctx, p, p.PregnancyWeek, audit.TypeScheduledWeekly)
	}), nil
}

// WeeklyCallDay reports whether t falls on a weekly call day
func WeeklyCallDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Monday, time.Wednesday, time.Friday:
		return true
	}
	return false
}

func (r *Runner) message(ctx context.Context, p *identity.Profile, body, logType string) outcome {
	if identity.NormalizePhone(p.Phone) == "" {
		return skipped
	}
	_, err := r.sender.SendMessage(ctx, outreach.MessageRequest{
		PatientID:   p.ID,
		PatientName: p.Name,
		Phone:       p.Phone,
		Body:        body,
		Type:        logType,
	})
	if err != nil {
		r.logger.Error("batch message failed", "type", logType, "profile_id", p.ID, "error", err)
		return failed
	}
	return sent
}

func (r *Runner) call(ctx context.Context, p *identity.Profile, week int, logType string) outcome {
	if identity.NormalizePhone(p.Phone) == "" {
		return skipped
	}
	_, err := r.sender.PlaceCall(ctx, outreach.CallRequest{
		PatientID:   p.ID,
		PatientName: p.Name,
		Phone:       p.Phone,
		Week:        week,
		Language:    p.Language,
		Type:        logType,
	})
	if err != nil {
		r.logger.Error("batch call failed", "type", logType, "profile_id", p.ID, "error", err)
		return failed
	}
	return sent
}

// fanOut runs unit for every profile with bounded concurrency. Units
// report their outcome instead of returning errors, so the group never
// cancels.
func (r *Runner) fanOut(ctx context.Context, job string, profiles []*identity.Profile, unit func(context.Context, *identity.Profile) outcome) Summary {
	start := time.Now()
	var nSent, nFailed, nSkipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, p := range profiles {
		p := p
		g.Go(func() error {
			var o outcome
			if gctx.Err() != nil {
				o = failed
			} else {
				o = unit(gctx, p)
			}
			switch o {
			case sent:
				nSent.Add(1)
				r.metrics.ObserveJobUnit(job, "sent")
			case failed:
				nFailed.Add(1)
				r.metrics.ObserveJobUnit(job, "failed")
			default:
				nSkipped.Add(1)
				r.metrics.ObserveJobUnit(job, "skipped")
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{
		Job:     job,
		Total:   len(profiles),
		Sent:    int(nSent.Load()),
		Failed:  int(nFailed.Load()),
		Skipped: int(nSkipped.Load()),
	}
	r.logger.Info("job finished",
		"job", job,
		"total", summary.Total,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"elapsed", time.Since(start).String(),
	)
	return summary
}

// TriggerItem is one unit of a manual trigger
type TriggerItem struct {
	Patient    string `json:"patient"`
	MessageSID string `json:"messageSid,omitempty"`
	CallSID    string `json:"callSid,omitempty"`
	Week       int    `json:"week,omitempty"`
}

// TriggerResult is returned by the manual triggers
type TriggerResult struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Messages []TriggerItem `json:"messages,omitempty"`
	Calls    []TriggerItem `json:"calls,omitempty"`
}

const noPatientsMessage = "No patients found"

// TriggerDailyWhatsApp sends a test message to the first limit patients.
// The first carrier failure aborts the trigger.
func (r *Runner) TriggerDailyWhatsApp(ctx context.Context, limit int) (TriggerResult, error) {
	patients, err := r.firstPatients(ctx, limit)
	if err != nil || len(patients) == 0 {
		return noPatients(err)
	}

	result := TriggerResult{Success: true, Messages: []TriggerItem{}}
	for _, p := range patients {
		if identity.NormalizePhone(p.Phone) == "" {
			continue
		}
		rec, err := r.sender.SendMessage(ctx, outreach.MessageRequest{
			PatientID:   p.ID,
			PatientName: p.Name,
			Phone:       p.Phone,
			Body:        testMessage(p.Name),
			Type:        audit.TypeManualTrigger,
		})
		if err != nil {
			return TriggerResult{}, internalError(err)
		}
		result.Messages = append(result.Messages, TriggerItem{Patient: p.Name, MessageSID: rec.MessageSID})
	}
	return result, nil
}

// TriggerDailyCalls calls the first limit patients
func (r *Runner) TriggerDailyCalls(ctx context.Context, limit int) (TriggerResult, error) {
	patients, err := r.firstPatients(ctx, limit)
	if err != nil || len(patients) == 0 {
		return noPatients(err)
	}

	now := r.now().In(r.loc)
	result := TriggerResult{Success: true, Calls: []TriggerItem{}}
	for _, p := range patients {
		if identity.NormalizePhone(p.Phone) == "" {
			continue
		}
		week := p.LMPWeek(now, DefaultWeek)
		rec, err := r.sender.PlaceCall(ctx, outreach.CallRequest{
			PatientID:   p.ID,
			PatientName: p.Name,
			Phone:       p.Phone,
			Week:        week,
			Language:    p.Language,
			Type:        audit.TypeManualTrigger,
		})
		if err != nil {
			return TriggerResult{}, internalError(err)
		}
		result.Calls = append(result.Calls, TriggerItem{Patient: p.Name, CallSID: rec.CallSID, Week: week})
	}
	return result, nil
}

func (r *Runner) firstPatients(ctx context.Context, limit int) ([]*identity.Profile, error) {
	if limit <= 0 {
		limit = 1
	}
	patients, err := r.patients.List(ctx, "", false, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func noPatients(err error) (TriggerResult, error) {
	if err != nil {
		return TriggerResult{}, internalError(err)
	}
	return TriggerResult{Success: false, Message: noPatientsMessage}, nil
}

// internalError reports trigger failures as internal, keeping the
// carrier's message
func internalError(err error) *outreach.Error {
	msg := err.Error()
	var oerr *outreach.Error
	if errors.As(err, &oerr) {
		msg = oerr.Message
	}
	return &outreach.Error{Kind: outreach.Internal, Message: strings.TrimSpace(msg), Err: err}
}
