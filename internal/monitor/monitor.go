// Package monitor reacts to new checkups and cycle logs: it keeps the
// profile risk current and escalates high-risk entries.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/escalation"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/risk"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

// ErrInvalidEntry is returned for submissions without a user
var ErrInvalidEntry = errors.New("monitor: userId is required")

// Records stores checkups and cycle logs
type Records interface {
	InsertCheckup(ctx context.Context, c *risk.Checkup) error
	RecentCheckupRisks(ctx context.Context, userID string, n int) ([]identity.RiskLevel, error)
	InsertCycleLog(ctx context.Context, l *risk.CycleLog) error
}

// Profiles reads and updates registered users
type Profiles interface {
	Get(ctx context.Context, id string) (*identity.Profile, error)
	UpdateRiskScore(ctx context.Context, id string, level identity.RiskLevel) error
}

// Escalator runs escalations
type Escalator interface {
	Escalate(ctx context.Context, t escalation.Trigger) escalation.Report
}

// Monitor handles checkup and cycle-log submissions
type Monitor struct {
	records   Records
	profiles  Profiles
	escalator Escalator
	logger    *logging.Logger
}

// New creates a health monitor
func New(records Records, profiles Profiles, escalator Escalator, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Monitor{
		records:   records,
		profiles:  profiles,
		escalator: escalator,
		logger:    logger,
	}
}

// CheckupResult reports what OnCheckup did
type CheckupResult struct {
	Checkup     risk.Checkup         `json:"checkup"`
	OverallRisk identity.RiskLevel   `json:"overallRisk"`
	Escalated   bool                 `json:"escalated"`
	Failed      []escalation.Channel `json:"failedChannels,omitempty"`
}

// OnCheckup stores a checkup, re-aggregates the user's risk over the
// recent checkups and escalates when this checkup is HIGH
func (m *Monitor) OnCheckup(ctx context.Context, c risk.Checkup) (CheckupResult, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return CheckupResult{}, ErrInvalidEntry
	}
	if c.RiskScore == "" {
		c.RiskScore = risk.CheckupRisk(c.BP, c.Hemoglobin)
	}
	if err := m.records.InsertCheckup(ctx, &c); err != nil {
		return CheckupResult{}, fmt.Errorf("failed to store checkup: %w", err)
	}

	result := CheckupResult{Checkup: c}
	log := m.logger.With("user_id", c.UserID, "checkup_id", c.ID)

	recent, err := m.records.RecentCheckupRisks(ctx, c.UserID, risk.RecentWindow)
	if err != nil {
		log.Error("failed to load recent checkups", "error", err)
	} else {
		result.OverallRisk = risk.Aggregate(recent)
		if err := m.profiles.UpdateRiskScore(ctx, c.UserID, result.OverallRisk); err != nil {
			log.Error("failed to update risk score", "risk", result.OverallRisk, "error", err)
		}
	}

	if c.RiskScore != identity.RiskHigh {
		return result, nil
	}

	profile, ok := m.profile(ctx, c.UserID)
	if !ok {
		return result, nil
	}

	healthType := c.HealthType
	if healthType == "" {
		healthType = profile.HealthType
	}
	vitals := vitalsLine(c.BP, c.Hemoglobin)

	report := m.escalator.Escalate(ctx, escalation.Trigger{
		Profile:        profile,
		Source:         "checkup",
		Kind:           audit.TypeRiskAlertMaternity,
		Risk:           identity.RiskHigh,
		Vitals:         vitals,
		PatientMessage: highRiskMessage(profile, vitals),
		ContactMessage: contactMessage(profile),
		NotifyContact:  healthType == identity.HealthMaternity,
		PlaceCall:      true,
	})
	result.Escalated = true
	result.Failed = report.Failed()
	return result, nil
}

// CycleLogResult reports what OnCycleLog did
type CycleLogResult struct {
	CycleLog risk.CycleLog        `json:"cycleLog"`
	Alerted  bool                 `json:"alerted"`
	Failed   []escalation.Channel `json:"failedChannels,omitempty"`
}

// OnCycleLog stores a cycle log and sends a pain alert when the entry
// triggers one. Cycle alerts never notify the emergency contact or call.
func (m *Monitor) OnCycleLog(ctx context.Context, l risk.CycleLog) (CycleLogResult, error) {
	if strings.TrimSpace(l.UserID) == "" {
		return CycleLogResult{}, ErrInvalidEntry
	}
	if l.RiskScore == "" {
		l.RiskScore = risk.CycleRisk(l.PainLevel, len(l.Symptoms))
	}
	if err := m.records.InsertCycleLog(ctx, &l); err != nil {
		return CycleLogResult{}, fmt.Errorf("failed to store cycle log: %w", err)
	}

	result := CycleLogResult{CycleLog: l}
	if !risk.CycleLogTriggers(l) {
		return result, nil
	}

	profile, ok := m.profile(ctx, l.UserID)
	if !ok {
		return result, nil
	}

	report := m.escalator.Escalate(ctx, escalation.Trigger{
		Profile:        profile,
		Source:         "cycle_log",
		Kind:           audit.TypeRiskAlertPCOS,
		Risk:           l.RiskScore,
		PainLevel:      l.PainLevel,
		PatientMessage: painMessage(profile, l.PainLevel),
	})
	result.Alerted = true
	result.Failed = report.Failed()
	return result, nil
}

// profile loads a user that can be messaged
func (m *Monitor) profile(ctx context.Context, userID string) (*identity.Profile, bool) {
	profile, err := m.profiles.Get(ctx, userID)
	if err != nil {
		m.logger.Warn("no profile for alert", "user_id", userID, "error", err)
		return nil, false
	}
	if identity.NormalizePhone(profile.Phone) == "" {
		m.logger.Warn("profile has no phone, alert skipped", "user_id", userID)
		return nil, false
	}
	return profile, true
}
