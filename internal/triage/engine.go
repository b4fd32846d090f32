// Package triage runs one inbound WhatsApp turn: identity, intent,
// conversation state, advice or fixed reply, escalation and audit.
package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/themobileprof/mamacare-be/internal/advice"
	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/classifier"
	"github.com/themobileprof/mamacare-be/internal/conversation"
	"github.com/themobileprof/mamacare-be/internal/escalation"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/metrics"
	"github.com/themobileprof/mamacare-be/internal/privacy"
	"github.com/themobileprof/mamacare-be/internal/prompt"
	"github.com/themobileprof/mamacare-be/internal/symptoms"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

// Resolver maps a sender to a profile
type Resolver interface {
	Resolve(ctx context.Context, rawPhone string) (identity.Match, error)
}

// Advisor generates chat advice
type Advisor interface {
	Chat(ctx context.Context, req advice.ChatRequest) advice.Reply
}

// Escalator runs emergency escalations
type Escalator interface {
	Escalate(ctx context.Context, t escalation.Trigger) escalation.Report
}

// AuditLogger records conversation and symptom logs
type AuditLogger interface {
	RecordMessage(ctx context.Context, rec audit.MessageLog) (audit.MessageLog, error)
	RecordSymptom(ctx context.Context, rec audit.SymptomLog) (audit.SymptomLog, error)
}

// Inbound is one WhatsApp webhook delivery
type Inbound struct {
	Body        string
	From        string
	ProfileName string
}

// Result is the outcome of a turn
type Result struct {
	Reply         string
	Intent        classifier.Intent
	Mode          conversation.Mode
	Match         identity.Match
	Advice        *advice.Reply
	SymptomLogged bool
	Escalation    *escalation.Report
}

// Config holds the engine's collaborators
type Config struct {
	Resolver   Resolver
	Classifier classifier.Classifier
	States     conversation.Store
	Advisor    Advisor
	Escalator  Escalator
	Audit      AuditLogger
	Metrics    *metrics.Metrics
	Logger     *logging.Logger
}

// Engine handles WhatsApp turns independent of transport
type Engine struct {
	resolver   Resolver
	classifier classifier.Classifier
	states     conversation.Store
	advisor    Advisor
	escalator  Escalator
	audit      AuditLogger
	metrics    *metrics.Metrics
	logger     *logging.Logger
	now        func() time.Time
}

// NewEngine creates a triage engine
func NewEngine(cfg Config) *Engine {
	if cfg.Classifier == nil {
		cfg.Classifier = classifier.NewClassifier()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Engine{
		resolver:   cfg.Resolver,
		classifier: cfg.Classifier,
		states:     cfg.States,
		advisor:    cfg.Advisor,
		escalator:  cfg.Escalator,
		audit:      cfg.Audit,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes one inbound message. An empty Body or From yields an
// empty Result and no side effects. A returned error means the caller
// should answer with ErrorReply.
func (e *Engine) Handle(ctx context.Context, in Inbound) (Result, error) {
	body := strings.TrimSpace(in.Body)
	phone := strings.TrimSpace(strings.TrimPrefix(in.From, "whatsapp:"))
	if body == "" || phone == "" {
		return Result{}, nil
	}

	log := e.logger.With("phone", privacy.MaskPhone(phone))

	match, err := e.resolver.Resolve(ctx, phone)
	if err != nil {
		log.Error("identity lookup failed, continuing unlinked", "error", err)
		match = identity.Match{MatchedFrom: identity.Unlinked}
	}
	patientName := match.Name()
	if patientName == "" {
		patientName = in.ProfileName
	}
	if patientName == "" {
		patientName = "Unknown"
	}

	state, err := conversation.Load(ctx, e.states, phone, in.ProfileName)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	cls := e.classifier.Classify(body, state.Mode.OrGeneral())
	e.metrics.ObserveIntent(string(cls.Intent))

	mode := state.Mode.OrGeneral()
	if cls.Intent == classifier.IntentSwitchMode {
		mode = cls.Mode
	}

	result := Result{Intent: cls.Intent, Mode: mode, Match: match}
	log.Info("whatsapp turn classified",
		"intent", cls.Intent,
		"mode", mode,
		"linked", match.Linked,
		"message", privacy.SanitizeForLogging(body),
	)

	if cls.Symptom && match.Linked {
		result.SymptomLogged = e.recordSymptom(ctx, log, match.Profile, mode, in.Body)
	}

	switch {
	case cls.Intent == classifier.IntentGreeting:
		result.Reply = greetingReply(patientName)

	case cls.Intent == classifier.IntentSwitchMode:
		result.Reply = onboardingReply(mode)

	case cls.Intent == classifier.IntentEmergency:
		result.Reply = emergencyReply
		report := e.escalator.Escalate(ctx, escalation.Trigger{
			Profile:        match.Profile,
			Phone:          phone,
			Name:           patientName,
			Source:         "whatsapp",
			Kind:           audit.TypeWhatsAppEmergency,
			Risk:           identity.RiskHigh,
			Said:           body,
			ContactMessage: emergencyContactMessage(patientName),
			NotifyContact:  true,
			EmergencyType:  audit.EmergencyWhatsApp,
		})
		result.Escalation = &report

	case cls.GateToMenu:
		result.Reply = gateReply

	default:
		reply := e.advisor.Chat(ctx, advice.ChatRequest{
			Profile: match.Profile,
			Mode:    mode,
			History: state.Recent(prompt.HistoryTurns),
			Message: body,
		})
		result.Reply = reply.Text
		result.Advice = &reply
	}

	if _, err := e.states.Update(ctx, phone, in.ProfileName, func(s *conversation.State) error {
		if cls.Intent == classifier.IntentSwitchMode {
			s.Mode = cls.Mode
		}
		s.Append(
			conversation.Turn{Role: conversation.RoleUser, Message: body},
			conversation.Turn{Role: conversation.RoleAssistant, Message: result.Reply},
		)
		s.LastMessageAt = e.now()
		return nil
	}); err != nil {
		return result, fmt.Errorf("failed to save conversation: %w", err)
	}

	logType := audit.TypeBotConversation
	if !match.Linked {
		logType = audit.TypeBotConversationUnlinked
	}
	if _, err := e.audit.RecordMessage(ctx, audit.MessageLog{
		PatientID:   match.ID(),
		PatientName: patientName,
		MatchedFrom: string(match.MatchedFrom),
		Phone:       phone,
		Message:     in.Body,
		Response:    result.Reply,
		Direction:   audit.DirectionInbound,
		Context:     string(mode),
		Type:        logType,
	}); err != nil {
		log.Error("failed to record conversation", "error", err)
	}

	return result, nil
}

func (e *Engine) recordSymptom(ctx context.Context, log *logging.Logger, p *identity.Profile, mode conversation.Mode, body string) bool {
	healthType := string(p.HealthType)
	if healthType == "" {
		healthType = string(mode)
	}
	ann := symptoms.Annotate(body)

	_, err := e.audit.RecordSymptom(ctx, audit.SymptomLog{
		UserID:        p.ID,
		UserName:      p.Name,
		HealthType:    healthType,
		Symptom:       body,
		PregnancyWeek: p.PregnancyWeek,
		RiskScore:     string(p.Risk()),
		Source:        audit.SourceWhatsAppBot,
		Severity:      ann.Summary(),
	})
	if err != nil {
		log.Error("failed to record symptom", "error", err)
		return false
	}
	return true
}
