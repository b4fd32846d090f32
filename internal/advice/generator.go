package advice

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/themobileprof/mamacare-be/internal/circuitbreaker"
	"github.com/themobileprof/mamacare-be/internal/conversation"
	"github.com/themobileprof/mamacare-be/internal/fallback"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/language"
	"github.com/themobileprof/mamacare-be/internal/metrics"
	"github.com/themobileprof/mamacare-be/internal/privacy"
	"github.com/themobileprof/mamacare-be/internal/prompt"
	"github.com/themobileprof/mamacare-be/pkg/llm"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

const (
	DefaultTimeout = 10 * time.Second

	chatMaxTokens   = 300
	voiceMaxTokens  = 200
	defaultSampling = 0.4
)

// Fallback reasons reported in metrics and logs
const (
	ReasonNotConfigured = "not_configured"
	ReasonTimeout       = "timeout"
	ReasonCircuitOpen   = "circuit_open"
	ReasonEmpty         = "empty"
	ReasonError         = "error"
)

var tracer = otel.Tracer("mamacare.internal.advice")

// Reply is the text sent back to the user
type Reply struct {
	Text string
	// Fallback is set when Text came from the deterministic tables
	Fallback bool
	// Reason names the failure that forced the fallback
	Reason string
}

// ChatRequest is one WhatsApp question
type ChatRequest struct {
	Profile *identity.Profile
	Mode    conversation.Mode
	History []conversation.Turn
	Message string
}

// VoiceRequest is one spoken IVR question
type VoiceRequest struct {
	Speech   string
	Week     string
	Language language.Language
	// Short selects the answer sub-menu prompt and fallback
	Short bool
}

// Config configures a Generator
type Config struct {
	Timeout time.Duration
	Breaker *circuitbreaker.CircuitBreaker
	Metrics *metrics.Metrics
	Logger  *logging.Logger
}

// Generator turns a question into advice text. It makes at most one
// provider attempt per call and always returns usable text.
type Generator struct {
	client  llm.Client
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewGenerator creates a Generator. A nil client behaves as an
// unconfigured provider.
func NewGenerator(client llm.Client, cfg Config) *Generator {
	if client == nil {
		client = llm.Unconfigured{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Generator{
		client:  client,
		timeout: cfg.Timeout,
		breaker: cfg.Breaker,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Chat answers a WhatsApp question, falling back to the chat tables
func (g *Generator) Chat(ctx context.Context, req ChatRequest) Reply {
	history := make([]conversation.Turn, len(req.History))
	for i, t := range req.History {
		history[i] = conversation.Turn{Role: t.Role, Message: privacy.SanitizeForPrompt(t.Message)}
	}

	text := prompt.BuildChat(prompt.ChatRequest{
		Profile: req.Profile,
		Mode:    req.Mode,
		History: history,
		Message: privacy.SanitizeForPrompt(req.Message),
	})

	return g.complete(ctx, "chat", llm.CompletionRequest{
		Prompt:      text,
		MaxTokens:   chatMaxTokens,
		Temperature: defaultSampling,
	}, func() string {
		return fallback.ChatReply(req.Mode.OrGeneral(), req.Message)
	})
}

// Voice answers a spoken IVR question, falling back to the voice tables
func (g *Generator) Voice(ctx context.Context, req VoiceRequest) Reply {
	text := prompt.BuildVoice(prompt.VoiceRequest{
		Speech:   privacy.SanitizeForPrompt(req.Speech),
		Week:     req.Week,
		Language: req.Language,
		Short:    req.Short,
	})

	return g.complete(ctx, "voice", llm.CompletionRequest{
		Prompt:      text,
		MaxTokens:   voiceMaxTokens,
		Temperature: defaultSampling,
	}, func() string {
		if req.Short {
			return fallback.QuestionAnswer(req.Language)
		}
		return fallback.VoiceAnswer(req.Language, req.Speech)
	})
}

func (g *Generator) complete(ctx context.Context, channel string, req llm.CompletionRequest, fallbackText func() string) Reply {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "advice."+channel)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.call(ctx, req)
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = llm.ErrEmptyResponse
		}
	}

	if err != nil {
		reason := classify(err)
		span.SetStatus(codes.Error, reason)
		span.SetAttributes(attribute.String("advice.fallback_reason", reason))
		if reason != ReasonNotConfigured {
			g.logger.Warn("advice provider failed, using fallback", "channel", channel, "reason", reason, "error", err)
		}
		g.metrics.ObserveAdvice(channel, true, reason, time.Since(start))
		return Reply{Text: fallbackText(), Fallback: true, Reason: reason}
	}

	g.metrics.ObserveAdvice(channel, false, "", time.Since(start))
	return Reply{Text: text}
}

// call runs the single provider attempt through the breaker. Missing
// credentials are not counted as a provider failure.
func (g *Generator) call(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if g.breaker == nil {
		return g.client.Complete(ctx, req)
	}

	var (
		text    string
		callErr error
	)
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		text, callErr = g.client.Complete(ctx, req)
		if errors.Is(callErr, llm.ErrNotConfigured) {
			return nil
		}
		return callErr
	})
	if err != nil {
		return "", err
	}
	return text, callErr
}

func classify(err error) string {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return ReasonNotConfigured
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return ReasonCircuitOpen
	case errors.Is(err, llm.ErrEmptyResponse):
		return ReasonEmpty
	default:
		return ReasonError
	}
}
