package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/themobileprof/mamacare-be/internal/advice"
	"github.com/themobileprof/mamacare-be/internal/api"
	"github.com/themobileprof/mamacare-be/internal/api/middleware"
	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/circuitbreaker"
	"github.com/themobileprof/mamacare-be/internal/classifier"
	"github.com/themobileprof/mamacare-be/internal/config"
	"github.com/themobileprof/mamacare-be/internal/conversation"
	"github.com/themobileprof/mamacare-be/internal/db"
	"github.com/themobileprof/mamacare-be/internal/escalation"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/ivr"
	"github.com/themobileprof/mamacare-be/internal/jobs"
	"github.com/themobileprof/mamacare-be/internal/metrics"
	"github.com/themobileprof/mamacare-be/internal/monitor"
	"github.com/themobileprof/mamacare-be/internal/outreach"
	"github.com/themobileprof/mamacare-be/internal/triage"
	"github.com/themobileprof/mamacare-be/internal/ws"
	"github.com/themobileprof/mamacare-be/pkg/deepseek"
	"github.com/themobileprof/mamacare-be/pkg/gemini"
	"github.com/themobileprof/mamacare-be/pkg/llm"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", "mamacare")

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; /api routes will reject every request")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Storage
	var (
		database *db.DB
		auditLog *audit.Logger
		resolver *identity.Resolver
	)
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(db.Config{
			URL:             cfg.DatabaseURL,
			MaxConnections:  25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		logger.Info("database connected")

		auditLog = audit.NewLogger(database.Audit())
		resolver = identity.NewResolver(database.Users(), database.Patients())
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory audit log and an empty profile index")
		auditLog = audit.NewLogger(audit.NewMemoryStore())
		resolver = identity.NewResolver(identity.NewIndex(), nil)
	}

	var states conversation.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		states = conversation.NewRedisStore(rdb, cfg.ConversationTTL)
		logger.Info("conversation state in redis", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set; conversation state is in-memory")
		states = conversation.NewMemoryStore()
	}

	// Advice
	client := newLLMClient(ctx, cfg, logger)
	breaker := circuitbreaker.New(circuitbreaker.Options{
		Name:          "llm",
		MaxFailures:   5,
		ResetTimeout:  30 * time.Second,
		OnStateChange: m.BreakerStateChanged,
	})
	generator := advice.NewGenerator(client, advice.Config{
		Timeout: cfg.AdviceTimeout,
		Breaker: breaker,
		Metrics: m,
		Logger:  logger.With("component", "advice"),
	})

	// Outreach and escalation
	carrier := twilio.NewClient(twilio.Config{
		AccountSID:     cfg.TwilioAccountSID,
		AuthToken:      cfg.TwilioAuthToken,
		VoiceNumber:    cfg.TwilioPhoneNumber,
		WhatsAppNumber: cfg.TwilioWhatsAppNumber,
	}, logger.With("component", "twilio"))
	if !carrier.Configured() {
		logger.Warn("Twilio credentials missing; outbound messages and calls will fail fast")
	}
	outbound := outreach.NewService(carrier, auditLog, cfg.PublicBaseURL, logger.With("component", "outreach"))

	hub := ws.NewHub(cfg.JWTSecret, logger)
	defer hub.Close()

	dispatcher := escalation.NewDispatcher(escalation.Config{
		Messenger:      outbound,
		Caller:         outbound,
		Recorder:       auditLog,
		Publisher:      hub,
		Metrics:        m,
		Logger:         logger.With("component", "escalation"),
		ChannelTimeout: cfg.EscalationTimeout,
		CallsEnabled:   cfg.EscalationCallsEnabled,
	})

	// Conversations
	chatEngine := triage.NewEngine(triage.Config{
		Resolver:   resolver,
		Classifier: classifier.NewClassifier(),
		States:     states,
		Advisor:    generator,
		Escalator:  dispatcher,
		Audit:      auditLog,
		Metrics:    m,
		Logger:     logger.With("component", "triage"),
	})
	voiceEngine := ivr.NewEngine(ivr.Config{
		BaseURL:   cfg.PublicBaseURL,
		Advisor:   generator,
		Recorder:  auditLog,
		Publisher: hub,
		Logger:    logger.With("component", "ivr"),
	})

	routes := api.RouterConfig{
		Webhooks:          api.NewWebhookHandler(chatEngine, voiceEngine, auditLog, m, logger),
		Calls:             api.NewCallHandler(outbound),
		Predict:           api.NewPredictHandler(),
		AlertStream:       hub.Stream,
		Metrics:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		JWTSecret:         cfg.JWTSecret,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		ValidateSignature: cfg.TwilioValidateSignature,
		PublicBaseURL:     cfg.PublicBaseURL,
		CORSOrigins:       cfg.CORSOrigins,
		Logger:            logger,
	}

	if database != nil {
		healthMon := monitor.New(database.HealthRecords(), database.Users(), dispatcher, logger.With("component", "monitor"))
		runner := jobs.NewRunner(jobs.Config{
			Users:       database.Users(),
			Patients:    database.Patients(),
			Sender:      outbound,
			Concurrency: cfg.JobConcurrency,
			Location:    cfg.Location(),
			Metrics:     m,
			Logger:      logger.With("component", "jobs"),
		})
		routes.Records = api.NewRecordHandler(healthMon, logger)
		routes.Triggers = api.NewTriggerHandler(runner)
	}

	limiter := middleware.NewRateLimiter(rate.Limit(100.0/60.0), 200)
	go limiter.Run(ctx)
	routes.RateLimiter = limiter

	router := api.NewRouter(routes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		for _, r := range api.Routes(router) {
			logger.Debug("route", "method", r.Method, "path", r.Path)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

// newLLMClient selects the advice provider. A provider that cannot be
// built degrades to llm.Unconfigured so every answer comes from the
// fallback tables.
func newLLMClient(ctx context.Context, cfg *config.Config, logger *logging.Logger) llm.Client {
	switch cfg.LLMProvider {
	case "none":
		logger.Info("LLM disabled; answers come from fallback tables")
		return llm.Unconfigured{}
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			logger.Warn("DEEPSEEK_API_KEY not set; answers come from fallback tables")
			return llm.Unconfigured{}
		}
		logger.Info("LLM provider", "provider", "deepseek")
		return deepseek.NewHTTPClient(deepseek.Config{
			APIKey:  cfg.DeepSeekAPIKey,
			BaseURL: cfg.DeepSeekBaseURL,
			Timeout: cfg.AdviceTimeout,
		})
	default:
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			logger.Warn("gemini unavailable; answers come from fallback tables", "error", err)
			return llm.Unconfigured{}
		}
		logger.Info("LLM provider", "provider", "gemini", "model", cfg.GeminiModel)
		return client
	}
}
