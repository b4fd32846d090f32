package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/api/middleware"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

// RouterConfig carries the handlers and security settings for NewRouter.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	Webhooks *WebhookHandler
	Calls    *CallHandler
	Predict  *PredictHandler
	Records  *RecordHandler
	Triggers *TriggerHandler

	AlertStream gin.HandlerFunc
	Metrics     http.Handler

	JWTSecret         string
	TwilioAuthToken   string
	ValidateSignature bool
	PublicBaseURL     string
	CORSOrigins       []string
	RateLimiter       *middleware.RateLimiter

	Logger *logging.Logger
}

// Route is one registered method and path
type Route struct {
	Method string
	Path   string
}

// NewRouter builds the HTTP surface
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	if cfg.Webhooks != nil {
		webhooks := router.Group("/webhooks")
		if cfg.ValidateSignature {
			webhooks.Use(middleware.TwilioSignature(cfg.TwilioAuthToken, cfg.PublicBaseURL, cfg.Logger))
		}
		{
			webhooks.POST("/whatsapp", cfg.Webhooks.WhatsApp)
			webhooks.GET("/ivr", cfg.Webhooks.IVR)
			webhooks.POST("/ivr", cfg.Webhooks.IVR)
			webhooks.GET("/ivr/answer", cfg.Webhooks.IVRAnswer)
			webhooks.POST("/ivr/answer", cfg.Webhooks.IVRAnswer)
			webhooks.POST("/call-status", cfg.Webhooks.CallStatus)
		}
	}

	apiGroup := router.Group("/api")
	if cfg.RateLimiter != nil {
		apiGroup.Use(middleware.PerIP(cfg.RateLimiter))
	}

	// The feed authenticates inside the upgrade handler because browsers
	// cannot set headers on websocket requests.
	if cfg.AlertStream != nil {
		apiGroup.GET("/alerts/stream", cfg.AlertStream)
	}

	protected := apiGroup.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		if cfg.Calls != nil {
			protected.POST("/calls", cfg.Calls.PlaceCall)
		}
		if cfg.Predict != nil {
			protected.POST("/predict/maternal", cfg.Predict.Maternal)
			protected.POST("/predict/pcos", cfg.Predict.PCOS)
		}
		if cfg.Records != nil {
			protected.POST("/checkups", cfg.Records.CreateCheckup)
			protected.POST("/cycle-logs", cfg.Records.CreateCycleLog)
		}
	}

	if cfg.Triggers != nil {
		triggers := protected.Group("/triggers")
		triggers.Use(middleware.RequireRole(middleware.RoleAdmin))
		{
			triggers.POST("/daily-whatsapp", cfg.Triggers.DailyWhatsApp)
			triggers.POST("/daily-calls", cfg.Triggers.DailyCalls)
		}
	}

	return router
}

// Routes lists the registered routes
func Routes(router *gin.Engine) []Route {
	info := router.Routes()
	routes := make([]Route, 0, len(info))
	for _, r := range info {
		routes = append(routes, Route{Method: r.Method, Path: r.Path})
	}
	return routes
}
