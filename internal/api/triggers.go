package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/jobs"
)

// Triggers runs the manual outreach tests
type Triggers interface {
	TriggerDailyWhatsApp(ctx context.Context, limit int) (jobs.TriggerResult, error)
	TriggerDailyCalls(ctx context.Context, limit int) (jobs.TriggerResult, error)
}

// TriggerHandler exposes the manual triggers to admins
type TriggerHandler struct {
	triggers Triggers
}

// NewTriggerHandler creates a new trigger handler
func NewTriggerHandler(t Triggers) *TriggerHandler {
	return &TriggerHandler{triggers: t}
}

type triggerRequest struct {
	Limit int `json:"limit"`
}

// DailyWhatsApp sends the test message to the first patients
// POST /api/triggers/daily-whatsapp?limit=1
func (h *TriggerHandler) DailyWhatsApp(c *gin.Context) {
	h.run(c, h.triggers.TriggerDailyWhatsApp)
}

// DailyCalls calls the first patients
// POST /api/triggers/daily-calls?limit=1
func (h *TriggerHandler) DailyCalls(c *gin.Context) {
	h.run(c, h.triggers.TriggerDailyCalls)
}

func (h *TriggerHandler) run(c *gin.Context, trigger func(context.Context, int) (jobs.TriggerResult, error)) {
	res, err := trigger(c.Request.Context(), triggerLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// triggerLimit reads limit from the query or a JSON body, default 1
func triggerLimit(c *gin.Context) int {
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		return v
	}
	var req triggerRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err == nil && req.Limit > 0 {
			return req.Limit
		}
	}
	return 1
}
