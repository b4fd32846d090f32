package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/monitor"
	"github.com/themobileprof/mamacare-be/internal/risk"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

// HealthMonitor records health entries and raises alerts on them
type HealthMonitor interface {
	OnCheckup(ctx context.Context, c risk.Checkup) (monitor.CheckupResult, error)
	OnCycleLog(ctx context.Context, l risk.CycleLog) (monitor.CycleLogResult, error)
}

// RecordHandler accepts checkups and cycle logs from the dashboard
type RecordHandler struct {
	monitor HealthMonitor
	logger  *logging.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(m HealthMonitor, logger *logging.Logger) *RecordHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordHandler{monitor: m, logger: logger}
}

// CreateCheckup records a checkup
// POST /api/checkups
func (h *RecordHandler) CreateCheckup(c *gin.Context) {
	var checkup risk.Checkup
	if err := c.ShouldBindJSON(&checkup); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.monitor.OnCheckup(c.Request.Context(), checkup)
	if errors.Is(err, monitor.ErrInvalidEntry) {
		badRequest(c, "userId is required")
		return
	}
	if err != nil {
		h.logger.Error("failed to record checkup", "user_id", checkup.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Failed to record checkup"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CreateCycleLog records a cycle log
// POST /api/cycle-logs
func (h *RecordHandler) CreateCycleLog(c *gin.Context) {
	var entry risk.CycleLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.monitor.OnCycleLog(c.Request.Context(), entry)
	if errors.Is(err, monitor.ErrInvalidEntry) {
		badRequest(c, "userId is required")
		return
	}
	if err != nil {
		h.logger.Error("failed to record cycle log", "user_id", entry.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Failed to record cycle log"})
		return
	}

	c.JSON(http.StatusCreated, result)
}
