package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/outreach"
)

// Caller places outbound health calls
type Caller interface {
	PlaceCall(ctx context.Context, req outreach.CallRequest) (audit.CallLog, error)
}

// CallHandler exposes the place-call operation to the dashboard
type CallHandler struct {
	caller Caller
}

// NewCallHandler creates a new call handler
func NewCallHandler(caller Caller) *CallHandler {
	return &CallHandler{caller: caller}
}

// PlaceCall starts an IVR call to a patient
// POST /api/calls
func (h *CallHandler) PlaceCall(c *gin.Context) {
	var req outreach.CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req.Type = audit.TypeUserRequested

	call, err := h.caller.PlaceCall(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"callSid": call.CallSID,
	})
}
