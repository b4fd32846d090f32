package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/ivr"
	"github.com/themobileprof/mamacare-be/internal/metrics"
	"github.com/themobileprof/mamacare-be/internal/privacy"
	"github.com/themobileprof/mamacare-be/internal/triage"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

const contentTypeXML = "text/xml; charset=utf-8"

var emptyTwiML = twilio.NewMessagingResponse().String()

// ChatEngine processes one inbound WhatsApp message
type ChatEngine interface {
	Handle(ctx context.Context, in triage.Inbound) (triage.Result, error)
}

// VoiceEngine computes IVR turns
type VoiceEngine interface {
	Converse(ctx context.Context, c ivr.Context, in ivr.Input) ivr.Turn
	Answer(ctx context.Context, c ivr.Context, in ivr.Input) ivr.Turn
}

// CallStatusUpdater applies carrier status callbacks to call logs
type CallStatusUpdater interface {
	UpdateCallStatus(ctx context.Context, callSID, status string, duration int) error
}

// WebhookHandler serves the Twilio messaging and voice webhooks. Every
// webhook answers 200 so the carrier never retries a processed turn.
type WebhookHandler struct {
	chat    ChatEngine
	voice   VoiceEngine
	calls   CallStatusUpdater
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(chat ChatEngine, voice VoiceEngine, calls CallStatusUpdater, m *metrics.Metrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		chat:    chat,
		voice:   voice,
		calls:   calls,
		metrics: m,
		logger:  logger.With("component", "webhooks"),
	}
}

// WhatsApp handles an inbound WhatsApp message
// POST /webhooks/whatsapp
func (h *WebhookHandler) WhatsApp(c *gin.Context) {
	start := time.Now()
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warn("failed to parse whatsapp webhook", "error", err)
		h.metrics.ObserveWebhook("whatsapp", "bad_request", time.Since(start))
		c.Data(http.StatusOK, contentTypeXML, []byte(emptyTwiML))
		return
	}
	msg := twilio.ParseInboundMessage(c.Request.PostForm)

	result, err := h.chat.Handle(c.Request.Context(), triage.Inbound{
		Body:        msg.Body,
		From:        msg.From,
		ProfileName: msg.ProfileName,
	})
	if err != nil {
		h.logger.Error("whatsapp turn failed",
			"from", privacy.MaskPhone(msg.Phone()),
			"message_sid", msg.MessageSid,
			"error", err,
		)
		h.metrics.ObserveWebhook("whatsapp", "error", time.Since(start))
		c.Data(http.StatusOK, contentTypeXML, []byte(twilio.NewMessagingResponse().Message(triage.ErrorReply).String()))
		return
	}

	if result.Reply == "" {
		h.metrics.ObserveWebhook("whatsapp", "empty", time.Since(start))
		c.Data(http.StatusOK, contentTypeXML, []byte(emptyTwiML))
		return
	}

	h.metrics.ObserveWebhook("whatsapp", "ok", time.Since(start))
	c.Data(http.StatusOK, contentTypeXML, []byte(twilio.NewMessagingResponse().Message(result.Reply).String()))
}

// IVR handles the main menu of a health call
// GET|POST /webhooks/ivr
func (h *WebhookHandler) IVR(c *gin.Context) {
	h.voiceTurn(c, "ivr", h.voice.Converse, ivr.ErrorTwiML)
}

// IVRAnswer handles the answer sub-menu
// GET|POST /webhooks/ivr/answer
func (h *WebhookHandler) IVRAnswer(c *gin.Context) {
	h.voiceTurn(c, "ivr_answer", h.voice.Answer, ivr.AnswerErrorTwiML)
}

func (h *WebhookHandler) voiceTurn(
	c *gin.Context,
	kind string,
	step func(context.Context, ivr.Context, ivr.Input) ivr.Turn,
	onError func() string,
) {
	start := time.Now()
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warn("failed to parse voice webhook", "kind", kind, "error", err)
		h.metrics.ObserveWebhook(kind, "error", time.Since(start))
		c.Data(http.StatusOK, contentTypeXML, []byte(onError()))
		return
	}

	callCtx := ivr.FromQuery(c.Request.URL.Query())
	in := voiceInput(c.Request.Form.Get)

	turn := step(c.Request.Context(), callCtx, in)
	if turn.TwiML == "" {
		h.metrics.ObserveWebhook(kind, "error", time.Since(start))
		c.Data(http.StatusOK, contentTypeXML, []byte(onError()))
		return
	}

	outcome := "ok"
	if turn.Emergency != nil {
		outcome = "emergency"
	}
	h.metrics.ObserveWebhook(kind, outcome, time.Since(start))
	c.Data(http.StatusOK, contentTypeXML, []byte(turn.TwiML))
}

// voiceInput reads the caller input. On outbound calls the patient is the
// To party.
func voiceInput(get func(string) string) ivr.Input {
	phone := get("From")
	if strings.HasPrefix(get("Direction"), "outbound") {
		phone = get("To")
	}
	return ivr.Input{
		Speech:  get("SpeechResult"),
		Digits:  get("Digits"),
		CallSID: get("CallSid"),
		Phone:   phone,
	}
}

// CallStatus records the final status of an outbound call
// POST /webhooks/call-status
func (h *WebhookHandler) CallStatus(c *gin.Context) {
	start := time.Now()
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warn("failed to parse call status", "error", err)
		h.metrics.ObserveWebhook("call_status", "bad_request", time.Since(start))
		c.String(http.StatusOK, "OK")
		return
	}
	status := twilio.ParseStatusCallback(c.Request.PostForm)
	patientID := c.Query("patientId")

	err := h.calls.UpdateCallStatus(c.Request.Context(), status.CallSid, string(status.CallStatus), status.Duration)
	switch {
	case errors.Is(err, audit.ErrNotFound):
		h.logger.Warn("status for unknown call", "call_sid", status.CallSid, "patient_id", patientID)
		h.metrics.ObserveWebhook("call_status", "unknown_call", time.Since(start))
	case err != nil:
		h.logger.Error("failed to update call status", "call_sid", status.CallSid, "patient_id", patientID, "error", err)
		h.metrics.ObserveWebhook("call_status", "error", time.Since(start))
	default:
		h.logger.Info("call status updated",
			"call_sid", status.CallSid,
			"patient_id", patientID,
			"status", status.CallStatus,
			"duration", status.Duration,
		)
		h.metrics.ObserveWebhook("call_status", "ok", time.Since(start))
	}
	c.String(http.StatusOK, "OK")
}
