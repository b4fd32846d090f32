// Package outreach places outbound calls and sends outbound WhatsApp
// messages, recording each one in the audit log.
package outreach

import (
	"context"
	"net/url"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/ivr"
	"github.com/themobileprof/mamacare-be/internal/language"
	"github.com/themobileprof/mamacare-be/internal/privacy"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

// StatusCallbackPath receives carrier call status updates
const StatusCallbackPath = "/webhooks/call-status"

const callTimeoutSeconds = 60

// Carrier is the subset of the Twilio client used here
type Carrier interface {
	Configured() bool
	SendWhatsApp(ctx context.Context, to, body string) (string, error)
	CreateCall(ctx context.Context, req twilio.CallRequest) (string, error)
}

// Recorder persists outbound records
type Recorder interface {
	RecordMessage(ctx context.Context, rec audit.MessageLog) (audit.MessageLog, error)
	RecordCall(ctx context.Context, rec audit.CallLog) (audit.CallLog, error)
}

// Service sends outbound traffic through the carrier
type Service struct {
	carrier  Carrier
	recorder Recorder
	baseURL  string
	logger   *logging.Logger
}

// NewService creates an outreach service
func NewService(carrier Carrier, recorder Recorder, baseURL string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		carrier:  carrier,
		recorder: recorder,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// CallRequest describes a health-tip call
type CallRequest struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	Phone       string `json:"phone"`
	Week        int    `json:"week"`
	Language    string `json:"language"`
	// Type is the call log type, user_requested when empty
	Type string `json:"-"`
}

// PlaceCall starts an IVR call and writes an initiated call log. Every
// error it returns is an *Error.
func (s *Service) PlaceCall(ctx context.Context, req CallRequest) (audit.CallLog, error) {
	if strings.TrimSpace(req.Phone) == "" {
		return audit.CallLog{}, &Error{Kind: InvalidArgument, Message: "Phone number is required"}
	}
	if s.carrier == nil || !s.carrier.Configured() {
		return audit.CallLog{}, &Error{Kind: FailedPrecondition, Message: "Twilio not configured"}
	}
	if identity.NormalizePhone(req.Phone) == "" {
		return audit.CallLog{}, &Error{Kind: InvalidArgument, Message: "Invalid phone number format"}
	}

	phone := identity.FormatE164(req.Phone)
	name := req.PatientName
	if strings.TrimSpace(name) == "" {
		name = "Patient"
	}
	lang := language.Parse(req.Language, language.Default)
	callType := req.Type
	if callType == "" {
		callType = audit.TypeUserRequested
	}

	sid, err := s.carrier.CreateCall(ctx, twilio.CallRequest{
		To:                  phone,
		AnswerURL:           s.AnswerURL(ivr.Context{Week: req.Week, Language: lang, Name: name}),
		StatusCallback:      s.StatusCallbackURL(req.PatientID),
		StatusCallbackEvent: "completed",
		Record:              true,
		Timeout:             callTimeoutSeconds,
	})
	if err != nil {
		s.logger.Error("failed to place call",
			"phone", privacy.MaskPhone(phone),
			"type", callType,
			"code", twilio.ErrorCode(err),
			"error", err,
		)
		return audit.CallLog{}, carrierError(err)
	}

	logName := req.PatientName
	if logName == "" {
		logName = "Unknown"
	}
	rec, err := s.recorder.RecordCall(ctx, audit.CallLog{
		PatientID:   req.PatientID,
		PatientName: logName,
		Phone:       phone,
		CallSID:     sid,
		Status:      audit.StatusInitiated,
		Type:        callType,
		Week:        req.Week,
		Language:    string(lang),
	})
	if err != nil {
		// The call is already ringing; report it and keep the SID.
		s.logger.Error("failed to record call", "call_sid", sid, "error", err)
		rec.CallSID = sid
	}

	s.logger.Info("call initiated", "phone", privacy.MaskPhone(phone), "call_sid", sid, "type", callType)
	return rec, nil
}

// MessageRequest describes an outbound WhatsApp message
type MessageRequest struct {
	PatientID   string
	PatientName string
	Phone       string
	Body        string
	Type        string
}

// SendMessage delivers a WhatsApp message and records it. Nothing is
// recorded when delivery fails.
func (s *Service) SendMessage(ctx context.Context, req MessageRequest) (audit.MessageLog, error) {
	if identity.NormalizePhone(req.Phone) == "" {
		return audit.MessageLog{}, &Error{Kind: InvalidArgument, Message: "Invalid phone number format"}
	}
	if s.carrier == nil {
		return audit.MessageLog{}, &Error{Kind: FailedPrecondition, Message: "Twilio not configured"}
	}

	phone := identity.FormatE164(req.Phone)
	sid, err := s.carrier.SendWhatsApp(ctx, phone, req.Body)
	if err != nil {
		s.logger.Error("failed to send whatsapp message",
			"phone", privacy.MaskPhone(phone),
			"type", req.Type,
			"error", err,
		)
		return audit.MessageLog{}, carrierError(err)
	}

	rec, err := s.recorder.RecordMessage(ctx, audit.MessageLog{
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Phone:       phone,
		Message:     req.Body,
		Direction:   audit.DirectionOutbound,
		Type:        req.Type,
		Status:      audit.StatusSent,
		MessageSID:  sid,
	})
	if err != nil {
		s.logger.Error("failed to record message", "message_sid", sid, "error", err)
		rec.MessageSID = sid
	}
	return rec, nil
}

// SendWhatsApp delivers a message without recording it
func (s *Service) SendWhatsApp(ctx context.Context, phone, body string) (string, error) {
	if identity.NormalizePhone(phone) == "" {
		return "", &Error{Kind: InvalidArgument, Message: "Invalid phone number format"}
	}
	if s.carrier == nil {
		return "", &Error{Kind: FailedPrecondition, Message: "Twilio not configured"}
	}
	sid, err := s.carrier.SendWhatsApp(ctx, identity.FormatE164(phone), body)
	if err != nil {
		return "", carrierError(err)
	}
	return sid, nil
}

// AnswerURL is the IVR entry point for an outbound call
func (s *Service) AnswerURL(c ivr.Context) string {
	return s.baseURL + ivr.MainPath + "?" + c.Values().Encode()
}

// StatusCallbackURL is where the carrier reports the final call status
func (s *Service) StatusCallbackURL(patientID string) string {
	if patientID == "" {
		patientID = "unknown"
	}
	q := url.Values{}
	q.Set("patientId", patientID)
	return s.baseURL + StatusCallbackPath + "?" + q.Encode()
}
