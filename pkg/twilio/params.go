package twilio

import (
	"net/url"
	"strconv"
	"strings"
)

// CallStatus represents the status of a Twilio call
type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCanceled   CallStatus = "canceled"
)

// InboundMessage is the subset of a messaging webhook we act on
type InboundMessage struct {
	MessageSid  string
	Body        string
	From        string
	To          string
	ProfileName string
}

// Phone returns the sender number with the channel prefix removed
func (m InboundMessage) Phone() string {
	return strings.TrimPrefix(m.From, "whatsapp:")
}

// ParseInboundMessage parses form values from a messaging webhook
func ParseInboundMessage(values url.Values) InboundMessage {
	return InboundMessage{
		MessageSid:  values.Get("MessageSid"),
		Body:        values.Get("Body"),
		From:        values.Get("From"),
		To:          values.Get("To"),
		ProfileName: values.Get("ProfileName"),
	}
}

// GatherParams represents parameters from a Gather callback
type GatherParams struct {
	CallSid      string
	SpeechResult string
	Digits       string
	Confidence   string
}

// ParseGather parses URL values into GatherParams
func ParseGather(values url.Values) GatherParams {
	return GatherParams{
		CallSid:      values.Get("CallSid"),
		SpeechResult: values.Get("SpeechResult"),
		Digits:       values.Get("Digits"),
		Confidence:   values.Get("Confidence"),
	}
}

// StatusCallback represents a call status callback
type StatusCallback struct {
	CallSid    string
	CallStatus CallStatus
	Duration   int
}

// ParseStatusCallback parses a call status callback. A missing or
// malformed duration is reported as zero.
func ParseStatusCallback(values url.Values) StatusCallback {
	duration, err := strconv.Atoi(strings.TrimSpace(values.Get("CallDuration")))
	if err != nil {
		duration = 0
	}
	return StatusCallback{
		CallSid:    values.Get("CallSid"),
		CallStatus: CallStatus(values.Get("CallStatus")),
		Duration:   duration,
	}
}
