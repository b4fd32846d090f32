package ivr

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/themobileprof/mamacare-be/internal/advice"
	"github.com/themobileprof/mamacare-be/internal/alerts"
	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/classifier"
	"github.com/themobileprof/mamacare-be/internal/fallback"
	"github.com/themobileprof/mamacare-be/internal/privacy"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

// State is the automaton state reached by a turn
type State string

const (
	StateStart          State = "start"
	StateGathering      State = "gathering"
	StateSpeechAnswered State = "speech_answered"
	StateDigitAnswered  State = "digit_answered"
	StateTerminal       State = "terminal"
)

// Paths of the two IVR endpoints relative to the public base URL
const (
	MainPath   = "/webhooks/ivr"
	AnswerPath = "/webhooks/ivr/answer"
)

// Turn is the result of one IVR transition
type Turn struct {
	State State
	TwiML string
	// Emergency is set when the turn raised an alert
	Emergency *audit.EmergencyAlert
}

// Advisor answers spoken questions
type Advisor interface {
	Voice(ctx context.Context, req advice.VoiceRequest) advice.Reply
}

// EmergencyRecorder persists emergency alerts
type EmergencyRecorder interface {
	RecordEmergency(ctx context.Context, rec audit.EmergencyAlert) (audit.EmergencyAlert, error)
}

// Config configures an Engine
type Config struct {
	BaseURL   string
	Advisor   Advisor
	Recorder  EmergencyRecorder
	Publisher alerts.Publisher
	Logger    *logging.Logger
}

// Engine computes IVR turns
type Engine struct {
	baseURL   string
	advisor   Advisor
	recorder  EmergencyRecorder
	publisher alerts.Publisher
	logger    *logging.Logger
}

// NewEngine creates the voice engine
func NewEngine(cfg Config) *Engine {
	if cfg.Publisher == nil {
		cfg.Publisher = alerts.Discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Engine{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		advisor:   cfg.Advisor,
		recorder:  cfg.Recorder,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}

// AnswerURL is the URL an outbound call is answered with
func (e *Engine) AnswerURL(c Context) string {
	return e.actionURL(MainPath, c)
}

// Converse handles a turn on the main endpoint
func (e *Engine) Converse(ctx context.Context, c Context, in Input) Turn {
	lang := c.Language
	voice, locale := lang.Voice(), lang.Locale()
	resp := twilio.NewVoiceResponse()

	switch {
	case in.empty():
		resp.Say(healthTip(c), voice, locale).Pause(1)
		e.gather(resp, c, MainPath, 10, gatherHints).
			Say(mainMenuPrompt(lang), voice, locale).
			EndGather()
		resp.Say(noInputClosing(lang), voice, locale)
		return Turn{State: StateGathering, TwiML: resp.String()}

	case in.Digits == "" && in.Speech != "":
		if classifier.IsVoiceEmergency(in.Speech) {
			resp.Say(speechEmergencyAck(lang), voice, locale).Hangup()
			alert := e.raise(ctx, c, in, audit.EmergencySpeech)
			return Turn{State: StateTerminal, TwiML: resp.String(), Emergency: alert}
		}

		reply := e.advisor.Voice(ctx, advice.VoiceRequest{
			Speech:   in.Speech,
			Week:     strconv.Itoa(c.Week),
			Language: lang,
		})
		resp.Say(reply.Text, voice, locale).Pause(1)
		e.gather(resp, c, MainPath, 10, "").
			Say(moreQuestionsPrompt(lang), voice, locale).
			EndGather()
		return Turn{State: StateSpeechAnswered, TwiML: resp.String()}

	case in.Digits == "1":
		e.gather(resp, c, AnswerPath, 15, "").
			Say(subMenuPrompt(lang), voice, locale).
			EndGather()
		return Turn{State: StateDigitAnswered, TwiML: resp.String()}

	case in.Digits == "2":
		resp.Say(buttonEmergencyAck(lang), voice, locale).Hangup()
		alert := e.raise(ctx, c, in, audit.EmergencyButton)
		return Turn{State: StateTerminal, TwiML: resp.String(), Emergency: alert}
	}

	resp.Say(thanks(lang), voice, locale).Hangup()
	return Turn{State: StateTerminal, TwiML: resp.String()}
}

// Answer handles a turn on the sub-menu endpoint. Every answer loops
// back to the main endpoint.
func (e *Engine) Answer(ctx context.Context, c Context, in Input) Turn {
	lang := c.Language
	voice, locale := lang.Voice(), lang.Locale()

	var (
		answer string
		state  = StateDigitAnswered
	)
	switch {
	case in.Speech != "" && in.Digits == "":
		reply := e.advisor.Voice(ctx, advice.VoiceRequest{
			Speech:   in.Speech,
			Week:     strconv.Itoa(c.Week),
			Language: lang,
			Short:    true,
		})
		answer = reply.Text
		state = StateSpeechAnswered
	case in.Digits != "":
		if text, ok := fallback.Shortcut(lang, in.Digits); ok {
			answer = text
		} else {
			answer = invalidOption(lang)
		}
	default:
		answer = noInput(lang)
		state = StateGathering
	}

	resp := twilio.NewVoiceResponse()
	resp.Say(answer, voice, locale).Pause(1)
	e.gather(resp, c, MainPath, 10, "").
		Say(answerMorePrompt(lang), voice, locale).
		EndGather()
	return Turn{State: state, TwiML: resp.String()}
}

// ErrorTwiML is the document returned when the main endpoint fails
func ErrorTwiML() string {
	return twilio.NewVoiceResponse().Say(TechnicalErrorLine, "", "").String()
}

// AnswerErrorTwiML is the document returned when the sub-menu fails
func AnswerErrorTwiML() string {
	return twilio.NewVoiceResponse().Say(AnswerErrorLine, "", "").String()
}

func (e *Engine) gather(resp *twilio.VoiceResponse, c Context, path string, timeout int, hints string) *twilio.VoiceResponse {
	return resp.Gather(twilio.GatherOptions{
		Action:        e.actionURL(path, c),
		Method:        "GET",
		Input:         "speech dtmf",
		Language:      c.Language.Locale(),
		Timeout:       timeout,
		SpeechTimeout: "auto",
		NumDigits:     1,
		Hints:         hints,
	})
}

func (e *Engine) actionURL(path string, c Context) string {
	return e.baseURL + path + "?" + c.Values().Encode()
}

// raise records and publishes an emergency. Failures are logged and
// never change the spoken response.
func (e *Engine) raise(ctx context.Context, c Context, in Input, kind string) *audit.EmergencyAlert {
	alert := audit.EmergencyAlert{
		PatientName:   c.Name,
		Phone:         in.Phone,
		PregnancyWeek: strconv.Itoa(c.Week),
		SpeechInput:   in.Speech,
		Status:        audit.StatusPending,
		Type:          kind,
	}

	if e.recorder != nil {
		recorded, err := e.recorder.RecordEmergency(ctx, alert)
		if err != nil {
			e.logger.Error("failed to record ivr emergency", "type", kind, "call_sid", in.CallSID, "error", err)
		} else {
			alert = recorded
		}
	}

	e.logger.Warn("ivr emergency raised",
		"type", kind,
		"call_sid", in.CallSID,
		"phone", privacy.MaskPhone(in.Phone),
		"speech", privacy.SanitizeForLogging(in.Speech),
	)

	at := alert.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	e.publisher.Publish(alerts.Event{
		Kind:        alerts.KindEmergency,
		Type:        kind,
		PatientName: c.Name,
		Phone:       in.Phone,
		Detail:      in.Speech,
		At:          at,
	})
	return &alert
}
