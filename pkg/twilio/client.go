package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/themobileprof/mamacare-be/pkg/logging"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

var tracer = otel.Tracer("mamacare.pkg.twilio")

// Config holds Twilio REST configuration
type Config struct {
	AccountSID     string
	AuthToken      string
	VoiceNumber    string // caller id for outbound calls
	WhatsAppNumber string // "whatsapp:+1..." sender for WhatsApp messages
	BaseURL        string
	Timeout        time.Duration
}

// Client sends messages and places calls through the REST API
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a REST client. Missing credentials are not an
// error here; operations return ErrNotConfigured instead.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Configured reports whether account credentials are present
func (c *Client) Configured() bool {
	return c != nil && c.cfg.AccountSID != "" && c.cfg.AuthToken != ""
}

// AuthToken returns the token used to sign webhooks
func (c *Client) AuthToken() string {
	return c.cfg.AuthToken
}

// Message is an outbound message
type Message struct {
	To   string
	From string
	Body string
}

// SendWhatsApp sends body to an E.164 number over WhatsApp and returns
// the message SID
func (c *Client) SendWhatsApp(ctx context.Context, to, body string) (string, error) {
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}
	return c.SendMessage(ctx, Message{To: to, From: c.cfg.WhatsAppNumber, Body: body})
}

// SendMessage posts to Messages.json once. Failures, including timeouts
// where the message may already be queued, are returned to the caller.
func (c *Client) SendMessage(ctx context.Context, msg Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if msg.To == "" {
		return "", errors.New("twilio: to required")
	}
	if msg.From == "" {
		return "", errors.New("twilio: from required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return "", errors.New("twilio: body required")
	}

	ctx, span := tracer.Start(ctx, "twilio.send_message")
	defer span.End()
	span.SetAttributes(attribute.String("twilio.to", msg.To))

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", msg.From)
	form.Set("Body", msg.Body)

	sid, err := c.post(ctx, "Messages.json", form)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return sid, nil
}

// CallRequest describes an outbound call
type CallRequest struct {
	To                  string
	AnswerURL           string
	StatusCallback      string
	StatusCallbackEvent string
	Record              bool
	Timeout             int
}

// CreateCall posts to Calls.json and returns the call SID
func (c *Client) CreateCall(ctx context.Context, req CallRequest) (string, error) {
	if !c.Configured() || c.cfg.VoiceNumber == "" {
		return "", ErrNotConfigured
	}
	if req.To == "" || req.AnswerURL == "" {
		return "", errors.New("twilio: to and answer url required")
	}

	ctx, span := tracer.Start(ctx, "twilio.create_call")
	defer span.End()
	span.SetAttributes(attribute.String("twilio.to", req.To))

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", c.cfg.VoiceNumber)
	form.Set("Url", req.AnswerURL)
	if req.StatusCallback != "" {
		form.Set("StatusCallback", req.StatusCallback)
		event := req.StatusCallbackEvent
		if event == "" {
			event = "completed"
		}
		form.Set("StatusCallbackEvent", event)
	}
	if req.Record {
		form.Set("Record", "true")
	}
	if req.Timeout > 0 {
		form.Set("Timeout", strconv.Itoa(req.Timeout))
	}

	sid, err := c.post(ctx, "Calls.json", form)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return sid, nil
}

func (c *Client) post(ctx context.Context, resource string, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountSID, resource)

	sid, err := c.postOnce(ctx, endpoint, form)
	if err != nil {
		c.logger.Warn("twilio request failed", "resource", resource, "error", err)
		return "", err
	}
	return sid, nil
}

func (c *Client) postOnce(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach twilio: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseAPIError(resp.StatusCode, body)
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}
	return parsed.SID, nil
}
