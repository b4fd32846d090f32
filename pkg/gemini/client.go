package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/themobileprof/mamacare-be/pkg/llm"
)

// DefaultModel is the model used when none is configured
const DefaultModel = "gemini-2.0-flash-exp"

// Client implements llm.Client with the Gemini SDK
type Client struct {
	client  *genai.Client
	modelID string
}

var _ llm.Client = (*Client)(nil)

// Config holds configuration for the Gemini client
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a Gemini client. An empty key yields llm.ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrNotConfigured
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, modelID: cfg.Model}, nil
}

// Complete implements llm.Client
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	if req.Temperature >= 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

// Close releases resources held by the SDK client
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// IsNotConfigured reports whether err means no API key was provided
func IsNotConfigured(err error) bool {
	return errors.Is(err, llm.ErrNotConfigured)
}
