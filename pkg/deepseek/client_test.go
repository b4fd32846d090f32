package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/themobileprof/mamacare-be/pkg/llm"
)

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantBaseURL string
		wantModel   string
		wantTimeout time.Duration
	}{
		{
			name:        "default configuration",
			config:      Config{APIKey: "test-key"},
			wantBaseURL: "https://api.deepseek.com/v1",
			wantModel:   "deepseek-chat",
			wantTimeout: 30 * time.Second,
		},
		{
			name: "custom configuration",
			config: Config{
				APIKey:  "test-key",
				BaseURL: "https://custom.api.com/",
				Model:   "custom-model",
				Timeout: 5 * time.Second,
			},
			wantBaseURL: "https://custom.api.com",
			wantModel:   "custom-model",
			wantTimeout: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(tt.config)

			if client.baseURL != tt.wantBaseURL {
				t.Errorf("baseURL = %v, want %v", client.baseURL, tt.wantBaseURL)
			}
			if client.model != tt.wantModel {
				t.Errorf("model = %v, want %v", client.model, tt.wantModel)
			}
			if client.timeout != tt.wantTimeout {
				t.Errorf("timeout = %v, want %v", client.timeout, tt.wantTimeout)
			}
		})
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MaxTokens != 300 || req.Temperature != 0.4 {
			t.Errorf("unexpected generation params: %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "what to eat?" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":" Eat dal. "}}]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{APIKey: "test-key", BaseURL: server.URL})
	got, err := client.Complete(context.Background(), llm.CompletionRequest{
		Prompt:      "what to eat?",
		MaxTokens:   300,
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Eat dal." {
		t.Errorf("Complete() = %q, want %q", got, "Eat dal.")
	}
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, nil},
		{"no choices", http.StatusOK, `{"choices":[]}`, llm.ErrEmptyResponse},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, llm.ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHTTPClient(Config{APIKey: "k", BaseURL: server.URL}).
				Complete(context.Background(), llm.CompletionRequest{Prompt: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComplete_NoAPIKey(t *testing.T) {
	_, err := NewHTTPClient(Config{}).Complete(context.Background(), llm.CompletionRequest{Prompt: "x"})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
