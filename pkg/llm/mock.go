package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for testing
type MockClient struct {
	mu sync.Mutex

	// CompleteFunc customizes the behavior; nil returns Reply
	CompleteFunc func(context.Context, CompletionRequest) (string, error)
	Reply        string

	// Calls records every request for assertions
	Calls []CompletionRequest
}

// Complete implements Client
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return m.Reply, nil
}

// CallCount returns how many times Complete was called
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
