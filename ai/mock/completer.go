package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/summarit/ai"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default deterministic behavior.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	callCount int
	requests  []ai.CompletionRequest
}

// NewMockCompleter creates a mock completer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockCompleter().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a deterministic completion derived from the request.
func (m *MockCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.callCount++
	m.requests = append(m.requests, req)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	return fmt.Sprintf("Synthesized content for prompt of %d characters (see page 1).", len(req.UserPrompt)), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// Requests returns every request passed to Complete, in order.
func (m *MockCompleter) Requests() []ai.CompletionRequest {
	return m.requests
}

// Reset clears the call count and injected behavior.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.requests = nil
	m.CompleteFunc = nil
}
