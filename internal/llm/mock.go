package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one step of a MockProvider script: either canned
// output or an error to inject.
type MockResponse struct {
	Content    json.RawMessage
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider replays a scripted sequence of outcomes and records
// every request it sees. It backs the supplier and retry tests; the
// "mock" provider name in config wires it in for offline play.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	next   int
	Calls  []Request
}

// NewMockProvider creates a MockProvider that plays back the given
// script in order.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// MockQuestion builds a scripted response holding the JSON payload the
// question supplier expects: question text, the correct answer, and its
// distractors.
func MockQuestion(text, answer string, wrong ...string) MockResponse {
	payload, _ := json.Marshal(map[string]any{
		"question_text":  text,
		"correct_answer": answer,
		"wrong_answers":  wrong,
		"explanation":    answer + " is the correct answer.",
	})
	return MockResponse{
		Content: payload,
		Usage:   Usage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
	}
}

// Generate plays the next scripted step. A script that has run dry
// behaves like an outage.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.next >= len(m.script) {
		return nil, &UnavailableError{}
	}
	step := m.script[m.next]
	m.next++

	if step.Err != nil {
		return nil, step.Err
	}
	stop := step.StopReason
	if stop == "" {
		stop = "end"
	}
	return &Response{
		Content:    step.Content,
		Usage:      step.Usage,
		Model:      "mock",
		StopReason: stop,
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a step to the script.
func (m *MockProvider) AddResponse(step MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, step)
}

// CallCount reports how many Generate calls have been made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
