package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Canned responses are matched against the last message's content; scripted
// errors are consumed in order before any response is produced, which lets
// tests rehearse retry behavior.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	errs      []error
	calls     int
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith queues errors returned by the next Generate calls, in order.
func (m *MockModel) FailWith(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
}

// Calls returns how many times Generate has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", err
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]
	if resp, ok := m.responses[last.Content]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", last.Content), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
