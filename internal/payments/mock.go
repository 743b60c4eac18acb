package payments

import (
	"context"
	"fmt"
	"sync"
)

// MockProcessor is an in-memory processor for tests and local development.
// Created intents report succeeded immediately unless FailNext is set.
type MockProcessor struct {
	mu        sync.Mutex
	customers int
	intents   map[string]*Intent

	FailNext bool
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{intents: make(map[string]*Intent)}
}

func (m *MockProcessor) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers++
	return fmt.Sprintf("cus_mock_%d", m.customers), nil
}

func (m *MockProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := StatusSucceeded
	if m.FailNext {
		status = StatusFailed
		m.FailNext = false
	}

	id := fmt.Sprintf("pi_mock_%d", len(m.intents)+1)
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       status,
		AmountCents:  AmountCents(req.Amount),
		Metadata:     req.Metadata,
	}
	m.intents[id] = intent
	return intent, nil
}

func (m *MockProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", id)
	}
	return intent, nil
}

// Seed registers an intent with a fixed id and status.
func (m *MockProcessor) Seed(intent *Intent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents[intent.ID] = intent
}

// Compile-time interface check
var _ Processor = (*MockProcessor)(nil)
