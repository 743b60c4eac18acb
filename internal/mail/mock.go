package mail

import (
	"context"
	"sync"
)

// MockSender records sent mail for tests.
type MockSender struct {
	mu            sync.Mutex
	Confirmations []OrderSummary
	AdminNotices  []OrderSummary

	Err error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) SendOrderConfirmation(ctx context.Context, o OrderSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Confirmations = append(m.Confirmations, o)
	return nil
}

func (m *MockSender) SendAdminNotification(ctx context.Context, o OrderSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.AdminNotices = append(m.AdminNotices, o)
	return nil
}

// Compile-time interface check
var _ Sender = (*MockSender)(nil)
