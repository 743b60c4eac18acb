package shipping

import (
	"context"
	"fmt"
	"sync"

	"github.com/zfrey55/shackpck-sub000/internal/config"
)

// MockCarrier hands out sequential tracking numbers.
type MockCarrier struct {
	mu       sync.Mutex
	counter  int
	Requests []ShipmentRequest

	Err error
}

func NewMockCarrier() *MockCarrier {
	return &MockCarrier{}
}

func (m *MockCarrier) CreateShipment(ctx context.Context, req ShipmentRequest) (*Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.counter++
	m.Requests = append(m.Requests, req)
	return &Label{
		TrackingNumber: fmt.Sprintf("TRK%06d", m.counter),
		LabelURL:       fmt.Sprintf("https://labels.example.com/%d.pdf", m.counter),
	}, nil
}

// NewCarrier creates a carrier based on configuration
func NewCarrier(cfg *config.ShippingConfig) (Carrier, error) {
	switch cfg.Provider {
	case "http":
		return NewHTTPCarrier(cfg), nil
	case "mock":
		return NewMockCarrier(), nil
	default:
		return nil, fmt.Errorf("unsupported shipping provider: %s", cfg.Provider)
	}
}

// Compile-time interface check
var _ Carrier = (*MockCarrier)(nil)
