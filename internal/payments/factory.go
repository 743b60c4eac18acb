package payments

import (
	"fmt"

	"github.com/zfrey55/shackpck-sub000/internal/config"
)

// NewProcessor creates a payment processor based on configuration
func NewProcessor(cfg *config.PaymentsConfig) (Processor, error) {
	switch cfg.Provider {
	case "stripe":
		return NewStripeProcessor(cfg.APIKeyEnv, cfg.APIKey)
	case "mock":
		return NewMockProcessor(), nil
	default:
		return nil, fmt.Errorf("unsupported payments provider: %s", cfg.Provider)
	}
}
