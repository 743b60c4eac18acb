package mail

import (
	"context"
	"fmt"

	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

// OrderSummary is the slice of an order that goes into notification emails.
type OrderSummary struct {
	Reference    string
	Email        string
	Name         string
	Total        string
	ItemCount    int
	Items        []models.OrderItem
	PointsEarned int
}

// Sender delivers transactional email. Failures are logged by callers and
// never fail the order.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, o OrderSummary) error
	SendAdminNotification(ctx context.Context, o OrderSummary) error
}

// NewSender creates a mail sender based on configuration
func NewSender(cfg *config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "http":
		return NewHTTPSender(cfg)
	case "mock":
		return NewMockSender(), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}
