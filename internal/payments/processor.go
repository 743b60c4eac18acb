package payments

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

// IntentStatus mirrors the processor's payment-intent status enum. The core
// only ever branches on "succeeded"; everything else is treated as not-paid.
type IntentStatus string

const (
	StatusRequiresAction IntentStatus = "requires_action"
	StatusSucceeded      IntentStatus = "succeeded"
	StatusFailed         IntentStatus = "failed"
)

// Intent is the slice of a processor payment intent the storefront cares about.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       IntentStatus      `json:"status"`
	AmountCents  int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
}

// IntentRequest carries everything needed to authorize a payment.
type IntentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	CustomerID  string
	Email       string
	Shipping    models.ShippingAddress
	OffSession  bool // allow future off-session reuse, authenticated users only
	Metadata    map[string]string
	Description string
}

// WebhookEvent is a verified processor callback.
type WebhookEvent struct {
	Type   string
	Intent Intent
}

// Processor is the payment collaborator. All implementations are opaque
// services; the storefront never inspects more than the status enum.
type Processor interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// AmountCents converts a decimal dollar amount to integer cents, which is the
// unit every processor API speaks.
func AmountCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
