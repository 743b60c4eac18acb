package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
)

// IntentInput is the client's request to authorize payment for a cart.
type IntentInput struct {
	Items      []models.CartItem      `json:"items" binding:"required"`
	Shipping   models.ShippingAddress `json:"shipping" binding:"required"`
	GuestEmail string                 `json:"guest_email"`
	GuestName  string                 `json:"guest_name"`
}

// IntentResult is what the client needs to complete payment: the opaque
// client secret is the only mechanism for doing so.
type IntentResult struct {
	IntentID     string          `json:"intent_id"`
	ClientSecret string          `json:"client_secret"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`
}

// CreateIntent validates the cart, computes totals, resolves a processor
// customer for the purchaser, and creates the payment authorization.
func (s *Service) CreateIntent(ctx context.Context, in IntentInput, user *models.User) (*IntentResult, error) {
	// Re-run full validation; intent creation never trusts client pricing
	resolved, err := s.ValidateCart(ctx, in.Items, user)
	if err != nil {
		return nil, err
	}

	subtotal := Subtotal(resolved)
	shippingCost := s.shippingCost(user)
	total := subtotal.Add(shippingCost)

	purchaser, err := s.resolvePurchaser(ctx, user, in.GuestEmail, in.GuestName)
	if err != nil {
		return nil, err
	}

	customerID, err := s.resolveCustomer(ctx, purchaser)
	if err != nil {
		return nil, err
	}

	intent, err := s.processor.CreateIntent(ctx, payments.IntentRequest{
		Amount:      total,
		CustomerID:  customerID,
		Email:       purchaser.Email,
		Shipping:    in.Shipping,
		OffSession:  user != nil && !user.IsShadow,
		Description: fmt.Sprintf("ShackPack order, %d item(s)", len(resolved)),
		Metadata: map[string]string{
			"user_id": strconv.FormatInt(purchaser.ID, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Total:        total,
	}, nil
}

// shippingCost is zero for real accounts and the flat guest fee for everyone
// else (guests and shadow users).
func (s *Service) shippingCost(user *models.User) decimal.Decimal {
	if user.QualifiesForFreeShipping() {
		return decimal.Zero
	}
	fee, err := decimal.NewFromString(s.cfg.GuestShippingFee)
	if err != nil {
		return decimal.NewFromInt(5)
	}
	return fee
}

// resolvePurchaser returns the user the order belongs to: the authenticated
// identity, or a found-or-created shadow account for the guest email.
func (s *Service) resolvePurchaser(ctx context.Context, user *models.User, guestEmail, guestName string) (*models.User, error) {
	if user != nil {
		return user, nil
	}
	if guestEmail == "" {
		return nil, ErrGuestEmailRequired
	}
	purchaser, err := s.users.FindOrCreateShadow(ctx, guestEmail, guestName)
	if err != nil {
		return nil, err
	}
	return purchaser, nil
}

// resolveCustomer reuses the stored processor customer reference or creates
// and persists one.
func (s *Service) resolveCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID.Valid && user.StripeCustomerID.String != "" {
		return user.StripeCustomerID.String, nil
	}

	customerID, err := s.processor.CreateCustomer(ctx, user.Email, user.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create processor customer: %w", err)
	}
	if err := s.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
		return "", err
	}
	user.StripeCustomerID.String = customerID
	user.StripeCustomerID.Valid = true
	return customerID, nil
}
