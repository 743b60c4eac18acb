package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zfrey55/shackpck-sub000/internal/mail"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
	"github.com/zfrey55/shackpck-sub000/internal/shipping"
	"github.com/zfrey55/shackpck-sub000/internal/store"
)

// CommitInput is the client's request to turn a confirmed payment into an
// order. Items are re-sent by the client and re-resolved server-side.
type CommitInput struct {
	PaymentIntentID string                 `json:"payment_intent_id" binding:"required"`
	Items           []models.CartItem      `json:"items" binding:"required"`
	Shipping        models.ShippingAddress `json:"shipping" binding:"required"`
	GuestEmail      string                 `json:"guest_email"`
	GuestName       string                 `json:"guest_name"`
}

// CommitOrder verifies the payment succeeded, then atomically decrements
// inventory, records per-user purchase counts, and creates the order with its
// line items. Any in-transaction failure rolls the whole order back. After the
// commit, best-effort side effects run; their failures are logged and never
// undo the order.
func (s *Service) CommitOrder(ctx context.Context, in CommitInput, user *models.User) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Step 1: verify the payment actually succeeded
	intent, err := s.processor.GetIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment intent: %w", err)
	}
	if intent.Status != payments.StatusSucceeded {
		return nil, ErrPaymentNotSucceeded
	}

	// Step 2: resolve the purchasing identity
	purchaser, err := s.resolvePurchaser(ctx, user, in.GuestEmail, in.GuestName)
	if err != nil {
		return nil, err
	}

	// A repeated commit for the same intent returns the existing order
	if existing, err := s.orders.GetByPaymentIntent(ctx, in.PaymentIntentID); err == nil {
		return existing, nil
	} else if err != store.ErrNotFound {
		return nil, err
	}

	// Step 3: re-resolve every item, mirroring remote-only records locally
	var resolved []models.ResolvedItem
	var itemErrs []models.ItemError
	for _, item := range in.Items {
		if item.Quantity < 1 || item.Quantity > s.cfg.PackLimit {
			itemErrs = append(itemErrs, models.ItemError{
				SeriesID: item.SeriesID,
				Message:  fmt.Sprintf("quantity must be between 1 and %d", s.cfg.PackLimit),
			})
			continue
		}
		series, err := s.resolveSeries(ctx, item, true)
		if err != nil {
			return nil, err
		}
		if series == nil {
			itemErrs = append(itemErrs, models.ItemError{SeriesID: item.SeriesID, Message: "unknown item"})
			continue
		}
		resolved = append(resolved, models.ResolvedItem{
			Series:    series,
			Quantity:  item.Quantity,
			LineTotal: series.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	if len(itemErrs) > 0 {
		return nil, &ValidationError{Items: itemErrs}
	}

	subtotal := Subtotal(resolved)
	shippingCost := s.shippingCost(user)
	total := subtotal.Add(shippingCost)
	points := s.loyaltyPoints(total)

	// Step 4: the atomic commit
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The intent id is the idempotency key shared with the webhook path.
	// Losing the claim means the webhook already credited loyalty points;
	// the order itself is still created here, exactly once.
	claimed, err := s.orders.ClaimPaymentIntent(ctx, tx, in.PaymentIntentID, "client")
	if err != nil {
		return nil, err
	}

	for _, line := range resolved {
		if err := s.series.SellUnits(ctx, tx, line.Series.ID, line.Quantity); err != nil {
			// The conditional decrement misses when stock ran out, but also
			// when the series was deactivated after validation.
			if err == store.ErrInsufficientStock {
				return nil, &ValidationError{Items: []models.ItemError{{
					SeriesID: line.Series.Name,
					Message:  "no longer available in the requested quantity",
				}}}
			}
			return nil, err
		}
		if err := s.series.RecordPurchase(ctx, tx, purchaser.ID, line.Series.ID, line.Quantity); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		Reference:           uuid.NewString(),
		UserID:              purchaser.ID,
		Subtotal:            subtotal,
		ShippingCost:        shippingCost,
		Total:               total,
		PaymentStatus:       models.PaymentSucceeded,
		PaymentIntentID:     nullString(in.PaymentIntentID),
		ShippingAddress:     in.Shipping,
		LabelStatus:         models.LabelPending,
		LoyaltyPointsEarned: points,
	}
	if err := s.orders.Create(ctx, tx, order); err != nil {
		return nil, err
	}
	for _, line := range resolved {
		item := models.OrderItem{
			OrderID:   order.ID,
			SeriesID:  line.Series.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Series.Price,
			LineTotal: line.LineTotal,
		}
		if err := s.orders.CreateItem(ctx, tx, &item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	if err := s.orders.AttachClaimOrder(ctx, tx, in.PaymentIntentID, order.ID); err != nil {
		return nil, err
	}
	if claimed {
		if err := s.users.AddLoyaltyPoints(ctx, tx, purchaser.ID, points); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	// Step 5: post-commit fan-out, best-effort
	s.runFanOut(ctx, order, purchaser, resolved)

	return order, nil
}

// loyaltyPoints is floor(total dollars * points per dollar).
func (s *Service) loyaltyPoints(total decimal.Decimal) int {
	return int(total.Mul(decimal.NewFromInt(int64(s.cfg.PointsPerDollar))).Floor().IntPart())
}

// runFanOut performs the non-transactional side effects of a committed order.
// Each step fails independently; the order is already durable.
func (s *Service) runFanOut(ctx context.Context, order *models.Order, purchaser *models.User, items []models.ResolvedItem) {
	// Save the shipping address for real accounts
	if purchaser.QualifiesForFreeShipping() {
		if err := s.saveShippingAddress(ctx, purchaser.ID, order.ShippingAddress); err != nil {
			log.Printf("order %s: failed to save address: %v", order.Reference, err)
		}
	}

	// Mirror guest-created identities into the inventory app
	if purchaser.IsShadow {
		if err := s.inventory.SyncUser(ctx, purchaser.Email, purchaser.Name); err != nil {
			log.Printf("order %s: failed to sync user %s: %v", order.Reference, purchaser.Email, err)
		}
	}

	// Push aggregated per-series sales to the inventory app
	sales := make(map[string]int)
	for _, it := range items {
		if it.Series.ExternalRef.Valid {
			sales[it.Series.ExternalRef.String] += it.Quantity
		}
	}
	for ref, qty := range sales {
		if err := s.inventory.RecordPackSale(ctx, ref, qty); err != nil {
			log.Printf("order %s: failed to push sale for %s: %v", order.Reference, ref, err)
		}
	}

	s.generateLabel(ctx, order, purchaser.Email)
	s.sendOrderEmails(ctx, order, purchaser)
}

func (s *Service) saveShippingAddress(ctx context.Context, userID int64, sa models.ShippingAddress) error {
	exists, err := s.addresses.Exists(ctx, userID, sa)
	if err != nil || exists {
		return err
	}
	country := sa.Country
	if country == "" {
		country = "US"
	}
	return s.addresses.Create(ctx, &models.Address{
		UserID:     userID,
		Name:       sa.Name,
		Line1:      sa.Line1,
		Line2:      sa.Line2,
		City:       sa.City,
		State:      sa.State,
		PostalCode: sa.PostalCode,
		Country:    country,
	})
}

// generateLabel requests a carrier label and records the outcome on the order.
func (s *Service) generateLabel(ctx context.Context, order *models.Order, email string) {
	label, err := s.carrier.CreateShipment(ctx, shipping.ShipmentRequest{
		OrderReference: order.Reference,
		Recipient:      order.ShippingAddress,
		Email:          email,
	})
	if err != nil {
		log.Printf("order %s: failed to generate label: %v", order.Reference, err)
		if uerr := s.orders.UpdateLabel(ctx, order.ID, models.LabelFailed, "", ""); uerr != nil {
			log.Printf("order %s: failed to record label failure: %v", order.Reference, uerr)
		}
		return
	}
	order.LabelStatus = models.LabelGenerated
	if err := s.orders.UpdateLabel(ctx, order.ID, models.LabelGenerated, label.TrackingNumber, label.LabelURL); err != nil {
		log.Printf("order %s: failed to record label: %v", order.Reference, err)
	}
}

func (s *Service) sendOrderEmails(ctx context.Context, order *models.Order, purchaser *models.User) {
	summary := mail.OrderSummary{
		Reference:    order.Reference,
		Email:        purchaser.Email,
		Name:         purchaser.Name,
		Total:        order.Total.StringFixed(2),
		ItemCount:    len(order.Items),
		Items:        order.Items,
		PointsEarned: order.LoyaltyPointsEarned,
	}
	if err := s.mailer.SendOrderConfirmation(ctx, summary); err != nil {
		log.Printf("order %s: failed to send confirmation email: %v", order.Reference, err)
	}
	if err := s.mailer.SendAdminNotification(ctx, summary); err != nil {
		log.Printf("order %s: failed to send admin notification: %v", order.Reference, err)
	}
}
