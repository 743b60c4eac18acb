package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

type OrderStore struct {
	db *database.DB
}

func NewOrderStore(db *database.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, reference, user_id, subtotal, shipping_cost, total,
	payment_status, payment_intent_id,
	ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country,
	label_status, tracking_number, label_url, loyalty_points_earned, created_at`

func scanOrder(row *sql.Row) (*models.Order, error) {
	var o models.Order
	var line2 sql.NullString
	err := row.Scan(&o.ID, &o.Reference, &o.UserID, &o.Subtotal, &o.ShippingCost, &o.Total,
		&o.PaymentStatus, &o.PaymentIntentID,
		&o.ShippingAddress.Name, &o.ShippingAddress.Line1, &line2,
		&o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.LabelStatus, &o.TrackingNumber, &o.LabelURL, &o.LoyaltyPointsEarned, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	o.ShippingAddress.Line2 = line2.String
	return &o, nil
}

// Create inserts the order row inside the caller's transaction and fills in
// its generated id.
func (s *OrderStore) Create(ctx context.Context, exec Execer, o *models.Order) error {
	res, err := exec.ExecContext(ctx, `
		INSERT INTO orders (
			reference, user_id, subtotal, shipping_cost, total,
			payment_status, payment_intent_id,
			ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country,
			loyalty_points_earned
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.Reference, o.UserID, o.Subtotal, o.ShippingCost, o.Total,
		o.PaymentStatus, o.PaymentIntentID,
		o.ShippingAddress.Name, o.ShippingAddress.Line1, o.ShippingAddress.Line2,
		o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.PostalCode, o.ShippingAddress.Country,
		o.LoyaltyPointsEarned)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new order id: %w", err)
	}
	return nil
}

func (s *OrderStore) CreateItem(ctx context.Context, exec Execer, item *models.OrderItem) error {
	res, err := exec.ExecContext(ctx, `
		INSERT INTO order_items (order_id, series_id, quantity, unit_price, line_total)
		VALUES (?, ?, ?, ?, ?)
	`, item.OrderID, item.SeriesID, item.Quantity, item.UnitPrice, item.LineTotal)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	item.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new order item id: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE reference = ?`, reference)
	return scanOrder(row)
}

func (s *OrderStore) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = ?`, intentID)
	return scanOrder(row)
}

func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var o models.Order
		var line2 sql.NullString
		err := rows.Scan(&o.ID, &o.Reference, &o.UserID, &o.Subtotal, &o.ShippingCost, &o.Total,
			&o.PaymentStatus, &o.PaymentIntentID,
			&o.ShippingAddress.Name, &o.ShippingAddress.Line1, &line2,
			&o.ShippingAddress.City, &o.ShippingAddress.State,
			&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
			&o.LabelStatus, &o.TrackingNumber, &o.LabelURL, &o.LoyaltyPointsEarned, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.ShippingAddress.Line2 = line2.String
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *OrderStore) ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, series_id, quantity, unit_price, line_total
		FROM order_items WHERE order_id = ?
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SeriesID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateLabel attaches a shipping-label result to the order. The only mutation
// an order row sees after creation.
func (s *OrderStore) UpdateLabel(ctx context.Context, orderID int64, status models.LabelStatus, trackingNumber, labelURL string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders SET label_status = ?, tracking_number = NULLIF(?, ''), label_url = NULLIF(?, '')
		WHERE id = ?
	`, status, trackingNumber, labelURL, orderID)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return nil
}

// ClaimPaymentIntent is the idempotency gate shared by the client-driven
// commit and the webhook handler. The first caller inserts the claim row and
// wins; a duplicate key means the other path already processed (or is
// processing) this intent, and the caller must not mutate anything.
func (s *OrderStore) ClaimPaymentIntent(ctx context.Context, exec Execer, intentID, claimedBy string) (bool, error) {
	_, err := exec.ExecContext(ctx,
		`INSERT INTO payment_claims (payment_intent_id, claimed_by) VALUES (?, ?)`,
		intentID, claimedBy)
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim payment intent: %w", err)
	}
	return true, nil
}

// AttachClaimOrder links the claim row to the order created under it.
func (s *OrderStore) AttachClaimOrder(ctx context.Context, exec Execer, intentID string, orderID int64) error {
	_, err := exec.ExecContext(ctx,
		`UPDATE payment_claims SET order_id = ? WHERE payment_intent_id = ?`, orderID, intentID)
	if err != nil {
		return fmt.Errorf("failed to attach order to claim: %w", err)
	}
	return nil
}
