package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

type LabelStatus string

const (
	LabelPending   LabelStatus = "PENDING"
	LabelGenerated LabelStatus = "GENERATED"
	LabelFailed    LabelStatus = "FAILED"
)

// Order is an immutable snapshot of a completed purchase. Only the shipping
// label fields are mutated after creation.
type Order struct {
	ID                  int64           `json:"id" db:"id"`
	Reference           string          `json:"reference" db:"reference"`
	UserID              int64           `json:"user_id" db:"user_id"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingCost        decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	Total               decimal.Decimal `json:"total" db:"total"`
	PaymentStatus       PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentIntentID     sql.NullString  `json:"payment_intent_id" db:"payment_intent_id"`
	ShippingAddress     ShippingAddress `json:"shipping_address"`
	LabelStatus         LabelStatus     `json:"label_status" db:"label_status"`
	TrackingNumber      sql.NullString  `json:"tracking_number" db:"tracking_number"`
	LabelURL            sql.NullString  `json:"label_url" db:"label_url"`
	LoyaltyPointsEarned int             `json:"loyalty_points_earned" db:"loyalty_points_earned"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	Items               []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a line item of an order. Created with its parent and never
// mutated afterwards.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	SeriesID  int64           `json:"series_id" db:"series_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total" db:"line_total"`
}

// ShippingAddress is the address value embedded in an order row.
type ShippingAddress struct {
	Name       string `json:"name" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country"`
}
