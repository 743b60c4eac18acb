package checkout

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
)

var testShipping = models.ShippingAddress{
	Name:       "Pat Collector",
	Line1:      "1 Mint St",
	City:       "Denver",
	State:      "CO",
	PostalCode: "80014",
	Country:    "US",
}

func succeededIntent(id string) *payments.Intent {
	return &payments.Intent{ID: id, Status: payments.StatusSucceeded}
}

func TestCommitOrder_RejectsUnpaidIntent(t *testing.T) {
	env := newTestEnv(t)
	env.processor.Seed(&payments.Intent{ID: "pi_1", Status: payments.StatusRequiresAction})

	_, err := env.svc.CommitOrder(context.Background(), CommitInput{
		PaymentIntentID: "pi_1",
		Items:           []models.CartItem{{SeriesID: "1", Quantity: 1}},
		Shipping:        testShipping,
		GuestEmail:      "guest@example.com",
	}, nil)
	assert.ErrorIs(t, err, ErrPaymentNotSucceeded)
}

func TestCommitOrder_GuestCheckoutCreatesShadowUser(t *testing.T) {
	env := newTestEnv(t)
	env.processor.Seed(succeededIntent("pi_1"))
	ctx := context.Background()

	// shadow user find-or-create
	env.mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
		WithArgs("guest@example.com").
		WillReturnError(sql.ErrNoRows)
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("guest@example.com", "Guest").
		WillReturnResult(sqlmock.NewResult(7, 1))
	env.mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, "guest@example.com", "Guest", true))

	// no order yet for this intent
	env.mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE payment_intent_id = ?`)).
		WithArgs("pi_1").
		WillReturnError(sql.ErrNoRows)

	// item resolution
	env.mock.ExpectQuery(regexp.QuoteMeta(selectSeriesByID)).
		WithArgs(int64(1)).
		WillReturnRows(seriesRow(1, "Morgan Dollar Pack", "49.99", 10, 5, true))

	// the atomic commit
	env.mock.ExpectBegin()
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_claims`)).
		WithArgs("pi_1", "client").
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE series SET sold_count = sold_count + ?`)).
		WithArgs(1, int64(1), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO series_purchases`)).
		WithArgs(int64(7), int64(1), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_claims SET order_id = ?`)).
		WithArgs(int64(42), "pi_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET loyalty_points = loyalty_points + ?`)).
		WithArgs(54, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	// fan-out: label result recorded (shadow user, so no address save)
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET label_status = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order, err := env.svc.CommitOrder(ctx, CommitInput{
		PaymentIntentID: "pi_1",
		Items:           []models.CartItem{{SeriesID: "1", Quantity: 1}},
		Shipping:        testShipping,
		GuestEmail:      "guest@example.com",
		GuestName:       "Guest",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, int64(7), order.UserID)
	// guests pay the flat shipping fee
	assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("54.99")))
	assert.Equal(t, 54, order.LoyaltyPointsEarned)
	require.Len(t, order.Items, 1)

	// fan-out reached the carrier, both email sends, and the user sync
	assert.Len(t, env.carrier.Requests, 1)
	assert.Len(t, env.mailer.Confirmations, 1)
	assert.Len(t, env.mailer.AdminNotices, 1)
	assert.Equal(t, []string{"guest@example.com"}, env.inventory.Synced)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCommitOrder_AtomicRollbackOnInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	env.processor.Seed(succeededIntent("pi_2"))
	user := &models.User{ID: 3, Email: "buyer@example.com", Name: "Buyer"}

	env.mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE payment_intent_id = ?`)).
		WithArgs("pi_2").
		WillReturnError(sql.ErrNoRows)

	env.mock.ExpectQuery(regexp.QuoteMeta(selectSeriesByID)).
		WithArgs(int64(1)).
		WillReturnRows(seriesRow(1, "Pack A", "10.00", 100, 0, true))
	env.mock.ExpectQuery(regexp.QuoteMeta(selectSeriesByID)).
		WithArgs(int64(2)).
		WillReturnRows(seriesRow(2, "Pack B", "20.00", 100, 99, true))

	env.mock.ExpectBegin()
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_claims`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE series SET sold_count = sold_count + ?`)).
		WithArgs(1, int64(1), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO series_purchases`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// second item has 1 remaining but 2 requested: conditional update matches nothing
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE series SET sold_count = sold_count + ?`)).
		WithArgs(2, int64(2), 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectRollback()

	_, err := env.svc.CommitOrder(context.Background(), CommitInput{
		PaymentIntentID: "pi_2",
		Items: []models.CartItem{
			{SeriesID: "1", Quantity: 1},
			{SeriesID: "2", Quantity: 2},
		},
		Shipping: testShipping,
	}, user)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "no longer available in the requested quantity", verr.Items[0].Message)

	// no order was created, no side effects ran
	assert.Empty(t, env.carrier.Requests)
	assert.Empty(t, env.mailer.Confirmations)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCommitOrder_RepeatedCommitReturnsExistingOrder(t *testing.T) {
	env := newTestEnv(t)
	env.processor.Seed(succeededIntent("pi_3"))
	user := &models.User{ID: 3, Email: "buyer@example.com"}

	cols := []string{
		"id", "reference", "user_id", "subtotal", "shipping_cost", "total",
		"payment_status", "payment_intent_id",
		"ship_name", "ship_line1", "ship_line2", "ship_city", "ship_state",
		"ship_postal_code", "ship_country",
		"label_status", "tracking_number", "label_url", "loyalty_points_earned", "created_at",
	}
	env.mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE payment_intent_id = ?`)).
		WithArgs("pi_3").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			11, "ref-11", 3, "10.00", "0.00", "10.00",
			"succeeded", "pi_3",
			"Pat", "1 Mint St", nil, "Denver", "CO", "80014", "US",
			"GENERATED", "TRK1", "https://labels.example.com/1.pdf", 10, time.Now()))

	order, err := env.svc.CommitOrder(context.Background(), CommitInput{
		PaymentIntentID: "pi_3",
		Items:           []models.CartItem{{SeriesID: "1", Quantity: 1}},
		Shipping:        testShipping,
	}, user)
	require.NoError(t, err)
	assert.Equal(t, int64(11), order.ID)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCommitOrder_LineItemsSumToSubtotal(t *testing.T) {
	env := newTestEnv(t)
	env.processor.Seed(succeededIntent("pi_4"))
	user := &models.User{ID: 3, Email: "buyer@example.com", Name: "Buyer"}

	env.mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE payment_intent_id = ?`)).
		WithArgs("pi_4").
		WillReturnError(sql.ErrNoRows)

	env.mock.ExpectQuery(regexp.QuoteMeta(selectSeriesByID)).
		WithArgs(int64(1)).
		WillReturnRows(seriesRow(1, "Pack A", "10.00", 100, 0, true))
	env.mock.ExpectQuery(regexp.QuoteMeta(selectSeriesByID)).
		WithArgs(int64(2)).
		WillReturnRows(seriesRow(2, "Pack B", "19.99", 100, 0, true))

	env.mock.ExpectBegin()
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_claims`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE series SET sold_count`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO series_purchases`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE series SET sold_count`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO series_purchases`)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WillReturnResult(sqlmock.NewResult(50, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_claims SET order_id`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET loyalty_points`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	// fan-out: authenticated user gets the address saved
	env.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM addresses`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	env.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM addresses WHERE user_id = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO addresses`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET label_status = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order, err := env.svc.CommitOrder(context.Background(), CommitInput{
		PaymentIntentID: "pi_4",
		Items: []models.CartItem{
			{SeriesID: "1", Quantity: 2},
			{SeriesID: "2", Quantity: 3},
		},
		Shipping: testShipping,
	}, user)
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	sum := decimal.Zero
	for _, it := range order.Items {
		sum = sum.Add(it.LineTotal)
	}
	assert.True(t, sum.Equal(order.Subtotal), "line totals %s should sum to subtotal %s", sum, order.Subtotal)
	// authenticated non-shadow user ships free
	assert.True(t, order.ShippingCost.IsZero())
	assert.True(t, order.Total.Equal(order.Subtotal))
}
