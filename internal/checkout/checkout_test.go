package checkout

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/inventory"
	"github.com/zfrey55/shackpck-sub000/internal/mail"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
	"github.com/zfrey55/shackpck-sub000/internal/shipping"
)

type testEnv struct {
	svc       *Service
	mock      sqlmock.Sqlmock
	processor *payments.MockProcessor
	inventory *inventory.MockClient
	carrier   *shipping.MockCarrier
	mailer    *mail.MockSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open stub database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		mock:      mock,
		processor: payments.NewMockProcessor(),
		inventory: inventory.NewMockClient(),
		carrier:   shipping.NewMockCarrier(),
		mailer:    mail.NewMockSender(),
	}
	env.svc = NewService(
		&database.DB{DB: sqlDB},
		env.processor,
		env.inventory,
		env.carrier,
		env.mailer,
		config.CheckoutConfig{
			GuestShippingFee: "5.00",
			PointsPerDollar:  1,
			PackLimit:        5,
		},
		"whsec_test",
	)
	return env
}

var seriesColumns = []string{
	"id", "name", "description", "price", "total_count", "sold_count",
	"active", "featured", "external_ref", "created_at",
}

func seriesRow(id int64, name, price string, total, sold int, active bool) *sqlmock.Rows {
	return sqlmock.NewRows(seriesColumns).
		AddRow(id, name, "", price, total, sold, active, false, nil, time.Now())
}

var userColumnList = []string{
	"id", "email", "password_hash", "name", "role", "loyalty_points",
	"is_shadow", "stripe_customer_id", "created_at",
}

func userRow(id int64, email, name string, shadow bool) *sqlmock.Rows {
	return sqlmock.NewRows(userColumnList).
		AddRow(id, email, nil, name, "customer", 0, shadow, nil, time.Now())
}
