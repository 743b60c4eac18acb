package checkout

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/inventory"
	"github.com/zfrey55/shackpck-sub000/internal/mail"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
	"github.com/zfrey55/shackpck-sub000/internal/shipping"
	"github.com/zfrey55/shackpck-sub000/internal/store"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrGuestEmailRequired  = errors.New("guest email is required")
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
)

// ValidationError carries the per-item failures of a rejected cart. The whole
// batch is rejected but every item is reported.
type ValidationError struct {
	Items []models.ItemError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Items))
	for i, it := range e.Items {
		msgs[i] = fmt.Sprintf("%s: %s", it.SeriesID, it.Message)
	}
	return "cart validation failed: " + strings.Join(msgs, "; ")
}

// Service orchestrates the order-placement workflow: cart validation, payment
// intent creation, the atomic order commit, post-commit fan-out, and webhook
// reconciliation.
type Service struct {
	db        *database.DB
	users     *store.UserStore
	series    *store.SeriesStore
	orders    *store.OrderStore
	addresses *store.AddressStore

	processor payments.Processor
	inventory inventory.Client
	carrier   shipping.Carrier
	mailer    mail.Sender

	cfg           config.CheckoutConfig
	webhookSecret string
}

func NewService(
	db *database.DB,
	processor payments.Processor,
	inv inventory.Client,
	carrier shipping.Carrier,
	mailer mail.Sender,
	cfg config.CheckoutConfig,
	webhookSecret string,
) *Service {
	return &Service{
		db:            db,
		users:         store.NewUserStore(db),
		series:        store.NewSeriesStore(db),
		orders:        store.NewOrderStore(db),
		addresses:     store.NewAddressStore(db),
		processor:     processor,
		inventory:     inv,
		carrier:       carrier,
		mailer:        mailer,
		cfg:           cfg,
		webhookSecret: webhookSecret,
	}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func (s *Service) Users() *store.UserStore        { return s.users }
func (s *Service) Orders() *store.OrderStore      { return s.orders }
func (s *Service) Series() *store.SeriesStore     { return s.series }
func (s *Service) Addresses() *store.AddressStore { return s.addresses }
