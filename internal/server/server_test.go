package server

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfrey55/shackpck-sub000/internal/auth"
	"github.com/zfrey55/shackpck-sub000/internal/checkout"
	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/inventory"
	"github.com/zfrey55/shackpck-sub000/internal/mail"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
	"github.com/zfrey55/shackpck-sub000/internal/shipping"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func defaultTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "production"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Checkout: config.CheckoutConfig{
			GuestShippingFee: "5.00",
			PointsPerDollar:  1,
			PackLimit:        5,
		},
		Flags: config.FlagsConfig{
			CheckoutEnabled:       true,
			AccountsEnabled:       true,
			DirectPurchaseEnabled: true,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open stub database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.DB{DB: sqlDB}
	inv := inventory.NewMockClient()
	svc := checkout.NewService(db, payments.NewMockProcessor(), inv,
		shipping.NewMockCarrier(), mail.NewMockSender(), cfg.Checkout, "")
	return NewServer(cfg, db, svc, inv), mock
}

func doJSON(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestCheckoutDisabledAnswers503(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Flags.CheckoutEnabled = false
	srv, _ := newTestServer(t, cfg)

	w := doJSON(t, srv, http.MethodPost, "/api/cart/validate", `{"items":[{"series_id":"1","quantity":1}]}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "contact us")
}

func TestAccountsDisabledAnswers503(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Flags.AccountsEnabled = false
	srv, _ := newTestServer(t, cfg)

	w := doJSON(t, srv, http.MethodPost, "/api/users/register",
		`{"email":"a@b.com","name":"A","password":"longenough"}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGuestCheckoutDisabled(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Flags.DirectPurchaseEnabled = false
	srv, _ := newTestServer(t, cfg)

	w := doJSON(t, srv, http.MethodPost, "/api/checkout/intent",
		`{"items":[{"series_id":"1","quantity":1}],"shipping":{"name":"P","line1":"1 St","city":"D","state":"CO","postal_code":"80014"}}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOrdersRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t, defaultTestConfig())

	w := doJSON(t, srv, http.MethodGet, "/api/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequiresRole(t *testing.T) {
	cfg := defaultTestConfig()
	srv, mock := newTestServer(t, cfg)

	user := &models.User{ID: 7, Email: "buyer@example.com", Role: models.RoleCustomer}
	token, err := auth.NewToken(cfg.Auth.JWTSecret, time.Hour, user)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "name", "role", "loyalty_points",
			"is_shadow", "stripe_customer_id", "created_at",
		}).AddRow(7, "buyer@example.com", nil, "Buyer", "customer", 0, false, nil, time.Now()))

	w := doJSON(t, srv, http.MethodGet, "/api/admin/checklist", "", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidateCart_MalformedRequest(t *testing.T) {
	srv, _ := newTestServer(t, defaultTestConfig())

	w := doJSON(t, srv, http.MethodPost, "/api/cart/validate", `{"items": "nope"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateCart_ItemErrorsAre400(t *testing.T) {
	srv, _ := newTestServer(t, defaultTestConfig())

	w := doJSON(t, srv, http.MethodPost, "/api/cart/validate",
		`{"items":[{"series_id":"1","quantity":6}]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quantity must be between 1 and 5")
}

func TestRegister_NewAccount(t *testing.T) {
	srv, mock := newTestServer(t, defaultTestConfig())

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "email", "password_hash", "name", "role", "loyalty_points",
			"is_shadow", "stripe_customer_id", "created_at",
		}).AddRow(9, "new@example.com", "$2a$10$hash", "Newcomer", "customer", 0, false, nil, time.Now())
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
		WithArgs("new@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(int64(9)).
		WillReturnRows(userRow())

	w := doJSON(t, srv, http.MethodPost, "/api/users/register",
		`{"email":"new@example.com","name":"Newcomer","password":"longenough"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_PromotesShadowUser(t *testing.T) {
	srv, mock := newTestServer(t, defaultTestConfig())

	cols := []string{
		"id", "email", "password_hash", "name", "role", "loyalty_points",
		"is_shadow", "stripe_customer_id", "created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
		WithArgs("guest@example.com").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(4, "guest@example.com", nil, "Guest", "customer", 54, true, nil, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(4, "guest@example.com", "$2a$10$hash", "Guest Proper", "customer", 54, false, nil, time.Now()))

	w := doJSON(t, srv, http.MethodPost, "/api/users/register",
		`{"email":"guest@example.com","name":"Guest Proper","password":"longenough"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	// the promoted account keeps the points it earned as a guest
	assert.Contains(t, w.Body.String(), `"loyalty_points":54`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_ExistingAccountConflicts(t *testing.T) {
	srv, mock := newTestServer(t, defaultTestConfig())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "name", "role", "loyalty_points",
			"is_shadow", "stripe_customer_id", "created_at",
		}).AddRow(5, "taken@example.com", "$2a$10$hash", "Owner", "customer", 0, false, nil, time.Now()))

	w := doJSON(t, srv, http.MethodPost, "/api/users/register",
		`{"email":"taken@example.com","name":"Imposter","password":"longenough"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv, mock := newTestServer(t, defaultTestConfig())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, srv, http.MethodPost, "/api/users/login",
		`{"email":"ghost@example.com","password":"whatever"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAlwaysAcks(t *testing.T) {
	srv, _ := newTestServer(t, defaultTestConfig())

	// garbage payload still gets a 200 so the processor stops retrying
	w := doJSON(t, srv, http.MethodPost, "/api/webhooks/payments", `not json`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "received")
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	srv, mock := newTestServer(t, defaultTestConfig())
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	w := doJSON(t, srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
