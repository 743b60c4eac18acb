package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

type UserStore struct {
	db *database.DB
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, name, role, loyalty_points, is_shadow, stripe_customer_id, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.LoyaltyPoints, &u.IsShadow, &u.StripeCustomerID, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// Create inserts a full account with a password credential.
func (s *UserStore) Create(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, role, is_shadow)
		VALUES (?, ?, ?, 'customer', FALSE)
	`, email, passwordHash, name)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("email %s is already registered", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// FindOrCreateShadow resolves a guest checkout to a user row. An existing user
// with the email is reused as-is; otherwise a credential-less shadow account
// is created.
func (s *UserStore) FindOrCreateShadow(ctx context.Context, email, name string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, name, role, is_shadow)
		VALUES (?, ?, 'customer', TRUE)
	`, email, name)
	if err != nil {
		// Lost a race with a concurrent checkout for the same email
		if isDuplicateKey(err) {
			return s.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create shadow user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// PromoteShadow attaches a credential to a shadow account, turning the guest
// identity into a real one in place.
func (s *UserStore) PromoteShadow(ctx context.Context, id int64, name, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, name = ?, is_shadow = FALSE
		WHERE id = ? AND is_shadow = TRUE
	`, passwordHash, name, id)
	if err != nil {
		return fmt.Errorf("failed to promote shadow user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET stripe_customer_id = ? WHERE id = ?`, customerID, id)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer id: %w", err)
	}
	return nil
}

// AddLoyaltyPoints credits points inside whatever execution scope the caller
// provides (plain connection or the order transaction).
func (s *UserStore) AddLoyaltyPoints(ctx context.Context, exec Execer, id int64, points int) error {
	if points <= 0 {
		return nil
	}
	_, err := exec.ExecContext(ctx,
		`UPDATE users SET loyalty_points = loyalty_points + ? WHERE id = ?`, points, id)
	if err != nil {
		return fmt.Errorf("failed to add loyalty points: %w", err)
	}
	return nil
}
