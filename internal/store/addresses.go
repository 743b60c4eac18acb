package store

import (
	"context"
	"fmt"

	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

type AddressStore struct {
	db *database.DB
}

func NewAddressStore(db *database.DB) *AddressStore {
	return &AddressStore{db: db}
}

func (s *AddressStore) ListByUser(ctx context.Context, userID int64) ([]models.Address, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, line1, COALESCE(line2, ''), city, state, postal_code, country, is_default, created_at
		FROM addresses WHERE user_id = ? ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	var out []models.Address
	for rows.Next() {
		var a models.Address
		err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Line1, &a.Line2, &a.City,
			&a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create saves an address. The user's first address becomes the default.
func (s *AddressStore) Create(ctx context.Context, a *models.Address) error {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM addresses WHERE user_id = ?`, a.UserID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count addresses: %w", err)
	}
	a.IsDefault = count == 0

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO addresses (user_id, name, line1, line2, city, state, postal_code, country, is_default)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?)
	`, a.UserID, a.Name, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new address id: %w", err)
	}
	return nil
}

// Exists reports whether the user already saved an address matching the given
// shipping address, so checkout does not pile up duplicates.
func (s *AddressStore) Exists(ctx context.Context, userID int64, sa models.ShippingAddress) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM addresses
		WHERE user_id = ? AND line1 = ? AND postal_code = ?
	`, userID, sa.Line1, sa.PostalCode).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	return count > 0, nil
}

// SetDefault moves the default flag to the given address. Both updates run in
// one transaction so there is never more than one default per user.
func (s *AddressStore) SetDefault(ctx context.Context, userID, addressID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = TRUE WHERE id = ? AND user_id = ?`, addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *AddressStore) Delete(ctx context.Context, userID, addressID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = ? AND user_id = ?`, addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
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
