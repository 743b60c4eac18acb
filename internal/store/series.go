package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

type SeriesStore struct {
	db *database.DB
}

func NewSeriesStore(db *database.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

const seriesColumns = `id, name, description, price, total_count, sold_count, active, featured, external_ref, created_at`

func scanSeries(row *sql.Row) (*models.Series, error) {
	var sr models.Series
	err := row.Scan(&sr.ID, &sr.Name, &sr.Description, &sr.Price, &sr.TotalCount,
		&sr.SoldCount, &sr.Active, &sr.Featured, &sr.ExternalRef, &sr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan series: %w", err)
	}
	return &sr, nil
}

func (s *SeriesStore) collect(rows *sql.Rows) ([]models.Series, error) {
	defer rows.Close()
	var out []models.Series
	for rows.Next() {
		var sr models.Series
		err := rows.Scan(&sr.ID, &sr.Name, &sr.Description, &sr.Price, &sr.TotalCount,
			&sr.SoldCount, &sr.Active, &sr.Featured, &sr.ExternalRef, &sr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (s *SeriesStore) ListActive(ctx context.Context) ([]models.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE active = TRUE ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return s.collect(rows)
}

func (s *SeriesStore) ListFeatured(ctx context.Context) ([]models.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE active = TRUE AND featured = TRUE ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured series: %w", err)
	}
	return s.collect(rows)
}

func (s *SeriesStore) GetByID(ctx context.Context, id int64) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE id = ?`, id)
	return scanSeries(row)
}

func (s *SeriesStore) GetByExternalRef(ctx context.Context, ref string) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE external_ref = ?`, ref)
	return scanSeries(row)
}

// SellUnits decrements remaining stock with a single conditional UPDATE. The
// stock check and the decrement happen in one statement, so two concurrent
// orders can never both take the last unit. Returns ErrInsufficientStock when
// the condition fails, which the caller must treat as a transaction abort.
func (s *SeriesStore) SellUnits(ctx context.Context, exec Execer, seriesID int64, qty int) error {
	res, err := exec.ExecContext(ctx, `
		UPDATE series SET sold_count = sold_count + ?
		WHERE id = ? AND active = TRUE AND sold_count + ? <= total_count
	`, qty, seriesID, qty)
	if err != nil {
		return fmt.Errorf("failed to sell units: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// CreateFromRemote mirrors an externally-sourced catalog record into the local
// series table so its stock can be decremented transactionally. Racing inserts
// collapse onto the unique external_ref key.
func (s *SeriesStore) CreateFromRemote(ctx context.Context, ref, name string, price decimal.Decimal, totalCount, soldCount int) (*models.Series, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO series (name, description, price, total_count, sold_count, active, featured, external_ref)
		VALUES (?, '', ?, ?, ?, TRUE, FALSE, ?)
	`, name, price, totalCount, soldCount, ref)
	if err != nil {
		if isDuplicateKey(err) {
			return s.GetByExternalRef(ctx, ref)
		}
		return nil, fmt.Errorf("failed to mirror remote series: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new series id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// PurchasedUnits returns the cumulative units a user has bought of a series
// across all prior orders. Zero when no purchase row exists.
func (s *SeriesStore) PurchasedUnits(ctx context.Context, userID, seriesID int64) (int, error) {
	var p models.SeriesPurchase
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, series_id, quantity FROM series_purchases WHERE user_id = ? AND series_id = ?`,
		userID, seriesID).Scan(&p.ID, &p.UserID, &p.SeriesID, &p.Quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read purchased units: %w", err)
	}
	return p.Quantity, nil
}

// RecordPurchase increments the per-(user, series) running total, creating the
// row on first purchase. The unique key on (user_id, series_id) keeps exactly
// one row per pair.
func (s *SeriesStore) RecordPurchase(ctx context.Context, exec Execer, userID, seriesID int64, qty int) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO series_purchases (user_id, series_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)
	`, userID, seriesID, qty)
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	return nil
}
