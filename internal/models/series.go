package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Series is a sellable batch ("pack") of collectible coins with a fixed total
// unit count. Remaining stock is total_count - sold_count.
type Series struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	TotalCount  int             `json:"total_count" db:"total_count"`
	SoldCount   int             `json:"sold_count" db:"sold_count"`
	Active      bool            `json:"active" db:"active"`
	Featured    bool            `json:"featured" db:"featured"`
	ExternalRef sql.NullString  `json:"-" db:"external_ref"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

func (s *Series) Remaining() int {
	return s.TotalCount - s.SoldCount
}

// SeriesPurchase tracks cumulative units a user has bought of one series, to
// enforce the per-user pack limit across orders. One row per (user, series).
type SeriesPurchase struct {
	ID       int64 `json:"id" db:"id"`
	UserID   int64 `json:"user_id" db:"user_id"`
	SeriesID int64 `json:"series_id" db:"series_id"`
	Quantity int   `json:"quantity" db:"quantity"`
}
