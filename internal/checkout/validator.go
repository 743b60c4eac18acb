package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/store"
)

// ValidateCart resolves and prices a cart. It is read-only: the only possible
// side effect is the remote catalog lookup for externally-sourced identifiers.
// Either all items come back resolved, or a ValidationError lists every
// failing item.
func (s *Service) ValidateCart(ctx context.Context, items []models.CartItem, user *models.User) ([]models.ResolvedItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var resolved []models.ResolvedItem
	var itemErrs []models.ItemError

	fail := func(id, msg string) {
		itemErrs = append(itemErrs, models.ItemError{SeriesID: id, Message: msg})
	}

	for _, item := range items {
		if item.Quantity < 1 || item.Quantity > s.cfg.PackLimit {
			fail(item.SeriesID, fmt.Sprintf("quantity must be between 1 and %d", s.cfg.PackLimit))
			continue
		}

		series, err := s.resolveSeries(ctx, item, false)
		if err != nil {
			return nil, err
		}
		if series == nil {
			fail(item.SeriesID, "unknown item")
			continue
		}

		if !series.Active {
			fail(item.SeriesID, "no longer available")
			continue
		}
		if series.Remaining() < item.Quantity {
			fail(item.SeriesID, fmt.Sprintf("only %d left in stock", series.Remaining()))
			continue
		}

		if user != nil {
			prior, err := s.series.PurchasedUnits(ctx, user.ID, series.ID)
			if err != nil {
				return nil, err
			}
			if prior+item.Quantity > s.cfg.PackLimit {
				allowed := s.cfg.PackLimit - prior
				if allowed <= 0 {
					fail(item.SeriesID, "pack limit reached for this series")
				} else {
					fail(item.SeriesID, fmt.Sprintf("can only purchase %d more", allowed))
				}
				continue
			}
		}

		resolved = append(resolved, models.ResolvedItem{
			Series:    series,
			Quantity:  item.Quantity,
			LineTotal: series.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	if len(itemErrs) > 0 {
		return nil, &ValidationError{Items: itemErrs}
	}
	return resolved, nil
}

// resolveSeries maps a cart identifier to a series record. Numeric ids hit
// the local catalog only. "ext-" ids prefer an already-mirrored local row and
// fall back to the remote inventory app. With mirror set, a remote-only record
// is copied into the local catalog so stock accounting has a row to decrement;
// validation keeps mirror off and stays read-only. A nil series with nil error
// means the identifier resolves to nothing.
func (s *Service) resolveSeries(ctx context.Context, item models.CartItem, mirror bool) (*models.Series, error) {
	if !item.IsExternal() {
		id, err := strconv.ParseInt(item.SeriesID, 10, 64)
		if err != nil {
			return nil, nil
		}
		series, err := s.series.GetByID(ctx, id)
		if err == store.ErrNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return series, nil
	}

	ref := item.ExternalRef()
	series, err := s.series.GetByExternalRef(ctx, ref)
	if err == nil {
		return series, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	remote, err := s.inventory.GetSeries(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to look up remote series: %w", err)
	}
	if remote == nil {
		return nil, nil
	}
	if mirror {
		return s.series.CreateFromRemote(ctx, ref, remote.Name, remote.Price, remote.TotalCount, remote.SoldCount)
	}
	return &models.Series{
		Name:        remote.Name,
		Price:       remote.Price,
		TotalCount:  remote.TotalCount,
		SoldCount:   remote.SoldCount,
		Active:      remote.Active,
		ExternalRef: sql.NullString{String: ref, Valid: true},
	}, nil
}

// Subtotal sums the line totals of a resolved cart.
func Subtotal(items []models.ResolvedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}
