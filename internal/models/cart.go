package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ExternalIDPrefix marks cart identifiers that reference a series sourced from
// the remote inventory app rather than the local catalog.
const ExternalIDPrefix = "ext-"

// CartItem is one (identifier, quantity) pair submitted by the client.
// SeriesID is a string because externally-sourced items use "ext-<ref>" ids.
type CartItem struct {
	SeriesID string `json:"series_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

func (c CartItem) IsExternal() bool {
	return strings.HasPrefix(c.SeriesID, ExternalIDPrefix)
}

func (c CartItem) ExternalRef() string {
	return strings.TrimPrefix(c.SeriesID, ExternalIDPrefix)
}

// ResolvedItem is a cart item after catalog resolution and pricing.
type ResolvedItem struct {
	Series    *Series         `json:"series"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ItemError is a per-item validation failure. A batch with any item errors is
// rejected as a whole, but every item still gets validated and reported.
type ItemError struct {
	SeriesID string `json:"series_id"`
	Message  string `json:"message"`
}
