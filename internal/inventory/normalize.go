// Package inventory derives the dashboard views of one owner's catalog:
// normalized records, category breakdown, portfolio stats, list projections,
// and local reconciliation after a confirmed create or delete.
//
// Everything here except View is a pure function of its input.
package inventory

import (
	"strconv"
	"strings"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/shopspring/decimal"
)

// Normalize coerces a stored row into the canonical record. It never fails:
// missing category becomes domain.UncategorizedCategory, unparseable numbers
// become zero.
func Normalize(raw domain.RawProduct) domain.Product {
	p := domain.Product{
		ID:          raw.ID,
		OwnerID:     raw.OwnerID,
		Name:        raw.Name,
		Description: raw.Description.String,
		Category:    domain.UncategorizedCategory,
		Stock:       parseStock(raw.Stock.String),
		SKU:         raw.SKU.String,
		ImageURL:    raw.ImageURL.String,
		CreatedAt:   raw.CreatedAt,
	}

	if raw.Category.Valid && raw.Category.String != "" {
		p.Category = raw.Category.String
	}

	if raw.Price.Valid && raw.Price.String != "" {
		p.Price = decimal.NullDecimal{Decimal: parsePrice(raw.Price.String), Valid: true}
	}

	if raw.Status.Valid {
		p.Status = domain.ProductStatus(raw.Status.String)
	}

	return p
}

// NormalizeAll normalizes every row, preserving order.
func NormalizeAll(raws []domain.RawProduct) []domain.Product {
	out := make([]domain.Product, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw)
	}
	return out
}

func parsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseStock accepts integers and decimal strings (truncated toward zero).
func parseStock(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.IntPart()
	}
	return 0
}
