package inventory

import (
	"sort"
	"time"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ViewMode selects how much of each record a list exposes.
type ViewMode string

const (
	// ModeCompact shows name, description and created date only.
	ModeCompact ViewMode = "compact"
	// ModeFull adds badges, stock, price and the edit/delete actions.
	ModeFull ViewMode = "full"
)

// ParseViewMode parses a mode from a query value. Empty means full.
func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(s) {
	case "", ModeFull:
		return ModeFull, true
	case ModeCompact:
		return ModeCompact, true
	}
	return "", false
}

// Row actions offered in full mode.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// ProjectOptions controls Project.
type ProjectOptions struct {
	// Limit keeps only the first N records after ordering. Zero or less keeps all.
	Limit int
	// OrderByCreatedAtDesc sorts newest first before truncating.
	OrderByCreatedAtDesc bool
	Mode                 ViewMode
}

// DefaultProjectOptions returns the full, newest-first listing with no limit.
func DefaultProjectOptions() ProjectOptions {
	return ProjectOptions{
		OrderByCreatedAtDesc: true,
		Mode:                 ModeFull,
	}
}

// ProductView is one row of a rendered list. Fields beyond the compact set
// are only populated in full mode.
type ProductView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Category string               `json:"category,omitempty"`
	Status   domain.ProductStatus `json:"status,omitempty"`
	Stock    *int64               `json:"stock,omitempty"`
	Price    *decimal.Decimal     `json:"price,omitempty"`
	LowStock bool                 `json:"low_stock,omitempty"`
	Actions  []string             `json:"actions,omitempty"`
}

// Project orders, truncates and shapes records for display.
func Project(records []domain.Product, opts ProjectOptions) []ProductView {
	ordered := make([]domain.Product, len(records))
	copy(ordered, records)

	if opts.OrderByCreatedAtDesc {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		})
	}

	if opts.Limit > 0 && len(ordered) > opts.Limit {
		ordered = ordered[:opts.Limit]
	}

	views := make([]ProductView, len(ordered))
	for i, rec := range ordered {
		views[i] = project(rec, opts.Mode)
	}
	return views
}

func project(rec domain.Product, mode ViewMode) ProductView {
	v := ProductView{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
	}
	if mode == ModeCompact {
		return v
	}

	stock := rec.Stock
	v.Category = rec.Category
	v.Status = rec.Status
	v.Stock = &stock
	if rec.Price.Valid {
		price := rec.Price.Decimal
		v.Price = &price
	}
	v.LowStock = rec.IsLowStock()
	v.Actions = []string{ActionEdit, ActionDelete}
	return v
}
