package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// ProductStatus represents the lifecycle state of a product.
// The empty status means the record never had one set.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDraft    ProductStatus = "draft"
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDraft:
		return true
	}
	return false
}

const (
	// UncategorizedCategory is the effective category of records stored
	// without one.
	UncategorizedCategory = "Uncategorized"

	// LowStockThreshold is the stock level below which a record is low-stock.
	LowStockThreshold = 10
)

// RawProduct is a product row as the store returns it. Price and stock are
// kept in their textual form so that whatever the store hands back can be
// coerced permissively by the normalizer.
type RawProduct struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description pgtype.Text
	Category    pgtype.Text
	Price       pgtype.Text
	Stock       pgtype.Text
	SKU         pgtype.Text
	ImageURL    pgtype.Text
	Status      pgtype.Text
	CreatedAt   time.Time
}

// Product is the canonical in-memory record: category always set, price
// and stock numeric. Price keeps its "unset" state for display; value
// computations treat unset as zero.
type Product struct {
	ID          uuid.UUID           `json:"id"`
	OwnerID     uuid.UUID           `json:"owner_id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
	Stock       int64               `json:"stock"`
	SKU         string              `json:"sku,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	Status      ProductStatus       `json:"status,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// UnitPrice returns the price used for value computations.
func (p Product) UnitPrice() decimal.Decimal {
	if p.Price.Valid {
		return p.Price.Decimal
	}
	return decimal.Zero
}

// Value returns price × stock.
func (p Product) Value() decimal.Decimal {
	return p.UnitPrice().Mul(decimal.NewFromInt(p.Stock))
}

// IsLowStock reports whether the record is below LowStockThreshold.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// IsActive reports whether the record's status is active.
func (p Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// =============================================================================
// DERIVED TYPES (never persisted)
// =============================================================================

// CategoryStat is the per-category breakdown shown on the categories tab.
type CategoryStat struct {
	Category   string          `json:"category"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CategorySummary is the footer shown under the category breakdown.
type CategorySummary struct {
	Categories         int             `json:"categories"`
	TotalProducts      int             `json:"total_products"`
	TotalValue         decimal.Decimal `json:"total_value"`
	AveragePerCategory int64           `json:"average_per_category"`
}

// InventoryStats are the portfolio-wide totals shown on the stats tab.
type InventoryStats struct {
	TotalProducts int             `json:"total_products"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
	ActiveCount   int             `json:"active_count"`
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// ProductStore is the row store for one owner's catalog.
// Every operation is scoped to ownerID.
type ProductStore interface {
	// ListProducts returns the owner's products ordered by creation time,
	// newest first. A limit of zero or less means no limit.
	ListProducts(ctx context.Context, ownerID uuid.UUID, limit int) ([]RawProduct, error)

	// CreateProduct inserts a product and returns the stored row.
	CreateProduct(ctx context.Context, ownerID uuid.UUID, params CreateProductParams) (RawProduct, error)

	// DeleteProduct removes a product. Returns ENOTFOUND when the owner has
	// no product with that id.
	DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error
}

// =============================================================================
// PARAMETER TYPES
// =============================================================================

// MaxPrice is the exclusive upper bound of a price; the column is NUMERIC(12, 2).
var MaxPrice = decimal.New(1, 10)

// CreateProductParams contains parameters for creating a product.
// Nil pointers leave the column unset. Stock is bounded by the INTEGER column.
type CreateProductParams struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	Category    string           `json:"category" validate:"max=100"`
	Price       *decimal.Decimal `json:"price" validate:"-"`
	Stock       *int64           `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
	SKU         string           `json:"sku" validate:"max=64"`
	ImageURL    string           `json:"image_url" validate:"omitempty,url"`
	Status      ProductStatus    `json:"status" validate:"omitempty,oneof=active inactive draft"`
}
