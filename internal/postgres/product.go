package postgres

import (
	"context"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductStore implements domain.ProductStore using PostgreSQL.
type ProductStore struct {
	db DBTX
}

// Compile-time check that ProductStore implements domain.ProductStore.
var _ domain.ProductStore = (*ProductStore)(nil)

// NewProductStore creates a new PostgreSQL-backed product store.
func NewProductStore(db DBTX) *ProductStore {
	return &ProductStore{db: db}
}

// price and stock are selected as text so the normalizer sees exactly what
// the row holds.
const productColumns = `id, owner_id, name, description, category,
	price::text, stock::text, sku, image_url, status, created_at`

const listProducts = `SELECT ` + productColumns + `
FROM products
WHERE owner_id = $1
ORDER BY created_at DESC, id`

const listProductsLimit = listProducts + `
LIMIT $2`

// ListProducts returns the owner's products, newest first.
func (s *ProductStore) ListProducts(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.RawProduct, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(ctx, listProductsLimit, ownerID, limit)
	} else {
		rows, err = s.db.Query(ctx, listProducts, ownerID)
	}
	if err != nil {
		return nil, domain.Remote(err, "product.list")
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RawProduct, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, domain.Remote(err, "product.list")
	}
	return products, nil
}

const createProduct = `INSERT INTO products (
	owner_id, name, description, category, price, stock, sku, image_url, status
) VALUES (
	$1, $2, $3, $4, $5::numeric, $6, $7, $8, $9
)
RETURNING ` + productColumns

// CreateProduct inserts a product and returns the stored row.
func (s *ProductStore) CreateProduct(ctx context.Context, ownerID uuid.UUID, params domain.CreateProductParams) (domain.RawProduct, error) {
	var price pgtype.Text
	if params.Price != nil {
		price = pgtype.Text{String: params.Price.String(), Valid: true}
	}

	var stock pgtype.Int8
	if params.Stock != nil {
		stock = pgtype.Int8{Int64: *params.Stock, Valid: true}
	}

	row := s.db.QueryRow(ctx, createProduct,
		ownerID,
		params.Name,
		pgTextFromString(params.Description),
		pgTextFromString(params.Category),
		price,
		stock,
		pgTextFromString(params.SKU),
		pgTextFromString(params.ImageURL),
		pgTextFromString(string(params.Status)),
	)

	p, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.RawProduct{}, domain.Conflict("product.create", "a product with this SKU already exists")
		}
		return domain.RawProduct{}, domain.Remote(err, "product.create")
	}
	return p, nil
}

const deleteProduct = `DELETE FROM products WHERE owner_id = $1 AND id = $2`

// DeleteProduct removes one of the owner's products.
func (s *ProductStore) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, deleteProduct, ownerID, id)
	if err != nil {
		return domain.Remote(err, "product.delete")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("product.delete", "product", id.String())
	}
	return nil
}

func scanProduct(row pgx.Row) (domain.RawProduct, error) {
	var (
		p         domain.RawProduct
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.Stock,
		&p.SKU,
		&p.ImageURL,
		&p.Status,
		&createdAt,
	)
	if err != nil {
		return domain.RawProduct{}, err
	}
	p.CreatedAt = createdAt.Time
	return p, nil
}
