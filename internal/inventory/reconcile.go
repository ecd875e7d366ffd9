package inventory

import (
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/google/uuid"
)

// AfterDelete returns the records without any entry carrying id. Deleting an
// id that is not present returns an equal copy.
func AfterDelete(records []domain.Product, id uuid.UUID) []domain.Product {
	out := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}

// AfterCreate returns the records with rec prepended.
func AfterCreate(records []domain.Product, rec domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(records)+1)
	out = append(out, rec)
	return append(out, records...)
}
