package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/handler"
	"github.com/dukerupert/shelf/internal/inventory"
	"github.com/dukerupert/shelf/internal/service"
	"github.com/google/uuid"
)

// ProductHandler serves the owner's product list and mutations.
type ProductHandler struct {
	products service.ProductService
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products service.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		products: products,
		logger:   logger.With("handler", "products"),
	}
}

// ProductListResponse is the body of GET /api/products.
type ProductListResponse struct {
	Products []inventory.ProductView `json:"products"`
	Mode     inventory.ViewMode      `json:"mode"`
}

// List handles GET /api/products?limit=&mode=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseProjectOptions(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	records, err := h.products.List(r.Context(), domain.SessionFromContext(r.Context()), opts.Limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, ProductListResponse{
		Products: inventory.Project(records, opts),
		Mode:     opts.Mode,
	})
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params domain.CreateProductParams
	if err := handler.DecodeJSON(r, &params); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.Create(r.Context(), domain.SessionFromContext(r.Context()), params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := inventory.Project([]domain.Product{product}, inventory.DefaultProjectOptions())
	handler.WriteJSON(w, http.StatusCreated, views[0])
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.BadRequestResponse(w, r, "Invalid product ID")
		return
	}

	if err := h.products.Delete(r.Context(), domain.SessionFromContext(r.Context()), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseProjectOptions reads limit and mode from the query string.
func parseProjectOptions(r *http.Request) (inventory.ProjectOptions, error) {
	opts := inventory.DefaultProjectOptions()
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 || limit > service.MaxListLimit {
			return opts, domain.NewValidationError("product.list", "limit", "Limit must be between 0 and 1000")
		}
		opts.Limit = limit
	}

	mode, ok := inventory.ParseViewMode(q.Get("mode"))
	if !ok {
		return opts, domain.NewValidationError("product.list", "mode", "Mode must be compact or full")
	}
	opts.Mode = mode

	return opts, nil
}
