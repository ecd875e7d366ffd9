package api

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/handler"
	"github.com/dukerupert/shelf/internal/service"
)

// DashboardHandler serves the aggregated views of the owner's catalog.
type DashboardHandler struct {
	products service.ProductService
	logger   *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(products service.ProductService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		products: products,
		logger:   logger.With("handler", "dashboard"),
	}
}

// CategoriesResponse is the body of GET /api/dashboard/categories.
type CategoriesResponse struct {
	Categories []domain.CategoryStat  `json:"categories"`
	Summary    domain.CategorySummary `json:"summary"`
}

// StatsResponse is the body of GET /api/dashboard/stats.
type StatsResponse struct {
	Stats domain.InventoryStats `json:"stats"`
}

// Show handles GET /api/dashboard?limit=&mode=&q=
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	opts, err := parseProjectOptions(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	d, err := h.products.Dashboard(r.Context(), domain.SessionFromContext(r.Context()), service.DashboardOptions{
		Project:       opts,
		CategoryQuery: r.URL.Query().Get("q"),
		View:          "full",
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, d)
}

// Categories handles GET /api/dashboard/categories?q=
func (h *DashboardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	d, err := h.products.Dashboard(r.Context(), domain.SessionFromContext(r.Context()), service.DashboardOptions{
		CategoryQuery: r.URL.Query().Get("q"),
		View:          "categories",
		SkipProducts:  true,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: d.Categories,
		Summary:    d.Summary,
	})
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	d, err := h.products.Dashboard(r.Context(), domain.SessionFromContext(r.Context()), service.DashboardOptions{
		View:         "stats",
		SkipProducts: true,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, StatsResponse{Stats: d.Stats})
}
