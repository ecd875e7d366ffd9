package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/events"
	"github.com/dukerupert/shelf/internal/inventory"
	"github.com/dukerupert/shelf/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxListLimit caps the limit a caller may request.
const MaxListLimit = 1000

// viewMaxAge bounds how long a cached owner view is served before it is
// reloaded, so writes made by other instances eventually show up.
const viewMaxAge = 30 * time.Second

// ProductService provides the owner-scoped catalog operations.
// Every method takes the caller's session explicitly.
type ProductService interface {
	List(ctx context.Context, session *domain.Session, limit int) ([]domain.Product, error)
	Create(ctx context.Context, session *domain.Session, params domain.CreateProductParams) (domain.Product, error)
	Delete(ctx context.Context, session *domain.Session, id uuid.UUID) error
	Dashboard(ctx context.Context, session *domain.Session, opts DashboardOptions) (*Dashboard, error)
}

// DashboardOptions controls what Dashboard returns.
type DashboardOptions struct {
	Project inventory.ProjectOptions
	// CategoryQuery filters the category breakdown by substring.
	CategoryQuery string
	// View labels the request for metrics: full, categories or stats.
	View string
	// SkipProducts leaves Dashboard.Products empty for callers that only
	// need the aggregates.
	SkipProducts bool
}

// Dashboard is everything derived from one fetch of the owner's records.
type Dashboard struct {
	Products   []inventory.ProductView `json:"products"`
	Categories []domain.CategoryStat   `json:"categories"`
	Summary    domain.CategorySummary  `json:"summary"`
	Stats      domain.InventoryStats   `json:"stats"`
}

type productService struct {
	store     domain.ProductStore
	publisher events.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	views map[uuid.UUID]*ownerView
}

// ownerView is the cached record set of one owner. refreshMu serializes
// loads so concurrent readers share one fetch.
type ownerView struct {
	view      *inventory.View
	refreshMu sync.Mutex
	loadedAt  time.Time
}

// NewProductService creates a new ProductService instance.
func NewProductService(store domain.ProductStore, publisher events.Publisher, logger *slog.Logger) ProductService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &productService{
		store:     store,
		publisher: publisher,
		validate:  newValidator(),
		logger:    logger,
		now:       time.Now,
		views:     make(map[uuid.UUID]*ownerView),
	}
}

// List returns the owner's normalized records, newest first.
func (s *productService) List(ctx context.Context, session *domain.Session, limit int) ([]domain.Product, error) {
	const op = "product.list"
	if err := requireSession(session, op); err != nil {
		return nil, err
	}
	if limit < 0 || limit > MaxListLimit {
		return nil, domain.NewValidationError(op, "limit", "Limit must be between 0 and 1000")
	}

	raws, err := s.store.ListProducts(ctx, session.OwnerID(), limit)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeAll(raws), nil
}

// Create validates params, inserts the product and returns the stored record.
func (s *productService) Create(ctx context.Context, session *domain.Session, params domain.CreateProductParams) (domain.Product, error) {
	const op = "product.create"
	if err := requireSession(session, op); err != nil {
		return domain.Product{}, err
	}

	params.Name = strings.TrimSpace(params.Name)
	params.Category = strings.TrimSpace(params.Category)
	params.SKU = strings.TrimSpace(params.SKU)

	if err := s.validateCreate(op, params); err != nil {
		telemetry.Business.ProductCreated(telemetry.OutcomeRejected)
		return domain.Product{}, err
	}

	raw, err := s.store.CreateProduct(ctx, session.OwnerID(), params)
	if err != nil {
		telemetry.Business.ProductCreated(telemetry.OutcomeFailed)
		return domain.Product{}, err
	}
	telemetry.Business.ProductCreated(telemetry.OutcomeSuccess)

	product := inventory.Normalize(raw)
	if v := s.cachedView(session.OwnerID()); v != nil {
		v.ApplyCreate(product)
	}
	s.publish(ctx, events.NewProductEvent(events.ProductCreated, session.OwnerID(), product.ID))
	return product, nil
}

func (s *productService) validateCreate(op string, params domain.CreateProductParams) error {
	err := validateStruct(s.validate, op, params)
	if params.Price == nil {
		return err
	}

	var msg string
	switch {
	case params.Price.IsNegative():
		msg = "Price cannot be negative"
	case !params.Price.LessThan(domain.MaxPrice):
		msg = "Price must be less than 10000000000"
	default:
		return err
	}
	if err == nil {
		return domain.NewValidationError(op, "price", msg)
	}
	return domain.AddFieldError(err, "price", msg)
}

// Delete removes one of the owner's products.
func (s *productService) Delete(ctx context.Context, session *domain.Session, id uuid.UUID) error {
	const op = "product.delete"
	if err := requireSession(session, op); err != nil {
		return err
	}

	if err := s.store.DeleteProduct(ctx, session.OwnerID(), id); err != nil {
		telemetry.Business.ProductDeleted(telemetry.OutcomeFailed)
		return err
	}
	telemetry.Business.ProductDeleted(telemetry.OutcomeSuccess)

	if v := s.cachedView(session.OwnerID()); v != nil {
		v.ApplyDelete(id)
	}
	s.publish(ctx, events.NewProductEvent(events.ProductDeleted, session.OwnerID(), id))
	return nil
}

// Dashboard derives every view from one snapshot of the owner's cached
// records. The records are loaded on first use, after viewMaxAge, or after a
// failed load; in between, confirmed creates and deletes are reconciled into
// the cache.
func (s *productService) Dashboard(ctx context.Context, session *domain.Session, opts DashboardOptions) (*Dashboard, error) {
	const op = "product.dashboard"
	if err := requireSession(session, op); err != nil {
		return nil, err
	}

	ctx, finish := telemetry.StartSpan(ctx, "inventory.aggregate", "dashboard")
	defer finish()

	snap, err := s.snapshot(ctx, session.OwnerID())
	if err != nil {
		return nil, err
	}

	if opts.Project.Mode == "" {
		opts.Project.Mode = inventory.ModeFull
	}

	telemetry.Business.DashboardServed(dashboardView(opts.View), len(snap.Records))

	d := &Dashboard{
		Products:   []inventory.ProductView{},
		Categories: inventory.FilterCategories(snap.Categories, opts.CategoryQuery),
		Summary:    inventory.SummarizeCategories(snap.Categories),
		Stats:      snap.Stats,
	}
	if !opts.SkipProducts {
		d.Products = inventory.Project(snap.Records, opts.Project)
	}
	return d, nil
}

// snapshot returns the owner's cached records, loading them when the cache
// entry is missing, stale or not ready.
func (s *productService) snapshot(ctx context.Context, ownerID uuid.UUID) (inventory.Snapshot, error) {
	s.mu.Lock()
	entry, ok := s.views[ownerID]
	if !ok {
		entry = &ownerView{view: inventory.NewView(s.loader(ownerID))}
		s.views[ownerID] = entry
	}
	s.mu.Unlock()

	entry.refreshMu.Lock()
	defer entry.refreshMu.Unlock()

	if !entry.loadedAt.IsZero() && s.now().Sub(entry.loadedAt) > viewMaxAge {
		entry.view.Invalidate()
	}
	if snap := entry.view.Snapshot(); snap.State == inventory.StateReady {
		return snap, nil
	}

	started := s.now()
	if err := entry.view.Refresh(ctx); err != nil {
		return inventory.Snapshot{}, err
	}
	entry.loadedAt = started
	return entry.view.Snapshot(), nil
}

// cachedView returns the owner's view if one has been created.
func (s *productService) cachedView(ownerID uuid.UUID) *inventory.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.views[ownerID]; ok {
		return entry.view
	}
	return nil
}

func (s *productService) loader(ownerID uuid.UUID) inventory.Loader {
	return func(ctx context.Context) ([]domain.Product, error) {
		raws, err := s.store.ListProducts(ctx, ownerID, 0)
		if err != nil {
			return nil, err
		}
		return inventory.NormalizeAll(raws), nil
	}
}

func dashboardView(v string) string {
	switch v {
	case "categories", "stats":
		return v
	}
	return "full"
}

// publish hands e to the publisher. Failures are logged and never fail the
// mutation that produced the event.
func (s *productService) publish(ctx context.Context, e events.Event) {
	publishEvent(ctx, s.publisher, s.logger, e)
}

func publishEvent(ctx context.Context, p events.Publisher, logger *slog.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		telemetry.Business.EventPublished(e.Type, telemetry.OutcomeFailed)
		logger.WarnContext(ctx, "failed to publish event",
			"type", e.Type,
			"owner_id", e.OwnerID,
			"error", err,
		)
		return
	}
	telemetry.Business.EventPublished(e.Type, telemetry.OutcomeSuccess)
}
