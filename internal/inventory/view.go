package inventory

import (
	"context"
	"errors"
	"sync"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/google/uuid"
)

// State is the fetch lifecycle of a View.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// ErrViewClosed is returned by Refresh once the view has been closed.
var ErrViewClosed = errors.New("inventory: view closed")

// Loader fetches the complete record set of one owner.
type Loader func(ctx context.Context) ([]domain.Product, error)

// Snapshot is a consistent copy of a View. Records and Categories are owned
// by the caller.
type Snapshot struct {
	State      State
	Records    []domain.Product
	Categories []domain.CategoryStat
	Stats      domain.InventoryStats
	Err        error
}

// View holds one owner's records and their aggregates. The record set and
// everything derived from it are replaced together. A load whose generation
// is no longer current when it returns is dropped.
//
// Mutations applied while a load is in flight are queued and replayed on top
// of that load's result, so a response fetched before the store confirmed a
// mutation cannot undo it.
type View struct {
	load Loader

	mu         sync.Mutex
	state      State
	generation uint64
	closed     bool
	records    []domain.Product
	categories []domain.CategoryStat
	stats      domain.InventoryStats
	err        error
	pending    []mutation
}

// mutation is a confirmed create (created != nil) or delete.
type mutation struct {
	created *domain.Product
	deleted uuid.UUID
}

func (m mutation) apply(records []domain.Product) []domain.Product {
	if m.created != nil {
		return AfterCreate(AfterDelete(records, m.created.ID), *m.created)
	}
	return AfterDelete(records, m.deleted)
}

// NewView returns an idle view backed by load.
func NewView(load Loader) *View {
	return &View{
		load:       load,
		categories: []domain.CategoryStat{},
	}
}

// Refresh fetches a fresh record set. Concurrent refreshes are allowed; only
// the most recently started one is applied. Returns the load error, if any.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	v.generation++
	gen := v.generation
	v.state = StateLoading
	v.mu.Unlock()

	records, err := v.load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return err
	}
	pending := v.pending
	v.pending = nil
	if err != nil {
		v.state = StateErrored
		v.err = err
		return err
	}
	for _, m := range pending {
		records = m.apply(records)
	}
	v.replace(records)
	return nil
}

// Invalidate drops any in-flight load and returns the view to idle, so the
// next reader has to Refresh. Records already held stay visible until then.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.generation++
	v.pending = nil
	v.state = StateIdle
}

// ApplyCreate reconciles a record the store has already accepted. It only
// touches a ready view; an idle or errored view picks the record up on its
// next Refresh.
func (v *View) ApplyCreate(rec domain.Product) {
	v.apply(mutation{created: &rec})
}

// ApplyDelete reconciles a delete the store has already confirmed.
func (v *View) ApplyDelete(id uuid.UUID) {
	v.apply(mutation{deleted: id})
}

func (v *View) apply(m mutation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	switch v.state {
	case StateReady:
		v.replace(m.apply(v.records))
	case StateLoading:
		v.pending = append(v.pending, m)
	}
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	records := make([]domain.Product, len(v.records))
	copy(records, v.records)
	categories := make([]domain.CategoryStat, len(v.categories))
	copy(categories, v.categories)

	return Snapshot{
		State:      v.state,
		Records:    records,
		Categories: categories,
		Stats:      v.stats,
		Err:        v.err,
	}
}

// Close discards any in-flight load. Further refreshes fail with
// ErrViewClosed.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.pending = nil
	v.mu.Unlock()
}

// replace must be called with mu held.
func (v *View) replace(records []domain.Product) {
	v.records = records
	v.categories = AggregateByCategory(records)
	v.stats = AggregateStats(records)
	v.state = StateReady
	v.err = nil
}
