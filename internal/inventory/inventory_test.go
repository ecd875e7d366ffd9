package inventory_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/inventory"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func record(category, price string, stock int64, status domain.ProductStatus) domain.Product {
	p := domain.Product{
		ID:       uuid.New(),
		Name:     category + " item",
		Category: category,
		Stock:    stock,
		Status:   status,
	}
	if price != "" {
		p.Price = decimal.NullDecimal{Decimal: decimal.RequireFromString(price), Valid: true}
	}
	return p
}

// scenario is the three-record catalog used across the aggregation tests.
func scenario() []domain.Product {
	return []domain.Product{
		record("Books", "10", 5, ""),
		record("Books", "20", 1, ""),
		record("Toys", "5", 20, ""),
	}
}

// =============================================================================
// Normalize
// =============================================================================

func TestNormalize_Defaults(t *testing.T) {
	raw := domain.RawProduct{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "Lamp",
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	p := inventory.Normalize(raw)

	assert.Equal(t, domain.UncategorizedCategory, p.Category)
	assert.False(t, p.Price.Valid, "unset price stays unset for display")
	assert.True(t, p.UnitPrice().IsZero())
	assert.Equal(t, int64(0), p.Stock)
	assert.Equal(t, domain.ProductStatus(""), p.Status)
	assert.Equal(t, raw.ID, p.ID)
	assert.Equal(t, raw.OwnerID, p.OwnerID)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, raw.CreatedAt, p.CreatedAt)
}

func TestNormalize_Fields(t *testing.T) {
	tests := []struct {
		name         string
		raw          domain.RawProduct
		wantCategory string
		wantPrice    string
		wantPriceSet bool
		wantStock    int64
	}{
		{
			name:         "well formed",
			raw:          domain.RawProduct{Category: text("Books"), Price: text("12.50"), Stock: text("7")},
			wantCategory: "Books",
			wantPrice:    "12.5",
			wantPriceSet: true,
			wantStock:    7,
		},
		{
			name:         "empty category",
			raw:          domain.RawProduct{Category: text("")},
			wantCategory: domain.UncategorizedCategory,
			wantPrice:    "0",
		},
		{
			name:         "category kept verbatim",
			raw:          domain.RawProduct{Category: text(" books ")},
			wantCategory: " books ",
			wantPrice:    "0",
		},
		{
			name:         "malformed price",
			raw:          domain.RawProduct{Price: text("abc")},
			wantCategory: domain.UncategorizedCategory,
			wantPrice:    "0",
			wantPriceSet: true,
		},
		{
			name:         "malformed stock",
			raw:          domain.RawProduct{Stock: text("lots")},
			wantCategory: domain.UncategorizedCategory,
			wantPrice:    "0",
			wantStock:    0,
		},
		{
			name:         "decimal stock truncated",
			raw:          domain.RawProduct{Stock: text("5.7")},
			wantCategory: domain.UncategorizedCategory,
			wantPrice:    "0",
			wantStock:    5,
		},
		{
			name:         "negative stock kept",
			raw:          domain.RawProduct{Stock: text("-3")},
			wantCategory: domain.UncategorizedCategory,
			wantPrice:    "0",
			wantStock:    -3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := inventory.Normalize(tt.raw)

			assert.Equal(t, tt.wantCategory, p.Category)
			assert.Equal(t, tt.wantPriceSet, p.Price.Valid)
			assert.Equal(t, tt.wantPrice, p.UnitPrice().String())
			assert.Equal(t, tt.wantStock, p.Stock)
		})
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	raws := []domain.RawProduct{
		{ID: uuid.New(), Name: "a"},
		{ID: uuid.New(), Name: "b"},
		{ID: uuid.New(), Name: "c"},
	}

	got := inventory.NormalizeAll(raws)

	require.Len(t, got, 3)
	for i := range raws {
		assert.Equal(t, raws[i].ID, got[i].ID)
	}
}

// =============================================================================
// Aggregation
// =============================================================================

func TestAggregateByCategory_Scenario(t *testing.T) {
	stats := inventory.AggregateByCategory(scenario())

	require.Len(t, stats, 2)
	assert.Equal(t, "Books", stats[0].Category)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, "70", stats[0].TotalValue.String())
	assert.Equal(t, "Toys", stats[1].Category)
	assert.Equal(t, 1, stats[1].Count)
	assert.Equal(t, "100", stats[1].TotalValue.String())
}

func TestAggregateByCategory_Empty(t *testing.T) {
	stats := inventory.AggregateByCategory(nil)

	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestAggregateByCategory_CaseSensitive(t *testing.T) {
	records := []domain.Product{
		record("Books", "1", 1, ""),
		record("books", "1", 1, ""),
	}

	stats := inventory.AggregateByCategory(records)

	assert.Len(t, stats, 2)
}

func TestAggregateByCategory_TiesKeepFirstEncounter(t *testing.T) {
	records := []domain.Product{
		record("Garden", "1", 1, ""),
		record("Books", "1", 1, ""),
		record("Toys", "1", 1, ""),
		record("Toys", "1", 1, ""),
	}

	stats := inventory.AggregateByCategory(records)

	require.Len(t, stats, 3)
	assert.Equal(t, "Toys", stats[0].Category)
	assert.Equal(t, "Garden", stats[1].Category)
	assert.Equal(t, "Books", stats[2].Category)
}

func TestAggregateByCategory_PermutationInvariant(t *testing.T) {
	base := []domain.Product{
		record("Books", "10", 5, ""),
		record("Books", "20", 1, ""),
		record("Toys", "5", 20, ""),
		record("Garden", "3.25", 4, ""),
		record("Garden", "", 9, ""),
		record("Toys", "1.10", 3, ""),
	}

	type key struct {
		count int
		value string
	}
	collect := func(stats []domain.CategoryStat) map[string]key {
		m := make(map[string]key, len(stats))
		for _, s := range stats {
			m[s.Category] = key{s.Count, s.TotalValue.String()}
		}
		return m
	}

	want := collect(inventory.AggregateByCategory(base))
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		shuffled := make([]domain.Product, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := inventory.AggregateByCategory(shuffled)

		assert.Equal(t, want, collect(got))
		for j := 1; j < len(got); j++ {
			assert.GreaterOrEqual(t, got[j-1].Count, got[j].Count)
		}
	}
}

func TestAggregateStats_Scenario(t *testing.T) {
	stats := inventory.AggregateStats(scenario())

	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, "170", stats.TotalValue.String())
	assert.Equal(t, 1, stats.LowStockCount)
	assert.Equal(t, 0, stats.ActiveCount)
}

func TestAggregateStats_LowStockBoundary(t *testing.T) {
	tests := []struct {
		name  string
		stock int64
		low   int
	}{
		{"nine is low", 9, 1},
		{"ten is not low", 10, 0},
		{"absent is low", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := inventory.AggregateStats([]domain.Product{record("Books", "1", tt.stock, "")})
			assert.Equal(t, tt.low, stats.LowStockCount)
		})
	}
}

func TestAggregateStats_ActiveCount(t *testing.T) {
	records := []domain.Product{
		record("A", "1", 1, domain.ProductStatusActive),
		record("A", "1", 1, domain.ProductStatusDraft),
		record("A", "1", 1, domain.ProductStatusActive),
	}

	assert.Equal(t, 2, inventory.AggregateStats(records).ActiveCount)
}

func TestValueConservation(t *testing.T) {
	records := append(scenario(),
		record("Garden", "3.33", 3, ""),
		record(domain.UncategorizedCategory, "", 50, ""),
		record("Garden", "0.01", 7, ""),
	)

	sum := decimal.Zero
	for _, s := range inventory.AggregateByCategory(records) {
		sum = sum.Add(s.TotalValue)
	}

	assert.True(t, sum.Equal(inventory.AggregateStats(records).TotalValue))
}

func TestFilterCategories(t *testing.T) {
	stats := inventory.AggregateByCategory(scenario())

	assert.Len(t, inventory.FilterCategories(stats, ""), 2)

	got := inventory.FilterCategories(stats, "BOO")
	require.Len(t, got, 1)
	assert.Equal(t, "Books", got[0].Category)

	assert.Empty(t, inventory.FilterCategories(stats, "zzz"))
}

func TestSummarizeCategories(t *testing.T) {
	summary := inventory.SummarizeCategories(inventory.AggregateByCategory(scenario()))

	assert.Equal(t, 2, summary.Categories)
	assert.Equal(t, 3, summary.TotalProducts)
	assert.Equal(t, "170", summary.TotalValue.String())
	// 3 / 2 = 1.5 rounds up
	assert.Equal(t, int64(2), summary.AveragePerCategory)

	empty := inventory.SummarizeCategories(nil)
	assert.Equal(t, 0, empty.Categories)
	assert.Equal(t, int64(0), empty.AveragePerCategory)
}

// =============================================================================
// Project
// =============================================================================

func sortedRecords(n int) []domain.Product {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.Product, n)
	for i := 0; i < n; i++ {
		records[i] = record("Books", "1", int64(i), domain.ProductStatusActive)
		records[i].CreatedAt = start.Add(time.Duration(n-i) * time.Hour)
	}
	return records
}

func TestProject_LimitKeepsOrder(t *testing.T) {
	records := sortedRecords(7)

	views := inventory.Project(records, inventory.ProjectOptions{Limit: 5, Mode: inventory.ModeFull})

	require.Len(t, views, 5)
	for i := range views {
		assert.Equal(t, records[i].ID, views[i].ID)
	}
}

func TestProject_OrdersNewestFirst(t *testing.T) {
	records := sortedRecords(4)
	reversed := []domain.Product{records[3], records[1], records[0], records[2]}

	views := inventory.Project(reversed, inventory.DefaultProjectOptions())

	require.Len(t, views, 4)
	for i := range views {
		assert.Equal(t, records[i].ID, views[i].ID)
	}
	// input untouched
	assert.Equal(t, records[3].ID, reversed[0].ID)
}

func TestProject_Modes(t *testing.T) {
	records := []domain.Product{record("Books", "4.50", 3, domain.ProductStatusActive)}

	compact := inventory.Project(records, inventory.ProjectOptions{Mode: inventory.ModeCompact})
	require.Len(t, compact, 1)
	assert.Empty(t, compact[0].Actions)
	assert.Empty(t, compact[0].Category)
	assert.Nil(t, compact[0].Stock)
	assert.Nil(t, compact[0].Price)

	full := inventory.Project(records, inventory.ProjectOptions{Mode: inventory.ModeFull})
	require.Len(t, full, 1)
	assert.Equal(t, []string{inventory.ActionEdit, inventory.ActionDelete}, full[0].Actions)
	assert.Equal(t, "Books", full[0].Category)
	assert.Equal(t, domain.ProductStatusActive, full[0].Status)
	require.NotNil(t, full[0].Stock)
	assert.Equal(t, int64(3), *full[0].Stock)
	require.NotNil(t, full[0].Price)
	assert.Equal(t, "4.5", full[0].Price.String())
	assert.True(t, full[0].LowStock)
}

func TestParseViewMode(t *testing.T) {
	m, ok := inventory.ParseViewMode("")
	assert.True(t, ok)
	assert.Equal(t, inventory.ModeFull, m)

	m, ok = inventory.ParseViewMode("compact")
	assert.True(t, ok)
	assert.Equal(t, inventory.ModeCompact, m)

	_, ok = inventory.ParseViewMode("grid")
	assert.False(t, ok)
}

// =============================================================================
// Reconcile
// =============================================================================

func TestAfterDelete_Idempotent(t *testing.T) {
	records := scenario()
	id := records[1].ID

	once := inventory.AfterDelete(records, id)
	twice := inventory.AfterDelete(once, id)

	assert.Len(t, once, 2)
	assert.Equal(t, once, twice)
	assert.Len(t, records, 3, "input is not modified")
}

func TestAfterDelete_MissingID(t *testing.T) {
	records := scenario()

	got := inventory.AfterDelete(records, uuid.New())

	assert.Equal(t, records, got)
}

func TestAfterCreate_Prepends(t *testing.T) {
	records := scenario()
	rec := record("Garden", "2", 2, "")

	got := inventory.AfterCreate(records, rec)

	require.Len(t, got, 4)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, records[0].ID, got[1].ID)
	assert.Len(t, records, 3)
}
