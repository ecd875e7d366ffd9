package inventory

import (
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/shopspring/decimal"
)

// AggregateStats computes the portfolio totals in a single traversal.
func AggregateStats(records []domain.Product) domain.InventoryStats {
	stats := domain.InventoryStats{TotalValue: decimal.Zero}
	for _, rec := range records {
		stats.TotalProducts++
		stats.TotalValue = stats.TotalValue.Add(rec.Value())
		if rec.IsLowStock() {
			stats.LowStockCount++
		}
		if rec.IsActive() {
			stats.ActiveCount++
		}
	}
	return stats
}
