package inventory

import (
	"sort"
	"strings"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/shopspring/decimal"
)

// AggregateByCategory groups records by category label and returns one stat
// per distinct label, most populous first. Ties keep first-encounter order.
// Labels are compared exactly: "Books" and "books" are different categories.
func AggregateByCategory(records []domain.Product) []domain.CategoryStat {
	stats := make([]domain.CategoryStat, 0)
	index := make(map[string]int)

	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(stats)
			index[rec.Category] = i
			stats = append(stats, domain.CategoryStat{
				Category:   rec.Category,
				TotalValue: decimal.Zero,
			})
		}
		stats[i].Count++
		stats[i].TotalValue = stats[i].TotalValue.Add(rec.Value())
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Count > stats[b].Count
	})

	return stats
}

// FilterCategories keeps the stats whose label contains term, ignoring case.
// An empty term keeps everything.
func FilterCategories(stats []domain.CategoryStat, term string) []domain.CategoryStat {
	term = strings.ToLower(term)
	out := make([]domain.CategoryStat, 0, len(stats))
	for _, s := range stats {
		if strings.Contains(strings.ToLower(s.Category), term) {
			out = append(out, s)
		}
	}
	return out
}

// SummarizeCategories totals a category breakdown. The average number of
// products per category is rounded half away from zero.
func SummarizeCategories(stats []domain.CategoryStat) domain.CategorySummary {
	summary := domain.CategorySummary{
		Categories: len(stats),
		TotalValue: decimal.Zero,
	}
	for _, s := range stats {
		summary.TotalProducts += s.Count
		summary.TotalValue = summary.TotalValue.Add(s.TotalValue)
	}
	if summary.Categories > 0 {
		summary.AveragePerCategory = decimal.NewFromInt(int64(summary.TotalProducts)).
			Div(decimal.NewFromInt(int64(summary.Categories))).
			Round(0).
			IntPart()
	}
	return summary
}
