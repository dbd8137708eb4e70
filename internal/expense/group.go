package expense

import (
	"cmp"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/petasbytes/expense-agent/internal/stats"
)

// SortKey selects the ordering of category groups.
type SortKey string

const (
	SortByTotal    SortKey = "total"
	SortByCount    SortKey = "count"
	SortByCategory SortKey = "category"
)

// ParseSortKey maps s to a SortKey; "" selects SortByTotal.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortByTotal:
		return SortByTotal, nil
	case SortByCount, SortByCategory:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// GroupOptions configures GroupByCategory. Only a date range is accepted;
// callers filter on other fields upstream.
type GroupOptions struct {
	Start  *Date
	End    *Date
	TopN   int
	SortBy SortKey
}

// CategoryTotal is one aggregated group.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
}

// GroupByCategory groups the date-filtered records by normalised category
// and returns the sorted (and optionally truncated) groups together with the
// number of groups before truncation.
//
// Totals and averages are rounded to 2dp; the average is derived from the
// unrounded total. Ties keep first-seen category order.
func GroupByCategory(records []Record, opts GroupOptions) ([]CategoryTotal, int) {
	buckets := orderedmap.New[string, []float64]()
	for _, r := range records {
		if !InRange(r.Date, opts.Start, opts.End) {
			continue
		}
		key := r.CategoryOrDefault()
		amounts, _ := buckets.Get(key)
		buckets.Set(key, append(amounts, r.Amount))
	}

	groups := make([]CategoryTotal, 0, buckets.Len())
	for pair := buckets.Oldest(); pair != nil; pair = pair.Next() {
		total := stats.Sum(pair.Value)
		groups = append(groups, CategoryTotal{
			Category: pair.Key,
			Total:    stats.Round2(total),
			Count:    len(pair.Value),
			Average:  stats.Round2(total / float64(len(pair.Value))),
		})
	}

	slices.SortStableFunc(groups, compareBy(opts.SortBy))

	totalCount := len(groups)
	if opts.TopN > 0 && len(groups) > opts.TopN {
		groups = groups[:opts.TopN]
	}
	return groups, totalCount
}

func compareBy(key SortKey) func(a, b CategoryTotal) int {
	switch key {
	case SortByCount:
		return func(a, b CategoryTotal) int { return cmp.Compare(b.Count, a.Count) }
	case SortByCategory:
		return func(a, b CategoryTotal) int { return cmp.Compare(a.Category, b.Category) }
	default:
		return func(a, b CategoryTotal) int { return cmp.Compare(b.Total, a.Total) }
	}
}
