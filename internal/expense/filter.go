package expense

import "strings"

// Criteria is a conjunction of optional constraints. Nil pointers and empty
// strings mean "not constrained".
type Criteria struct {
	Start     *Date
	End       *Date
	Category  string
	MinAmount *float64
	MaxAmount *float64
	Vendor    string
}

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return c.Start == nil && c.End == nil &&
		strings.TrimSpace(c.Category) == "" &&
		c.MinAmount == nil && c.MaxAmount == nil &&
		strings.TrimSpace(c.Vendor) == ""
}

// Filter returns the records matching every constraint in c, preserving
// their relative order. An empty Criteria returns records as given.
func Filter(records []Record, c Criteria) []Record {
	if c.IsEmpty() {
		return records
	}
	category := strings.TrimSpace(c.Category)
	vendor := strings.ToLower(strings.TrimSpace(c.Vendor))

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !InRange(r.Date, c.Start, c.End) {
			continue
		}
		if category != "" && !strings.EqualFold(r.CategoryOrDefault(), category) {
			continue
		}
		if c.MinAmount != nil && r.Amount < *c.MinAmount {
			continue
		}
		if c.MaxAmount != nil && r.Amount > *c.MaxAmount {
			continue
		}
		if vendor != "" && !strings.Contains(strings.ToLower(r.Vendor), vendor) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// InRange reports whether d lies within [start, end]. A nil bound is open.
func InRange(d Date, start, end *Date) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}
