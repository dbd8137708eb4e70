package expense

import "github.com/petasbytes/expense-agent/internal/stats"

// DefaultThresholdMultiplier is k in mean + k*stddev when callers omit it.
const DefaultThresholdMultiplier = 2.0

// DetectAnomalies returns the records whose amount is strictly greater than
// mean + k*stddev of the amounts in records. Only high spend is flagged.
func DetectAnomalies(records []Record, k float64) []Record {
	if len(records) == 0 {
		return nil
	}
	threshold := AnomalyThreshold(records, k)
	var out []Record
	for _, r := range records {
		if r.Amount > threshold {
			out = append(out, r)
		}
	}
	return out
}

// AnomalyThreshold returns mean + k*stddev (population) of the amounts.
func AnomalyThreshold(records []Record, k float64) float64 {
	amounts := Amounts(records)
	return stats.Mean(amounts) + k*stats.StdDev(amounts)
}

// ExcludeAnomalies drops from records every record whose (date, amount,
// vendor) tuple matches a record flagged by DetectAnomalies over the same
// records. Order is preserved.
func ExcludeAnomalies(records []Record, k float64) []Record {
	flagged := DetectAnomalies(records, k)
	if len(flagged) == 0 {
		return records
	}
	drop := make(map[identity]struct{}, len(flagged))
	for _, r := range flagged {
		drop[r.identity()] = struct{}{}
	}
	out := make([]Record, 0, len(records)-len(flagged))
	for _, r := range records {
		if _, ok := drop[r.identity()]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Amounts projects records onto their amounts.
func Amounts(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Amount
	}
	return out
}
