package tools

import (
	"github.com/petasbytes/expense-agent/internal/expense"
	"github.com/petasbytes/expense-agent/internal/stats"
)

// Statistic names accepted by calculateStatistics.
const (
	StatisticSum     = "sum"
	StatisticAverage = "average"
	StatisticMedian  = "median"
	StatisticCount   = "count"
)

type CalculateStatisticsInput struct {
	Statistic string `json:"statistic" jsonschema:"enum=sum,enum=average,enum=median,enum=count" jsonschema_description:"The statistic to calculate"`
	CriteriaInput
	ExcludeOutliers  bool    `json:"excludeOutliers,omitempty" jsonschema:"default=false" jsonschema_description:"Whether to exclude statistical outliers (amounts above mean + outlierThreshold * standard deviation of the filtered expenses)"`
	OutlierThreshold float64 `json:"outlierThreshold,omitempty" jsonschema:"default=2" jsonschema_description:"Standard-deviation multiplier for outlier detection"`
}

// FiltersEcho reports back the filters that were applied.
type FiltersEcho struct {
	StartDate        string   `json:"startDate,omitempty"`
	EndDate          string   `json:"endDate,omitempty"`
	Category         string   `json:"category,omitempty"`
	MinAmount        *float64 `json:"minAmount,omitempty"`
	MaxAmount        *float64 `json:"maxAmount,omitempty"`
	Vendor           string   `json:"vendor,omitempty"`
	ExcludeOutliers  bool     `json:"excludeOutliers"`
	OutlierThreshold *float64 `json:"outlierThreshold,omitempty"`
}

type CalculateStatisticsResult struct {
	Statistic string      `json:"statistic"`
	Value     float64     `json:"value"`
	Count     int         `json:"count"`
	Filters   FiltersEcho `json:"filters"`
}

var CalculateStatisticsDefinition = newDefinition[CalculateStatisticsInput](KindCalculateStatistics,
	`Calculate statistical aggregates (sum, average, median, count) for expenses.
Can filter by date range, category, amount thresholds, and vendor.
Can exclude outliers using anomaly detection; outliers are detected within the filtered expenses.
Returns ONLY aggregated numbers, never raw expense lists.`).
	withEnumCode("statistic", CodeComputation)

// CalculateStatistics filters records, optionally strips outliers from the
// filtered subset, and computes the requested statistic rounded to 2dp.
func CalculateStatistics(records []expense.Record, in CalculateStatisticsInput) (CalculateStatisticsResult, error) {
	criteria, err := in.Criteria()
	if err != nil {
		return CalculateStatisticsResult{}, err
	}
	if in.OutlierThreshold < 0 {
		return CalculateStatisticsResult{}, validationError("outlierThreshold", "field %q must not be negative", "outlierThreshold")
	}

	subset := expense.Filter(records, criteria)
	if in.ExcludeOutliers {
		subset = expense.ExcludeAnomalies(subset, in.OutlierThreshold)
	}
	amounts := expense.Amounts(subset)

	var value float64
	switch in.Statistic {
	case StatisticSum:
		value = stats.Sum(amounts)
	case StatisticAverage:
		value = stats.Mean(amounts)
	case StatisticMedian:
		value = stats.Median(amounts)
	case StatisticCount:
		value = float64(len(amounts))
	default:
		return CalculateStatisticsResult{}, computationError("unknown statistic %q", in.Statistic)
	}

	echo := FiltersEcho{
		StartDate:       echoDate(criteria.Start),
		EndDate:         echoDate(criteria.End),
		Category:        in.Category,
		MinAmount:       in.MinAmount,
		MaxAmount:       in.MaxAmount,
		Vendor:          in.Vendor,
		ExcludeOutliers: in.ExcludeOutliers,
	}
	if in.ExcludeOutliers {
		k := in.OutlierThreshold
		echo.OutlierThreshold = &k
	}
	return CalculateStatisticsResult{
		Statistic: in.Statistic,
		Value:     stats.Round2(value),
		Count:     len(amounts),
		Filters:   echo,
	}, nil
}
