package tools

import (
	"github.com/petasbytes/expense-agent/internal/expense"
)

type GroupByCategoryInput struct {
	StartDate string `json:"startDate,omitempty" jsonschema:"format=date" jsonschema_description:"Start date in YYYY-MM-DD format (inclusive)"`
	EndDate   string `json:"endDate,omitempty" jsonschema:"format=date" jsonschema_description:"End date in YYYY-MM-DD format (inclusive)"`
	TopN      int    `json:"topN,omitempty" jsonschema_description:"Return only the first N categories after sorting (optional)"`
	SortBy    string `json:"sortBy,omitempty" jsonschema:"enum=total,enum=count,enum=category,default=total" jsonschema_description:"Sort results by total spending, count, or category name"`
}

type DateRangeEcho struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type GroupByCategoryResult struct {
	Categories      []expense.CategoryTotal `json:"categories"`
	TotalCategories int                     `json:"totalCategories"`
	DateRange       DateRangeEcho           `json:"dateRange"`
}

var GroupByCategoryDefinition = newDefinition[GroupByCategoryInput](KindGroupByCategory,
	`Group expenses by category and calculate totals for each category.
Useful for getting spending breakdowns and comparing category spending.
Returns aggregated category totals, not individual expenses.`)

// GroupByCategory aggregates the date-filtered records per category.
func GroupByCategory(records []expense.Record, in GroupByCategoryInput) (GroupByCategoryResult, error) {
	start, end, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return GroupByCategoryResult{}, err
	}
	sortBy, err := expense.ParseSortKey(in.SortBy)
	if err != nil {
		return GroupByCategoryResult{}, validationError("sortBy", "%v", err)
	}
	groups, total := expense.GroupByCategory(records, expense.GroupOptions{
		Start:  start,
		End:    end,
		TopN:   in.TopN,
		SortBy: sortBy,
	})
	return GroupByCategoryResult{
		Categories:      groups,
		TotalCategories: total,
		DateRange:       DateRangeEcho{StartDate: echoDate(start), EndDate: echoDate(end)},
	}, nil
}
