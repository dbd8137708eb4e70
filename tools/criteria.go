package tools

import (
	"github.com/petasbytes/expense-agent/internal/expense"
)

// CriteriaInput is the filter shape shared by queryExpenses and calculateStatistics.
type CriteriaInput struct {
	StartDate string   `json:"startDate,omitempty" jsonschema:"format=date" jsonschema_description:"Start date in YYYY-MM-DD format (inclusive)"`
	EndDate   string   `json:"endDate,omitempty" jsonschema:"format=date" jsonschema_description:"End date in YYYY-MM-DD format (inclusive)"`
	Category  string   `json:"category,omitempty" jsonschema_description:"Filter by category (e.g., Groceries, Dining, Entertainment); case-insensitive exact match"`
	MinAmount *float64 `json:"minAmount,omitempty" jsonschema_description:"Minimum amount threshold (inclusive)"`
	MaxAmount *float64 `json:"maxAmount,omitempty" jsonschema_description:"Maximum amount threshold (inclusive)"`
	Vendor    string   `json:"vendor,omitempty" jsonschema_description:"Filter by vendor name; case-insensitive substring match"`
}

// Criteria converts the input into filter criteria.
func (in CriteriaInput) Criteria() (expense.Criteria, error) {
	start, end, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return expense.Criteria{}, err
	}
	return expense.Criteria{
		Start:     start,
		End:       end,
		Category:  in.Category,
		MinAmount: in.MinAmount,
		MaxAmount: in.MaxAmount,
		Vendor:    in.Vendor,
	}, nil
}

// echoDate renders an applied bound as YYYY-MM-DD, or "" when unbounded.
func echoDate(d *expense.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseRange(startDate, endDate string) (start, end *expense.Date, err error) {
	if startDate != "" {
		d, err := expense.ParseDate(startDate)
		if err != nil {
			return nil, nil, validationError("startDate", "%v", err)
		}
		start = &d
	}
	if endDate != "" {
		d, err := expense.ParseDate(endDate)
		if err != nil {
			return nil, nil, validationError("endDate", "%v", err)
		}
		end = &d
	}
	return start, end, nil
}
