package tools

import (
	"github.com/petasbytes/expense-agent/internal/expense"
)

type QueryExpensesInput struct {
	CriteriaInput
}

// ExpenseView is the per-record projection returned to the model.
type ExpenseView struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
	Vendor   string  `json:"vendor"`
}

type QueryExpensesResult struct {
	Count    int           `json:"count"`
	Expenses []ExpenseView `json:"expenses"`
}

var QueryExpensesDefinition = newDefinition[QueryExpensesInput](KindQueryExpenses,
	`Query and filter expenses based on criteria. Returns filtered expense data.
Use this to find expenses matching specific conditions like date ranges, categories, amount thresholds, or vendors.`)

// QueryExpenses filters records and projects each match onto its public fields.
func QueryExpenses(records []expense.Record, in QueryExpensesInput) (QueryExpensesResult, error) {
	criteria, err := in.Criteria()
	if err != nil {
		return QueryExpensesResult{}, err
	}
	matched := expense.Filter(records, criteria)
	out := QueryExpensesResult{Count: len(matched), Expenses: make([]ExpenseView, 0, len(matched))}
	for _, r := range matched {
		out.Expenses = append(out.Expenses, ExpenseView{
			Date:     r.Date.String(),
			Amount:   r.Amount,
			Category: r.Category,
			Vendor:   r.Vendor,
		})
	}
	return out, nil
}
