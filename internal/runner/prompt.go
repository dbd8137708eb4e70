package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// SystemPrompt renders the model instructions for reference date ref. The
// month mapping is computed here so the model never has to do date math.
func SystemPrompt(ref expense.Date) string {
	var b strings.Builder
	b.WriteString("You are a helpful financial assistant that analyzes personal expense data.\n\n")

	b.WriteString("IMPORTANT CONTEXT:\n")
	fmt.Fprintf(&b, "- Today's date is %s (%s)\n", ref.Time().Format("January 2, 2006"), ref)
	writeRange(&b, `"this month"`, expense.ThisMonth(ref))
	writeRange(&b, `"last month"`, expense.LastMonth(ref))
	writeRange(&b, `"the month before last"`, expense.MonthBeforeLast(ref))
	b.WriteString("- When users name a month without a year, use its most recent occurrence:\n")
	for m := time.January; m <= time.December; m++ {
		r := expense.NamedMonth(ref, m)
		if m == ref.Month() {
			r = expense.ThisMonth(ref)
		}
		fmt.Fprintf(&b, "  - %s: %s to %s\n", m, r.Start, r.End)
	}
	b.WriteString("- Always pass dates to tools as YYYY-MM-DD; both ends of a range are inclusive.\n\n")

	b.WriteString(`You have access to these tools:
- calculateStatistics: Calculate sum, average, median, or count of expenses with optional filters and outlier exclusion
- groupByCategory: Get spending breakdown by category
- queryExpenses: Query and filter expense records

CONVERSATIONAL MEMORY:
- Remember previous queries and their context
- When users ask follow-up questions like "what about the month before?", reuse the previous category and criteria
- When users say "exclude outliers from both", remember the periods being compared

FORMATTING:
- Use markdown for formatting (bold, lists, tables)
- Round currency amounts to 2 decimal places
- Be concise and direct

Always use tools to get accurate data. Never make up numbers.`)
	return b.String()
}

func writeRange(b *strings.Builder, phrase string, r expense.DateRange) {
	fmt.Fprintf(b, "- When users say %s, they mean %s (%s to %s)\n",
		phrase, r.Start.Time().Format("January 2006"), r.Start, r.End)
}
