package windowing

import "github.com/petasbytes/expense-agent/memory"

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated tokens for included groups only.
// - Budget: the input token budget used.
// - IncludedGroups: number of groups included.
// - SkippedGroups: total groups minus IncludedGroups.
// - OverBudgetNewest: true when the newest question with everything after it cannot fit in Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns a suffix of turns (oldest→newest) that fits within
// budget using the TokenCounter, without splitting groups.
//
// Rules:
// - If budget ≤ 0, windowing is disabled and the full history is returned.
// - Include whole groups scanning newest→oldest while total ≤ budget.
// - The window must open on a user turn; leading groups that do not are dropped.
// - If no user turn fits, return an empty window and set OverBudgetNewest.
func PrepareSendWindow(turns []memory.Turn, budget int, c TokenCounter) ([]memory.Turn, Stats) {
	if len(turns) == 0 {
		return nil, Stats{Budget: budget}
	}

	groups := GroupTurns(turns)
	costs := make([]int, len(groups))
	for i, g := range groups {
		costs[i] = c.CountGroup(g, turns)
	}

	if budget <= 0 {
		total := 0
		for _, cost := range costs {
			total += cost
		}
		return turns, Stats{Total: total, Budget: budget, IncludedGroups: len(groups)}
	}

	total := 0
	startIdx := len(groups) // exclusive sentinel; lowered as groups are included
	for gi := len(groups) - 1; gi >= 0; gi-- {
		if total+costs[gi] > budget {
			break
		}
		total += costs[gi]
		startIdx = gi
	}

	// Drop leading groups until the window opens on a user turn.
	for startIdx < len(groups) && turns[groups[startIdx].Start].Role != memory.RoleUser {
		total -= costs[startIdx]
		startIdx++
	}

	if startIdx == len(groups) {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	included := len(groups) - startIdx
	return turns[groups[startIdx].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}
