package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/expense-agent/memory"
)

// TokenCounter estimates input-token cost for turns or groups.
type TokenCounter interface {
	CountTurn(t memory.Turn) int
	CountGroup(g Group, all []memory.Turn) int
}

// HeuristicCounter is the current default deterministic estimator.
// Rules:
// - every turn costs blockOverhead plus the rune count of its Text
// - every tool call adds blockOverhead plus the runes of its name and raw input
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountTurn(t memory.Turn) int {
	total := blockOverhead + utf8.RuneCountInString(t.Text)
	for _, c := range t.Calls {
		total += blockOverhead + utf8.RuneCountInString(c.Name) + utf8.RuneCount(c.Input)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Turn) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountTurn(all[i])
	}
	return total
}
