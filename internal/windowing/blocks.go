package windowing

import (
	"github.com/petasbytes/expense-agent/memory"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupToolRound
)

// Group describes a contiguous span of turns [Start, End) in the original slice.
// Reason is set on a singleton assistant turn whose calls could not be paired.
type Group struct {
	Kind   GroupKind
	Start  int // inclusive index into turns
	End    int // exclusive index into turns
	Reason string
}

// Reasons an assistant turn with calls falls back to a singleton.
const (
	ReasonMissingResults = "missing_results"
	ReasonExtraResults   = "extra_results"
	ReasonNotAdjacent    = "not_followed_by_results"
)

// GroupTurns groups turns into atomic units that preserve tool rounds.
// Invariants:
// - A tool round is an assistant turn with calls, immediately followed by one
// tool_result turn per call id, in any order, with nothing in between.
// - Every call id must be answered exactly once, and no result may answer an
// id the assistant turn did not issue.
// - tool_result turns with IsError=true are treated the same for grouping.
func GroupTurns(turns []memory.Turn) []Group {
	groups := make([]Group, 0, len(turns))
	for i := 0; i < len(turns); {
		t := turns[i]
		if t.Role == memory.RoleAssistant && len(t.Calls) > 0 {
			n := len(t.Calls)
			reason := roundReason(t, turns[i+1:])
			if reason == "" {
				groups = append(groups, Group{Kind: GroupToolRound, Start: i, End: i + 1 + n})
				i += 1 + n
				continue
			}
			groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1, Reason: reason})
			i++
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// roundReason returns "" when rest begins with a complete result set for a's calls.
func roundReason(a memory.Turn, rest []memory.Turn) string {
	want := make(map[string]struct{}, len(a.Calls))
	for _, c := range a.Calls {
		want[c.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(want))
	for j := 0; j < len(a.Calls); j++ {
		if j >= len(rest) || rest[j].Role != memory.RoleToolResult {
			if j == 0 {
				return ReasonNotAdjacent
			}
			return ReasonMissingResults
		}
		id := rest[j].ToolCallID
		if _, ok := want[id]; !ok {
			return ReasonExtraResults
		}
		if _, dup := seen[id]; dup {
			return ReasonExtraResults
		}
		seen[id] = struct{}{}
	}
	// A trailing result beyond the call count still belongs to nobody.
	if n := len(a.Calls); n < len(rest) && rest[n].Role == memory.RoleToolResult {
		return ReasonExtraResults
	}
	return ""
}
