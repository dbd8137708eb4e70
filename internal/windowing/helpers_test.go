package windowing_test

import (
	"encoding/json"

	"github.com/petasbytes/expense-agent/internal/windowing"
	"github.com/petasbytes/expense-agent/memory"
)

// User turn constructor
func User(text string) memory.Turn {
	return memory.UserTurn(text)
}

// Assistant turn with one call per id; the call name is "t" and input is empty.
func Calls(ids ...string) memory.Turn {
	calls := make([]memory.ToolCall, len(ids))
	for i, id := range ids {
		calls[i] = memory.ToolCall{ID: id, Name: "t"}
	}
	return memory.AssistantTurn("", calls)
}

// Assistant text turn constructor
func Say(text string) memory.Turn {
	return memory.AssistantTurn(text, nil)
}

// Tool-result constructor
func Result(id, content string) memory.Turn {
	return memory.ToolResultTurn(id, content, false)
}

// Tool-result constructor flagged as an error
func Failed(id, content string) memory.Turn {
	return memory.ToolResultTurn(id, content, true)
}

func withInput(t memory.Turn, input string) memory.Turn {
	for i := range t.Calls {
		t.Calls[i].Input = json.RawMessage(input)
	}
	return t
}

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
