package memory

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role tags a turn.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Turn is one entry of a conversation.
//
// User turns carry Text. Assistant turns carry Text, Calls, or both.
// Tool-result turns carry the ToolCallID they answer, the result (or error
// body) in Text, and IsError.
type Turn struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Text       string     `json:"text,omitempty"`
	Calls      []ToolCall `json:"calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
	At         time.Time  `json:"at"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

func AssistantTurn(text string, calls []ToolCall) Turn {
	return Turn{Role: RoleAssistant, Text: text, Calls: calls}
}

func ToolResultTurn(callID, content string, isError bool) Turn {
	return Turn{Role: RoleToolResult, ToolCallID: callID, Text: content, IsError: isError}
}

// Conversation is an append-only, concurrency-safe sequence of turns.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// Append stamps each turn with an id and time and appends them in order.
// The stamped turns are returned.
func (c *Conversation) Append(turns ...Turn) []Turn {
	now := time.Now().UTC()
	stamped := make([]Turn, len(turns))
	for i, t := range turns {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.At.IsZero() {
			t.At = now
		}
		t.Calls = slices.Clone(t.Calls)
		stamped[i] = t
	}
	c.mu.Lock()
	c.turns = append(c.turns, stamped...)
	c.mu.Unlock()
	return stamped
}

// Turns returns a copy of the history, oldest first.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.turns)
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}
