package runner_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/expense"
	"github.com/petasbytes/expense-agent/internal/runner"
	"github.com/petasbytes/expense-agent/memory"
)

// scriptedModel replays responses in order and records every request.
type scriptedModel struct {
	mu        sync.Mutex
	responses []runner.Response
	errs      []error
	requests  []runner.Request
}

func (m *scriptedModel) Complete(_ context.Context, req runner.Request) (runner.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return runner.Response{}, m.errs[i]
	}
	if i >= len(m.responses) {
		return runner.Response{}, errors.New("script exhausted")
	}
	return m.responses[i], nil
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func text(s string) runner.Response {
	return runner.Response{Text: s, StopReason: "end_turn"}
}

func toolRound(calls ...memory.ToolCall) runner.Response {
	return runner.Response{Calls: calls, StopReason: "tool_use"}
}

func call(id, name, input string) memory.ToolCall {
	return memory.ToolCall{ID: id, Name: name, Input: []byte(input)}
}

func newSession(t *testing.T) *memory.Session {
	t.Helper()
	store, err := expense.NewStore([]expense.Record{
		{Date: expense.MustParseDate("2025-11-03"), Amount: 40, Category: "Groceries", Vendor: "Whole Foods"},
		{Date: expense.MustParseDate("2025-11-10"), Amount: 25.5, Category: "Dining", Vendor: "Chipotle"},
		{Date: expense.MustParseDate("2025-12-02"), Amount: 60, Category: "Groceries", Vendor: "Trader Joe's"},
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return memory.NewSession(store, expense.MustParseDate("2025-12-30"))
}

func newRunner(m runner.Model, opts runner.Options) *runner.Runner {
	opts.Logger = zerolog.Nop()
	return runner.New(m, opts)
}

func roles(turns []memory.Turn) []memory.Role {
	out := make([]memory.Role, len(turns))
	for i, t := range turns {
		out[i] = t.Role
	}
	return out
}
