package runner

import (
	"context"

	"github.com/petasbytes/expense-agent/memory"
	"github.com/petasbytes/expense-agent/tools"
)

// Request is one model call: instructions, history oldest first, and the
// tools the model may invoke.
type Request struct {
	System string
	Turns  []memory.Turn
	Tools  []tools.ToolDefinition
}

// Usage reports token accounting when the model provides it.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is either final text (no Calls) or a batch of tool calls. Text
// that accompanies calls is kept on the assistant turn but does not end the
// question.
type Response struct {
	Text       string
	Calls      []memory.ToolCall
	StopReason string
	Usage      Usage
}

// Model is the language-model capability.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, req Request) (Response, error)

func (f ModelFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
