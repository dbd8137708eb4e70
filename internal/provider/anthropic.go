package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/expense-agent/internal/logger"
	"github.com/petasbytes/expense-agent/internal/runner"
	"github.com/petasbytes/expense-agent/internal/windowing"
	"github.com/petasbytes/expense-agent/memory"
	"github.com/petasbytes/expense-agent/tools"
)

const DefaultModel = anthropic.ModelClaudeSonnet4_5
const DefaultMaxTokens = 1024

// ErrWindowOverBudget is returned when the newest question cannot fit in the
// configured token budget. No request is sent.
var ErrWindowOverBudget = errors.New("windowing: newest question exceeds token budget; increase AGT_TOKEN_BUDGET")

// NewAnthropicClient returns a client using the API key from the env plus opts.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic implements runner.Model over the Messages API.
type Anthropic struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
	// TokenBudget bounds the estimated size of the history sent; 0 sends it all.
	TokenBudget int
	Counter     windowing.TokenCounter
}

// NewAnthropic returns a model with defaults filled in for zero values.
func NewAnthropic(client *anthropic.Client, model string, maxTokens int64, tokenBudget int) *Anthropic {
	m := anthropic.Model(model)
	if model == "" {
		m = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Anthropic{
		Client:      client,
		Model:       m,
		MaxTokens:   maxTokens,
		TokenBudget: tokenBudget,
		Counter:     windowing.HeuristicCounter{},
	}
}

func (a *Anthropic) Complete(ctx context.Context, req runner.Request) (runner.Response, error) {
	counter := a.Counter
	if counter == nil {
		counter = windowing.HeuristicCounter{}
	}
	window, stats := windowing.PrepareSendWindow(req.Turns, a.TokenBudget, counter)
	log := logger.FromContext(ctx)
	log.Debug().
		Int("budget", stats.Budget).
		Int("estimated", stats.Total).
		Int("groups_in", stats.IncludedGroups).
		Int("groups_skipped", stats.SkippedGroups).
		Msg("send window prepared")
	if stats.OverBudgetNewest {
		return runner.Response{}, ErrWindowOverBudget
	}

	params := anthropic.MessageNewParams{
		Model:     a.Model,
		MaxTokens: a.MaxTokens,
		Messages:  ToMessages(window),
		Tools:     ToTools(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return runner.Response{}, fmt.Errorf("anthropic: %w", err)
	}
	return FromMessage(msg), nil
}

// ToTools converts tool definitions to API tool params.
func ToTools(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// ToMessages converts turns to API messages. Tool-result turns travel as
// user content; consecutive same-role turns merge into one message with
// tool_result blocks ahead of text, as the API requires.
func ToMessages(turns []memory.Turn) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var pending []anthropic.ContentBlockParamUnion // user text waiting behind results

	appendBlocks := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}
	flush := func() {
		appendBlocks(anthropic.MessageParamRoleUser, pending...)
		pending = nil
	}

	for _, t := range turns {
		switch t.Role {
		case memory.RoleUser:
			if t.Text != "" {
				pending = append(pending, anthropic.NewTextBlock(t.Text))
			}
		case memory.RoleToolResult:
			flush()
			appendBlocks(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(t.ToolCallID, t.Text, t.IsError))
		case memory.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if strings.TrimSpace(t.Text) != "" {
				blocks = append(blocks, anthropic.NewTextBlock(t.Text))
			}
			for _, c := range t.Calls {
				blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, toolInput(c.Input), c.Name))
			}
			appendBlocks(anthropic.MessageParamRoleAssistant, blocks...)
		}
	}
	flush()
	return out
}

func toolInput(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage(`{}`)
	}
	return raw
}

// FromMessage extracts text and tool calls from an API response.
func FromMessage(msg *anthropic.Message) runner.Response {
	resp := runner.Response{
		StopReason: string(msg.StopReason),
		Usage: runner.Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
	var text []string
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, v.Text)
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through to the tool implementation
			resp.Calls = append(resp.Calls, memory.ToolCall{
				ID:    v.ID,
				Name:  v.Name,
				Input: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	resp.Text = strings.Join(text, "\n")
	return resp
}
