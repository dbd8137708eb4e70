package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/logger"
	"github.com/petasbytes/expense-agent/internal/provider"
	"github.com/petasbytes/expense-agent/internal/runner"
	"github.com/petasbytes/expense-agent/memory"
	"github.com/petasbytes/expense-agent/tools"
)

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newClientWithTransport(rt http.RoundTripper) *anthropic.Client {
	return provider.NewAnthropicClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
}

type contentItem struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type reqBody struct {
	Model    string `json:"model"`
	System   []struct {
		Text string `json:"text"`
	} `json:"system"`
	Tools []struct {
		Name string `json:"name"`
	} `json:"tools"`
	Messages []struct {
		Role    string        `json:"role"`
		Content []contentItem `json:"content"`
	} `json:"messages"`
}

func decodeBody(t *testing.T, c *capture) reqBody {
	t.Helper()
	if c.body == nil {
		t.Fatal("no request captured")
	}
	var rb reqBody
	if err := json.Unmarshal(c.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(c.body))
	}
	return rb
}

const toolUseResponse = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"stop_reason": "tool_use",
	"usage": {"input_tokens": 120, "output_tokens": 30},
	"content": [
		{"type": "text", "text": "Let me check."},
		{"type": "tool_use", "id": "t1", "name": "calculateStatistics", "input": {"statistic": "sum", "category": "Dining"}}
	]
}`

func TestAnthropic_Complete_RequestAndResponse(t *testing.T) {
	capReq := &capture{}
	cli := newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(toolUseResponse), captured: capReq})
	m := provider.NewAnthropic(cli, "", 0, 0)

	resp, err := m.Complete(context.Background(), runner.Request{
		System: "be helpful",
		Turns:  []memory.Turn{memory.UserTurn("How much on dining?")},
		Tools:  tools.Definitions(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rb := decodeBody(t, capReq)
	if capReq.method != http.MethodPost || rb.Model != string(provider.DefaultModel) {
		t.Fatalf("unexpected request: %s model=%s", capReq.method, rb.Model)
	}
	if len(rb.System) != 1 || rb.System[0].Text != "be helpful" {
		t.Fatalf("system not sent: %+v", rb.System)
	}
	if len(rb.Tools) != 3 || rb.Tools[0].Name != "queryExpenses" {
		t.Fatalf("tools not sent: %+v", rb.Tools)
	}
	if len(rb.Messages) != 1 || rb.Messages[0].Role != "user" || rb.Messages[0].Content[0].Text != "How much on dining?" {
		t.Fatalf("unexpected messages: %+v", rb.Messages)
	}

	if resp.Text != "Let me check." || resp.StopReason != "tool_use" || resp.Usage.InputTokens != 120 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Calls) != 1 || resp.Calls[0].ID != "t1" || resp.Calls[0].Name != "calculateStatistics" {
		t.Fatalf("unexpected calls: %+v", resp.Calls)
	}
	var in map[string]any
	if err := json.Unmarshal(resp.Calls[0].Input, &in); err != nil || in["category"] != "Dining" {
		t.Fatalf("unexpected input %s: %v", resp.Calls[0].Input, err)
	}
}

func TestAnthropic_Complete_SendsToolRoundShape(t *testing.T) {
	capReq := &capture{}
	cli := newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(`{"content":[],"role":"assistant"}`), captured: capReq})
	m := provider.NewAnthropic(cli, "claude-test", 256, 0)

	turns := []memory.Turn{
		memory.UserTurn("q"),
		memory.AssistantTurn("", []memory.ToolCall{
			{ID: "a", Name: "queryExpenses", Input: json.RawMessage(`{"vendor":"x"}`)},
			{ID: "b", Name: "groupByCategory"},
		}),
		memory.ToolResultTurn("a", `{"count":0,"expenses":[]}`, false),
		memory.ToolResultTurn("b", `{"code":"ERR_VALIDATION"}`, true),
	}
	if _, err := m.Complete(context.Background(), runner.Request{Turns: turns}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rb := decodeBody(t, capReq)
	if rb.Model != "claude-test" || len(rb.System) != 0 {
		t.Fatalf("unexpected model/system: %+v", rb)
	}
	if len(rb.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(rb.Messages))
	}
	asst := rb.Messages[1]
	if asst.Role != "assistant" || len(asst.Content) != 2 || asst.Content[0].Type != "tool_use" || asst.Content[1].ID != "b" {
		t.Fatalf("unexpected assistant message: %+v", asst)
	}
	if string(asst.Content[1].Input) != `{}` {
		t.Fatalf("empty input should be sent as {}, got %s", asst.Content[1].Input)
	}
	results := rb.Messages[2]
	if results.Role != "user" || len(results.Content) != 2 || results.Content[0].ToolUseID != "a" || !results.Content[1].IsError {
		t.Fatalf("unexpected tool results: %+v", results)
	}
}

func TestAnthropic_Complete_OverBudget_NoHTTP(t *testing.T) {
	capReq := &capture{}
	cli := newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(`{"content":[],"role":"assistant"}`), captured: capReq})
	m := provider.NewAnthropic(cli, "", 0, 1)

	_, err := m.Complete(context.Background(), runner.Request{Turns: []memory.Turn{memory.UserTurn("hello")}})
	if !errors.Is(err, provider.ErrWindowOverBudget) {
		t.Fatalf("expected ErrWindowOverBudget, got %v", err)
	}
	if capReq.body != nil {
		t.Fatalf("expected no HTTP call when over budget; got body len=%d", len(capReq.body))
	}
}

func TestAnthropic_Complete_SendsPreparedWindow(t *testing.T) {
	capReq := &capture{}
	cli := newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(`{"content":[],"role":"assistant"}`), captured: capReq})
	m := provider.NewAnthropic(cli, "", 0, 12)

	turns := []memory.Turn{
		memory.UserTurn("abc"),
		memory.AssistantTurn("answer", nil),
		memory.UserTurn("defgh"), // 9: the only group that fits in 12
	}
	if _, err := m.Complete(context.Background(), runner.Request{Turns: turns}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rb := decodeBody(t, capReq)
	if len(rb.Messages) != 1 || rb.Messages[0].Content[0].Text != "defgh" {
		t.Fatalf("unexpected prepared window payload: %+v", rb.Messages)
	}
}

func TestAnthropic_Complete_HTTPError(t *testing.T) {
	cli := newClientWithTransport(&fakeTransport{respStatus: 500, respBody: []byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`)})
	m := provider.NewAnthropic(cli, "", 0, 0)
	if _, err := m.Complete(context.Background(), runner.Request{Turns: []memory.Turn{memory.UserTurn("q")}}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestToMessages_MergesUserContent(t *testing.T) {
	// A failed model call leaves tool results followed directly by the next question.
	turns := []memory.Turn{
		memory.UserTurn("first"),
		memory.AssistantTurn("", []memory.ToolCall{{ID: "a", Name: "queryExpenses"}}),
		memory.ToolResultTurn("a", "{}", false),
		memory.UserTurn("second"),
		memory.UserTurn("third"),
	}
	msgs := provider.ToMessages(turns)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	last := msgs[2]
	if last.Role != anthropic.MessageParamRoleUser || len(last.Content) != 3 {
		t.Fatalf("unexpected merged message: %+v", last)
	}
	if last.Content[0].OfToolResult == nil || last.Content[1].OfText == nil || last.Content[2].OfText.Text != "third" {
		t.Fatalf("tool_result must lead merged user content: %+v", last.Content)
	}
}

func TestAnthropic_Complete_LogsWindowFromContext(t *testing.T) {
	cli := newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(`{"content":[],"role":"assistant"}`)})
	m := provider.NewAnthropic(cli, "", 0, 100)

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf).Level(zerolog.DebugLevel))
	if _, err := m.Complete(ctx, runner.Request{Turns: []memory.Turn{memory.UserTurn("q")}}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(buf.String(), "send window prepared") || !strings.Contains(buf.String(), `"budget":100`) {
		t.Fatalf("window not logged: %s", buf.String())
	}
}
