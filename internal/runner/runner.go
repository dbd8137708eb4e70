package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/petasbytes/expense-agent/internal/logger"
	"github.com/petasbytes/expense-agent/internal/telemetry"
	"github.com/petasbytes/expense-agent/memory"
	"github.com/petasbytes/expense-agent/tools"
)

// DefaultStepBudget is the number of model calls allowed per question.
const DefaultStepBudget = 10

// Fallback answers for questions that end without model text.
const (
	FallbackBudget     = "I'm sorry, I couldn't finish working out an answer within the allowed number of steps. Please try rephrasing or narrowing your question."
	FallbackCapability = "An unexpected error occurred while contacting the language model. Please try again."
	FallbackEmpty      = "I apologize, but I could not generate a response."
)

// ErrEmptyQuestion is returned for blank questions; nothing is recorded.
var ErrEmptyQuestion = errors.New("question is empty")

// Outcome says how a question ended.
type Outcome string

const (
	OutcomeAnswered        Outcome = "answered"
	OutcomeEmptyReply      Outcome = "empty_reply"
	OutcomeBudgetExceeded  Outcome = "budget_exceeded"
	OutcomeCapabilityError Outcome = "capability_error"
)

// Result is the terminal state of one question.
type Result struct {
	Answer  string
	Outcome Outcome
	Steps   int // model calls made
	TurnID  string
}

// Options configure a Runner. Zero values select defaults.
type Options struct {
	StepBudget int
	// Parallel executes the calls of one round concurrently. Results are
	// recorded in call order either way.
	Parallel bool
	Logger   zerolog.Logger
}

// Runner is safe for concurrent use across sessions.
type Runner struct {
	model Model
	opts  Options
}

func New(model Model, opts Options) *Runner {
	if opts.StepBudget <= 0 {
		opts.StepBudget = DefaultStepBudget
	}
	return &Runner{model: model, opts: opts}
}

// Ask runs question and returns only the answer text.
func (r *Runner) Ask(ctx context.Context, sess *memory.Session, question string) (string, error) {
	res, err := r.Run(ctx, sess, question)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// Run answers one question within sess, appending every turn it produces to
// the session's conversation. Questions on the same session are serialised.
//
// Tool failures and model failures never surface as errors; they end in
// tool-result turns or fallback answers. The returned error is non-nil only
// for ErrEmptyQuestion or when ctx is done.
func (r *Runner) Run(ctx context.Context, sess *memory.Session, question string) (Result, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return Result{}, ErrEmptyQuestion
	}

	release := sess.Acquire()
	defer release()

	turnID := uuid.NewString()
	ctx = telemetry.WithSessionID(telemetry.WithTurnID(ctx, turnID), sess.ID())
	log := r.opts.Logger.With().Str("session_id", sess.ID()).Str("turn_id", turnID).Logger()
	ctx = logger.WithContext(ctx, log)

	telemetry.EmitQuestionReceived(ctx, q)
	log.Info().Int("runes", utf8.RuneCountInString(q)).Msg("question received")

	conv := sess.Conversation()
	conv.Append(memory.UserTurn(q))

	reg := tools.NewRegistry(sess.Store())
	req := Request{System: SystemPrompt(sess.ReferenceDate()), Tools: reg.Definitions()}

	for step := 1; step <= r.opts.StepBudget; step++ {
		if err := ctx.Err(); err != nil {
			return Result{Steps: step - 1, TurnID: turnID}, fmt.Errorf("question abandoned: %w", err)
		}

		req.Turns = conv.Turns()
		start := time.Now()
		resp, err := r.model.Complete(ctx, req)
		r.emitModelCall(ctx, step, len(req.Turns), time.Since(start), resp, err)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{Steps: step, TurnID: turnID}, fmt.Errorf("question abandoned: %w", ctxErr)
			}
			log.Error().Err(err).Int("step", step).Msg("model call failed")
			return r.finish(ctx, Result{Answer: FallbackCapability, Outcome: OutcomeCapabilityError, Steps: step, TurnID: turnID}), nil
		}

		if len(resp.Calls) == 0 {
			res := Result{Answer: resp.Text, Outcome: OutcomeAnswered, Steps: step, TurnID: turnID}
			if strings.TrimSpace(resp.Text) == "" {
				res.Answer, res.Outcome = FallbackEmpty, OutcomeEmptyReply
			}
			conv.Append(memory.AssistantTurn(res.Answer, nil))
			return r.finish(ctx, res), nil
		}

		calls := normalizeCalls(resp.Calls)
		conv.Append(memory.AssistantTurn(resp.Text, calls))
		log.Debug().Int("step", step).Int("calls", len(calls)).Msg("executing tool round")
		conv.Append(r.executeRound(ctx, reg, calls)...)
	}

	conv.Append(memory.AssistantTurn(FallbackBudget, nil))
	log.Warn().Int("budget", r.opts.StepBudget).Msg("step budget exhausted")
	return r.finish(ctx, Result{Answer: FallbackBudget, Outcome: OutcomeBudgetExceeded, Steps: r.opts.StepBudget, TurnID: turnID}), nil
}

func (r *Runner) finish(ctx context.Context, res Result) Result {
	log := logger.FromContext(ctx)
	log.Info().
		Str("outcome", string(res.Outcome)).
		Int("steps", res.Steps).
		Msg("question finished")
	telemetry.Emit(ctx, telemetry.EventAnswer, map[string]any{
		"outcome":      string(res.Outcome),
		"steps":        res.Steps,
		"answer_runes": utf8.RuneCountInString(res.Answer),
	})
	return res
}

// executeRound runs one tool-result turn per call, in call order.
func (r *Runner) executeRound(ctx context.Context, reg *tools.Registry, calls []memory.ToolCall) []memory.Turn {
	results := make([]memory.Turn, len(calls))
	if !r.opts.Parallel || len(calls) == 1 {
		for i, c := range calls {
			results[i] = execTool(ctx, reg, c)
		}
		return results
	}

	var g errgroup.Group
	for i, c := range calls {
		g.Go(func() error {
			results[i] = execTool(ctx, reg, c)
			return nil
		})
	}
	_ = g.Wait() // execTool never fails the group
	return results
}

func execTool(ctx context.Context, reg *tools.Registry, call memory.ToolCall) memory.Turn {
	start := time.Now()
	out, err := reg.Execute(call.Name, call.Input)
	elapsed := time.Since(start)

	fields := map[string]any{
		"tool_name":   call.Name,
		"duration_ms": elapsed.Milliseconds(),
		"input_size":  len(call.Input),
		"output_size": len(out),
		"error":       nil,
	}
	log := logger.FromContext(ctx)

	if err != nil {
		var te tools.ToolError
		if !errors.As(err, &te) {
			te = tools.ToolError{Code: tools.CodeComputation, Message: err.Error()}
		}
		// Only the code reaches telemetry; the message may echo arguments.
		fields["error"] = te.Code
		telemetry.Emit(ctx, telemetry.EventToolExec, fields)
		log.Info().Str("tool", call.Name).Dur("duration", elapsed).Str("code", te.Code).Msg("tool failed")
		return memory.ToolResultTurn(call.ID, te.Error(), true)
	}

	telemetry.Emit(ctx, telemetry.EventToolExec, fields)
	log.Info().Str("tool", call.Name).Dur("duration", elapsed).Int("bytes", len(out)).Msg("tool executed")
	return memory.ToolResultTurn(call.ID, out, false)
}

func (r *Runner) emitModelCall(ctx context.Context, step, turns int, elapsed time.Duration, resp Response, err error) {
	fields := map[string]any{
		"step":          step,
		"turns":         turns,
		"duration_ms":   elapsed.Milliseconds(),
		"tool_calls":    len(resp.Calls),
		"stop_reason":   resp.StopReason,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"error":         nil,
	}
	if err != nil {
		fields["error"] = "model error"
	}
	telemetry.Emit(ctx, telemetry.EventModelCall, fields)
	log := logger.FromContext(ctx)
	log.Debug().
		Int("step", step).
		Int("turns", turns).
		Int("calls", len(resp.Calls)).
		Dur("duration", elapsed).
		Msg("model call")
}

// normalizeCalls gives every call an id and a compact JSON object input.
// Inputs that are not valid JSON are kept verbatim so validation can report them.
func normalizeCalls(in []memory.ToolCall) []memory.ToolCall {
	out := make([]memory.ToolCall, len(in))
	for i, c := range in {
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()
		}
		switch {
		case len(strings.TrimSpace(string(c.Input))) == 0:
			c.Input = json.RawMessage(`{}`)
		case gjson.ValidBytes(c.Input):
			c.Input = json.RawMessage(pretty.Ugly(c.Input))
		}
		out[i] = c
	}
	return out
}
