// Package conversation drives one user message through the hosted model,
// with at most one search tool round-trip.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pkdindustries/codi/internal/core"
	"pkdindustries/codi/internal/session"
	"pkdindustries/codi/internal/tools"
)

// Hooks let a presentation surface follow a message as it is processed.
// Every field is optional.
type Hooks struct {
	// Transition is called on every state change.
	Transition func(from, to State)
	// Delta receives streamed reply content.
	Delta func(string)
	// ToolStart and ToolDone bracket each tool invocation.
	ToolStart func(call core.ToolCallRequest)
	ToolDone  func(call core.ToolCallRequest, err error)
}

// ReplySeparator is streamed between text the model sent alongside its
// tool calls and the reply written after the tool results.
const ReplySeparator = "\n\n"

// Driver processes user messages against a caller-owned session
type Driver struct {
	llm    core.Completer
	tools  *tools.Registry
	stream bool
	logger *zap.SugaredLogger
}

type Option func(*Driver)

// WithStream selects the streamed response mode for completion calls.
func WithStream(stream bool) Option {
	return func(d *Driver) {
		d.stream = stream
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

func NewDriver(llm core.Completer, registry *tools.Registry, opts ...Option) *Driver {
	if registry == nil {
		registry = tools.NewRegistry()
	}
	d := &Driver{
		llm:    llm,
		tools:  registry,
		logger: core.GetLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// run tracks the state of a single message
type run struct {
	state State
	hooks Hooks
	log   *zap.SugaredLogger
}

func (r *run) to(next State) {
	if !validTransition(r.state, next) {
		panic(fmt.Sprintf("conversation: invalid transition %s -> %s", r.state, next))
	}
	r.log.Debugw("state", "from", r.state.String(), "to", next.String())
	if r.hooks.Transition != nil {
		r.hooks.Transition(r.state, next)
	}
	r.state = next
}

// HandleUserMessage appends the user turn, asks the model for a reply and,
// if the model requests tools, answers every request before asking again.
// The reply is appended to the session and returned. On error the session
// holds no tool request without its result.
func (d *Driver) HandleUserMessage(ctx context.Context, sess *session.Session, text string, hooks Hooks) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", core.ErrInvalidInput
	}

	log := core.WithSession(d.logger, sess.ID)
	defer core.LogDuration(log, "handle_user_message", time.Now())
	r := &run{state: AwaitingUser, hooks: hooks, log: log}

	truncated := text
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	log.Infof("Processing user message: %q", truncated)

	sess.Append(core.Turn{Role: core.RoleUser, Content: text})

	// text the model streams before asking for a tool is kept apart from
	// the reply that follows the tool results
	var preamble bool
	firstDelta := hooks.Delta
	if firstDelta != nil {
		firstDelta = func(s string) {
			preamble = true
			hooks.Delta(s)
		}
	}

	r.to(ModelRequested)
	first, err := d.llm.Complete(ctx, &core.CompletionRequest{
		Turns:      sess.Turns(),
		Tools:      d.tools.Definitions(),
		ToolChoice: core.ToolChoiceAuto,
		Stream:     d.stream,
		OnDelta:    firstDelta,
	})
	if err != nil {
		return "", fmt.Errorf("first completion: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		sess.Append(core.Turn{Role: core.RoleAssistant, Content: first.Content})
		r.to(Done)
		return first.Content, nil
	}

	r.to(ToolPending)
	results, err := d.runTools(ctx, first.ToolCalls, hooks, log)
	if err != nil {
		return "", err
	}

	// the request-carrying turn and its answers are committed together
	pending := make([]core.Turn, 0, len(results)+1)
	pending = append(pending, core.Turn{
		Role:      core.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, res := range results {
		pending = append(pending, res.Turn())
	}
	sess.Append(pending...)

	if preamble {
		hooks.Delta(ReplySeparator)
	}

	r.to(ModelRequested2)
	second, err := d.llm.Complete(ctx, &core.CompletionRequest{
		Turns:   sess.Turns(),
		Stream:  d.stream,
		OnDelta: hooks.Delta,
	})
	if err != nil {
		return "", fmt.Errorf("follow-up completion: %w", err)
	}
	if len(second.ToolCalls) > 0 {
		log.Warnw("Ignoring tool calls in follow-up response", "count", len(second.ToolCalls))
	}

	sess.Append(core.Turn{Role: core.RoleAssistant, Content: second.Content})
	r.to(Done)
	return second.Content, nil
}

// runTools answers every tool call, in request order, with one result
// carrying the same id. Any failure aborts the whole round-trip.
func (d *Driver) runTools(ctx context.Context, calls []core.ToolCallRequest, hooks Hooks, log *zap.SugaredLogger) ([]core.ToolResult, error) {
	results := make([]core.ToolResult, 0, len(calls))
	for _, call := range calls {
		tlog := core.WithTool(log, call.Name, call.ID)

		tool, err := d.tools.Resolve(call.Name)
		if err != nil {
			tlog.Warnw("Tool resolution failed", "error", err)
			return nil, err
		}

		if hooks.ToolStart != nil {
			hooks.ToolStart(call)
		}
		start := time.Now()
		content, err := tool.Execute(ctx, call.Arguments)
		if hooks.ToolDone != nil {
			hooks.ToolDone(call, err)
		}
		if err != nil {
			tlog.Warnw("Tool execution failed", "error", err)
			return nil, fmt.Errorf("tool %s (%s): %w", call.Name, call.ID, err)
		}
		tlog.Infow("Tool executed", "duration_ms", time.Since(start).Milliseconds(), "bytes", len(content))

		results = append(results, core.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    content,
		})
	}
	return results, nil
}
