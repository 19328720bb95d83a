package loop

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/workflow"
	"github.com/google/uuid"
)

// Request is one client conversation in canonical form.
type Request struct {
	Model    string
	Messages []provider.Message
	// Tools are client-supplied declarations. When present, proxy tools are not injected.
	Tools      []tool.Declaration
	ToolChoice json.RawMessage
	Extra      map[string]json.RawMessage
}

// Result is the outcome of a completed loop.
type Result struct {
	// Message is the final assistant turn. When FinishReason is "tool_calls" it holds
	// client-owned tool calls that were not executed.
	Message      provider.Message
	Conversation []provider.Message
	Model        string
	FinishReason string
	Usage        provider.Usage
	Iterations   int
	State        State
}

// Loop drives conversations between the backend and the tool manager.
// It holds only read-only configuration; every Run owns its own conversation.
type Loop struct {
	backend       backend
	tools         toolManager
	injectTools   bool
	maxIterations int
	defaultModel  string
	forceModel    string
}

// NewLoop creates a loop from the backend, the tool registry and the process configuration.
func NewLoop(backend backend, tools toolManager, cfg *config.Config) *Loop {
	if backend == nil {
		panic("backend is required")
	}
	if tools == nil {
		panic("tools is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Loop{
		backend:       backend,
		tools:         tools,
		injectTools:   cfg.Tools.InjectTools,
		maxIterations: cfg.Tools.MaxIterations,
		defaultModel:  cfg.Backend.DefaultModel,
		forceModel:    cfg.Backend.ForceModel,
	}
}

// Run executes the loop until the backend answers without proxy tool calls, the iteration
// limit is reached, the backend fails, or ctx is cancelled.
//
// Failures return no Result: a *BackendError, an *IterationLimitError, or ctx.Err().
// events may be nil.
func (l *Loop) Run(ctx context.Context, req *Request, events chan<- workflow.Event) (*Result, error) {
	r := &run{loop: l, req: req, events: events, state: StateStarted}
	defer func() {
		workflow.Emit(ctx, events, workflow.DoneEvent{State: r.state.String(), Iterations: r.iterations})
	}()

	for !r.state.Terminal() {
		switch r.state {
		case StateStarted:
			r.state = r.start()
		case StateAwaitingBackend:
			r.state = r.awaitBackend(ctx)
		case StateToolCallsPending:
			r.state = r.toolCallsPending()
		case StateExecutingTools:
			r.state = r.executeTools(ctx)
		}
	}

	if r.state != StateFinished {
		return nil, r.err
	}
	return &Result{
		Message:      r.last.Message,
		Conversation: r.conversation,
		Model:        r.last.Model,
		FinishReason: r.finishReason,
		Usage:        r.usage,
		Iterations:   r.iterations,
		State:        r.state,
	}, nil
}

// run is the state of one Run invocation.
type run struct {
	loop   *Loop
	req    *Request
	events chan<- workflow.Event

	state        State
	model        string
	tools        []tool.Declaration
	clientTools  map[string]bool
	conversation []provider.Message
	iterations   int
	usage        provider.Usage
	last         *provider.Completion
	finishReason string
	err          error
}

func (r *run) start() State {
	if len(r.req.Messages) == 0 {
		r.err = ErrNoMessages
		return StateBackendFailed
	}

	r.model = r.loop.selectModel(r.req.Model)
	r.conversation = append([]provider.Message(nil), r.req.Messages...)

	if len(r.req.Tools) > 0 {
		r.tools = r.req.Tools
		r.clientTools = make(map[string]bool, len(r.req.Tools))
		for _, d := range r.req.Tools {
			r.clientTools[d.Name] = true
		}
	} else if r.loop.injectTools {
		r.tools = r.loop.tools.Declarations()
	}
	return StateAwaitingBackend
}

func (r *run) awaitBackend(ctx context.Context) State {
	if err := ctx.Err(); err != nil {
		r.err = err
		return StateCancelled
	}

	iteration := r.iterations + 1
	workflow.Emit(ctx, r.events, workflow.IterationStartEvent{Iteration: iteration, Model: r.model, Messages: len(r.conversation)})

	start := time.Now()
	resp, err := r.loop.backend.Complete(ctx, &provider.CompletionRequest{
		Model:      r.model,
		Messages:   r.conversation,
		Tools:      r.tools,
		ToolChoice: r.req.ToolChoice,
		Extra:      r.req.Extra,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.err = err
			return StateCancelled
		}
		r.err = &BackendError{Iteration: iteration, Cause: err}
		return StateBackendFailed
	}

	r.last = resp
	r.usage.Add(resp.Usage)
	workflow.Emit(ctx, r.events, workflow.BackendResponseEvent{
		Iteration:    iteration,
		FinishReason: resp.FinishReason,
		ToolCalls:    len(resp.Message.ToolCalls),
		TotalTokens:  resp.Usage.TotalTokens,
		Duration:     time.Since(start),
	})

	if len(resp.Message.ToolCalls) > 0 {
		return StateToolCallsPending
	}
	r.last.Message.Role = provider.RoleAssistant
	r.conversation = append(r.conversation, r.last.Message)
	r.finishReason = normaliseFinishReason(resp.FinishReason)
	return StateFinished
}

func (r *run) toolCallsPending() State {
	msg := &r.last.Message
	msg.Role = provider.RoleAssistant
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
	}

	// A turn that calls a tool only the client implements goes back to the client as is.
	for _, tc := range msg.ToolCalls {
		if r.clientTools[tc.Function.Name] && !r.loop.tools.Has(tc.Function.Name) {
			r.conversation = append(r.conversation, *msg)
			r.finishReason = "tool_calls"
			return StateFinished
		}
	}

	r.conversation = append(r.conversation, *msg)
	return StateExecutingTools
}

func (r *run) executeTools(ctx context.Context) State {
	for _, tc := range r.last.Message.ToolCalls {
		res, err := r.loop.tools.Execute(ctx, tc, r.events)
		if err != nil {
			r.err = err
			return StateCancelled
		}
		r.conversation = append(r.conversation, res.Message())
	}

	r.iterations++
	if r.iterations >= r.loop.maxIterations {
		r.err = &IterationLimitError{
			Limit:                r.loop.maxIterations,
			LastAssistantContent: r.lastAssistantContent(),
			Model:                r.last.Model,
			Usage:                r.usage,
		}
		return StateIterationLimitReached
	}
	return StateAwaitingBackend
}

// lastAssistantContent returns the most recent non-empty assistant text in the conversation.
func (r *run) lastAssistantContent() string {
	for i := len(r.conversation) - 1; i >= 0; i-- {
		m := r.conversation[i]
		if m.Role == provider.RoleAssistant && m.Content != "" {
			return m.Content
		}
	}
	return ""
}

// selectModel applies force_model, then the requested model, then default_model.
func (l *Loop) selectModel(requested string) string {
	switch {
	case l.forceModel != "":
		return l.forceModel
	case requested != "":
		return requested
	default:
		return l.defaultModel
	}
}

func normaliseFinishReason(reason string) string {
	if reason == "" || reason == "tool_calls" {
		return "stop"
	}
	return reason
}
