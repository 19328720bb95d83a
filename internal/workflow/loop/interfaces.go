package loop

import (
	"context"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/workflow"
)

// backend performs one chat-completion round trip.
type backend interface {
	Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Completion, error)
}

// toolManager manages tool storage and execution.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Has reports whether the proxy implements the named tool.
	Has(name string) bool

	// Execute runs a tool call. Tool failures come back as error-flagged results;
	// only cancellation is returned as an error.
	Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) (provider.ToolResult, error)
}
