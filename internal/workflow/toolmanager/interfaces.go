package toolmanager

import (
	"context"

	"github.com/Cyclone1070/toolproxy/internal/tool"
)

// toolImpl defines the interface for individual tools.
// Request structs should implement fmt.Stringer for display.
type toolImpl interface {
	// Name returns the tool's identifier.
	Name() tool.Name

	// Declaration returns the tool's schema for the LLM.
	Declaration() tool.Declaration

	// Input returns a pointer to the input struct (e.g., &ReadFileRequest{}).
	Input() any

	// Execute runs the tool with typed input.
	// Domain failures are returned as typed errors carrying an errutil.Kind.
	Execute(ctx context.Context, input any) (tool.Result, error)
}
