package toolmanager

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// -- Error Types --

// UnknownToolError is returned when a call names a tool that is not registered.
type UnknownToolError struct {
	Name      string
	Available []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q does not exist. Available tools: %s", e.Name, strings.Join(e.Available, ", "))
}
func (e *UnknownToolError) Unwrap() error      { return ErrUnknownTool }
func (e *UnknownToolError) Kind() errutil.Kind { return errutil.KindUnknownTool }

// MalformedArgumentsError is returned when a call's arguments are not a JSON object
// or do not satisfy the tool's parameter schema.
type MalformedArgumentsError struct {
	Tool   string
	Reason string
	Schema string
}

func (e *MalformedArgumentsError) Error() string {
	msg := fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Reason)
	if e.Schema != "" {
		msg += "\n\nExpected schema:\n" + e.Schema
	}
	return msg
}
func (e *MalformedArgumentsError) Unwrap() error      { return ErrMalformedArguments }
func (e *MalformedArgumentsError) Kind() errutil.Kind { return errutil.KindMalformedToolArguments }

// DuplicateToolError is returned at construction when two tools share a name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q registered twice", e.Name)
}

// SchemaError is returned at construction when a declaration's parameter schema does not compile.
type SchemaError struct {
	Tool  string
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid parameter schema for tool %q: %v", e.Tool, e.Cause)
}
func (e *SchemaError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrUnknownTool        = errors.New("unknown tool")
	ErrMalformedArguments = errors.New("malformed tool arguments")
)
