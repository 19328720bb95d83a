package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// DenyReason explains why a command was refused.
type DenyReason string

const (
	ReasonDisabled     DenyReason = "disabled"
	ReasonNotAllowed   DenyReason = "not_allowlisted"
	ReasonEmptyCommand DenyReason = "empty"
)

// CommandDeniedError is returned when the gate refuses a command.
type CommandDeniedError struct {
	Command   string
	Reason    DenyReason
	Allowlist []string
}

func (e *CommandDeniedError) Error() string {
	switch e.Reason {
	case ReasonDisabled:
		return "command execution is disabled"
	case ReasonEmptyCommand:
		return "command cannot be empty"
	default:
		return fmt.Sprintf("command %q is not allowed; permitted prefixes: %s", e.Command, strings.Join(e.Allowlist, ", "))
	}
}
func (e *CommandDeniedError) Kind() errutil.Kind { return errutil.KindCommandDenied }

// CommandGate validates shell command strings against a global switch and an ordered prefix allowlist.
//
// Matching is purely lexical: the command is not tokenised, so an allowed prefix followed by
// ";", "&&", "|" or a subshell still passes. This is a known limitation.
type CommandGate struct {
	enabled   bool
	allowlist []string
}

// NewCommandGate creates a gate. An empty allowlist permits every command while enabled.
func NewCommandGate(enabled bool, allowlist []string) *CommandGate {
	return &CommandGate{
		enabled:   enabled,
		allowlist: slices.Clone(allowlist),
	}
}

// Enabled reports whether command execution is switched on.
func (g *CommandGate) Enabled() bool {
	return g.enabled
}

// Check returns nil if command may run.
func (g *CommandGate) Check(command string) error {
	if !g.enabled {
		return &CommandDeniedError{Command: command, Reason: ReasonDisabled}
	}

	trimmed := strings.TrimLeft(command, " \t\r\n")
	if trimmed == "" {
		return &CommandDeniedError{Command: command, Reason: ReasonEmptyCommand}
	}

	if len(g.allowlist) == 0 {
		return nil
	}
	for _, prefix := range g.allowlist {
		if strings.HasPrefix(trimmed, prefix) {
			return nil
		}
	}
	return &CommandDeniedError{Command: command, Reason: ReasonNotAllowed, Allowlist: g.allowlist}
}
