package shell

import (
	"fmt"
	"strings"
	"time"
)

type RunCommandRequest struct {
	Command          string `json:"command"`
	WorkingDirectory string `json:"working_directory"`
	Timeout          int    `json:"timeout"` // seconds; 0 means the configured default
}

func (r *RunCommandRequest) String() string {
	return fmt.Sprintf("Running %q", r.Command)
}

type RunCommandResponse struct {
	Command    string
	WorkingDir string
	ExitCode   int
	Output     string
	Truncated  bool
	MaxOutput  int64
	Duration   time.Duration
}

func (r *RunCommandResponse) LLMContent() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Exit code: %d\n", r.ExitCode)

	out := strings.TrimRight(r.Output, "\n")
	if out == "" {
		sb.WriteString("(no output)")
	} else {
		sb.WriteString(out)
	}
	if r.Truncated {
		fmt.Fprintf(&sb, "\n\n[Output truncated at %d bytes]", r.MaxOutput)
	}
	return sb.String()
}
