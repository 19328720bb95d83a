package shell

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/executor"
)

// RunCommandTool executes shell command strings inside the sandbox.
type RunCommandTool struct {
	fs              fileSystem
	gate            commandGate
	commandExecutor commandExecutor
	pathResolver    pathResolver
	config          *config.Config
}

// NewRunCommandTool creates a new RunCommandTool with injected dependencies.
func NewRunCommandTool(
	fs fileSystem,
	gate commandGate,
	commandExecutor commandExecutor,
	pathResolver pathResolver,
	cfg *config.Config,
) *RunCommandTool {
	if fs == nil {
		panic("fs is required")
	}
	if gate == nil {
		panic("gate is required")
	}
	if commandExecutor == nil {
		panic("commandExecutor is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &RunCommandTool{
		fs:              fs,
		gate:            gate,
		commandExecutor: commandExecutor,
		pathResolver:    pathResolver,
		config:          cfg,
	}
}

func (t *RunCommandTool) Name() tool.Name {
	return tool.NameRunCommand
}

func (t *RunCommandTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: string(tool.NameRunCommand),
		Description: fmt.Sprintf(
			"Run a shell command and return its exit code and combined stdout/stderr. Default timeout %ds, maximum %ds.",
			t.config.Tools.DefaultCommandTimeout, t.config.Tools.MaxCommandTimeout),
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command":           {Type: tool.TypeString, Description: "Shell command line to execute"},
				"working_directory": {Type: tool.TypeString, Description: "Directory to run in (default: working directory)"},
				"timeout":           {Type: tool.TypeInteger, Description: "Timeout in seconds"},
			},
			Required: []string{"command"},
		}).Raw(),
	}
}

func (t *RunCommandTool) Input() any {
	return &RunCommandRequest{}
}

func (t *RunCommandTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*RunCommandRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run checks the command against the gate, then executes it in the resolved working directory.
//
// A non-zero exit status is a successful result carrying the exit code. A timeout kills the
// process tree and returns TimeoutError with the partial output. Cancelling ctx kills the
// process tree and returns ctx.Err().
func (t *RunCommandTool) Run(ctx context.Context, req *RunCommandRequest) (*RunCommandResponse, error) {
	if err := t.gate.Check(req.Command); err != nil {
		return nil, err
	}

	workingDir := req.WorkingDirectory
	if workingDir == "" {
		workingDir = "."
	}
	wdAbs, err := t.pathResolver.Abs(workingDir)
	if err != nil {
		return nil, err
	}
	info, err := t.fs.Stat(wdAbs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, &WorkingDirError{Path: workingDir}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, &WorkingDirError{Path: workingDir}
	}

	env, err := t.environment()
	if err != nil {
		return nil, err
	}

	timeout := t.timeout(req.Timeout)
	result, err := t.commandExecutor.RunShell(ctx, req.Command, wdAbs, env, timeout)
	if err != nil {
		if errors.Is(err, executor.ErrTimeout) {
			te := &TimeoutError{Command: req.Command, Timeout: timeout}
			if result != nil {
				te.Output = result.Output
			}
			return nil, te
		}
		return nil, err
	}

	return &RunCommandResponse{
		Command:    req.Command,
		WorkingDir: t.pathResolver.Rel(wdAbs),
		ExitCode:   result.ExitCode,
		Output:     result.Output,
		Truncated:  result.Truncated,
		MaxOutput:  t.config.Tools.MaxCommandOutput,
		Duration:   result.Duration,
	}, nil
}

// timeout clamps the requested seconds to the configured maximum; zero or negative selects the default.
func (t *RunCommandTool) timeout(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = t.config.Tools.DefaultCommandTimeout
	}
	seconds = min(seconds, t.config.Tools.MaxCommandTimeout)
	return time.Duration(seconds) * time.Second
}

// environment is the proxy's own environment plus the configured env file, which wins on conflicts.
func (t *RunCommandTool) environment() ([]string, error) {
	env := os.Environ()
	envFile := t.config.Sandbox.CommandEnvFile
	if envFile == "" {
		return env, nil
	}
	abs, err := t.pathResolver.Abs(envFile)
	if err != nil {
		return nil, err
	}
	vars, err := ParseEnvFile(t.fs, abs)
	if err != nil {
		return nil, err
	}
	return append(env, vars...), nil
}
