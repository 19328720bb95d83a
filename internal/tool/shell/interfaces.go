package shell

import (
	"context"
	"os"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/tool/service/executor"
)

// pathResolver defines sandbox path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Rel(abs string) string
}

// fileSystem defines the filesystem operations needed by the shell tool.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// commandGate decides whether a command string may run.
type commandGate interface {
	Check(command string) error
}

// commandExecutor runs a shell command string.
type commandExecutor interface {
	RunShell(ctx context.Context, command, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}
