//go:build unix

package executor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(maxOutput int64) *OSCommandExecutor {
	cfg := config.DefaultConfig()
	cfg.Tools.MaxCommandOutput = maxOutput
	cfg.Tools.KillGraceMs = 200
	return NewOSCommandExecutor(cfg)
}

func TestRunShell(t *testing.T) {
	exec := newTestExecutor(30000)
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("combined output and zero exit", func(t *testing.T) {
		res, err := exec.RunShell(ctx, "echo out; echo err 1>&2", dir, os.Environ(), 5*time.Second)

		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Output, "out")
		assert.Contains(t, res.Output, "err")
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		res, err := exec.RunShell(ctx, "echo failing; exit 3", dir, os.Environ(), 5*time.Second)

		require.NoError(t, err)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "failing\n", res.Output)
	})

	t.Run("runs in directory", func(t *testing.T) {
		res, err := exec.RunShell(ctx, "pwd", dir, os.Environ(), 5*time.Second)

		require.NoError(t, err)
		assert.Contains(t, res.Output, dir)
	})

	t.Run("missing directory fails to start", func(t *testing.T) {
		_, err := exec.RunShell(ctx, "true", dir+"/nope", os.Environ(), 5*time.Second)

		var startErr *StartError
		assert.True(t, errors.As(err, &startErr))
	})
}

func TestRunShell_Timeout(t *testing.T) {
	exec := newTestExecutor(30000)

	start := time.Now()
	res, err := exec.RunShell(context.Background(), "echo started; sleep 5", t.TempDir(), os.Environ(), time.Second)
	elapsed := time.Since(start)

	assert.True(t, errors.Is(err, ErrTimeout))
	require.NotNil(t, res)
	assert.Contains(t, res.Output, "started")
	assert.Less(t, elapsed, 3*time.Second)
}

func TestRunShell_TimeoutKillsProcessTree(t *testing.T) {
	exec := newTestExecutor(30000)
	dir := t.TempDir()

	// The backgrounded child would touch the marker after the timeout if it survived.
	_, err := exec.RunShell(context.Background(), "(sleep 2; touch marker) & sleep 5", dir, os.Environ(), 500*time.Millisecond)
	require.True(t, errors.Is(err, ErrTimeout))

	time.Sleep(2500 * time.Millisecond)
	_, statErr := os.Stat(dir + "/marker")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunShell_TimeoutKillsChildIgnoringTerm(t *testing.T) {
	exec := newTestExecutor(30000)
	dir := t.TempDir()

	// The shell exits on SIGTERM; the detached child ignores it and holds no output pipe.
	_, err := exec.RunShell(context.Background(), "(trap '' TERM; sleep 2; touch marker) >/dev/null 2>&1 & sleep 5", dir, os.Environ(), 500*time.Millisecond)
	require.True(t, errors.Is(err, ErrTimeout))

	time.Sleep(2500 * time.Millisecond)
	_, statErr := os.Stat(dir + "/marker")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunShell_ContextCancel(t *testing.T) {
	exec := newTestExecutor(30000)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := exec.RunShell(ctx, "sleep 5", t.TempDir(), os.Environ(), 10*time.Second)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunShell_OutputCap(t *testing.T) {
	exec := newTestExecutor(10)

	res, err := exec.RunShell(context.Background(), "printf '%s' 0123456789abcdef", t.TempDir(), os.Environ(), 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "0123456789", res.Output)
	assert.True(t, res.Truncated)
}

func TestCollector_Binary(t *testing.T) {
	c := newCollector(100, 10)
	_, _ = c.Write([]byte("ab\x00cd"))
	_, _ = c.Write([]byte("more"))

	assert.Equal(t, "[Binary Content]", c.String())
	assert.True(t, c.Truncated())
	assert.False(t, strings.Contains(c.String(), "more"))
}
