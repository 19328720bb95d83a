package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesWithParents(t *testing.T) {
	env := newTestEnv(t)
	tool := NewWriteFileTool(env.fs, env.resolver, env.cfg)

	resp, err := tool.Run(context.Background(), &WriteFileRequest{FilePath: "a/b/c.txt", Content: "hello"})

	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.Equal(t, 5, resp.BytesWritten)
	assert.Equal(t, "Successfully wrote 5 bytes to a/b/c.txt (new file)", resp.LLMContent())

	data, err := os.ReadFile(filepath.Join(env.root, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteFile_OverwritePreservesMode(t *testing.T) {
	env := newTestEnv(t)
	p := env.write(t, "run.sh", "old")
	require.NoError(t, os.Chmod(p, 0o755))
	tool := NewWriteFileTool(env.fs, env.resolver, env.cfg)

	resp, err := tool.Run(context.Background(), &WriteFileRequest{FilePath: "run.sh", Content: "#!/bin/sh\n"})

	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Equal(t, "Successfully wrote 10 bytes to run.sh", resp.LLMContent())

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	data, _ := os.ReadFile(p)
	assert.Equal(t, "#!/bin/sh\n", string(data))
}

func TestWriteFile_EmptyContent(t *testing.T) {
	env := newTestEnv(t)
	tool := NewWriteFileTool(env.fs, env.resolver, env.cfg)

	resp, err := tool.Run(context.Background(), &WriteFileRequest{FilePath: "empty", Content: ""})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.BytesWritten)
	info, err := os.Stat(filepath.Join(env.root, "empty"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteFile_Errors(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Mkdir(filepath.Join(env.root, "dir"), 0o755))

	t.Run("outside sandbox", func(t *testing.T) {
		tool := NewWriteFileTool(env.fs, env.resolver, env.cfg)
		_, err := tool.Run(context.Background(), &WriteFileRequest{FilePath: "../escape.txt", Content: "x"})
		require.Error(t, err)
		assert.Equal(t, errutil.KindPathDenied, errutil.KindOf(err))
		_, statErr := os.Stat(filepath.Join(filepath.Dir(env.root), "escape.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("directory target", func(t *testing.T) {
		tool := NewWriteFileTool(env.fs, env.resolver, env.cfg)
		_, err := tool.Run(context.Background(), &WriteFileRequest{FilePath: "dir", Content: "x"})
		var dirErr *IsDirectoryError
		assert.True(t, errors.As(err, &dirErr))
	})

	t.Run("too large", func(t *testing.T) {
		cfg := *env.cfg
		cfg.Tools.MaxFileSize = 3
		tool := NewWriteFileTool(env.fs, env.resolver, &cfg)
		_, err := tool.Run(context.Background(), &WriteFileRequest{FilePath: "big", Content: "abcd"})
		var tooLarge *TooLargeError
		require.True(t, errors.As(err, &tooLarge))
		assert.Equal(t, int64(4), tooLarge.Size)
	})
}
