package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool"
)

// WriteFileTool handles file writing operations.
type WriteFileTool struct {
	fileOps      fileWriter
	pathResolver pathResolver
	config       *config.Config
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(fileOps fileWriter, pathResolver pathResolver, cfg *config.Config) *WriteFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &WriteFileTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
		config:       cfg,
	}
}

func (t *WriteFileTool) Name() tool.Name {
	return tool.NameWriteFile
}

func (t *WriteFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.NameWriteFile),
		Description: "Create or overwrite a file with the given content. Parent directories are created as needed.",
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"file_path": {Type: tool.TypeString, Description: "Path to the file, absolute or relative to the working directory"},
				"content":   {Type: tool.TypeString, Description: "Full content to write"},
			},
			Required: []string{"file_path", "content"},
		}).Raw(),
	}
}

func (t *WriteFileTool) Input() any {
	return &WriteFileRequest{}
}

func (t *WriteFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*WriteFileRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run replaces the file content atomically (temp file + rename), creating parent directories.
// The mode of an existing file is preserved; new files get 0644.
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *WriteFileTool) Run(ctx context.Context, req *WriteFileRequest) (*WriteFileResponse, error) {
	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return nil, err
	}
	rel := t.pathResolver.Rel(abs)

	data := []byte(req.Content)
	if int64(len(data)) > t.config.Tools.MaxFileSize {
		return nil, &TooLargeError{Path: rel, Size: int64(len(data)), Limit: t.config.Tools.MaxFileSize}
	}

	perm := os.FileMode(0o644)
	created := true
	info, err := t.fileOps.Stat(abs)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, &IsDirectoryError{Path: rel}
		}
		perm = info.Mode().Perm()
		created = false
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &IOError{Op: "stat", Path: rel, Cause: err}
	}

	if created {
		if err := t.fileOps.EnsureDirs(filepath.Dir(abs)); err != nil {
			return nil, &IOError{Op: "create parent directories for", Path: rel, Cause: err}
		}
	}

	if err := t.fileOps.WriteFileAtomic(abs, data, perm); err != nil {
		return nil, err
	}

	return &WriteFileResponse{
		Path:         rel,
		BytesWritten: len(data),
		Created:      created,
	}, nil
}
