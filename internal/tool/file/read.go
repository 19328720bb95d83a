package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/tool/helper/content"
)

// ReadFileTool handles file reading operations.
type ReadFileTool struct {
	fileOps      fileReader
	pathResolver pathResolver
	config       *config.Config
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(fileOps fileReader, pathResolver pathResolver, cfg *config.Config) *ReadFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ReadFileTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
		config:       cfg,
	}
}

func (t *ReadFileTool) Name() tool.Name {
	return tool.NameReadFile
}

func (t *ReadFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.NameReadFile),
		Description: "Read a text file. Returns numbered lines. Use offset and limit to page through large files.",
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"file_path": {Type: tool.TypeString, Description: "Path to the file, absolute or relative to the working directory"},
				"offset":    {Type: tool.TypeInteger, Description: "1-indexed line number to start reading from"},
				"limit":     {Type: tool.TypeInteger, Description: fmt.Sprintf("Maximum number of lines to return (default %d)", t.config.Tools.DefaultReadLimit)},
			},
			Required: []string{"file_path"},
		}).Raw(),
	}
}

func (t *ReadFileTool) Input() any {
	return &ReadFileRequest{}
}

func (t *ReadFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ReadFileRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run reads a file inside the sandbox and renders the requested line window with line numbers.
// An offset past the end of the file yields an empty result rather than an error.
// Binary files are reported without their content.
func (t *ReadFileTool) Run(ctx context.Context, req *ReadFileRequest) (*ReadFileResponse, error) {
	offset := 1
	if req.Offset != nil && *req.Offset > 1 {
		offset = *req.Offset
	}
	limit := t.config.Tools.DefaultReadLimit
	if req.Limit != nil {
		if *req.Limit < 0 {
			return nil, &InvalidArgumentError{Field: "limit", Reason: "must be >= 0"}
		}
		if *req.Limit > 0 {
			limit = *req.Limit
		}
	}

	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return nil, err
	}
	rel := t.pathResolver.Rel(abs)

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: req.FilePath}
		}
		return nil, &IOError{Op: "stat", Path: rel, Cause: err}
	}
	if info.IsDir() {
		return nil, &IsDirectoryError{Path: rel}
	}
	if info.Size() > t.config.Tools.MaxFileSize {
		return nil, &TooLargeError{Path: rel, Size: info.Size(), Limit: t.config.Tools.MaxFileSize}
	}

	data, err := t.fileOps.ReadFile(abs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &IOError{Op: "read", Path: rel, Cause: err}
	}

	resp := &ReadFileResponse{Path: rel, Size: info.Size()}
	if content.IsBinaryContent(data) {
		resp.Binary = true
		return resp, nil
	}

	lines := content.SplitLines(string(data))
	resp.TotalLines = len(lines)
	if offset > len(lines) {
		return resp, nil
	}

	end := min(offset-1+limit, len(lines))
	var sb strings.Builder
	for i := offset - 1; i < end; i++ {
		if i > offset-1 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%6d\t%s", i+1, content.TruncateLine(lines[i], t.config.Tools.MaxLineLength))
	}

	resp.Content = sb.String()
	resp.StartLine = offset
	resp.EndLine = end
	return resp, nil
}
