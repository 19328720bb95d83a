package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/pmezard/go-difflib/difflib"
)

// EditFileTool handles exact-substring replacement edits.
type EditFileTool struct {
	fileOps      fileEditor
	pathResolver pathResolver
	config       *config.Config
}

// NewEditFileTool creates a new EditFileTool with injected dependencies.
func NewEditFileTool(fileOps fileEditor, pathResolver pathResolver, cfg *config.Config) *EditFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &EditFileTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
		config:       cfg,
	}
}

func (t *EditFileTool) Name() tool.Name {
	return tool.NameEditFile
}

func (t *EditFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.NameEditFile),
		Description: "Replace an exact substring in a file. old_string must occur exactly once unless replace_all is true.",
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"file_path":   {Type: tool.TypeString, Description: "Path to the file, absolute or relative to the working directory"},
				"old_string":  {Type: tool.TypeString, Description: "Exact text to replace, including whitespace and indentation"},
				"new_string":  {Type: tool.TypeString, Description: "Replacement text (may be empty to delete)"},
				"replace_all": {Type: tool.TypeBoolean, Description: "Replace every occurrence instead of requiring a unique match"},
			},
			Required: []string{"file_path", "old_string", "new_string"},
		}).Raw(),
	}
}

func (t *EditFileTool) Input() any {
	return &EditFileRequest{}
}

func (t *EditFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*EditFileRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run replaces old_string with new_string and writes the file back atomically.
//
// With replace_all off the snippet must occur exactly once; zero or several occurrences fail with
// distinct errors. With replace_all on, zero occurrences is a no-op success.
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *EditFileTool) Run(ctx context.Context, req *EditFileRequest) (*EditFileResponse, error) {
	if req.OldString == "" {
		return nil, &InvalidArgumentError{Field: "old_string", Reason: "must not be empty"}
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

	data, err := t.fileOps.ReadFile(abs)
	if err != nil {
		return nil, &IOError{Op: "read", Path: rel, Cause: err}
	}
	oldContent := string(data)

	count := strings.Count(oldContent, req.OldString)
	switch {
	case count == 0 && req.ReplaceAll:
		return &EditFileResponse{Path: rel}, nil
	case count == 0:
		return nil, &SnippetNotFoundError{Path: rel}
	case count > 1 && !req.ReplaceAll:
		return nil, &SnippetNotUniqueError{Path: rel, Count: count}
	}

	newContent := strings.ReplaceAll(oldContent, req.OldString, req.NewString)
	if int64(len(newContent)) > t.config.Tools.MaxFileSize {
		return nil, &TooLargeError{Path: rel, Size: int64(len(newContent)), Limit: t.config.Tools.MaxFileSize}
	}

	if err := t.fileOps.WriteFileAtomic(abs, []byte(newContent), info.Mode().Perm()); err != nil {
		return nil, err
	}

	diff, added, removed := computeUnifiedDiff(filepath.Base(abs), oldContent, newContent)

	return &EditFileResponse{
		Path:         rel,
		Replacements: count,
		Diff:         diff,
		AddedLines:   added,
		RemovedLines: removed,
	}, nil
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
