package directory

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/fs"
	"github.com/bmatcuk/doublestar/v4"
)

// ListDirectoryTool handles directory listing operations.
type ListDirectoryTool struct {
	fs            dirFileSystem
	pathResolver  pathResolver
	ignoreMatcher ignoreMatcher
	config        *config.Config
}

// NewListDirectoryTool creates a new ListDirectoryTool with injected dependencies.
// ignoreMatcher may be nil when gitignore filtering is disabled.
func NewListDirectoryTool(fs dirFileSystem, pathResolver pathResolver, ignoreMatcher ignoreMatcher, cfg *config.Config) *ListDirectoryTool {
	if fs == nil {
		panic("fs is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ListDirectoryTool{
		fs:            fs,
		pathResolver:  pathResolver,
		ignoreMatcher: ignoreMatcher,
		config:        cfg,
	}
}

func (t *ListDirectoryTool) Name() tool.Name {
	return tool.NameListDirectory
}

func (t *ListDirectoryTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.NameListDirectory),
		Description: "List the entries of a directory. Set recursive to walk the subtree; pattern filters entries by glob.",
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":      {Type: tool.TypeString, Description: "Directory to list, absolute or relative to the working directory"},
				"recursive": {Type: tool.TypeBoolean, Description: "Walk subdirectories as well"},
				"pattern":   {Type: tool.TypeString, Description: "Glob matched against entry names or relative paths, e.g. *.go"},
			},
			Required: []string{"path"},
		}).Raw(),
	}
}

func (t *ListDirectoryTool) Input() any {
	return &ListDirectoryRequest{}
}

func (t *ListDirectoryTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ListDirectoryRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run lists a directory inside the sandbox, directories first and then by name.
// Recursive listings stop at the configured depth and entry caps and skip gitignored paths.
// Symlinked directories are listed but not descended into.
func (t *ListDirectoryTool) Run(ctx context.Context, req *ListDirectoryRequest) (*ListDirectoryResponse, error) {
	if req.Pattern != "" && !doublestar.ValidatePattern(req.Pattern) {
		return nil, &InvalidPatternError{Pattern: req.Pattern}
	}

	dirPath := req.Path
	if dirPath == "" {
		dirPath = "."
	}
	abs, err := resolveDir(t.fs, t.pathResolver, dirPath)
	if err != nil {
		return nil, err
	}

	maxDepth := 1
	if req.Recursive {
		maxDepth = t.config.Tools.MaxListDepth
	}
	maxEntries := t.config.Tools.MaxListEntries

	resp := &ListDirectoryResponse{
		DirectoryPath: t.pathResolver.Rel(abs),
		Pattern:       req.Pattern,
		Limit:         maxEntries,
	}

	err = fs.Walk(ctx, t.fs, abs, func(entryAbs string, entry os.DirEntry, depth int) error {
		isDir := entry.IsDir()
		if t.ignoreMatcher != nil && t.ignoreMatcher.ShouldIgnore(entryAbs, isDir) {
			if isDir {
				return iofs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(abs, entryAbs)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matchesEntry(req.Pattern, entry.Name(), rel) {
			if len(resp.Entries) >= maxEntries {
				resp.Truncated = true
				return iofs.SkipAll
			}
			resp.Entries = append(resp.Entries, newEntry(rel, entry))
		}

		if isDir && depth >= maxDepth {
			return iofs.SkipDir
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ReadDirError{Path: resp.DirectoryPath, Cause: err}
	}

	sort.SliceStable(resp.Entries, func(i, j int) bool {
		a, b := resp.Entries[i], resp.Entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.RelativePath < b.RelativePath
	})

	return resp, nil
}

func matchesEntry(pattern, name, rel string) bool {
	if pattern == "" {
		return true
	}
	if ok, _ := doublestar.Match(pattern, name); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, rel)
	return ok
}

func newEntry(rel string, entry os.DirEntry) DirectoryEntry {
	e := DirectoryEntry{RelativePath: rel, IsDir: entry.IsDir()}
	if !e.IsDir {
		if info, err := entry.Info(); err == nil {
			e.Size = info.Size()
		}
	}
	return e
}

// resolveDir resolves p through the sandbox and checks that it names an existing directory.
func resolveDir(fsys dirFileSystem, resolver pathResolver, p string) (string, error) {
	abs, err := resolver.Abs(p)
	if err != nil {
		return "", err
	}
	info, err := fsys.Stat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", &NotFoundError{Path: p}
		}
		return "", &ReadDirError{Path: p, Cause: err}
	}
	if !info.IsDir() {
		return "", &NotADirectoryError{Path: p}
	}
	return abs, nil
}
