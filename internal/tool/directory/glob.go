package directory

import (
	"context"
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

// GlobFilesTool matches files against a doublestar glob pattern.
type GlobFilesTool struct {
	fs            dirFileSystem
	pathResolver  pathResolver
	ignoreMatcher ignoreMatcher
	config        *config.Config
}

// NewGlobFilesTool creates a new GlobFilesTool with injected dependencies.
// ignoreMatcher may be nil when gitignore filtering is disabled.
func NewGlobFilesTool(fs dirFileSystem, pathResolver pathResolver, ignoreMatcher ignoreMatcher, cfg *config.Config) *GlobFilesTool {
	if fs == nil {
		panic("fs is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &GlobFilesTool{
		fs:            fs,
		pathResolver:  pathResolver,
		ignoreMatcher: ignoreMatcher,
		config:        cfg,
	}
}

func (t *GlobFilesTool) Name() tool.Name {
	return tool.NameGlobFiles
}

func (t *GlobFilesTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.NameGlobFiles),
		Description: "Find files whose path matches a glob pattern. ** matches any number of directories.",
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Glob pattern relative to path, e.g. **/*.py"},
				"path":    {Type: tool.TypeString, Description: "Directory to search from (default: working directory)"},
			},
			Required: []string{"pattern"},
		}).Raw(),
	}
}

func (t *GlobFilesTool) Input() any {
	return &GlobFilesRequest{}
}

func (t *GlobFilesTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*GlobFilesRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run walks the tree under path and returns every regular file whose path relative to path
// matches the pattern, in lexical order. When more than the configured maximum match, the
// result is the lexically first ones. No match is an empty result, not an error.
func (t *GlobFilesTool) Run(ctx context.Context, req *GlobFilesRequest) (*GlobFilesResponse, error) {
	if req.Pattern == "" || !doublestar.ValidatePattern(req.Pattern) {
		return nil, &InvalidPatternError{Pattern: req.Pattern}
	}

	searchPath := req.Path
	if searchPath == "" {
		searchPath = "."
	}
	abs, err := resolveDir(t.fs, t.pathResolver, searchPath)
	if err != nil {
		return nil, err
	}

	maxResults := t.config.Tools.MaxGlobResults
	resp := &GlobFilesResponse{Pattern: req.Pattern, Limit: maxResults}

	err = fs.Walk(ctx, t.fs, abs, func(entryAbs string, entry os.DirEntry, _ int) error {
		isDir := entry.IsDir()
		if t.ignoreMatcher != nil && t.ignoreMatcher.ShouldIgnore(entryAbs, isDir) {
			if isDir {
				return iofs.SkipDir
			}
			return nil
		}
		if isDir || !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(abs, entryAbs)
		if err != nil {
			return err
		}
		if ok, _ := doublestar.Match(req.Pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		resp.Matches = append(resp.Matches, t.pathResolver.Rel(entryAbs))
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ReadDirError{Path: searchPath, Cause: err}
	}

	sort.Strings(resp.Matches)
	if len(resp.Matches) > maxResults {
		resp.Matches = resp.Matches[:maxResults]
		resp.Truncated = true
	}
	return resp, nil
}
