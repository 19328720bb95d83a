package search

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/Cyclone1070/toolproxy/internal/tool/helper/content"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/fs"
	"github.com/bmatcuk/doublestar/v4"
)

// maxContextLines bounds context_lines so one match cannot dump a whole file.
const maxContextLines = 20

// GrepSearchTool searches file contents with Go regular expressions.
type GrepSearchTool struct {
	fs            fileSystem
	pathResolver  pathResolver
	ignoreMatcher ignoreMatcher
	config        *config.Config
}

// NewGrepSearchTool creates a new GrepSearchTool with injected dependencies.
// ignoreMatcher may be nil when gitignore filtering is disabled.
func NewGrepSearchTool(fs fileSystem, pathResolver pathResolver, ignoreMatcher ignoreMatcher, cfg *config.Config) *GrepSearchTool {
	if fs == nil {
		panic("fs is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &GrepSearchTool{
		fs:            fs,
		pathResolver:  pathResolver,
		ignoreMatcher: ignoreMatcher,
		config:        cfg,
	}
}

func (t *GrepSearchTool) Name() tool.Name {
	return tool.NameGrepSearch
}

func (t *GrepSearchTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.NameGrepSearch),
		Description: "Search file contents with a regular expression (RE2 syntax). Returns path:line: text for each match.",
		Parameters: (&tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern":          {Type: tool.TypeString, Description: "Regular expression to search for"},
				"path":             {Type: tool.TypeString, Description: "File or directory to search (default: working directory)"},
				"file_pattern":     {Type: tool.TypeString, Description: "Only search files whose name or relative path matches this glob, e.g. *.go"},
				"case_insensitive": {Type: tool.TypeBoolean, Description: "Match case-insensitively"},
				"context_lines":    {Type: tool.TypeInteger, Description: "Lines of context to show before and after each match"},
			},
			Required: []string{"pattern"},
		}).Raw(),
	}
}

func (t *GrepSearchTool) Input() any {
	return &GrepSearchRequest{}
}

func (t *GrepSearchTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*GrepSearchRequest)
	if !ok {
		return nil, fmt.Errorf("invalid input type: %T", input)
	}
	return t.Run(ctx, req)
}

// Run scans the file or directory tree at path and collects matching lines.
// Binary files, files over the size limit and gitignored paths are skipped.
// Zero matches is a normal result.
func (t *GrepSearchTool) Run(ctx context.Context, req *GrepSearchRequest) (*GrepSearchResponse, error) {
	expr := req.Pattern
	if req.CaseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: req.Pattern, Cause: err}
	}
	if req.FilePattern != "" && !doublestar.ValidatePattern(req.FilePattern) {
		return nil, &InvalidPatternError{Pattern: req.FilePattern}
	}
	if req.ContextLines < 0 {
		return nil, &InvalidContextError{Value: req.ContextLines}
	}
	contextLines := min(req.ContextLines, maxContextLines)

	searchPath := req.Path
	if searchPath == "" {
		searchPath = "."
	}
	abs, err := t.pathResolver.Abs(searchPath)
	if err != nil {
		return nil, err
	}
	info, err := t.fs.Stat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, &FileMissingError{Path: searchPath}
		}
		return nil, &StatError{Path: searchPath, Cause: err}
	}

	s := &scan{
		tool:         t,
		re:           re,
		contextLines: contextLines,
		resp: &GrepSearchResponse{
			Pattern:     req.Pattern,
			Limit:       t.config.Tools.MaxGrepMatches,
			WithContext: contextLines > 0,
		},
	}

	if !info.IsDir() {
		s.searchFile(abs)
		return s.resp, nil
	}

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
		if req.FilePattern != "" && !matchesFile(req.FilePattern, abs, entryAbs) {
			return nil
		}
		if s.resp.FilesSearched >= t.config.Tools.MaxGrepFiles {
			s.resp.Truncated = true
			return iofs.SkipAll
		}
		if !s.searchFile(entryAbs) {
			return iofs.SkipAll
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &StatError{Path: searchPath, Cause: err}
	}

	return s.resp, nil
}

func matchesFile(pattern, root, abs string) bool {
	if ok, _ := doublestar.Match(pattern, filepath.Base(abs)); ok {
		return true
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel))
	return ok
}

// scan accumulates matches across files for one request.
type scan struct {
	tool         *GrepSearchTool
	re           *regexp.Regexp
	contextLines int
	resp         *GrepSearchResponse
}

// searchFile appends the matches in one file. It returns false once the match cap is hit.
// Unreadable, oversized and binary files are skipped silently.
func (s *scan) searchFile(abs string) bool {
	cfg := s.tool.config.Tools

	info, err := s.tool.fs.Stat(abs)
	if err != nil || info.Size() > cfg.MaxFileSize {
		return true
	}
	data, err := s.tool.fs.ReadFile(abs)
	if err != nil || content.IsBinaryContent(data) {
		return true
	}
	s.resp.FilesSearched++

	rel := s.tool.pathResolver.Rel(abs)
	lines := content.SplitLines(string(data))
	for i, line := range lines {
		if !s.re.MatchString(line) {
			continue
		}
		if len(s.resp.Matches) >= cfg.MaxGrepMatches {
			s.resp.Truncated = true
			return false
		}
		m := Match{
			File: rel,
			Line: Line{Number: i + 1, Text: content.TruncateLine(line, cfg.MaxLineLength)},
		}
		if s.contextLines > 0 {
			m.Before = window(lines, max(0, i-s.contextLines), i, cfg.MaxLineLength)
			m.After = window(lines, i+1, min(len(lines), i+1+s.contextLines), cfg.MaxLineLength)
		}
		s.resp.Matches = append(s.resp.Matches, m)
	}
	return true
}

func window(lines []string, from, to, maxLen int) []Line {
	if from >= to {
		return nil
	}
	out := make([]Line, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, Line{Number: i + 1, Text: content.TruncateLine(lines[i], maxLen)})
	}
	return out
}
