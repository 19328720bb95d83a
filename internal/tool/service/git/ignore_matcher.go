package git

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/tool/helper/content"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// GitignoreReadError is returned when .gitignore cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// fileSystem defines the minimal filesystem interface needed to load ignore files.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type rootMatcher struct {
	root    string
	matcher gitignore.Matcher // nil when the root has no .gitignore
}

// IgnoreMatcher answers gitignore queries for absolute paths under any of the sandbox roots,
// using go-git's gitignore matcher over each root's top-level .gitignore.
// The .git directory itself is always ignored.
type IgnoreMatcher struct {
	roots []rootMatcher
}

// NewIgnoreMatcher loads .gitignore from every root. A root without one never ignores anything
// except .git.
func NewIgnoreMatcher(roots []string, fs fileSystem) (*IgnoreMatcher, error) {
	if fs == nil {
		panic("fs is required")
	}
	m := &IgnoreMatcher{}
	for _, root := range roots {
		matcher, err := loadMatcher(root, fs)
		if err != nil {
			return nil, err
		}
		m.roots = append(m.roots, rootMatcher{root: root, matcher: matcher})
	}
	return m, nil
}

func loadMatcher(root string, fsys fileSystem) (gitignore.Matcher, error) {
	gitignorePath := filepath.Join(root, ".gitignore")

	data, err := fsys.ReadFile(gitignorePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &GitignoreReadError{Path: gitignorePath, Cause: err}
	}

	var patterns []gitignore.Pattern
	for _, line := range content.SplitLines(string(data)) {
		line = strings.TrimRight(line, " \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return gitignore.NewMatcher(patterns), nil
}

// ShouldIgnore reports whether the absolute path abs is ignored by the .gitignore of the
// most specific root containing it. Paths outside every root are never ignored.
func (m *IgnoreMatcher) ShouldIgnore(abs string, isDir bool) bool {
	var best *rootMatcher
	for i := range m.roots {
		r := &m.roots[i]
		if isUnder(abs, r.root) && (best == nil || len(r.root) > len(best.root)) {
			best = r
		}
	}
	if best == nil {
		return false
	}

	rel, err := filepath.Rel(best.root, abs)
	if err != nil {
		return false
	}
	segments := splitPath(rel)
	if len(segments) == 0 {
		return false
	}
	for _, s := range segments {
		if s == ".git" {
			return true
		}
	}
	if best.matcher == nil {
		return false
	}
	return best.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

func isUnder(path, root string) bool {
	return path == root || strings.HasPrefix(path, strings.TrimSuffix(root, "/")+"/")
}

// NoOpMatcher is a gitignore matcher that never ignores any files.
// It is used when gitignore support is switched off.
type NoOpMatcher struct{}

// ShouldIgnore always returns false for NoOpMatcher.
func (NoOpMatcher) ShouldIgnore(string, bool) bool {
	return false
}
