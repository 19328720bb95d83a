package search

import (
	"os"
)

// pathResolver defines sandbox path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Rel(abs string) string
}

// fileSystem defines the minimal filesystem interface needed by search tools.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	ReadDir(path string) ([]os.DirEntry, error)
}

// ignoreMatcher reports whether a path is excluded by gitignore rules.
type ignoreMatcher interface {
	ShouldIgnore(abs string, isDir bool) bool
}
