package directory

import (
	"os"
)

// pathResolver defines sandbox path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Rel(abs string) string
}

// dirFileSystem defines the filesystem operations needed to enumerate directories.
type dirFileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
}

// ignoreMatcher reports whether a path is excluded by gitignore rules.
type ignoreMatcher interface {
	ShouldIgnore(abs string, isDir bool) bool
}
