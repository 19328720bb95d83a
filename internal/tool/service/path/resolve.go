package path

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
)

const maxSymlinkHops = 64

// fileSystem defines the filesystem operations needed to canonicalise paths.
type fileSystem interface {
	Lstat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
}

// Resolver resolves candidate paths against the working directory and checks that their
// canonical form stays inside the working directory or one of the extra allowed roots.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	fs         fileSystem
	workingDir string
	roots      []string // workingDir first
}

// NewResolver creates a resolver. workingDir and every allowed root are canonicalised;
// an allowed root that does not exist is an error.
func NewResolver(fs fileSystem, workingDir string, allowed []string) (*Resolver, error) {
	if fs == nil {
		panic("fs is required")
	}
	wd, err := CanonicaliseRoot(workingDir)
	if err != nil {
		return nil, err
	}
	roots := []string{wd}
	for _, a := range allowed {
		root, err := CanonicaliseRoot(a)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
	}
	return &Resolver{fs: fs, workingDir: wd, roots: roots}, nil
}

// CanonicaliseRoot canonicalises a sandbox root path by making it absolute and resolving symlinks.
// Returns an error if the path doesn't exist or isn't a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &RootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// WorkingDir returns the canonical working directory.
func (r *Resolver) WorkingDir() string {
	return r.workingDir
}

// Roots returns the canonical sandbox roots, working directory first.
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Abs resolves candidate to a canonical absolute path and validates it is inside a sandbox root.
// Relative candidates are taken relative to the working directory. The path need not exist.
func (r *Resolver) Abs(candidate string) (string, error) {
	abs := candidate
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.workingDir, candidate)
	}

	canonical, err := r.canonicalise(abs)
	if err != nil {
		return "", err
	}

	if r.RootOf(canonical) == "" {
		return "", &DeniedError{Path: candidate, NearestRoot: r.nearestRoot(canonical)}
	}
	return canonical, nil
}

// Rel returns abs relative to the working directory, or abs itself when it lives under another root.
func (r *Resolver) Rel(abs string) string {
	if !isWithin(abs, r.workingDir) {
		return abs
	}
	rel, err := filepath.Rel(r.workingDir, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// RootOf returns the sandbox root containing the canonical path abs, or "" if none does.
func (r *Resolver) RootOf(abs string) string {
	best := ""
	for _, root := range r.roots {
		if isWithin(abs, root) && len(root) > len(best) {
			best = root
		}
	}
	return best
}

// canonicalise walks abs one component at a time, replacing each symlink by its target,
// so that ".." after a symlink is applied to the link target rather than lexically.
// A missing component is kept as is and the walk continues, so a later ".." that climbs
// back into existing directories still has its symlinks resolved.
func (r *Resolver) canonicalise(abs string) (string, error) {
	parts := splitComponents(abs)
	current := string(filepath.Separator)
	hops := 0

	for len(parts) > 0 {
		part := parts[0]
		parts = parts[1:]

		switch part {
		case "", ".":
			continue
		case "..":
			current = filepath.Dir(current)
			continue
		}

		next := filepath.Join(current, part)
		info, err := r.fs.Lstat(next)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
				current = next
				continue
			}
			return "", &LstatError{Path: next, Cause: err}
		}

		if info.Mode()&os.ModeSymlink == 0 {
			current = next
			continue
		}

		hops++
		if hops > maxSymlinkHops {
			return "", &SymlinkLoopError{Path: abs}
		}
		target, err := r.fs.Readlink(next)
		if err != nil {
			return "", &LstatError{Path: next, Cause: err}
		}
		if filepath.IsAbs(target) {
			current = string(filepath.Separator)
		}
		parts = append(splitComponents(target), parts...)
	}

	return current, nil
}

// nearestRoot picks the root sharing the longest leading path with abs.
func (r *Resolver) nearestRoot(abs string) string {
	best, bestLen := r.workingDir, -1
	for _, root := range r.roots {
		n := commonComponents(abs, root)
		if n > bestLen {
			best, bestLen = root, n
		}
	}
	return best
}

func splitComponents(p string) []string {
	return strings.Split(filepath.ToSlash(p), "/")
}

func commonComponents(a, b string) int {
	as, bs := splitComponents(a), splitComponents(b)
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

// isWithin reports whether path is root or a descendant of root. Both must be clean and absolute.
func isWithin(path, root string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
