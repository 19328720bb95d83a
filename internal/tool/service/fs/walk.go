package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// DirReader lists directory entries in name order.
type DirReader interface {
	ReadDir(path string) ([]os.DirEntry, error)
}

// WalkFunc is called for every entry below the walk root with the entry's absolute path and its
// depth (1 for immediate children). Returning iofs.SkipDir for a directory prunes it; iofs.SkipAll
// ends the walk without error.
type WalkFunc func(abs string, entry os.DirEntry, depth int) error

// Walk visits the tree under root depth-first in lexical order.
// Symlinks are reported but never followed, so a walk cannot leave the tree it started in.
// Subdirectories that cannot be read are skipped; only a failure to read root is returned.
func Walk(ctx context.Context, r DirReader, root string, fn WalkFunc) error {
	entries, err := r.ReadDir(root)
	if err != nil {
		return err
	}
	err = walkEntries(ctx, r, root, entries, 1, fn)
	if errors.Is(err, iofs.SkipAll) {
		return nil
	}
	return err
}

func walkEntries(ctx context.Context, r DirReader, dir string, entries []os.DirEntry, depth int, fn WalkFunc) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		abs := filepath.Join(dir, entry.Name())
		err := fn(abs, entry, depth)
		if errors.Is(err, iofs.SkipDir) {
			continue
		}
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			continue
		}

		children, err := r.ReadDir(abs)
		if err != nil {
			continue
		}
		if err := walkEntries(ctx, r, abs, children, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
