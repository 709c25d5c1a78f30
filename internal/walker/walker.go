// Package walker enumerates files below a root directory.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrRootNotFound indicates the root directory does not exist.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrRootNotDirectory indicates the root path is not a directory.
	ErrRootNotDirectory = errors.New("root path is not a directory")

	// ErrWalkFailed indicates traversal below the root failed.
	ErrWalkFailed = errors.New("directory walk failed")
)

// Predicate reports whether a file name (final path component) is wanted.
type Predicate func(name string) bool

// Extensions returns a case-insensitive predicate matching any of exts.
// Extensions are given with their leading dot (".md").
func Extensions(exts ...string) Predicate {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[strings.ToLower(filepath.Ext(name))]
		return ok
	}
}

// Any matches every file.
func Any(string) bool { return true }

// Visible narrows match to names that are neither dotfiles (.DS_Store, vim
// swap files) nor editor backups (name~, #name#).
func Visible(match Predicate) Predicate {
	return func(name string) bool {
		if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
			(strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#")) {
			return false
		}
		return match(name)
	}
}

// Walk returns the absolute paths of every file below root whose name matches.
//
// Directories are descended but never returned. An unreadable child aborts the
// walk with ErrWalkFailed; partial results are discarded. The order of the
// returned paths is lexical but callers must not rely on it.
func Walk(ctx context.Context, root string, match Predicate) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, abs)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, abs)
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !match(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, abs, err)
	}
	return files, nil
}
