package dirsize

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// delta is a progress increment sent from the walker to the scanner.
type delta struct {
	// Seed raises the estimated total, set once by the pre-count.
	Seed int64
	// Discovered is the number of newly found subdirectories.
	Discovered int64
	// Processed is the number of directories that finished.
	Processed int64
	// Current names the directory or file being worked on.
	Current string
}

// walker builds a Node tree for one scan. It is used by a single goroutine.
type walker struct {
	resolver *Resolver
	readDir  func(string) ([]fs.DirEntry, error)
	lstat    func(string) (FileMeta, error)
	deltas   chan<- delta
	log      logrus.FieldLogger
}

// report sends d to the scanner unless ctx is done.
func (w *walker) report(ctx context.Context, d delta) {
	select {
	case w.deltas <- d:
	case <-ctx.Done():
	}
}

// walk visits path and returns its directory node.
// It returns ErrCanceled without a partial node once ctx is done.
//
//nolint:funlen // Traversal reads best in one piece.
func (w *walker) walk(ctx context.Context, path string, root bool) (*Node, error) {
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}

	node := &Node{
		Name:     filepath.Base(path),
		Path:     path,
		Kind:     Directory,
		Children: []*Node{},
	}

	entries, err := w.readDir(path)
	if err != nil {
		if root {
			return nil, fmt.Errorf("reading directory %q: %w", path, err)
		}

		w.log.WithError(err).WithField("path", path).Debug("skipping unreadable directory")

		return node, nil
	}

	var subdirs int64

	for _, entry := range entries {
		if entry.IsDir() {
			subdirs++
		}
	}

	if subdirs > 0 {
		w.report(ctx, delta{Discovered: subdirs, Current: path})
	}

	var total int64

	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ErrCanceled
		}

		full := filepath.Join(path, entry.Name())

		// DirEntry types come from lstat, so symlinks to directories land
		// in the file branch and are never descended into.
		if entry.IsDir() {
			child, err := w.walk(ctx, full, false)
			if err != nil {
				return nil, err
			}

			total += child.Size
			node.Children = append(node.Children, child)

			w.report(ctx, delta{Processed: 1, Current: entry.Name()})

			continue
		}

		meta, err := w.lstat(full)
		if err != nil {
			w.log.WithError(err).WithField("path", full).Debug("skipping file")

			continue
		}

		size := w.resolver.Resolve(ctx, full, meta)
		if size < 0 {
			size = 0
		}

		total += size
		node.Children = append(node.Children, &Node{
			Name: entry.Name(),
			Path: full,
			Size: size,
			Kind: File,
		})
	}

	node.Size = total

	return node, nil
}

// defaultReadDir lists path without following symlinks of its entries.
func defaultReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}
