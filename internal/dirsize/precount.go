package dirsize

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// countDirectories counts the directories below root using a parallel walk.
// Symlinks are not followed and unreadable directories are skipped.
func countDirectories(ctx context.Context, root string) (int64, error) {
	var count atomic.Int64

	root = filepath.Clean(root)
	conf := &fastwalk.Config{Follow: false}

	//nolint:varnamelen // d is standard for DirEntry
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable entries do not stop the count
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() && filepath.Clean(path) != root {
			count.Add(1)
		}

		return nil
	})
	if err != nil {
		return count.Load(), err
	}

	return count.Load(), nil
}
