package dirsize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files (path -> size) and empty directories (path ending in "/") under root.
func writeTree(t *testing.T, root string, entries map[string]int) {
	t.Helper()

	for rel, size := range entries {
		full := filepath.Join(root, filepath.FromSlash(rel))

		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))

			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, make([]byte, size), 0o644))
	}
}

// scenarioTree builds R{f1:100, A{f2:200, f3:50}, B{}} and returns R.
func scenarioTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"f1":   100,
		"A/f2": 200,
		"A/f3": 50,
		"B/":   0,
	})

	return root
}

// child returns the direct child of n named name.
func child(t *testing.T, n *Node, name string) *Node {
	t.Helper()

	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	require.Failf(t, "missing child", "%s has no child %q", n.Path, name)

	return nil
}

// requireSizeInvariant checks that every directory's size is the sum of its children.
func requireSizeInvariant(t *testing.T, n *Node) {
	t.Helper()

	if !n.IsDir() {
		require.Nil(t, n.Children, "file %s has children", n.Path)
		require.GreaterOrEqual(t, n.Size, int64(0))

		return
	}

	require.NotNil(t, n.Children, "directory %s has nil children", n.Path)

	var sum int64
	for _, c := range n.Children {
		requireSizeInvariant(t, c)
		sum += c.Size
	}

	require.Equal(t, sum, n.Size, "size of %s", n.Path)
}
