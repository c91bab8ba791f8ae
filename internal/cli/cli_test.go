package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirsize/internal/dirsize"
)

func scenarioTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f1"), make([]byte, 100), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "A"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "B"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "A", "f2"), make([]byte, 200), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "A", "f3"), make([]byte, 50), 0o644))

	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := New("test").command()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), err
}

func TestExecuteJSON(t *testing.T) {
	root := scenarioTree(t)

	out, err := run(t, "--output", "json", root)
	require.NoError(t, err)

	var result dirsize.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	require.NotNil(t, result.Root)
	assert.Equal(t, int64(350), result.Root.Size)
	assert.Len(t, result.Root.Children, 3)
	assert.False(t, result.Canceled)
	assert.Empty(t, result.Error)
}

func TestExecuteJSONMissingRoot(t *testing.T) {
	out, err := run(t, "-o", "json", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var result dirsize.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Nil(t, result.Root)
	assert.NotEmpty(t, result.Error)
}

func TestExecuteTable(t *testing.T) {
	root := scenarioTree(t)

	out, err := run(t, "--depth", "2", "--top", "2", "--no-progress", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Tree:")
	assert.Contains(t, out, root+"/")
	assert.Contains(t, out, "A/")
	assert.Contains(t, out, "f2")
	assert.Contains(t, out, "Largest files:")
	assert.Regexp(t, `Total files:\s+3\n`, out)
	assert.Regexp(t, `Total directories:\s+2\n`, out)
	assert.Contains(t, out, "350 B (350 bytes)")
}

func TestExecuteRejectsInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown output", args: []string{"--output", "xml"}},
		{name: "negative depth", args: []string{"--depth", "-1"}},
		{name: "negative top", args: []string{"--top", "-3"}},
		{name: "bad threshold", args: []string{"--sparse-threshold", "lots"}},
		{name: "zero timeout", args: []string{"--probe-timeout", "0s"}},
		{name: "too many args", args: []string{"a", "b"}},
		{name: "missing config", args: []string{"--config", "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, t.TempDir())...)
			require.Error(t, err)
		})
	}
}

func TestConfigPrecedence(t *testing.T) {
	config := filepath.Join(t.TempDir(), "dirsize.yaml")
	require.NoError(t, os.WriteFile(config, []byte("top: 3\ndepth: 4\nsparse-threshold: 1GiB\n"), 0o644))

	t.Setenv("DIRSIZE_DEPTH", "5")

	cmd := New("test").command()
	require.NoError(t, cmd.Flags().Parse([]string{"--config", config, "--top", "7"}))

	v := viper.New()
	require.NoError(t, loadConfig(v, cmd.Flags()))

	options, err := optionsFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 7, options.TopN, "flag beats file")
	assert.Equal(t, 5, options.Depth, "env beats file")
	assert.Equal(t, int64(1<<30), options.SparseThreshold)
	assert.Equal(t, dirsize.DefaultProbeTimeout, options.ProbeTimeout)
	assert.Equal(t, "table", options.Output)
}

func TestPrintJSON(t *testing.T) {
	root := &dirsize.Node{Name: "a&b", Path: "/tmp/a&b", Kind: dirsize.Directory, Children: []*dirsize.Node{}}

	tests := []struct {
		name   string
		result dirsize.Result
		want   string
	}{
		{
			name:   "tree",
			result: dirsize.Result{Root: root},
			want:   `{"root": {"name": "a&b", "path": "/tmp/a&b", "size": 0, "kind": "directory", "children": []}}`,
		},
		{
			name:   "failure",
			result: dirsize.Result{Error: "scan worker crashed"},
			want:   `{"error": "scan worker crashed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			require.NoError(t, PrintJSON(tt.result, &buf))
			assert.JSONEq(t, tt.want, buf.String())
			assert.Contains(t, buf.String(), "\n  ")
		})
	}
}

func TestPrintTableDepthZero(t *testing.T) {
	root := &dirsize.Node{
		Name: "R", Path: "/R", Size: 10, Kind: dirsize.Directory,
		Children: []*dirsize.Node{{Name: "hidden-child", Path: "/R/hidden-child", Size: 10, Kind: dirsize.File}},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintTable(root, dirsize.Summarize(root, 0), 0, time.Second, &buf))

	tree := buf.String()[:bytes.Index(buf.Bytes(), []byte("Largest"))]
	assert.Contains(t, tree, "/R/")
	assert.NotContains(t, tree, "hidden-child")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "…6789", truncate("0123456789", 5))
}
