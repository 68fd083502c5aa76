package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/snapshot"
)

func writeTestSnapshot(t *testing.T, path string) {
	t.Helper()

	ctx := context.Background()
	db := vecdb.New(vecdb.WithSnapshotCompression(snapshot.CompressionLZ4))
	defer func() { _ = db.Close() }()

	require.NoError(t, db.CreateCollection(ctx, "colors", 3))
	require.NoError(t, db.Insert(ctx, "colors", [][]float32{{1, 0, 0}, {0, 1, 0}}, []string{"red", "green"}, "palette"))
	require.NoError(t, db.Insert(ctx, "colors", [][]float32{{0, 0, 1}}, []string{"blue"}, "sky"))
	require.NoError(t, db.BuildIndex(ctx, "colors"))
	require.NoError(t, db.CreateCollection(ctx, "empty", 8))

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, db.Snapshot(ctx, f))
	require.NoError(t, f.Close())
}

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snap")
	writeTestSnapshot(t, path)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"inspect", path})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "compression: lz4")
	assert.Contains(t, out, "collections: 2")
	assert.Regexp(t, `colors\s+3\s+3\s+true\s+2`, out)
	assert.Regexp(t, `empty\s+8\s+0\s+false\s+0`, out)
}

func TestInspectCommandGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snap")
	writeTestSnapshot(t, path)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"inspect", "--graph", path})
	defer func() {
		rootCmd.SetArgs(nil)
		inspectGraph = false
	}()

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "colors:")
	assert.Contains(t, out, "nodes = 3")
	assert.Contains(t, out, "level 0: nodes = 3")
	assert.NotContains(t, out, "empty:")
}

func TestInspectCommandErrors(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.snap")
	require.NoError(t, os.WriteFile(garbage, []byte("not a snapshot at all"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", []string{"inspect"}},
		{"missing file", []string{"inspect", filepath.Join(dir, "nope.snap")}},
		{"not a snapshot", []string{"inspect", garbage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetOut(new(bytes.Buffer))
			rootCmd.SetErr(new(bytes.Buffer))
			rootCmd.SetArgs(tt.args)
			defer rootCmd.SetArgs(nil)

			assert.Error(t, rootCmd.Execute())
		})
	}
}
