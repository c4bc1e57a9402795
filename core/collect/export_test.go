package collect

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), engineFile)
	writeFile(t, filepath.Join(root, "b.json"), flatFile)

	c := New(Options{SearchRoot: root}, nil)
	collection, err := c.CollectAllData(context.Background())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out", schema.DataFileName)
	require.NoError(t, c.ExportToJSON(out))

	loaded, err := LoadCollection(out)
	require.NoError(t, err)
	assert.Equal(t, collection, loaded)

	// Nothing but the target is left behind.
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadCollectionKeepsStoredValues(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), schema.DataFileName), `{"data": [
  {"app_version": "", "timestamp": "2025-02-01T08:30:00+02:00", "test_group": "Board", "test_file": "F", "file_path": "f.json", "results": []}
]}`)

	loaded, err := LoadCollection(path)
	require.NoError(t, err)
	require.Len(t, loaded.Data, 1)
	entry := loaded.Data[0]
	assert.Empty(t, entry.AppVersion)
	assert.Equal(t, "2025-02-01T08:30:00+02:00", entry.Timestamp.Format(time.RFC3339))

	out := filepath.Join(t.TempDir(), schema.DataFileName)
	require.NoError(t, WriteCollection(out, loaded))
	again, err := LoadCollection(out)
	require.NoError(t, err)
	require.Len(t, again.Data, 1)
	assert.Empty(t, again.Data[0].AppVersion)
	assert.Equal(t, "2025-02-01T08:30:00+02:00", again.Data[0].Timestamp.Format(time.RFC3339))
	assert.True(t, entry.Timestamp.Equal(again.Data[0].Timestamp))
}

func TestExportReplacesExisting(t *testing.T) {
	out := filepath.Join(t.TempDir(), schema.DataFileName)
	writeFile(t, out, "stale content")

	require.NoError(t, WriteCollection(out, schema.Collection{}))

	loaded, err := LoadCollection(out)
	require.NoError(t, err)
	assert.Empty(t, loaded.Data)
	assert.NotNil(t, loaded.Data)
}

func TestWriteCollectionFailureLeavesTarget(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "target")
	// A directory at the target path makes the final rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(out, "child"), 0o755))

	err := WriteCollection(out, schema.Collection{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be removed")
}

func TestLoadCollectionErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := LoadCollection(filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorIs(t, err, contract.ErrInputNotFound)
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, filepath.Join(t.TempDir(), "bad.json"), "{")
		_, err := LoadCollection(path)
		var pe *contract.ParseError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("missing data array", func(t *testing.T) {
		path := writeFile(t, filepath.Join(t.TempDir(), "bad.json"), `{"results": []}`)
		_, err := LoadCollection(path)
		var pe *contract.ParseError
		assert.ErrorAs(t, err, &pe)
	})
}
