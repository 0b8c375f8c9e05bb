package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	return matches
}

func TestRecorderFlushWritesEvents(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	require.NoError(t, err)

	require.NoError(t, r.Record(QueryEvent{Question: "What is ventral hernia?", Class: "local", Success: true, Entities: 1}))
	require.NoError(t, r.Record(QueryEvent{Question: "overview", Class: "global", Success: false, Communities: 3}))

	// Nothing written until flush.
	assert.Empty(t, parquetFiles(t, dir))

	require.NoError(t, r.Close())
	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	events, err := parquet.ReadFile[QueryEvent](files[0])
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "What is ventral hernia?", events[0].Question)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, "global", events[1].Class)
}

func TestRecorderAutoFlushAtBatchSize(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, r.Record(QueryEvent{Question: "q", Class: "global"}))
	}
	assert.Len(t, parquetFiles(t, dir), 1)
}

func TestRecorderEmptyFlushWritesNothing(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	require.NoError(t, err)
	require.NoError(t, r.Flush())
	assert.Empty(t, parquetFiles(t, dir))
}

func TestNewRecorderBadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewRecorder(filepath.Join(file, "nested"))
	assert.Error(t, err)
}
