package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "vectors.idx")
	require.NoError(t, os.WriteFile(snapshot, []byte("hello"), 0600))
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "a"), []byte("ab"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(data, "nested", "b"), []byte("c"), 0600))

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"single file", []string{snapshot}, 5},
		{"directory is summed recursively", []string{data}, 3},
		{"file and directory", []string{snapshot, data}, 8},
		{"missing path contributes nothing", []string{snapshot, filepath.Join(dir, "gone"), data}, 8},
		{"empty path is skipped", []string{"", snapshot}, 5},
		{"no paths", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatabaseFiles(t *testing.T) {
	assert.Nil(t, DatabaseFiles(":memory:"), "in-memory database has no files")
	assert.Nil(t, DatabaseFiles(""))
	assert.Equal(t,
		[]string{"/data/wali.db", "/data/wali.db-wal", "/data/wali.db-shm"},
		DatabaseFiles("/data/wali.db"))
}

func TestDatabaseFiles_UsageOfLiveDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := DiskUsageBytes(DatabaseFiles(path)...)
	require.NoError(t, err)
	assert.Positive(t, n, "database files should take some space")
}
