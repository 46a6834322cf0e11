package kvstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "customModels")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "customModels", []byte(`[]`)))
	got, err := s.Get(ctx, "customModels")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Put(ctx, "customModels", []byte(`[{"id":"x"}]`)))
	got, err = s.Get(ctx, "customModels")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, string(got))

	_, err = s.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile(t *testing.T) {
	s, err := NewFile(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestFile_RejectsPathKeys(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", "", ".."} {
		assert.Error(t, s.Put(context.Background(), key, []byte("x")), key)
		_, err := s.Get(context.Background(), key)
		assert.Error(t, err, key)
	}
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv", "llmcost.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "llmcost.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "customModels", []byte(`[1]`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "customModels")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, config.StorageConfig{Backend: "file", Path: dir}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)
	s.Close()

	s, err = Open(ctx, config.StorageConfig{Backend: "sqlite", Path: dir}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	s.Close()
	_, err = os.Stat(filepath.Join(dir, sqliteFile))
	assert.NoError(t, err)

	_, err = Open(ctx, config.StorageConfig{Backend: "etcd"}, discardLogger())
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = Open(ctx, config.StorageConfig{Backend: "redis"}, discardLogger())
	assert.ErrorContains(t, err, "no address configured")
}
