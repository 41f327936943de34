package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// setupTestIndex creates an initialised collection in a temporary store.
func setupTestIndex(t *testing.T, metric domain.DistanceMetric) *VectorIndex {
	t.Helper()
	idx := setupTestStore(t).VectorIndex(domain.DefaultCollection, metric)
	require.NoError(t, idx.Init(context.Background()))
	return idx
}

func upsertChunks(t *testing.T, idx *VectorIndex, source string, vectors ...[]float32) {
	t.Helper()
	ids := make([]string, len(vectors))
	texts := make([]string, len(vectors))
	metas := make([]domain.ChunkMetadata, len(vectors))
	for i := range vectors {
		ids[i] = domain.ChunkID(source, i)
		texts[i] = source + " chunk"
		metas[i] = domain.ChunkMetadata{Source: source, ChunkID: i}
	}
	require.NoError(t, idx.Upsert(context.Background(), ids, texts, vectors, metas))
}

func entryExists(t *testing.T, idx *VectorIndex, id string) bool {
	t.Helper()
	var one int
	err := idx.store.db.QueryRowContext(context.Background(),
		"SELECT 1 FROM entries WHERE collection = ? AND id = ?", idx.collection, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "index")
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_EmptyDir(t *testing.T) {
	_, err := NewStore("  ")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewStore_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := NewStore(filepath.Join(file, "index"))
	assert.Error(t, err)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestFloat32Conversion(t *testing.T) {
	original := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, original, bytesToFloat32Slice(float32SliceToBytes(original)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
