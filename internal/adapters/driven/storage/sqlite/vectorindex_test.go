package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestVectorIndex_UseBeforeInit(t *testing.T) {
	idx := setupTestStore(t).VectorIndex("c", domain.DistanceL2)

	_, err := idx.Count(context.Background())
	assert.ErrorIs(t, err, errNotInitialised)
}

func TestVectorIndex_InitInvalidMetric(t *testing.T) {
	idx := setupTestStore(t).VectorIndex("c", "dot")
	assert.ErrorIs(t, idx.Init(context.Background()), domain.ErrInvalidConfig)
}

func TestVectorIndex_QueryEmptyCollection(t *testing.T) {
	idx := setupTestIndex(t, domain.DistanceL2)

	result, err := idx.Query(context.Background(), []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
}

func TestVectorIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)
	upsertChunks(t, idx, "contract.txt", []float32{0, 3}, []float32{1, 0})

	result, err := idx.Query(ctx, []float32{0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)

	assert.Equal(t, "contract.txt::chunk_1", result.Matches[0].ID)
	assert.Equal(t, "contract.txt chunk", result.Matches[0].Text)
	assert.Equal(t, domain.ChunkMetadata{Source: "contract.txt", ChunkID: 1}, result.Matches[0].Metadata)
	assert.InDelta(t, 1.0, result.Matches[0].Distance, 1e-6)
	assert.InDelta(t, 9.0, result.Matches[1].Distance, 1e-6)
	assert.Equal(t, 2, idx.Dimension())
}

func TestVectorIndex_CosineMetric(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceCosine)
	upsertChunks(t, idx, "a.txt", []float32{0, 1}, []float32{5, 0})

	result, err := idx.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "a.txt::chunk_1", result.Matches[0].ID)
	assert.InDelta(t, 0.0, result.Matches[0].Distance, 1e-6)
}

func TestVectorIndex_MetricFixedAtCreation(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first := store.VectorIndex("legal_docs", domain.DistanceCosine)
	require.NoError(t, first.Init(ctx))

	second := store.VectorIndex("legal_docs", domain.DistanceL2)
	require.NoError(t, second.Init(ctx))
	assert.Equal(t, domain.DistanceCosine, second.Metric())
}

func TestVectorIndex_ReingestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)

	upsertChunks(t, idx, "a.txt", []float32{1, 0}, []float32{0, 1})
	before, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)

	upsertChunks(t, idx, "a.txt", []float32{1, 0}, []float32{0, 1})
	after, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)
	upsertChunks(t, idx, "a.txt", []float32{1, 0})

	err := idx.Upsert(ctx, []string{"b::chunk_0"}, []string{"t"}, [][]float32{{1, 2, 3}},
		[]domain.ChunkMetadata{{Source: "b", ChunkID: 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.False(t, entryExists(t, idx, "b::chunk_0"))

	_, err = idx.Query(ctx, []float32{1, 2, 3}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_DimensionPersisted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := Open(ctx, dir, "legal_docs", domain.DistanceL2)
	require.NoError(t, err)
	upsertChunks(t, idx, "a.txt", []float32{1, 0, 0})
	require.NoError(t, idx.Close())

	reopened, err := Open(ctx, dir, "legal_docs", domain.DistanceL2)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 3, reopened.Dimension())
	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorIndex_ArityMismatch(t *testing.T) {
	idx := setupTestIndex(t, domain.DistanceL2)
	err := idx.Upsert(context.Background(), []string{"a", "b"}, []string{"x"}, [][]float32{{1}},
		[]domain.ChunkMetadata{{Source: "a"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_DeleteBySource(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)
	upsertChunks(t, idx, "a.txt", []float32{1, 0}, []float32{0, 1})
	upsertChunks(t, idx, "b.txt", []float32{1, 1})

	removed, err := idx.DeleteBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	result, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "b.txt", result.Matches[0].Metadata.Source)

	removed, err = idx.DeleteBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestVectorIndex_Sources(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)

	sources, err := idx.Sources(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)

	upsertChunks(t, idx, "z.csv", []float32{1, 1})
	upsertChunks(t, idx, "a.txt", []float32{1, 0}, []float32{0, 1})

	sources, err = idx.Sources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceSummary{
		{Source: "a.txt", ChunkCount: 2},
		{Source: "z.csv", ChunkCount: 1},
	}, sources)
}

func TestVectorIndex_CollectionsIsolated(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	a := store.VectorIndex("a", domain.DistanceL2)
	b := store.VectorIndex("b", domain.DistanceL2)
	require.NoError(t, a.Init(ctx))
	require.NoError(t, b.Init(ctx))

	upsertChunks(t, a, "doc.txt", []float32{1, 0})

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVectorIndex_EmptiedCollectionAcceptsNewDimension(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	idx, err := Open(ctx, dir, "legal_docs", domain.DistanceL2)
	require.NoError(t, err)
	upsertChunks(t, idx, "a.txt", []float32{1, 0, 0})

	removed, err := idx.DeleteBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Zero(t, idx.Dimension())

	result, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	require.NoError(t, idx.Close())

	reopened, err := Open(ctx, dir, "legal_docs", domain.DistanceL2)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Zero(t, reopened.Dimension())

	upsertChunks(t, reopened, "b.txt", []float32{1, 0, 0, 0})
	assert.Equal(t, 4, reopened.Dimension())
}

func TestVectorIndex_InitClearsDimensionOfEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	idx := store.VectorIndex("legal_docs", domain.DistanceL2)
	require.NoError(t, idx.Init(ctx))

	_, err := store.db.ExecContext(ctx, "UPDATE collections SET dimension = 3 WHERE name = ?", "legal_docs")
	require.NoError(t, err)

	again := store.VectorIndex("legal_docs", domain.DistanceL2)
	require.NoError(t, again.Init(ctx))
	assert.Zero(t, again.Dimension())
}

func TestVectorIndex_ReplaceSource(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)
	upsertChunks(t, idx, "a.txt", []float32{1, 0}, []float32{0, 1})
	upsertChunks(t, idx, "b.txt", []float32{1, 1})

	removed, err := idx.ReplaceSource(ctx, "a.txt",
		[]string{"a.txt::chunk_0"}, []string{"new"}, [][]float32{{2, 2}},
		[]domain.ChunkMetadata{{Source: "a.txt", ChunkID: 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.False(t, entryExists(t, idx, "a.txt::chunk_1"))

	sources, err := idx.Sources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceSummary{{Source: "a.txt", ChunkCount: 1}, {Source: "b.txt", ChunkCount: 1}}, sources)
}

func TestVectorIndex_ReplaceSourceRejectedKeepsEntries(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)
	upsertChunks(t, idx, "a.txt", []float32{1, 0}, []float32{0, 1})
	upsertChunks(t, idx, "b.txt", []float32{1, 1})

	_, err := idx.ReplaceSource(ctx, "a.txt",
		[]string{"a.txt::chunk_0"}, []string{"new"}, [][]float32{{1, 2, 3}},
		[]domain.ChunkMetadata{{Source: "a.txt", ChunkID: 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, entryExists(t, idx, "a.txt::chunk_1"))
	assert.Equal(t, 2, idx.Dimension())
}

func TestVectorIndex_ReplaceOnlySourceWithNewDimension(t *testing.T) {
	ctx := context.Background()
	idx := setupTestIndex(t, domain.DistanceL2)
	upsertChunks(t, idx, "a.txt", []float32{1, 0})

	_, err := idx.ReplaceSource(ctx, "a.txt",
		[]string{"a.txt::chunk_0"}, []string{"new"}, [][]float32{{1, 2, 3}},
		[]domain.ChunkMetadata{{Source: "a.txt"}})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Dimension())

	result, err := idx.Query(ctx, []float32{1, 2, 3}, 1)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "new", result.Matches[0].Text)
}
