package vectorutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 0}))
}

func TestDistance(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{4, 6}

	assert.InDelta(t, 25.0, Distance(domain.DistanceL2, a, b), 1e-9)
	expectedCos := 1 - (4.0+12.0)/(math.Sqrt(5)*math.Sqrt(52))
	assert.InDelta(t, expectedCos, Distance(domain.DistanceCosine, a, b), 1e-9)
	assert.InDelta(t, 0.0, Distance(domain.DistanceCosine, a, a), 1e-9)
}

func TestCheckUpsert(t *testing.T) {
	metas := []domain.ChunkMetadata{{Source: "a.txt", ChunkID: 0}, {Source: "a.txt", ChunkID: 1}}
	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}}

	dim, err := CheckUpsert([]string{"a", "b"}, []string{"x", "y"}, vectors, metas, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	_, err = CheckUpsert([]string{"a"}, []string{"x", "y"}, vectors, metas, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = CheckUpsert([]string{"a", "b"}, []string{"x", "y"}, vectors, metas, 4)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = CheckUpsert([]string{"a", "b"}, []string{"x", "y"}, [][]float32{{1, 2, 3}, {1}}, metas, 0)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	badMeta := []domain.ChunkMetadata{{Source: "", ChunkID: 0}, {Source: "a", ChunkID: 1}}
	_, err = CheckUpsert([]string{"a", "b"}, []string{"x", "y"}, vectors, badMeta, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dim, err = CheckUpsert(nil, nil, nil, nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, dim)
}

func TestCheckQuery(t *testing.T) {
	assert.NoError(t, CheckQuery([]float32{1, 2}, 5, 0))
	assert.NoError(t, CheckQuery([]float32{1, 2}, 5, 2))
	assert.ErrorIs(t, CheckQuery([]float32{1, 2}, 5, 3), domain.ErrDimensionMismatch)
	assert.ErrorIs(t, CheckQuery([]float32{1}, 0, 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, CheckQuery(nil, 1, 0), domain.ErrInvalidInput)
}

func TestTopK(t *testing.T) {
	matches := []domain.Match{
		{ID: "c", Distance: 0.5},
		{ID: "b", Distance: 0.1},
		{ID: "a", Distance: 0.5},
		{ID: "d", Distance: 0.9},
	}

	top := TopK(matches, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "a", top[1].ID)
	assert.Equal(t, "c", top[2].ID)

	assert.Len(t, TopK(matches, 10), 4)
}

func TestCheckReplace(t *testing.T) {
	ids := []string{"a.txt::chunk_0"}
	texts := []string{"t"}
	vecs := [][]float32{{1, 2, 3}}

	tests := []struct {
		name      string
		source    string
		dimension int
		remaining int
		want      int
		isErr     error
	}{
		{"fresh collection", "a.txt", 0, 0, 3, nil},
		{"same dimension", "a.txt", 3, 4, 3, nil},
		{"other documents pin dimension", "a.txt", 2, 1, 0, domain.ErrDimensionMismatch},
		{"only document may change dimension", "a.txt", 2, 0, 3, nil},
		{"metadata of another source", "b.txt", 3, 1, 0, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dim, err := CheckReplace(tt.source, ids, texts, vecs,
				[]domain.ChunkMetadata{{Source: "a.txt"}}, tt.dimension, tt.remaining)
			if tt.isErr != nil {
				assert.ErrorIs(t, err, tt.isErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dim)
		})
	}
}
