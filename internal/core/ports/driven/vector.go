package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex is a persistent, named collection of chunk entries.
// Each entry holds an ID, the chunk text, its embedding and its metadata.
// The distance metric is fixed when the collection is created. The dimension
// is fixed by the first upsert and cleared again once the collection is empty.
type VectorIndex interface {
	// Init opens or creates the collection.
	Init(ctx context.Context) error

	// Upsert inserts or replaces entries. All slices must have equal length.
	// Vectors whose length differs from the collection's return
	// domain.ErrDimensionMismatch.
	Upsert(ctx context.Context, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) error

	// Query returns up to topK entries ordered by ascending distance.
	// An empty collection returns an empty result.
	Query(ctx context.Context, vector []float32, topK int) (domain.QueryResult, error)

	// DeleteBySource removes every entry whose metadata source matches.
	// Returns the number of entries removed.
	DeleteBySource(ctx context.Context, source string) (int, error)

	// ReplaceSource removes the entries of source and upserts the given ones
	// as a single operation. Every metadata must name source. On error the
	// previous entries are kept. Returns the number of entries removed.
	ReplaceSource(ctx context.Context, source string, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) (int, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)

	// Sources returns per-document entry counts ordered by source name.
	Sources(ctx context.Context) ([]domain.SourceSummary, error)

	// Close releases resources.
	Close() error
}
