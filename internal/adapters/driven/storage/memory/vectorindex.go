package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vectorutil"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type entry struct {
	text   string
	vector []float32
	meta   domain.ChunkMetadata
}

// VectorIndex is an in-memory vector index using brute-force search.
// It is used for tests and for the "memory" index backend.
type VectorIndex struct {
	mu        sync.RWMutex
	metric    domain.DistanceMetric
	dimension int
	entries   map[string]entry
	closed    bool
}

// NewVectorIndex creates an empty in-memory index with the given metric.
// An invalid metric falls back to l2.
func NewVectorIndex(metric domain.DistanceMetric) *VectorIndex {
	if !metric.IsValid() {
		metric = domain.DistanceL2
	}
	return &VectorIndex{
		metric:  metric,
		entries: make(map[string]entry),
	}
}

// Init is a no-op for the in-memory index.
func (v *VectorIndex) Init(_ context.Context) error {
	return nil
}

// Metric returns the distance metric.
func (v *VectorIndex) Metric() domain.DistanceMetric {
	return v.metric
}

// Dimension returns the established vector dimension, or 0 while the index is empty.
func (v *VectorIndex) Dimension() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dimension
}

// Upsert inserts or replaces entries.
func (v *VectorIndex) Upsert(_ context.Context, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return domain.ErrIndexClosed
	}

	dim, err := vectorutil.CheckUpsert(ids, texts, vectors, metas, v.dimension)
	if err != nil {
		return err
	}
	v.dimension = dim
	v.put(ids, texts, vectors, metas)
	return nil
}

// Query returns the topK nearest entries by ascending distance.
func (v *VectorIndex) Query(_ context.Context, vector []float32, topK int) (domain.QueryResult, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return domain.QueryResult{}, domain.ErrIndexClosed
	}
	if err := vectorutil.CheckQuery(vector, topK, v.dimension); err != nil {
		return domain.QueryResult{}, err
	}
	if len(v.entries) == 0 {
		return domain.QueryResult{}, nil
	}

	matches := make([]domain.Match, 0, len(v.entries))
	for id, e := range v.entries {
		matches = append(matches, domain.Match{
			ID:       id,
			Text:     e.text,
			Metadata: e.meta,
			Distance: vectorutil.Distance(v.metric, vector, e.vector),
		})
	}

	return domain.QueryResult{Matches: vectorutil.TopK(matches, topK)}, nil
}

// DeleteBySource removes every entry whose metadata source matches.
func (v *VectorIndex) DeleteBySource(_ context.Context, source string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return 0, domain.ErrIndexClosed
	}

	return v.deleteSource(source), nil
}

// ReplaceSource swaps the entries of source for the given ones. Nothing
// changes when the new entries are rejected.
func (v *VectorIndex) ReplaceSource(
	_ context.Context, source string, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata,
) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return 0, domain.ErrIndexClosed
	}

	remaining := 0
	for _, e := range v.entries {
		if e.meta.Source != source {
			remaining++
		}
	}
	dim, err := vectorutil.CheckReplace(source, ids, texts, vectors, metas, v.dimension, remaining)
	if err != nil {
		return 0, err
	}

	removed := v.deleteSource(source)
	v.put(ids, texts, vectors, metas)
	v.dimension = dim
	return removed, nil
}

// deleteSource removes the entries of source and clears the dimension once
// the index is empty. Callers hold the write lock.
func (v *VectorIndex) deleteSource(source string) int {
	removed := 0
	for id, e := range v.entries {
		if e.meta.Source == source {
			delete(v.entries, id)
			removed++
		}
	}
	if len(v.entries) == 0 {
		v.dimension = 0
	}
	return removed
}

func (v *VectorIndex) put(ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) {
	for i, id := range ids {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		v.entries[id] = entry{text: texts[i], vector: vec, meta: metas[i]}
	}
}

// Count returns the number of entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return 0, domain.ErrIndexClosed
	}
	return len(v.entries), nil
}

// Sources returns per-document entry counts ordered by source.
func (v *VectorIndex) Sources(_ context.Context) ([]domain.SourceSummary, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, domain.ErrIndexClosed
	}

	counts := make(map[string]int)
	for _, e := range v.entries {
		counts[e.meta.Source]++
	}

	summaries := make([]domain.SourceSummary, 0, len(counts))
	for source, n := range counts {
		summaries = append(summaries, domain.SourceSummary{Source: source, ChunkCount: n})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Source < summaries[j].Source
	})
	return summaries, nil
}

// Close marks the index closed. Entries are discarded.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.entries = nil
	return nil
}
