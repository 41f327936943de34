// Package vectorutil holds the distance functions and argument checks shared
// by the vector index adapters.
package vectorutil

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// Zero or mismatched vectors have similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SquaredL2 returns the squared Euclidean distance between two vectors of equal length.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Distance computes the distance between a and b under metric. Lower is closer.
func Distance(metric domain.DistanceMetric, a, b []float32) float64 {
	if metric == domain.DistanceCosine {
		return 1 - CosineSimilarity(a, b)
	}
	return SquaredL2(a, b)
}

// CheckUpsert validates the arguments of a VectorIndex upsert and returns
// the common vector dimension. dimension is the collection's established
// dimension, or 0 when none has been recorded yet.
func CheckUpsert(ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata, dimension int) (int, error) {
	n := len(ids)
	if len(texts) != n || len(vectors) != n || len(metas) != n {
		return 0, fmt.Errorf("%w: upsert arity mismatch (ids=%d texts=%d vectors=%d metadatas=%d)",
			domain.ErrInvalidInput, n, len(texts), len(vectors), len(metas))
	}

	for i := range ids {
		if ids[i] == "" {
			return 0, fmt.Errorf("%w: empty id at position %d", domain.ErrInvalidInput, i)
		}
		if err := metas[i].Validate(); err != nil {
			return 0, fmt.Errorf("entry %s: %w", ids[i], err)
		}
		if len(vectors[i]) == 0 {
			return 0, fmt.Errorf("%w: entry %s has an empty vector", domain.ErrDimensionMismatch, ids[i])
		}
		if dimension == 0 {
			dimension = len(vectors[i])
		}
		if len(vectors[i]) != dimension {
			return 0, fmt.Errorf("%w: entry %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, ids[i], len(vectors[i]), dimension)
		}
	}
	return dimension, nil
}

// CheckReplace validates the arguments of a ReplaceSource call. remaining is
// the number of entries left once source is removed; when none remain the
// collection's dimension no longer applies.
func CheckReplace(source string, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata, dimension, remaining int) (int, error) {
	for i := range metas {
		if metas[i].Source != source {
			return 0, fmt.Errorf("%w: entry %d belongs to %q, not %q",
				domain.ErrInvalidInput, i, metas[i].Source, source)
		}
	}
	if remaining == 0 {
		dimension = 0
	}
	return CheckUpsert(ids, texts, vectors, metas, dimension)
}

// CheckQuery validates a query vector against the collection's dimension.
// A dimension of 0 (empty, never-written collection) accepts any vector.
func CheckQuery(vector []float32, topK, dimension int) error {
	if topK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidInput, topK)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if dimension != 0 && len(vector) != dimension {
		return fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), dimension)
	}
	return nil
}

// TopK sorts matches by ascending distance (ties broken by ID) and keeps at most k.
func TopK(matches []domain.Match, k int) []domain.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
