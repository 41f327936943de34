package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Retriever finds the chunks closest to a question.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a retriever.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the question and returns up to topK matches, closest first.
// Every call re-embeds the question.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) (domain.QueryResult, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed question: %w", err)
	}

	result, err := r.index.Query(ctx, vector, topK)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("query index: %w", err)
	}

	logger.Debug("Retrieved %d/%d chunks", result.Len(), topK)
	for i, m := range result.Matches {
		logger.Debugw("match", "rank", i+1, "source", m.Metadata.Source, "chunk", m.Metadata.ChunkID, "distance", m.Distance)
	}
	return result, nil
}
