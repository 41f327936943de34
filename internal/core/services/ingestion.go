package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// IngestionService turns an uploaded file into indexed chunks:
// parse, chunk, embed in one batch, then replace the document's entries.
type IngestionService struct {
	parser   driven.DocumentParser
	chunker  *chunker.Processor
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewIngestionService creates an ingestion service. Chunking parameters are
// validated here so a bad configuration fails before any file is touched.
func NewIngestionService(
	parser driven.DocumentParser,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	retrieval domain.RetrievalSettings,
) (*IngestionService, error) {
	proc, err := chunker.New(retrieval.ChunkSize, retrieval.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &IngestionService{
		parser:   parser,
		chunker:  proc,
		embedder: embedder,
		index:    index,
	}, nil
}

// Ingest indexes one document and returns the number of chunks written.
// A document that yields no chunks returns 0 and leaves the index untouched.
// Re-ingesting a file replaces its previous entries, so a shorter new
// version leaves no stale chunks behind. If the new entries are rejected the
// previous ones stay indexed.
func (s *IngestionService) Ingest(ctx context.Context, filename string, raw []byte) (int, error) {
	logger.Section("Ingestion")
	logger.Debug("File: %s (%d bytes)", filename, len(raw))

	text, err := s.parser.Parse(ctx, filename, raw)
	if err != nil {
		return 0, stageError(filename, domain.StageParse, err)
	}

	chunks := s.chunker.Chunk(filename, text)
	logger.Debug("Chunked into %d windows (size %d, overlap %d)",
		len(chunks), s.chunker.ChunkSize(), s.chunker.Overlap())
	if len(chunks) == 0 {
		logger.Info("%s produced no text, nothing indexed", filename)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, stageError(filename, domain.StageEmbed, err)
	}
	if len(vectors) != len(chunks) {
		return 0, stageError(filename, domain.StageEmbed,
			fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrService, len(vectors), len(chunks)))
	}

	ids := make([]string, len(chunks))
	metas := make([]domain.ChunkMetadata, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		ids[i] = chunks[i].ID()
		metas[i] = chunks[i].Metadata()
	}

	removed, err := s.index.ReplaceSource(ctx, filename, ids, texts, vectors, metas)
	if err != nil {
		return 0, stageError(filename, domain.StageReplace, err)
	}
	if removed > 0 {
		logger.Debug("Replaced %d previous chunks of %s", removed, filename)
	}

	logger.Info("Indexed %s: %d chunks", filename, len(chunks))
	return len(chunks), nil
}

func stageError(filename, stage string, err error) error {
	return &domain.StageError{Filename: filename, Stage: stage, Err: err}
}
