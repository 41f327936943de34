package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// recentLimit is the number of documents listed in Stats.Recent.
const recentLimit = 10

// DocumentService manages uploaded files and keeps the index in step with them.
type DocumentService struct {
	storage   driven.DocumentStorage
	ingestion *IngestionService
	index     driven.VectorIndex
	topK      int
}

// NewDocumentService creates a document service.
func NewDocumentService(
	storage driven.DocumentStorage,
	ingestion *IngestionService,
	index driven.VectorIndex,
	topK int,
) *DocumentService {
	return &DocumentService{
		storage:   storage,
		ingestion: ingestion,
		index:     index,
		topK:      topK,
	}
}

// Upload stores the file, then indexes it. When indexing fails the file
// stays stored so it can be reindexed later.
func (s *DocumentService) Upload(ctx context.Context, filename string, content []byte) (*driving.UploadResult, error) {
	name, err := s.storage.Save(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	n, err := s.ingestion.Ingest(ctx, name, content)
	if err != nil {
		return nil, err
	}
	return &driving.UploadResult{Filename: name, Chunks: n}, nil
}

// List returns uploaded filenames sorted ascending.
func (s *DocumentService) List(ctx context.Context) ([]string, error) {
	names, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return names, nil
}

// Preview returns the first limit bytes of a stored file.
// Invalid UTF-8, including a character cut at the limit, is dropped.
func (s *DocumentService) Preview(ctx context.Context, filename string, limit int) (string, error) {
	if limit <= 0 {
		limit = domain.DefaultPreviewBytes
	}

	raw, err := s.storage.Read(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}

// Delete purges the document's chunks, then removes the file.
func (s *DocumentService) Delete(ctx context.Context, filename string) (bool, error) {
	name, err := domain.SanitizeFilename(filename)
	if err != nil {
		return false, err
	}

	removed, err := s.index.DeleteBySource(ctx, name)
	if err != nil {
		return false, fmt.Errorf("purge chunks of %s: %w", name, err)
	}
	logger.Debug("Purged %d chunks of %s", removed, name)

	deleted, err := s.storage.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	return deleted, nil
}

// Reindex re-ingests a stored file from disk.
func (s *DocumentService) Reindex(ctx context.Context, filename string) (int, error) {
	name, err := domain.SanitizeFilename(filename)
	if err != nil {
		return 0, err
	}

	raw, err := s.storage.Read(ctx, name)
	if err != nil {
		return 0, &domain.StageError{Filename: name, Stage: domain.StageRead, Err: err}
	}
	return s.ingestion.Ingest(ctx, name, raw)
}

// ReindexAll re-ingests every stored file, continuing past failures.
// A failure to list the uploads is reported under the empty name.
func (s *DocumentService) ReindexAll(ctx context.Context) (map[string]int, map[string]error) {
	counts := make(map[string]int)
	failures := make(map[string]error)

	names, err := s.storage.List(ctx)
	if err != nil {
		failures[""] = fmt.Errorf("list uploads: %w", err)
		return counts, failures
	}

	for _, name := range names {
		if ctx.Err() != nil {
			failures[name] = ctx.Err()
			continue
		}
		n, err := s.Reindex(ctx, name)
		if err != nil {
			logger.Warn("reindex %s: %v", name, err)
			failures[name] = err
			continue
		}
		counts[name] = n
	}
	return counts, failures
}

// Stats summarises the uploads and the index.
func (s *DocumentService) Stats(ctx context.Context) (*domain.Stats, error) {
	names, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	chunks, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	indexed, err := s.index.Sources(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("list indexed sources: %w", err)
	}

	recent := names
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return &domain.Stats{
		Documents: len(names),
		Chunks:    chunks,
		TopK:      s.topK,
		Recent:    recent,
		Indexed:   indexed,
	}, nil
}
