package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService manages the uploaded document collection.
type DocumentService interface {
	// Upload stores the file and ingests it. Returns the sanitised name and
	// the number of chunks indexed.
	Upload(ctx context.Context, filename string, content []byte) (*UploadResult, error)

	// List returns uploaded filenames sorted ascending.
	List(ctx context.Context) ([]string, error)

	// Preview returns at most limit bytes of the stored file (limit <= 0 uses the default).
	Preview(ctx context.Context, filename string, limit int) (string, error)

	// Delete purges the document's chunks and removes the file.
	// Returns false when the file did not exist.
	Delete(ctx context.Context, filename string) (bool, error)

	// Reindex re-ingests one stored document from disk.
	Reindex(ctx context.Context, filename string) (int, error)

	// ReindexAll re-ingests every stored document. It continues past failures
	// and returns them keyed by filename.
	ReindexAll(ctx context.Context) (map[string]int, map[string]error)

	// Stats returns the collection overview.
	Stats(ctx context.Context) (*domain.Stats, error)
}

// UploadResult reports the outcome of an upload.
type UploadResult struct {
	// Filename is the sanitised stored name.
	Filename string

	// Chunks is the number of chunks written to the index.
	Chunks int
}
