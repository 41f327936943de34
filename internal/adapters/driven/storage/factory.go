package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// OpenVectorIndex opens and initialises the index backend selected by settings.
func OpenVectorIndex(ctx context.Context, settings *domain.Settings) (driven.VectorIndex, error) {
	idx := settings.Index
	logger.Debug("opening %s vector index (collection %s, metric %s)", idx.Backend, idx.Collection, idx.Distance)

	switch idx.Backend {
	case domain.IndexBackendSQLite:
		return sqlite.Open(ctx, settings.Storage.IndexDir, idx.Collection, idx.Distance)

	case domain.IndexBackendPostgres:
		pg, err := postgres.New(idx.PostgresDSN, idx.Collection, idx.Distance)
		if err != nil {
			return nil, err
		}
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil

	case domain.IndexBackendMemory:
		mem := memory.NewVectorIndex(idx.Distance)
		return mem, mem.Init(ctx)

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidConfig, idx.Backend)
	}
}

// OpenDocumentStorage creates and initialises the uploads directory storage.
func OpenDocumentStorage(ctx context.Context, settings *domain.Settings) (driven.DocumentStorage, error) {
	fsStore := filesystem.New(settings.Storage.UploadsDir)
	if err := fsStore.Init(ctx); err != nil {
		return nil, err
	}
	return fsStore, nil
}
