// Command docqa answers questions strictly from uploaded documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/html"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/normalisers/tabular"
)

// version is set via -ldflags at release time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync()

	if err := file.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	store, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open config: %v\n", err)
		return 1
	}
	settingsSvc := services.NewSettingsService(store, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsSvc)
	cli.SetServiceFactory(func(ctx context.Context) (*cli.Services, error) {
		settings, err := settingsSvc.Get()
		if err != nil {
			return nil, err
		}
		return buildServices(ctx, settings)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// buildServices opens the index and providers and assembles the pipeline.
// A provider that cannot be created is replaced by one that reports the
// failure on use, so document management still works without it.
func buildServices(ctx context.Context, settings *domain.Settings) (*cli.Services, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	index, err := storage.OpenVectorIndex(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	docs, err := storage.OpenDocumentStorage(ctx, settings)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("open uploads: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("embedding provider unavailable: %v", err)
		embedder = ai.Unavailable(err)
	}
	var llm driven.LLMService
	llm, err = ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
		llm = ai.Unavailable(err)
	}

	parser := normalisers.NewRegistry(plaintext.New(), tabular.New(), html.New())

	ingestion, err := services.NewIngestionService(parser, embedder, index, settings.Retrieval)
	if err != nil {
		index.Close()
		embedder.Close()
		llm.Close()
		return nil, err
	}

	topK := settings.Retrieval.TopK
	rag := services.NewRagService(
		services.NewRetriever(embedder, index),
		services.NewAnswerComposer(llm),
		services.NewGroundingValidator(settings.Grounding.VerifyEvidence),
		topK,
	)
	watcher := filesystem.New(settings.Storage.UploadsDir)

	return &cli.Services{
		Answer:   rag,
		Document: services.NewDocumentService(docs, ingestion, index, topK),
		Watcher:  watcher,
		Close: func() error {
			return errors.Join(watcher.Close(), llm.Close(), embedder.Close(), index.Close())
		},
	}, nil
}
