// Package cli provides the cobra command tree for docqa.
// It is a driving adapter: commands translate flags and arguments into calls
// on the driving ports and print the results.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// verbose enables debug logging for every command.
var verbose bool

// UploadWatcher reports changes in the uploads directory.
type UploadWatcher interface {
	// Watch starts watching; the channel closes when ctx is done.
	Watch(ctx context.Context) (<-chan domain.UploadChange, error)

	// Dir returns the watched directory.
	Dir() string

	// Close stops watching.
	Close() error
}

// Services holds the ports that need an opened index and AI providers.
type Services struct {
	// Answer answers questions from the indexed documents.
	Answer driving.AnswerService

	// Document manages uploads and the index.
	Document driving.DocumentService

	// Watcher watches the uploads directory. Optional.
	Watcher UploadWatcher

	// Close releases the index and providers. Optional.
	Close func() error
}

// ServiceFactory builds Services from the effective settings.
type ServiceFactory func(ctx context.Context) (*Services, error)

var (
	// settingsService is always available; it only needs the config file.
	settingsService driving.SettingsService

	// serviceFactory builds services the first time a command needs them.
	serviceFactory ServiceFactory

	// services caches the factory result for the process lifetime.
	services *Services
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Grounded question answering over your documents",
	Long: `docqa answers questions strictly from documents you upload.

Upload .txt, .csv or .html files, then ask questions. Every answer quotes the
passage it relies on and names the document and chunk it came from. When the
documents do not support an answer, docqa says so instead of guessing:

  ` + domain.FallbackAnswer,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings port.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetServiceFactory sets the factory used to open the index and providers.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
	services = nil
}

// Execute runs the root command and releases any services it opened.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// loadServices builds the services on first use.
func loadServices(ctx context.Context) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if serviceFactory == nil {
		return nil, errors.New("services not configured")
	}
	s, err := serviceFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening docqa: %w", err)
	}
	services = s
	return services, nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	services = nil
}

// requireDocumentService returns the document port or an error naming why it is missing.
func requireDocumentService(ctx context.Context) (driving.DocumentService, error) {
	s, err := loadServices(ctx)
	if err != nil {
		return nil, err
	}
	if s.Document == nil {
		return nil, errors.New("document service not configured")
	}
	return s.Document, nil
}

// requireAnswerService returns the answer port or an error naming why it is missing.
func requireAnswerService(ctx context.Context) (driving.AnswerService, error) {
	s, err := loadServices(ctx)
	if err != nil {
		return nil, err
	}
	if s.Answer == nil {
		return nil, errors.New("answer service not configured")
	}
	return s.Answer, nil
}

func requireSettingsService() (driving.SettingsService, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService, nil
}
