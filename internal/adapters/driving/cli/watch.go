package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

var watchReindex bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Index files as they appear in the uploads directory",
	Long: `Watches the uploads directory and keeps the index in step with it.

Files created or modified there are ingested; deleted or renamed files have
their chunks purged. Changes are processed one at a time. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchReindex, "reindex", false, "reindex every document before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := loadServices(ctx)
	if err != nil {
		return err
	}
	if s.Document == nil {
		return errors.New("document service not configured")
	}
	if s.Watcher == nil {
		return errors.New("upload watcher not configured")
	}

	if watchReindex {
		counts, failures := s.Document.ReindexAll(ctx)
		if err := reindexEverything(cmd, counts, failures); err != nil {
			cmd.PrintErrf("Warning: %v\n", err)
		}
	}

	changes, err := s.Watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer s.Watcher.Close()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", s.Watcher.Dir())
	for change := range changes {
		applyChange(ctx, cmd, s.Document, change)
	}
	return nil
}

// applyChange brings the index in line with one upload change. Failures are
// reported and the watch continues.
func applyChange(ctx context.Context, cmd *cobra.Command, docs driving.DocumentService, change domain.UploadChange) {
	logger.Debug("upload %s: %s", change.Type, change.Filename)

	if change.NeedsIngest() {
		n, err := docs.Reindex(ctx, change.Filename)
		switch {
		case errors.Is(err, domain.ErrUnsupportedFormat):
			cmd.Printf("Skipped %s: %v\n", change.Filename, err)
		case err != nil:
			cmd.PrintErrf("Failed to index %s: %v\n", change.Filename, err)
		case n == 0:
			cmd.Printf("Indexed %s: no text found\n", change.Filename)
		default:
			cmd.Printf("Indexed %s: %d chunks\n", change.Filename, n)
		}
		return
	}

	if _, err := docs.Delete(ctx, change.Filename); err != nil {
		cmd.PrintErrf("Failed to purge %s: %v\n", change.Filename, err)
		return
	}
	cmd.Printf("Purged %s\n", change.Filename)
}
