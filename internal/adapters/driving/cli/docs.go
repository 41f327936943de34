package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage uploaded documents",
	Long:    `List, preview, delete or reindex uploaded documents.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsPreviewCmd = &cobra.Command{
	Use:   "preview [filename]",
	Short: "Print the beginning of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsPreview,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [filename]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsReindexCmd = &cobra.Command{
	Use:   "reindex [filename]",
	Short: "Re-ingest documents from the uploads directory",
	Long: `Re-ingests one document, or every document with --all.

Use this after changing the chunking or embedding settings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocsReindex,
}

var (
	previewBytes int
	reindexAll   bool
)

func init() {
	docsPreviewCmd.Flags().IntVarP(&previewBytes, "bytes", "b", domain.DefaultPreviewBytes, "number of bytes to print")
	docsReindexCmd.Flags().BoolVar(&reindexAll, "all", false, "reindex every uploaded document")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsPreviewCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsReindexCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	docs, err := requireDocumentService(ctx)
	if err != nil {
		return err
	}

	names, err := docs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(names) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	chunks := make(map[string]int)
	if stats, err := docs.Stats(ctx); err == nil {
		for _, s := range stats.Indexed {
			chunks[s.Source] = s.ChunkCount
		}
	}

	cmd.Println("Documents:")
	cmd.Println()
	for _, name := range names {
		if n, ok := chunks[name]; ok {
			cmd.Printf("  %s (%d chunks)\n", name, n)
		} else {
			cmd.Printf("  %s (not indexed)\n", name)
		}
	}
	cmd.Println()
	cmd.Printf("Total: %d documents\n", len(names))
	return nil
}

func runDocsPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	docs, err := requireDocumentService(ctx)
	if err != nil {
		return err
	}

	content, err := docs.Preview(ctx, args[0], previewBytes)
	if err != nil {
		return fmt.Errorf("failed to preview %s: %w", args[0], err)
	}
	cmd.Println(content)
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	docs, err := requireDocumentService(ctx)
	if err != nil {
		return err
	}

	existed, err := docs.Delete(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", args[0], err)
	}
	if !existed {
		cmd.Printf("%s was not uploaded; any remaining chunks were purged.\n", args[0])
		return nil
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runDocsReindex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	docs, err := requireDocumentService(ctx)
	if err != nil {
		return err
	}

	if reindexAll {
		if len(args) > 0 {
			return fmt.Errorf("%w: pass a filename or --all, not both", domain.ErrInvalidInput)
		}
		counts, failures := docs.ReindexAll(ctx)
		return reindexEverything(cmd, counts, failures)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: pass a filename or --all", domain.ErrInvalidInput)
	}

	n, err := docs.Reindex(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to reindex %s: %w", args[0], err)
	}
	cmd.Printf("Reindexed %s: %d chunks\n", args[0], n)
	return nil
}

func reindexEverything(cmd *cobra.Command, counts map[string]int, failures map[string]error) error {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("Reindexed %s: %d chunks\n", name, counts[name])
	}

	if len(failures) == 0 {
		cmd.Printf("Reindexed %d documents\n", len(counts))
		return nil
	}

	failed := make([]string, 0, len(failures))
	for name := range failures {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		label := name
		if label == "" {
			label = "uploads"
		}
		cmd.PrintErrf("Failed %s: %v\n", label, failures[name])
	}
	return fmt.Errorf("%d documents failed to reindex", len(failures))
}
