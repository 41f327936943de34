package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCheck bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the collection overview",
	Long: `Shows the number of uploaded documents and indexed chunks, the retrieval
breadth and the most recent documents. With --check, also contacts the
embedding and LLM providers.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "ping the configured providers")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	docs, err := requireDocumentService(ctx)
	if err != nil {
		return err
	}

	stats, err := docs.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	cmd.Println("Collection")
	cmd.Println("==========")
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Chunks:    %d\n", stats.Chunks)
	cmd.Printf("  Top K:     %d\n", stats.TopK)
	cmd.Println()

	if len(stats.Recent) == 0 {
		cmd.Println("No documents uploaded yet.")
	} else {
		cmd.Println("Recent documents:")
		for _, name := range stats.Recent {
			cmd.Printf("  - %s\n", name)
		}
	}

	if !statusCheck {
		return nil
	}

	settings, err := requireSettingsService()
	if err != nil {
		return err
	}

	cmd.Println()
	cmd.Println("Providers")
	cmd.Println("=========")
	embedErr := settings.ValidateEmbeddingConfig()
	printCheck(cmd, "Embedding", embedErr)
	llmErr := settings.ValidateLLMConfig()
	printCheck(cmd, "LLM", llmErr)

	if embedErr != nil || llmErr != nil {
		return fmt.Errorf("provider check failed")
	}
	return nil
}

func printCheck(cmd *cobra.Command, label string, err error) {
	if err != nil {
		cmd.Printf("  %s: FAILED (%v)\n", label, err)
		return
	}
	cmd.Printf("  %s: OK\n", label)
}
