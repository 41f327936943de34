package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload and index documents",
	Long: `Copies each file into the uploads directory and indexes it.

Supported formats: .txt, .csv, .html, .htm. Uploading a file with the same
name replaces the stored copy and its chunks. A file that yields no text is
stored but adds nothing to the index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	docs, err := requireDocumentService(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("Failed to read %s: %v\n", path, err)
			failed++
			continue
		}

		result, err := docs.Upload(ctx, filepath.Base(path), content)
		if err != nil {
			cmd.PrintErrf("Failed to upload %s: %v\n", path, err)
			failed++
			continue
		}

		if result.Chunks == 0 {
			cmd.Printf("Uploaded %s, but it contains no text; nothing was indexed.\n", result.Filename)
			continue
		}
		cmd.Printf("Uploaded %s: %d chunks indexed\n", result.Filename, result.Chunks)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}
