package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// askExcerptRunes limits the chunk excerpt printed with --sources.
const askExcerptRunes = 2000

var (
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the uploaded documents",
	Long: `Answers a single question from the indexed documents.

The answer is either three lines (answer, verbatim quotation, source) or the
fallback sentence when the documents do not support an answer. Use --sources
to also print the retrieved chunks with their distances.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "print the retrieved chunks")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer record as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an answer record.
type askOutput struct {
	Answer  string         `json:"answer"`
	State   string         `json:"state"`
	Reason  string         `json:"reason,omitempty"`
	Sources []sourceOutput `json:"sources"`
}

type sourceOutput struct {
	Source   string  `json:"source"`
	ChunkID  int     `json:"chunk_id"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	answers, err := requireAnswerService(ctx)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	record, err := answers.Answer(ctx, nil, question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, record)
	}

	cmd.Println(record.Text)
	if askSources {
		outputSources(cmd, record)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, record *domain.AnswerRecord) error {
	out := askOutput{
		Answer:  record.Text,
		State:   record.State.String(),
		Reason:  string(record.Reason),
		Sources: make([]sourceOutput, 0, len(record.Evidence)),
	}
	for _, m := range record.Evidence {
		out.Sources = append(out.Sources, sourceOutput{
			Source:   m.Metadata.Source,
			ChunkID:  m.Metadata.ChunkID,
			Distance: m.Distance,
			Text:     m.Text,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSources(cmd *cobra.Command, record *domain.AnswerRecord) {
	cmd.Println()
	if len(record.Evidence) == 0 {
		cmd.Println("No sources retrieved.")
		return
	}

	cmd.Printf("Sources (%d):\n", len(record.Evidence))
	if record.IsFallback() && record.Reason != domain.ReasonNone {
		cmd.Printf("Fallback reason: %s\n", record.Reason)
	}
	cmd.Println()
	for i, m := range record.Evidence {
		cmd.Printf("  [%d] %s (distance %.4f)\n", i+1, m.Metadata.Label(), m.Distance)
		cmd.Printf("      %s\n", excerpt(m.Text, askExcerptRunes))
		cmd.Println()
	}
}

// excerpt returns the first limit runes of text on one line.
func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
