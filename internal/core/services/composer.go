package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// contextDelimiter separates labelled chunks in the prompt context.
const contextDelimiter = "\n\n---\n\n"

// systemPrompt constrains the model to the three-line answer format.
// The markers and the fallback sentence come from domain so the validator
// checks exactly what the model was told to write.
var systemPrompt = "Tu es un assistant interne. RÈGLE ABSOLUE : tu réponds uniquement à partir du CONTEXTE fourni. " +
	"Tu dois produire une réponse au format EXACT suivant (3 lignes) :\n" +
	domain.MarkerAnswer + " <ta réponse>\n" +
	domain.MarkerEvidence + " \"<citation exacte copiée/collée depuis le contexte>\"\n" +
	domain.MarkerSource + " <nom_fichier> | chunk <num_chunk>\n" +
	"\n" +
	"CONTRAINTES :\n" +
	"- La 'Preuve (extrait)' doit être une citation exacte provenant du contexte.\n" +
	"- La 'Source' doit correspondre exactement à la preuve (nom_fichier + chunk).\n" +
	"- Si la réponse n'est pas dans le contexte ou si tu ne peux pas citer une preuve exacte, répond EXACTEMENT :\n" +
	domain.FallbackAnswer

// AnswerComposer builds the prompts for a question and asks the model.
type AnswerComposer struct {
	llm driven.LLMService
}

// NewAnswerComposer creates a composer backed by llm.
func NewAnswerComposer(llm driven.LLMService) *AnswerComposer {
	return &AnswerComposer{llm: llm}
}

// SystemPrompt returns the fixed instruction sent with every question.
func (c *AnswerComposer) SystemPrompt() string {
	return systemPrompt
}

// BuildContext renders the matches as labelled blocks in retrieval order:
// "[Source {rank} | {source} | chunk {chunk_id}]\n{text}".
func (c *AnswerComposer) BuildContext(result domain.QueryResult) string {
	blocks := make([]string, len(result.Matches))
	for i, m := range result.Matches {
		blocks[i] = fmt.Sprintf("[Source %d | %s]\n%s", i+1, m.Metadata.Label(), m.Text)
	}
	return strings.Join(blocks, contextDelimiter)
}

// UserPrompt combines the question, the best-match hint and the context.
func (c *AnswerComposer) UserPrompt(question string, result domain.QueryResult) string {
	bestSource := ""
	if best, ok := result.Best(); ok {
		bestSource = best.Metadata.Label()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", question)
	fmt.Fprintf(&b, "MEILLEURE SOURCE (si utile): %s\n\n", bestSource)
	fmt.Fprintf(&b, "CONTEXTE (extraits internes):\n%s\n\n", c.BuildContext(result))
	b.WriteString("Réponds en respectant STRICTEMENT le format demandé.")
	return b.String()
}

// Generate asks the model to answer from result. The completion is
// deterministic (temperature 0). The raw output is returned unvalidated.
func (c *AnswerComposer) Generate(ctx context.Context, question string, result domain.QueryResult) (string, error) {
	user := c.UserPrompt(question, result)
	logger.Debug("Prompt: %d context blocks, %d characters", result.Len(), len([]rune(user)))

	out, err := c.llm.Complete(ctx, systemPrompt, user, driven.CompletionOptions{Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return out, nil
}
