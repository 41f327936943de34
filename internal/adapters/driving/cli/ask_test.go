package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func groundedRecord() *domain.AnswerRecord {
	return &domain.AnswerRecord{
		Text: "Réponse : Trois mois.\nPreuve (extrait) : \"Le préavis est de trois mois.\"\nSource : bail.txt | chunk 0",
		State: domain.AnswerAnswered,
		Evidence: []domain.Match{
			{
				ID:       "bail.txt-0",
				Text:     "Le préavis est de trois mois.",
				Metadata: domain.ChunkMetadata{Source: "bail.txt", ChunkID: 0},
				Distance: 0.1234,
			},
		},
	}
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "ask")

	assert.Error(t, err)
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.record = groundedRecord()

	out, _, err := execute(t, "ask", "Quel", "est", "le", "préavis ?")

	require.NoError(t, err)
	assert.Equal(t, []string{"Quel est le préavis ?"}, ts.answer.questions)
	assert.Nil(t, ts.answer.convs[0])
	assert.Contains(t, out, "Réponse : Trois mois.")
	assert.NotContains(t, out, "Sources (")
}

func TestAskCmd_Fallback(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "ask", "Quelle est la capitale ?")

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackAnswer, strings.TrimSpace(out))
}

func TestAskCmd_Sources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.record = groundedRecord()

	out, _, err := execute(t, "ask", "--sources", "préavis ?")

	require.NoError(t, err)
	assert.Contains(t, out, "Sources (1):")
	assert.Contains(t, out, "[1] bail.txt | chunk 0 (distance 0.1234)")
	assert.Contains(t, out, "Le préavis est de trois mois.")
}

func TestAskCmd_SourcesWithFallbackReason(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	record := groundedRecord()
	record.Text = domain.FallbackAnswer
	record.State = domain.AnswerUnknown
	record.Reason = domain.ReasonUngroundedQuote
	ts.answer.record = record

	out, _, err := execute(t, "ask", "-s", "préavis ?")

	require.NoError(t, err)
	assert.Contains(t, out, "Fallback reason: ungrounded_quote")
}

func TestAskCmd_SourcesNone(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "ask", "-s", "préavis ?")

	require.NoError(t, err)
	assert.Contains(t, out, "No sources retrieved.")
}

func TestAskCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.record = groundedRecord()

	out, _, err := execute(t, "ask", "--json", "préavis ?")
	require.NoError(t, err)

	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "answered", got.State)
	assert.Empty(t, got.Reason)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "bail.txt", got.Sources[0].Source)
	assert.InDelta(t, 0.1234, got.Sources[0].Distance, 1e-9)
}

func TestAskCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.err = errors.New("embedding provider down")

	_, _, err := execute(t, "ask", "préavis ?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to answer")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", excerpt("a\n b\t\tc", 10))
	assert.Equal(t, "éé...", excerpt("ééé", 2))
	assert.Empty(t, excerpt("", 5))
}
