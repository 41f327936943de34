package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()
	evidence := []domain.Match{{
		ID:       "bail.txt::chunk_0",
		Text:     "Le préavis est de trois mois.",
		Metadata: domain.ChunkMetadata{Source: "bail.txt", ChunkID: 0},
		Distance: 0.25,
	}}

	t.Run("returns grounded answer with sources", func(t *testing.T) {
		answer := &mockAnswerService{record: &domain.AnswerRecord{
			Text:     "Réponse : Trois mois.",
			State:    domain.AnswerAnswered,
			Evidence: evidence,
		}}
		server, err := NewServer(&Ports{Answer: answer})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Préavis ?", IncludeSources: true})

		require.NoError(t, err)
		assert.Equal(t, "Préavis ?", answer.question)
		assert.Equal(t, "Réponse : Trois mois.", output.Answer)
		assert.True(t, output.Grounded)
		assert.Empty(t, output.Reason)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, SourceOutput{Source: "bail.txt", ChunkID: 0, Distance: 0.25, Text: "Le préavis est de trois mois."}, output.Sources[0])
	})

	t.Run("fallback omits sources by default", func(t *testing.T) {
		answer := &mockAnswerService{record: &domain.AnswerRecord{
			Text:     domain.FallbackAnswer,
			State:    domain.AnswerUnknown,
			Reason:   domain.ReasonMissingMarker,
			Evidence: evidence,
		}}
		server, err := NewServer(&Ports{Answer: answer})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "?"})

		require.NoError(t, err)
		assert.Equal(t, domain.FallbackAnswer, output.Answer)
		assert.False(t, output.Grounded)
		assert.Equal(t, "missing_marker", output.Reason)
		assert.Nil(t, output.Sources)
	})

	t.Run("returns error on answer failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{err: domain.ErrService}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrService)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{names: []string{"a.txt", "b.csv"}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, []string{"a.txt", "b.csv"}, output.Documents)
	})

	t.Run("missing document service", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		_, _, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})
}

func TestServer_handleStats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns counts", func(t *testing.T) {
		docs := &mockDocumentService{stats: &domain.Stats{
			Documents: 2,
			Chunks:    5,
			TopK:      5,
			Indexed: []domain.SourceSummary{
				{Source: "a.txt", ChunkCount: 3},
				{Source: "b.csv", ChunkCount: 2},
			},
		}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, output, err := server.handleStats(ctx, nil, StatsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Documents)
		assert.Equal(t, 5, output.Chunks)
		assert.Equal(t, map[string]int{"a.txt": 3, "b.csv": 2}, output.Indexed)
	})

	t.Run("propagates errors", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("index closed")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, _, err = server.handleStats(ctx, nil, StatsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "index closed")
	})
}
