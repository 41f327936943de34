package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	record   *domain.AnswerRecord
	err      error
	question string
}

func (m *mockAnswerService) Answer(
	_ context.Context,
	_ *domain.ConversationState,
	question string,
) (*domain.AnswerRecord, error) {
	m.question = question
	return m.record, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	names   []string
	preview string
	stats   *domain.Stats
	err     error
}

func (m *mockDocumentService) Upload(_ context.Context, name string, _ []byte) (*driving.UploadResult, error) {
	return &driving.UploadResult{Filename: name}, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]string, error) {
	return m.names, m.err
}

func (m *mockDocumentService) Preview(_ context.Context, _ string, _ int) (string, error) {
	return m.preview, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) (bool, error) {
	return true, m.err
}

func (m *mockDocumentService) Reindex(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) ReindexAll(_ context.Context) (map[string]int, map[string]error) {
	return map[string]int{}, map[string]error{}
}

func (m *mockDocumentService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.stats, m.err
}
