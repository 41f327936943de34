package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestExtractFilename(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "docqa://documents/contract.txt",
			expected: "contract.txt",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/contract.txt",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "docqa://documents/../etc/passwd",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractFilename(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents as JSON", func(t *testing.T) {
		docs := &mockDocumentService{names: []string{"a.txt"}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.JSONEq(t, `["a.txt"]`, result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})
}

func TestServer_handleDocumentPreviewResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns preview", func(t *testing.T) {
		docs := &mockDocumentService{preview: "first bytes"}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		result, err := server.handleDocumentPreviewResource(ctx, makeReadResourceRequest("docqa://documents/a.txt"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "first bytes", result.Contents[0].Text)
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		docs := &mockDocumentService{}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, err = server.handleDocumentPreviewResource(ctx, makeReadResourceRequest("docqa://other"))

		assert.Error(t, err)
	})

	t.Run("missing file propagates", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, err = server.handleDocumentPreviewResource(ctx, makeReadResourceRequest("docqa://documents/a.txt"))

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
