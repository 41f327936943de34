package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the uploaded documents"`
	IncludeSources bool   `json:"include_sources,omitempty" jsonschema:"return the retrieved chunks with their distances"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Grounded bool           `json:"grounded"`
	Reason   string         `json:"reason,omitempty"`
	Sources  []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput describes one retrieved chunk.
type SourceOutput struct {
	Source   string  `json:"source"`
	ChunkID  int     `json:"chunk_id"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []string `json:"documents"`
	Count     int      `json:"count"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	Documents int            `json:"documents"`
	Chunks    int            `json:"chunks"`
	TopK      int            `json:"top_k"`
	Indexed   map[string]int `json:"indexed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question using only the uploaded documents. " +
			"The answer quotes its evidence and source, or states that the documents do not contain it.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the uploaded documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Show document and chunk counts",
	}, s.handleStats)
}

// handleAsk handles the ask tool invocation.
// Each call is independent; no conversation is kept between calls.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	record, err := s.ports.Answer.Answer(ctx, nil, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   record.Text,
		Grounded: record.State == domain.AnswerAnswered,
		Reason:   string(record.Reason),
	}
	if input.IncludeSources {
		output.Sources = make([]SourceOutput, len(record.Evidence))
		for i, m := range record.Evidence {
			output.Sources[i] = SourceOutput{
				Source:   m.Metadata.Source,
				ChunkID:  m.Metadata.ChunkID,
				Distance: m.Distance,
				Text:     m.Text,
			}
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, ErrMissingDocumentService
	}

	names, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	return nil, ListDocumentsOutput{Documents: names, Count: len(names)}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.Document == nil {
		return nil, StatsOutput{}, ErrMissingDocumentService
	}

	stats, err := s.ports.Document.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	indexed := make(map[string]int, len(stats.Indexed))
	for _, summary := range stats.Indexed {
		indexed[summary.Source] = summary.ChunkCount
	}
	return nil, StatsOutput{
		Documents: stats.Documents,
		Chunks:    stats.Chunks,
		TopK:      stats.TopK,
		Indexed:   indexed,
	}, nil
}
