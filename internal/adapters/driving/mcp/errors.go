// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask grounded questions about the uploaded documents.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrMissingDocumentService is returned by document tools when no document service is wired.
var ErrMissingDocumentService = errors.New("mcp: document service not configured")
