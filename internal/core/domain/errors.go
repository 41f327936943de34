package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidName indicates a filename that sanitises to nothing.
	ErrInvalidName = errors.New("invalid file name")

	// ErrUnsupportedFormat indicates a file extension with no parser.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidChunking indicates a chunk size or overlap that cannot make progress.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrDimensionMismatch indicates vectors whose length differs from the collection's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidConfig indicates settings that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIndexClosed indicates use of a vector index after Close.
	ErrIndexClosed = errors.New("vector index closed")

	// Provider Errors.

	// ErrAuth indicates the provider rejected the credentials.
	ErrAuth = errors.New("provider authentication failed")

	// ErrService indicates the provider is unreachable or returned an error.
	ErrService = errors.New("provider service error")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// UnsupportedFormatError names the rejected extension and the accepted ones.
type UnsupportedFormatError struct {
	Extension string
	Supported []string
}

// Error implements error.
func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported format %s (supported: %s)", ext, strings.Join(e.Supported, ", "))
}

// Is makes errors.Is(err, ErrUnsupportedFormat) match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// Ingestion stages reported by StageError.
const (
	StageRead    = "read"
	StageParse   = "parse"
	StageChunk   = "chunk"
	StageEmbed   = "embed"
	StageReplace = "replace"
)

// StageError reports which ingestion stage failed for which file.
type StageError struct {
	Filename string
	Stage    string
	Err      error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.Filename, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}
