package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// chunkIDSeparator joins a source filename and a chunk position into a chunk ID.
const chunkIDSeparator = "::chunk_"

// RawDocument is an uploaded file before parsing.
type RawDocument struct {
	// Filename is the sanitised base name; it is the document's unique key.
	Filename string

	// Content is the raw bytes as uploaded.
	Content []byte
}

// Chunk is a bounded, overlapping window of a document's normalised text.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// Source is the owning document's filename.
	Source string

	// Index is the 0-based position within the document's chunk sequence.
	Index int

	// Text is the trimmed window content. Never empty.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// ID returns the chunk's stable identity.
func (c Chunk) ID() string {
	return ChunkID(c.Source, c.Index)
}

// Metadata returns the typed metadata stored alongside the chunk.
func (c Chunk) Metadata() ChunkMetadata {
	return ChunkMetadata{Source: c.Source, ChunkID: c.Index}
}

// ChunkID builds the deterministic identity of a chunk.
// Re-ingesting a document produces the same IDs, so upserts overwrite.
func ChunkID(source string, index int) string {
	return source + chunkIDSeparator + strconv.Itoa(index)
}

// ParseChunkID splits a chunk ID into its source and index.
func ParseChunkID(id string) (string, int, error) {
	pos := strings.LastIndex(id, chunkIDSeparator)
	if pos <= 0 {
		return "", 0, fmt.Errorf("%w: malformed chunk id %q", ErrInvalidInput, id)
	}
	index, err := strconv.Atoi(id[pos+len(chunkIDSeparator):])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: malformed chunk id %q", ErrInvalidInput, id)
	}
	return id[:pos], index, nil
}

// ChunkMetadata is the metadata persisted with every index entry.
type ChunkMetadata struct {
	// Source is the owning document's filename.
	Source string `json:"source"`

	// ChunkID is the chunk's position within its document.
	ChunkID int `json:"chunk_id"`
}

// Validate checks the metadata before it crosses the index boundary.
func (m ChunkMetadata) Validate() error {
	if strings.TrimSpace(m.Source) == "" {
		return fmt.Errorf("%w: chunk metadata has empty source", ErrInvalidInput)
	}
	if m.ChunkID < 0 {
		return fmt.Errorf("%w: chunk metadata has negative chunk_id %d", ErrInvalidInput, m.ChunkID)
	}
	return nil
}

// Label renders the metadata as "source | chunk N".
func (m ChunkMetadata) Label() string {
	return fmt.Sprintf("%s | chunk %d", m.Source, m.ChunkID)
}

// ParseLabel reads a "source | chunk N" label back into metadata. Spacing
// around the separator and a trailing period are tolerated.
func ParseLabel(label string) (ChunkMetadata, error) {
	label = strings.TrimSuffix(strings.TrimSpace(label), ".")
	pos := strings.LastIndex(label, "|")
	if pos < 0 {
		return ChunkMetadata{}, fmt.Errorf("%w: malformed source label %q", ErrInvalidInput, label)
	}

	rest, ok := strings.CutPrefix(strings.TrimSpace(label[pos+1:]), "chunk")
	if !ok {
		return ChunkMetadata{}, fmt.Errorf("%w: malformed source label %q", ErrInvalidInput, label)
	}
	index, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return ChunkMetadata{}, fmt.Errorf("%w: malformed source label %q", ErrInvalidInput, label)
	}

	meta := ChunkMetadata{Source: strings.TrimSpace(label[:pos]), ChunkID: index}
	if err := meta.Validate(); err != nil {
		return ChunkMetadata{}, err
	}
	return meta, nil
}

// Match is a single entry returned by a similarity query.
type Match struct {
	// ID is the index entry identity.
	ID string

	// Text is the stored chunk text.
	Text string

	// Metadata identifies the chunk's document and position.
	Metadata ChunkMetadata

	// Distance is the metric distance to the query vector (lower is closer).
	Distance float64
}

// QueryResult is an ordered list of matches, best match first.
type QueryResult struct {
	Matches []Match
}

// Len returns the number of matches.
func (r QueryResult) Len() int {
	return len(r.Matches)
}

// IsEmpty reports whether the query matched nothing.
func (r QueryResult) IsEmpty() bool {
	return len(r.Matches) == 0
}

// Best returns the closest match. ok is false for an empty result.
func (r QueryResult) Best() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// SourceSummary reports how many chunks a document has in the index.
type SourceSummary struct {
	Source     string
	ChunkCount int
}

// Stats is the collection overview shown on the home screen.
type Stats struct {
	// Documents is the number of uploaded files.
	Documents int

	// Chunks is the number of entries in the vector index.
	Chunks int

	// TopK is the configured retrieval breadth.
	TopK int

	// Recent lists the first uploaded documents in name order.
	Recent []string

	// Indexed lists per-document chunk counts from the index.
	Indexed []SourceSummary
}
