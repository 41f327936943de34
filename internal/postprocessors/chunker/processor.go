// Package chunker splits normalised text into overlapping fixed-size windows.
//
// Sizes and offsets are counted in characters (runes), so a window never
// ends in the middle of a multi-byte character.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Window is a half-open character range [Start, End) of the input text.
type Window struct {
	Start int
	End   int
}

// Validate reports whether size and overlap allow the window to advance.
func Validate(size, overlap int) error {
	switch {
	case size <= 0:
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunking, size)
	case overlap < 0:
		return fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidChunking, overlap)
	case overlap >= size:
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidChunking, overlap, size)
	}
	return nil
}

// Windows returns the sliding windows over a text of length n.
// Each window spans [start, min(start+size, n)); the next one starts at
// end-overlap. The final window ends at n. Invalid parameters yield nil.
func Windows(n, size, overlap int) []Window {
	if n <= 0 || Validate(size, overlap) != nil {
		return nil
	}

	windows := make([]Window, 0, n/(size-overlap)+1)
	start := 0
	for start < n {
		end := min(start+size, n)
		windows = append(windows, Window{Start: start, End: end})
		if end == n {
			break
		}
		start = max(0, end-overlap)
	}
	return windows
}

// Split cuts text into trimmed, non-empty chunk strings in order.
// It is a pure function of its inputs; empty text yields nil.
func Split(text string, size, overlap int) []string {
	runes := []rune(text)
	var chunks []string
	for _, w := range Windows(len(runes), size, overlap) {
		if chunk := strings.TrimSpace(string(runes[w.Start:w.End])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Processor chunks documents with a fixed, validated configuration.
type Processor struct {
	chunkSize int
	overlap   int
}

// New creates a chunker. Returns domain.ErrInvalidChunking when overlap is
// negative or not smaller than size.
func New(size, overlap int) (*Processor, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}
	return &Processor{chunkSize: size, overlap: overlap}, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the window length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the overlap between adjacent windows.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits the text of one document into indexed chunks.
// Chunk indexes are consecutive from 0 over the emitted (non-empty) chunks.
func (p *Processor) Chunk(source, text string) []domain.Chunk {
	parts := Split(text, p.chunkSize, p.overlap)
	if len(parts) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			Source: source,
			Index:  i,
			Text:   part,
		}
	}
	return chunks
}
