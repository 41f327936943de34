// Package tabular extracts text from delimited files such as CSV.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
)

// CellSeparator joins the non-empty cells of a row.
const CellSeparator = " | "

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV documents with a header row.
type Normaliser struct{}

// New creates a new tabular normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".csv"}
}

// Normalise renders each data row as its non-empty cells joined by CellSeparator.
// The header row is skipped, as are rows with no non-empty cell.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := normalisers.Decode(raw.Content)

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var lines []string
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if header {
			header = false
			continue
		}
		if line := joinRow(record); line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}

func joinRow(record []string) string {
	cells := make([]string, 0, len(record))
	for _, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, CellSeparator)
}

// detectDelimiter picks the most frequent of comma, semicolon and tab in the header line.
func detectDelimiter(content string) rune {
	headerLine := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		headerLine = content[:i]
	}
	best, bestCount := ',', strings.Count(headerLine, ",")
	for _, candidate := range []rune{';', '\t'} {
		if c := strings.Count(headerLine, string(candidate)); c > bestCount {
			best, bestCount = candidate, c
		}
	}
	return best
}
