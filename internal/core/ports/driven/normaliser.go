package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser extracts text from one document format.
// The DocumentParser registry selects a normaliser by file extension and
// applies the shared whitespace normalisation to its output.
type Normaliser interface {
	// Extensions returns the lower-cased extensions (with leading dot) this normaliser handles.
	Extensions() []string

	// Normalise extracts plain text from the raw document. Content problems
	// such as invalid byte sequences are tolerated, never fatal.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)
}
