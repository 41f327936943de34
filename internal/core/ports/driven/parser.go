package driven

import (
	"context"
)

// DocumentParser converts an uploaded file into clean plain text.
// Dispatch is by filename extension, case-insensitive.
type DocumentParser interface {
	// Parse returns the normalised text of raw. Unsupported extensions return
	// a *domain.UnsupportedFormatError; malformed tabular content returns
	// domain.ErrInvalidInput.
	Parse(ctx context.Context, filename string, raw []byte) (string, error)

	// SupportedExtensions returns the accepted extensions, sorted, with leading dots.
	SupportedExtensions() []string
}
