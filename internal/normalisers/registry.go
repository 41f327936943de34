package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.DocumentParser = (*Registry)(nil)

// Registry dispatches parsing to the normaliser registered for a file extension.
type Registry struct {
	byExt map[string]driven.Normaliser
}

// NewRegistry creates a registry with the given normalisers.
// A later normaliser replaces an earlier one for the same extension.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byExt: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser for each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.Extensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// SupportedExtensions returns the registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parse extracts and normalises the text of raw according to its extension.
func (r *Registry) Parse(ctx context.Context, filename string, raw []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	n, ok := r.byExt[ext]
	if !ok {
		return "", &domain.UnsupportedFormatError{
			Extension: ext,
			Supported: r.SupportedExtensions(),
		}
	}

	text, err := n.Normalise(ctx, &domain.RawDocument{Filename: filename, Content: raw})
	if err != nil {
		return "", fmt.Errorf("normalise %s: %w", filename, err)
	}

	cleaned := Clean(text)
	logger.Debug("parsed %s (%s): %d bytes -> %d characters", filename, ext, len(raw), len([]rune(cleaned)))
	return cleaned, nil
}
