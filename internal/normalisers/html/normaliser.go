package html

import (
	"context"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// hidden elements whose whole subtree is dropped.
var hidden = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".htm", ".html"}
}

// Normalise returns the document's visible text nodes separated by newlines.
// Entities are decoded. Malformed markup is tolerated.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	return extractText(normalisers.Decode(raw.Content)), nil
}

// extractText walks the token stream and collects non-blank text outside hidden elements.
func extractText(content string) string {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(content))

	var parts []string
	depth := 0
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			// io.EOF or a read error; either way keep what was read so far.
			return strings.Join(parts, "\n")

		case xhtml.StartTagToken:
			if hidden[tokenizer.Token().DataAtom] {
				depth++
			}

		case xhtml.EndTagToken:
			if hidden[tokenizer.Token().DataAtom] && depth > 0 {
				depth--
			}

		case xhtml.TextToken:
			if depth > 0 {
				continue
			}
			if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
