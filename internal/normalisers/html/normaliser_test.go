package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func normalise(t *testing.T, content string) string {
	t.Helper()
	text, err := New().Normalise(context.Background(), &domain.RawDocument{
		Filename: "page.html",
		Content:  []byte(content),
	})
	require.NoError(t, err)
	return text
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".html", ".htm"}, New().Extensions())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyContent(t *testing.T) {
	assert.Empty(t, normalise(t, ""))
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "paragraphs become lines",
			content:  "<html><body><p>First</p><p>Second</p></body></html>",
			expected: "First\nSecond",
		},
		{
			name:     "title kept",
			content:  "<html><head><title>Conditions</title></head><body><h1>Article 1</h1></body></html>",
			expected: "Conditions\nArticle 1",
		},
		{
			name:     "script and style dropped",
			content:  "<p>Visible</p><script>var x = '<p>no</p>';</script><style>p{color:red}</style><p>Also</p>",
			expected: "Visible\nAlso",
		},
		{
			name:     "noscript template and svg dropped",
			content:  "<noscript>enable js</noscript><template><p>tpl</p></template><svg><text>chart</text></svg><p>Body</p>",
			expected: "Body",
		},
		{
			name:     "comments dropped",
			content:  "<p>Kept</p><!-- hidden note --><p>Too</p>",
			expected: "Kept\nToo",
		},
		{
			name:     "entities decoded",
			content:  "<p>Caf&eacute; &amp; th&#233;</p>",
			expected: "Café & thé",
		},
		{
			name:     "inline elements split text nodes",
			content:  "<p>Le <b>prestataire</b> paie.</p>",
			expected: "Le\nprestataire\npaie.",
		},
		{
			name:     "unclosed tags tolerated",
			content:  "<div><p>Open paragraph<div>Nested",
			expected: "Open paragraph\nNested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalise(t, tt.content))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
