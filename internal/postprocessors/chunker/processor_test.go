package chunker

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		p, err := New(DefaultChunkSize, DefaultChunkOverlap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ChunkSize() != 1200 {
			t.Errorf("expected chunkSize 1200, got %d", p.ChunkSize())
		}
		if p.Overlap() != 150 {
			t.Errorf("expected overlap 150, got %d", p.Overlap())
		}
	})

	invalid := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if !errors.Is(err, domain.ErrInvalidChunking) {
				t.Errorf("expected ErrInvalidChunking, got %v", err)
			}
		})
	}
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New(10, 2)
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestSplit_EmptyText(t *testing.T) {
	for _, params := range [][2]int{{1200, 150}, {1, 0}, {10, 9}} {
		if chunks := Split("", params[0], params[1]); len(chunks) != 0 {
			t.Errorf("expected no chunks for %v, got %d", params, len(chunks))
		}
	}
}

func TestSplit_InvalidParametersYieldNothing(t *testing.T) {
	if chunks := Split("some text", 5, 5); chunks != nil {
		t.Errorf("expected nil, got %v", chunks)
	}
}

func TestSplit_ShortText(t *testing.T) {
	chunks := Split("  short text  ", 1200, 150)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("expected single trimmed chunk, got %q", chunks)
	}
}

func TestSplit_WhitespaceOnlyWindowsDropped(t *testing.T) {
	text := "abc" + strings.Repeat(" ", 20) + "xyz"
	chunks := Split(text, 5, 1)
	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Fatalf("whitespace-only chunk emitted: %q", chunks)
		}
	}
	if chunks[0] != "abc" || !strings.HasSuffix(chunks[len(chunks)-1], "z") {
		t.Errorf("unexpected boundaries: %q", chunks)
	}
}

func TestWindows_2500Characters(t *testing.T) {
	windows := Windows(2500, 1200, 150)
	expected := []Window{{0, 1200}, {1050, 2250}, {2100, 2500}}
	if len(windows) != len(expected) {
		t.Fatalf("expected %d windows, got %d: %v", len(expected), len(windows), windows)
	}
	for i := range expected {
		if windows[i] != expected[i] {
			t.Errorf("window %d: expected %v, got %v", i, expected[i], windows[i])
		}
	}
}

func TestSplit_2500Characters(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2500; i++ {
		b.WriteByte('a' + byte(i%26))
	}
	text := b.String()

	chunks := Split(text, 1200, 150)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1] != text[1050:2250] {
		t.Error("chunk 2 should start at character 1050")
	}
	if chunks[2] != text[2100:] {
		t.Error("chunk 3 should start at character 2100")
	}
}

func TestWindows_ReconstructText(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcdéà€ \n\t日本")

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(400)
		size := rng.Intn(50) + 1
		overlap := rng.Intn(size)

		runes := make([]rune, n)
		for i := range runes {
			runes[i] = alphabet[rng.Intn(len(alphabet))]
		}

		windows := Windows(n, size, overlap)
		var rebuilt []rune
		for i, w := range windows {
			part := runes[w.Start:w.End]
			if i > 0 {
				part = part[overlap:]
			}
			rebuilt = append(rebuilt, part...)
		}

		if string(rebuilt) != string(runes) {
			t.Fatalf("trial %d (n=%d size=%d overlap=%d): reconstruction mismatch", trial, n, size, overlap)
		}
		for i := 1; i < len(windows); i++ {
			if windows[i].Start != windows[i-1].End-overlap {
				t.Fatalf("trial %d: window %d does not overlap by %d", trial, i, overlap)
			}
		}
		if n > 0 && windows[len(windows)-1].End != n {
			t.Fatalf("trial %d: final window does not reach the end", trial)
		}
	}
}

func TestSplit_MultiByteCharacters(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := Split(text, 4, 1)
	for _, c := range chunks {
		if !strings.HasPrefix(c, "é") || strings.ContainsRune(c, '�') {
			t.Fatalf("chunk split a character: %q", c)
		}
	}
	if len([]rune(chunks[0])) != 4 {
		t.Errorf("expected 4 characters, got %d", len([]rune(chunks[0])))
	}
}

func TestProcessor_Chunk(t *testing.T) {
	p, err := New(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	chunks := p.Chunk("doc.txt", "0123456789abcdefghij")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i || c.Source != "doc.txt" {
			t.Errorf("chunk %d has index %d source %q", i, c.Index, c.Source)
		}
	}
	if chunks[1].Text != "89abcdefgh" {
		t.Errorf("unexpected second chunk %q", chunks[1].Text)
	}
	if chunks[2].ID() != "doc.txt::chunk_2" {
		t.Errorf("unexpected id %q", chunks[2].ID())
	}
}

func TestProcessor_Chunk_Deterministic(t *testing.T) {
	p, _ := New(7, 3)
	text := "Le contrat prend effet à la signature des parties."
	first := p.Chunk("a.txt", text)
	second := p.Chunk("a.txt", text)
	if len(first) != len(second) {
		t.Fatal("chunk counts differ")
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].ID() != second[i].ID() {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}
