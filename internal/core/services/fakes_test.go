package services

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/html"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/normalisers/tabular"
)

const testDims = 4

// fakeEmbedder returns fixed vectors for known texts and a stable hash-based
// vector for anything else.
type fakeEmbedder struct {
	vectors    map[string][]float32
	dims       int
	err        error
	embedCalls int
	batchCalls int
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32), dims: testDims}
}

func (f *fakeEmbedder) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	v := make([]float32, f.dims)
	for i := range v {
		v[i] = float32((seed>>(i*8))&0xff) + 1
	}
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLLM records the last completion request and returns a canned reply.
type fakeLLM struct {
	reply  string
	err    error
	calls  int
	system string
	user   string
	opts   driven.CompletionOptions
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Complete(_ context.Context, system, user string, opts driven.CompletionOptions) (string, error) {
	f.calls++
	f.system, f.user, f.opts = system, user, opts
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// recordingIndex counts writes on top of the in-memory index.
type recordingIndex struct {
	*memory.VectorIndex
	upserts   int
	lastIDs   []string
	lastTexts []string
	lastMetas []domain.ChunkMetadata
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{VectorIndex: memory.NewVectorIndex(domain.DistanceL2)}
}

func (r *recordingIndex) Upsert(
	ctx context.Context, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata,
) error {
	r.upserts++
	r.lastIDs, r.lastTexts, r.lastMetas = ids, texts, metas
	return r.VectorIndex.Upsert(ctx, ids, texts, vectors, metas)
}

func (r *recordingIndex) ReplaceSource(
	ctx context.Context, source string, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata,
) (int, error) {
	r.upserts++
	r.lastIDs, r.lastTexts, r.lastMetas = ids, texts, metas
	return r.VectorIndex.ReplaceSource(ctx, source, ids, texts, vectors, metas)
}

func newTestParser() *normalisers.Registry {
	return normalisers.NewRegistry(plaintext.New(), tabular.New(), html.New())
}

func newTestIngestion(t *testing.T, embedder driven.EmbeddingService, index driven.VectorIndex) *IngestionService {
	t.Helper()
	svc, err := NewIngestionService(newTestParser(), embedder, index, domain.DefaultSettings().Retrieval)
	require.NoError(t, err)
	return svc
}

// groundedReply builds a well-formed three-line reply.
func groundedReply(answer, quote, source string) string {
	return strings.Join([]string{
		domain.MarkerAnswer + " " + answer,
		domain.MarkerEvidence + " \"" + quote + "\"",
		domain.MarkerSource + " " + source,
	}, "\n")
}
