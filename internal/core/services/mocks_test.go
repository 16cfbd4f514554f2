package services

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semindex-cli/internal/connectors"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// hashEmbedder is a deterministic bag-of-words embedder: every word hashes
// into one of a few dimensions, so texts sharing words score higher than
// texts that don't. Vectors are unit-normalised per the provider contract.
type hashEmbedder struct {
	embedErr error
	calls    int
}

const hashEmbedderDims = 32

func (m *hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.calls++
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, hashEmbedderDims)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(word))
			v[h.Sum32()%hashEmbedderDims]++
		}
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if sum > 0 {
			norm := float32(math.Sqrt(sum))
			for j := range v {
				v[j] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *hashEmbedder) Dimensions() int              { return hashEmbedderDims }
func (m *hashEmbedder) ModelName() string            { return "hash-embed" }
func (m *hashEmbedder) Ping(_ context.Context) error { return nil }
func (m *hashEmbedder) Close() error                 { return nil }

var _ driven.EmbeddingProvider = (*hashEmbedder)(nil)

// stubHandler serves fixed content keyed by URI.
type stubHandler struct {
	connectors.Bound
	name     string
	contents map[string]string
	modified map[string]time.Time
	tags     map[string][]domain.Tag
	readErr  map[string]error
}

var _ driven.SourceHandler = (*stubHandler)(nil)

func newStubHandler(name string) *stubHandler {
	return &stubHandler{
		name:     name,
		contents: make(map[string]string),
		modified: make(map[string]time.Time),
		tags:     make(map[string][]domain.Tag),
		readErr:  make(map[string]error),
	}
}

func (h *stubHandler) add(uri, content string, modified time.Time) {
	h.contents[uri] = content
	h.modified[uri] = modified
}

func (h *stubHandler) Name() string          { return h.name }
func (h *stubHandler) SourceTypes() []string { return []string{"Document"} }

func (h *stubHandler) Crawl(ctx context.Context, _ string) (<-chan domain.Source, <-chan error) {
	drafts := make(chan domain.Source)
	errs := make(chan error)
	go func() {
		defer close(drafts)
		defer close(errs)

		uris := make([]string, 0, len(h.contents))
		for uri := range h.contents {
			uris = append(uris, uri)
		}
		sort.Strings(uris)
		for _, uri := range uris {
			draft, _ := h.IndexOne(ctx, uri)
			select {
			case drafts <- *draft:
			case <-ctx.Done():
				return
			}
		}
	}()
	return drafts, errs
}

func (h *stubHandler) IndexOne(_ context.Context, uri string) (*domain.Source, error) {
	modified := h.modified[uri]
	return &domain.Source{
		SourceHandlerID: h.Binding().HandlerID,
		SourceTypeID:    h.TypeID("Document"),
		URI:             uri,
		ResolvedTo:      "stub://" + uri,
		Title:           uri,
		ObjCreated:      modified,
		ObjModified:     modified,
		LastChecked:     time.Now(),
		Tags:            h.tags[uri],
	}, nil
}

func (h *stubHandler) Read(_ context.Context, source *domain.Source) (string, error) {
	if err := h.readErr[source.URI]; err != nil {
		return "", err
	}
	return h.contents[source.URI], nil
}

// --- Test environment ---

// testEnv assembles memory stores, a registered stub handler and the
// services under test.
type testEnv struct {
	sources    *memory.SourceStore
	embeddings *memory.EmbeddingStore
	registry   *memory.RegistryStore
	tags       *memory.TagStore
	resolver   *Resolver
	handler    *stubHandler
	provider   *hashEmbedder
	pipeline   *Pipeline
	search     *SearchEngine
}

func newTestEnv(t *testing.T, opts ...PipelineOption) *testEnv {
	t.Helper()

	sources := memory.NewSourceStore()
	embeddings := memory.NewEmbeddingStore(sources)
	registry := memory.NewRegistryStore(sources, embeddings)
	tags := memory.NewTagStore(sources, embeddings)

	resolver := NewResolver(registry)
	handler := newStubHandler("stub")
	require.NoError(t, resolver.Register(context.Background(), handler))

	provider := &hashEmbedder{}
	pipeline := NewPipeline(sources, embeddings, provider, resolver, opts...)
	search := NewSearchEngine(embeddings, sources, provider)

	return &testEnv{
		sources:    sources,
		embeddings: embeddings,
		registry:   registry,
		tags:       tags,
		resolver:   resolver,
		handler:    handler,
		provider:   provider,
		pipeline:   pipeline,
		search:     search,
	}
}

// ingestAll crawls the stub handler and waits for the upsert to finish.
func (env *testEnv) ingestAll(t *testing.T) {
	t.Helper()
	_, _, err := env.pipeline.Ingest(context.Background(), "stub", "/")
	require.NoError(t, err)
}

// processAll runs a full processing pass expecting no run-fatal error.
func (env *testEnv) processAll(t *testing.T) (int, int) {
	t.Helper()
	ok, failed, err := env.pipeline.ProcessPending(context.Background())
	require.NoError(t, err)
	return ok, failed
}
