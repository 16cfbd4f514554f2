package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driving"
	"github.com/custodia-labs/semindex-cli/internal/logger"
)

// Ensure SearchEngine implements the interface.
var _ driving.SearchEngine = (*SearchEngine)(nil)

// SearchEngine executes filtered brute-force KNN queries against the
// embedding store. Candidates are always read from the store per call;
// there is no in-memory snapshot to invalidate, so a query sees whatever
// the last committed write left behind.
type SearchEngine struct {
	embeddings driven.EmbeddingRepository
	sources    driven.SourceRepository
	provider   driven.EmbeddingProvider
}

// NewSearchEngine creates a search engine over the given stores and
// embedding provider.
func NewSearchEngine(
	embeddings driven.EmbeddingRepository,
	sources driven.SourceRepository,
	provider driven.EmbeddingProvider,
) *SearchEngine {
	return &SearchEngine{
		embeddings: embeddings,
		sources:    sources,
		provider:   provider,
	}
}

// scoredEmbedding pairs a candidate with its similarity to the query.
type scoredEmbedding struct {
	embedding domain.Embedding
	score     float32
}

// rank returns all filtered candidates sorted by similarity descending.
// Tie order among equal scores is whatever the stable sort preserves.
// An empty candidate set short-circuits before the query is embedded.
func (e *SearchEngine) rank(ctx context.Context, query string, filter domain.SearchFilter) ([]scoredEmbedding, error) {
	candidates, err := e.embeddings.ListFiltered(ctx, filter.Dates, filter.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	vectors, err := e.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := vectors[0]

	// Vectors are contractually unit-normalised by the provider, so the dot
	// product is the cosine similarity. Never re-normalised here.
	scored := make([]scoredEmbedding, len(candidates))
	for i, c := range candidates {
		scored[i] = scoredEmbedding{embedding: c, score: dot(queryVector, c.Vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	logger.Debug("Scored %d candidates for query %q", len(scored), query)
	return scored, nil
}

// sourceLookup maps source ids to sources for result hydration.
func (e *SearchEngine) sourceLookup(ctx context.Context) (map[string]domain.Source, error) {
	sources, err := e.sources.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	lookup := make(map[string]domain.Source, len(sources))
	for _, s := range sources {
		lookup[s.ID] = s
	}
	return lookup, nil
}

// SearchChunks returns the top-k candidates directly; several chunks of the
// same source may appear.
func (e *SearchEngine) SearchChunks(ctx context.Context, query string, filter domain.SearchFilter, k int) ([]domain.SearchResult, error) {
	scored, err := e.rank(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, k)
	if len(scored) == 0 {
		return results, nil
	}

	lookup, err := e.sourceLookup(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range scored {
		if len(results) >= k {
			break
		}
		source, ok := lookup[s.embedding.SourceID]
		if !ok {
			continue
		}
		results = append(results, domain.SearchResult{
			Source:     source,
			Embedding:  s.embedding,
			Similarity: s.score,
		})
	}
	return results, nil
}

// SearchDocuments walks the full score-descending order and keeps only the
// first (highest-scoring) embedding per source, until k distinct sources
// are collected or candidates run out. A document's score is therefore the
// maximum of its chunk scores.
func (e *SearchEngine) SearchDocuments(ctx context.Context, query string, filter domain.SearchFilter, k int) ([]domain.SearchResult, error) {
	scored, err := e.rank(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, k)
	if len(scored) == 0 {
		return results, nil
	}

	lookup, err := e.sourceLookup(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, k)
	for _, s := range scored {
		if len(results) >= k {
			break
		}
		if _, dup := seen[s.embedding.SourceID]; dup {
			continue
		}
		source, ok := lookup[s.embedding.SourceID]
		if !ok {
			continue
		}
		seen[s.embedding.SourceID] = struct{}{}
		results = append(results, domain.SearchResult{
			Source:     source,
			Embedding:  s.embedding,
			Similarity: s.score,
		})
	}
	return results, nil
}

// Histogram buckets every source owning at least one embedding by calendar
// month of the chosen date field. Months between the global earliest bucket
// and now are zero-filled so the series has no gaps; buckets are ascending.
func (e *SearchEngine) Histogram(ctx context.Context, field domain.DateField) ([]domain.HistogramBucket, error) {
	embeddings, err := e.embeddings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	if len(embeddings) == 0 {
		return []domain.HistogramBucket{}, nil
	}
	embedded := make(map[string]struct{}, len(embeddings))
	for _, emb := range embeddings {
		embedded[emb.SourceID] = struct{}{}
	}

	lookup, err := e.sourceLookup(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Time]int)
	var earliest time.Time
	for id := range embedded {
		source, ok := lookup[id]
		if !ok {
			continue
		}
		date := source.ObjCreated
		if field == domain.DateFieldModified {
			date = source.ObjModified
		}
		month := monthOf(date)
		counts[month]++
		if earliest.IsZero() || month.Before(earliest) {
			earliest = month
		}
	}
	if earliest.IsZero() {
		return []domain.HistogramBucket{}, nil
	}

	last := monthOf(time.Now())
	buckets := make([]domain.HistogramBucket, 0, len(counts))
	for month := earliest; !month.After(last); month = month.AddDate(0, 1, 0) {
		buckets = append(buckets, domain.HistogramBucket{Month: month, Count: counts[month]})
	}
	return buckets, nil
}

// monthOf truncates a time to the first instant of its calendar month, UTC.
func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// dot computes the dot product of two vectors. Mismatched lengths score
// only the shared prefix; the provider guarantees uniform dimensions.
func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
