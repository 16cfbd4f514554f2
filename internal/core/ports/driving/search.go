package driving

import (
	"context"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// SearchEngine answers semantic nearest-neighbour queries over the stored
// embeddings. Search is exhaustive by design: every filtered candidate is
// scored against the query vector.
type SearchEngine interface {
	// SearchChunks returns the k best-scoring embeddings. A single source
	// may contribute several results.
	SearchChunks(ctx context.Context, query string, filter domain.SearchFilter, k int) ([]domain.SearchResult, error)

	// SearchDocuments returns at most one result per source: its
	// best-scoring chunk, walking the score-descending order until k
	// distinct sources are collected or candidates are exhausted.
	SearchDocuments(ctx context.Context, query string, filter domain.SearchFilter, k int) ([]domain.SearchResult, error)

	// Histogram buckets embedded sources by calendar month of the chosen
	// date field, zero-filling every month between the earliest bucket and
	// now, ascending.
	Histogram(ctx context.Context, field domain.DateField) ([]domain.HistogramBucket, error)
}
