package driven

import (
	"context"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// EmbeddingRepository persists embeddings. Backed by SQLite.
type EmbeddingRepository interface {
	// List returns all embeddings.
	List(ctx context.Context) ([]domain.Embedding, error)

	// ListFiltered returns the embeddings whose owning source passes every
	// set date bound and, when tagIDs is non-nil, holds at least one listed
	// tag. An empty filter returns the full set.
	ListFiltered(ctx context.Context, dates domain.DateFilter, tagIDs []string) ([]domain.Embedding, error)

	// ListBySourceID returns the embeddings owned by a source,
	// ordered by chunk index.
	ListBySourceID(ctx context.Context, sourceID string) ([]domain.Embedding, error)

	// Get retrieves an embedding by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Embedding, error)

	// CreateMany stores a batch of embeddings.
	CreateMany(ctx context.Context, embeddings []domain.Embedding) error

	// DeleteBySourceID removes all embeddings owned by a source and returns
	// how many were deleted.
	DeleteBySourceID(ctx context.Context, sourceID string) (int, error)
}
