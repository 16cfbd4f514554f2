package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// EmbeddingStore is an in-memory EmbeddingRepository. Filtering needs the
// source attributes, so the store holds a reference to the source store it
// shares a dataset with.
type EmbeddingStore struct {
	mu         sync.RWMutex
	embeddings map[string]domain.Embedding
	sources    *SourceStore
}

var _ driven.EmbeddingRepository = (*EmbeddingStore)(nil)

// NewEmbeddingStore creates an empty in-memory embedding store over the
// given source store.
func NewEmbeddingStore(sources *SourceStore) *EmbeddingStore {
	return &EmbeddingStore{
		embeddings: make(map[string]domain.Embedding),
		sources:    sources,
	}
}

// List returns all embeddings.
func (s *EmbeddingStore) List(_ context.Context) ([]domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	embeddings := make([]domain.Embedding, 0, len(s.embeddings))
	for _, e := range s.embeddings {
		embeddings = append(embeddings, cloneEmbedding(e))
	}
	return embeddings, nil
}

// ListFiltered returns the embeddings whose source passes the date bounds
// and, when tagIDs is non-nil, holds at least one listed tag.
func (s *EmbeddingStore) ListFiltered(ctx context.Context, dates domain.DateFilter, tagIDs []string) ([]domain.Embedding, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if dates.Empty() && tagIDs == nil {
		return all, nil
	}

	wanted := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		wanted[id] = struct{}{}
	}

	filtered := make([]domain.Embedding, 0, len(all))
	for _, e := range all {
		source, err := s.sources.Get(ctx, e.SourceID)
		if err != nil {
			continue
		}
		if !dates.Matches(source) {
			continue
		}
		if tagIDs != nil && !holdsAny(source.Tags, wanted) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

// ListBySourceID returns a source's embeddings ordered by chunk index.
func (s *EmbeddingStore) ListBySourceID(_ context.Context, sourceID string) ([]domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	embeddings := make([]domain.Embedding, 0)
	for _, e := range s.embeddings {
		if e.SourceID == sourceID {
			embeddings = append(embeddings, cloneEmbedding(e))
		}
	}
	sort.Slice(embeddings, func(i, j int) bool {
		return embeddings[i].ChunkIdx < embeddings[j].ChunkIdx
	})
	return embeddings, nil
}

// Get retrieves an embedding by id.
func (s *EmbeddingStore) Get(_ context.Context, id string) (*domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.embeddings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := cloneEmbedding(e)
	return &clone, nil
}

// CreateMany stores a batch of embeddings.
func (s *EmbeddingStore) CreateMany(_ context.Context, embeddings []domain.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range embeddings {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		s.embeddings[e.ID] = cloneEmbedding(e)
	}
	return nil
}

// DeleteBySourceID removes all embeddings owned by a source.
func (s *EmbeddingStore) DeleteBySourceID(_ context.Context, sourceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int
	for id, e := range s.embeddings {
		if e.SourceID == sourceID {
			delete(s.embeddings, id)
			deleted++
		}
	}
	return deleted, nil
}

func cloneEmbedding(e domain.Embedding) domain.Embedding {
	clone := e
	if e.Vector != nil {
		clone.Vector = make([]float32, len(e.Vector))
		copy(clone.Vector, e.Vector)
	}
	return clone
}

func holdsAny(tags []domain.Tag, wanted map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := wanted[tag.ID]; ok {
			return true
		}
	}
	return false
}
