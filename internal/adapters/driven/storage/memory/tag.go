package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// TagStore is an in-memory TagRepository over the shared dataset.
type TagStore struct {
	mu         sync.Mutex
	tags       map[string]domain.Tag // keyed by name
	sources    *SourceStore
	embeddings *EmbeddingStore
}

var _ driven.TagRepository = (*TagStore)(nil)

// NewTagStore creates an empty in-memory tag store over the given stores.
func NewTagStore(sources *SourceStore, embeddings *EmbeddingStore) *TagStore {
	return &TagStore{
		tags:       make(map[string]domain.Tag),
		sources:    sources,
		embeddings: embeddings,
	}
}

// GetOrCreate returns the tag by name, creating it if absent.
func (s *TagStore) GetOrCreate(_ context.Context, name string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag, ok := s.tags[name]; ok {
		return &tag, nil
	}
	tag := domain.Tag{ID: uuid.New().String(), Name: name}
	s.tags[name] = tag
	return &tag, nil
}

// List returns all tags ordered by name.
func (s *TagStore) List(_ context.Context) ([]domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := make([]domain.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// ListCounted returns tags on embedded sources with distinct source counts,
// most used first.
func (s *TagStore) ListCounted(ctx context.Context) ([]domain.TagCount, error) {
	embedded, err := embeddedSourceIDs(ctx, s.embeddings)
	if err != nil {
		return nil, err
	}
	sources, err := s.sources.List(ctx, false)
	if err != nil {
		return nil, err
	}

	byTag := make(map[string]int)
	for _, source := range sources {
		if _, ok := embedded[source.ID]; !ok {
			continue
		}
		for _, tag := range source.Tags {
			byTag[tag.ID]++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make([]domain.TagCount, 0, len(byTag))
	for _, tag := range s.tags {
		if n, ok := byTag[tag.ID]; ok {
			counts = append(counts, domain.TagCount{Tag: tag, Count: n})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag.Name < counts[j].Tag.Name
	})
	return counts, nil
}
