package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// RegistryStore is an in-memory RegistryRepository. Counting embedded
// sources needs the shared dataset, so it holds the source and embedding
// stores it belongs with.
type RegistryStore struct {
	mu         sync.Mutex
	handlers   map[string]domain.HandlerRecord    // keyed by name
	types      map[string]domain.SourceTypeRecord // keyed by handlerID+"/"+name
	sources    *SourceStore
	embeddings *EmbeddingStore
}

var _ driven.RegistryRepository = (*RegistryStore)(nil)

// NewRegistryStore creates an empty in-memory registry over the given
// stores.
func NewRegistryStore(sources *SourceStore, embeddings *EmbeddingStore) *RegistryStore {
	return &RegistryStore{
		handlers:   make(map[string]domain.HandlerRecord),
		types:      make(map[string]domain.SourceTypeRecord),
		sources:    sources,
		embeddings: embeddings,
	}
}

// GetOrCreateHandler returns the handler record by name, creating it if
// absent.
func (s *RegistryStore) GetOrCreateHandler(_ context.Context, name string) (*domain.HandlerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.handlers[name]; ok {
		return &record, nil
	}
	record := domain.HandlerRecord{ID: uuid.New().String(), Name: name}
	s.handlers[name] = record
	return &record, nil
}

// GetOrCreateType returns the source-type record scoped to a handler,
// creating it if absent.
func (s *RegistryStore) GetOrCreateType(_ context.Context, name, handlerID string) (*domain.SourceTypeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := handlerID + "/" + name
	if record, ok := s.types[key]; ok {
		return &record, nil
	}
	record := domain.SourceTypeRecord{ID: uuid.New().String(), Name: name, SourceHandlerID: handlerID}
	s.types[key] = record
	return &record, nil
}

// ListTypeCounts returns every source type with its distinct embedded
// source count, ordered by name.
func (s *RegistryStore) ListTypeCounts(ctx context.Context) ([]domain.TypeCount, error) {
	embedded, err := embeddedSourceIDs(ctx, s.embeddings)
	if err != nil {
		return nil, err
	}
	sources, err := s.sources.List(ctx, false)
	if err != nil {
		return nil, err
	}

	byType := make(map[string]int)
	for _, source := range sources {
		if _, ok := embedded[source.ID]; ok {
			byType[source.SourceTypeID]++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make([]domain.TypeCount, 0, len(s.types))
	for _, record := range s.types {
		counts = append(counts, domain.TypeCount{Type: record, Count: byType[record.ID]})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Type.Name < counts[j].Type.Name
	})
	return counts, nil
}

func embeddedSourceIDs(ctx context.Context, embeddings *EmbeddingStore) (map[string]struct{}, error) {
	all, err := embeddings.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(all))
	for _, e := range all {
		ids[e.SourceID] = struct{}{}
	}
	return ids, nil
}
