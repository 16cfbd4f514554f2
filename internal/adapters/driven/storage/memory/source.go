// Package memory provides in-memory repository implementations used by
// tests and by components that need ephemeral storage.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// SourceStore is an in-memory SourceRepository.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source // keyed by id
}

var _ driven.SourceRepository = (*SourceStore)(nil)

// NewSourceStore creates an empty in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{sources: make(map[string]domain.Source)}
}

// List returns all sources, newest-modified first when requested.
func (s *SourceStore) List(_ context.Context, orderByModified bool) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]domain.Source, 0, len(s.sources))
	for _, source := range s.sources {
		sources = append(sources, cloneSource(source))
	}
	if orderByModified {
		sort.SliceStable(sources, func(i, j int) bool {
			return sources[i].ObjModified.After(sources[j].ObjModified)
		})
	}
	return sources, nil
}

// Get retrieves a source by id.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := cloneSource(source)
	return &clone, nil
}

// GetByURI retrieves a source by its unique URI.
func (s *SourceStore) GetByURI(_ context.Context, uri string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, source := range s.sources {
		if source.URI == uri {
			clone := cloneSource(source)
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UpsertMany inserts or refreshes drafts keyed by URI. The sticky error
// flag is cleared only when the draft's ObjModified advances past the
// stored one.
func (s *SourceStore) UpsertMany(_ context.Context, drafts []domain.Source) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byURI := make(map[string]string, len(s.sources))
	for id, source := range s.sources {
		byURI[source.URI] = id
	}

	var updated, inserted int
	now := time.Now()
	for _, draft := range drafts {
		if id, ok := byURI[draft.URI]; ok {
			existing := s.sources[id]
			if draft.ObjModified.After(existing.ObjModified) {
				existing.Error = false
				existing.ErrorMessage = ""
			}
			existing.ObjCreated = draft.ObjCreated
			existing.ObjModified = draft.ObjModified
			existing.ResolvedTo = draft.ResolvedTo
			existing.Title = draft.Title
			existing.LastChecked = now
			existing.Tags = cloneTags(draft.Tags)
			s.sources[id] = existing
			updated++
			continue
		}

		draft.ID = uuid.New().String()
		draft.LastChecked = now
		draft.LastProcessed = nil
		draft.Error = false
		draft.ErrorMessage = ""
		draft.Tags = cloneTags(draft.Tags)
		s.sources[draft.ID] = draft
		byURI[draft.URI] = draft.ID
		inserted++
	}
	return updated, inserted, nil
}

// UpdateStatus persists only the processing state of a source.
func (s *SourceStore) UpdateStatus(_ context.Context, source *domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sources[source.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if source.LastProcessed != nil {
		t := *source.LastProcessed
		existing.LastProcessed = &t
	} else {
		existing.LastProcessed = nil
	}
	existing.Error = source.Error
	existing.ErrorMessage = source.ErrorMessage
	existing.LastChecked = source.LastChecked
	s.sources[source.ID] = existing
	return nil
}

func cloneSource(source domain.Source) domain.Source {
	clone := source
	if source.LastProcessed != nil {
		t := *source.LastProcessed
		clone.LastProcessed = &t
	}
	clone.Tags = cloneTags(source.Tags)
	return clone
}

func cloneTags(tags []domain.Tag) []domain.Tag {
	if tags == nil {
		return nil
	}
	out := make([]domain.Tag, len(tags))
	copy(out, tags)
	return out
}
