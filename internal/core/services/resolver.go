package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// Resolver is the registry binding persisted handler identities to
// in-process handler instances. Persisted sources carry only a handler
// record id, never a behaviour reference; the resolver is the sole bridge
// from that id back to a capability object.
type Resolver struct {
	registry driven.RegistryRepository

	mu     sync.RWMutex
	byID   map[string]driven.SourceHandler
	byName map[string]driven.SourceHandler // keyed by lower-cased name
}

// NewResolver creates an empty resolver over the given registry store.
func NewResolver(registry driven.RegistryRepository) *Resolver {
	return &Resolver{
		registry: registry,
		byID:     make(map[string]driven.SourceHandler),
		byName:   make(map[string]driven.SourceHandler),
	}
}

// Register gets-or-creates the handler's identity record and one type record
// per declared source-type name, binds the resulting ids onto the handler
// instance, and adds it to the registry. Idempotent across runs: repeated
// registration of the same handler name rebinds the same records.
func (r *Resolver) Register(ctx context.Context, handler driven.SourceHandler) error {
	record, err := r.registry.GetOrCreateHandler(ctx, handler.Name())
	if err != nil {
		return fmt.Errorf("register handler %q: %w", handler.Name(), err)
	}

	binding := domain.HandlerBinding{
		HandlerID: record.ID,
		TypeIDs:   make(map[string]string, len(handler.SourceTypes())),
	}
	for _, typeName := range handler.SourceTypes() {
		typeRecord, err := r.registry.GetOrCreateType(ctx, typeName, record.ID)
		if err != nil {
			return fmt.Errorf("register type %q for handler %q: %w", typeName, handler.Name(), err)
		}
		binding.TypeIDs[typeName] = typeRecord.ID
	}
	handler.Bind(binding)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.ID] = handler
	r.byName[strings.ToLower(handler.Name())] = handler
	return nil
}

// FindFor returns the handler instance bound to the source's handler id.
// A miss means a persisted source exists without a registered handler -
// a data/registration inconsistency reported as
// domain.ErrHandlerNotRegistered.
func (r *Resolver) FindFor(source *domain.Source) (driven.SourceHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.byID[source.SourceHandlerID]
	if !ok {
		return nil, fmt.Errorf("%w: source %s references handler id %q",
			domain.ErrHandlerNotRegistered, source.URI, source.SourceHandlerID)
	}
	return handler, nil
}

// HandlerByName returns a registered handler by name, case-insensitively.
// Used for operator-driven handler selection in targeted ingestion.
func (r *Resolver) HandlerByName(name string) (driven.SourceHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: no handler named %q", domain.ErrHandlerNotRegistered, name)
	}
	return handler, nil
}

// Handlers returns the registered handlers sorted by name.
func (r *Resolver) Handlers() []driven.SourceHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make([]driven.SourceHandler, 0, len(r.byID))
	for _, h := range r.byID {
		handlers = append(handlers, h)
	}
	sort.Slice(handlers, func(i, j int) bool {
		return handlers[i].Name() < handlers[j].Name()
	})
	return handlers
}
