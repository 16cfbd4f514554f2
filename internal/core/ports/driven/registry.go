package driven

import (
	"context"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// RegistryRepository persists handler and source-type identity records.
// Records are created idempotently at resolver registration time.
type RegistryRepository interface {
	// GetOrCreateHandler returns the handler record with the given name,
	// creating it if absent.
	GetOrCreateHandler(ctx context.Context, name string) (*domain.HandlerRecord, error)

	// GetOrCreateType returns the source-type record with the given name
	// scoped to a handler, creating it if absent.
	GetOrCreateType(ctx context.Context, name, handlerID string) (*domain.SourceTypeRecord, error)

	// ListTypeCounts returns every source type with the number of distinct
	// embedded sources of that type, ordered by type name.
	ListTypeCounts(ctx context.Context) ([]domain.TypeCount, error)
}

// TagRepository persists tags, an independent filter axis on sources.
type TagRepository interface {
	// GetOrCreate returns the tag with the given name, creating it if absent.
	GetOrCreate(ctx context.Context, name string) (*domain.Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]domain.Tag, error)

	// ListCounted returns tags held by at least one embedded source with
	// their distinct source counts, most used first.
	ListCounted(ctx context.Context) ([]domain.TagCount, error)
}
