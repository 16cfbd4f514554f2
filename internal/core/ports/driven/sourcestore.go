package driven

import (
	"context"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// SourceRepository persists sources. Backed by SQLite.
type SourceRepository interface {
	// List returns all sources, newest-modified first when orderByModified
	// is set.
	List(ctx context.Context, orderByModified bool) ([]domain.Source, error)

	// Get retrieves a source by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// GetByURI retrieves a source by its unique URI.
	// Returns domain.ErrNotFound if absent.
	GetByURI(ctx context.Context, uri string) (*domain.Source, error)

	// UpsertMany inserts or refreshes a batch of draft sources keyed by URI.
	// Existing rows get ObjCreated, ObjModified, Title, ResolvedTo,
	// LastChecked and Tags refreshed; LastProcessed is never touched, and
	// the error flag is cleared only when the draft's ObjModified advances
	// past the stored one. New rows are inserted unprocessed and error-free.
	// Returns how many rows were updated and inserted.
	UpsertMany(ctx context.Context, drafts []domain.Source) (updated, inserted int, err error)

	// UpdateStatus persists only the processing state of a source:
	// LastProcessed, Error, ErrorMessage and LastChecked.
	UpdateStatus(ctx context.Context, source *domain.Source) error
}
