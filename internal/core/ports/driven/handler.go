package driven

import (
	"context"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// SourceHandler produces draft sources from a content root and reads the
// live text of a source. One implementation exists per supported source kind
// (filesystem, issue tracker). Persisted sources reference their handler
// only by the bound record id; the resolver maps that id back to the
// in-process instance.
type SourceHandler interface {
	// Name returns the unique handler name (e.g. "file", "github").
	Name() string

	// SourceTypes returns the source-type names this handler declares.
	// A type record is created per name at registration time.
	SourceTypes() []string

	// Bind stamps the persisted handler and type ids onto the instance.
	// Called exactly once, by the resolver, during registration.
	Bind(binding domain.HandlerBinding)

	// Binding returns the ids set by Bind. Zero value before registration.
	Binding() domain.HandlerBinding

	// Crawl lazily produces draft sources under root.
	// Both channels are closed when the crawl finishes; errors reported on
	// the second channel are per-item and do not end the crawl.
	Crawl(ctx context.Context, root string) (<-chan domain.Source, <-chan error)

	// Read returns the live text content of a source.
	Read(ctx context.Context, source *domain.Source) (string, error)

	// IndexOne builds a draft source for a single URI, for targeted
	// re-ingestion.
	IndexOne(ctx context.Context, uri string) (*domain.Source, error)
}
