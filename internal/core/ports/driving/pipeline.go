package driving

import (
	"context"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// Pipeline orchestrates ingestion and incremental processing of sources.
type Pipeline interface {
	// Ingest crawls root with the named handler and upserts the resulting
	// draft sources by URI. Safe to re-run after interruption.
	Ingest(ctx context.Context, handlerName, root string) (updated, inserted int, err error)

	// IngestSources consumes an already-running crawl. Drafts are upserted
	// in fixed-size batches; crawl errors are logged and skipped.
	IngestSources(ctx context.Context, drafts <-chan domain.Source, crawlErrs <-chan error) (updated, inserted int, err error)

	// ProcessPending chunks, embeds and stores every due source.
	// Each source is processed independently; per-source failures are
	// recorded as sticky error state and never block the rest of the batch.
	ProcessPending(ctx context.Context) (ok, failed int, err error)

	// Reindex ingests a single URI through the named handler and processes
	// it immediately, regardless of its previous error state.
	Reindex(ctx context.Context, handlerName, uri string) error

	// ReadChunkContent re-reads a source's live content and returns the
	// chunk at chunkIdx, re-chunked with the parameters recorded at
	// embedding time. Returns domain.ErrChunkIndexOutOfRange if the live
	// content no longer has that many chunks.
	ReadChunkContent(ctx context.Context, source *domain.Source, chunkIdx int) (string, error)

	// ReadEmbeddingContent resolves an embedding id to its source and live
	// chunk text.
	ReadEmbeddingContent(ctx context.Context, embeddingID string) (string, *domain.Source, error)

	// ClearError explicitly clears a source's sticky error state so the next
	// processing run selects it again.
	ClearError(ctx context.Context, sourceID string) error
}
