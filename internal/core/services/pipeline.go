package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/semindex-cli/internal/chunker"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driving"
	"github.com/custodia-labs/semindex-cli/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// DefaultIngestBatchSize is how many draft sources are upserted per commit.
const DefaultIngestBatchSize = 100

// Pipeline orchestrates ingestion (upserting draft sources) and processing
// (chunk, embed, store) with change detection and per-source error
// isolation. Only one processing run should execute at a time over a given
// source set; searches are safe to run concurrently with it.
type Pipeline struct {
	sources    driven.SourceRepository
	embeddings driven.EmbeddingRepository
	provider   driven.EmbeddingProvider
	resolver   *Resolver

	chunkSize    int
	chunkOverlap int
	ingestBatch  int
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithChunkSize sets the chunk width in characters.
func WithChunkSize(size int) PipelineOption {
	return func(p *Pipeline) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between chunks in characters.
func WithChunkOverlap(overlap int) PipelineOption {
	return func(p *Pipeline) {
		if overlap >= 0 {
			p.chunkOverlap = overlap
		}
	}
}

// WithIngestBatchSize sets the upsert commit batch size.
func WithIngestBatchSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.ingestBatch = n
		}
	}
}

// NewPipeline creates a processing pipeline.
func NewPipeline(
	sources driven.SourceRepository,
	embeddings driven.EmbeddingRepository,
	provider driven.EmbeddingProvider,
	resolver *Resolver,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		sources:      sources,
		embeddings:   embeddings,
		provider:     provider,
		resolver:     resolver,
		chunkSize:    chunker.DefaultSize,
		chunkOverlap: chunker.DefaultOverlap,
		ingestBatch:  DefaultIngestBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest crawls root with the named handler and upserts the drafts.
func (p *Pipeline) Ingest(ctx context.Context, handlerName, root string) (int, int, error) {
	handler, err := p.resolver.HandlerByName(handlerName)
	if err != nil {
		return 0, 0, err
	}
	drafts, crawlErrs := handler.Crawl(ctx, root)
	return p.IngestSources(ctx, drafts, crawlErrs)
}

// IngestSources consumes a lazily produced crawl and upserts drafts by URI
// in fixed-size batches. Idempotent per URI, so an interrupted ingest can
// simply be re-run. Crawl errors are per-item: logged and skipped.
func (p *Pipeline) IngestSources(ctx context.Context, drafts <-chan domain.Source, crawlErrs <-chan error) (int, int, error) {
	var updated, inserted int
	batch := make([]domain.Source, 0, p.ingestBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		u, i, err := p.sources.UpsertMany(ctx, batch)
		if err != nil {
			return fmt.Errorf("upsert sources: %w", err)
		}
		updated += u
		inserted += i
		batch = batch[:0]
		return nil
	}

	for drafts != nil || crawlErrs != nil {
		select {
		case draft, ok := <-drafts:
			if !ok {
				drafts = nil
				continue
			}
			batch = append(batch, draft)
			if len(batch) >= p.ingestBatch {
				if err := flush(); err != nil {
					return updated, inserted, err
				}
			}
		case err, ok := <-crawlErrs:
			if !ok {
				crawlErrs = nil
				continue
			}
			logger.Warn("Crawl error: %v", err)
		case <-ctx.Done():
			return updated, inserted, ctx.Err()
		}
	}

	if err := flush(); err != nil {
		return updated, inserted, err
	}
	logger.Info("Ingest complete: %d updated, %d inserted", updated, inserted)
	return updated, inserted, nil
}

// ProcessPending selects every due source and processes each one
// independently. The work-set is re-derived from persisted state, never
// from a job cursor, so an interrupted run resumes correctly on the next
// invocation. Per-source failures become sticky error state; infrastructure
// failures (store or provider outage, unregistered handler, bad chunking
// configuration) abort the run.
func (p *Pipeline) ProcessPending(ctx context.Context) (int, int, error) {
	sources, err := p.sources.List(ctx, true)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: list sources: %v", domain.ErrProviderUnavailable, err)
	}

	todo := make([]domain.Source, 0, len(sources))
	for _, s := range sources {
		if s.Pending() {
			todo = append(todo, s)
		}
	}
	logger.Info("Processing: %d sources due, %d skipped", len(todo), len(sources)-len(todo))

	var ok, failed int
	for i := range todo {
		source := &todo[i]
		if err := p.processSource(ctx, source); err != nil {
			if isRunFatal(err) {
				return ok, failed, err
			}
			failed++
			if recordErr := p.recordFailure(ctx, source, err); recordErr != nil {
				return ok, failed, recordErr
			}
			logger.Warn("Processing %s failed: %v", source.URI, err)
			continue
		}
		ok++
	}
	logger.Info("Processing complete: %d ok, %d failed", ok, failed)
	return ok, failed, nil
}

// processSource runs one full chunk-embed-store pass for a source.
// Stale embeddings are deleted up front, so a reprocessing attempt can never
// leave vectors from two content versions behind; the source may transiently
// have none.
func (p *Pipeline) processSource(ctx context.Context, source *domain.Source) error {
	if _, err := p.embeddings.DeleteBySourceID(ctx, source.ID); err != nil {
		return fmt.Errorf("%w: delete embeddings: %v", domain.ErrProviderUnavailable, err)
	}

	handler, err := p.resolver.FindFor(source)
	if err != nil {
		return err
	}

	text, err := handler.Read(ctx, source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	text = chunker.Normalize(text)
	if text == "" {
		return fmt.Errorf("%w: %s", domain.ErrEmptyContent, source.URI)
	}

	chunks, err := chunker.Split(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return err
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.provider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("provider returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	rows := make([]domain.Embedding, len(chunks))
	for i, c := range chunks {
		rows[i] = domain.Embedding{
			ID:           uuid.New().String(),
			SourceID:     source.ID,
			Vector:       vectors[i],
			ChunkIdx:     c.Index,
			ChunkSize:    p.chunkSize,
			ChunkOverlap: p.chunkOverlap,
		}
	}
	if err := p.embeddings.CreateMany(ctx, rows); err != nil {
		return fmt.Errorf("%w: store embeddings: %v", domain.ErrProviderUnavailable, err)
	}

	// LastProcessed records the content version just processed, not
	// wall-clock time: a source edited again mid-run stays pending.
	processed := source.ObjModified
	source.LastProcessed = &processed
	source.Error = false
	source.ErrorMessage = ""
	source.LastChecked = time.Now()
	if err := p.sources.UpdateStatus(ctx, source); err != nil {
		return fmt.Errorf("%w: update source: %v", domain.ErrProviderUnavailable, err)
	}

	logger.Debug("Processed %s: %d chunks", source.URI, len(chunks))
	return nil
}

// recordFailure converts a per-source failure into sticky error state.
// The source stays excluded from automatic selection until re-ingestion
// advances ObjModified or the error is explicitly cleared.
func (p *Pipeline) recordFailure(ctx context.Context, source *domain.Source, cause error) error {
	source.Error = true
	source.ErrorMessage = cause.Error()
	source.LastChecked = time.Now()
	if err := p.sources.UpdateStatus(ctx, source); err != nil {
		return fmt.Errorf("%w: record failure for %s: %v", domain.ErrProviderUnavailable, source.URI, err)
	}
	return nil
}

// isRunFatal separates "this one source is bad" from failures that must
// stop the whole run.
func isRunFatal(err error) bool {
	return errors.Is(err, domain.ErrProviderUnavailable) ||
		errors.Is(err, domain.ErrHandlerNotRegistered) ||
		errors.Is(err, domain.ErrChunkConfig) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Reindex builds a draft for a single URI through the named handler,
// upserts it and processes it immediately.
func (p *Pipeline) Reindex(ctx context.Context, handlerName, uri string) error {
	handler, err := p.resolver.HandlerByName(handlerName)
	if err != nil {
		return err
	}
	draft, err := handler.IndexOne(ctx, uri)
	if err != nil {
		return fmt.Errorf("index %s: %w", uri, err)
	}

	if _, _, err := p.sources.UpsertMany(ctx, []domain.Source{*draft}); err != nil {
		return fmt.Errorf("upsert %s: %w", uri, err)
	}
	source, err := p.sources.GetByURI(ctx, draft.URI)
	if err != nil {
		return fmt.Errorf("get %s: %w", draft.URI, err)
	}

	if err := p.processSource(ctx, source); err != nil {
		if !isRunFatal(err) {
			if recordErr := p.recordFailure(ctx, source, err); recordErr != nil {
				return recordErr
			}
		}
		return err
	}
	return nil
}

// ReadChunkContent re-reads the live content of a source and returns the
// chunk at chunkIdx. The text is re-chunked with the parameters recorded on
// the source's stored embeddings, falling back to the configured defaults
// when it has none. Content changed since embedding time may legitimately
// have fewer chunks; that staleness window surfaces as
// domain.ErrChunkIndexOutOfRange.
func (p *Pipeline) ReadChunkContent(ctx context.Context, source *domain.Source, chunkIdx int) (string, error) {
	handler, err := p.resolver.FindFor(source)
	if err != nil {
		return "", err
	}
	text, err := handler.Read(ctx, source)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	text = chunker.Normalize(text)

	size, overlap := p.chunkSize, p.chunkOverlap
	if stored, err := p.embeddings.ListBySourceID(ctx, source.ID); err == nil && len(stored) > 0 {
		size, overlap = stored[0].ChunkSize, stored[0].ChunkOverlap
	}

	chunks, err := chunker.Split(text, size, overlap)
	if err != nil {
		return "", err
	}
	if chunkIdx < 0 || chunkIdx >= len(chunks) {
		return "", fmt.Errorf("%w: index %d, %d chunks", domain.ErrChunkIndexOutOfRange, chunkIdx, len(chunks))
	}
	return chunks[chunkIdx].Text, nil
}

// ReadEmbeddingContent resolves an embedding id to its owning source and the
// live text of its chunk.
func (p *Pipeline) ReadEmbeddingContent(ctx context.Context, embeddingID string) (string, *domain.Source, error) {
	embedding, err := p.embeddings.Get(ctx, embeddingID)
	if err != nil {
		return "", nil, fmt.Errorf("get embedding %s: %w", embeddingID, err)
	}
	source, err := p.sources.Get(ctx, embedding.SourceID)
	if err != nil {
		return "", nil, fmt.Errorf("get source %s: %w", embedding.SourceID, err)
	}
	text, err := p.ReadChunkContent(ctx, source, embedding.ChunkIdx)
	if err != nil {
		return "", source, err
	}
	return text, source, nil
}

// ClearError resets a source's sticky error state so the next run selects
// it again.
func (p *Pipeline) ClearError(ctx context.Context, sourceID string) error {
	source, err := p.sources.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source %s: %w", sourceID, err)
	}
	source.Error = false
	source.ErrorMessage = ""
	source.LastChecked = time.Now()
	return p.sources.UpdateStatus(ctx, source)
}
