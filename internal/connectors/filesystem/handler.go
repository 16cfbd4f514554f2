// Package filesystem implements the source handler for local plain-text
// documents. Binary formats (pdf, docx, mail archives) are the job of
// external readers and are skipped by the crawl.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/semindex-cli/internal/connectors"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// Ensure Handler implements the port.
var _ driven.SourceHandler = (*Handler)(nil)

// HandlerName is the registered name of the filesystem handler.
const HandlerName = "file"

// SourceTypeDocument is the single source type this handler declares.
const SourceTypeDocument = "Document"

// supportedExtensions lists the plain-text formats the handler reads.
var supportedExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
	".csv": {},
	".log": {},
}

// Handler crawls a directory tree for supported documents and reads them
// back as plain text.
type Handler struct {
	connectors.Bound
	tags driven.TagRepository
}

// New creates a filesystem handler. Tags for the handler and for file
// extensions are created on demand through the tag repository.
func New(tags driven.TagRepository) *Handler {
	return &Handler{tags: tags}
}

// Name returns the handler name.
func (h *Handler) Name() string { return HandlerName }

// SourceTypes returns the declared source-type names.
func (h *Handler) SourceTypes() []string { return []string{SourceTypeDocument} }

// Crawl walks root and lazily yields one draft source per supported file.
// Unreadable entries are reported on the error channel and skipped.
func (h *Handler) Crawl(ctx context.Context, root string) (<-chan domain.Source, <-chan error) {
	drafts := make(chan domain.Source)
	errs := make(chan error)

	go func() {
		defer close(drafts)
		defer close(errs)

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			sendErr(ctx, errs, fmt.Errorf("crawl root %q is not a directory", root))
			return
		}

		_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if walkErr != nil {
				sendErr(ctx, errs, fmt.Errorf("walk %s: %w", path, walkErr))
				return nil
			}
			if entry.IsDir() || !supported(path) {
				return nil
			}

			draft, err := h.IndexOne(ctx, path)
			if err != nil {
				sendErr(ctx, errs, err)
				return nil
			}
			select {
			case drafts <- *draft:
			case <-ctx.Done():
				return filepath.SkipAll
			}
			return nil
		})
	}()

	return drafts, errs
}

// IndexOne builds a draft source for a single file path.
// File modification time stands in for both content dates; creation time is
// not portably available.
func (h *Handler) IndexOne(ctx context.Context, uri string) (*domain.Source, error) {
	uri = filepath.Clean(uri)
	info, err := os.Stat(uri)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", uri, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", uri)
	}
	if !supported(uri) {
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(uri))
	}

	tags, err := h.draftTags(ctx, uri)
	if err != nil {
		return nil, err
	}

	modified := info.ModTime()
	return &domain.Source{
		SourceHandlerID: h.Binding().HandlerID,
		SourceTypeID:    h.TypeID(SourceTypeDocument),
		URI:             uri,
		ResolvedTo:      "file://" + filepath.ToSlash(uri),
		Title:           filepath.Base(uri),
		ObjCreated:      modified,
		ObjModified:     modified,
		LastChecked:     time.Now(),
		Tags:            tags,
	}, nil
}

// Read returns the raw file content.
func (h *Handler) Read(_ context.Context, source *domain.Source) (string, error) {
	data, err := os.ReadFile(source.URI)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source.URI, err)
	}
	return string(data), nil
}

// draftTags returns the handler tag plus an extension tag, created on
// demand.
func (h *Handler) draftTags(ctx context.Context, uri string) ([]domain.Tag, error) {
	handlerTag, err := h.tags.GetOrCreate(ctx, HandlerName)
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", HandlerName, err)
	}
	ext := strings.ToLower(filepath.Ext(uri))
	extTag, err := h.tags.GetOrCreate(ctx, ext)
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", ext, err)
	}
	return []domain.Tag{*handlerTag, *extTag}, nil
}

func supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}
