package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

func newTestHandler() *Handler {
	sources := memory.NewSourceStore()
	embeddings := memory.NewEmbeddingStore(sources)
	h := New(memory.NewTagStore(sources, embeddings))
	h.Bind(domain.HandlerBinding{
		HandlerID: "handler-1",
		TypeIDs:   map[string]string{SourceTypeDocument: "type-1"},
	})
	return h
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collectCrawl(t *testing.T, h *Handler, root string) ([]domain.Source, []error) {
	t.Helper()
	drafts, errs := h.Crawl(context.Background(), root)

	var sources []domain.Source
	var crawlErrs []error
	for drafts != nil || errs != nil {
		select {
		case d, ok := <-drafts:
			if !ok {
				drafts = nil
				continue
			}
			sources = append(sources, d)
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			crawlErrs = append(crawlErrs, e)
		}
	}
	return sources, crawlErrs
}

func TestCrawl_FindsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# notes")
	writeFile(t, dir, "data.csv", "a,b")
	writeFile(t, dir, "nested/deep.txt", "deep")
	writeFile(t, dir, "image.png", "binary")
	writeFile(t, dir, "archive.zip", "binary")

	h := newTestHandler()
	sources, crawlErrs := collectCrawl(t, h, dir)

	assert.Empty(t, crawlErrs)
	require.Len(t, sources, 3)

	uris := make(map[string]bool)
	for _, s := range sources {
		uris[filepath.Base(s.URI)] = true
		assert.Equal(t, "handler-1", s.SourceHandlerID)
		assert.Equal(t, "type-1", s.SourceTypeID)
	}
	assert.True(t, uris["notes.md"])
	assert.True(t, uris["data.csv"])
	assert.True(t, uris["deep.txt"])
}

func TestCrawl_RootMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "lone.txt", "text")

	h := newTestHandler()
	_, crawlErrs := collectCrawl(t, h, file)
	require.Len(t, crawlErrs, 1)
	assert.Contains(t, crawlErrs[0].Error(), "not a directory")

	_, crawlErrs = collectCrawl(t, h, filepath.Join(dir, "missing"))
	require.Len(t, crawlErrs, 1)
}

func TestIndexOne(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "content")
	info, err := os.Stat(path)
	require.NoError(t, err)

	h := newTestHandler()
	draft, err := h.IndexOne(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(path), draft.URI)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Clean(path)), draft.ResolvedTo)
	assert.Equal(t, "doc.md", draft.Title)
	assert.True(t, draft.ObjModified.Equal(info.ModTime()))
	assert.True(t, draft.ObjCreated.Equal(info.ModTime()))

	names := make([]string, len(draft.Tags))
	for i, tag := range draft.Tags {
		names[i] = tag.Name
	}
	assert.Contains(t, names, HandlerName)
	assert.Contains(t, names, ".md")
}

func TestIndexOne_Rejections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "image.png", "binary")

	h := newTestHandler()

	_, err := h.IndexOne(context.Background(), dir)
	assert.Error(t, err)

	_, err = h.IndexOne(context.Background(), filepath.Join(dir, "image.png"))
	assert.ErrorContains(t, err, "unsupported file extension")

	_, err = h.IndexOne(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "live content")

	h := newTestHandler()
	text, err := h.Read(context.Background(), &domain.Source{URI: path})
	require.NoError(t, err)
	assert.Equal(t, "live content", text)

	_, err = h.Read(context.Background(), &domain.Source{URI: filepath.Join(dir, "gone.txt")})
	assert.Error(t, err)
}

func TestSupported_CaseInsensitive(t *testing.T) {
	assert.True(t, supported("A.TXT"))
	assert.True(t, supported("b.Md"))
	assert.False(t, supported("c.pdf"))
	assert.False(t, supported("noext"))
}
