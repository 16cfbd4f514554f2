package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

func TestSearchEngine_EmptyIndex(t *testing.T) {
	env := newTestEnv(t)

	results, err := env.search.SearchChunks(context.Background(), "anything", domain.SearchFilter{}, 10)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	// The query is never embedded when there are no candidates.
	assert.Equal(t, 0, env.provider.calls)
}

func TestSearchEngine_RanksByTopicalSimilarity(t *testing.T) {
	env := newTestEnv(t)
	env.handler.add("cats.txt", "cats cats cats purring cats", day1)
	env.handler.add("dogs.txt", "dogs barking loudly fetch sticks", day1)
	env.handler.add("fish.txt", "fish swimming in the aquarium", day1)
	env.ingestAll(t)
	env.processAll(t)

	results, err := env.search.SearchChunks(context.Background(), "cats", domain.SearchFilter{}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "cats.txt", results[0].Source.URI)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity, "descending order")
	}
}

func TestSearchEngine_LimitRespected(t *testing.T) {
	env := newTestEnv(t)
	env.handler.add("a.txt", "one", day1)
	env.handler.add("b.txt", "two", day1)
	env.handler.add("c.txt", "three", day1)
	env.ingestAll(t)
	env.processAll(t)

	results, err := env.search.SearchChunks(context.Background(), "one two three", domain.SearchFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchEngine_SearchDocumentsDeduplicates(t *testing.T) {
	// Small chunks force multiple embeddings per source.
	env := newTestEnv(t, WithChunkSize(12), WithChunkOverlap(4))
	env.handler.add("long.txt", "cats cats cats cats cats cats cats cats", day1)
	env.handler.add("other.txt", "dogs dogs dogs dogs dogs dogs dogs dogs", day1)
	env.ingestAll(t)
	env.processAll(t)

	source, err := env.sources.GetByURI(context.Background(), "long.txt")
	require.NoError(t, err)
	chunks, err := env.embeddings.ListBySourceID(context.Background(), source.ID)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "test needs a multi-chunk source")

	docs, err := env.search.SearchDocuments(context.Background(), "cats", domain.SearchFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2, "one hit per source")
	assert.Equal(t, "long.txt", docs[0].Source.URI)

	// Chunk search may legitimately return several hits for the same source.
	hits, err := env.search.SearchChunks(context.Background(), "cats", domain.SearchFilter{}, 10)
	require.NoError(t, err)
	assert.Greater(t, len(hits), len(docs))
}

func TestSearchEngine_DateFilter(t *testing.T) {
	env := newTestEnv(t)
	env.handler.add("old.txt", "cats in january", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	env.handler.add("new.txt", "cats in march", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	env.ingestAll(t)
	env.processAll(t)

	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	filter := domain.SearchFilter{Dates: domain.DateFilter{ModifiedStart: &cutoff}}

	results, err := env.search.SearchChunks(context.Background(), "cats", filter, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new.txt", results[0].Source.URI)
}

func TestSearchEngine_TagFilter(t *testing.T) {
	env := newTestEnv(t)
	work, err := env.tags.GetOrCreate(context.Background(), "work")
	require.NoError(t, err)

	env.handler.add("tagged.txt", "cats at the office", day1)
	env.handler.tags["tagged.txt"] = []domain.Tag{*work}
	env.handler.add("plain.txt", "cats at home", day1)
	env.ingestAll(t)
	env.processAll(t)

	filter := domain.SearchFilter{TagIDs: []string{work.ID}}
	results, err := env.search.SearchChunks(context.Background(), "cats", filter, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tagged.txt", results[0].Source.URI)

	// A non-nil empty tag filter matches nothing.
	results, err = env.search.SearchChunks(context.Background(), "cats", domain.SearchFilter{TagIDs: []string{}}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEngine_Histogram(t *testing.T) {
	env := newTestEnv(t)
	env.handler.add("jan-a.txt", "first of january", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	env.handler.add("jan-b.txt", "second of january", time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	// February has no sources; March has one. The series must zero-fill
	// the gap.
	env.handler.add("mar.txt", "one in march", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	env.ingestAll(t)
	env.processAll(t)

	buckets, err := env.search.Histogram(context.Background(), domain.DateFieldModified)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buckets), 3)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), buckets[0].Month)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), buckets[1].Month)
	assert.Equal(t, 0, buckets[1].Count)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), buckets[2].Month)
	assert.Equal(t, 1, buckets[2].Count)

	// Contiguous ascending months all the way to the present.
	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, buckets[i-1].Month.AddDate(0, 1, 0), buckets[i].Month)
	}
}

func TestSearchEngine_HistogramEmptyIndex(t *testing.T) {
	env := newTestEnv(t)
	buckets, err := env.search.Histogram(context.Background(), domain.DateFieldCreated)
	require.NoError(t, err)
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestSearchEngine_HistogramCountsOnlyEmbeddedSources(t *testing.T) {
	env := newTestEnv(t)
	env.handler.add("done.txt", "processed content", day1)
	env.ingestAll(t)
	env.processAll(t)

	// A second source is ingested but never processed.
	env.handler.add("pending.txt", "not yet processed", day1)
	env.ingestAll(t)

	buckets, err := env.search.Histogram(context.Background(), domain.DateFieldCreated)
	require.NoError(t, err)
	require.NotEmpty(t, buckets)
	assert.Equal(t, 1, buckets[0].Count)
}
