package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/logger"
)

var (
	searchLimit          int
	searchJSON           bool
	searchDocs           bool
	searchTags           []string
	searchCreatedAfter   string
	searchCreatedBefore  string
	searchModifiedAfter  string
	searchModifiedBefore string
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search the index semantically",
	Long: `Embeds the query and ranks all indexed chunks by cosine similarity.
By default individual chunks are returned; --docs collapses the results to
one hit per source, scored by its best chunk.

Date bounds take YYYY-MM-DD and are inclusive. Tag filters match sources
holding at least one of the given tags.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchDocs, "docs", false, "one result per source instead of per chunk")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "restrict to sources holding any of these tags")
	searchCmd.Flags().StringVar(&searchCreatedAfter, "created-after", "", "earliest creation date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchCreatedBefore, "created-before", "", "latest creation date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchModifiedAfter, "modified-after", "", "earliest modification date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchModifiedBefore, "modified-before", "", "latest modification date (YYYY-MM-DD)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	filter, err := buildFilter(ctx, a)
	if err != nil {
		return err
	}

	var results []domain.SearchResult
	if searchDocs {
		results, err = a.search.SearchDocuments(ctx, args[0], filter, searchLimit)
	} else {
		results, err = a.search.SearchChunks(ctx, args[0], filter, searchLimit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// buildFilter parses the date flags and resolves tag names to ids.
func buildFilter(ctx context.Context, a *app) (domain.SearchFilter, error) {
	var filter domain.SearchFilter

	bounds := []struct {
		value string
		flag  string
		dest  **time.Time
		end   bool
	}{
		{searchCreatedAfter, "created-after", &filter.Dates.CreatedStart, false},
		{searchCreatedBefore, "created-before", &filter.Dates.CreatedEnd, true},
		{searchModifiedAfter, "modified-after", &filter.Dates.ModifiedStart, false},
		{searchModifiedBefore, "modified-before", &filter.Dates.ModifiedEnd, true},
	}
	for _, b := range bounds {
		if b.value == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", b.value, time.UTC)
		if err != nil {
			return filter, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date", b.flag, b.value)
		}
		if b.end {
			// Inclusive day bound: push to the last instant of the day.
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		*b.dest = &t
	}

	if len(searchTags) > 0 {
		ids, err := resolveTagIDs(ctx, a, searchTags)
		if err != nil {
			return filter, err
		}
		filter.TagIDs = ids
	}
	return filter, nil
}

// resolveTagIDs maps tag names to ids, case-insensitively. Unknown names
// match nothing; the returned slice stays non-nil so the filter is applied.
func resolveTagIDs(ctx context.Context, a *app, names []string) ([]string, error) {
	tags, err := a.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	byName := make(map[string]string, len(tags))
	for _, tag := range tags {
		byName[strings.ToLower(tag.Name)] = tag.ID
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, ok := byName[strings.ToLower(name)]
		if !ok {
			logger.Warn("Unknown tag %q", name)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	type jsonResult struct {
		SourceID    string   `json:"source_id"`
		Title       string   `json:"title"`
		URI         string   `json:"uri"`
		ResolvedTo  string   `json:"resolved_to"`
		EmbeddingID string   `json:"embedding_id"`
		ChunkIdx    int      `json:"chunk_idx"`
		Similarity  float32  `json:"similarity"`
		Tags        []string `json:"tags,omitempty"`
	}

	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{
			SourceID:    r.Source.ID,
			Title:       r.Source.Title,
			URI:         r.Source.URI,
			ResolvedTo:  r.Source.ResolvedTo,
			EmbeddingID: r.Embedding.ID,
			ChunkIdx:    r.Embedding.ChunkIdx,
			Similarity:  r.Similarity,
			Tags:        r.Source.TagNames(),
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		title := r.Source.Title
		if title == "" {
			title = r.Source.URI
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, r.Similarity)
		cmd.Printf("      %s  chunk %d  id %s\n", r.Source.ResolvedTo, r.Embedding.ChunkIdx, r.Embedding.ID)
		if tags := r.Source.TagNames(); len(tags) > 0 {
			cmd.Printf("      Tags: %s\n", strings.Join(tags, ", "))
		}
		cmd.Println()
	}
	return nil
}
