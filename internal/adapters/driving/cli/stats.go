package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

var statsField string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Prints what the index holds: embedded source counts per type and per
tag, and a monthly histogram over the chosen date field. Only sources
owning at least one embedding are counted.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsField, "field", "created", "histogram date field: created or modified")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	field := domain.DateField(statsField)
	if field != domain.DateFieldCreated && field != domain.DateFieldModified {
		return fmt.Errorf("--field must be created or modified, got %q", statsField)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	types, err := a.registry.ListTypeCounts(ctx)
	if err != nil {
		return fmt.Errorf("type counts: %w", err)
	}
	cmd.Println("Sources by type:")
	if len(types) == 0 {
		cmd.Println("  (none)")
	}
	for _, tc := range types {
		cmd.Printf("  %-20s %d\n", tc.Type.Name, tc.Count)
	}

	tags, err := a.tags.ListCounted(ctx)
	if err != nil {
		return fmt.Errorf("tag counts: %w", err)
	}
	cmd.Println()
	cmd.Println("Tags:")
	if len(tags) == 0 {
		cmd.Println("  (none)")
	}
	for _, tc := range tags {
		cmd.Printf("  %-20s %d\n", tc.Tag.Name, tc.Count)
	}

	buckets, err := a.search.Histogram(ctx, field)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	cmd.Println()
	cmd.Printf("Monthly histogram (%s):\n", field)
	if len(buckets) == 0 {
		cmd.Println("  (empty index)")
	}
	for _, b := range buckets {
		cmd.Printf("  %s  %d\n", b.Month.Format("2006-01"), b.Count)
	}
	return nil
}
