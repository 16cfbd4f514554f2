package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex HANDLER URI",
	Short: "Re-fetch and re-process a single source",
	Long: `Builds a fresh record for one URI through the named handler, then
chunks, embeds and stores it immediately. Useful after fixing whatever put
a source into error state.`,
	Args: cobra.ExactArgs(2),
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.pipeline.Reindex(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("reindex %s failed: %w", args[1], err)
	}
	cmd.Printf("Reindexed %s\n", args[1])
	return nil
}
