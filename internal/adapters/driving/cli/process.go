package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Chunk, embed and store all pending sources",
	Long: `Selects every source whose content is newer than its last processing
pass and runs it through the chunk-embed-store pipeline. Sources in error
state are skipped until re-ingested or cleared.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.provider.Ping(ctx); err != nil {
		return fmt.Errorf("embedding provider not reachable: %w", err)
	}

	ok, failed, err := a.pipeline.ProcessPending(ctx)
	if err != nil {
		return fmt.Errorf("processing aborted after %d ok, %d failed: %w", ok, failed, err)
	}
	cmd.Printf("Processed: %d ok, %d failed\n", ok, failed)
	return nil
}
