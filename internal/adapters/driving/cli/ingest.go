package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestProcess bool

var ingestCmd = &cobra.Command{
	Use:   "ingest HANDLER ROOT",
	Short: "Discover sources by crawling a root",
	Long: `Crawls a root location with the named handler and registers every
discovered source. Re-running the same ingest is safe: sources are keyed
by URI and refreshed in place.

Examples:
  semindex ingest file ./docs
  semindex ingest github golang/go`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestProcess, "process", false, "process pending sources right after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	updated, inserted, err := a.pipeline.Ingest(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %s: %d new, %d refreshed\n", args[1], inserted, updated)

	if !ingestProcess {
		return nil
	}
	ok, failed, err := a.pipeline.ProcessPending(ctx)
	if err != nil {
		return fmt.Errorf("processing failed after %d ok, %d failed: %w", ok, failed, err)
	}
	cmd.Printf("Processed: %d ok, %d failed\n", ok, failed)
	return nil
}
