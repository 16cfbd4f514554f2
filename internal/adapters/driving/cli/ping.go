package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the embedding provider is reachable",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.provider.Ping(ctx); err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}
	cmd.Printf("OK: %s (%d dimensions)\n", a.provider.ModelName(), a.provider.Dimensions())
	return nil
}
