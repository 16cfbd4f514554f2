package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesErrorsOnly bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered sources",
	Long: `Lists every registered source with its processing state, newest
modified first. --errors restricts the list to sources stuck in error
state.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

var sourcesClearCmd = &cobra.Command{
	Use:   "clear SOURCE_ID",
	Short: "Clear a source's error state",
	Long: `Resets the sticky error flag so the next processing run picks the
source up again.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesClear,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesErrorsOnly, "errors", false, "only sources in error state")
	sourcesCmd.AddCommand(sourcesClearCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.sources.List(ctx, true)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var shown int
	for _, s := range sources {
		if sourcesErrorsOnly && !s.Error {
			continue
		}
		shown++

		state := "pending"
		switch {
		case s.Error:
			state = "error"
		case !s.Pending():
			state = "processed"
		}
		cmd.Printf("%s  [%s]  %s\n", s.ID, state, s.URI)
		cmd.Printf("    %s  modified %s\n", s.Title, s.ObjModified.Format("2006-01-02 15:04"))
		if s.Error && s.ErrorMessage != "" {
			cmd.Printf("    error: %s\n", s.ErrorMessage)
		}
	}
	if shown == 0 {
		cmd.Println("No sources.")
	}
	return nil
}

func runSourcesClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.pipeline.ClearError(ctx, args[0]); err != nil {
		return fmt.Errorf("clear error: %w", err)
	}
	cmd.Printf("Cleared error state for %s\n", args[0])
	return nil
}
