// Package cli implements the command-line driving adapter. Commands wire
// the stores, the embedding provider and the source handlers together and
// call into the core services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semindex-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "semindex",
	Short: "Semantic indexing and search over local and remote sources",
	Long: `semindex builds a semantic index over pluggable sources (local files,
GitHub issues) and answers natural-language queries against it.

Typical workflow:
  semindex ingest file ./docs      # discover sources
  semindex process                 # chunk, embed and store them
  semindex search "query text"     # ranked semantic search`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.semindex/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
