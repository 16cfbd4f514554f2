// Command semindex is the semantic indexing and search CLI.
package main

import (
	"os"

	"github.com/custodia-labs/semindex-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
