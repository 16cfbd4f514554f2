package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read EMBEDDING_ID",
	Short: "Show the live chunk text behind a search result",
	Long: `Resolves an embedding id to its source, re-reads the source content and
prints the chunk the embedding was built from. Content is never stored in
the index, so the text reflects whatever the source says right now.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	text, source, err := a.pipeline.ReadEmbeddingContent(ctx, args[0])
	if err != nil {
		return fmt.Errorf("read chunk: %w", err)
	}

	cmd.Printf("%s\n%s\n\n", source.Title, source.ResolvedTo)
	cmd.Println(text)
	return nil
}
