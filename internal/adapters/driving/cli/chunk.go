package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

var (
	chunkSize    int
	chunkOverlap int
	chunkTrim    bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Preview how a document will be chunked",
	Long: `Count the chunks a .txt or .docx file would be split into.

No embedding requests are made and nothing is stored. Flags override the
configured chunk size, overlap and trimming for this preview only.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().IntVarP(&chunkSize, "size", "s", 0, "Chunk size in characters (default from settings)")
	chunkCmd.Flags().IntVarP(&chunkOverlap, "overlap", "o", -1, "Chunk overlap in characters (default from settings)")
	chunkCmd.Flags().BoolVar(&chunkTrim, "trim", false, "Trim each chunk and drop empty ones")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	if err := requireIngest(); err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := ingestService.ReadFile(cmd.Context(), &domain.RawDocument{URI: path, Content: content})
	if err != nil {
		return describe(err)
	}

	opts := ingestService.DefaultOptions()
	if cmd.Flags().Changed("size") {
		opts.ChunkSize = chunkSize
	}
	if cmd.Flags().Changed("overlap") {
		opts.ChunkOverlap = chunkOverlap
	}
	if cmd.Flags().Changed("trim") {
		opts.TrimEachChunk = chunkTrim
	}

	n, err := ingestService.Preview(doc.Content, opts)
	if err != nil {
		return describe(err)
	}

	cmd.Println(styles.Title.Render(doc.Title))
	cmd.Printf("  Characters: %d\n", len([]rune(doc.Content)))
	cmd.Printf("  Chunk size: %d\n", opts.ChunkSize)
	cmd.Printf("  Overlap:    %d\n", opts.ChunkOverlap)
	cmd.Printf("  Trim:       %t\n", opts.TrimEachChunk)
	cmd.Printf("  Chunks:     %d\n", n)
	return nil
}
