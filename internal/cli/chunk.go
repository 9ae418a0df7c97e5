package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zipfit/internal/app"
	"zipfit/internal/chunker"
	"zipfit/internal/config"
	"zipfit/internal/pdfparse"
	"zipfit/internal/tablenorm"
)

var chunkTablesOnly bool

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Print the chunks of an attachment",
	Long: `Parses a PDF, spreadsheet or markdown file and prints one JSON object per
chunk. Nothing is stored and no embedding is requested.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkTablesOnly, "tables", false, "print table chunks only")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s failed: %w", args[0], err)
	}

	chunks, err := app.PrepareChunks(
		pdfparse.New(cfg.Chunking.HeaderKeywords),
		tablenorm.NewNormalizer(nil),
		chunker.New(cfg.ChunkerConfig()),
		args[0],
		data,
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, c := range chunks {
		if chunkTablesOnly && c.TableContext == nil {
			continue
		}
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return nil
}
