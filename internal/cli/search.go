package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zipfit/internal/app"
	"zipfit/internal/retrieval"
)

var (
	searchTopK            int
	searchAnnouncementIDs []uint
	searchJSON            bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored chunks",
	Long: `Runs hybrid retrieval over the stored chunks. Full-text, vector and
announcement title matches are fused with reciprocal rank fusion, and table
chunks matching the query keywords are appended.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of fused results (0 uses the configured default)")
	searchCmd.Flags().UintSliceVar(&searchAnnouncementIDs, "announcement-id", nil, "restrict to these announcements")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Services.Search.Search(ctx, app.SearchInput{
		Query:           args[0],
		TopK:            searchTopK,
		AnnouncementIDs: searchAnnouncementIDs,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}
	printResults(cmd, results)
	return nil
}

func printResults(cmd *cobra.Command, results []retrieval.Result) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, r := range results {
		cmd.Printf("  [%d] %s p.%d %s (%.4f)\n", i+1, r.AnnouncementTitle, r.PageNum, r.ChunkType, r.Score)
		cmd.Printf("      %s\n\n", preview(r.ChunkText, 120))
	}
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
