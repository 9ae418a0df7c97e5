package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"zipfit/internal/bootstrap"
)

var rootCmd = &cobra.Command{
	Use:   "zipfit",
	Short: "Housing announcement ingestion and search",
	Long: `zipfit parses housing announcement attachments into table-aware chunks,
stores them with their embeddings and answers hybrid search queries.

Commands other than chunk need a reachable database. Embeddings are computed
inline instead of being queued.`,
	SilenceUsage: true,
}

// openApp connects to the database only. Tests replace it.
var openApp = func(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.New(ctx, bootstrap.Options{})
}

func Execute() error {
	return rootCmd.Execute()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
