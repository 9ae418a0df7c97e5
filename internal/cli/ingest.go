package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"zipfit/internal/app"
)

var (
	ingestAnnouncementID uint
	ingestFileType       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Chunk, store and embed an attachment",
	Long: `Stores the file under the upload directory, replaces the chunks of that
file for the announcement and embeds them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Embed chunks that have no vector yet",
	Args:  cobra.NoArgs,
	RunE:  runReembed,
}

var reembedAnnouncementID uint

func init() {
	ingestCmd.Flags().UintVarP(&ingestAnnouncementID, "announcement-id", "a", 0, "announcement the file belongs to")
	ingestCmd.Flags().StringVar(&ingestFileType, "file-type", "", "attachment kind, e.g. 공고문")
	_ = ingestCmd.MarkFlagRequired("announcement-id")
	rootCmd.AddCommand(ingestCmd)

	reembedCmd.Flags().UintVarP(&reembedAnnouncementID, "announcement-id", "a", 0, "limit to one announcement (0 for all)")
	rootCmd.AddCommand(reembedCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestAnnouncementID == 0 {
		return errors.New("announcement-id must be positive")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s failed: %w", args[0], err)
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Services.Ingest.Ingest(ctx, app.IngestInput{
		AnnouncementID: ingestAnnouncementID,
		FileName:       filepath.Base(args[0]),
		FileType:       ingestFileType,
		Data:           data,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return printJSON(cmd, result)
}

func runReembed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Services.Embeddings.Reembed(ctx, reembedAnnouncementID)
	if err != nil {
		return fmt.Errorf("reembed failed: %w", err)
	}
	cmd.Printf("embedded %d chunks\n", n)
	return nil
}
