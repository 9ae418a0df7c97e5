package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and search indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background())
		if err != nil {
			return err
		}
		cmd.Printf("schema ready on %s\n", a.Config.Database.Driver)
		return a.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
