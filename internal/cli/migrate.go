package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nowyouseeme1234/side-hustle/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Open the database and apply any pending schema migrations, then exit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := openDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer closeDB(database)

			fmt.Println("database schema is up to date")
			return nil
		},
	}
}
