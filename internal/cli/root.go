// Package cli defines the cobra command tree for side-hustle.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nowyouseeme1234/side-hustle/internal/db"
)

var flagDB string

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "side-hustle",
		Short:         "Rental income marketplace server",
		Long:          "Server for the side-hustle marketplace, where property owners list a share of their rental income for sale.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.side-hustle/side-hustle.db)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag, the SH_DB_PATH
// environment variable, or the default path, in that order.
func openDB(envPath string) (*sql.DB, error) {
	path := flagDB
	if path == "" {
		path = envPath
	}
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
