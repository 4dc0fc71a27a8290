package cli

import (
	"github.com/spf13/cobra"

	"github.com/nowyouseeme1234/side-hustle/internal/config"
	"github.com/nowyouseeme1234/side-hustle/internal/logging"
	"github.com/nowyouseeme1234/side-hustle/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the marketplace API server",
		Long:  "Start the HTTP server for the marketplace API: listings, image uploads, and authentication.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 5000, "port to listen on")

	return cmd
}

func runServe(cfg config.Config) error {
	logging.Setup(cfg.DevMode)

	database, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	srv, err := web.NewServer(database, cfg)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(cfg.Port)
}
