package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sakif/bloom/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Run the Bloom web server until SIGINT or SIGTERM.

In-flight requests get 30 seconds to finish before the store is closed.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	return srv.Start()
}
