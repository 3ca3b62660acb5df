// Package cmd holds the bloom command line: serve runs the web app, seed
// writes demo content into the configured store.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sakif/bloom/internal/config"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "bloom",
	Short: "Bloom, a community for sharing creative projects",
	Long: `Bloom lets members share paintings, photos, writing, music and crafts,
like and comment on each other's work and ask an AI model for project ideas.

Settings come from bloom.yaml (or --config), a .env file and BLOOM_*
environment variables, e.g. BLOOM_AUTH_JWT_SECRET for auth.jwt_secret.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./bloom.yaml)")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig reads and validates the configuration and builds the process
// logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := config.Init(v, v.GetString("config")); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
