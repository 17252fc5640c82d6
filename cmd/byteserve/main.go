// Package main is the entry point for the byteserve CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/byteserve/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "byteserve",
		Short:         "Artifact server with HTTP byte range support",
		Long:          `byteserve serves artifacts from local or cloud object storage and answers HTTP Range requests with partial content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(fetchCmd())
	cmd.AddCommand(rangesCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
