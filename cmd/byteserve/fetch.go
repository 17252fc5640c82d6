package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/helixml/byteserve/infrastructure/remote"
	"github.com/helixml/byteserve/infrastructure/tracking"
	"github.com/helixml/byteserve/internal/log"
)

func fetchCmd() *cobra.Command {
	var (
		envFile string
		timeout time.Duration
		retries int
		every   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch URL DEST",
		Short: "Download a file, resuming a partial download",
		Long: `Download URL into DEST.

When DEST already exists the download continues from its current size with a
Range request. A server answering 416 for a file of the full size leaves it
untouched, and a server that ignores ranges restarts the download.

Environment variables:
  FETCH_TIMEOUT          Request timeout (default: 5m)
  FETCH_RETRY_ATTEMPTS   Retries for failed requests (default: 3)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.FetchTimeout()
			}
			if !cmd.Flags().Changed("retries") {
				retries = cfg.FetchRetryAttempts()
			}

			logger := log.NewLogger(cfg).Slog()
			progress := tracking.NewCooldown(tracking.NewLoggingReporter(logger), every)
			defer func() { _ = progress.Close() }()

			client := remote.NewClient(
				remote.WithTimeout(timeout),
				remote.WithRetryAttempts(retries),
				remote.WithReporter(progress),
				remote.WithLogger(logger),
			)

			url, dest := args[0], args[1]
			var resumedAt int64
			if fi, err := os.Stat(dest); err == nil {
				resumedAt = fi.Size()
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", dest, err)
			}

			n, err := client.Fetch(cmd.Context(), url, dest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case n == 0 && resumedAt > 0:
				_, _ = fmt.Fprintf(out, "%s already complete (%s)\n", dest, humanize.IBytes(uint64(resumedAt)))
			case resumedAt > 0:
				_, _ = fmt.Fprintf(out, "fetched %s into %s, resumed at %s\n", humanize.IBytes(uint64(n)), dest, humanize.IBytes(uint64(resumedAt)))
			default:
				_, _ = fmt.Fprintf(out, "fetched %s into %s\n", humanize.IBytes(uint64(n)), dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().DurationVar(&timeout, "timeout", remote.DefaultTimeout, "Request timeout")
	cmd.Flags().IntVar(&retries, "retries", remote.DefaultRetryAttempts, "Retries for failed requests")
	cmd.Flags().DurationVar(&every, "progress-interval", time.Second, "Minimum time between progress log lines")

	return cmd
}
