package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/byteserve"
	"github.com/helixml/byteserve/infrastructure/api"
	"github.com/helixml/byteserve/internal/config"
	"github.com/helixml/byteserve/internal/log"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile  string
		host     string
		port     int
		storages []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the artifact server",
		Long: `Start the artifact server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Storages file (STORAGES_FILE)
  4. Environment variables
  5. Command line flags

Environment variables:
  HOST                   Server host to bind to (default: 0.0.0.0)
  PORT                   Server port to listen on (default: 8080)
  DATA_DIR               Data directory (default: ~/.byteserve)
  DB_URL                 Database URL (default: sqlite:///{data_dir}/byteserve.db)
  LOG_LEVEL              Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT             Log format: pretty, json (default: pretty)
  STORAGES               Comma-separated id=bucket-url pairs
                         (default: storage0=file://{data_dir}/storages/storage0)
  STORAGES_FILE          YAML file with a "storages" map of id to bucket URL
  CORS_ALLOWED_ORIGINS   Comma-separated origins allowed to issue range requests`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile, host, port, storages)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")
	cmd.Flags().StringArrayVar(&storages, "storage", nil, "Storage as id=bucket-url, repeatable")

	return cmd
}

func runServe(ctx context.Context, envFile, host string, port int, storages []string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	cfg, err = applyServeOverrides(cfg, host, port, storages)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	slogger := log.Configure(cfg).Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(ctx, slog.LevelInfo, "starting byteserve", attrs...)

	client, err := byteserve.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create byteserve client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close byteserve client", slog.Any("error", err))
		}
	}()

	server := api.NewServer(cfg.Addr(), slogger, cfg.CORSAllowedOrigins()...)
	server.Router().Mount("/", api.NewAPIServer(client).Handler())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int, storages []string) (config.AppConfig, error) {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	for _, s := range storages {
		id, bucketURL, err := config.ParseStorage(s)
		if err != nil {
			return config.AppConfig{}, fmt.Errorf("--storage: %w", err)
		}
		opts = append(opts, config.WithStorage(id, bucketURL))
	}

	return cfg.Apply(opts...), nil
}
