package main

import (
	"log/slog"

	"github.com/helixml/byteserve"
	"github.com/helixml/byteserve/internal/config"
)

// clientOptions returns the byteserve.Option slice derived from AppConfig.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []byteserve.Option {
	return []byteserve.Option{
		byteserve.WithDatabaseURL(cfg.DBURL()),
		byteserve.WithStorages(cfg.Storages()),
		byteserve.WithLogger(logger),
	}
}
