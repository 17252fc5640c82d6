// Package byteserve serves stored artifacts over HTTP with byte range
// support and keeps a log of the transfers it served.
//
// Basic usage:
//
//	client, err := byteserve.New(
//	    byteserve.WithSQLite("/var/lib/byteserve/byteserve.db"),
//	    byteserve.WithStorage("storage0", "file:///srv/storage0"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Position an artifact for a Range header
//	resp, resource, err := client.Range(ctx, "storage0", "releases/app-1.0.jar", "bytes=100-")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer resource.Close()
//	fmt.Println(resp.Status(), resp.Header().Get("Content-Range"))
package byteserve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/helixml/byteserve/application/service"
	"github.com/helixml/byteserve/domain/byterange"
	"github.com/helixml/byteserve/domain/download"
	"github.com/helixml/byteserve/infrastructure/persistence"
	"github.com/helixml/byteserve/infrastructure/storage"
	"github.com/helixml/byteserve/internal/database"
)

// Client is the main entry point for the byteserve library.
//
// Access services via struct fields:
//
//	client.Downloads.Respond(resource, ranges)
//	client.Transfers.List(ctx, service.TransferFilter{}, service.Page{})
//	client.Storages.Bucket("storage0")
type Client struct {
	Downloads *service.PartialDownload
	Transfers *service.Transfers
	Storages  *storage.Registry
	Parser    byterange.HeaderParser

	db     database.Database
	logger *slog.Logger
	closed atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabaseWithLogger(ctx, dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	registry := storage.NewRegistry(logger)
	for _, s := range cfg.storages {
		if s.bucket != nil {
			registry.Add(s.id, s.bucket)
			continue
		}
		if err := registry.Open(ctx, s.id, s.url); err != nil {
			return nil, errors.Join(err, registry.Close(), db.Close())
		}
	}

	client := &Client{
		Downloads: service.NewPartialDownload(logger),
		Storages:  registry,
		Parser:    byterange.NewHeaderParser(byterange.DefaultValidator),
		db:        db,
		logger:    logger,
	}
	client.Transfers = service.NewTransfers(persistence.NewTransferStore(db), &client.closed, logger)

	logger.Info("byteserve client ready",
		slog.Any("storages", registry.IDs()),
		slog.Bool("postgres", db.IsPostgres()),
	)
	return client, nil
}

// Open opens the artifact stored under key in the given storage. The caller
// must close the returned resource.
func (c *Client) Open(ctx context.Context, storageID, key string) (*storage.BlobResource, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	bucket, err := c.Storages.Bucket(storageID)
	if err != nil {
		return nil, err
	}
	return storage.OpenResource(ctx, bucket, key)
}

// Range opens an artifact and positions it for the ranges in rangeHeader,
// returning the 206 or 416 response to send together with the resource.
// The caller must close the resource. A malformed header or one that breaks
// a range invariant is returned as an error and no resource is left open.
func (c *Client) Range(ctx context.Context, storageID, key, rangeHeader string) (download.Response, *storage.BlobResource, error) {
	ranges, err := c.Parser.Parse(rangeHeader)
	if err != nil {
		return download.Response{}, nil, err
	}

	resource, err := c.Open(ctx, storageID, key)
	if err != nil {
		return download.Response{}, nil, err
	}

	resp, err := c.Downloads.Respond(resource, ranges)
	if err != nil {
		return download.Response{}, nil, errors.Join(err, resource.Close())
	}
	return resp, resource, nil
}

// Close releases the storages and the database. Calling Close twice returns
// ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	var errs []error
	if err := c.Storages.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storages: %w", err))
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.logger.Info("byteserve client closed")
	return errors.Join(errs...)
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
