package byteserve

import (
	"log/slog"

	"gocloud.dev/blob"
)

// databaseType identifies the database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
	databaseURL
)

type storageSpec struct {
	id     string
	url    string
	bucket *blob.Bucket
}

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	database databaseType
	dbPath   string
	dbDSN    string
	dbURL    string
	logger   *slog.Logger
	storages []storageSpec
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores the transfer log in a SQLite database at path.
// ":memory:" keeps it in memory.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres stores the transfer log in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDatabaseURL selects the database from a URL such as
// "sqlite:///var/lib/byteserve.db" or "postgres://user@host/db".
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.database = databaseURL
		c.dbURL = url
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithStorage registers a storage opened from a gocloud.dev bucket URL,
// e.g. "file:///srv/storage0" or "s3://artifacts?region=eu-west-1".
func WithStorage(id, bucketURL string) Option {
	return func(c *clientConfig) {
		c.storages = append(c.storages, storageSpec{id: id, url: bucketURL})
	}
}

// WithStorages registers every storage in the id to bucket URL map.
func WithStorages(storages map[string]string) Option {
	return func(c *clientConfig) {
		for id, u := range storages {
			c.storages = append(c.storages, storageSpec{id: id, url: u})
		}
	}
}

// WithBucket registers an already opened bucket. The client takes
// ownership and closes it on Close.
func WithBucket(id string, bucket *blob.Bucket) Option {
	return func(c *clientConfig) {
		c.storages = append(c.storages, storageSpec{id: id, bucket: bucket})
	}
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		return cfg.dbDSN, nil
	case databaseURL:
		return cfg.dbURL, nil
	default:
		return "", ErrNoDatabase
	}
}
