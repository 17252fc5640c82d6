// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost               = "0.0.0.0"
	DefaultPort               = 8080
	DefaultLogLevel           = "INFO"
	DefaultStorageID          = "storage0"
	DefaultStorageSubdir      = "storages"
	DefaultDatabaseFile       = "byteserve.db"
	DefaultFetchTimeout       = 5 * time.Minute
	DefaultFetchRetryAttempts = 3
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	host               string
	port               int
	dataDir            string
	dbURL              string
	logLevel           string
	logFormat          LogFormat
	storages           map[string]string
	corsAllowedOrigins []string
	fetchTimeout       time.Duration
	fetchRetryAttempts int
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".byteserve"
	}
	return filepath.Join(home, ".byteserve")
}

// NewAppConfig creates an AppConfig with default values.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		dataDir:            dataDir,
		dbURL:              defaultDBURL(dataDir),
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		storages:           map[string]string{},
		corsAllowedOrigins: []string{},
		fetchTimeout:       DefaultFetchTimeout,
		fetchRetryAttempts: DefaultFetchRetryAttempts,
	}
}

func defaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDatabaseFile)
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Storages returns a copy of the storage id to bucket URL map. When nothing
// is configured a single file storage under the data directory is returned.
func (c AppConfig) Storages() map[string]string {
	if len(c.storages) == 0 {
		dir := filepath.Join(c.dataDir, DefaultStorageSubdir, DefaultStorageID)
		return map[string]string{DefaultStorageID: "file://" + filepath.ToSlash(dir)}
	}
	return maps.Clone(c.storages)
}

// StorageIDs returns the configured storage ids in sorted order.
func (c AppConfig) StorageIDs() []string {
	storages := c.Storages()
	ids := make([]string, 0, len(storages))
	for id := range storages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CORSAllowedOrigins returns a copy of the allowed CORS origins.
func (c AppConfig) CORSAllowedOrigins() []string {
	result := make([]string, len(c.corsAllowedOrigins))
	copy(result, c.corsAllowedOrigins)
	return result
}

// FetchTimeout returns the per-request timeout of the download client.
func (c AppConfig) FetchTimeout() time.Duration { return c.fetchTimeout }

// FetchRetryAttempts returns how often the download client retries.
func (c AppConfig) FetchRetryAttempts() int { return c.fetchRetryAttempts }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		// Keep the default database inside the data directory.
		if c.dbURL == "" || c.dbURL == defaultDBURL(c.dataDir) {
			c.dbURL = defaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithStorage adds or replaces a storage definition.
func WithStorage(id, bucketURL string) AppConfigOption {
	return func(c *AppConfig) {
		storages := maps.Clone(c.storages)
		if storages == nil {
			storages = map[string]string{}
		}
		storages[id] = bucketURL
		c.storages = storages
	}
}

// WithStorages merges the given storage definitions over the existing ones.
func WithStorages(storages map[string]string) AppConfigOption {
	return func(c *AppConfig) {
		merged := maps.Clone(c.storages)
		if merged == nil {
			merged = map[string]string{}
		}
		maps.Copy(merged, storages)
		c.storages = merged
	}
}

// WithCORSAllowedOrigins sets the allowed CORS origins.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsAllowedOrigins = append([]string(nil), origins...)
	}
}

// WithFetchTimeout sets the download client timeout.
func WithFetchTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.fetchTimeout = d }
}

// WithFetchRetryAttempts sets the download client retry count.
func WithFetchRetryAttempts(n int) AppConfigOption {
	return func(c *AppConfig) { c.fetchRetryAttempts = n }
}

// NewAppConfigWithOptions creates an AppConfig with the given options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	return NewAppConfig().Apply(opts...)
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Credentials in URLs are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("data_dir", c.dataDir),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("log_level", c.logLevel),
		slog.String("storages", strings.Join(c.StorageIDs(), ",")),
		slog.Int("cors_origins", len(c.corsAllowedOrigins)),
		slog.Duration("fetch_timeout", c.fetchTimeout),
		slog.Int("fetch_retry_attempts", c.fetchRetryAttempts),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}
