package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.byteserve
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/byteserve.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Storages maps storage ids to bucket URLs as "id=url,id=url".
	// Env: STORAGES
	Storages string `envconfig:"STORAGES"`

	// StoragesFile is a YAML file with storage definitions.
	// Env: STORAGES_FILE
	StoragesFile string `envconfig:"STORAGES_FILE"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// FetchTimeout is the download client timeout.
	// Env: FETCH_TIMEOUT (default: 5m)
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"5m"`

	// FetchRetryAttempts is how often the download client retries.
	// Env: FETCH_RETRY_ATTEMPTS (default: 3)
	FetchRetryAttempts int `envconfig:"FETCH_RETRY_ATTEMPTS" default:"3"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "BYTESERVE" would require BYTESERVE_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig. Storage definitions from
// STORAGES_FILE are loaded first and STORAGES entries override them.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = cfg.Apply(WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	if e.StoragesFile != "" {
		storages, err := LoadStoragesFile(e.StoragesFile)
		if err != nil {
			return AppConfig{}, err
		}
		cfg = cfg.Apply(WithStorages(storages))
	}
	if e.Storages != "" {
		storages, err := ParseStorages(e.Storages)
		if err != nil {
			return AppConfig{}, err
		}
		cfg = cfg.Apply(WithStorages(storages))
	}

	if e.CORSAllowedOrigins != "" {
		cfg = cfg.Apply(WithCORSAllowedOrigins(splitList(e.CORSAllowedOrigins)))
	}
	if e.FetchTimeout > 0 {
		cfg = cfg.Apply(WithFetchTimeout(e.FetchTimeout))
	}
	if e.FetchRetryAttempts >= 0 {
		cfg = cfg.Apply(WithFetchRetryAttempts(e.FetchRetryAttempts))
	}

	return cfg, nil
}

// ParseStorages parses "id=url,id=url" storage definitions.
func ParseStorages(s string) (map[string]string, error) {
	storages := map[string]string{}
	for _, entry := range splitList(s) {
		id, bucketURL, err := ParseStorage(entry)
		if err != nil {
			return nil, err
		}
		storages[id] = bucketURL
	}
	return storages, nil
}

// ParseStorage parses a single "id=url" storage definition.
func ParseStorage(entry string) (string, string, error) {
	id, bucketURL, ok := strings.Cut(entry, "=")
	id = strings.TrimSpace(id)
	bucketURL = strings.TrimSpace(bucketURL)
	if !ok || id == "" || bucketURL == "" {
		return "", "", fmt.Errorf("invalid storage definition %q: want id=url", entry)
	}
	return id, bucketURL, nil
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
