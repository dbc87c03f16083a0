package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"
)

// Config holds the configuration for the slot-grid service.
type Config struct {
	// ListenAddress is the address ([host]:port) at which the service
	// should listen and serve the Connect-RPC Service.
	ListenAddress string `json:"listen"`

	// AllowedOrigins configures allowed origins for CORS requests.
	AllowedOrigins []string `json:"allowedOrigins"`

	// LogLevel is one of panic, fatal, error, warn, info, debug or trace.
	LogLevel string `json:"logLevel"`

	// DataSource configures access to the provider's timeslot API.
	DataSource DataSourceConfig `json:"dataSource"`

	// Cache configures caching of fetched schedule snapshots.
	Cache CacheConfig `json:"cache"`

	// MongoURL holds the path to the Mongo-DB database. If set and no
	// data source URL is configured, schedules are served from imported
	// snapshots.
	MongoURL string `json:"mongoURL"`

	// MongoDatabaseName is the name of the mongodb database
	MongoDatabaseName string `json:"database"`
}

type DataSourceConfig struct {
	// URL is the base URL of the timeslot provider.
	URL string `json:"url"`

	// Path is the path of the timeslot endpoint. Defaults to /service/timeslots.
	Path string `json:"path"`

	// RequestsPerSecond limits outgoing requests. Zero disables the limit.
	RequestsPerSecond float64 `json:"requestsPerSecond"`

	// Burst is the number of requests allowed to exceed RequestsPerSecond.
	Burst int `json:"burst"`

	// Timeout is the overall timeout of a single request, e.g. "30s".
	Timeout string `json:"timeout"`
}

type CacheConfig struct {
	// TTL is the time fetched snapshots are reused, e.g. "5m".
	// Set to "0s" to disable caching.
	TTL string `json:"ttl"`

	// RedisURL can be set to share cached snapshots between replicas.
	RedisURL string `json:"redisURL"`
}

// RequestTimeout returns the parsed data source timeout.
func (c Config) RequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.DataSource.Timeout)
}

// CacheTTL returns the parsed cache TTL.
func (c Config) CacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// LoadConfig loads the configuration file from cfgPath.
func LoadConfig(cfgPath string) (Config, error) {
	content, err := os.ReadFile(cfgPath)
	if err != nil {
		return Config{}, err
	}

	switch filepath.Ext(cfgPath) {
	case ".yml", ".yaml":
		content, err = yaml.YAMLToJSON(content)
		if err != nil {
			return Config{}, err
		}

	case ".json":
		// nothing to do here
	default:
		return Config{}, fmt.Errorf("unsupported file format %q", filepath.Ext(cfgPath))
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.DataSource.URL == "" {
		cfg.DataSource.URL = os.Getenv("DATASOURCE_URL")
	}

	if cfg.DataSource.Timeout == "" {
		cfg.DataSource.Timeout = "30s"
	}

	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = "5m"
	}

	if cfg.Cache.RedisURL == "" {
		cfg.Cache.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.MongoDatabaseName == "" {
		cfg.MongoDatabaseName = "cis-slotgrid"
	}

	if cfg.DataSource.URL == "" && cfg.MongoURL == "" {
		return fmt.Errorf("either dataSource.url or mongoURL must be configured")
	}

	if _, err := cfg.RequestTimeout(); err != nil {
		return fmt.Errorf("invalid dataSource.timeout: %w", err)
	}

	if _, err := cfg.CacheTTL(); err != nil {
		return fmt.Errorf("invalid cache.ttl: %w", err)
	}

	return nil
}
