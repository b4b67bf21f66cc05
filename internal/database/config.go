package database

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Cache backends
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendFile   = "file"
	CacheBackendNone   = "none"
)

// Directions providers
const (
	DirectionsProviderGoogle = "google"
	DirectionsProviderOSRM   = "osrm"
)

// AppConfig stores application configuration
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Directions DirectionsConfig `toml:"directions"`
	Cache      CacheConfig      `toml:"cache"`
	Optimizer  OptimizerConfig  `toml:"optimizer"`
	Geocoding  GeocodingConfig  `toml:"geocoding"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DirectionsConfig struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Region         string `toml:"region"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type CacheConfig struct {
	Backend      string `toml:"backend"`
	DatabasePath string `toml:"database_path"`
	FilePath     string `toml:"file_path"`
}

type OptimizerConfig struct {
	TwoOptMaxStops int `toml:"two_opt_max_stops"`
}

type GeocodingConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Directions: DirectionsConfig{
			Provider:       DirectionsProviderGoogle,
			Language:       "en",
			TimeoutSeconds: 30,
		},
		Cache:     CacheConfig{Backend: CacheBackendSQLite},
		Optimizer: OptimizerConfig{TwoOptMaxStops: 10},
		Geocoding: GeocodingConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "TripRoutePlanner/1.0",
		},
	}
}

// LoadConfig loads the config at path, returning defaults if the file does not exist.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*AppConfig, error) {
	config := DefaultConfig()

	md, err := toml.DecodeFile(path, config)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Printf("[CONFIG] Ignoring unknown keys: %s", strings.Join(keys, ", "))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that cannot be defaulted
func (c *AppConfig) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendSQLite, CacheBackendFile, CacheBackendNone:
	default:
		return fmt.Errorf("invalid cache backend %q: want %s, %s or %s",
			c.Cache.Backend, CacheBackendSQLite, CacheBackendFile, CacheBackendNone)
	}
	switch c.Directions.Provider {
	case DirectionsProviderGoogle, DirectionsProviderOSRM:
	default:
		return fmt.Errorf("invalid directions provider %q: want %s or %s",
			c.Directions.Provider, DirectionsProviderGoogle, DirectionsProviderOSRM)
	}
	if c.Optimizer.TwoOptMaxStops < 0 {
		return fmt.Errorf("optimizer.two_opt_max_stops must not be negative: %d", c.Optimizer.TwoOptMaxStops)
	}
	if c.Directions.TimeoutSeconds < 0 {
		return fmt.Errorf("directions.timeout_seconds must not be negative: %d", c.Directions.TimeoutSeconds)
	}
	return nil
}

// SaveConfig writes the config to path
func SaveConfig(path string, config *AppConfig) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Atomic write
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	log.Printf("Config saved: path=%s cache_backend=%s", path, config.Cache.Backend)
	return nil
}
