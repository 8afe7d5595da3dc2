// Package config loads the cardex configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the cardex configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Index   IndexConfig   `yaml:"index"`
	Images  ImagesConfig  `yaml:"images"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
	CORSAllowOrigin string `yaml:"cors_allow_origin"` // empty disables CORS
}

// IndexConfig holds index location, build and query settings.
type IndexConfig struct {
	Dir             string `yaml:"dir"`
	DataDir         string `yaml:"data_dir"`
	MaxPageSize     int    `yaml:"max_page_size"`
	SearchCount     int    `yaml:"search_count"`      // 0 = no cap
	SearchTimeoutMs int    `yaml:"search_timeout_ms"` // 0 = no timeout
	BatchSize       int    `yaml:"batch_size"`
}

// SearchTimeout returns the search timeout as a duration.
func (c IndexConfig) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMs) * time.Millisecond
}

// ImagesConfig holds image URL rewriting settings.
type ImagesConfig struct {
	URLBase string `yaml:"url_base"` // empty keeps upstream URLs
}

// CacheConfig holds the optional shared page cache settings.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"` // empty disables the cache
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a page cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// TTL returns the page TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes a YAML document, expanding ${VAR} references, then
// applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Dir == "" {
		c.Index.Dir = "index"
	}
	if c.Index.DataDir == "" {
		c.Index.DataDir = "data"
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 250
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 500
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Index.SearchCount < 0 {
		return fmt.Errorf("index.search_count must not be negative, got %d", c.Index.SearchCount)
	}
	if c.Index.SearchTimeoutMs < 0 {
		return fmt.Errorf("index.search_timeout_ms must not be negative, got %d", c.Index.SearchTimeoutMs)
	}
	if c.Images.URLBase != "" {
		u, err := url.Parse(c.Images.URLBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("images.url_base must be an absolute URL, got %q", c.Images.URLBase)
		}
	}
	for _, addr := range c.Cache.Addrs {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("cache.addrs must not contain empty entries")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
