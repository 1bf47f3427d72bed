package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath  = "SHAREGRAB_CONFIG"
	EnvDownloadDir = "SHAREGRAB_DOWNLOAD_DIR"
	EnvProxy       = "SHAREGRAB_PROXY"
	EnvInsecureTLS = "SHAREGRAB_INSECURE_TLS"
	EnvUserAgent   = "SHAREGRAB_USER_AGENT"
	EnvLogLevel    = "SHAREGRAB_LOG_LEVEL"
	EnvLogFormat   = "SHAREGRAB_LOG_FORMAT"
)

// Config holds the CLI settings.
type Config struct {
	// DownloadDir is used when --dir is not given. Empty skips the download.
	DownloadDir string `yaml:"download_dir"`

	// ProxyURL is a socks5:// or http(s):// proxy for all requests.
	ProxyURL string `yaml:"proxy_url"`

	// InsecureTLS accepts any certificate from the platform and its CDN.
	InsecureTLS bool `yaml:"insecure_tls"`

	// UserAgent overrides the mobile UA sent to the detail API.
	UserAgent string `yaml:"user_agent"`

	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
}

// Default returns the built-in configuration. The platform's certificate chain
// does not validate, so InsecureTLS starts out enabled here.
func Default() *Config {
	cfg := &Config{InsecureTLS: true}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file named by
// SHAREGRAB_CONFIG and environment overrides, in that order. A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	// It's okay if .env doesn't exist
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvDownloadDir); ok {
		c.DownloadDir = v
	}
	if v, ok := os.LookupEnv(EnvProxy); ok {
		c.ProxyURL = v
	}
	if v, ok := os.LookupEnv(EnvInsecureTLS); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvInsecureTLS, v, err)
		}
		c.InsecureTLS = b
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
