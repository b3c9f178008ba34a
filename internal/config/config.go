// Package config loads the YAML configuration for the API server.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig tunes the HTTP surface and persistence paths.
type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	MaxConcurrentScans int      `yaml:"max_concurrent_scans"`
	StorePath          string   `yaml:"store_path"`
	DownloadDir        string   `yaml:"download_dir"`
	ShutdownTimeout    Duration `yaml:"shutdown_timeout"`
}

// ScanConfig provides the defaults applied to scan requests that omit a
// field, plus engine settings requests cannot override.
type ScanConfig struct {
	MaxURLs        int      `yaml:"max_urls"`
	MaxDepth       int      `yaml:"max_depth"`
	Delay          Duration `yaml:"delay"`
	SameDomainOnly bool     `yaml:"same_domain_only"`
	Workers        int      `yaml:"workers"`
	Timeout        Duration `yaml:"timeout"`
	UserAgent      string   `yaml:"user_agent"`
	RespectRobots  bool     `yaml:"respect_robots"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":8080",
			MaxConcurrentScans: 4,
			StorePath:          "scan_db.json",
			DownloadDir:        "downloads",
			ShutdownTimeout:    Duration{10 * time.Second},
		},
		Scan: ScanConfig{
			MaxURLs:        100,
			MaxDepth:       2,
			Delay:          Duration{time.Second},
			SameDomainOnly: true,
			Workers:        8,
			Timeout:        Duration{10 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults. Unknown keys are rejected
// so typos fail loudly instead of silently keeping a default.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxConcurrentScans <= 0 {
		return fmt.Errorf("server.max_concurrent_scans must be positive, got %d", c.Server.MaxConcurrentScans)
	}
	if c.Scan.MaxURLs <= 0 {
		return fmt.Errorf("scan.max_urls must be positive, got %d", c.Scan.MaxURLs)
	}
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("scan.max_depth must not be negative, got %d", c.Scan.MaxDepth)
	}
	if c.Scan.Delay.Duration < 0 {
		return fmt.Errorf("scan.delay must not be negative, got %s", c.Scan.Delay)
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive, got %d", c.Scan.Workers)
	}
	if c.Scan.Timeout.Duration <= 0 {
		return fmt.Errorf("scan.timeout must be positive, got %s", c.Scan.Timeout)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) normalise() {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	c.Server.StorePath = strings.TrimSpace(c.Server.StorePath)
	c.Server.DownloadDir = strings.TrimSpace(c.Server.DownloadDir)
	c.Scan.UserAgent = strings.TrimSpace(c.Scan.UserAgent)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
