package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "config/config.yml"

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// BrowserConfig holds the browser session settings.
type BrowserConfig struct {
	Headless                 bool     `yaml:"headless"`
	Bin                      string   `yaml:"bin"`         // Chrome binary; empty means auto-detect or download
	ControlURL               string   `yaml:"controlURL"`  // ws:// URL of an already running browser
	DevToolsURL              string   `yaml:"devtoolsURL"` // http:// DevTools endpoint to resolve the ws URL from
	UserAgent                string   `yaml:"userAgent"`
	ViewportWidth            int      `yaml:"viewportWidth"`
	ViewportHeight           int      `yaml:"viewportHeight"`
	NavigationTimeoutSeconds int      `yaml:"navigationTimeoutSeconds"`
	Flags                    []string `yaml:"flags"` // extra Chrome switches, "name" or "name=value"
}

// ScraperConfig holds the profile scrape timing.
type ScraperConfig struct {
	ProfileURLTemplate   string `yaml:"profileURLTemplate"`
	ReadyTimeoutSeconds  int    `yaml:"readyTimeoutSeconds"`
	ExpandSettleMillis   int    `yaml:"expandSettleMillis"`
	ChainSettleMillis    int    `yaml:"chainSettleMillis"`
	ScrapeTimeoutSeconds int    `yaml:"scrapeTimeoutSeconds"` // 0 disables the whole-scrape deadline
}

// ReadyTimeout bounds each readiness wait.
func (c ScraperConfig) ReadyTimeout() time.Duration {
	return time.Duration(c.ReadyTimeoutSeconds) * time.Second
}

// ExpandSettle is the delay after expanding the chain list.
func (c ScraperConfig) ExpandSettle() time.Duration {
	return time.Duration(c.ExpandSettleMillis) * time.Millisecond
}

// ChainSettle is the delay after activating a chain.
func (c ScraperConfig) ChainSettle() time.Duration {
	return time.Duration(c.ChainSettleMillis) * time.Millisecond
}

// ScrapeTimeout is the whole-scrape deadline, zero when disabled.
func (c ScraperConfig) ScrapeTimeout() time.Duration {
	return time.Duration(c.ScrapeTimeoutSeconds) * time.Second
}

// LayoutConfig replaces selector strategy chains of individual page fields.
type LayoutConfig struct {
	Overrides map[string][]string `yaml:"overrides"`
}

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// CacheConfig holds configuration for snapshot caching.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentSessions int     `yaml:"maxConcurrentSessions"`
	RequestsPerMinute     float64 `yaml:"requestsPerMinute"`
	Burst                 int     `yaml:"burst"`
}

// Config is the top-level configuration structure.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Browser     BrowserConfig     `yaml:"browser"`
	Scraper     ScraperConfig     `yaml:"scraper"`
	Layout      LayoutConfig      `yaml:"layout"`
	Server      ServerConfig      `yaml:"server"`
	Cache       CacheConfig       `yaml:"cache"`
	Performance PerformanceConfig `yaml:"performance"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{Browser: BrowserConfig{Headless: true}}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Config file %s not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{Browser: BrowserConfig{Headless: true}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Browser.ViewportWidth <= 0 {
		cfg.Browser.ViewportWidth = 1920
	}
	if cfg.Browser.ViewportHeight <= 0 {
		cfg.Browser.ViewportHeight = 1080
	}
	if cfg.Browser.NavigationTimeoutSeconds <= 0 {
		cfg.Browser.NavigationTimeoutSeconds = 30
		logrus.Debugf("browser.navigationTimeoutSeconds not set, defaulting to %d", cfg.Browser.NavigationTimeoutSeconds)
	}

	if cfg.Scraper.ProfileURLTemplate == "" {
		cfg.Scraper.ProfileURLTemplate = "https://debank.com/profile/%s"
	}
	if cfg.Scraper.ReadyTimeoutSeconds <= 0 {
		cfg.Scraper.ReadyTimeoutSeconds = 30
		logrus.Debugf("scraper.readyTimeoutSeconds not set, defaulting to %d", cfg.Scraper.ReadyTimeoutSeconds)
	}
	if cfg.Scraper.ExpandSettleMillis <= 0 {
		cfg.Scraper.ExpandSettleMillis = 2000
	}
	if cfg.Scraper.ChainSettleMillis <= 0 {
		cfg.Scraper.ChainSettleMillis = 1200
	}
	if cfg.Scraper.ScrapeTimeoutSeconds < 0 {
		logrus.Warnf("Negative scraper.scrapeTimeoutSeconds %d, disabling the deadline", cfg.Scraper.ScrapeTimeoutSeconds)
		cfg.Scraper.ScrapeTimeoutSeconds = 0
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		// Скрейп профиля может идти минуту и дольше.
		cfg.Server.WriteTimeout = 300
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Cache.DefaultExpirationMinutes <= 0 {
		cfg.Cache.DefaultExpirationMinutes = 10
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 20
	}

	if cfg.Performance.MaxConcurrentSessions <= 0 {
		cfg.Performance.MaxConcurrentSessions = 2 // Default to 2 if not specified or invalid
	}
	if cfg.Performance.RequestsPerMinute <= 0 {
		cfg.Performance.RequestsPerMinute = 6
	}
	if cfg.Performance.Burst <= 0 {
		cfg.Performance.Burst = 1
	}
}
