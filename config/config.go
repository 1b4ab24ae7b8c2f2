package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported headline providers.
const (
	ProviderNewsAPI = "newsapi"
	ProviderFeed    = "feed"
	ProviderPage    = "page"
)

// Validation errors
var (
	ErrUnknownProvider = errors.New("news.provider must be newsapi, feed, or page")
	ErrMissingAPIKey   = errors.New("news.api_key is required for the newsapi provider")
	ErrMissingURL      = errors.New("news.url is required for the feed and page providers")
	ErrInvalidTimeout  = errors.New("news.timeout must be positive")
)

// NewsConfig describes where the daily headlines come from.
type NewsConfig struct {
	Provider  string        `yaml:"provider"`  // newsapi | feed | page
	BaseURL   string        `yaml:"base_url"`  // newsapi endpoint root
	APIKey    string        `yaml:"api_key"`   // newsapi credential, prefer the env var
	Country   string        `yaml:"country"`   // newsapi country filter
	URL       string        `yaml:"url"`       // feed or page URL
	Selector  string        `yaml:"selector"`  // page provider: CSS selector for headline anchors
	Timeout   time.Duration `yaml:"timeout"`   // outbound request timeout
	UserAgent string        `yaml:"user_agent"`
}

// AuditConfig enables the SQLite event mirror when DSN is set.
type AuditConfig struct {
	DSN string `yaml:"dsn"`
}

// MetricsConfig enables the Prometheus listener when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the complete server configuration.
type Config struct {
	Listen    string        `yaml:"listen"`
	AssetRoot string        `yaml:"asset_root"`
	LogDir    string        `yaml:"log_dir"`
	Debug     bool          `yaml:"debug"`
	News      NewsConfig    `yaml:"news"`
	Audit     AuditConfig   `yaml:"audit"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Listen:    ":3000",
		AssetRoot: "views",
		LogDir:    "logs",
		News: NewsConfig{
			Provider:  ProviderNewsAPI,
			BaseURL:   "https://newsapi.org/v2",
			Country:   "us",
			Selector:  "a",
			Timeout:   10 * time.Second,
			UserAgent: "pagewire/1.0",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and finally PAGEWIRE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if fileCfg != nil {
			cfg.merge(fileCfg)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// merge copies every field set in other over c.
func (c *Config) merge(other *Config) {
	setString(&c.Listen, other.Listen)
	setString(&c.AssetRoot, other.AssetRoot)
	setString(&c.LogDir, other.LogDir)
	c.Debug = c.Debug || other.Debug

	setString(&c.News.Provider, other.News.Provider)
	setString(&c.News.BaseURL, other.News.BaseURL)
	setString(&c.News.APIKey, other.News.APIKey)
	setString(&c.News.Country, other.News.Country)
	setString(&c.News.URL, other.News.URL)
	setString(&c.News.Selector, other.News.Selector)
	setString(&c.News.UserAgent, other.News.UserAgent)
	if other.News.Timeout != 0 {
		c.News.Timeout = other.News.Timeout
	}

	setString(&c.Audit.DSN, other.Audit.DSN)
	setString(&c.Metrics.Listen, other.Metrics.Listen)
}

// applyEnv overrides fields from the environment. getenv is os.Getenv
// outside of tests.
func (c *Config) applyEnv(getenv func(string) string) error {
	setString(&c.Listen, getenv("PAGEWIRE_LISTEN"))
	setString(&c.AssetRoot, getenv("PAGEWIRE_ASSET_ROOT"))
	setString(&c.LogDir, getenv("PAGEWIRE_LOG_DIR"))
	setString(&c.News.Provider, getenv("PAGEWIRE_NEWS_PROVIDER"))
	setString(&c.News.APIKey, getenv("PAGEWIRE_NEWS_API_KEY"))
	setString(&c.News.URL, getenv("PAGEWIRE_NEWS_URL"))
	setString(&c.Audit.DSN, getenv("PAGEWIRE_AUDIT_DSN"))
	setString(&c.Metrics.Listen, getenv("PAGEWIRE_METRICS_LISTEN"))

	if v := getenv("PAGEWIRE_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PAGEWIRE_DEBUG: %w", err)
		}
		c.Debug = debug
	}

	return nil
}

// Validate checks that the headline provider can be built.
func (c *Config) Validate() error {
	c.News.Provider = strings.ToLower(strings.TrimSpace(c.News.Provider))

	switch c.News.Provider {
	case ProviderNewsAPI:
		if strings.TrimSpace(c.News.APIKey) == "" {
			return ErrMissingAPIKey
		}
	case ProviderFeed, ProviderPage:
		if strings.TrimSpace(c.News.URL) == "" {
			return ErrMissingURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.News.Provider)
	}

	if c.News.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
