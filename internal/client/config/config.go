package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds runtime settings for the policy-log CLI.
//
// Units: RequestTimeout and RefreshInterval are time.Duration. A zero
// RefreshInterval disables background refresh.
type Config struct {
	ServerBaseURL   string        `env:"POLICYLOGS_SERVER_URL"`
	RequestTimeout  time.Duration `env:"POLICYLOGS_REQUEST_TIMEOUT"`
	RefreshInterval time.Duration `env:"POLICYLOGS_REFRESH_INTERVAL"`
	StorePath       string        `env:"POLICYLOGS_STORE_PATH"`
	StoreSecret     string        `env:"POLICYLOGS_STORE_SECRET"`
	SeedFallback    bool          `env:"POLICYLOGS_SEED_FALLBACK"`
	LogLevel        string        `env:"POLICYLOGS_LOG_LEVEL"`
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000/api/"
	c.RequestTimeout = 30 * time.Second
	c.RefreshInterval = 60 * time.Second
	c.StorePath = "policylogs.db"
	c.StoreSecret = ""
	c.SeedFallback = false
	c.LogLevel = "info"
}

// Load builds a Config from defaults, then the JSON file named by -c or
// -config in args, then the environment, then flags in args. Later sources
// take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("config file error: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment error: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Validate checks the merged configuration before anything is built from it.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server url %q must be an absolute http(s) url", ErrInvalidConfig, c.ServerBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("%w: refresh interval must not be negative", ErrInvalidConfig)
	}
	return nil
}
