package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/policylogs/internal/flagx"
	"github.com/dmitrijs2005/policylogs/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields are
// pointers so that keys missing from the file leave earlier values alone.
// Intervals accept "30s" style strings or integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL   *string         `json:"server_base_url"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	RefreshInterval *timex.Duration `json:"refresh_interval"`
	StorePath       *string         `json:"store_path"`
	StoreSecret     *string         `json:"store_secret"`
	SeedFallback    *bool           `json:"seed_fallback"`
	LogLevel        *string         `json:"log_level"`
}

// parseJSON overlays cfg with the file given by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshInterval != nil {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.StorePath != nil {
		cfg.StorePath = *jc.StorePath
	}
	if jc.StoreSecret != nil {
		cfg.StoreSecret = *jc.StoreSecret
	}
	if jc.SeedFallback != nil {
		cfg.SeedFallback = *jc.SeedFallback
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
