package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays cfg with POLICYLOGS_* variables. Unset variables leave
// fields unchanged; durations use Go syntax ("45s").
func parseEnv(cfg *Config) error {
	return cleanenv.ReadEnv(cfg)
}
