// Package config loads runtime configuration for the policy-log CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. POLICYLOGS_* environment variables, read with cleanenv.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   server base url, e.g. http://localhost:8000/api/
//	-t int      request timeout (seconds)
//	-i int      background refresh interval (seconds, 0 disables)
//	-s string   secure store file
//	-seed       show demo records when the first refresh fails
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_base_url": "http://localhost:8000/api/",
//	  "request_timeout": "30s",
//	  "refresh_interval": "1m",
//	  "store_path": "policylogs.db",
//	  "store_secret": "change me",
//	  "seed_fallback": false,
//	  "log_level": "info"
//	}
//
// The store secret has no flag so that it does not end up in shell history.
package config
