// Package config loads runtime configuration for the Impify CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   server base URL (API lives under /api)
//	-t int      request timeout (seconds)
//	-d string   local SQLite database path
//	-p int      dashboard poll interval (seconds)
//
// # JSON schema
//
// Durations are strings like "30s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://impify.example",
//	  "request_timeout": "30s",
//	  "database_path": "impify.db",
//	  "poll_interval": "1m",
//	  "redirect_delay": "2.5s",
//	  "level_up_duration": "3s",
//	  "inactivity_limit": "30m",
//	  "token_refresh_window": "24h",
//	  "preview_max_bytes": 512000
//	}
//
// Environment variables are not read.
package config
