// Package config loads runtime configuration for the back office client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file and BACKOFFICE_* environment variables (see parseEnv).
//     Real environment variables win over the file.
//  3. Optional JSON file (see parseJson) named by -c/--config.
//  4. Command-line flags (see parseFlags) that were explicitly set.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "api_url": "http://127.0.0.1:8080",
//	  "storage_path": "backoffice.db",
//	  "poll_interval": "10s",
//	  "search_debounce": "500ms",
//	  "page_size": 10,
//	  "request_timeout": "15s",
//	  "rate_limit": 10,
//	  "log_level": "info",
//	  "log_file": "backoffice.log"
//	}
package config
