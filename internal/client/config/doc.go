// Package config loads runtime configuration for the account CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10m" or
// integer nanoseconds:
//
//	{
//	  "rest_endpoint": "http://127.0.0.1:8080",
//	  "health_addr": "127.0.0.1:50051",
//	  "api_key": "<anon jwt>",
//	  "database_path": "data/session.db",
//	  "ephemeral_tier": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "session_ttl": "720h",
//	  "refresh_interval": "10m",
//	  "activity_threshold": "5m",
//	  "optimistic_restore": true
//	}
//
// Note: This package does not read environment variables; use the JSON file
// or flags.
package config
