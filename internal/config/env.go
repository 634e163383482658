// Package config provides configuration helpers for visnav commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the server binary.
const (
	DefaultAddr     = ":8080"
	DefaultLogLevel = "info"
)

// String returns the env var key, or def when unset.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns the env var key parsed as an int, or def when unset or invalid.
func Int(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the env var key parsed with strconv.ParseBool, or def.
func Bool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Duration returns the env var key parsed as a duration, or def.
func Duration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Addr returns the listen address from VISNAV_ADDR.
func Addr() string {
	return String("VISNAV_ADDR", DefaultAddr)
}

// LogLevel returns the level name from LOG_LEVEL.
func LogLevel() string {
	return String("LOG_LEVEL", DefaultLogLevel)
}

// TuningPath returns the tuning file from VISNAV_TUNING, or "" for built-in defaults.
func TuningPath() string {
	return os.Getenv("VISNAV_TUNING")
}

// OpenAIKey returns OPENAI_API_KEY. Empty means speech is only logged.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
