// Package config loads per-component settings from viper with environment
// variable fallbacks.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDataDir holds the database, counter, error log and dedup cache.
const DefaultDataDir = "$HOME/.local/share/gfmd"

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DataDir returns the configured data directory, expanded.
func DataDir() string {
	dir := viper.GetString("data_dir")
	if dir == "" {
		dir = DefaultDataDir
	}
	return ExpandPath(dir)
}

// DataPath resolves key to a path, defaulting to name inside DataDir.
func DataPath(key, name string) string {
	if v := viper.GetString(key); v != "" {
		return ExpandPath(v)
	}
	return filepath.Join(DataDir(), name)
}

// firstNonEmpty returns the viper value for key, else the first set
// environment variable.
func firstNonEmpty(key string, envVars ...string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	for _, env := range envVars {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}
