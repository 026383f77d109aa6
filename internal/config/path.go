// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	} else if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// DataDir returns the directory for application data, creating it if needed.
func DataDir() (string, error) {
	if dir := os.Getenv("COFRE_DATA_DIR"); dir != "" {
		return dir, os.MkdirAll(ExpandPath(dir), 0o700)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".local", "share", "cofre")
	return dir, os.MkdirAll(dir, 0o700)
}
