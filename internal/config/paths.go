package config

import (
	"os"
	"path/filepath"
)

// LingoPath returns the root directory for Lingo data.
// It uses $LINGO_PATH if set, otherwise defaults to ~/.lingo.
func LingoPath() string {
	if v := os.Getenv("LINGO_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".lingo")
	}
	return filepath.Join(home, ".lingo")
}

// ConfigPath returns the path to the Lingo config file.
func ConfigPath() string {
	return filepath.Join(LingoPath(), "config.yaml")
}

// DotenvPath returns the path to the Lingo .env file.
func DotenvPath() string {
	return filepath.Join(LingoPath(), ".env")
}
