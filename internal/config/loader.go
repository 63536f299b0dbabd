package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a YAML config file, expands ${{ .Env.VAR }} templates,
// unmarshals it into Config, and applies defaults. A missing file
// yields the pure-defaults config.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := expandEnvTemplates(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 5000
	}
	if cfg.Queue.Addr == "" {
		cfg.Queue.Addr = "127.0.0.1:6379"
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "translation-jobs"
	}
	if cfg.Queue.PollInterval == 0 {
		cfg.Queue.PollInterval = Duration(5 * time.Second)
	}
	if cfg.Queue.Lease == 0 {
		cfg.Queue.Lease = Duration(5 * time.Minute)
	}
	if cfg.Results.Backend == "" {
		cfg.Results.Backend = "file"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = filepath.Join(LingoPath(), "results")
	}
	if cfg.Results.Addr == "" {
		cfg.Results.Addr = cfg.Queue.Addr
	}
	if cfg.Results.Retention == 0 {
		cfg.Results.Retention = Duration(7 * 24 * time.Hour)
	}
	if cfg.Results.SweepSchedule == "" {
		cfg.Results.SweepSchedule = "0 3 * * *"
	}
	if cfg.Translator.DefaultLanguage == "" {
		cfg.Translator.DefaultLanguage = "el"
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = filepath.Join(LingoPath(), "audit.db")
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 1024
	}
}
