package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for Lingo.
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway"`
	Queue      QueueConfig      `yaml:"queue"`
	Results    ResultsConfig    `yaml:"results"`
	Translator TranslatorConfig `yaml:"translator"`
	Audit      AuditConfig      `yaml:"audit"`
	Events     EventsConfig     `yaml:"events"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // advertised in agent cards (default: http://host:port)
}

// QueueConfig holds the Redis work queue settings.
type QueueConfig struct {
	Addr         string   `yaml:"addr"`
	Password     string   `yaml:"password,omitempty"`
	DB           int      `yaml:"db"`
	Name         string   `yaml:"name"`          // queue name (default: translation-jobs)
	PollInterval Duration `yaml:"poll_interval"` // worker idle wait (default: 5s)
	Lease        Duration `yaml:"lease"`         // message visibility timeout (default: 5m)
}

// ResultsConfig holds the result store settings.
type ResultsConfig struct {
	Backend       string   `yaml:"backend"` // "file" or "redis"
	Dir           string   `yaml:"dir"`     // file backend directory (default: $LINGO_PATH/results)
	Addr          string   `yaml:"addr"`    // redis backend address (default: queue addr)
	Retention     Duration `yaml:"retention"`
	SweepSchedule string   `yaml:"sweep_schedule"` // cron spec for the retention sweeper
}

// TranslatorConfig holds the translation provider settings.
type TranslatorConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	APIKey          string `yaml:"api_key"` // direct key or ${{ .Env.VAR }} template
	DefaultLanguage string `yaml:"default_language"`
}

// AuditConfig holds the audit log settings.
type AuditConfig struct {
	Path string `yaml:"path"` // sqlite file (default: $LINGO_PATH/audit.db)
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
