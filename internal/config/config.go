// Package config provides layered application configuration using koanf.
// Precedence, lowest to highest: built-in defaults, an optional YAML file,
// then DOCCHAT_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "docchat.yaml"

// Config holds all configuration for the CLI.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Watch   WatchConfig   `koanf:"watch"`
	Log     LogConfig     `koanf:"log"`
}

// BackendConfig describes the document-processing service to talk to.
type BackendConfig struct {
	BaseURL string `koanf:"base_url"`
	// Protocol selects the ingestion contract: "two-stage" (upload, trigger,
	// poll) or "sync" (upload blocks until ready).
	Protocol string `koanf:"protocol"`
	// Timeout is the per-request timeout in seconds. Sync-protocol uploads
	// run the whole pipeline inside the call, so size it accordingly.
	Timeout int `koanf:"timeout"`
	// PollIntervalMS is the delay between status checks, in milliseconds.
	PollIntervalMS int `koanf:"poll_interval_ms"`
	// MaxResults is the default source-count hint sent with queries.
	MaxResults int `koanf:"max_results"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	// DebounceMS is how long a file must sit unchanged before upload.
	DebounceMS int `koanf:"debounce_ms"`
	// Extensions limits which files get picked up, e.g. [".pdf", ".txt"].
	Extensions []string `koanf:"extensions"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "console" or "json"
}

// Load reads configuration. path may be empty, in which case DefaultFile is
// used when present and silently skipped otherwise; an explicit path that
// does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	setDefaults(k)

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	// DOCCHAT_BACKEND__BASE_URL -> backend.base_url; double underscore is the
	// nesting separator so snake_case keys survive.
	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "DOCCHAT_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DOCCHAT_"))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]interface{}{
		"backend.base_url":         "http://localhost:8000",
		"backend.protocol":         "two-stage",
		"backend.timeout":          60,
		"backend.poll_interval_ms": 1000,
		"backend.max_results":      5,

		"watch.debounce_ms": 750,
		"watch.extensions":  []string{".pdf", ".txt", ".md", ".docx"},

		"log.level":  "info",
		"log.format": "console",
	}
	for key, value := range defaults {
		_ = k.Set(key, value)
	}
}

func validate(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	switch cfg.Backend.Protocol {
	case "two-stage", "sync":
	default:
		return fmt.Errorf("backend.protocol must be \"two-stage\" or \"sync\", got %q", cfg.Backend.Protocol)
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if cfg.Backend.PollIntervalMS <= 0 {
		return fmt.Errorf("backend.poll_interval_ms must be positive")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.Timeout) * time.Second
}

// PollInterval returns the status-poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Backend.PollIntervalMS) * time.Millisecond
}

// WatchDebounce returns the watcher settle time as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
