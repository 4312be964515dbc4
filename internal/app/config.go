package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ContentPath string // .hcl file or directory declaring the content
	OutputPath  string // overrides the content's output root when set

	LogFormat string
	LogLevel  string

	Force bool

	StatusPort      int
	EventsURL       string
	EventsNamespace string
}

// NewConfig validates cfg and returns a normalised copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ContentPath == "" {
		return nil, errors.New("ContentPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("invalid status port %d", cfg.StatusPort)
	}
	if cfg.EventsNamespace != "" && !strings.HasPrefix(cfg.EventsNamespace, "/") {
		cfg.EventsNamespace = "/" + cfg.EventsNamespace
	}
	return &cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be 'debug', 'info', 'warn', or 'error'", s)
}
