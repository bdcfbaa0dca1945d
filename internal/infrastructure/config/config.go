// Package config provides configuration structs and utilities for the cmdrunner application.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Config represents the root configuration for the cmdrunner application.
type Config struct {
	Manifest  ManifestConfig  `yaml:"manifest"`
	Execution ExecutionConfig `yaml:"execution"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ManifestConfig holds configuration for manifest discovery.
type ManifestConfig struct {
	Name string `yaml:"name"` // manifest file name resolved against the working directory
}

// ExecutionConfig holds configuration for subprocess execution.
type ExecutionConfig struct {
	Shell      string `yaml:"shell"`       // shell used to run command lines; empty uses the platform default
	InheritEnv bool   `yaml:"inherit_env"` // pass the parent environment to child processes
}

// HistoryConfig holds configuration for run history persistence.
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`        // SQLite database path; empty uses ~/.cmdrunner/history.db
	MaxEntries int    `yaml:"max_entries"` // runs beyond this count are pruned after each save; 0 disables pruning
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`       // Whether tracing is enabled
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // OTLP collector endpoint
	SampleRate   float64 `yaml:"sample_rate"`   // Sampling rate (0.0 to 1.0)
	ServiceName  string  `yaml:"service_name"`  // Service name for traces
}

// Default configuration values.
const (
	DefaultManifestName = "project.toml"

	DefaultInheritEnv = true

	// History defaults
	DefaultHistoryEnabled    = true
	DefaultHistoryMaxEntries = 1000

	// Logging defaults; warn keeps stdout clean for command output
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	// Tracing defaults
	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "cmdrunner"
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Manifest: ManifestConfig{
			Name: DefaultManifestName,
		},
		Execution: ExecutionConfig{
			InheritEnv: DefaultInheritEnv,
		},
		History: HistoryConfig{
			Enabled:    DefaultHistoryEnabled,
			MaxEntries: DefaultHistoryMaxEntries,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: TracingConfig{
			Enabled:      DefaultTracingEnabled,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	// Validate manifest config
	if err := c.Manifest.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("manifest: %w", err))
	}

	// Validate execution config
	if err := c.Execution.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("execution: %w", err))
	}

	// Validate history config
	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	// Validate tracing config
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the ManifestConfig is valid.
func (m *ManifestConfig) Validate() error {
	if m.Name != "" && filepath.Base(m.Name) != m.Name {
		return fmt.Errorf("name %q must be a bare file name without path separators", m.Name)
	}
	return nil
}

// Validate checks if the ExecutionConfig is valid.
func (e *ExecutionConfig) Validate() error {
	if e.Shell != "" && strings.TrimSpace(e.Shell) == "" {
		return errors.New("shell must not be blank")
	}
	return nil
}

// Validate checks if the HistoryConfig is valid.
func (h *HistoryConfig) Validate() error {
	if h.MaxEntries < 0 {
		return errors.New("max_entries must be non-negative")
	}
	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
			errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if t.OTLPEndpoint != "" {
		parsedURL, err := url.Parse(t.OTLPEndpoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid otlp_endpoint: %w", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errs = append(errs, errors.New("otlp_endpoint must use http or https scheme"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
