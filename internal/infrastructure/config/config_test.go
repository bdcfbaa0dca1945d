package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg == nil {
		t.Fatal("NewDefaultConfig returned nil")
	}

	// Check manifest defaults
	if cfg.Manifest.Name != DefaultManifestName {
		t.Errorf("expected manifest name %q, got %q", DefaultManifestName, cfg.Manifest.Name)
	}

	// Check execution defaults
	if cfg.Execution.Shell != "" {
		t.Errorf("expected empty shell override, got %q", cfg.Execution.Shell)
	}
	if !cfg.Execution.InheritEnv {
		t.Error("expected inherit_env to be enabled by default")
	}

	// Check history defaults
	if !cfg.History.Enabled {
		t.Error("expected history to be enabled by default")
	}
	if cfg.History.MaxEntries != DefaultHistoryMaxEntries {
		t.Errorf("expected max entries %d, got %d", DefaultHistoryMaxEntries, cfg.History.MaxEntries)
	}

	// Check logging defaults
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.Logging.Level)
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("expected log format %q, got %q", DefaultLogFormat, cfg.Logging.Format)
	}

	// Check tracing defaults
	if cfg.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
	if cfg.Tracing.ExporterType != DefaultTracingExporterType {
		t.Errorf("expected exporter type %q, got %q", DefaultTracingExporterType, cfg.Tracing.ExporterType)
	}
	if cfg.Tracing.ServiceName != DefaultTracingServiceName {
		t.Errorf("expected service name %q, got %q", DefaultTracingServiceName, cfg.Tracing.ServiceName)
	}
}

func TestConfig_Validate_DefaultIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestManifestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ManifestConfig
		wantErr bool
	}{
		{
			name:    "bare file name is valid",
			config:  ManifestConfig{Name: "project.toml"},
			wantErr: false,
		},
		{
			name:    "empty name is valid",
			config:  ManifestConfig{Name: ""},
			wantErr: false,
		},
		{
			name:    "name with directory is invalid",
			config:  ManifestConfig{Name: "sub/project.toml"},
			wantErr: true,
		},
		{
			name:    "absolute path is invalid",
			config:  ManifestConfig{Name: "/etc/project.toml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecutionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ExecutionConfig
		wantErr bool
	}{
		{
			name:    "empty shell is valid",
			config:  ExecutionConfig{Shell: ""},
			wantErr: false,
		},
		{
			name:    "shell override is valid",
			config:  ExecutionConfig{Shell: "/bin/bash"},
			wantErr: false,
		},
		{
			name:    "blank shell is invalid",
			config:  ExecutionConfig{Shell: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHistoryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  HistoryConfig
		wantErr bool
	}{
		{
			name:    "valid enabled config",
			config:  HistoryConfig{Enabled: true, MaxEntries: 500},
			wantErr: false,
		},
		{
			name:    "zero max entries disables pruning",
			config:  HistoryConfig{Enabled: true, MaxEntries: 0},
			wantErr: false,
		},
		{
			name:    "negative max entries is invalid",
			config:  HistoryConfig{Enabled: true, MaxEntries: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid debug level",
			config:  LoggingConfig{Level: "debug", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid warn level",
			config:  LoggingConfig{Level: "warn", Format: "text"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  LoggingConfig{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid log format",
			config:  LoggingConfig{Level: "info", Format: "invalid"},
			wantErr: true,
		},
		{
			name:    "empty values are valid",
			config:  LoggingConfig{Level: "", Format: ""},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  TracingConfig
		wantErr bool
	}{
		{
			name:    "disabled config is valid",
			config:  TracingConfig{Enabled: false},
			wantErr: false,
		},
		{
			name:    "valid stdout exporter",
			config:  TracingConfig{Enabled: true, ExporterType: "stdout", SampleRate: 1.0, ServiceName: "cmdrunner"},
			wantErr: false,
		},
		{
			name:    "valid otlp exporter",
			config:  TracingConfig{Enabled: true, ExporterType: "otlp", OTLPEndpoint: "http://localhost:4318", SampleRate: 0.5, ServiceName: "cmdrunner"},
			wantErr: false,
		},
		{
			name:    "invalid exporter type",
			config:  TracingConfig{Enabled: true, ExporterType: "jaeger", SampleRate: 1.0, ServiceName: "cmdrunner"},
			wantErr: true,
		},
		{
			name:    "otlp without endpoint is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "otlp", SampleRate: 1.0, ServiceName: "cmdrunner"},
			wantErr: true,
		},
		{
			name:    "sample rate above 1 is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "stdout", SampleRate: 1.5, ServiceName: "cmdrunner"},
			wantErr: true,
		},
		{
			name:    "missing service name is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "stdout", SampleRate: 1.0},
			wantErr: true,
		},
		{
			name:    "endpoint without http scheme is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "otlp", OTLPEndpoint: "ftp://collector", SampleRate: 1.0, ServiceName: "cmdrunner"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Manifest: ManifestConfig{
			Name: "nested/project.toml", // Invalid: contains a separator
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: -5, // Invalid: negative
		},
		Logging: LoggingConfig{
			Level:  "invalid", // Invalid: not a valid level
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:      true,
			ExporterType: "otlp", // Invalid: missing endpoint
			SampleRate:   2.0,     // Invalid: out of range
			ServiceName:  "",      // Invalid: empty when enabled
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	for _, want := range []string{"manifest:", "history:", "logging:", "tracing:"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected joined error to mention %q, got: %v", want, err)
		}
	}
}

func TestLoader_LoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Manifest.Name != DefaultManifestName {
		t.Errorf("expected default manifest name, got %q", cfg.Manifest.Name)
	}
}

func TestLoader_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	cfg := NewDefaultConfig()
	cfg.Manifest.Name = "commands.toml"
	cfg.Execution.Shell = "/bin/zsh"
	cfg.History.MaxEntries = 42

	if err := loader.Save(cfg, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Saved file carries a header comment and restricted permissions
	data, err := os.ReadFile(loader.DefaultConfigPath())
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Cmdrunner Configuration") {
		t.Error("expected header comment in saved config")
	}

	info, err := os.Stat(loader.DefaultConfigPath())
	if err != nil {
		t.Fatalf("failed to stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected permissions 0600, got %v", info.Mode().Perm())
	}

	loaded, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Manifest.Name != "commands.toml" {
		t.Errorf("expected manifest name 'commands.toml', got %q", loaded.Manifest.Name)
	}
	if loaded.Execution.Shell != "/bin/zsh" {
		t.Errorf("expected shell '/bin/zsh', got %q", loaded.Execution.Shell)
	}
	if loaded.History.MaxEntries != 42 {
		t.Errorf("expected max entries 42, got %d", loaded.History.MaxEntries)
	}
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	if _, err := loader.LoadFromFile(filepath.Join(loader.ConfigDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file, got nil")
	}
}

func TestLoader_Load_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	partial := "history:\n  max_entries: 7\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	cfg, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.History.MaxEntries != 7 {
		t.Errorf("expected max entries 7, got %d", cfg.History.MaxEntries)
	}
	// Untouched sections keep their defaults
	if cfg.Manifest.Name != DefaultManifestName {
		t.Errorf("expected default manifest name, got %q", cfg.Manifest.Name)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}
