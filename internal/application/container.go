// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"fmt"
	"os"

	"github.com/jbctechsolutions/cmdrunner/internal/application/ports"
	"github.com/jbctechsolutions/cmdrunner/internal/application/runner"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/config"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/logging"
	infraManifest "github.com/jbctechsolutions/cmdrunner/internal/infrastructure/manifest"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/storage"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	// Configuration
	config  *config.Config
	verbose bool // Raise log level to debug when true

	// Manifest loading
	manifestLoader ports.ManifestLoaderPort

	// Execution
	executor *runner.Executor

	// Run history
	historyRepo ports.HistoryRepositoryPort

	// Observability
	logger *logging.Logger
	tracer *tracing.Tracer
}

// NewContainer creates a new dependency injection container with all services
// initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	// Observability comes first so later stages can log
	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	c.initManifestLoader()
	c.initExecutor()

	if err := c.initHistory(); err != nil {
		_ = c.Close() // Clean up on error
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}

	return c, nil
}

// initObservability initializes the logging and tracing subsystems.
func (c *Container) initObservability() error {
	ctx := context.Background()

	// Default warn keeps stdout clean for command output
	logLevel := logging.LevelWarn

	// Check verbose flag first - overrides config
	if c.verbose {
		logLevel = logging.LevelDebug
	} else {
		switch c.config.Logging.Level {
		case "debug":
			logLevel = logging.LevelDebug
		case "info":
			logLevel = logging.LevelInfo
		case "warn":
			logLevel = logging.LevelWarn
		case "error":
			logLevel = logging.LevelError
		}
	}

	logFormat := logging.FormatText
	if c.config.Logging.Format == "json" {
		logFormat = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.Format = logFormat
	c.logger = logging.New(logCfg)

	// Init installs the global tracer that step spans are created from.
	tracingCfg := tracing.Config{
		Enabled:      c.config.Tracing.Enabled,
		ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
		OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
		ServiceName:  c.config.Tracing.ServiceName,
		Environment:  "production",
		SampleRate:   c.config.Tracing.SampleRate,
	}
	tracer, err := tracing.Init(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	c.tracer = tracer

	return nil
}

// initManifestLoader initializes the TOML manifest loader.
func (c *Container) initManifestLoader() {
	c.manifestLoader = infraManifest.NewLoader()
}

// initExecutor initializes the step executor from the execution settings.
func (c *Container) initExecutor() {
	execCfg := runner.ExecutorConfig{
		Shell: c.config.Execution.Shell,
	}
	if !c.config.Execution.InheritEnv {
		// Scrubbed environment keeps only PATH so the shell can find binaries
		execCfg.Env = []string{"PATH=" + os.Getenv("PATH")}
	}
	c.executor = runner.NewExecutor(execCfg)
}

// initHistory initializes the run history store when enabled.
func (c *Container) initHistory() error {
	if !c.config.History.Enabled {
		return nil
	}

	conn, err := storage.NewConnection(c.config.History.Path)
	if err != nil {
		return fmt.Errorf("failed to create history connection: %w", err)
	}

	if err := conn.Open(); err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}

	// The repository owns the connection and closes it with the container
	c.historyRepo = storage.NewHistoryRepository(conn)
	return nil
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	ctx := context.Background()

	// Shutdown tracer so pending spans are flushed
	if c.tracer != nil {
		_ = c.tracer.Shutdown(ctx)
	}

	if c.historyRepo != nil {
		return c.historyRepo.Close()
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// ManifestLoader returns the manifest loader.
func (c *Container) ManifestLoader() ports.ManifestLoaderPort {
	return c.manifestLoader
}

// Executor returns the step executor.
func (c *Container) Executor() *runner.Executor {
	return c.executor
}

// HistoryRepository returns the run history repository.
// Returns nil if history is disabled.
func (c *Container) HistoryRepository() ports.HistoryRepositoryPort {
	return c.historyRepo
}

// Logger returns the structured logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the OpenTelemetry tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}
