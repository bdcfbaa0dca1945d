// Package commands implements the CLI commands for cmdrunner.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/cmdrunner/internal/application"
	"github.com/jbctechsolutions/cmdrunner/internal/application/runner"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/config"
	"github.com/jbctechsolutions/cmdrunner/internal/presentation/cli/output"
)

// Version information - set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GlobalFlags holds the global CLI flags.
type GlobalFlags struct {
	ConfigFile string
	Manifest   string
	Output     string
	Verbose    bool
}

// AppContext holds the application runtime context.
type AppContext struct {
	Config     *config.Config
	Formatter  *output.Formatter
	Flags      *GlobalFlags
	Container  *application.Container
	Ctx        context.Context
	cancelFunc context.CancelFunc
}

var (
	globalFlags GlobalFlags
	appCtx      *AppContext
	appCtxMu    sync.RWMutex // Protects appCtx for thread-safe access
)

// NewRootCmd creates the root command for the cmdrunner CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cr",
		Short: "Cmdrunner - Manifest-driven command runner",
		Long: `Cmdrunner (cr) runs named commands defined in a project's TOML manifest.

Commands live in a [package.metadata.commands] or
[workspace.metadata.commands] table in project.toml. Running a command
also runs its pre<name> and post<name> hooks when they are defined, in
that order, stopping at the first step that fails.

Example manifest:

  [package.metadata.commands]
  pretest = "echo checking"
  test = "go test ./..."`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help, version, init, and completion commands
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "init" {
				return nil
			}
			return initializeApp()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "config file path (default: ~/.cmdrunner/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Manifest, "manifest", "m", "", "manifest file path (default: project.toml in the current directory)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "text", "output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}

// initializeApp initializes the application context.
func initializeApp() error {
	// Determine output format
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}

	// Create formatter
	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	// Load or create default config using the loader
	cfg, err := loadConfig(globalFlags.ConfigFile)
	if err != nil {
		if globalFlags.Verbose {
			formatter.Warning("Could not load config: %v, using defaults", err)
		}
		cfg = config.NewDefaultConfig()
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize the application container with all dependencies
	container, err := application.NewContainer(cfg, globalFlags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Store app context with mutex protection
	appCtxMu.Lock()
	appCtx = &AppContext{
		Config:     cfg,
		Formatter:  formatter,
		Flags:      &globalFlags,
		Container:  container,
		Ctx:        ctx,
		cancelFunc: cancel,
	}
	appCtxMu.Unlock()

	return nil
}

// loadConfig loads configuration from the specified file or default location.
func loadConfig(configPath string) (*config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	return loader.Load(configPath)
}

// manifestPath returns the manifest file to operate on. The --manifest
// flag wins over the configured name, which resolves against the current
// working directory.
func manifestPath() string {
	if globalFlags.Manifest != "" {
		return globalFlags.Manifest
	}

	if ctx := GetAppContext(); ctx != nil && ctx.Config != nil && ctx.Config.Manifest.Name != "" {
		return ctx.Config.Manifest.Name
	}
	return config.DefaultManifestName
}

// GetAppContext returns the current application context.
// Returns nil if the app hasn't been initialized.
// Thread-safe via mutex protection.
func GetAppContext() *AppContext {
	appCtxMu.RLock()
	defer appCtxMu.RUnlock()
	return appCtx
}

// GetFormatter returns the output formatter.
// Creates a default formatter if app context is not initialized.
// Thread-safe via mutex protection.
func GetFormatter() *output.Formatter {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Formatter
	}
	return output.NewFormatter()
}

// GetContainer returns the application container.
// Returns nil if the app hasn't been initialized.
// Thread-safe via mutex protection.
func GetContainer() *application.Container {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Container
	}
	return nil
}

// Shutdown performs graceful shutdown of the application.
// Cancels the context and releases container resources.
func Shutdown() {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()

	if appCtx == nil {
		return
	}
	if appCtx.cancelFunc != nil {
		appCtx.cancelFunc()
	}
	if appCtx.Container != nil {
		_ = appCtx.Container.Close()
	}
}

// Execute runs the root command and maps the outcome to the process exit
// code: the child's own code when a step fails after launching, 127 when
// a step cannot be launched, 130 on SIGINT or SIGTERM, and 2 for every
// error raised before a step is spawned.
func Execute() {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run command in a goroutine
	errChan := make(chan error, 1)
	go func() {
		rootCmd := NewRootCmd()
		errChan <- rootCmd.Execute()
	}()

	// Diagnostics go to stderr so stdout carries only command output
	errOut := output.NewFormatter(
		output.WithWriter(os.Stderr),
		output.WithColor(output.IsColorSupported()),
	)

	// Wait for either command completion or signal
	select {
	case err := <-errChan:
		if err != nil {
			var exitErr *runner.ExitError
			if errors.As(err, &exitErr) {
				// A launched step already wrote its own diagnostics
				if !exitErr.Launched() {
					errOut.Error("%s", exitErr.Error())
				}
				Shutdown()
				os.Exit(exitErr.Code)
			}
			errOut.Error("%s", err.Error())
			Shutdown()
			os.Exit(2)
		}
	case sig := <-sigChan:
		errOut.Warning("Received signal %v, shutting down...", sig)
		Shutdown()
		os.Exit(130) // Standard exit code for SIGINT
	}

	Shutdown()
}
