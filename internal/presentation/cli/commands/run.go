// Package commands implements the CLI commands for cmdrunner.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/cmdrunner/internal/application"
	"github.com/jbctechsolutions/cmdrunner/internal/domain/history"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/logging"
)

// NewRunCmd creates the run command for executing manifest commands.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a manifest command with its pre and post hooks",
		Long: `Run a named command from the project manifest.

The command line is looked up in [package.metadata.commands] or
[workspace.metadata.commands] and executed through the shell. When
pre<command> or post<command> entries exist they run before and after
the command, and the sequence stops at the first step that fails.

Arguments after the command name are appended verbatim to every step's
command line.

Examples:
  # Run the test command with its hooks
  cr run test

  # Pass extra arguments through to the command line
  cr run test -v -run TestParse

  # Run against a manifest outside the working directory
  cr -m ../service/project.toml run build`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}

	// Tokens after the command name belong to the child, not to cr
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// runCommand resolves the hook chain and executes it.
func runCommand(cmd *cobra.Command, args []string) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	return executeNamed(container, args[0], args[1:])
}

// executeNamed loads the manifest, resolves the hook chain for name and
// executes it, recording the outcome in history. The executor's error is
// returned unchanged so callers can map it to an exit code.
func executeNamed(container *application.Container, name string, extraArgs []string) error {
	m, err := container.ManifestLoader().Load(manifestPath())
	if err != nil {
		return err
	}

	set, err := m.Resolve(name)
	if err != nil {
		return err
	}

	rec := history.NewRun(name, m.Path())
	rec.Scope = m.Table().Scope().String()
	rec.Steps = set.Names()
	rec.ExtraArgs = extraArgs

	ctx := logging.WithRunID(context.Background(), rec.ID)
	ctx = logging.WithCommand(ctx, name)
	ctx = logging.WithManifest(ctx, m.Path())

	ctx, span := container.Tracer().StartRunSpan(ctx, name, m.Path())
	span.SetScope(rec.Scope)
	span.SetStepCount(len(set))

	logger := container.Logger()
	logging.LogRunStart(ctx, logger, name, len(set))

	result, execErr := container.Executor().Execute(ctx, set, extraArgs)

	var duration time.Duration
	exitCode := 0
	if result != nil {
		exitCode = result.ExitCode
		duration = result.Duration
	}
	rec.ExitCode = exitCode
	rec.Duration = duration

	span.SetExitCode(exitCode)
	if execErr != nil {
		span.EndWithError(execErr)
		logging.LogRunFailed(ctx, logger, name, exitCode, duration)
	} else {
		span.End()
		logging.LogRunComplete(ctx, logger, name, duration)
	}

	saveRunRecord(ctx, container, rec)

	return execErr
}

// saveRunRecord persists the run to history. Saving is best-effort: a
// storage failure is logged and never turns into a run failure.
func saveRunRecord(ctx context.Context, container *application.Container, rec *history.Run) {
	repo := container.HistoryRepository()
	if repo == nil {
		return
	}

	if err := repo.SaveRun(ctx, rec); err != nil {
		logging.LogHistorySaveFailed(ctx, container.Logger(), err)
		return
	}

	if max := container.Config().History.MaxEntries; max > 0 {
		if err := repo.Prune(ctx, max); err != nil {
			logging.LogHistorySaveFailed(ctx, container.Logger(), err)
		}
	}
}

// formatDuration returns a human-readable duration string.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
