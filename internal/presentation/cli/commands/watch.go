package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appwatch "github.com/jbctechsolutions/cmdrunner/internal/application/watch"
)

// watchFlags holds the flags for the watch command.
type watchFlags struct {
	Paths []string
}

var watchOpts watchFlags

// NewWatchCmd creates the watch command for re-running a command on file changes.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <command> [args...]",
		Short: "Re-run a manifest command when files change",
		Long: `Run a named command, then re-run it whenever watched files change.

By default the directory containing the manifest is watched. Use --path
to watch other directories instead; the flag repeats. Changes are
debounced so a burst of writes triggers a single re-run, and a failing
run keeps the watcher alive. Press Ctrl-C to stop.

Examples:
  # Re-run tests on every change in the project directory
  cr watch test

  # Watch specific directories
  cr watch --path src --path testdata build`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatch,
	}

	// Flags must precede the command name; later tokens go to the child
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringArrayVar(&watchOpts.Paths, "path", nil, "directory to watch (repeatable; default: the manifest's directory)")

	return cmd
}

// runWatch executes the command once, then again after every debounced change.
func runWatch(cmd *cobra.Command, args []string) error {
	name := args[0]
	extraArgs := args[1:]

	formatter := GetFormatter()
	container := GetContainer()
	appContext := GetAppContext()
	if container == nil || appContext == nil {
		return fmt.Errorf("application not initialized")
	}

	paths := watchOpts.Paths
	if len(paths) == 0 {
		paths = []string{filepath.Dir(manifestPath())}
	}

	// The manifest is re-read on every iteration so command table edits
	// take effect without restarting the watcher.
	runIteration := func() {
		start := time.Now()
		if err := executeNamed(container, name, extraArgs); err != nil {
			formatter.Error("%s", err.Error())
			return
		}
		formatter.Success("%s completed in %s", name, formatDuration(time.Since(start)))
	}

	runIteration()

	service, err := appwatch.NewService(appwatch.ServiceConfig{
		Paths: paths,
		OnChange: func(event appwatch.ChangeEvent) {
			formatter.Info("Change detected: %s", event.Path)
			runIteration()
		},
	}, container.Logger())
	if err != nil {
		return err
	}

	if err := service.Start(appContext.Ctx); err != nil {
		return err
	}
	defer func() { _ = service.Stop() }()

	formatter.Info("Watching %s for changes (Ctrl-C to stop)", strings.Join(paths, ", "))

	<-appContext.Ctx.Done()
	return nil
}
