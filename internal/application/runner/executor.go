// Package runner provides the sequenced executor that runs a resolved
// command set as shell subprocesses.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	domainerrors "github.com/jbctechsolutions/cmdrunner/internal/domain/errors"
	"github.com/jbctechsolutions/cmdrunner/internal/domain/manifest"
	"github.com/jbctechsolutions/cmdrunner/internal/infrastructure/tracing"
)

// Exit codes for abnormal step outcomes.
const (
	// ExitSuccess is the exit code of a fully successful run.
	ExitSuccess = 0
	// ExitFailure is propagated when a child terminates on a signal
	// instead of exiting normally.
	ExitFailure = 1
	// ExitLaunchFailure is propagated when a step cannot be started.
	ExitLaunchFailure = 127
)

// ExitError reports the step that ended the sequence and the exit code the
// process should propagate.
type ExitError struct {
	Step string // step name that failed
	Code int    // exit code to propagate
	Err  error  // launch error when the step never started
}

// Error returns a human-readable description of the failure.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q could not start: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("command %q exited with code %d", e.Step, e.Code)
}

// Unwrap returns the launch error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Launched reports whether the step's child process actually started.
// When it did, the child's own output is the only failure message the
// caller should surface.
func (e *ExitError) Launched() bool {
	return e.Err == nil
}

// StepResult captures the outcome of one executed step.
type StepResult struct {
	Name     string        // Step name (pre<cmd>, <cmd> or post<cmd>)
	Line     string        // Full command line handed to the shell
	ExitCode int           // Exit code of the step
	Duration time.Duration // Wall-clock duration of the step
}

// Result aggregates the outcome of executing a command set.
type Result struct {
	Steps    []StepResult  // Steps attempted, in order
	ExitCode int           // Exit code of the run (0 on success)
	Duration time.Duration // Wall-clock duration of the whole sequence
}

// ExecutorConfig contains configuration options for the executor.
type ExecutorConfig struct {
	Shell  string    // Shell binary override; empty selects the platform default
	Env    []string  // Child environment; nil inherits the parent environment
	Stdin  io.Reader // Child stdin (defaults to os.Stdin)
	Stdout io.Writer // Labels, echoed lines and child stdout (defaults to os.Stdout)
	Stderr io.Writer // Child stderr (defaults to os.Stderr)
}

// DefaultExecutorConfig returns the default executor configuration. The
// process's own standard streams are handed to the child so its output
// interleaves in real time.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Executor runs a resolved command set in order, stopping at the first step
// that does not exit zero.
type Executor struct {
	config ExecutorConfig
	tracer *tracing.Tracer
}

// NewExecutor creates a new sequenced executor with the given configuration.
func NewExecutor(config ExecutorConfig) *Executor {
	def := DefaultExecutorConfig()
	if config.Stdin == nil {
		config.Stdin = def.Stdin
	}
	if config.Stdout == nil {
		config.Stdout = def.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = def.Stderr
	}

	return &Executor{
		config: config,
		tracer: tracing.Default(),
	}
}

// Execute runs each command in the set in order. Before each step it prints
// a `[<name>]` label (only when the set has more than one step) and the
// echoed `> <line>` command line. The first step that exits non-zero stops
// the sequence; the returned error is an *ExitError carrying the code to
// propagate. A nil error means every step exited zero.
//
// Extra arguments are appended verbatim to every step's command line,
// joined by single spaces. The context is used for tracing only: the run is
// never cancelled from inside the tool, and the child owns its own signal
// handling.
func (e *Executor) Execute(ctx context.Context, set manifest.CommandSet, extraArgs []string) (*Result, error) {
	if len(set) == 0 {
		return nil, domainerrors.NewError(domainerrors.CodeValidation, "command set is empty", nil)
	}

	result := &Result{Steps: make([]StepResult, 0, len(set))}
	start := time.Now()

	for _, cmd := range set {
		line := cmd.Line
		if len(extraArgs) > 0 {
			line += " " + strings.Join(extraArgs, " ")
		}

		if set.Multiple() {
			fmt.Fprintf(e.config.Stdout, "\n[%s]\n", cmd.Name)
		}
		fmt.Fprintf(e.config.Stdout, "> %s\n", line)

		_, span := e.tracer.StartStepSpan(ctx, cmd.Name, line)
		stepStart := time.Now()
		code, launchErr := e.runStep(line)
		stepDuration := time.Since(stepStart)

		span.SetExitCode(code)
		switch {
		case launchErr != nil:
			span.EndWithError(launchErr)
		case code != ExitSuccess:
			span.EndWithError(fmt.Errorf("exit status %d", code))
		default:
			span.End()
		}

		result.Steps = append(result.Steps, StepResult{
			Name:     cmd.Name,
			Line:     line,
			ExitCode: code,
			Duration: stepDuration,
		})

		if code != ExitSuccess {
			result.ExitCode = code
			result.Duration = time.Since(start)
			return result, &ExitError{Step: cmd.Name, Code: code, Err: launchErr}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// runStep hands the line to the shell and blocks until it terminates.
// The returned error is non-nil only when the step never ran.
func (e *Executor) runStep(line string) (int, error) {
	argv := append(shellInvocation(e.config.Shell), line)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = e.config.Stdin
	cmd.Stdout = e.config.Stdout
	cmd.Stderr = e.config.Stderr
	if e.config.Env != nil {
		cmd.Env = e.config.Env
	}

	err := cmd.Run()
	if err == nil {
		return ExitSuccess, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		// Killed by a signal rather than a normal exit
		return ExitFailure, nil
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ExitLaunchFailure, err
	}
	return ExitFailure, err
}

// shellInvocation returns the argv prefix that hands a command line to the
// shell. The override names a shell binary; empty selects the platform
// default. Commands run through the shell on purpose so they may contain
// pipes, redirection and other shell operators.
func shellInvocation(override string) []string {
	if override == "" {
		if runtime.GOOS == "windows" {
			return []string{"cmd", "/C"}
		}
		return []string{"sh", "-c"}
	}

	base := strings.TrimSuffix(strings.ToLower(filepath.Base(override)), ".exe")
	if base == "cmd" {
		return []string{override, "/C"}
	}
	return []string{override, "-c"}
}
