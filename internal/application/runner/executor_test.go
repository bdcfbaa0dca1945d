package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"runtime"
	"strings"
	"testing"

	domainerrors "github.com/jbctechsolutions/cmdrunner/internal/domain/errors"
	"github.com/jbctechsolutions/cmdrunner/internal/domain/manifest"
)

// newTestExecutor returns an executor writing to fresh buffers.
func newTestExecutor() (*Executor, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exec := NewExecutor(ExecutorConfig{
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
	})
	return exec, stdout, stderr
}

func TestExecute_SingleCommand(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{{Name: "test", Line: "echo hello"}}

	result, err := exec.Execute(context.Background(), set, nil)
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	want := "> echo hello\nhello\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("Steps = %d, want 1", len(result.Steps))
	}
	if result.Steps[0].Name != "test" {
		t.Errorf("Steps[0].Name = %q, want %q", result.Steps[0].Name, "test")
	}
}

func TestExecute_NoLabelForSingleStep(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{{Name: "test", Line: "echo hello"}}

	if _, err := exec.Execute(context.Background(), set, nil); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if strings.Contains(stdout.String(), "[test]") {
		t.Errorf("output %q contains a phase label for a single-step set", stdout.String())
	}
}

func TestExecute_LabelsWhenMultiple(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{
		{Name: "pretest", Line: "echo pre"},
		{Name: "test", Line: "echo main"},
	}

	result, err := exec.Execute(context.Background(), set, nil)
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	want := "\n[pretest]\n> echo pre\npre\n\n[test]\n> echo main\nmain\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if len(result.Steps) != 2 {
		t.Errorf("Steps = %d, want 2", len(result.Steps))
	}
}

func TestExecute_FullHookChainOrder(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{
		{Name: "pretest", Line: "echo a"},
		{Name: "test", Line: "echo b"},
		{Name: "posttest", Line: "echo c"},
	}

	if _, err := exec.Execute(context.Background(), set, nil); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	out := stdout.String()
	pre := strings.Index(out, "[pretest]")
	main := strings.Index(out, "[test]")
	post := strings.Index(out, "[posttest]")
	if pre < 0 || main < 0 || post < 0 {
		t.Fatalf("output %q missing a phase label", out)
	}
	if !(pre < main && main < post) {
		t.Errorf("labels out of order in %q", out)
	}
}

func TestExecute_ExitCodePropagated(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"exit 3", "exit 3", 3},
		{"exit 42", "exit 42", 42},
		{"false", "false", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, _, _ := newTestExecutor()
			set := manifest.CommandSet{{Name: "test", Line: tt.line}}

			result, err := exec.Execute(context.Background(), set, nil)
			if err == nil {
				t.Fatal("Execute() expected error, got nil")
			}

			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("error = %T, want *ExitError", err)
			}
			if exitErr.Code != tt.want {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.want)
			}
			if !exitErr.Launched() {
				t.Error("Launched() = false for a started child")
			}
			if result.ExitCode != tt.want {
				t.Errorf("result.ExitCode = %d, want %d", result.ExitCode, tt.want)
			}
		})
	}
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{
		{Name: "pretest", Line: "exit 3"},
		{Name: "test", Line: "echo never"},
	}

	result, err := exec.Execute(context.Background(), set, nil)
	if err == nil {
		t.Fatal("Execute() expected error, got nil")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if exitErr.Step != "pretest" {
		t.Errorf("Step = %q, want %q", exitErr.Step, "pretest")
	}
	if exitErr.Code != 3 {
		t.Errorf("Code = %d, want 3", exitErr.Code)
	}

	if len(result.Steps) != 1 {
		t.Errorf("Steps = %d, want 1 (no step after the failure)", len(result.Steps))
	}
	out := stdout.String()
	if strings.Contains(out, "[test]") || strings.Contains(out, "never") {
		t.Errorf("output %q contains phase output after the failing step", out)
	}
}

func TestExecute_ExtraArgsAppended(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{{Name: "test", Line: "echo"}}

	_, err := exec.Execute(context.Background(), set, []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	want := "> echo hello world\nhello world\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExecute_ExtraArgsOnEveryStep(t *testing.T) {
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{
		{Name: "pretest", Line: "echo pre"},
		{Name: "test", Line: "echo main"},
	}

	result, err := exec.Execute(context.Background(), set, []string{"--flag"})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "> echo pre --flag") {
		t.Errorf("output %q missing extra args on pre step", out)
	}
	if !strings.Contains(out, "> echo main --flag") {
		t.Errorf("output %q missing extra args on main step", out)
	}
	for _, step := range result.Steps {
		if !strings.HasSuffix(step.Line, " --flag") {
			t.Errorf("step %q line = %q, want trailing args", step.Name, step.Line)
		}
	}
}

func TestExecute_EmptySet(t *testing.T) {
	exec, _, _ := newTestExecutor()

	_, err := exec.Execute(context.Background(), manifest.CommandSet{}, nil)
	if err == nil {
		t.Fatal("Execute() expected error for empty set, got nil")
	}

	var cmdErr *domainerrors.CmdrunnerError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %T, want *CmdrunnerError", err)
	}
	if cmdErr.Code != domainerrors.CodeValidation {
		t.Errorf("Code = %v, want %v", cmdErr.Code, domainerrors.CodeValidation)
	}
}

func TestExecute_LaunchFailure(t *testing.T) {
	stdout := &bytes.Buffer{}
	exec := NewExecutor(ExecutorConfig{
		Shell:  "definitely-not-a-real-shell-xyz",
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
	})
	set := manifest.CommandSet{{Name: "test", Line: "echo hello"}}

	result, err := exec.Execute(context.Background(), set, nil)
	if err == nil {
		t.Fatal("Execute() expected error, got nil")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if exitErr.Code != ExitLaunchFailure {
		t.Errorf("Code = %d, want %d", exitErr.Code, ExitLaunchFailure)
	}
	if exitErr.Launched() {
		t.Error("Launched() = true for a step that never started")
	}
	if exitErr.Err == nil {
		t.Error("Err = nil, want underlying launch error")
	}
	if result.ExitCode != ExitLaunchFailure {
		t.Errorf("result.ExitCode = %d, want %d", result.ExitCode, ExitLaunchFailure)
	}

	// The echo of the command line happens before the launch attempt
	if !strings.Contains(stdout.String(), "> echo hello") {
		t.Errorf("output %q missing echoed command line", stdout.String())
	}
}

func TestExecute_StderrSeparated(t *testing.T) {
	exec, stdout, stderr := newTestExecutor()
	set := manifest.CommandSet{{Name: "test", Line: "echo oops 1>&2"}}

	if _, err := exec.Execute(context.Background(), set, nil); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if !strings.Contains(stderr.String(), "oops") {
		t.Errorf("stderr = %q, want child stderr output", stderr.String())
	}
	if strings.Contains(stdout.String(), "oops") {
		t.Errorf("stdout = %q, child stderr leaked into stdout", stdout.String())
	}
}

func TestExecute_ShellOperators(t *testing.T) {
	// Commands are handed to the shell on purpose so pipes work
	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{{Name: "test", Line: "echo hello | tr a-z A-Z"}}

	if _, err := exec.Execute(context.Background(), set, nil); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "HELLO") {
		t.Errorf("output = %q, want piped output HELLO", stdout.String())
	}
}

func TestExecute_EnvInheritedByDefault(t *testing.T) {
	t.Setenv("CMDRUNNER_TEST_VAR", "inherited")

	exec, stdout, _ := newTestExecutor()
	set := manifest.CommandSet{{Name: "test", Line: "echo ${CMDRUNNER_TEST_VAR:-missing}"}}

	if _, err := exec.Execute(context.Background(), set, nil); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "inherited") {
		t.Errorf("output = %q, want inherited variable value", stdout.String())
	}
}

func TestExecute_CustomEnvReplacesParent(t *testing.T) {
	t.Setenv("CMDRUNNER_TEST_VAR", "inherited")

	stdout := &bytes.Buffer{}
	exec := NewExecutor(ExecutorConfig{
		Env:    []string{"PATH=" + os.Getenv("PATH"), "GREETING=bonjour"},
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
	})
	set := manifest.CommandSet{{Name: "test", Line: "echo ${GREETING} ${CMDRUNNER_TEST_VAR:-missing}"}}

	if _, err := exec.Execute(context.Background(), set, nil); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "bonjour") {
		t.Errorf("output = %q, want value from the custom environment", out)
	}
	if !strings.Contains(out, "missing") {
		t.Errorf("output = %q, parent variable visible in replaced environment", out)
	}
}

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "child exited non-zero",
			err:  &ExitError{Step: "test", Code: 3},
			want: `command "test" exited with code 3`,
		},
		{
			name: "never started",
			err:  &ExitError{Step: "test", Code: ExitLaunchFailure, Err: errors.New("executable not found")},
			want: `command "test" could not start: executable not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShellInvocation(t *testing.T) {
	platformDefault := []string{"sh", "-c"}
	if runtime.GOOS == "windows" {
		platformDefault = []string{"cmd", "/C"}
	}

	tests := []struct {
		name     string
		override string
		want     []string
	}{
		{"platform default", "", platformDefault},
		{"bash override", "bash", []string{"bash", "-c"}},
		{"zsh override", "/bin/zsh", []string{"/bin/zsh", "-c"}},
		{"cmd override", "cmd.exe", []string{"cmd.exe", "/C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shellInvocation(tt.override); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("shellInvocation(%q) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}
}

func TestNewExecutor_DefaultStreams(t *testing.T) {
	exec := NewExecutor(ExecutorConfig{})

	if exec.config.Stdin == nil || exec.config.Stdout == nil || exec.config.Stderr == nil {
		t.Error("NewExecutor() left a stream unset")
	}
}
