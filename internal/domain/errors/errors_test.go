package errors

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrManifestRead", ErrManifestRead, "could not read manifest"},
		{"ErrManifestParse", ErrManifestParse, "could not parse manifest"},
		{"ErrNoCommandsTable", ErrNoCommandsTable, "no commands table found"},
		{"ErrAmbiguousScope", ErrAmbiguousScope, "commands table defined in both package and workspace scope"},
		{"ErrCommandNotFound", ErrCommandNotFound, "command not found"},
		{"ErrCommandNameRequired", ErrCommandNameRequired, "command name required"},
		{"ErrRunIDRequired", ErrRunIDRequired, "run ID required"},
		{"ErrRunCommandRequired", ErrRunCommandRequired, "run command required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCmdrunnerError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CmdrunnerError
		want string
	}{
		{
			name: "with cause",
			err:  NewError(CodeManifest, "invalid manifest", ErrManifestParse),
			want: "[MANIFEST] invalid manifest: could not parse manifest",
		},
		{
			name: "without cause",
			err:  NewError(CodeNotFound, "resource not found", nil),
			want: "[NOT_FOUND] resource not found",
		},
		{
			name: "execution error",
			err:  NewError(CodeExecution, "step failed", ErrCommandNotFound),
			want: "[EXECUTION] step failed: command not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCmdrunnerError_Unwrap(t *testing.T) {
	cause := ErrCommandNotFound
	err := NewError(CodeNotFound, "command lookup failed", cause)

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestCmdrunnerError_Unwrap_Nil(t *testing.T) {
	err := NewError(CodeValidation, "validation failed", nil)

	unwrapped := err.Unwrap()
	if unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestNewError(t *testing.T) {
	err := NewError(CodeExecution, "execution failed", ErrCommandNotFound)

	if err.Code != CodeExecution {
		t.Errorf("Code = %v, want %v", err.Code, CodeExecution)
	}
	if err.Message != "execution failed" {
		t.Errorf("Message = %v, want %v", err.Message, "execution failed")
	}
	if err.Cause != ErrCommandNotFound {
		t.Errorf("Cause = %v, want %v", err.Cause, ErrCommandNotFound)
	}
	if err.Context == nil {
		t.Error("Context should be initialized, got nil")
	}
}

func TestWithContext(t *testing.T) {
	err := NewError(CodeValidation, "validation failed", nil)
	err = WithContext(err, "field", "name")
	err = WithContext(err, "value", "")

	if err.Context["field"] != "name" {
		t.Errorf("Context[field] = %v, want %v", err.Context["field"], "name")
	}
	if err.Context["value"] != "" {
		t.Errorf("Context[value] = %v, want empty string", err.Context["value"])
	}
}

func TestWithContext_NilContext(t *testing.T) {
	// Create error with nil context to test initialization
	err := &CmdrunnerError{
		Code:    CodeValidation,
		Message: "test",
		Context: nil,
	}

	err = WithContext(err, "key", "value")

	if err.Context == nil {
		t.Error("Context should be initialized after WithContext")
	}
	if err.Context["key"] != "value" {
		t.Errorf("Context[key] = %v, want %v", err.Context["key"], "value")
	}
}

func TestErrorsIs(t *testing.T) {
	wrapped := NewError(CodeNotFound, "command not found in manifest", ErrCommandNotFound)

	if !errors.Is(wrapped, ErrCommandNotFound) {
		t.Error("errors.Is should return true for wrapped sentinel error")
	}

	if errors.Is(wrapped, ErrNoCommandsTable) {
		t.Error("errors.Is should return false for different sentinel error")
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := NewError(CodeManifest, "decode error", ErrManifestParse)

	var cmdErr *CmdrunnerError
	if !errors.As(wrapped, &cmdErr) {
		t.Error("errors.As should return true for CmdrunnerError")
	}

	if cmdErr.Code != CodeManifest {
		t.Errorf("Code = %v, want %v", cmdErr.Code, CodeManifest)
	}
}

func TestIs_Wrapper(t *testing.T) {
	err := NewError(CodeNotFound, "not found", ErrCommandNotFound)

	if !Is(err, ErrCommandNotFound) {
		t.Error("Is should return true for wrapped error")
	}
	if Is(err, ErrAmbiguousScope) {
		t.Error("Is should return false for non-matching error")
	}
}

func TestAs_Wrapper(t *testing.T) {
	err := NewError(CodeExecution, "failed", nil)

	var target *CmdrunnerError
	if !As(err, &target) {
		t.Error("As should return true and set target")
	}
	if target.Code != CodeExecution {
		t.Errorf("target.Code = %v, want %v", target.Code, CodeExecution)
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{CodeValidation, "VALIDATION"},
		{CodeNotFound, "NOT_FOUND"},
		{CodeManifest, "MANIFEST"},
		{CodeExecution, "EXECUTION"},
		{CodeStorage, "STORAGE"},
		{CodeConfiguration, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if string(tt.code) != tt.want {
				t.Errorf("got %q, want %q", string(tt.code), tt.want)
			}
		})
	}
}

func TestChainedContext(t *testing.T) {
	err := NewError(CodeManifest, "manifest rejected", ErrAmbiguousScope)
	err = WithContext(err, "path", "project.toml")
	err = WithContext(err, "package_defined", true)
	err = WithContext(err, "workspace_defined", true)

	if len(err.Context) != 3 {
		t.Errorf("Context length = %d, want 3", len(err.Context))
	}
	if err.Context["path"] != "project.toml" {
		t.Errorf("Context[path] = %v, want project.toml", err.Context["path"])
	}
	if err.Context["package_defined"] != true {
		t.Errorf("Context[package_defined] = %v, want true", err.Context["package_defined"])
	}
	if err.Context["workspace_defined"] != true {
		t.Errorf("Context[workspace_defined] = %v, want true", err.Context["workspace_defined"])
	}
}
