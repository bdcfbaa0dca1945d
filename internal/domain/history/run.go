// Package history provides domain types for recorded command runs.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/cmdrunner/internal/domain/errors"
)

// Run represents a single recorded invocation of a manifest command.
type Run struct {
	ID           string        // Unique run ID
	Command      string        // Requested command name
	ManifestPath string        // Manifest file the command was resolved from
	Scope        string        // Manifest scope the table came from (package, workspace)
	Steps        []string      // Resolved step names in execution order
	ExtraArgs    []string      // Trailing tokens appended to each step
	ExitCode     int           // Final exit code (0 on success)
	Duration     time.Duration // Wall-clock duration of the whole run
	StartedAt    time.Time     // When the run started
}

// NewRun creates a Run record with a fresh ID and start timestamp.
// Exit code, duration and steps are filled in once execution finishes.
func NewRun(command, manifestPath string) *Run {
	return &Run{
		ID:           uuid.New().String(),
		Command:      strings.TrimSpace(command),
		ManifestPath: strings.TrimSpace(manifestPath),
		StartedAt:    time.Now().UTC(),
	}
}

// Succeeded reports whether the run completed with exit code 0.
func (r *Run) Succeeded() bool {
	return r.ExitCode == 0
}

// Validate checks that the record is complete enough to persist.
func (r *Run) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.ErrRunIDRequired
	}
	if strings.TrimSpace(r.Command) == "" {
		return errors.ErrRunCommandRequired
	}
	return nil
}

// Filter defines criteria for querying run history.
type Filter struct {
	Command string // Filter by requested command name (empty for all)
	Limit   int    // Maximum number of records (0 for no limit)
}

// DefaultFilter returns a Filter with sensible defaults for the history command.
func DefaultFilter() Filter {
	return Filter{Limit: 20}
}

// WithCommand sets the command name filter.
func (f Filter) WithCommand(command string) Filter {
	f.Command = strings.TrimSpace(command)
	return f
}

// WithLimit sets the maximum number of records returned.
func (f Filter) WithLimit(limit int) Filter {
	f.Limit = limit
	return f
}
