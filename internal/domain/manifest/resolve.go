package manifest

import (
	"fmt"
	"strings"

	"github.com/jbctechsolutions/cmdrunner/internal/domain/errors"
)

// Hook name prefixes derived from a requested command name.
const (
	HookPrefixPre  = "pre"
	HookPrefixPost = "post"
)

// Command is one resolvable (name, shell-command-string) pair.
type Command struct {
	Name string
	Line string
}

// CommandSet is the ordered list of commands to execute for one requested
// name: pre<name> first if present, <name> second, post<name> last if present.
type CommandSet []Command

// Multiple reports whether the set has more than one entry, which controls
// whether phase labels are printed during execution.
func (s CommandSet) Multiple() bool {
	return len(s) > 1
}

// Names returns the step names in execution order.
func (s CommandSet) Names() []string {
	names := make([]string, len(s))
	for i, cmd := range s {
		names[i] = cmd.Name
	}
	return names
}

// HookNames returns the candidate names for a requested command in lookup
// order: pre<name>, <name>, post<name>.
func HookNames(name string) []string {
	return []string{
		HookPrefixPre + name,
		name,
		HookPrefixPost + name,
	}
}

// Resolve derives the ordered CommandSet for the requested command name.
//
// The requested name itself is mandatory: if it has no entry the resolution
// fails with ErrCommandNotFound even when pre/post variants exist. A manifest
// whose table is undefined in both supported scopes fails with
// ErrNoCommandsTable.
func (m *Manifest) Resolve(name string) (CommandSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ErrCommandNameRequired
	}
	if !m.table.Defined() {
		return nil, errors.ErrNoCommandsTable
	}

	set := make(CommandSet, 0, 3)
	for _, candidate := range HookNames(name) {
		line, ok := m.table.Lookup(candidate)
		if !ok {
			if candidate == name {
				return nil, fmt.Errorf("%w: %q", errors.ErrCommandNotFound, name)
			}
			continue
		}
		set = append(set, Command{Name: candidate, Line: line})
	}
	return set, nil
}
