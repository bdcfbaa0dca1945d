// Package manifest provides the domain model for project manifests
// and the command resolution rules applied to them.
package manifest

import (
	"sort"
	"strings"
)

// Scope identifies which manifest section supplied the commands table.
type Scope int

const (
	// ScopeNone means no supported section defines a commands table.
	ScopeNone Scope = iota
	// ScopePackage means the table came from [package.metadata.commands].
	ScopePackage
	// ScopeWorkspace means the table came from [workspace.metadata.commands].
	ScopeWorkspace
)

// String returns the scope's manifest section name.
func (s Scope) String() string {
	switch s {
	case ScopePackage:
		return "package"
	case ScopeWorkspace:
		return "workspace"
	default:
		return "none"
	}
}

// CommandTable is a tagged union over the two manifest sections that may
// define commands. Exactly one scope is ever populated; the zero value is
// the "no table defined" variant.
type CommandTable struct {
	scope    Scope
	commands map[string]string
}

// NewPackageTable builds the table variant backed by [package.metadata.commands].
func NewPackageTable(commands map[string]string) CommandTable {
	return newTable(ScopePackage, commands)
}

// NewWorkspaceTable builds the table variant backed by [workspace.metadata.commands].
func NewWorkspaceTable(commands map[string]string) CommandTable {
	return newTable(ScopeWorkspace, commands)
}

func newTable(scope Scope, commands map[string]string) CommandTable {
	// Copy to keep the table immutable after construction
	copied := make(map[string]string, len(commands))
	for name, line := range commands {
		copied[name] = line
	}
	return CommandTable{scope: scope, commands: copied}
}

// Scope returns which manifest section the table came from.
func (t CommandTable) Scope() Scope {
	return t.scope
}

// Defined reports whether any supported section defined a commands table.
// An empty-but-present table counts as defined.
func (t CommandTable) Defined() bool {
	return t.scope != ScopeNone
}

// Lookup returns the shell command string for name, if present.
func (t CommandTable) Lookup(name string) (string, bool) {
	line, ok := t.commands[name]
	return line, ok
}

// Len returns the number of commands in the table.
func (t CommandTable) Len() int {
	return len(t.commands)
}

// Names returns the command names in the table, sorted.
func (t CommandTable) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commands returns a copy of the name to shell-command mapping.
func (t CommandTable) Commands() map[string]string {
	commands := make(map[string]string, len(t.commands))
	for name, line := range t.commands {
		commands[name] = line
	}
	return commands
}

// Manifest is the parsed project manifest. It is read once per invocation
// and read-only afterward.
type Manifest struct {
	path  string
	table CommandTable
}

// New creates a Manifest for the file at path with the extracted table.
func New(path string, table CommandTable) *Manifest {
	return &Manifest{
		path:  strings.TrimSpace(path),
		table: table,
	}
}

// Path returns the manifest file path the document was parsed from.
func (m *Manifest) Path() string {
	return m.path
}

// Table returns the extracted command table.
func (m *Manifest) Table() CommandTable {
	return m.table
}
