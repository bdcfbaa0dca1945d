// Package manifest provides infrastructure for reading and parsing project
// manifest files from disk.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	domainerrors "github.com/jbctechsolutions/cmdrunner/internal/domain/errors"
	"github.com/jbctechsolutions/cmdrunner/internal/domain/manifest"
)

// DefaultFileName is the manifest looked up in the current working directory
// when no override is configured.
const DefaultFileName = "project.toml"

// document mirrors the two supported nesting locations of the commands table:
// [package.metadata.commands] and [workspace.metadata.commands].
type document struct {
	Package   scopeSection `toml:"package"`
	Workspace scopeSection `toml:"workspace"`
}

type scopeSection struct {
	Metadata metadataSection `toml:"metadata"`
}

type metadataSection struct {
	Commands map[string]string `toml:"commands"`
}

// Loader reads project manifests from disk.
type Loader struct{}

// NewLoader creates a new manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the manifest at path and extracts its command table.
//
// Scope selection uses the decoder's key metadata so an empty-but-present
// table still selects its scope. A manifest defining a commands table under
// both package and workspace is rejected as ambiguous.
func (l *Loader) Load(path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrManifestRead, err)
	}

	var doc document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrManifestParse, err)
	}

	table, err := extractTable(meta, doc, path)
	if err != nil {
		return nil, err
	}
	return manifest.New(path, table), nil
}

// Parse extracts the command table from manifest text that has already been
// read, attributing errors to origin.
func (l *Loader) Parse(text, origin string) (*manifest.Manifest, error) {
	var doc document
	meta, err := toml.Decode(text, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrManifestParse, err)
	}

	table, err := extractTable(meta, doc, origin)
	if err != nil {
		return nil, err
	}
	return manifest.New(origin, table), nil
}

// extractTable picks the commands table from exactly one supported scope.
func extractTable(meta toml.MetaData, doc document, path string) (manifest.CommandTable, error) {
	packageDefined := meta.IsDefined("package", "metadata", "commands")
	workspaceDefined := meta.IsDefined("workspace", "metadata", "commands")

	switch {
	case packageDefined && workspaceDefined:
		return manifest.CommandTable{}, fmt.Errorf("%w: %s", domainerrors.ErrAmbiguousScope, path)
	case packageDefined:
		return manifest.NewPackageTable(doc.Package.Metadata.Commands), nil
	case workspaceDefined:
		return manifest.NewWorkspaceTable(doc.Workspace.Metadata.Commands), nil
	default:
		// No table in either scope; resolution reports ErrNoCommandsTable
		return manifest.CommandTable{}, nil
	}
}
