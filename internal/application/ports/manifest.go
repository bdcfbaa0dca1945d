// Package ports defines the application layer port interfaces following hexagonal architecture.
// Ports are abstractions that allow the application core to interact with external systems
// (adapters) without knowing their implementation details.
package ports

import (
	"github.com/jbctechsolutions/cmdrunner/internal/domain/manifest"
)

// ManifestLoaderPort defines the interface for locating and parsing project manifests.
// Implementations might read TOML from disk, an embedded fixture, or a remote source.
type ManifestLoaderPort interface {
	// Load reads and parses the manifest at path.
	// Returns ErrManifestRead if the file cannot be read, ErrManifestParse if
	// the document is malformed, and ErrAmbiguousScope if both supported
	// scopes define a commands table.
	Load(path string) (*manifest.Manifest, error)
}
