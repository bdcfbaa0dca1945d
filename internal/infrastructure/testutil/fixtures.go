package testutil

import (
	"fmt"
	"sort"
	"strings"
	"testing"
)

// ManifestFileName is the manifest name used by the fixture writers.
const ManifestFileName = "project.toml"

// PackageManifest renders a manifest with the given commands under
// [package.metadata.commands]. Entries are sorted by name so the output
// is deterministic.
func PackageManifest(commands map[string]string) string {
	return renderManifest("package", commands)
}

// WorkspaceManifest renders a manifest with the given commands under
// [workspace.metadata.commands].
func WorkspaceManifest(commands map[string]string) string {
	return renderManifest("workspace", commands)
}

// HookChainManifest renders a package-scope manifest defining the full
// pre/main/post chain for a single command name.
func HookChainManifest(name, pre, main, post string) string {
	return PackageManifest(map[string]string{
		"pre" + name:  pre,
		name:          main,
		"post" + name: post,
	})
}

func renderManifest(scope string, commands map[string]string) string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s.metadata.commands]\n", scope)
	for _, name := range names {
		fmt.Fprintf(&b, "%s = %q\n", name, commands[name])
	}
	return b.String()
}

// WriteManifest writes a project.toml with the given contents into dir
// and returns its path.
func WriteManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	return WriteFile(t, dir, ManifestFileName, contents)
}
