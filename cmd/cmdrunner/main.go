// Cmdrunner CLI entry point
//
// Cmdrunner (cr) runs named commands defined in a project's TOML
// manifest, including their pre and post hooks, and propagates the
// child's exit code.
package main

import "github.com/jbctechsolutions/cmdrunner/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
