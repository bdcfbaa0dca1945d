package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/cmdrunner/internal/presentation/cli/output"
)

// InitResult holds the result of the init command for JSON output.
type InitResult struct {
	Manifest string `json:"manifest"`
	Scope    string `json:"scope"`
	Created  bool   `json:"created"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var force bool
	var workspace bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter project manifest",
		Long: `Create a starter project.toml in the current directory.

The generated manifest defines its commands under
[package.metadata.commands]. Use --workspace to generate a
[workspace.metadata.commands] table instead.

When the manifest already exists, init asks before overwriting it
unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force, workspace)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing manifest without asking")
	cmd.Flags().BoolVar(&workspace, "workspace", false, "define commands at workspace scope")

	return cmd
}

// prompter handles interactive user input.
type prompter struct {
	reader    *bufio.Reader
	formatter *output.Formatter
}

// newPrompter creates a new prompter.
func newPrompter(formatter *output.Formatter) *prompter {
	return &prompter{
		reader:    bufio.NewReader(os.Stdin),
		formatter: formatter,
	}
}

// promptYesNo asks a yes/no question and returns true for yes.
func (p *prompter) promptYesNo(question string, defaultYes bool) (bool, error) {
	defaultStr := "[y/N]"
	if defaultYes {
		defaultStr = "[Y/n]"
	}

	p.formatter.Print("%s %s: ", question, defaultStr)

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return defaultYes, nil
	}

	return answer == "y" || answer == "yes", nil
}

func runInit(force, workspace bool) error {
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	// Init runs before the app context exists, so this resolves to the
	// --manifest flag or the default file name
	target := manifestPath()

	scope := "package"
	if workspace {
		scope = "workspace"
	}

	// Check for an existing manifest
	if _, err := os.Stat(target); err == nil && !force {
		if format == output.FormatJSON {
			return formatter.JSON(InitResult{
				Manifest: target,
				Scope:    scope,
				Created:  false,
			})
		}

		p := newPrompter(formatter)
		overwrite, err := p.promptYesNo(fmt.Sprintf("Manifest %s already exists. Overwrite", target), false)
		if err != nil {
			return err
		}
		if !overwrite {
			formatter.Info("Keeping existing %s", target)
			return nil
		}
	}

	if err := writeManifestFile(target, starterManifest(scope)); err != nil {
		return err
	}

	if format == output.FormatJSON {
		return formatter.JSON(InitResult{
			Manifest: target,
			Scope:    scope,
			Created:  true,
		})
	}

	formatter.Success("Created %s", target)
	formatter.Item("Scope", scope)
	formatter.Println("")
	formatter.Info("Run 'cr list' to see the defined commands")
	formatter.Info("Run 'cr run <command>' to execute one")

	return nil
}

// starterManifest returns the contents of a fresh manifest for the scope.
func starterManifest(scope string) string {
	return fmt.Sprintf(`# Commands run with 'cr run <name>'.
# pre<name> and post<name> entries run automatically around <name>.

[%s.metadata.commands]
build = "echo build"
test = "echo test"
`, scope)
}

// writeManifestFile writes the manifest, creating parent directories as needed.
func writeManifestFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
