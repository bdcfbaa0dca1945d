// Package commands implements the CLI commands for cmdrunner.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	domainerrors "github.com/jbctechsolutions/cmdrunner/internal/domain/errors"
	"github.com/jbctechsolutions/cmdrunner/internal/presentation/cli/output"
)

// CommandInfo represents one manifest command for display.
type CommandInfo struct {
	Name string `json:"name"`
	Line string `json:"command"`
}

// CommandListOutput represents the output for the list command.
type CommandListOutput struct {
	Manifest string        `json:"manifest"`
	Scope    string        `json:"scope"`
	Commands []CommandInfo `json:"commands"`
	Count    int           `json:"count"`
}

// NewListCmd creates the list command for displaying manifest commands.
func NewListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the commands defined in the manifest",
		Long: `Display the commands defined in the project manifest.

The output shows the scope the commands were found in (package or
workspace) and each command name with its command line. Hook entries
(pre<name>, post<name>) are listed like any other command.`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, table (default: uses global --output flag)")

	return cmd
}

func runList(formatFlag string) error {
	// Determine output format
	// Priority: --format flag > global --output flag > default (text)
	format := output.FormatText
	if formatFlag != "" {
		parsedFormat, err := output.ParseFormat(formatFlag)
		if err != nil {
			return fmt.Errorf("invalid format: %s (valid options: text, json, table)", formatFlag)
		}
		format = parsedFormat
	} else if globalFlags.Output == "json" {
		format = output.FormatJSON
	} else if globalFlags.Output == "table" {
		format = output.FormatTable
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	path := manifestPath()
	m, err := container.ManifestLoader().Load(path)
	if err != nil {
		return err
	}

	table := m.Table()
	if !table.Defined() {
		return fmt.Errorf("%w: %s", domainerrors.ErrNoCommandsTable, path)
	}

	// Names come back sorted so the listing is stable
	commands := make([]CommandInfo, 0, table.Len())
	for _, name := range table.Names() {
		line, _ := table.Lookup(name)
		commands = append(commands, CommandInfo{Name: name, Line: line})
	}

	listOutput := CommandListOutput{
		Manifest: m.Path(),
		Scope:    table.Scope().String(),
		Commands: commands,
		Count:    len(commands),
	}

	switch format {
	case output.FormatJSON:
		return formatter.JSON(listOutput)
	default:
		return renderCommandsTable(formatter, listOutput)
	}
}

// renderCommandsTable renders manifest commands as a formatted table.
func renderCommandsTable(formatter *output.Formatter, listOutput CommandListOutput) error {
	if len(listOutput.Commands) == 0 {
		formatter.Info("No commands defined in %s", listOutput.Manifest)
		formatter.Println("")
		formatter.Println("Add entries under [%s.metadata.commands] to define commands.", listOutput.Scope)
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "NAME", Width: 16, Align: output.AlignLeft},
			{Header: "COMMAND", Width: 48, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(listOutput.Commands)),
	}

	for _, c := range listOutput.Commands {
		tableData.Rows = append(tableData.Rows, []string{c.Name, c.Line})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold(fmt.Sprintf("Commands (%s scope)", listOutput.Scope)))
	formatter.Println("")

	if err := formatter.Table(tableData); err != nil {
		return err
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d command(s)", len(listOutput.Commands))))

	return nil
}
