package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/cmdrunner/internal/domain/history"
	"github.com/jbctechsolutions/cmdrunner/internal/presentation/cli/output"
)

// RunInfo represents one recorded run for display.
type RunInfo struct {
	ID         string   `json:"id"`
	Command    string   `json:"command"`
	Manifest   string   `json:"manifest"`
	Scope      string   `json:"scope,omitempty"`
	Steps      []string `json:"steps,omitempty"`
	ExtraArgs  []string `json:"extra_args,omitempty"`
	ExitCode   int      `json:"exit_code"`
	DurationMS int64    `json:"duration_ms"`
	StartedAt  string   `json:"started_at"`
}

// RunHistoryOutput represents the output for the history command.
type RunHistoryOutput struct {
	Runs  []RunInfo `json:"runs"`
	Count int       `json:"count"`
}

// HistoryClearResult holds the result of history clear for JSON output.
type HistoryClearResult struct {
	Cleared bool `json:"cleared"`
}

// historyFlags holds the flags for the history command.
type historyFlags struct {
	Limit   int
	Command string
}

var historyOpts historyFlags

// NewHistoryCmd creates the history command for inspecting recorded runs.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent command runs",
		Long: `Display recently recorded runs, most recent first.

Each entry shows when the run started, the command, its exit code and
how long it took. Recording is controlled by the history section of the
configuration.`,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&historyOpts.Limit, "limit", "n", 20, "maximum number of runs to show")
	cmd.Flags().StringVar(&historyOpts.Command, "command", "", "only show runs of the given command")

	cmd.AddCommand(NewHistoryClearCmd())

	return cmd
}

// NewHistoryClearCmd creates the history clear subcommand.
func NewHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE:  runHistoryClear,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	repo := container.HistoryRepository()
	if repo == nil {
		return fmt.Errorf("run history is disabled in the configuration")
	}

	filter := history.DefaultFilter().
		WithLimit(historyOpts.Limit).
		WithCommand(historyOpts.Command)

	runs, err := repo.GetRuns(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	infos := make([]RunInfo, 0, len(runs))
	for _, r := range runs {
		infos = append(infos, RunInfo{
			ID:         r.ID,
			Command:    r.Command,
			Manifest:   r.ManifestPath,
			Scope:      r.Scope,
			Steps:      r.Steps,
			ExtraArgs:  r.ExtraArgs,
			ExitCode:   r.ExitCode,
			DurationMS: r.Duration.Milliseconds(),
			StartedAt:  r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(RunHistoryOutput{Runs: infos, Count: len(infos)})
	}

	return renderRunsTable(formatter, runs)
}

// renderRunsTable renders recorded runs as a formatted table.
func renderRunsTable(formatter *output.Formatter, runs []history.Run) error {
	if len(runs) == 0 {
		formatter.Info("No runs recorded yet")
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "STARTED", Width: 19, Align: output.AlignLeft},
			{Header: "COMMAND", Width: 16, Align: output.AlignLeft},
			{Header: "EXIT", Width: 4, Align: output.AlignRight},
			{Header: "DURATION", Width: 10, Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(runs)),
	}

	for _, r := range runs {
		tableData.Rows = append(tableData.Rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Command,
			strconv.Itoa(r.ExitCode),
			formatDuration(r.Duration),
		})
	}

	formatter.Println("")
	if err := formatter.Table(tableData); err != nil {
		return err
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d run(s)", len(runs))))

	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	repo := container.HistoryRepository()
	if repo == nil {
		return fmt.Errorf("run history is disabled in the configuration")
	}

	// Prune to zero entries deletes everything
	if err := repo.Prune(context.Background(), 0); err != nil {
		return fmt.Errorf("failed to clear run history: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(HistoryClearResult{Cleared: true})
	}

	formatter.Success("Run history cleared")
	return nil
}
