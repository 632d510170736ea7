package cli

import (
	"context"
	"strconv"

	"github.com/gdmirror/gdmirror/internal/config"
	"github.com/gdmirror/gdmirror/internal/report"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded mirror runs",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the item outcomes of one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*report.History, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return report.Open(report.DefaultPath(configDir))
}

func runHistory(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	hist, err := openHistory()
	if err != nil {
		return writeCommandError(out, "history", err)
	}
	defer hist.Close()

	runs, err := hist.List(context.Background(), historyLimit)
	if err != nil {
		return writeCommandError(out, "history", err)
	}

	return out.WriteSuccess("history", &runListView{Runs: runs})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	hist, err := openHistory()
	if err != nil {
		return writeCommandError(out, "history.show", err)
	}
	defer hist.Close()

	items, err := hist.Items(context.Background(), args[0])
	if err != nil {
		return writeCommandError(out, "history.show", err)
	}

	return out.WriteSuccess("history.show", map[string]interface{}{
		"runId": args[0],
		"items": items,
	})
}

// runListView renders recorded runs as a table
type runListView struct {
	Runs []report.RunSummary `json:"runs"`
}

func (v *runListView) AsTableRenderer() types.TableRenderer { return v }

func (v *runListView) Headers() []string {
	return []string{"Run", "Started", "Input", "Up", "Upd", "Del", "Fail", "Dry"}
}

func (v *runListView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Runs))
	for _, run := range v.Runs {
		dry := ""
		if run.DryRun {
			dry = "yes"
		}
		rows = append(rows, []string{
			truncate(run.RunID, 12),
			run.StartedAt.Format("2006-01-02 15:04:05"),
			truncate(run.InputDir, 40),
			strconv.Itoa(run.Uploaded),
			strconv.Itoa(run.Updated),
			strconv.Itoa(run.Deleted),
			strconv.Itoa(run.Failed),
			dry,
		})
	}
	return rows
}

func (v *runListView) EmptyMessage() string {
	return "No recorded runs"
}
