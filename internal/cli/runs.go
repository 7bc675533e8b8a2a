package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runLogsID int64

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent engine runs",
		Run:   runRuns,
	}
	cmd.Flags().Int64Var(&runLogsID, "logs", 0, "Show the log lines of one run instead")
	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	e, err := openEnv()
	if err != nil {
		exitErr("open", err)
	}
	defer e.close()
	ctx := cmd.Context()

	if runLogsID != 0 {
		logs, err := e.runs.ListLogs(ctx, runLogsID, 0)
		if err != nil {
			exitErr("list logs", err)
		}
		for _, l := range logs {
			fmt.Printf("%s [%s] %s\n", l.Time.Format(time.RFC3339), l.Level, l.Message)
		}
		return
	}

	list, err := e.runs.List(ctx, 0)
	if err != nil {
		exitErr("list runs", err)
	}
	for _, r := range list {
		fmt.Printf("%d\t%s\t%s\t%s\t%d/%d\t%s\n", r.ID, r.Type, r.Locale, r.Status, r.PathsDone, r.Paths, r.Summary)
	}
}
