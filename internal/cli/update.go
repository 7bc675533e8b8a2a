package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RickieES/localizethat-sub000/internal/ports"
	"github.com/RickieES/localizethat-sub000/internal/usecase/update"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Reconcile the default-locale tree against the filesystem",
		Long:  "Walks every default-locale path, adding tree nodes for new disk entries and removing nodes for deleted ones. Content of existing files is not re-parsed.",
		Run:   runUpdate,
	}
	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	e, err := openEnv()
	if err != nil {
		exitErr("open", err)
	}
	defer e.close()
	ctx := cmd.Context()

	paths, err := e.lpaths.ListByLocale(ctx, e.cfg.Engine.DefaultLocale)
	if err != nil {
		exitErr("list locale paths", err)
	}
	if len(paths) == 0 {
		exitErr("update", fmt.Errorf("no locale paths registered for default locale %s", e.cfg.Engine.DefaultLocale))
	}

	_, err = e.runner.Run(ctx, "update", e.cfg.Engine.DefaultLocale, len(paths),
		func(ctx context.Context, log ports.ProgressSink) (string, bool, error) {
			svc := update.New(e.sess, e.nodes, e.codecs, log)
			res, err := svc.Run(ctx, paths)
			summary := fmt.Sprintf("folders +%d -%d, files +%d -%d",
				res.FoldersAdded, res.FoldersDeleted, res.FilesAdded, res.FilesDeleted)
			return summary, res.Canceled, err
		})
	if err != nil {
		exitErr("update", err)
	}
}
