package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RickieES/localizethat-sub000/internal/ports"
	"github.com/RickieES/localizethat-sub000/internal/usecase/exporter"
)

var exportPurge bool

func init() {
	cmd := &cobra.Command{
		Use:   "export <locale>",
		Short: "Write a locale's twin tree back to disk",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}
	cmd.Flags().BoolVar(&exportPurge, "purge", false, "Delete on-disk files and directories no longer present in the twin tree")
	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	locale := args[0]
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
		exitErr("export", fmt.Errorf("no locale paths registered for default locale %s", e.cfg.Engine.DefaultLocale))
	}

	_, err = e.runner.Run(ctx, "export", locale, len(paths),
		func(ctx context.Context, log ports.ProgressSink) (string, bool, error) {
			svc := exporter.New(e.sess, e.codecs, log)
			res, err := svc.Run(ctx, locale, exportPurge, paths)
			summary := fmt.Sprintf("folders +%d -%d, files +%d ~%d -%d",
				res.FoldersAdded, res.FoldersDeleted, res.FilesAdded, res.FilesModified, res.FilesDeleted)
			return summary, res.Canceled, err
		})
	if err != nil {
		exitErr("export", err)
	}
}
