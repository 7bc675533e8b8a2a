package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
	"github.com/RickieES/localizethat-sub000/internal/usecase/importer"
)

var importOverwrite bool

func init() {
	cmd := &cobra.Command{
		Use:   "import <locale>",
		Short: "Create missing twins for a locale and merge its translated files",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}
	cmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Overwrite existing non-empty translated values")
	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
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
		exitErr("import", fmt.Errorf("no locale paths registered for default locale %s", e.cfg.Engine.DefaultLocale))
	}
	policy := domain.PolicyKeep
	if importOverwrite {
		policy = domain.PolicyOverwrite
	}

	_, err = e.runner.Run(ctx, "import", locale, len(paths),
		func(ctx context.Context, log ports.ProgressSink) (string, bool, error) {
			svc := importer.New(e.sess, e.nodes, e.codecs, log)
			res, err := svc.Run(ctx, locale, policy, paths)
			summary := fmt.Sprintf("files imported: %d, failed: %d, skipped: %d, items: %d",
				res.FilesImported, res.FilesFailed, res.FilesSkipped, len(res.Touched))
			return summary, res.Canceled, err
		})
	if err != nil {
		exitErr("import", err)
	}
}
