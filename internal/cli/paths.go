package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

var twinOf int64

func init() {
	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "Manage locale paths (the engines' entry points)",
	}

	addCmd := &cobra.Command{
		Use:   "add <path> <locale>",
		Short: "Register a filesystem path as the root of a locale's tree",
		Args:  cobra.ExactArgs(2),
		Run:   runPathsAdd,
	}
	addCmd.Flags().Int64Var(&twinOf, "twin-of", 0, "Locale path ID of the default-locale root this path twins")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered locale paths",
		Run:   runPathsList,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a locale path and its whole subtree",
		Args:  cobra.ExactArgs(1),
		Run:   runPathsRm,
	}

	pathsCmd.AddCommand(addCmd, listCmd, rmCmd)
	RootCmd.AddCommand(pathsCmd)
}

func runPathsAdd(cmd *cobra.Command, args []string) {
	path, locale := args[0], args[1]
	e, err := openEnv()
	if err != nil {
		exitErr("open", err)
	}
	defer e.close()
	ctx := cmd.Context()

	abs, err := filepath.Abs(path)
	if err != nil {
		exitErr("resolve path", err)
	}
	root := domain.NewLocaleContainer(filepath.Base(abs), locale)
	if twinOf != 0 {
		lp, err := e.lpaths.Get(ctx, twinOf)
		if err != nil || lp == nil || lp.Container == nil {
			exitErr("resolve twin-of", fmt.Errorf("locale path %d not found", twinOf))
		}
		master, err := e.sess.NodeByID(ctx, lp.Container.ID())
		if err != nil || master == nil {
			exitErr("resolve twin-of root", err)
		}
		if err := root.SetDefaultTwin(master); err != nil {
			exitErr("link twin", err)
		}
	}
	if err := e.sess.Persist(ctx, root); err != nil {
		exitErr("persist root container", err)
	}
	lp := &domain.LocalePath{Path: abs, Locale: locale, Container: root}
	if err := e.lpaths.Create(ctx, lp); err != nil {
		exitErr("create locale path", err)
	}
	fmt.Printf("added locale path %d: %s (%s)\n", lp.ID, abs, locale)
}

func runPathsList(cmd *cobra.Command, args []string) {
	e, err := openEnv()
	if err != nil {
		exitErr("open", err)
	}
	defer e.close()

	paths, err := e.lpaths.List(cmd.Context())
	if err != nil {
		exitErr("list", err)
	}
	for _, lp := range paths {
		fmt.Printf("%d\t%s\t%s\n", lp.ID, lp.Locale, lp.Path)
	}
}

func runPathsRm(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("parse id", err)
	}
	e, err := openEnv()
	if err != nil {
		exitErr("open", err)
	}
	defer e.close()
	ctx := cmd.Context()

	lp, err := e.lpaths.Get(ctx, id)
	if err != nil {
		exitErr("load locale path", err)
	}
	if lp == nil {
		exitErr("load locale path", fmt.Errorf("locale path %d not found", id))
	}
	if lp.Container != nil {
		n, err := e.sess.NodeByID(ctx, lp.Container.ID())
		if err != nil {
			exitErr("resolve root container", err)
		}
		if root, ok := n.(*domain.LocaleContainer); ok && root != nil {
			if !e.nodes.Containers.RemoveRecursively(ctx, root) {
				exitErr("remove subtree", fmt.Errorf("removal failed, nothing deleted"))
			}
		}
	}
	if err := e.lpaths.Delete(ctx, id); err != nil {
		exitErr("delete locale path", err)
	}
	fmt.Printf("removed locale path %d\n", id)
}
