// Package cli implements the localizethat CLI commands.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/properties"
	codecregistry "github.com/RickieES/localizethat-sub000/internal/adapters/codec/registry"
	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/textfile"
	dbsqlite "github.com/RickieES/localizethat-sub000/internal/adapters/db/sqlite"
	"github.com/RickieES/localizethat-sub000/internal/config"
	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/usecase/runs"
	"github.com/RickieES/localizethat-sub000/internal/usecase/twinops"
)

var (
	dbPath     string
	configPath string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "localizethat",
	Short: "Localization tree manager",
	Long:  "Manages localization projects as a twin-linked tree of folders, files and translatable items, synchronized with the filesystem per locale.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: database.file from config)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "localizethat.toml", "Config file path")
}

// env bundles the wired collaborators one command invocation uses. The
// session is exclusively owned by the command for its lifetime.
type env struct {
	cfg    config.Config
	db     *sql.DB
	sess   *dbsqlite.Session
	nodes  *twinops.Coordinator
	codecs *codecregistry.Registry
	lpaths *dbsqlite.LocalePathRepo
	runs   *dbsqlite.RunRepo
	runner *runs.Runner
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	file := cfg.DB.File
	if dbPath != "" {
		file = dbPath
	}
	db, err := dbsqlite.Init(file)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sess := dbsqlite.NewSession(db)
	reg := codecregistry.New()
	reg.Register(properties.New(domain.FileKeyValue))
	reg.Register(properties.New(domain.FileIniSection))
	reg.Register(textfile.New())
	runRepo := dbsqlite.NewRunRepo(db)
	return &env{
		cfg:    cfg,
		db:     db,
		sess:   sess,
		nodes:  twinops.NewCoordinator(sess),
		codecs: reg,
		lpaths: dbsqlite.NewLocalePathRepo(db),
		runs:   runRepo,
		runner: runs.NewRunner(runRepo, os.Stdout),
	}, nil
}

func (e *env) close() {
	_ = e.db.Close()
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
