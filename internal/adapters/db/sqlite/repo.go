package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// queries can run against whichever the session currently routes to.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo provides a base for Squirrel-based repositories.
type Repo struct {
	DB *sql.DB
	SQ sq.StatementBuilderType
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, SQ: sq.StatementBuilder}
}
