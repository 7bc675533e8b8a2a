package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

type LocalePathRepo struct{ *Repo }

func NewLocalePathRepo(db *sql.DB) *LocalePathRepo { return &LocalePathRepo{NewRepo(db)} }

func (r *LocalePathRepo) Create(ctx context.Context, lp *domain.LocalePath) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var containerID any
	if lp.Container != nil && lp.Container.ID() != 0 {
		containerID = lp.Container.ID()
	}
	q := r.SQ.Insert("locale_paths").Columns("path", "locale", "container_id", "created_at").
		Values(lp.Path, lp.Locale, containerID, now)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	lp.ID = id
	return nil
}

func (r *LocalePathRepo) Get(ctx context.Context, id int64) (*domain.LocalePath, error) {
	q := r.SQ.Select("id", "path", "locale", "container_id", "created_at").
		From("locale_paths").Where(sq.Eq{"id": id}).Limit(1)
	return r.one(ctx, q)
}

func (r *LocalePathRepo) List(ctx context.Context) ([]*domain.LocalePath, error) {
	q := r.SQ.Select("id", "path", "locale", "container_id", "created_at").
		From("locale_paths").OrderBy("id")
	return r.many(ctx, q)
}

func (r *LocalePathRepo) ListByLocale(ctx context.Context, locale string) ([]*domain.LocalePath, error) {
	q := r.SQ.Select("id", "path", "locale", "container_id", "created_at").
		From("locale_paths").Where(sq.Eq{"locale": locale}).OrderBy("id")
	return r.many(ctx, q)
}

func (r *LocalePathRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("locale_paths").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// ContainerID returns the root container row id for a locale path, or 0. The
// caller resolves the container node through its Session so tree identity is
// preserved.
func (r *LocalePathRepo) ContainerID(ctx context.Context, id int64) (int64, error) {
	q := r.SQ.Select("container_id").From("locale_paths").Where(sq.Eq{"id": id}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	var cid sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&cid); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return cid.Int64, nil
}

func (r *LocalePathRepo) one(ctx context.Context, q sq.SelectBuilder) (*domain.LocalePath, error) {
	sqlStr, args, _ := q.ToSql()
	lp, err := scanLocalePath(r.DB.QueryRowContext(ctx, sqlStr, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return lp, err
}

func (r *LocalePathRepo) many(ctx context.Context, q sq.SelectBuilder) ([]*domain.LocalePath, error) {
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.LocalePath
	for rows.Next() {
		lp, err := scanLocalePath(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, lp)
	}
	return out, rows.Err()
}

func scanLocalePath(scan func(dest ...any) error) (*domain.LocalePath, error) {
	var lp domain.LocalePath
	var containerID sql.NullInt64
	var created string
	if err := scan(&lp.ID, &lp.Path, &lp.Locale, &containerID, &created); err != nil {
		return nil, err
	}
	if containerID.Valid {
		// Placeholder container carrying only the row id; callers resolve the
		// real node through their Session.
		c := domain.NewLocaleContainer("", lp.Locale)
		c.SetID(containerID.Int64)
		lp.Container = c
	}
	lp.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &lp, nil
}
