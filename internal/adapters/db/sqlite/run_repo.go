package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

type RunRepo struct{ *Repo }

func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{NewRepo(db)} }

func (r *RunRepo) Create(ctx context.Context, run *domain.Run) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Insert("runs").Columns("type", "status", "locale", "paths", "paths_done", "summary", "created_at", "updated_at").
		Values(run.Type, run.Status, run.Locale, run.Paths, run.PathsDone, run.Summary, now, now)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	run.ID = id
	return id, nil
}

func (r *RunRepo) UpdateProgress(ctx context.Context, runID int64, done, total int, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Update("runs").Set("paths_done", done).Set("paths", total).Set("status", status).Set("updated_at", now).
		Where(sq.Eq{"id": runID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *RunRepo) SetSummary(ctx context.Context, runID int64, summary string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Update("runs").Set("summary", summary).Set("updated_at", now).Where(sq.Eq{"id": runID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *RunRepo) AddLog(ctx context.Context, rl *domain.RunLog) error {
	q := r.SQ.Insert("run_logs").Columns("run_id", "ts", "level", "message").
		Values(rl.RunID, time.Now().UTC().Format(time.RFC3339), rl.Level, rl.Message)
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *RunRepo) Get(ctx context.Context, runID int64) (*domain.Run, error) {
	q := r.SQ.Select("id", "type", "status", "locale", "paths", "paths_done", "summary", "created_at", "updated_at").
		From("runs").Where(sq.Eq{"id": runID}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	run, err := scanRun(r.DB.QueryRowContext(ctx, sqlStr, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *RunRepo) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.SQ.Select("id", "type", "status", "locale", "paths", "paths_done", "summary", "created_at", "updated_at").
		From("runs").OrderBy("id DESC").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *RunRepo) ListLogs(ctx context.Context, runID int64, limit int) ([]*domain.RunLog, error) {
	if limit <= 0 {
		limit = 200
	}
	q := r.SQ.Select("id", "run_id", "ts", "level", "message").From("run_logs").
		Where(sq.Eq{"run_id": runID}).OrderBy("id").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.RunLog
	for rows.Next() {
		var rl domain.RunLog
		var ts string
		if err := rows.Scan(&rl.ID, &rl.RunID, &ts, &rl.Level, &rl.Message); err != nil {
			return nil, err
		}
		rl.Time, _ = time.Parse(time.RFC3339, ts)
		out = append(out, &rl)
	}
	return out, rows.Err()
}

func scanRun(scan func(dest ...any) error) (*domain.Run, error) {
	var run domain.Run
	var created, updated string
	if err := scan(&run.ID, &run.Type, &run.Status, &run.Locale, &run.Paths, &run.PathsDone, &run.Summary, &created, &updated); err != nil {
		return nil, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, created)
	run.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &run, nil
}
