package ports

import (
	"context"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

type LocalePathRepository interface {
	Create(ctx context.Context, lp *domain.LocalePath) error
	Get(ctx context.Context, id int64) (*domain.LocalePath, error)
	List(ctx context.Context) ([]*domain.LocalePath, error)
	ListByLocale(ctx context.Context, locale string) ([]*domain.LocalePath, error)
	Delete(ctx context.Context, id int64) error
}

type RunRepository interface {
	Create(ctx context.Context, r *domain.Run) (int64, error)
	UpdateProgress(ctx context.Context, runID int64, done, total int, status string) error
	SetSummary(ctx context.Context, runID int64, summary string) error
	AddLog(ctx context.Context, rl *domain.RunLog) error
	Get(ctx context.Context, runID int64) (*domain.Run, error)
	List(ctx context.Context, limit int) ([]*domain.Run, error)
	ListLogs(ctx context.Context, runID int64, limit int) ([]*domain.RunLog, error)
}
