// Package runs executes one engine invocation as a single background unit of
// work: a run row tracks status and totals, and every progress line is both
// streamed to the operator and recorded with the run.
package runs

import (
	"context"
	"fmt"
	"io"

	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

type Runner struct {
	repo ports.RunRepository
	out  io.Writer
}

func NewRunner(repo ports.RunRepository, out io.Writer) *Runner {
	return &Runner{repo: repo, out: out}
}

// Fn is one engine invocation. It reports a one-line summary, whether the
// run was cancelled cooperatively, and a fatal error if any.
type Fn func(ctx context.Context, log ports.ProgressSink) (summary string, canceled bool, err error)

// Run records and executes fn. Cancellation is not an error: the run ends in
// status "canceled" with the work of fully processed paths retained.
func (r *Runner) Run(ctx context.Context, typ, locale string, totalPaths int, fn Fn) (int64, error) {
	run := &domain.Run{Type: typ, Status: "running", Locale: locale, Paths: totalPaths}
	id, err := r.repo.Create(ctx, run)
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	sink := &runSink{repo: r.repo, runID: id, out: r.out}
	sink.Logf("info", "run %d (%s) started", id, typ)

	summary, canceled, err := fn(ctx, sink)
	status := "done"
	switch {
	case err != nil:
		status = "failed"
		sink.Logf("error", "run %d failed: %v", id, err)
	case canceled:
		status = "canceled"
	}
	// Status updates ride their own statements; a failed engine must not
	// leave the run stuck in "running".
	_ = r.repo.UpdateProgress(context.WithoutCancel(ctx), id, totalPaths, totalPaths, status)
	if summary != "" {
		_ = r.repo.SetSummary(context.WithoutCancel(ctx), id, summary)
	}
	sink.Logf("info", "run %d %s", id, status)
	return id, err
}

// runSink fans every progress line out to the operator stream and the run
// log table.
type runSink struct {
	repo  ports.RunRepository
	runID int64
	out   io.Writer
}

func (s *runSink) Logf(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(s.out, msg)
	_ = s.repo.AddLog(context.Background(), &domain.RunLog{RunID: s.runID, Level: level, Message: msg})
}

// WriterSink is a bare ProgressSink for callers that do not record runs.
type WriterSink struct{ W io.Writer }

func (s WriterSink) Logf(level, format string, args ...any) {
	fmt.Fprintf(s.W, format+"\n", args...)
}
