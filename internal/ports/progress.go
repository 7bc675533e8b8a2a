package ports

// ProgressSink receives the append-only stream of human-readable progress
// lines an engine run emits: one or more lines per processed path plus the
// run-total summary.
type ProgressSink interface {
	Logf(level, format string, args ...any)
}
