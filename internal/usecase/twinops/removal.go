package twinops

import (
	"context"

	"github.com/RickieES/localizethat-sub000/internal/ports"
)

// removeState threads the deletion counter and transaction ownership through
// one recursive removal.
type removeState struct {
	deleted int
	ownsTx  bool
}

// maybeCommit flushes the open batch every batchSize deletions, but only
// below the top of the recursion and only when the adapter opened the
// transaction itself, so a caller's enclosing unit of work is never
// force-committed underneath it.
func maybeCommit(ctx context.Context, s ports.Session, st *removeState, depth int) error {
	if depth == 0 || !st.ownsTx {
		return nil
	}
	if st.deleted == 0 || st.deleted%batchSize != 0 {
		return nil
	}
	if err := s.Commit(); err != nil {
		return err
	}
	return s.Begin(ctx)
}

// runRemoval wraps one recursive removal in the shared transaction
// discipline: open a transaction when none is open, roll the batch back on
// failure, and restore the caller's pre-existing open-transaction state on
// exit either way.
func runRemoval(ctx context.Context, s ports.Session, fn func(st *removeState) error) bool {
	st := &removeState{ownsTx: !s.InTransaction()}
	if st.ownsTx {
		if err := s.Begin(ctx); err != nil {
			return false
		}
	}
	if err := fn(st); err != nil {
		_ = s.Rollback()
		if !st.ownsTx {
			// The caller held the transaction; reopen so it finds its
			// session in the state it left it.
			_ = s.Begin(ctx)
		}
		return false
	}
	if st.ownsTx {
		if err := s.Commit(); err != nil {
			_ = s.Rollback()
			return false
		}
	}
	return true
}
