package ports

import (
	"context"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

// Session is the persisted-store unit-of-work handle the engines and the
// persistence adapters are written against. One Session is exclusively owned
// by a running engine instance; the three node adapters share it, so
// adapter-issued and engine-issued commits interleave over the same
// transaction state.
type Session interface {
	// Begin opens a transaction. Beginning while one is already open is an
	// error; callers check InTransaction first.
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	// InTransaction reports whether a transaction is currently open. Adapters
	// use it to restore the caller's transaction state before returning.
	InTransaction() bool

	Persist(ctx context.Context, n domain.LocaleNode) error
	Remove(ctx context.Context, n domain.LocaleNode) error
	Merge(ctx context.Context, n domain.LocaleNode) error

	NodeByID(ctx context.Context, id int64) (domain.LocaleNode, error)
	// FindTwin resolves master's twin for the given locale from the store,
	// registering the twin link on the in-memory nodes. It returns nil, nil
	// when the locale has no twin.
	FindTwin(ctx context.Context, master domain.LocaleNode, locale string) (domain.LocaleNode, error)
	// LoadChildren populates a container's child containers and files (and
	// their content items) from the store, including twin links.
	LoadChildren(ctx context.Context, c *domain.LocaleContainer) error
	LocalePathByContainer(ctx context.Context, c *domain.LocaleContainer) (*domain.LocalePath, error)
}
