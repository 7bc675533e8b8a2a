// Package twinops implements the three persistence adapters that create and
// remove twin-linked node subtrees against the store: one per node kind, each
// delegating to the others for cross-kind recursion.
package twinops

import (
	"context"

	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

// batchSize is how many deletions a recursive removal accumulates before
// committing the open batch.
const batchSize = 50

// containerOps and fileOps are the interface-typed references the helpers
// hold to one another, so the cross-kind dependency cycle is an explicit
// wiring step instead of static coupling.
type containerOps interface {
	remove(ctx context.Context, c *domain.LocaleContainer, st *removeState, depth int) error
	EnsureTwin(ctx context.Context, c *domain.LocaleContainer, locale string) (*domain.LocaleContainer, error)
}

type fileOps interface {
	remove(ctx context.Context, f *domain.LocaleFile, st *removeState, depth int) error
	EnsureTwin(ctx context.Context, f *domain.LocaleFile, locale string) (*domain.LocaleFile, error)
}

type contentOps interface {
	remove(ctx context.Context, ct *domain.LocaleContent, st *removeState, depth int) error
}

// Coordinator wires the three node adapters around one shared Session.
type Coordinator struct {
	Containers *ContainerHelper
	Files      *FileHelper
	Contents   *ContentHelper
}

func NewCoordinator(s ports.Session) *Coordinator {
	containers := &ContainerHelper{session: s}
	files := &FileHelper{session: s}
	contents := &ContentHelper{session: s}
	containers.files = files
	files.containers = containers
	files.contents = contents
	contents.files = files
	return &Coordinator{Containers: containers, Files: files, Contents: contents}
}
