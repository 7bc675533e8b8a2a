package registry

import (
	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

// Registry maps file kinds to their codec. Kinds with no codec (binary) are
// simply absent.
type Registry struct {
	byKind map[domain.FileKind]ports.FileCodec
}

func New() *Registry { return &Registry{byKind: map[domain.FileKind]ports.FileCodec{}} }

func (r *Registry) Register(c ports.FileCodec) { r.byKind[c.Kind()] = c }

func (r *Registry) Get(kind domain.FileKind) (ports.FileCodec, bool) {
	c, ok := r.byKind[kind]
	return c, ok
}
