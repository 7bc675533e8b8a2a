package twinops

import (
	"context"
	"fmt"

	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

// ContainerHelper performs recursive create/remove of container subtrees.
type ContainerHelper struct {
	session ports.Session
	files   fileOps
}

// RemoveRecursively deletes c, its whole subtree and, when c is a
// default-locale master, all of its twins before c itself. Deletions are
// committed in batches; on failure the open batch is rolled back and false is
// returned.
func (h *ContainerHelper) RemoveRecursively(ctx context.Context, c *domain.LocaleContainer) bool {
	return runRemoval(ctx, h.session, func(st *removeState) error {
		return h.remove(ctx, c, st, 0)
	})
}

func (h *ContainerHelper) remove(ctx context.Context, c *domain.LocaleContainer, st *removeState, depth int) error {
	// Twins go before the master, never the reverse.
	if c.IsDefaultMaster() {
		for _, t := range c.Twins() {
			twin, ok := t.(*domain.LocaleContainer)
			if !ok {
				return fmt.Errorf("container %q: twin is not a container", c.Name())
			}
			if err := h.remove(ctx, twin, st, depth+1); err != nil {
				return err
			}
		}
	}
	for _, child := range c.Containers() {
		if err := h.remove(ctx, child, st, depth+1); err != nil {
			return err
		}
	}
	for _, f := range c.Files() {
		if err := h.files.remove(ctx, f, st, depth+1); err != nil {
			return err
		}
	}
	c.ClearDefaultTwin()
	if p := c.ParentContainer(); p != nil {
		p.RemoveContainer(c)
	}
	if err := h.session.Remove(ctx, c); err != nil {
		return fmt.Errorf("remove container %q: %w", c.Name(), err)
	}
	st.deleted++
	return maybeCommit(ctx, h.session, st, depth)
}

// EnsureTwin returns c's twin container for the given locale, creating it
// (and, recursively, its parent's twin) when missing. c must be a
// default-locale master. A root container with no twin cannot be created
// here; the target locale simply has no tree for that path.
func (h *ContainerHelper) EnsureTwin(ctx context.Context, c *domain.LocaleContainer, locale string) (*domain.LocaleContainer, error) {
	if !c.IsDefaultMaster() {
		return nil, domain.ErrNotDefaultMaster
	}
	if t := c.TwinForLocale(locale); t != nil {
		twin, ok := t.(*domain.LocaleContainer)
		if !ok {
			return nil, fmt.Errorf("container %q: twin is not a container", c.Name())
		}
		return twin, nil
	}
	parent := c.ParentContainer()
	if parent == nil {
		return nil, fmt.Errorf("container %q has no twin root for locale %s", c.Name(), locale)
	}
	parentTwin, err := h.EnsureTwin(ctx, parent, locale)
	if err != nil {
		return nil, err
	}
	twin := domain.NewLocaleContainer(c.Name(), locale)
	if err := twin.SetDefaultTwin(c); err != nil {
		return nil, err
	}
	parentTwin.AddContainer(twin)
	if err := h.session.Persist(ctx, twin); err != nil {
		twin.ClearDefaultTwin()
		parentTwin.RemoveContainer(twin)
		return nil, fmt.Errorf("persist container twin %q: %w", c.Name(), err)
	}
	return twin, nil
}
