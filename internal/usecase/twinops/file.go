package twinops

import (
	"context"
	"fmt"

	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

// FileHelper performs recursive create/remove of file subtrees.
type FileHelper struct {
	session    ports.Session
	containers containerOps
	contents   contentOps
}

// RemoveRecursively deletes f, its content items and, when f is a
// default-locale master, all of its twins before f itself.
func (h *FileHelper) RemoveRecursively(ctx context.Context, f *domain.LocaleFile) bool {
	return runRemoval(ctx, h.session, func(st *removeState) error {
		return h.remove(ctx, f, st, 0)
	})
}

func (h *FileHelper) remove(ctx context.Context, f *domain.LocaleFile, st *removeState, depth int) error {
	if f.IsDefaultMaster() {
		for _, t := range f.Twins() {
			twin, ok := t.(*domain.LocaleFile)
			if !ok {
				return fmt.Errorf("file %q: twin is not a file", f.Name())
			}
			if err := h.remove(ctx, twin, st, depth+1); err != nil {
				return err
			}
		}
	}
	for _, ct := range f.Contents() {
		if err := h.contents.remove(ctx, ct, st, depth+1); err != nil {
			return err
		}
	}
	f.ClearDefaultTwin()
	if p := f.ParentContainer(); p != nil {
		p.RemoveFile(f)
	}
	if err := h.session.Remove(ctx, f); err != nil {
		return fmt.Errorf("remove file %q: %w", f.Name(), err)
	}
	st.deleted++
	return maybeCommit(ctx, h.session, st, depth)
}

// EnsureTwin returns f's twin file for the given locale, creating it when
// missing and cascading parent-twin creation through the container helper.
// The twin mirrors f's concrete kind; content is not copied.
func (h *FileHelper) EnsureTwin(ctx context.Context, f *domain.LocaleFile, locale string) (*domain.LocaleFile, error) {
	if !f.IsDefaultMaster() {
		return nil, domain.ErrNotDefaultMaster
	}
	if t := f.TwinForLocale(locale); t != nil {
		twin, ok := t.(*domain.LocaleFile)
		if !ok {
			return nil, fmt.Errorf("file %q: twin is not a file", f.Name())
		}
		return twin, nil
	}
	parent := f.ParentContainer()
	if parent == nil {
		return nil, fmt.Errorf("file %q has no parent container", f.Name())
	}
	parentTwin, err := h.containers.EnsureTwin(ctx, parent, locale)
	if err != nil {
		return nil, err
	}
	twin := domain.NewLocaleFile(f.Name(), locale, f.FileKind())
	if err := twin.SetDefaultTwin(f); err != nil {
		return nil, err
	}
	parentTwin.AddFile(twin)
	if err := h.session.Persist(ctx, twin); err != nil {
		twin.ClearDefaultTwin()
		parentTwin.RemoveFile(twin)
		return nil, fmt.Errorf("persist file twin %q: %w", f.Name(), err)
	}
	return twin, nil
}
