package twinops

import (
	"context"
	"fmt"

	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

// ContentHelper performs recursive create/remove of content items and owns
// twin creation for the leaf kind.
type ContentHelper struct {
	session ports.Session
	files   fileOps
}

// RemoveRecursively deletes ct and, when ct is a default-locale master, its
// twins before ct itself.
func (h *ContentHelper) RemoveRecursively(ctx context.Context, ct *domain.LocaleContent) bool {
	return runRemoval(ctx, h.session, func(st *removeState) error {
		return h.remove(ctx, ct, st, 0)
	})
}

func (h *ContentHelper) remove(ctx context.Context, ct *domain.LocaleContent, st *removeState, depth int) error {
	if ct.IsDefaultMaster() {
		for _, t := range ct.Twins() {
			twin, ok := t.(*domain.LocaleContent)
			if !ok {
				return fmt.Errorf("content %q: twin is not a content item", ct.Name())
			}
			if err := h.remove(ctx, twin, st, depth+1); err != nil {
				return err
			}
		}
	}
	ct.ClearDefaultTwin()
	if p := ct.ParentFile(); p != nil {
		p.RemoveContent(ct)
	}
	if err := h.session.Remove(ctx, ct); err != nil {
		return fmt.Errorf("remove content %q: %w", ct.Name(), err)
	}
	st.deleted++
	return maybeCommit(ctx, h.session, st, depth)
}

// CreateTwinRecursively guarantees a twin of the default-locale content item
// master exists for the target locale, creating the parent file's and
// containers' twins on demand first. The new twin mirrors master's concrete
// kind and copies structural fields (name, order in file) but no translatable
// text. It returns true when a twin exists on return; calling it again for
// the same master and locale is a no-op success. It returns false when master
// is not itself a default-locale master: twins cannot have twins.
//
// When commitOnSuccess is set the enclosing transaction is committed once the
// twin chain is persisted; otherwise the work rides the caller's open
// transaction when there is one.
func (h *ContentHelper) CreateTwinRecursively(ctx context.Context, master *domain.LocaleContent, locale string, commitOnSuccess bool) bool {
	if !master.IsDefaultMaster() {
		return false
	}
	if master.TwinForLocale(locale) != nil {
		return true
	}
	wasOpen := h.session.InTransaction()
	if !wasOpen {
		if err := h.session.Begin(ctx); err != nil {
			return false
		}
	}
	if _, err := h.createTwin(ctx, master, locale); err != nil {
		_ = h.session.Rollback()
		if wasOpen {
			_ = h.session.Begin(ctx)
		}
		return false
	}
	if commitOnSuccess || !wasOpen {
		if err := h.session.Commit(); err != nil {
			_ = h.session.Rollback()
			if wasOpen {
				_ = h.session.Begin(ctx)
			}
			return false
		}
		if wasOpen {
			// Restore the caller's open-transaction state.
			_ = h.session.Begin(ctx)
		}
	}
	return true
}

func (h *ContentHelper) createTwin(ctx context.Context, master *domain.LocaleContent, locale string) (*domain.LocaleContent, error) {
	parent := master.ParentFile()
	if parent == nil {
		return nil, fmt.Errorf("content %q has no parent file", master.Name())
	}
	parentTwin, err := h.files.EnsureTwin(ctx, parent, locale)
	if err != nil {
		return nil, err
	}
	var twin *domain.LocaleContent
	switch master.ContentKind() {
	case domain.ContentKeyValue:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentKeyValue)
	case domain.ContentComment:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentComment)
	case domain.ContentSection:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentSection)
	case domain.ContentLicense:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentLicense)
	case domain.ContentExtEntity:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentExtEntity)
	case domain.ContentWhitespace:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentWhitespace)
	default:
		twin = domain.NewLocaleContent(master.Name(), locale, domain.ContentGeneric)
	}
	twin.OrderInFile = master.OrderInFile
	if err := twin.SetDefaultTwin(master); err != nil {
		return nil, err
	}
	parentTwin.AddContent(twin)
	if err := h.session.Persist(ctx, twin); err != nil {
		twin.ClearDefaultTwin()
		parentTwin.RemoveContent(twin)
		return nil, fmt.Errorf("persist content twin %q: %w", master.Name(), err)
	}
	return twin, nil
}
