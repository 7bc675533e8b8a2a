// Package importer implements the engine that materializes a target locale:
// it guarantees twins exist for every reachable default-locale node and
// merges translated values from the on-disk locale tree into them. Run
// against the default locale itself, it instead refreshes master content
// from disk, dropping items the files no longer carry.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/registry"
	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
	"github.com/RickieES/localizethat-sub000/internal/usecase/twinops"
)

type Service struct {
	session ports.Session
	nodes   *twinops.Coordinator
	codecs  *registry.Registry
	log     ports.ProgressSink
}

func New(session ports.Session, nodes *twinops.Coordinator, codecs *registry.Registry, log ports.ProgressSink) *Service {
	return &Service{session: session, nodes: nodes, codecs: codecs, log: log}
}

// Result totals one import run. Touched collects every content item created
// or modified, for downstream review.
type Result struct {
	FilesImported int
	FilesFailed   int
	FilesSkipped  int
	Touched       []*domain.LocaleContent
	PathsDone     int
	PathsSkipped  int
	Canceled      bool
}

// Run imports the target locale for each default-locale path. Twins are
// created lazily as files are reached; a commit follows each processed file
// so one corrupt file cannot roll back unrelated work. Cancellation is
// polled between paths, never within a file.
func (s *Service) Run(ctx context.Context, locale string, policy domain.ImportPolicy, paths []*domain.LocalePath) (Result, error) {
	var res Result
	for _, lp := range paths {
		if ctx.Err() != nil {
			res.Canceled = true
			if s.session.InTransaction() {
				_ = s.session.Rollback()
			}
			s.log.Logf("info", "import canceled after %d path(s)", res.PathsDone)
			break
		}
		if err := s.runPath(ctx, lp, locale, policy, &res); err != nil {
			res.PathsSkipped++
			s.log.Logf("warn", "path %s: %v", lp.Path, err)
			continue
		}
		res.PathsDone++
	}
	s.log.Logf("info", "Import totals (%s): files imported: %d; failed: %d; skipped: %d; items touched: %d",
		locale, res.FilesImported, res.FilesFailed, res.FilesSkipped, len(res.Touched))
	return res, nil
}

func (s *Service) runPath(ctx context.Context, lp *domain.LocalePath, locale string, policy domain.ImportPolicy, res *Result) error {
	if lp.Container == nil {
		return fmt.Errorf("locale path has no root container")
	}
	n, err := s.session.NodeByID(ctx, lp.Container.ID())
	if err != nil {
		return fmt.Errorf("resolve root container: %w", err)
	}
	root, ok := n.(*domain.LocaleContainer)
	if !ok || root == nil {
		return fmt.Errorf("root container %d not found", lp.Container.ID())
	}
	// Importing the default locale refreshes the master tree's own content
	// from its own disk path; any other locale merges into the twin tree.
	diskDir := lp.Path
	if locale != root.Locale() {
		twin, err := s.session.FindTwin(ctx, root, locale)
		if err != nil {
			return fmt.Errorf("resolve twin root: %w", err)
		}
		twinRoot, _ := twin.(*domain.LocaleContainer)
		if twinRoot == nil {
			return fmt.Errorf("locale %s has no twin root for this path", locale)
		}
		twinPath, err := s.session.LocalePathByContainer(ctx, twinRoot)
		if err != nil || twinPath == nil {
			return fmt.Errorf("locale %s twin root has no locale path", locale)
		}
		diskDir = twinPath.Path
	}
	before := res.FilesImported + res.FilesFailed + res.FilesSkipped
	if err := s.importContainer(ctx, root, locale, diskDir, policy, res); err != nil {
		return err
	}
	s.log.Logf("info", "Path %s -> %s (%s): %d file(s) considered",
		lp.Path, diskDir, locale, res.FilesImported+res.FilesFailed+res.FilesSkipped-before)
	return nil
}

func (s *Service) importContainer(ctx context.Context, c *domain.LocaleContainer, locale, diskDir string, policy domain.ImportPolicy, res *Result) error {
	if err := s.session.LoadChildren(ctx, c); err != nil {
		return fmt.Errorf("load children of %q: %w", c.Name(), err)
	}
	// Load the twin side too, where it already exists, so merges see the
	// current translated values.
	if locale != c.Locale() {
		if tw, err := s.session.FindTwin(ctx, c, locale); err == nil {
			if twc, ok := tw.(*domain.LocaleContainer); ok && twc != nil {
				if err := s.session.LoadChildren(ctx, twc); err != nil {
					return fmt.Errorf("load twin children of %q: %w", c.Name(), err)
				}
			}
		}
	}

	for _, f := range c.Files() {
		diskPath := filepath.Join(diskDir, f.Name())
		if _, err := os.Stat(diskPath); err != nil {
			continue // the locale has no file here
		}
		codec, ok := s.codecs.Get(f.FileKind())
		if !ok {
			res.FilesSkipped++
			continue
		}
		if err := s.importFile(ctx, f, locale, diskPath, codec, policy, res); err != nil {
			res.FilesFailed++
			s.log.Logf("warn", "import %s: %v", diskPath, err)
		}
	}

	for _, child := range c.Containers() {
		if err := s.importContainer(ctx, child, locale, filepath.Join(diskDir, child.Name()), policy, res); err != nil {
			return err
		}
	}
	return nil
}

// importFile merges one on-disk file into the tree. For a foreign locale the
// target is the twin of the default-locale file, created (with its
// ancestors) on demand; for the default locale the file itself is refreshed
// and content items no longer on disk are removed. The whole file is one
// transaction.
func (s *Service) importFile(ctx context.Context, f *domain.LocaleFile, locale, diskPath string, codec ports.FileCodec, policy domain.ImportPolicy, res *Result) error {
	if err := s.session.Begin(ctx); err != nil {
		return err
	}
	target := f
	if locale != f.Locale() {
		twin, err := s.nodes.Files.EnsureTwin(ctx, f, locale)
		if err != nil {
			_ = s.session.Rollback()
			return fmt.Errorf("ensure twin: %w", err)
		}
		target = twin
	}
	touched, err := codec.ImportFromFile(ctx, target, diskPath, policy)
	if err != nil {
		_ = s.session.Rollback()
		return fmt.Errorf("parse: %w", err)
	}
	for _, ct := range touched {
		if ct.ID() == 0 {
			err = s.session.Persist(ctx, ct)
		} else {
			err = s.session.Merge(ctx, ct)
		}
		if err != nil {
			_ = s.session.Rollback()
			return fmt.Errorf("persist content %q: %w", ct.Name(), err)
		}
	}
	if target == f {
		// A master refresh flags items the disk no longer carries; sweep them
		// (twins first) inside the same transaction.
		for _, ct := range target.Contents() {
			if !ct.MarkedForDeletion {
				continue
			}
			if !s.nodes.Contents.RemoveRecursively(ctx, ct) {
				_ = s.session.Rollback()
				return fmt.Errorf("remove stale content %q", ct.Name())
			}
		}
	}
	if err := s.session.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	res.FilesImported++
	res.Touched = append(res.Touched, touched...)
	return nil
}
