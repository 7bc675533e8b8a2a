// Package update implements the reconciliation engine that keeps the
// default-locale tree synchronized with the filesystem: new disk entries gain
// tree nodes, vanished disk entries lose them, unchanged subtrees are
// recursed into. Content of existing files is never re-parsed here.
package update

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

// Counters aggregates one path's structural changes.
type Counters struct {
	FoldersAdded   int
	FoldersDeleted int
	FilesAdded     int
	FilesDeleted   int
}

func (c *Counters) accumulate(o Counters) {
	c.FoldersAdded += o.FoldersAdded
	c.FoldersDeleted += o.FoldersDeleted
	c.FilesAdded += o.FilesAdded
	c.FilesDeleted += o.FilesDeleted
}

// Result is the run total over all processed locale paths.
type Result struct {
	Counters
	PathsDone   int
	PathsFailed int
	Canceled    bool
}

// Run reconciles each default-locale path against the disk. Cancellation is
// polled before each path; a cancelled run keeps the work committed for
// prior paths.
func (s *Service) Run(ctx context.Context, paths []*domain.LocalePath) (Result, error) {
	var res Result
	for _, lp := range paths {
		if ctx.Err() != nil {
			res.Canceled = true
			s.log.Logf("info", "update canceled after %d path(s)", res.PathsDone)
			break
		}
		c, err := s.runPath(ctx, lp)
		if err != nil {
			res.PathsFailed++
			s.log.Logf("error", "path %s: %v", lp.Path, err)
			continue
		}
		res.PathsDone++
		res.accumulate(c)
		s.log.Logf("info", "Path %s (%s)", lp.Path, lp.Locale)
		s.log.Logf("info", "  Folders... Added: %d; Deleted: %d", c.FoldersAdded, c.FoldersDeleted)
		s.log.Logf("info", "  Files... Added: %d; Deleted: %d", c.FilesAdded, c.FilesDeleted)
	}
	s.log.Logf("info", "Update totals: folders +%d -%d, files +%d -%d (%d path(s), %d failed)",
		res.FoldersAdded, res.FoldersDeleted, res.FilesAdded, res.FilesDeleted, res.PathsDone, res.PathsFailed)
	return res, nil
}

func (s *Service) runPath(ctx context.Context, lp *domain.LocalePath) (Counters, error) {
	var c Counters
	if lp.Container == nil {
		return c, fmt.Errorf("locale path has no root container")
	}
	n, err := s.session.NodeByID(ctx, lp.Container.ID())
	if err != nil {
		return c, fmt.Errorf("resolve root container: %w", err)
	}
	root, ok := n.(*domain.LocaleContainer)
	if !ok || root == nil {
		return c, fmt.Errorf("root container %d not found", lp.Container.ID())
	}
	if err := s.reconcile(ctx, root, lp.Path, &c); err != nil {
		return c, err
	}
	return c, nil
}

// reconcile diffs one container against its disk directory: add-pass, then
// delete-pass, then recursion into surviving children. Each pass commits on
// its own so a failure rolls back only that pass.
func (s *Service) reconcile(ctx context.Context, c *domain.LocaleContainer, dir string, counters *Counters) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Structural conflict or unreadable directory; skip this subtree and
		// carry on with the surrounding run.
		s.log.Logf("warn", "skipping %s: %v", dir, err)
		return nil
	}
	if err := s.session.LoadChildren(ctx, c); err != nil {
		return fmt.Errorf("load children of %q: %w", c.Name(), err)
	}

	realDirs := map[string]bool{}
	realFiles := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			realDirs[e.Name()] = true
		} else {
			realFiles[e.Name()] = true
		}
	}

	if err := s.addPass(ctx, c, dir, entries, counters); err != nil {
		_ = s.session.Rollback()
		s.log.Logf("error", "add pass in %s rolled back: %v", dir, err)
	}
	if err := s.deletePass(ctx, c, realDirs, realFiles, counters); err != nil {
		_ = s.session.Rollback()
		s.log.Logf("error", "delete pass in %s rolled back: %v", dir, err)
	}

	for _, child := range c.Containers() {
		if realDirs[child.Name()] {
			if err := s.reconcile(ctx, child, filepath.Join(dir, child.Name()), counters); err != nil {
				return err
			}
		}
	}
	return nil
}

// addPass walks the disk listing in order, so new nodes are created (and get
// their row ids) in the order os.ReadDir reported them.
func (s *Service) addPass(ctx context.Context, c *domain.LocaleContainer, dir string, entries []os.DirEntry, counters *Counters) error {
	if err := s.session.Begin(ctx); err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if c.ContainerByName(name) != nil {
				continue
			}
			child := domain.NewLocaleContainer(name, c.Locale())
			c.AddContainer(child)
			if err := s.session.Persist(ctx, child); err != nil {
				return fmt.Errorf("persist container %q: %w", name, err)
			}
			counters.FoldersAdded++
			continue
		}
		if c.FileByName(name) != nil {
			continue
		}
		kind := domain.ClassifyFileKind(name)
		f := domain.NewLocaleFile(name, c.Locale(), kind)
		c.AddFile(f)
		if err := s.session.Persist(ctx, f); err != nil {
			return fmt.Errorf("persist file %q: %w", name, err)
		}
		counters.FilesAdded++
		if err := s.initialParse(ctx, f, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return s.session.Commit()
}

// initialParse fills a freshly created default-locale file with content items
// once. Existing files never get re-parsed by the update engine.
func (s *Service) initialParse(ctx context.Context, f *domain.LocaleFile, diskPath string) error {
	codec, ok := s.codecs.Get(f.FileKind())
	if !ok {
		return nil
	}
	touched, err := codec.ImportFromFile(ctx, f, diskPath, domain.PolicyKeep)
	if err != nil {
		s.log.Logf("warn", "parse %s: %v", diskPath, err)
		return nil
	}
	for _, ct := range touched {
		if err := s.session.Persist(ctx, ct); err != nil {
			return fmt.Errorf("persist content %q: %w", ct.Name(), err)
		}
	}
	return nil
}

func (s *Service) deletePass(ctx context.Context, c *domain.LocaleContainer, realDirs, realFiles map[string]bool, counters *Counters) error {
	if err := s.session.Begin(ctx); err != nil {
		return err
	}
	for _, child := range c.Containers() {
		if realDirs[child.Name()] {
			continue
		}
		if !s.nodes.Containers.RemoveRecursively(ctx, child) {
			return fmt.Errorf("remove container %q", child.Name())
		}
		counters.FoldersDeleted++
	}
	for _, f := range c.Files() {
		if realFiles[f.Name()] {
			continue
		}
		if !s.nodes.Files.RemoveRecursively(ctx, f) {
			return fmt.Errorf("remove file %q", f.Name())
		}
		counters.FilesDeleted++
	}
	return s.session.Commit()
}
