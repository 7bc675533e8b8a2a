// Package exporter implements the engine that materializes the persisted
// twin tree of one locale back to disk, creating missing directories and
// optionally pruning on-disk entries no longer present in the tree.
package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/registry"
	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/ports"
)

type Service struct {
	session ports.Session
	codecs  *registry.Registry
	log     ports.ProgressSink
}

func New(session ports.Session, codecs *registry.Registry, log ports.ProgressSink) *Service {
	return &Service{session: session, codecs: codecs, log: log}
}

// Counters aggregates one path's disk changes.
type Counters struct {
	FoldersAdded   int
	FoldersDeleted int
	FilesAdded     int
	FilesModified  int
	FilesDeleted   int
}

func (c *Counters) accumulate(o Counters) {
	c.FoldersAdded += o.FoldersAdded
	c.FoldersDeleted += o.FoldersDeleted
	c.FilesAdded += o.FilesAdded
	c.FilesModified += o.FilesModified
	c.FilesDeleted += o.FilesDeleted
}

type Result struct {
	Counters
	PathsDone    int
	PathsSkipped int
	Canceled     bool
}

// Run exports the target locale for each default-locale path. A path whose
// locale has no twin root is skipped with a diagnostic. Cancellation is
// polled between paths.
func (s *Service) Run(ctx context.Context, locale string, removeObsolete bool, paths []*domain.LocalePath) (Result, error) {
	var res Result
	for _, lp := range paths {
		if ctx.Err() != nil {
			res.Canceled = true
			s.log.Logf("info", "export canceled after %d path(s)", res.PathsDone)
			break
		}
		c, err := s.runPath(ctx, lp, locale, removeObsolete)
		if err != nil {
			res.PathsSkipped++
			s.log.Logf("warn", "path %s: %v", lp.Path, err)
			continue
		}
		res.PathsDone++
		res.accumulate(c)
		s.log.Logf("info", "Path %s (%s)", lp.Path, locale)
		s.log.Logf("info", "  Folders... Added: %d; Deleted: %d", c.FoldersAdded, c.FoldersDeleted)
		s.log.Logf("info", "  Files... Added: %d; Modified: %d; Deleted: %d", c.FilesAdded, c.FilesModified, c.FilesDeleted)
	}
	s.log.Logf("info", "Export totals (%s): folders +%d -%d, files +%d ~%d -%d (%d path(s), %d skipped)",
		locale, res.FoldersAdded, res.FoldersDeleted, res.FilesAdded, res.FilesModified, res.FilesDeleted,
		res.PathsDone, res.PathsSkipped)
	return res, nil
}

func (s *Service) runPath(ctx context.Context, lp *domain.LocalePath, locale string, removeObsolete bool) (Counters, error) {
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
	twin, err := s.session.FindTwin(ctx, root, locale)
	if err != nil {
		return c, fmt.Errorf("resolve twin root: %w", err)
	}
	twinRoot, _ := twin.(*domain.LocaleContainer)
	if twinRoot == nil {
		return c, fmt.Errorf("locale %s has no content for this path", locale)
	}
	twinPath, err := s.session.LocalePathByContainer(ctx, twinRoot)
	if err != nil || twinPath == nil {
		return c, fmt.Errorf("locale %s twin root has no locale path", locale)
	}
	if err := s.exportContainer(ctx, twinRoot, twinPath.Path, lp.Path, removeObsolete, &c); err != nil {
		return c, err
	}
	return c, nil
}

// exportContainer writes one twin container to diskDir. masterDir is the
// same directory in the default locale's on-disk tree; binary files are
// copied verbatim from there.
func (s *Service) exportContainer(ctx context.Context, c *domain.LocaleContainer, diskDir, masterDir string, removeObsolete bool, counters *Counters) error {
	// Master children first so twin links (and KeepOriginal lookups) resolve.
	if master, ok := c.DefaultTwin().(*domain.LocaleContainer); ok && master != nil {
		if err := s.session.LoadChildren(ctx, master); err != nil {
			return fmt.Errorf("load master children of %q: %w", c.Name(), err)
		}
	}
	if err := s.session.LoadChildren(ctx, c); err != nil {
		return fmt.Errorf("load children of %q: %w", c.Name(), err)
	}

	if err := os.MkdirAll(diskDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", diskDir, err)
	}
	entries, err := os.ReadDir(diskDir)
	if err != nil {
		return fmt.Errorf("list %s: %w", diskDir, err)
	}
	seen := map[string]os.DirEntry{}
	for _, e := range entries {
		seen[e.Name()] = e
	}

	for _, child := range c.Containers() {
		target := filepath.Join(diskDir, child.Name())
		if e, ok := seen[child.Name()]; ok {
			if !e.IsDir() {
				s.log.Logf("warn", "conflict at %s: disk entry is a file where the tree expects a directory", target)
				delete(seen, child.Name())
				continue
			}
			delete(seen, child.Name())
		} else {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			counters.FoldersAdded++
		}
		if err := s.exportContainer(ctx, child, target, filepath.Join(masterDir, child.Name()), removeObsolete, counters); err != nil {
			return err
		}
	}

	for _, f := range c.Files() {
		if f.DontExport {
			continue
		}
		target := filepath.Join(diskDir, f.Name())
		e, existed := seen[f.Name()]
		if existed && e.IsDir() {
			s.log.Logf("warn", "conflict at %s: disk entry is a directory where the tree expects a file", target)
			delete(seen, f.Name())
			continue
		}
		delete(seen, f.Name())
		if f.FileKind() == domain.FileBinary {
			// Binaries carry no translatable content; the default locale's
			// on-disk bytes are copied verbatim.
			if err := copyFile(filepath.Join(masterDir, f.Name()), target); err != nil {
				s.log.Logf("warn", "copy %s: %v", target, err)
				continue
			}
			if existed {
				counters.FilesModified++
			} else {
				counters.FilesAdded++
			}
			continue
		}
		codec, ok := s.codecs.Get(f.FileKind())
		if !ok {
			s.log.Logf("warn", "no serializer for %s (%s), skipped", target, f.FileKind())
			continue
		}
		if err := codec.ExportToFile(ctx, f, target); err != nil {
			s.log.Logf("error", "write %s: %v", target, err)
			continue
		}
		if existed {
			counters.FilesModified++
		} else {
			counters.FilesAdded++
		}
	}

	if removeObsolete {
		for name, e := range seen {
			target := filepath.Join(diskDir, name)
			if err := os.RemoveAll(target); err != nil {
				s.log.Logf("error", "delete %s: %v", target, err)
				continue
			}
			if e.IsDir() {
				counters.FoldersDeleted++
			} else {
				counters.FilesDeleted++
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
