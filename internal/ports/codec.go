package ports

import (
	"context"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

// FileCodec is the per-file-format collaborator invoked by the Import and
// Export engines. Implementations own the read/write grammar of one file
// kind.
type FileCodec interface {
	Kind() domain.FileKind
	// ImportFromFile reads the on-disk file at diskPath into f's content
	// items, applying the on-existing-value policy, and returns every content
	// item it created or modified.
	ImportFromFile(ctx context.Context, f *domain.LocaleFile, diskPath string, policy domain.ImportPolicy) ([]*domain.LocaleContent, error)
	// ExportToFile serializes f's content items, ordered by OrderInFile, to
	// diskPath.
	ExportToFile(ctx context.Context, f *domain.LocaleFile, diskPath string) error
}
