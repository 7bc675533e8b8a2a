// Package textfile implements the codec for opaque plain-text files: the
// whole file is carried as a single content item.
package textfile

import (
	"context"
	"fmt"
	"os"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Kind() domain.FileKind { return domain.FileText }

func (c *Codec) ImportFromFile(ctx context.Context, f *domain.LocaleFile, diskPath string, policy domain.ImportPolicy) ([]*domain.LocaleContent, error) {
	data, err := os.ReadFile(diskPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", diskPath, err)
	}
	text := string(data)

	if f.IsDefaultMaster() {
		blob := f.ContentByName(f.Name())
		if blob == nil {
			blob = domain.NewLocaleContent(f.Name(), f.Locale(), domain.ContentGeneric)
			f.AddContent(blob)
		} else if blob.TextValue == text {
			return nil, nil
		}
		blob.TextValue = text
		blob.Touch()
		return []*domain.LocaleContent{blob}, nil
	}

	master, _ := f.DefaultTwin().(*domain.LocaleFile)
	if master == nil {
		return nil, fmt.Errorf("file %q: no default twin", f.Name())
	}
	source := master.ContentByName(master.Name())
	if source == nil {
		return nil, nil
	}
	twin, _ := source.TwinForLocale(f.Locale()).(*domain.LocaleContent)
	if twin == nil {
		twin = domain.NewLocaleContent(source.Name(), f.Locale(), domain.ContentGeneric)
		twin.OrderInFile = source.OrderInFile
		if err := twin.SetDefaultTwin(source); err != nil {
			return nil, err
		}
		f.AddContent(twin)
		twin.TextValue = text
		return []*domain.LocaleContent{twin}, nil
	}
	if text == "" {
		return nil, nil
	}
	if twin.TextValue != "" && policy == domain.PolicyKeep {
		return nil, nil
	}
	if twin.TextValue == text {
		return nil, nil
	}
	twin.TextValue = text
	twin.Touch()
	return []*domain.LocaleContent{twin}, nil
}

func (c *Codec) ExportToFile(ctx context.Context, f *domain.LocaleFile, diskPath string) error {
	var text string
	for _, ct := range f.ContentsOrdered() {
		if ct.DontExport {
			continue
		}
		text += ct.ExportValue()
	}
	if err := os.WriteFile(diskPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", diskPath, err)
	}
	return nil
}
