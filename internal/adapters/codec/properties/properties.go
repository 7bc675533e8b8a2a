// Package properties implements the codec for structured key/value and
// section-oriented localization files: key=value pairs, #/! comments,
// [section] headers, external entity references and whitespace runs, with a
// leading comment block recognized as a license header.
package properties

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

type Codec struct {
	kind domain.FileKind
}

// New returns a codec serving the given parseable kind. The same grammar
// covers both the key/value and the section-oriented file kinds.
func New(kind domain.FileKind) *Codec { return &Codec{kind: kind} }

func (c *Codec) Kind() domain.FileKind { return c.kind }

// parsedItem is one content-bearing unit read from disk.
type parsedItem struct {
	kind  domain.ContentKind
	name  string
	value string
	order int
}

// parse splits the file into ordered items. Comment lines group into one
// block; the first block at the very top of the file becomes the license
// header when it reads like one. Blank lines group into whitespace runs.
func parse(data []byte) []parsedItem {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var items []parsedItem
	order := 0
	add := func(kind domain.ContentKind, name, value string) {
		items = append(items, parsedItem{kind: kind, name: name, value: value, order: order})
		order++
	}

	var block []string
	flushComment := func() {
		if len(block) == 0 {
			return
		}
		joined := strings.Join(block, "\n")
		kind := domain.ContentComment
		if len(items) == 0 && looksLikeLicense(joined) {
			kind = domain.ContentLicense
		}
		add(kind, fmt.Sprintf("__%s_%d", kind, order), joined)
		block = nil
	}

	var blank []string
	flushBlank := func() {
		if len(blank) == 0 {
			return
		}
		add(domain.ContentWhitespace, fmt.Sprintf("__ws_%d", order), strings.Join(blank, "\n"))
		blank = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushComment()
			blank = append(blank, line)
		case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!"):
			flushBlank()
			block = append(block, line)
		case strings.HasPrefix(trimmed, "<!ENTITY"):
			flushComment()
			flushBlank()
			add(domain.ContentExtEntity, entityName(trimmed), line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			flushComment()
			flushBlank()
			add(domain.ContentSection, strings.Trim(trimmed, "[]"), line)
		case strings.Contains(line, "="):
			flushComment()
			flushBlank()
			key, value, _ := strings.Cut(line, "=")
			add(domain.ContentKeyValue, strings.TrimSpace(key), value)
		default:
			flushComment()
			flushBlank()
			add(domain.ContentGeneric, fmt.Sprintf("__line_%d", order), line)
		}
	}
	flushComment()
	flushBlank()
	return items
}

func looksLikeLicense(block string) bool {
	lower := strings.ToLower(block)
	return strings.Contains(lower, "license") || strings.Contains(lower, "copyright")
}

// entityName extracts the name from an external entity declaration like
// <!ENTITY % brandDTD SYSTEM "chrome://branding/locale/brand.dtd">.
func entityName(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, "<!ENTITY"))
	for _, f := range fields {
		if f != "%" {
			return f
		}
	}
	return line
}

// ImportFromFile reads diskPath into f. Two modes share the grammar:
//
// When f is a default-locale master, the parse refreshes f's own structure:
// existing items are matched by name, new items are appended, and items no
// longer present on disk are left flagged MarkedForDeletion for the caller to
// reconcile.
//
// When f is a twin, the disk file holds translated values: each parsed item
// is matched against the default master's children, a twin content item is
// created in memory when missing, and the on-existing-value policy decides
// whether a non-empty translated value is kept or overwritten. Imported empty
// values never clobber an existing translation.
//
// Either way the returned slice holds every content item created or modified;
// the caller persists them.
func (c *Codec) ImportFromFile(ctx context.Context, f *domain.LocaleFile, diskPath string, policy domain.ImportPolicy) ([]*domain.LocaleContent, error) {
	data, err := os.ReadFile(diskPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", diskPath, err)
	}
	items := parse(data)
	if f.IsDefaultMaster() {
		return c.importMaster(f, items), nil
	}
	return c.importTwin(f, items, policy), nil
}

func (c *Codec) importMaster(f *domain.LocaleFile, items []parsedItem) []*domain.LocaleContent {
	for _, ct := range f.Contents() {
		ct.MarkedForDeletion = true
	}
	var touched []*domain.LocaleContent
	for _, it := range items {
		ct := f.ContentByName(it.name)
		if ct == nil {
			ct = domain.NewLocaleContent(it.name, f.Locale(), it.kind)
			ct.TextValue = it.value
			ct.OrderInFile = it.order
			f.AddContent(ct)
			touched = append(touched, ct)
			continue
		}
		ct.MarkedForDeletion = false
		if ct.TextValue != it.value || ct.OrderInFile != it.order {
			ct.TextValue = it.value
			ct.OrderInFile = it.order
			ct.Touch()
			touched = append(touched, ct)
		}
	}
	return touched
}

func (c *Codec) importTwin(f *domain.LocaleFile, items []parsedItem, policy domain.ImportPolicy) []*domain.LocaleContent {
	master, _ := f.DefaultTwin().(*domain.LocaleFile)
	var touched []*domain.LocaleContent
	for _, it := range items {
		if master == nil {
			break
		}
		source := master.ContentByName(it.name)
		if source == nil {
			// Not part of the default-locale structure; nothing to link to.
			continue
		}
		twin, _ := source.TwinForLocale(f.Locale()).(*domain.LocaleContent)
		if twin == nil {
			twin = domain.NewLocaleContent(source.Name(), f.Locale(), source.ContentKind())
			twin.OrderInFile = source.OrderInFile
			if err := twin.SetDefaultTwin(source); err != nil {
				continue
			}
			f.AddContent(twin)
			twin.TextValue = it.value
			touched = append(touched, twin)
			continue
		}
		if it.value == "" {
			continue
		}
		if twin.TextValue != "" && policy == domain.PolicyKeep {
			continue
		}
		if twin.TextValue != it.value {
			twin.TextValue = it.value
			twin.Touch()
			touched = append(touched, twin)
		}
	}
	return touched
}

// ExportToFile serializes f's content items, ordered by OrderInFile, to
// diskPath. Items flagged DontExport are left out; items flagged KeepOriginal
// emit the default twin's text verbatim.
func (c *Codec) ExportToFile(ctx context.Context, f *domain.LocaleFile, diskPath string) error {
	var b strings.Builder
	for _, ct := range f.ContentsOrdered() {
		if ct.DontExport {
			continue
		}
		switch ct.ContentKind() {
		case domain.ContentKeyValue:
			b.WriteString(ct.Name())
			b.WriteString("=")
			b.WriteString(ct.ExportValue())
		case domain.ContentComment, domain.ContentLicense, domain.ContentExtEntity,
			domain.ContentWhitespace, domain.ContentSection, domain.ContentGeneric:
			b.WriteString(ct.ExportValue())
		}
		b.WriteString("\n")
	}
	if err := os.WriteFile(diskPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", diskPath, err)
	}
	return nil
}
