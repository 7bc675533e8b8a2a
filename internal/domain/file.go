package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileKind is the concrete kind of a LocaleFile, chosen once at creation time
// by extension sniffing and never changed afterwards.
type FileKind string

const (
	FileKeyValue   FileKind = "keyvalue" // structured key/value formats (.properties, .dtd)
	FileIniSection FileKind = "ini"      // section-oriented formats
	FileBinary     FileKind = "binary"   // opaque binary/image
	FileText       FileKind = "text"     // opaque plain text blob
)

// Parseable reports whether files of this kind carry content items the codecs
// can read and write.
func (k FileKind) Parseable() bool {
	return k == FileKeyValue || k == FileIniSection
}

// ClassifyFileKind maps a file name to its kind by extension. Unknown
// extensions default to plain text.
func ClassifyFileKind(name string) FileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".properties", ".dtd":
		return FileKeyValue
	case ".ini", ".inc":
		return FileIniSection
	case ".png", ".gif", ".jpg", ".jpeg", ".bmp", ".ico":
		return FileBinary
	default:
		return FileText
	}
}

// LocaleFile is a file-like node holding content items for one locale.
type LocaleFile struct {
	nodeBase
	kind     FileKind
	contents []*LocaleContent

	// DontExport excludes the whole file from Export even when present.
	DontExport bool
}

func NewLocaleFile(name, locale string, kind FileKind) *LocaleFile {
	f := &LocaleFile{kind: kind}
	f.init(f, name, locale)
	return f
}

func (f *LocaleFile) NodeKind() NodeKind { return KindFile }

func (f *LocaleFile) FileKind() FileKind { return f.kind }

func (f *LocaleFile) Contents() []*LocaleContent {
	out := make([]*LocaleContent, len(f.contents))
	copy(out, f.contents)
	return out
}

// ContentsOrdered returns the content items sorted by OrderInFile, the order
// used to reconstruct file layout on export.
func (f *LocaleFile) ContentsOrdered() []*LocaleContent {
	out := f.Contents()
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderInFile < out[j].OrderInFile })
	return out
}

func (f *LocaleFile) AddContent(ct *LocaleContent) {
	if ct == nil {
		return
	}
	ct.setParent(f)
	f.contents = append(f.contents, ct)
	f.Touch()
}

func (f *LocaleFile) RemoveContent(ct *LocaleContent) bool {
	for i, cc := range f.contents {
		if cc == ct {
			f.contents = append(f.contents[:i], f.contents[i+1:]...)
			ct.setParent(nil)
			f.Touch()
			return true
		}
	}
	return false
}

// ContentByName returns the first content item with the given name (key).
func (f *LocaleFile) ContentByName(name string) *LocaleContent {
	for _, ct := range f.contents {
		if ct.Name() == name {
			return ct
		}
	}
	return nil
}

// ParentContainer returns the container owning this file.
func (f *LocaleFile) ParentContainer() *LocaleContainer {
	if p, ok := f.Parent().(*LocaleContainer); ok {
		return p
	}
	return nil
}
