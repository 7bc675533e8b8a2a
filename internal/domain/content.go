package domain

// ContentKind is the concrete kind of a LocaleContent leaf. The set is closed
// and exhaustively switched over at every creation and serialization site.
type ContentKind string

const (
	ContentKeyValue   ContentKind = "keyvalue"
	ContentComment    ContentKind = "comment"
	ContentSection    ContentKind = "section"
	ContentLicense    ContentKind = "license"
	ContentExtEntity  ContentKind = "extentity"
	ContentWhitespace ContentKind = "whitespace"
	ContentGeneric    ContentKind = "generic"
)

// ImportPolicy controls what happens when an imported value meets an existing
// non-empty translated value.
type ImportPolicy string

const (
	PolicyKeep      ImportPolicy = "keep"
	PolicyOverwrite ImportPolicy = "overwrite"
)

// LocaleContent is a leaf translatable item: a key-value pair, a comment, a
// license header, an external-entity reference or a whitespace run.
type LocaleContent struct {
	nodeBase
	kind ContentKind

	// TextValue is the translatable payload of this item in its own locale.
	TextValue string
	// OrderInFile is the stable ordering key used to reconstruct file layout
	// on export.
	OrderInFile int
	// DontExport excludes this item from Export even when present.
	DontExport bool
	// KeepOriginal (non-default-locale only) makes Export use the default
	// twin's text verbatim instead of this node's own.
	KeepOriginal bool
	// MarkedForDeletion is a transient re-parse reconciliation flag. It is
	// never persisted.
	MarkedForDeletion bool
}

func NewLocaleContent(name, locale string, kind ContentKind) *LocaleContent {
	ct := &LocaleContent{kind: kind}
	ct.init(ct, name, locale)
	return ct
}

func (ct *LocaleContent) NodeKind() NodeKind { return KindContent }

func (ct *LocaleContent) ContentKind() ContentKind { return ct.kind }

// ParentFile returns the file owning this content item.
func (ct *LocaleContent) ParentFile() *LocaleFile {
	if p, ok := ct.Parent().(*LocaleFile); ok {
		return p
	}
	return nil
}

// ExportValue resolves the text to write on export: the default twin's text
// when KeepOriginal is set and a twin link exists, this node's own otherwise.
func (ct *LocaleContent) ExportValue() string {
	if ct.KeepOriginal {
		if master, ok := ct.DefaultTwin().(*LocaleContent); ok && master != nil {
			return master.TextValue
		}
	}
	return ct.TextValue
}
