package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxNameLen is the longest display name a node may carry; longer names are
// truncated on assignment.
const MaxNameLen = 128

// NodeKind discriminates the three node types in the persisted store.
type NodeKind string

const (
	KindContainer NodeKind = "container"
	KindFile      NodeKind = "file"
	KindContent   NodeKind = "content"
)

var (
	// ErrNotDefaultMaster is returned when a twin operation is attempted on a
	// node that is not a default-locale master. Twins cannot have twins.
	ErrNotDefaultMaster = errors.New("node is not a default-locale master")
	// ErrKindMismatch is returned when a twin link would cross node kinds.
	ErrKindMismatch = errors.New("twin node kind mismatch")
)

// LocaleNode is any node participating in the localization tree: a container,
// a file or a content item. The set of implementations is closed.
type LocaleNode interface {
	base() *nodeBase
	NodeKind() NodeKind
	ID() int64
	SetID(id int64)
	Name() string
	SetName(name string)
	Locale() string
	SetLocale(locale string)
	Parent() LocaleNode
	IsDefaultMaster() bool
	DefaultTwin() LocaleNode
	SetDefaultTwin(master LocaleNode) error
	ClearDefaultTwin()
	Twins() []LocaleNode
	TwinForLocale(locale string) LocaleNode
	CreationDate() time.Time
	SetCreationDate(t time.Time)
	LastUpdate() time.Time
	SetLastUpdate(t time.Time)
}

// nodeBase carries the attributes shared by every node. It is embedded by the
// three concrete node types; the twin link fields are unexported so the
// defaultTwin/twins pair can only change through SetDefaultTwin and stays
// symmetric.
type nodeBase struct {
	id          int64
	name        string
	locale      string
	created     time.Time
	updated     time.Time
	self        LocaleNode
	parent      LocaleNode
	defaultTwin LocaleNode
	twins       []LocaleNode
}

func (b *nodeBase) init(self LocaleNode, name, locale string) {
	now := time.Now().UTC()
	b.self = self
	b.locale = locale
	b.created = now
	b.updated = now
	b.SetName(name)
}

func (b *nodeBase) base() *nodeBase { return b }

func (b *nodeBase) ID() int64      { return b.id }
func (b *nodeBase) SetID(id int64) { b.id = id }

func (b *nodeBase) Name() string { return b.name }

// SetName assigns the display name, truncating it to at most MaxNameLen
// bytes without splitting a rune.
func (b *nodeBase) SetName(name string) {
	if len(name) > MaxNameLen {
		cut := MaxNameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	b.name = name
	b.updated = time.Now().UTC()
}

func (b *nodeBase) Locale() string          { return b.locale }
func (b *nodeBase) SetLocale(locale string) { b.locale = locale }

func (b *nodeBase) CreationDate() time.Time { return b.created }
func (b *nodeBase) LastUpdate() time.Time   { return b.updated }

func (b *nodeBase) SetCreationDate(t time.Time) { b.created = t }
func (b *nodeBase) SetLastUpdate(t time.Time)   { b.updated = t }

// Touch refreshes the last-update timestamp.
func (b *nodeBase) Touch() { b.updated = time.Now().UTC() }

// Parent returns the owning node, or nil for a tree root.
func (b *nodeBase) Parent() LocaleNode { return b.parent }

func (b *nodeBase) setParent(p LocaleNode) { b.parent = p }

// IsDefaultMaster reports whether this node is the default-locale instance of
// its logical item (the one every other locale's twin points at).
func (b *nodeBase) IsDefaultMaster() bool { return b.defaultTwin == nil }

// DefaultTwin returns the default-locale master this node is linked to, or
// nil when this node is itself the master.
func (b *nodeBase) DefaultTwin() LocaleNode { return b.defaultTwin }

// SetDefaultTwin links this node to its default-locale master, registering it
// in the master's twin set. The master must itself be a default-locale master
// and of the same node kind. Passing nil clears the link.
func (b *nodeBase) SetDefaultTwin(master LocaleNode) error {
	if master == nil {
		b.ClearDefaultTwin()
		return nil
	}
	mb := master.base()
	if mb.defaultTwin != nil {
		return ErrNotDefaultMaster
	}
	if master.NodeKind() != b.self.NodeKind() {
		return ErrKindMismatch
	}
	if b.defaultTwin != nil {
		b.ClearDefaultTwin()
	}
	b.defaultTwin = master
	mb.twins = append(mb.twins, b.self)
	b.updated = time.Now().UTC()
	return nil
}

// ClearDefaultTwin removes the twin link, deregistering this node from its
// master's twin set.
func (b *nodeBase) ClearDefaultTwin() {
	if b.defaultTwin == nil {
		return
	}
	mb := b.defaultTwin.base()
	for i, t := range mb.twins {
		if t.base() == b {
			mb.twins = append(mb.twins[:i], mb.twins[i+1:]...)
			break
		}
	}
	b.defaultTwin = nil
	b.updated = time.Now().UTC()
}

// Twins returns a copy of the set of nodes whose DefaultTwin points here. The
// collection is derived; it is only ever mutated through SetDefaultTwin.
func (b *nodeBase) Twins() []LocaleNode {
	out := make([]LocaleNode, len(b.twins))
	copy(out, b.twins)
	return out
}

// TwinForLocale returns this master's twin in the given locale, the node
// itself when the locale matches its own, or nil.
func (b *nodeBase) TwinForLocale(locale string) LocaleNode {
	if b.locale == locale {
		return b.self
	}
	for _, t := range b.twins {
		if t.base().locale == locale {
			return t
		}
	}
	return nil
}
