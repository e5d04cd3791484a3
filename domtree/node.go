// Package domtree implements the compact tagged tree of spec.md §3.3: a
// single vector of slots interleaving start-tag and synthesized end-tag
// records, with O(1) splice-based insert/erase/move and free-list reuse of
// deleted slots.
//
// The Node type itself follows golang.org/x/net/html.Node's shape (one
// struct carrying every variant's fields behind a Kind discriminant)
// rather than an interface with seven implementations — the same design
// the teacher's own chtml/html package inherits by building directly on
// x/net/html.Node, and a better fit for a value that gets embedded inline
// in a slot than a boxed interface would be.
package domtree

import "github.com/tagtree/htmlkit/atom"

// NodeKind identifies which of the seven tagged-union variants of
// spec.md §3.2 a Node holds.
type NodeKind uint8

const (
	Invalid NodeKind = iota
	Document
	DocumentType
	DocumentFragment
	Element
	Text
	ProcessingInstruction
	Comment
)

func (k NodeKind) String() string {
	switch k {
	case Document:
		return "Document"
	case DocumentType:
		return "DocumentType"
	case DocumentFragment:
		return "DocumentFragment"
	case Element:
		return "Element"
	case Text:
		return "Text"
	case ProcessingInstruction:
		return "ProcessingInstruction"
	case Comment:
		return "Comment"
	default:
		return "Invalid"
	}
}

// DocumentMode records the quirks-mode decision of spec.md §4.5.
type DocumentMode uint8

const (
	NoQuirks DocumentMode = iota
	Quirks
	LimitedQuirks
)

// Attr is one (namespace, prefix, local-name-atom-or-string, value) tuple
// per spec.md §3.2. LocalName carries the raw string when Local is
// atom.Unknown (an attribute name not in the curated table).
type Attr struct {
	Namespace atom.Namespace
	Prefix    string
	Local     atom.Atom
	LocalName string
	Value     string
}

// Name returns the attribute's local name, preferring the atom's canonical
// string when known.
func (a Attr) Name() string {
	if a.Local != atom.Unknown {
		return atom.Attrs.String(a.Local)
	}
	return a.LocalName
}

// Node is the value embedded in every tagged-tree slot. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Node struct {
	Kind NodeKind

	// Document fields.
	DocumentKind string // "html" or "xml"
	Mode         DocumentMode
	IframeSrcdoc bool

	// DocumentType fields.
	Name     string
	PublicID string
	SystemID string

	// Element fields.
	ElemNamespace  atom.Namespace
	Prefix         string
	Local          atom.Atom
	LocalName      string
	Attrs          []Attr
	AlreadyStarted bool // <script>: has execution already been triggered
	NonBlocking    bool // <script async>

	// ProcessingInstruction fields.
	Target string

	// Text / Comment / ProcessingInstruction data.
	Data string
}

// IsElementLike reports whether Kind is one of the container-like variants
// that the tagged tree gives a synthesized end-tag slot (spec.md §3.3's
// "for any element-like node"). Document and DocumentFragment also bracket
// children this way; Text, Comment, DocumentType, and (in this HTML-only
// module, which never produces one) ProcessingInstruction are leaf-like.
func (n *Node) IsElementLike() bool {
	switch n.Kind {
	case Element, Document, DocumentFragment:
		return true
	default:
		return false
	}
}

// TagName returns an Element's qualified local name, honoring Prefix.
func (n *Node) TagName() string {
	local := n.LocalName
	if n.Local != atom.Unknown {
		local = atom.Tags.String(n.Local)
	}
	if n.Prefix != "" {
		return n.Prefix + ":" + local
	}
	return local
}

// Attr looks up an attribute by local name among the attributes that carry
// no namespace (ordinary HTML attributes).
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Namespace == atom.NoNamespace && a.Name() == name {
			return a.Value, true
		}
	}
	return "", false
}

// NewElement builds an Element node for local in the given namespace.
func NewElement(ns atom.Namespace, local atom.Atom, localName string) Node {
	return Node{Kind: Element, ElemNamespace: ns, Local: local, LocalName: localName}
}

// NewText builds a Text node.
func NewText(data string) Node { return Node{Kind: Text, Data: data} }

// NewComment builds a Comment node.
func NewComment(data string) Node { return Node{Kind: Comment, Data: data} }

// NewDocumentType builds a DocumentType node.
func NewDocumentType(name, publicID, systemID string) Node {
	return Node{Kind: DocumentType, Name: name, PublicID: publicID, SystemID: systemID}
}

// NewDocument builds a Document node.
func NewDocument() Node { return Node{Kind: Document, DocumentKind: "html"} }

// NewDocumentFragment builds a DocumentFragment node.
func NewDocumentFragment() Node { return Node{Kind: DocumentFragment} }
