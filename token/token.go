// Package token defines the vocabulary the tokenizer emits and the tree
// constructor consumes (spec.md §4.3). It is a separate package from both
// so that neither the tokenizer nor the tree constructor needs to import
// the other's internals to agree on the token shape — the same split
// golang.org/x/net/html draws between its Token type and its Tokenizer /
// parser.
package token

import "github.com/tagtree/htmlkit/atom"

// Type identifies which of the six token kinds a Token carries.
type Type uint8

const (
	Invalid Type = iota
	Doctype
	StartTag
	EndTag
	Comment
	Character
	EOF
)

func (t Type) String() string {
	switch t {
	case Doctype:
		return "Doctype"
	case StartTag:
		return "StartTag"
	case EndTag:
		return "EndTag"
	case Comment:
		return "Comment"
	case Character:
		return "Character"
	case EOF:
		return "EOF"
	default:
		return "Invalid"
	}
}

// Attribute is one name/value pair on a StartTag or EndTag token. Name is
// kept as a raw string. The tokenizer never sets Atom, so it stays
// atom.Unknown; construct.createElementForToken copies it unchanged into
// domtree.Attr.Local next to the raw Name.
type Attribute struct {
	Namespace atom.Namespace
	Prefix    string
	Name      string
	Atom      atom.Atom
	Value     string

	// Omitted marks a later duplicate attribute within the same tag,
	// dropped per spec.md §4.3 ("on duplicate ... the later one is marked
	// omitted").
	Omitted bool
}

// Token is the mutable, reused record the tokenizer fills in and the
// constructor reads during process_token (spec.md §4.3's "Emit contract").
// The tokenizer owns one Token and clears it in place between emissions
// (Reset, called from the tokenizer's emit) rather than allocating a new one, which
// is the "reused across tokens to avoid allocation" requirement.
type Token struct {
	Type Type

	// Doctype fields.
	Name        string
	PublicID    string
	SystemID    string
	ForceQuirks bool
	HasPublicID bool
	HasSystemID bool

	// Start/end tag fields.
	TagName      string
	TagAtom      atom.Atom
	SelfClosing  bool
	Attr         []Attribute

	// Comment / Character data.
	Data string
}

// Reset clears t for reuse, keeping the backing array of Attr.
func (t *Token) Reset() {
	t.Type = Invalid
	t.Name = ""
	t.PublicID = ""
	t.SystemID = ""
	t.ForceQuirks = false
	t.HasPublicID = false
	t.HasSystemID = false
	t.TagName = ""
	t.TagAtom = atom.Unknown
	t.SelfClosing = false
	t.Attr = t.Attr[:0]
	t.Data = ""
}

// Attribute looks up an attribute by local name, honoring Omitted.
func (t *Token) Attribute(name string) (string, bool) {
	for i := range t.Attr {
		a := &t.Attr[i]
		if a.Omitted {
			continue
		}
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
