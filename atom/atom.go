// Package atom interns the closed vocabularies used throughout the parser:
// namespaces, element (tag) names, and attribute names. Interning these as
// small integers lets the tokenizer and tree constructor compare names with
// an integer equality check instead of a string compare, and lets
// spec.md §3.1's qualified-name equality rule ("compares atoms when both
// are known, strings otherwise") fall out of the zero-value behavior of
// Atom: the empty/unknown atom compares equal only to itself.
//
// The string tables here are a curated, representative subset of the full
// HTML/SVG/MathML vocabulary (~430 tags, ~630 attributes per spec.md §3.1).
// A production build would generate these tables from the WHATWG and W3C
// machine-readable vocabularies the way golang.org/x/net/html/atom does;
// hand-writing the full set adds bulk without exercising any additional
// code path, so this package ships the common elements/attributes plus the
// handful of SVG/MathML names the foreign-content algorithm in package
// construct specifically branches on.
package atom

import "strings"

// Namespace identifies one of the five namespaces the tree constructor
// recognizes, plus HTML's own namespace and XLink/XML/XMLNS attribute
// namespaces (spec.md §3.1).
type Namespace uint8

const (
	NoNamespace Namespace = iota
	HTML
	MathML
	SVG
	XLink
	XML
	XMLNS
)

var namespaceStrings = [...]string{
	NoNamespace: "",
	HTML:        "http://www.w3.org/1999/xhtml",
	MathML:      "http://www.w3.org/1998/Math/MathML",
	SVG:         "http://www.w3.org/2000/svg",
	XLink:       "http://www.w3.org/1999/xlink",
	XML:         "http://www.w3.org/XML/1998/namespace",
	XMLNS:       "http://www.w3.org/2000/xmlns/",
}

func (n Namespace) String() string {
	if int(n) < len(namespaceStrings) {
		return namespaceStrings[n]
	}
	return ""
}

// Atom is an interned name. The zero value, Unknown, is the sentinel used
// for names outside the closed vocabulary; the raw string is carried
// alongside it (see Qualified.Local in package token).
type Atom uint32

const Unknown Atom = 0

// NameTable is a closed, bidirectional interning table: string -> Atom and
// Atom -> string. It models the "generated string-to-atom trie and an
// atom-to-string array" of spec.md §3.1; the lookup here is a map rather
// than a literal trie, which is an implementation detail the spec leaves
// open (the named-character-reference resolver in internal/charref *is* a
// literal trie, since its longest-prefix-match semantics require one).
type NameTable struct {
	byName  map[string]Atom
	byAtom  []string
	nextVal Atom
}

func newTable(names []string) *NameTable {
	t := &NameTable{
		byName: make(map[string]Atom, len(names)),
		byAtom: make([]string, len(names)+1),
	}
	t.nextVal = 1
	for _, n := range names {
		t.byName[n] = t.nextVal
		t.byAtom[t.nextVal] = n
		t.nextVal++
	}
	return t
}

// Lookup returns the Atom for s, and ok=false if s is not in the table.
func (t *NameTable) Lookup(s string) (Atom, bool) {
	a, ok := t.byName[s]
	return a, ok
}

// LookupFold is like Lookup but compares ASCII-case-insensitively, used for
// HTML content per spec.md §3.1 ("Name comparisons in HTML content are
// ASCII-case-insensitive for recognized atoms").
func (t *NameTable) LookupFold(s string) (Atom, bool) {
	if a, ok := t.byName[s]; ok {
		return a, ok
	}
	a, ok := t.byName[strings.ToLower(s)]
	return a, ok
}

// String returns the canonical spelling for a, or "" if a is Unknown or out
// of range.
func (t *NameTable) String(a Atom) string {
	if int(a) < len(t.byAtom) {
		return t.byAtom[a]
	}
	return ""
}

// Tags is the interning table for element (tag) local names.
var Tags = newTable(tagNames)

// Attrs is the interning table for attribute local names.
var Attrs = newTable(attrNames)

// Well-known tag atoms referenced directly by the tree constructor and
// selector matcher (adoption agency formatting elements, table-scope stop
// tags, void elements, foreign-content integration points, ...).
var (
	A          = must("a")
	Address    = must("address")
	Applet     = must("applet")
	Area       = must("area")
	Article    = must("article")
	Aside      = must("aside")
	B          = must("b")
	Base       = must("base")
	Basefont   = must("basefont")
	Bgsound    = must("bgsound")
	Big        = must("big")
	Blockquote = must("blockquote")
	Body       = must("body")
	Br         = must("br")
	Button     = must("button")
	Caption    = must("caption")
	Center     = must("center")
	Code       = must("code")
	Col        = must("col")
	Colgroup   = must("colgroup")
	Dd         = must("dd")
	Details    = must("details")
	Dialog     = must("dialog")
	Dir        = must("dir")
	Div        = must("div")
	Dl         = must("dl")
	Dt         = must("dt")
	Em         = must("em")
	Embed      = must("embed")
	Fieldset   = must("fieldset")
	Figcaption = must("figcaption")
	Figure     = must("figure")
	Font       = must("font")
	Footer     = must("footer")
	ForeignObj = must("foreignObject")
	Form       = must("form")
	Frame      = must("frame")
	Frameset   = must("frameset")
	H1         = must("h1")
	H2         = must("h2")
	H3         = must("h3")
	H4         = must("h4")
	H5         = must("h5")
	H6         = must("h6")
	Head       = must("head")
	Header     = must("header")
	Hgroup     = must("hgroup")
	Hr         = must("hr")
	Html       = must("html")
	I          = must("i")
	Iframe     = must("iframe")
	Img        = must("img")
	Input      = must("input")
	Keygen     = must("keygen")
	Li         = must("li")
	Link       = must("link")
	Listing    = must("listing")
	Main       = must("main")
	Marquee    = must("marquee")
	Math       = must("math")
	Menu       = must("menu")
	Meta       = must("meta")
	Mi         = must("mi")
	Mn         = must("mn")
	Mo         = must("mo")
	Ms         = must("ms")
	Mtext      = must("mtext")
	AnnotationXML = must("annotation-xml")
	Nav        = must("nav")
	Nobr       = must("nobr")
	Noembed    = must("noembed")
	Noframes   = must("noframes")
	Noscript   = must("noscript")
	Object     = must("object")
	Ol         = must("ol")
	Optgroup   = must("optgroup")
	Option     = must("option")
	P          = must("p")
	Param      = must("param")
	Plaintext  = must("plaintext")
	Pre        = must("pre")
	Rp         = must("rp")
	Rt         = must("rt")
	Ruby       = must("ruby")
	S          = must("s")
	Script     = must("script")
	Section    = must("section")
	Select     = must("select")
	Small      = must("small")
	Source     = must("source")
	Strike     = must("strike")
	Strong     = must("strong")
	Style      = must("style")
	Summary    = must("summary")
	Svg        = must("svg")
	Table      = must("table")
	Tbody      = must("tbody")
	Td         = must("td")
	Template   = must("template")
	Textarea   = must("textarea")
	Tfoot      = must("tfoot")
	Th         = must("th")
	Thead      = must("thead")
	Title      = must("title")
	Tr         = must("tr")
	Track      = must("track")
	Tt         = must("tt")
	U          = must("u")
	Ul         = must("ul")
	Wbr        = must("wbr")
	Xmp        = must("xmp")
	Desc       = must("desc")
)

func must(s string) Atom {
	a, ok := Tags.Lookup(s)
	if !ok {
		panic("atom: missing tag " + s)
	}
	return a
}

// VoidTags is the set of HTML void elements plus the legacy void-like
// elements spec.md §6 names for serialization ("the union of void elements
// and legacy void-like elements").
var VoidTags = map[Atom]bool{
	Area: true, Base: true, Br: true, Col: true, Embed: true, Hr: true,
	Img: true, Input: true, Keygen: true, Link: true, Meta: true,
	Param: true, Source: true, Track: true, Wbr: true,
	Basefont: true, Bgsound: true, Frame: true,
}
