package construct

import (
	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
)

// scope identifies one of the five scope predicates spec.md §4.4 and the
// HTML spec define: "has an element in ... scope". Grounded on
// dpotapov-go-pages/chtml/html/parse.go's popUntil/indexOfElementInScope,
// generalized from its namespace-keyed defaultScopeStopTags map (itself the
// HTML spec's own stop-tag list) to a closed switch over five variants; that
// teacher's extra tableRowScope/tableBodyScope constants are dropped here —
// they went unused in its own switch (falling through to "panic
// unreachable") because its fork never implemented table insertion modes,
// and the WHATWG spec defines only these five named scopes.
type scope int

const (
	defaultScope scope = iota
	listItemScope
	buttonScope
	tableScope
	selectScope
)

var defaultScopeStopTags = map[atom.Namespace][]atom.Atom{
	atom.HTML:  {atom.Applet, atom.Caption, atom.Html, atom.Table, atom.Td, atom.Th, atom.Marquee, atom.Object, atom.Template},
	atom.MathML: {atom.Mi, atom.Mn, atom.Mo, atom.Ms, atom.Mtext, atom.AnnotationXML},
	atom.SVG:   {atom.Desc, atom.ForeignObj, atom.Title},
}

// oeStack is the stack of open elements (spec.md §4.4), a LIFO of refs into
// the tagged tree with index 0 holding <html>.
type oeStack []domtree.Ref

func (s *oeStack) push(r domtree.Ref) { *s = append(*s, r) }

func (s *oeStack) pop() domtree.Ref {
	i := len(*s) - 1
	r := (*s)[i]
	*s = (*s)[:i]
	return r
}

func (s oeStack) top() domtree.Ref {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func (s oeStack) index(r domtree.Ref) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == r {
			return i
		}
	}
	return -1
}

func (s oeStack) contains(a atom.Atom, t *domtree.Tree) bool {
	for _, r := range s {
		n := t.Value(r)
		if n.Local == a && n.ElemNamespace == atom.HTML {
			return true
		}
	}
	return false
}

func (s *oeStack) remove(r domtree.Ref) {
	i := s.index(r)
	if i == -1 {
		return
	}
	copy((*s)[i:], (*s)[i+1:])
	*s = (*s)[:len(*s)-1]
}

func (s *oeStack) insertAt(i int, r domtree.Ref) {
	*s = append(*s, 0)
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = r
}

// afeEntry is one entry of the active formatting elements list: either a
// real element ref or a scope marker (spec.md §4.4's "markers", inserted
// when entering applet/object/marquee/template/td/th/caption).
type afeEntry struct {
	ref    domtree.Ref
	marker bool
}

type afeStack []afeEntry

func (s *afeStack) pop() afeEntry {
	i := len(*s) - 1
	e := (*s)[i]
	*s = (*s)[:i]
	return e
}

func (s afeStack) top() (afeEntry, bool) {
	if len(s) == 0 {
		return afeEntry{}, false
	}
	return s[len(s)-1], true
}

func (s afeStack) index(r domtree.Ref) int {
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].marker && s[i].ref == r {
			return i
		}
	}
	return -1
}

func (s *afeStack) remove(r domtree.Ref) {
	i := s.index(r)
	if i == -1 {
		return
	}
	copy((*s)[i:], (*s)[i+1:])
	*s = (*s)[:len(*s)-1]
}

func (s *afeStack) insertAt(i int, e afeEntry) {
	*s = append(*s, afeEntry{})
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = e
}

// specialTags is the HTML spec's "special" element category (spec.md §4.5's
// adoption-agency furthest-block search, and the li/dd/dt/heading start-tag
// handling in in-body), curated to the HTML-namespace subset the atom
// package's curated table carries.
var specialTags = map[atom.Atom]bool{
	atom.Address: true, atom.Applet: true, atom.Area: true, atom.Article: true,
	atom.Aside: true, atom.Base: true, atom.Basefont: true, atom.Bgsound: true,
	atom.Blockquote: true, atom.Body: true, atom.Br: true, atom.Button: true,
	atom.Caption: true, atom.Center: true, atom.Col: true, atom.Colgroup: true,
	atom.Dd: true, atom.Details: true, atom.Dir: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Embed: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.Frame: true,
	atom.Frameset: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Head: true, atom.Header: true, atom.Hgroup: true,
	atom.Hr: true, atom.Html: true, atom.Iframe: true, atom.Img: true, atom.Input: true,
	atom.Keygen: true, atom.Li: true, atom.Link: true, atom.Listing: true,
	atom.Main: true, atom.Marquee: true, atom.Menu: true, atom.Meta: true,
	atom.Nav: true, atom.Noembed: true, atom.Noframes: true, atom.Noscript: true,
	atom.Object: true, atom.Ol: true, atom.P: true, atom.Param: true,
	atom.Plaintext: true, atom.Pre: true, atom.Script: true, atom.Section: true,
	atom.Select: true, atom.Source: true, atom.Style: true, atom.Summary: true,
	atom.Table: true, atom.Tbody: true, atom.Td: true, atom.Template: true,
	atom.Textarea: true, atom.Tfoot: true, atom.Th: true, atom.Thead: true,
	atom.Title: true, atom.Tr: true, atom.Track: true, atom.Ul: true,
	atom.Wbr: true, atom.Xmp: true,
}

func isSpecialElement(t *domtree.Tree, r domtree.Ref) bool {
	n := t.Value(r)
	if n.ElemNamespace != atom.HTML {
		switch n.Local {
		case atom.Mi, atom.Mn, atom.Mo, atom.Ms, atom.Mtext, atom.AnnotationXML,
			atom.ForeignObj, atom.Desc, atom.Title:
			return true
		}
		return false
	}
	return specialTags[n.Local]
}

// formattingTags is the set of formatting elements the adoption agency
// algorithm applies to (spec.md §4.5).
var formattingTags = map[atom.Atom]bool{
	atom.A: true, atom.B: true, atom.Big: true, atom.Code: true, atom.Em: true,
	atom.Font: true, atom.I: true, atom.Nobr: true, atom.S: true, atom.Small: true,
	atom.Strike: true, atom.Strong: true, atom.Tt: true, atom.U: true,
}
