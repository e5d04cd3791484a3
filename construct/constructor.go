// Package construct implements the HTML tree-construction dispatcher of
// spec.md §4.5: a 23-mode insertion-mode state machine consuming tokens
// from a tokenizer.Sink and building a domtree.Tree.
//
// The mode/stack/helper shape (oe/afe stacks, popUntil/elementInScope,
// addElement/addText/addChild, reconstructActiveFormattingElements,
// the adoption agency) is grounded directly on
// dpotapov-go-pages/chtml/html/parse.go, the teacher's own adaptation of
// golang.org/x/net/html's tree constructor — translated from its pointer-
// based *html.Node tree onto domtree.Tree's Ref-indexed compact tree. The
// teacher's fork only drives inBodyIM/textIM/afterBodyIM (it parses
// component fragments already rooted in a body), so the document-level
// modes (initial, before-html, before-head, in-head, after-head, the table
// family, select, frameset) are built here from the WHATWG algorithm
// directly, following the same helper idioms the teacher establishes.
package construct

import (
	"strings"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/token"
	"github.com/tagtree/htmlkit/tokenizer"
)

// mode is an insertion mode (spec.md §4.5's 23 states): a transition
// function over the current token, returning whether it was consumed.
type mode func(c *Constructor, tok *token.Token) bool

// modeKind names an insertion mode without the comparability problems of a
// Go func value (func values support only comparison to nil, so storing the
// current mode as a bare `mode` would make resetInsertionMode's "is this
// mode one of the table family" checks impossible). Constructor stores
// modeKind and looks the function up in modeDispatch to run it.
type modeKind uint8

const (
	mInitial modeKind = iota
	mBeforeHTML
	mBeforeHead
	mInHead
	mInHeadNoscript
	mAfterHead
	mInBody
	mText
	mInTable
	mInTableText
	mInCaption
	mInColumnGroup
	mInTableBody
	mInRow
	mInCell
	mInSelect
	mInSelectInTable
	mInTemplate
	mAfterBody
	mInFrameset
	mAfterFrameset
	mAfterAfterBody
	mAfterAfterFrameset
)

var modeDispatch = map[modeKind]mode{
	mInitial:             initialMode,
	mBeforeHTML:          beforeHTMLMode,
	mBeforeHead:          beforeHeadMode,
	mInHead:              inHeadMode,
	mInHeadNoscript:      inHeadNoscriptMode,
	mAfterHead:           afterHeadMode,
	mInBody:              inBodyMode,
	mText:                textMode,
	mInTable:             inTableMode,
	mInTableText:         inTableTextMode,
	mInCaption:           inCaptionMode,
	mInColumnGroup:       inColumnGroupMode,
	mInTableBody:         inTableBodyMode,
	mInRow:               inRowMode,
	mInCell:              inCellMode,
	mInSelect:            inSelectMode,
	mInSelectInTable:     inSelectInTableMode,
	mInTemplate:          inTemplateMode,
	mAfterBody:           afterBodyMode,
	mInFrameset:          inFramesetMode,
	mAfterFrameset:       afterFramesetMode,
	mAfterAfterBody:      afterAfterBodyMode,
	mAfterAfterFrameset:  afterAfterFramesetMode,
}

// Constructor drives tree construction per spec.md §4.5. It implements
// tokenizer.Sink so a tokenizer can push tokens into it directly.
type Constructor struct {
	tree *domtree.Tree
	tok  *tokenizer.Tokenizer

	doc domtree.Ref

	oe  oeStack
	afe afeStack

	im         modeKind
	originalIM modeKind

	// templateModes is the "stack of template insertion modes" (spec.md
	// §4.5's note on "stack of insertion modes"), an explicit slice rather
	// than recursion.
	templateModes []modeKind

	formElement  domtree.Ref
	headElement  domtree.Ref
	framesetOK   bool
	fosterParent bool

	// pendingTableChars buffers in-table-text mode's character run until a
	// non-character token decides whether it is all-whitespace (kept in the
	// table) or not (foster-parented), per spec.md §4.5's text-collection
	// note.
	pendingTableChars strings.Builder
	tableCharsNonWS   bool

	scriptingEnabled bool

	errors []string

	// fragmentContext, when non-nil, is the context element priming
	// fragment parsing per spec.md §4.5's fragment-parsing presets.
	fragmentContext *domtree.Node
}

// New creates a Constructor that builds into tree starting from a fresh
// Document node. SetTokenizer must be called before tokens are pushed, so
// the constructor can switch tokenizer content models for RCDATA/RAWTEXT/
// script-data elements and fragment-parsing presets.
func New(tree *domtree.Tree) *Constructor {
	c := &Constructor{tree: tree}
	c.doc = tree.Insert(tree.Root(), domtree.NewDocument())
	c.im = mInitial
	c.framesetOK = true
	return c
}

// SetTokenizer wires the tokenizer this constructor receives tokens from,
// needed for content-model switches (spec.md §4.3/§4.5).
func (c *Constructor) SetTokenizer(t *tokenizer.Tokenizer) { c.tok = t }

// Document returns the ref of the root Document node.
func (c *Constructor) Document() domtree.Ref { return c.doc }

// Tree returns the tree being constructed.
func (c *Constructor) Tree() *domtree.Tree { return c.tree }

// Errors returns the parse errors reported by the tokenizer and
// constructor, in emission order.
func (c *Constructor) Errors() []string { return c.errors }

// ReportError implements tokenizer.Sink.
func (c *Constructor) ReportError(name string) { c.errors = append(c.errors, name) }

// ProcessToken implements tokenizer.Sink: spec.md §4.5's "on_emit_token"
// dispatch, reprocessing the token against successive modes until
// consumed (mirroring parseCurrentToken's for !consumed loop).
func (c *Constructor) ProcessToken(tok *token.Token) {
	for {
		if modeDispatch[c.im](c, tok) {
			return
		}
	}
}

// top returns the current node: the top of the stack of open elements, or
// the document if the stack is empty.
func (c *Constructor) top() domtree.Ref {
	if r := c.oe.top(); r != 0 {
		return r
	}
	return c.doc
}

func (c *Constructor) currentNode() *domtree.Node { return c.tree.Value(c.top()) }

// popUntil pops the stack of open elements at the highest element among
// matchTags that is in the given scope. Returns whether it found one.
func (c *Constructor) popUntil(s scope, matchTags ...atom.Atom) bool {
	if i := c.indexOfElementInScope(s, matchTags...); i != -1 {
		c.oe = c.oe[:i]
		return true
	}
	return false
}

func (c *Constructor) indexOfElementInScope(s scope, matchTags ...atom.Atom) int {
	for i := len(c.oe) - 1; i >= 0; i-- {
		n := c.tree.Value(c.oe[i])
		if n.ElemNamespace == atom.HTML {
			for _, t := range matchTags {
				if t == n.Local {
					return i
				}
			}
		}
		switch s {
		case defaultScope:
		case listItemScope:
			if n.ElemNamespace == atom.HTML && (n.Local == atom.Ol || n.Local == atom.Ul) {
				return -1
			}
		case buttonScope:
			if n.ElemNamespace == atom.HTML && n.Local == atom.Button {
				return -1
			}
		case tableScope:
			if n.ElemNamespace == atom.HTML && (n.Local == atom.Html || n.Local == atom.Table || n.Local == atom.Template) {
				return -1
			}
			continue
		case selectScope:
			if !(n.ElemNamespace == atom.HTML && (n.Local == atom.Optgroup || n.Local == atom.Option)) {
				return -1
			}
			continue
		}
		for _, t := range defaultScopeStopTags[n.ElemNamespace] {
			if t == n.Local {
				return -1
			}
		}
	}
	return -1
}

func (c *Constructor) elementInScope(s scope, matchTags ...atom.Atom) bool {
	return c.indexOfElementInScope(s, matchTags...) != -1
}

// generateImpliedEndTags pops elements whose tag is in the implied-end-tag
// set, stopping at the first one whose tag is named in exceptions.
func (c *Constructor) generateImpliedEndTags(exceptions ...atom.Atom) {
	for len(c.oe) > 0 {
		n := c.tree.Value(c.oe.top())
		if n.ElemNamespace != atom.HTML {
			return
		}
		switch n.Local {
		case atom.Dd, atom.Dt, atom.Li, atom.Optgroup, atom.Option, atom.P,
			atom.Rp, atom.Rt:
			for _, e := range exceptions {
				if e == n.Local {
					return
				}
			}
			c.oe.pop()
			continue
		}
		return
	}
}

// appendChild appends n as the last child of parent.
func (c *Constructor) appendChild(parent domtree.Ref, n domtree.Node) domtree.Ref {
	return c.tree.Insert(c.tree.ChildrenEnd(parent), n)
}

func (c *Constructor) lastChild(parent domtree.Ref) domtree.Ref {
	end := c.tree.ChildrenEnd(parent)
	if c.tree.FirstChild(parent) == end {
		return 0
	}
	return c.tree.Prev(end)
}

// shouldFosterParent reports whether the next insertion must follow the
// foster-parenting algorithm (spec.md §4.5).
func (c *Constructor) shouldFosterParent() bool {
	if !c.fosterParent {
		return false
	}
	n := c.currentNode()
	if n.ElemNamespace != atom.HTML {
		return false
	}
	switch n.Local {
	case atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
		return true
	}
	return false
}

// fosterParentInsert inserts n per spec.md §4.5's foster-parenting algorithm:
// just before the nearest table ancestor (or inside the last template, if
// one sits between the top of the stack and that table), instead of as the
// current node's child.
func (c *Constructor) fosterParentInsert(n domtree.Node) domtree.Ref {
	var tableIdx, templateIdx = -1, -1
	for i := len(c.oe) - 1; i >= 0; i-- {
		v := c.tree.Value(c.oe[i])
		if tableIdx == -1 && v.ElemNamespace == atom.HTML && v.Local == atom.Table {
			tableIdx = i
		}
		if templateIdx == -1 && v.ElemNamespace == atom.HTML && v.Local == atom.Template {
			templateIdx = i
		}
	}

	if templateIdx != -1 && (tableIdx == -1 || templateIdx > tableIdx) {
		return c.appendChild(c.oe[templateIdx], n)
	}

	if tableIdx == -1 {
		return c.appendChild(c.oe[0], n)
	}

	tableRef := c.oe[tableIdx]
	parent := c.tree.Parent(tableRef)
	if parent == c.tree.Root() {
		// The table has no parent yet (still being constructed); fall back
		// to appending inside the element just below it on the stack.
		if tableIdx == 0 {
			return c.appendChild(c.doc, n)
		}
		return c.appendChild(c.oe[tableIdx-1], n)
	}

	if n.Kind == domtree.Text {
		if prev := c.tree.Prev(tableRef); prev != 0 && prev != c.tree.Root() {
			if pv := c.tree.Value(prev); pv.Kind == domtree.Text {
				pv.Data += n.Data
				return prev
			}
		}
	}
	return c.tree.Insert(tableRef, n)
}

// addChild inserts n at the current insertion location (foster-parented if
// required) and, for element-like nodes, pushes it onto the stack of open
// elements.
func (c *Constructor) addChild(n domtree.Node) domtree.Ref {
	var ref domtree.Ref
	if c.shouldFosterParent() {
		ref = c.fosterParentInsert(n)
	} else {
		ref = c.appendChild(c.top(), n)
	}
	if n.IsElementLike() {
		c.oe.push(ref)
	}
	return ref
}

// addText appends text to the preceding text node if there is one,
// otherwise inserts a new Text node.
func (c *Constructor) addText(text string) {
	if text == "" {
		return
	}
	if c.shouldFosterParent() {
		c.fosterParentInsert(domtree.NewText(text))
		return
	}
	if last := c.lastChild(c.top()); last != 0 {
		if n := c.tree.Value(last); n.Kind == domtree.Text {
			n.Data += text
			return
		}
	}
	c.addChild(domtree.NewText(text))
}

// createElementForToken builds an Element node from a start-tag token in
// namespace ns (spec.md §4.5's create_element_for_token), without
// inserting it.
func createElementForToken(tok *token.Token, ns atom.Namespace) domtree.Node {
	n := domtree.NewElement(ns, tok.TagAtom, tok.TagName)
	if len(tok.Attr) > 0 {
		n.Attrs = make([]domtree.Attr, 0, len(tok.Attr))
		for _, a := range tok.Attr {
			if a.Omitted {
				continue
			}
			n.Attrs = append(n.Attrs, domtree.Attr{
				Namespace: a.Namespace,
				Prefix:    a.Prefix,
				Local:     a.Atom,
				LocalName: a.Name,
				Value:     a.Value,
			})
		}
	}
	return n
}

// addElement inserts an Element built from the current token and pushes it
// onto the stack of open elements.
func (c *Constructor) addElement(tok *token.Token) domtree.Ref {
	return c.addChild(createElementForToken(tok, atom.HTML))
}

func cloneElement(t *domtree.Tree, r domtree.Ref) domtree.Node {
	n := *t.Value(r)
	n.Attrs = append([]domtree.Attr(nil), n.Attrs...)
	return n
}

// reparentChildren moves every child of src to the end of dst's children,
// without reallocating any slot (domtree.Tree.Move splices in place).
func (c *Constructor) reparentChildren(dst, src domtree.Ref) {
	for {
		child := c.tree.FirstChild(src)
		if child == c.tree.ChildrenEnd(src) {
			return
		}
		c.tree.Move(c.tree.ChildrenEnd(dst), child)
	}
}

// addFormattingElement implements spec.md §4.4's "push onto the list of
// active formatting elements", including the Noah's Ark clause: at most
// three elements with the same tag, namespace, and full attribute set
// (name/value pairs) may appear between the last marker and the end of the
// list.
func (c *Constructor) addFormattingElement(tok *token.Token) {
	tagAtom := tok.TagAtom
	ref := c.addElement(tok)
	attrs := c.tree.Value(ref).Attrs

	identical := 0
	for i := len(c.afe) - 1; i >= 0; i-- {
		e := c.afe[i]
		if e.marker {
			break
		}
		n := c.tree.Value(e.ref)
		if n.Local != tagAtom || n.ElemNamespace != atom.HTML || len(n.Attrs) != len(attrs) {
			continue
		}
		if !sameAttrs(n.Attrs, attrs) {
			continue
		}
		identical++
		if identical >= 3 {
			c.afe.remove(e.ref)
		}
	}

	c.afe = append(c.afe, afeEntry{ref: ref})
}

func sameAttrs(a, b []domtree.Attr) bool {
outer:
	for _, x := range a {
		for _, y := range b {
			if x.Name() == y.Name() && x.Namespace == y.Namespace && x.Value == y.Value {
				continue outer
			}
		}
		return false
	}
	return true
}

// clearActiveFormattingElements implements spec.md §4.4's "clear the list
// of active formatting elements up to the last marker".
func (c *Constructor) clearActiveFormattingElements() {
	for len(c.afe) > 0 {
		e := c.afe.pop()
		if e.marker {
			return
		}
	}
}

// reconstructActiveFormattingElements implements spec.md §4.4's
// reconstruction algorithm: re-creates formatting elements that fell out of
// the stack of open elements (e.g. because an intervening block element
// closed), cloning each in document order.
func (c *Constructor) reconstructActiveFormattingElements() {
	if len(c.afe) == 0 {
		return
	}
	last, _ := c.afe.top()
	if last.marker || c.oe.index(last.ref) != -1 {
		return
	}
	i := len(c.afe) - 1
	for {
		if i == 0 {
			i = -1
			break
		}
		i--
		e := c.afe[i]
		if e.marker || c.oe.index(e.ref) != -1 {
			break
		}
	}
	for {
		i++
		clone := cloneElement(c.tree, c.afe[i].ref)
		ref := c.addChild(clone)
		c.afe[i] = afeEntry{ref: ref}
		if i == len(c.afe)-1 {
			break
		}
	}
}

// adoptionAgency implements spec.md §4.5's adoption agency algorithm for an
// end tag naming a formatting element, bounded to 8 outer x 3 inner
// iterations. Grounded step-by-step on
// dpotapov-go-pages/chtml/html/parse.go's inBodyEndTagFormatting, itself a
// literal translation of the WHATWG algorithm onto a pointer tree; this
// version targets domtree.Tree's Ref/slot model instead.
func (c *Constructor) adoptionAgency(tagAtom atom.Atom) {
	if cur := c.top(); c.tree.Value(cur).Local == tagAtom && c.afe.index(cur) == -1 {
		c.oe.pop()
		return
	}

	for i := 0; i < 8; i++ {
		var feRef domtree.Ref
		feFound := false
		for j := len(c.afe) - 1; j >= 0; j-- {
			if c.afe[j].marker {
				break
			}
			if c.tree.Value(c.afe[j].ref).Local == tagAtom {
				feRef, feFound = c.afe[j].ref, true
				break
			}
		}
		if !feFound {
			c.inBodyEndTagOther(tagAtom)
			return
		}

		feIndex := c.oe.index(feRef)
		if feIndex == -1 {
			c.afe.remove(feRef)
			return
		}
		if !c.elementInScope(defaultScope, tagAtom) {
			return
		}

		var furthestBlock domtree.Ref
		for _, e := range c.oe[feIndex+1:] {
			if isSpecialElement(c.tree, e) {
				furthestBlock = e
				break
			}
		}
		if furthestBlock == 0 {
			for {
				e := c.oe.pop()
				if e == feRef {
					break
				}
			}
			c.afe.remove(feRef)
			return
		}

		commonAncestor := c.doc
		if feIndex > 0 {
			commonAncestor = c.oe[feIndex-1]
		}
		bookmark := c.afe.index(feRef)

		lastNode := furthestBlock
		node := furthestBlock
		x := c.oe.index(node)
		j := 0
		for {
			j++
			x--
			node = c.oe[x]
			if node == feRef {
				break
			}
			if ni := c.afe.index(node); j > 3 && ni > -1 {
				c.afe.remove(node)
				if ni <= bookmark {
					bookmark--
				}
				continue
			}
			if c.afe.index(node) == -1 {
				c.oe.remove(node)
				continue
			}
			clone := cloneElement(c.tree, node)
			newRef := c.insertDetached(clone)
			c.afe[c.afe.index(node)] = afeEntry{ref: newRef}
			c.oe[c.oe.index(node)] = newRef
			node = newRef
			if lastNode == furthestBlock {
				bookmark = c.afe.index(node) + 1
			}
			c.tree.Move(c.tree.ChildrenEnd(node), lastNode)
			lastNode = node
		}

		switch c.tree.Value(commonAncestor).Local {
		case atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
			if lastNode != 0 {
				c.fosterParentMove(lastNode)
			}
		default:
			c.tree.Move(c.tree.ChildrenEnd(commonAncestor), lastNode)
		}

		clone := cloneElement(c.tree, feRef)
		cloneRef := c.insertDetached(clone)
		c.reparentChildren(cloneRef, furthestBlock)
		c.tree.Move(c.tree.ChildrenEnd(furthestBlock), cloneRef)

		if oldLoc := c.afe.index(feRef); oldLoc != -1 && oldLoc < bookmark {
			bookmark--
		}
		c.afe.remove(feRef)
		if bookmark > len(c.afe) {
			bookmark = len(c.afe)
		}
		c.afe.insertAt(bookmark, afeEntry{ref: cloneRef})

		c.oe.remove(feRef)
		c.oe.insertAt(c.oe.index(furthestBlock)+1, cloneRef)
	}
}

// insertDetached allocates n as the last top-level sibling of the document
// (so it has a real Ref with a matching end-tag slot) and returns it still
// linked there; the adoption agency then reparents the clone via Move —
// domtree.Tree has no "allocate without linking" primitive, so this
// round-trips through the root position instead.
func (c *Constructor) insertDetached(n domtree.Node) domtree.Ref {
	ref := c.tree.Insert(c.tree.Root(), n)
	return ref
}

func (c *Constructor) fosterParentMove(ref domtree.Ref) {
	var tableIdx = -1
	for i := len(c.oe) - 1; i >= 0; i-- {
		v := c.tree.Value(c.oe[i])
		if v.ElemNamespace == atom.HTML && v.Local == atom.Table {
			tableIdx = i
			break
		}
	}
	if tableIdx == -1 {
		c.tree.Move(c.tree.ChildrenEnd(c.oe[0]), ref)
		return
	}
	c.tree.Move(c.oe[tableIdx], ref)
}

// inBodyEndTagOther implements spec.md §4.5's "any other end tag" handling:
// pop elements until one matching the end tag's name is popped, stopping if
// a special element is found first.
func (c *Constructor) inBodyEndTagOther(tagAtom atom.Atom) {
	for i := len(c.oe) - 1; i >= 0; i-- {
		n := c.tree.Value(c.oe[i])
		if n.ElemNamespace == atom.HTML && n.Local == tagAtom {
			c.oe = c.oe[:i]
			return
		}
		if isSpecialElement(c.tree, c.oe[i]) {
			return
		}
	}
}

func (c *Constructor) setOriginalIM() { c.originalIM = c.im }
