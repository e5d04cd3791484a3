package cssselect

import (
	"strconv"
	"strings"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
)

// Context carries the namespace-resolution state spec.md's <ns-prefix>
// grammar needs, grounded on
// original_source/include/wordring/wwwc/selectors/selectors_defs.hpp's
// match_context: a prefix->URI map plus a default namespace, since this
// module (like the original) matches standalone selector strings rather
// than resolving prefixes against a stylesheet's own @namespace rules.
type Context struct {
	// Namespaces maps a selector's prefix (everything before '|') to the
	// URI it should resolve to. A lookup miss is a match failure, per
	// Selectors 4 §3's "if the namespace prefix... has not been declared...
	// it's an invalid selector" — this module treats it as "never matches"
	// rather than a parse-time error, since the mapping isn't known until
	// query time.
	Namespaces map[string]atom.Namespace

	// DefaultNamespace is the namespace an unprefixed type selector is
	// restricted to, analogous to an @namespace rule with no prefix. Only
	// consulted when HasDefaultNamespace is true; per CSS Namespaces §5.1,
	// an unprefixed type selector with no default namespace declared
	// matches an element in ANY namespace, which is what a zero Context
	// gives a plain HTML document's elements (all tagged atom.HTML, never
	// atom.NoNamespace).
	DefaultNamespace    atom.Namespace
	HasDefaultNamespace bool
}

// resolve maps a selector's namespace-prefix spelling to a concrete
// atom.Namespace. ok is false for an undeclared prefix.
func (c Context) resolve(prefix string, hasPrefix bool) (ns atom.Namespace, matchAny, ok bool) {
	if !hasPrefix {
		if !c.HasDefaultNamespace {
			return 0, true, true
		}
		return c.DefaultNamespace, false, true
	}
	if prefix == "*" {
		return 0, true, true
	}
	if prefix == "" {
		return atom.NoNamespace, false, true
	}
	ns, ok = c.Namespaces[prefix]
	return ns, false, ok
}

// Matches reports whether node (identified by ref) satisfies list under ctx.
func Matches(tree *domtree.Tree, ref domtree.Ref, list *SelectorList, ctx Context) bool {
	for _, sel := range list.Selectors {
		if matchesComplex(tree, ref, sel, ctx) {
			return true
		}
	}
	return false
}

// matchesComplex implements spec.md's right-to-left matching: the last
// compound selector must match the candidate itself, then each preceding
// compound/combinator pair is checked by walking up (or across, for
// sibling combinators) from there.
func matchesComplex(tree *domtree.Tree, ref domtree.Ref, sel ComplexSelector, ctx Context) bool {
	n := len(sel.Parts)
	if n == 0 {
		return false
	}
	if !matchesCompound(tree, ref, sel.Parts[n-1].Compound, ctx) {
		return false
	}
	return matchChain(tree, ref, sel.Parts, n-2, ctx)
}

// matchChain checks sel.Parts[i] and everything before it against some
// node reachable from the already-matched node at cursor via
// sel.Parts[i+1].Combinator.
func matchChain(tree *domtree.Tree, cursor domtree.Ref, parts []ComplexSelectorPart, i int, ctx Context) bool {
	if i < 0 {
		return true
	}
	comb := parts[i+1].Combinator
	compound := parts[i].Compound

	switch comb {
	case Descendant:
		for p := tree.Parent(cursor); p != 0; p = tree.Parent(p) {
			if matchesCompound(tree, p, compound, ctx) && matchChain(tree, p, parts, i-1, ctx) {
				return true
			}
		}
		return false
	case Child:
		p := tree.Parent(cursor)
		if p == 0 {
			return false
		}
		return matchesCompound(tree, p, compound, ctx) && matchChain(tree, p, parts, i-1, ctx)
	case NextSibling:
		s := prevSiblingElement(tree, cursor)
		if s == 0 {
			return false
		}
		return matchesCompound(tree, s, compound, ctx) && matchChain(tree, s, parts, i-1, ctx)
	case SubsequentSibling:
		for s := prevSiblingElement(tree, cursor); s != 0; s = prevSiblingElement(tree, s) {
			if matchesCompound(tree, s, compound, ctx) && matchChain(tree, s, parts, i-1, ctx) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// prevSiblingElement returns ref's previous Element sibling, or 0 if none.
func prevSiblingElement(tree *domtree.Tree, ref domtree.Ref) domtree.Ref {
	parent := tree.Parent(ref)
	for p := tree.Prev(ref); p != 0 && p != ref; p = tree.Prev(p) {
		if tree.Parent(p) != parent {
			return 0
		}
		if tree.Value(p).Kind == domtree.Element {
			return p
		}
	}
	return 0
}

func matchesCompound(tree *domtree.Tree, ref domtree.Ref, cs CompoundSelector, ctx Context) bool {
	n := tree.Value(ref)
	if n.Kind != domtree.Element {
		return false
	}

	if cs.Type != nil {
		if !matchesType(n, *cs.Type, ctx) {
			return false
		}
	}
	if cs.IDSet {
		id, _ := n.Attr("id")
		if id != cs.ID {
			return false
		}
	}
	for _, class := range cs.Classes {
		if !hasClass(n, class) {
			return false
		}
	}
	for _, a := range cs.Attrs {
		if !matchesAttr(n, a, ctx) {
			return false
		}
	}
	for _, pc := range cs.PseudoClasses {
		if !matchesPseudoClass(tree, ref, pc, ctx) {
			return false
		}
	}
	return true
}

func matchesType(n *domtree.Node, ts TypeSelector, ctx Context) bool {
	ns, matchAnyNS, ok := ctx.resolve(ts.NamespacePrefix, ts.HasPrefix)
	if !ok {
		return false
	}
	if !matchAnyNS && n.ElemNamespace != ns {
		return false
	}
	if ts.Name == "" {
		return true // universal selector
	}
	return strings.EqualFold(n.TagName(), ts.Name)
}

func hasClass(n *domtree.Node, class string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, tok := range strings.Fields(v) {
		if tok == class {
			return true
		}
	}
	return false
}

func matchesAttr(n *domtree.Node, a AttrSelector, ctx Context) bool {
	var value string
	var found bool
	for _, attr := range n.Attrs {
		if attr.Name() != a.Name {
			continue
		}
		if a.HasPrefix {
			ns, matchAny, ok := ctx.resolve(a.NamespacePrefix, true)
			if !ok {
				continue
			}
			if !matchAny && attr.Namespace != ns {
				continue
			}
		} else if attr.Namespace != atom.NoNamespace {
			continue
		}
		value, found = attr.Value, true
		break
	}
	if !found {
		return false
	}
	if a.Matcher == AttrExists {
		return true
	}

	want := a.Value
	got := value
	if a.CaseInsensitive {
		want = strings.ToLower(want)
		got = strings.ToLower(got)
	}

	switch a.Matcher {
	case AttrEquals:
		return got == want
	case AttrIncludes:
		for _, tok := range strings.Fields(got) {
			if tok == want {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return got == want || strings.HasPrefix(got, want+"-")
	case AttrPrefix:
		return want != "" && strings.HasPrefix(got, want)
	case AttrSuffix:
		return want != "" && strings.HasSuffix(got, want)
	case AttrSubstring:
		return want != "" && strings.Contains(got, want)
	default:
		return false
	}
}

func matchesPseudoClass(tree *domtree.Tree, ref domtree.Ref, pc PseudoClass, ctx Context) bool {
	switch pc.Kind {
	case PseudoRoot:
		return isRoot(tree, ref)
	case PseudoEmpty:
		return isEmpty(tree, ref)
	case PseudoFirstChild:
		return elementIndex(tree, ref) == 0
	case PseudoLastChild:
		return elementIndexFromEnd(tree, ref) == 0
	case PseudoOnlyChild:
		return elementIndex(tree, ref) == 0 && elementIndexFromEnd(tree, ref) == 0
	case PseudoNthChild:
		return matchesNth(pc.Nth, elementIndex(tree, ref))
	case PseudoNthLastChild:
		return matchesNth(pc.Nth, elementIndexFromEnd(tree, ref))
	case PseudoNot:
		return !Matches(tree, ref, pc.Not, ctx)
	default:
		return false
	}
}

// isRoot reports whether ref is the document element: its parent is a
// Document (or the tree's bare sentinel, for a context-less match).
func isRoot(tree *domtree.Tree, ref domtree.Ref) bool {
	p := tree.Parent(ref)
	if p == 0 {
		return true
	}
	return tree.Value(p).Kind == domtree.Document
}

func isEmpty(tree *domtree.Tree, ref domtree.Ref) bool {
	end := tree.ChildrenEnd(ref)
	for c := tree.FirstChild(ref); c != end; c = tree.Next(c) {
		n := tree.Value(c)
		if n.Kind == domtree.Element {
			return false
		}
		if n.Kind == domtree.Text && n.Data != "" {
			return false
		}
	}
	return true
}

// elementIndex returns ref's 0-based position among its parent's Element
// children.
func elementIndex(tree *domtree.Tree, ref domtree.Ref) int {
	parent := tree.Parent(ref)
	end := tree.ChildrenEnd(parent)
	i := 0
	for c := tree.FirstChild(parent); c != end; c = tree.Next(c) {
		if c == ref {
			return i
		}
		if tree.Value(c).Kind == domtree.Element {
			i++
		}
	}
	return i
}

func elementIndexFromEnd(tree *domtree.Tree, ref domtree.Ref) int {
	parent := tree.Parent(ref)
	end := tree.ChildrenEnd(parent)
	i := 0
	found := false
	for c := tree.FirstChild(parent); c != end; c = tree.Next(c) {
		if c == ref {
			found = true
			continue
		}
		if found && tree.Value(c).Kind == domtree.Element {
			i++
		}
	}
	return i
}

// matchesNth implements the an+b test of Selectors 4 §5.5: index (0-based)
// satisfies the expression when (index+1 - b) is a non-negative multiple of
// a, or equals b exactly when a is 0.
func matchesNth(expr NthExpr, index int) bool {
	pos := index + 1
	if expr.A == 0 {
		return pos == expr.B
	}
	diff := pos - expr.B
	if diff%expr.A != 0 {
		return false
	}
	return diff/expr.A >= 0
}

// FormatNth renders an NthExpr back to its an+b source form, used for
// diagnostics.
func FormatNth(expr NthExpr) string {
	if expr.A == 0 {
		return strconv.Itoa(expr.B)
	}
	sign := "+"
	b := expr.B
	if b < 0 {
		sign = "-"
		b = -b
	}
	return strconv.Itoa(expr.A) + "n" + sign + strconv.Itoa(b)
}
