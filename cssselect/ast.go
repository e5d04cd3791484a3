package cssselect

// Combinator is the relationship between two compound selectors in a
// complex selector, per spec.md §4.6's grammar:
// <complex-selector> = <compound-selector> [<combinator> <compound-selector>]*
type Combinator uint8

const (
	// Descendant is the implicit combinator written as whitespace.
	Descendant Combinator = iota
	Child                 // >
	NextSibling           // +
	SubsequentSibling     // ~
)

// TypeSelector matches an element's namespace and local name, per spec.md's
// <type-selector> = [<ns-prefix>? ('*'|<ident>)].
type TypeSelector struct {
	NamespacePrefix string // "" = no prefix written; nsAny means explicit '*' prefix
	HasPrefix       bool
	Name            string // "" means the universal selector '*'
}

// AttrMatcher is one of the Selectors-4 attribute comparison operators.
type AttrMatcher uint8

const (
	AttrExists    AttrMatcher = iota // [attr]
	AttrEquals                       // [attr=val]
	AttrIncludes                     // [attr~=val]
	AttrDashMatch                    // [attr|=val]
	AttrPrefix                       // [attr^=val]
	AttrSuffix                       // [attr$=val]
	AttrSubstring                    // [attr*=val]
)

// AttrSelector matches an attribute per spec.md's
// <attr-selector> = '[' <ns-prefix>? <ident> [<attr-matcher> (<string>|<ident>) [<i-flag>|<s-flag>]?]? ']'
type AttrSelector struct {
	NamespacePrefix string
	HasPrefix       bool
	Name            string
	Matcher         AttrMatcher
	Value           string
	CaseInsensitive bool // the 'i' flag; 's' is the (already case-sensitive) default, tracked only for completeness
}

// PseudoClassKind enumerates the pseudo-classes this package recognizes.
// :root is the only one the original implementation carries; the rest are
// SPEC_FULL.md's sanctioned supplement toward "the full Selectors 4 set"
// (recorded in DESIGN.md).
type PseudoClassKind uint8

const (
	PseudoRoot PseudoClassKind = iota
	PseudoEmpty
	PseudoFirstChild
	PseudoLastChild
	PseudoOnlyChild
	PseudoNthChild
	PseudoNthLastChild
	PseudoNot
)

// NthExpr is the an+b micro-syntax argument of :nth-child()/:nth-last-child().
type NthExpr struct {
	A, B int
}

// PseudoClass is one compound-selector qualifier of the :name or :name(arg)
// forms.
type PseudoClass struct {
	Kind PseudoClassKind
	Nth  NthExpr         // NthChild, NthLastChild
	Not  *SelectorList   // Not
}

// CompoundSelector is a sequence of simple selectors with no combinator
// between them, per spec.md's
// <compound-selector> = <type-selector>? [<id>|<class>|<attr>|<pseudo-class>|<pseudo-element>]*
type CompoundSelector struct {
	Type          *TypeSelector
	ID            string // "" means no #id filter
	IDSet         bool
	Classes       []string
	Attrs         []AttrSelector
	PseudoClasses []PseudoClass
	PseudoElement string // "" when absent; recognized but never matches any node (see DESIGN.md)
}

// ComplexSelectorPart links one compound selector to the one before it.
type ComplexSelectorPart struct {
	Combinator Combinator // ignored for index 0
	Compound   CompoundSelector
}

// ComplexSelector is spec.md's <complex-selector>: a chain of compound
// selectors joined by combinators, read left to right in source order but
// matched right to left (see match.go).
type ComplexSelector struct {
	Parts []ComplexSelectorPart
}

// SelectorList is spec.md's <selector-list> = <complex-selector>#, a
// comma-separated list where a candidate matches the whole list if it
// matches any member.
type SelectorList struct {
	Selectors []ComplexSelector
}
