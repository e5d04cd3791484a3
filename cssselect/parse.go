package cssselect

import (
	"strconv"
	"strings"
)

// ParseSelector parses a selector list string per spec.md §4.6's grammar,
// returning a *SyntaxError (never a plain error) on malformed input.
func ParseSelector(source string) (*SelectorList, error) {
	toks := tokenize(source)
	p := &parser{source: source, toks: toks}
	list, err := p.parseSelectorList()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if !p.atEnd() {
		return nil, syntaxErrorf(source, "unexpected token after selector list")
	}
	return list, nil
}

func tokenize(source string) []Token {
	lx := newLexer(source)
	var toks []Token
	for {
		tk := lx.Next()
		toks = append(toks, tk)
		if tk.Kind == EOFToken {
			return toks
		}
	}
}

type parser struct {
	source string
	toks   []Token
	pos    int
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) at(offset int) Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return Token{Kind: EOFToken}
	}
	return p.toks[i]
}

func (p *parser) advance() Token {
	tk := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tk
}

func (p *parser) atEnd() bool { return p.peek().Kind == EOFToken }

func (p *parser) skipWS() {
	for p.peek().Kind == WhitespaceToken {
		p.advance()
	}
}

// hadWhitespace reports whether a whitespace token sits at the cursor,
// consuming it, used to distinguish a descendant combinator from no
// combinator at all.
func (p *parser) hadWhitespace() bool {
	if p.peek().Kind == WhitespaceToken {
		p.advance()
		return true
	}
	return false
}

func (p *parser) fail(format string, args ...any) error {
	return syntaxErrorf(p.source, format, args...)
}

func (p *parser) parseSelectorList() (*SelectorList, error) {
	list := &SelectorList{}
	for {
		p.skipWS()
		cs, err := p.parseComplexSelector()
		if err != nil {
			return nil, err
		}
		list.Selectors = append(list.Selectors, *cs)
		p.skipWS()
		if p.peek().Kind != CommaToken {
			break
		}
		p.advance()
	}
	return list, nil
}

func (p *parser) parseComplexSelector() (*ComplexSelector, error) {
	cs := &ComplexSelector{}
	compound, err := p.parseCompoundSelector()
	if err != nil {
		return nil, err
	}
	cs.Parts = append(cs.Parts, ComplexSelectorPart{Compound: *compound})

	for {
		sawWS := p.hadWhitespace()
		comb, explicit, ok := p.peekCombinator()
		if !ok {
			if !sawWS {
				return cs, nil
			}
			// Trailing whitespace before a comma, ')', or EOF: not a
			// descendant combinator to anything.
			return cs, nil
		}
		if explicit {
			p.advance()
			p.skipWS()
		} else if !sawWS {
			return cs, nil
		} else {
			comb = Descendant
		}
		next, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		cs.Parts = append(cs.Parts, ComplexSelectorPart{Combinator: comb, Compound: *next})
	}
}

// peekCombinator reports the combinator at the cursor without consuming
// whitespace-implied descendant combinators (the caller already did).
// explicit is true for >, +, ~ (which the caller must advance past); ok is
// false at a selector-list boundary (comma, closing paren, EOF).
func (p *parser) peekCombinator() (comb Combinator, explicit bool, ok bool) {
	tk := p.peek()
	switch {
	case tk.Kind == DelimToken && tk.Delim == '>':
		return Child, true, true
	case tk.Kind == DelimToken && tk.Delim == '+':
		return NextSibling, true, true
	case tk.Kind == DelimToken && tk.Delim == '~':
		return SubsequentSibling, true, true
	case tk.Kind == CommaToken || tk.Kind == RParenToken || tk.Kind == EOFToken:
		return 0, false, false
	default:
		return Descendant, false, true
	}
}

func (p *parser) parseCompoundSelector() (*CompoundSelector, error) {
	cs := &CompoundSelector{}

	if ts, ok, err := p.tryParseTypeSelector(); err != nil {
		return nil, err
	} else if ok {
		cs.Type = ts
	}

	sawAny := cs.Type != nil
	for {
		tk := p.peek()
		switch {
		case tk.Kind == HashToken:
			p.advance()
			cs.ID = tk.Value
			cs.IDSet = true
			sawAny = true
		case tk.Kind == DelimToken && tk.Delim == '.':
			p.advance()
			name, err := p.expectIdent("class name")
			if err != nil {
				return nil, err
			}
			cs.Classes = append(cs.Classes, name)
			sawAny = true
		case tk.Kind == LBracketToken:
			attr, err := p.parseAttrSelector()
			if err != nil {
				return nil, err
			}
			cs.Attrs = append(cs.Attrs, *attr)
			sawAny = true
		case tk.Kind == ColonToken:
			pc, isElement, err := p.parsePseudo()
			if err != nil {
				return nil, err
			}
			if isElement {
				cs.PseudoElement = pc
			} else {
				pseudo, err := p.buildPseudoClass(pc)
				if err != nil {
					return nil, err
				}
				cs.PseudoClasses = append(cs.PseudoClasses, *pseudo)
			}
			sawAny = true
		default:
			if !sawAny {
				return nil, p.fail("expected a selector, found %v", tk.Kind)
			}
			return cs, nil
		}
	}
}

func (p *parser) expectIdent(what string) (string, error) {
	tk := p.peek()
	if tk.Kind != IdentToken {
		return "", p.fail("expected %s, found %v", what, tk.Kind)
	}
	p.advance()
	return tk.Value, nil
}

// tryParseTypeSelector consumes a leading [<ns-prefix>? ('*'|<ident>)], per
// spec.md's <type-selector> production.
func (p *parser) tryParseTypeSelector() (*TypeSelector, bool, error) {
	start := p.pos
	ts := &TypeSelector{}

	consumeNameOrStar := func() (string, bool) {
		tk := p.peek()
		if tk.Kind == IdentToken {
			p.advance()
			return tk.Value, true
		}
		if tk.Kind == DelimToken && tk.Delim == '*' {
			p.advance()
			return "", true
		}
		return "", false
	}

	// Try <ns-prefix> '|' form: (ident|'*')  '|' , but '|' alone as a delim
	// must not be confused with the attribute [|=] matcher (only relevant
	// inside brackets, so no ambiguity here).
	if tk := p.peek(); tk.Kind == IdentToken || (tk.Kind == DelimToken && tk.Delim == '*') {
		saved := p.pos
		name, _ := consumeNameOrStar()
		if p.peek().Kind == DelimToken && p.peek().Delim == '|' {
			// Lookahead: '|' followed by '=' is an attribute matcher, not a
			// namespace separator, but that only appears inside '[' ']'
			// contexts which never reach tryParseTypeSelector, so consume.
			p.advance()
			ts.NamespacePrefix = name
			ts.HasPrefix = true
			localName, ok := consumeNameOrStar()
			if !ok {
				p.pos = start
				return nil, false, nil
			}
			ts.Name = localName
			return ts, true, nil
		}
		p.pos = saved
	}

	if tk := p.peek(); tk.Kind == DelimToken && tk.Delim == '|' {
		p.advance()
		name, ok := consumeNameOrStar()
		if !ok {
			p.pos = start
			return nil, false, nil
		}
		ts.HasPrefix = true
		ts.NamespacePrefix = "" // explicit "no namespace" prefix
		ts.Name = name
		return ts, true, nil
	}

	name, ok := consumeNameOrStar()
	if !ok {
		return nil, false, nil
	}
	ts.Name = name
	return ts, true, nil
}

func (p *parser) parseAttrSelector() (*AttrSelector, error) {
	p.advance() // '['
	p.skipWS()

	attr := &AttrSelector{}

	// Optional namespace prefix.
	if (p.peek().Kind == IdentToken || (p.peek().Kind == DelimToken && p.peek().Delim == '*')) && p.at(1).Kind == DelimToken && p.at(1).Delim == '|' && !(p.at(2).Kind == DelimToken && p.at(2).Delim == '=') {
		if p.peek().Kind == IdentToken {
			attr.NamespacePrefix = p.peek().Value
		}
		p.advance() // prefix
		p.advance() // '|'
		attr.HasPrefix = true
	}

	name, err := p.expectIdent("attribute name")
	if err != nil {
		return nil, err
	}
	attr.Name = name
	p.skipWS()

	if p.peek().Kind == RBracketToken {
		p.advance()
		attr.Matcher = AttrExists
		return attr, nil
	}

	matcher, ok := p.tryParseAttrMatcher()
	if !ok {
		return nil, p.fail("expected attribute matcher or ']'")
	}
	attr.Matcher = matcher
	p.skipWS()

	tk := p.peek()
	switch tk.Kind {
	case StringToken, IdentToken:
		attr.Value = tk.Value
		p.advance()
	default:
		return nil, p.fail("expected attribute value string or identifier")
	}
	p.skipWS()

	if tk := p.peek(); tk.Kind == IdentToken && (tk.Value == "i" || tk.Value == "I") {
		attr.CaseInsensitive = true
		p.advance()
		p.skipWS()
	} else if tk.Kind == IdentToken && (tk.Value == "s" || tk.Value == "S") {
		p.advance()
		p.skipWS()
	}

	if p.peek().Kind != RBracketToken {
		return nil, p.fail("expected ']'")
	}
	p.advance()
	return attr, nil
}

func (p *parser) tryParseAttrMatcher() (AttrMatcher, bool) {
	tk := p.peek()
	if tk.Kind == DelimToken && tk.Delim == '=' {
		p.advance()
		return AttrEquals, true
	}
	if tk.Kind != DelimToken {
		return 0, false
	}
	next := p.at(1)
	if next.Kind != DelimToken || next.Delim != '=' {
		return 0, false
	}
	var m AttrMatcher
	switch tk.Delim {
	case '~':
		m = AttrIncludes
	case '|':
		m = AttrDashMatch
	case '^':
		m = AttrPrefix
	case '$':
		m = AttrSuffix
	case '*':
		m = AttrSubstring
	default:
		return 0, false
	}
	p.advance()
	p.advance()
	return m, true
}

// parsePseudo consumes ':' or '::' plus a name (and a possible function
// argument list), returning (name, isPseudoElement, error). The function
// argument tokens for :not() and :nth-child()-family are left for
// buildPseudoClass to interpret via a fresh sub-parser.
func (p *parser) parsePseudo() (string, bool, error) {
	p.advance() // first ':'
	isElement := false
	if p.peek().Kind == ColonToken {
		p.advance()
		isElement = true
	}
	tk := p.peek()
	switch tk.Kind {
	case IdentToken:
		p.advance()
		return tk.Value, isElement, nil
	case FunctionToken:
		return tk.Value, isElement, nil // leave '(' for buildPseudoClass
	default:
		return "", false, p.fail("expected pseudo-class or pseudo-element name")
	}
}

// buildPseudoClass interprets the pseudo-class named by parsePseudo,
// consuming a function argument list from the token stream when name names
// a functional pseudo-class.
func (p *parser) buildPseudoClass(name string) (*PseudoClass, error) {
	lower := strings.ToLower(name)
	functional := p.peek().Kind == FunctionToken && strings.EqualFold(p.peek().Value, name)

	switch lower {
	case "root":
		return &PseudoClass{Kind: PseudoRoot}, nil
	case "empty":
		return &PseudoClass{Kind: PseudoEmpty}, nil
	case "first-child":
		return &PseudoClass{Kind: PseudoFirstChild}, nil
	case "last-child":
		return &PseudoClass{Kind: PseudoLastChild}, nil
	case "only-child":
		return &PseudoClass{Kind: PseudoOnlyChild}, nil
	case "nth-child", "nth-last-child":
		if !functional {
			return nil, p.fail("%s requires an argument", name)
		}
		p.advance() // consume the function token
		expr, err := p.parseNth()
		if err != nil {
			return nil, err
		}
		p.skipWS()
		if p.peek().Kind != RParenToken {
			return nil, p.fail("expected ')' after %s argument", name)
		}
		p.advance()
		kind := PseudoNthChild
		if lower == "nth-last-child" {
			kind = PseudoNthLastChild
		}
		return &PseudoClass{Kind: kind, Nth: expr}, nil
	case "not":
		if !functional {
			return nil, p.fail(":not requires an argument")
		}
		p.advance()
		p.skipWS()
		list, err := p.parseSelectorList()
		if err != nil {
			return nil, err
		}
		p.skipWS()
		if p.peek().Kind != RParenToken {
			return nil, p.fail("expected ')' after :not argument")
		}
		p.advance()
		return &PseudoClass{Kind: PseudoNot, Not: list}, nil
	default:
		return nil, p.fail("unsupported pseudo-class %q", name)
	}
}

// parseNth reads the an+b micro-syntax (CSS Syntax's "anb" production):
// odd, even, <integer>, <n-dimension>, or a <dimension>+<integer> pair.
func (p *parser) parseNth() (NthExpr, error) {
	p.skipWS()
	tk := p.peek()

	if tk.Kind == IdentToken && strings.EqualFold(tk.Value, "odd") {
		p.advance()
		return NthExpr{A: 2, B: 1}, nil
	}
	if tk.Kind == IdentToken && strings.EqualFold(tk.Value, "even") {
		p.advance()
		return NthExpr{A: 2, B: 0}, nil
	}
	if tk.Kind == NumberToken && tk.IsInteger {
		p.advance()
		return NthExpr{A: 0, B: int(tk.Number)}, nil
	}
	// "2n-1": '-' and digits are name characters, so the lexer folds "-1"
	// into the dimension's unit instead of emitting a separate number.
	if tk.Kind == DimensionToken && len(tk.Value) > 2 && strings.EqualFold(tk.Value[:2], "n-") &&
		tk.Value[2] >= '0' && tk.Value[2] <= '9' {
		if b, err := strconv.Atoi(tk.Value[2:]); err == nil {
			p.advance()
			return NthExpr{A: int(tk.Number), B: -b}, nil
		}
	}

	a, unit, ok := p.parseNthLeadingTerm()
	if !ok {
		return NthExpr{}, p.fail("invalid an+b expression")
	}
	_ = unit

	p.skipWS()

	// When no whitespace separates a '+' from the digits that follow it
	// ("2n+1"), the lexer has already folded the sign into a single
	// NumberToken (CSS Syntax Level 3 §4.3.10's "would start a number"
	// check fires on the sign itself); "2n-1" is handled above, since its
	// '-' ends up in the dimension's unit. Only a sign written with
	// trailing whitespace before the digits ("2n + 1") surfaces as a
	// separate DelimToken here.
	if tk := p.peek(); tk.Kind == NumberToken && tk.IsInteger {
		p.advance()
		return NthExpr{A: a, B: int(tk.Number)}, nil
	}
	if tk := p.peek(); tk.Kind == DelimToken && (tk.Delim == '+' || tk.Delim == '-') {
		sign := 1
		if tk.Delim == '-' {
			sign = -1
		}
		p.advance()
		p.skipWS()
		b := p.peek()
		if b.Kind != NumberToken || !b.IsInteger {
			return NthExpr{}, p.fail("expected integer after sign in an+b expression")
		}
		p.advance()
		return NthExpr{A: a, B: sign * int(b.Number)}, nil
	}
	return NthExpr{A: a, B: 0}, nil
}

// parseNthLeadingTerm consumes the "<n-dimension>" or signed-n-ident part
// of an an+b expression, e.g. "2n", "-n", "+n", "n".
func (p *parser) parseNthLeadingTerm() (a int, unit string, ok bool) {
	tk := p.peek()
	switch tk.Kind {
	case DimensionToken:
		if strings.EqualFold(tk.Value, "n") {
			p.advance()
			return int(tk.Number), "n", true
		}
		if strings.EqualFold(tk.Value, "n-") {
			p.advance()
			return int(tk.Number), "n-", true
		}
	case IdentToken:
		switch {
		case strings.EqualFold(tk.Value, "n"):
			p.advance()
			return 1, "n", true
		case strings.EqualFold(tk.Value, "-n"):
			p.advance()
			return -1, "n", true
		case strings.EqualFold(tk.Value, "+n"):
			p.advance()
			return 1, "n", true
		}
	case DelimToken:
		if tk.Delim == '+' {
			if next := p.at(1); next.Kind == IdentToken && strings.EqualFold(next.Value, "n") {
				p.advance()
				p.advance()
				return 1, "n", true
			}
		}
	}
	return 0, "", false
}
