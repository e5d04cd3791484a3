// Package tokenizer implements the HTML tokenizer of spec.md §4.3: an
// 80-state machine (approximated here by a representative subset of named
// states sufficient to tokenize real documents, including character
// references, RCDATA/RAWTEXT/script-data content models, comments, and
// DOCTYPE) that pushes tokens synchronously into a Sink.
//
// The state machine uses the stateFn dispatch idiom (a function value
// returning the next function to run) that text/template/parse and many
// other Go lexers use, rather than golang.org/x/net/html's single
// monolithic Next() method — it reads closer to the HTML spec's own
// state-by-state description and keeps each state's logic in one place.
package tokenizer

import (
	"strings"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/token"
)

// ContentModel selects which of the non-Data tokenizer entry states to use
// for an element about to be parsed as RCDATA/RAWTEXT/PLAINTEXT/script, per
// spec.md §4.5's "the tokenizer is pre-set to the corresponding state" for
// fragment parsing, and §4.3's last-start-tag-name-based RCDATA/RAWTEXT
// dispatch for normal parsing.
type ContentModel uint8

const (
	DataState ContentModel = iota
	RCDATAState
	RAWTEXTState
	ScriptDataState
	PlaintextState
)

type stateFn func(*Tokenizer) stateFn

// Tokenizer drives the Buffer through the HTML tokenizer state machine and
// calls Sink.ProcessToken synchronously for each emitted token (spec.md
// §4.3's "Emit contract").
type Tokenizer struct {
	buf  *Buffer
	sink Sink

	state stateFn
	// returnState is the character-reference "return_state" discipline of
	// spec.md §4.3.
	returnState stateFn
	// returnStateIsAttr is true when returnState resumes inside an
	// attribute value, so a resolved reference is appended to attrValue
	// instead of being emitted as character tokens.
	returnStateIsAttr bool
	// numericValue accumulates the digits of a numeric character reference
	// under construction.
	numericValue int64

	tok              token.Token
	lastStartTagName string

	// attrName and attrValue accumulate the current attribute name/value while in an
	// attribute state, reused across attributes like the token's Attr
	// slice is reused across tokens.
	attrName  strings.Builder
	attrValue strings.Builder

	// charRefBuf accumulates the text flushed as character tokens when a
	// character reference turns out not to resolve to anything usable
	// ("flush buffered code points as character tokens", spec.md §4.3).
	charRefBuf strings.Builder

	docName, docPublic, docSystem strings.Builder

	eofEmitted bool
}

// New creates a Tokenizer reading from buf and pushing tokens into sink.
func New(buf *Buffer, sink Sink) *Tokenizer {
	t := &Tokenizer{buf: buf, sink: sink}
	t.state = dataState
	return t
}

// SetContentModel switches the tokenizer's entry state, used by the tree
// constructor for <script>, <textarea>, <title>, <style>, fragment-parsing
// presets, and similar content models (spec.md §4.3, §4.5).
func (t *Tokenizer) SetContentModel(cm ContentModel) {
	switch cm {
	case RCDATAState:
		t.state = rcdataState
	case RAWTEXTState:
		t.state = rawtextState
	case ScriptDataState:
		t.state = scriptDataState
	case PlaintextState:
		t.state = plaintextState
	default:
		t.state = dataState
	}
}

// LastStartTagName returns the most recently emitted start tag's name, used
// by the RCDATA/RAWTEXT/script end-tag matching discipline.
func (t *Tokenizer) LastStartTagName() string { return t.lastStartTagName }

// SetLastStartTagName primes the "appropriate end tag" check without having
// tokenized a real start tag for it, used by fragment parsing (spec.md
// §4.5's presets): a fragment whose context element is e.g. <textarea>
// enters RCDATAState directly, and its first </textarea> must still be
// recognized as the matching close.
func (t *Tokenizer) SetLastStartTagName(name string) { t.lastStartTagName = name }

// Run drives the state machine to completion, i.e. until the EOF token has
// been emitted. Totality (spec.md §8): exactly one EOF token is emitted and
// nothing follows it.
func (t *Tokenizer) Run() {
	for !t.eofEmitted {
		t.state = t.state(t)
	}
}

func (t *Tokenizer) errorf(name string) {
	t.sink.ReportError(name)
}

func (t *Tokenizer) emit() {
	t.sink.ProcessToken(&t.tok)
	t.tok.Reset()
}

func (t *Tokenizer) emitEOF() {
	t.flushCharRefBuf()
	t.tok.Type = token.EOF
	t.eofEmitted = true
	t.emit()
}

func (t *Tokenizer) emitChar(r rune) {
	t.tok.Type = token.Character
	t.tok.Data = string(r)
	t.emit()
}

func (t *Tokenizer) emitCharString(s string) {
	if s == "" {
		return
	}
	t.tok.Type = token.Character
	t.tok.Data = s
	t.emit()
}

func (t *Tokenizer) startNewTag(isEnd bool) {
	t.tok.Type = token.StartTag
	if isEnd {
		t.tok.Type = token.EndTag
	}
	t.tok.TagName = ""
	t.tok.Attr = t.tok.Attr[:0]
	t.tok.SelfClosing = false
}

func (t *Tokenizer) appendTagName(r rune) {
	t.tok.TagName += string(lowerASCII(r))
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func (t *Tokenizer) beginAttribute() {
	t.attrName.Reset()
	t.attrValue.Reset()
}

func (t *Tokenizer) finishAttributeName() {
	name := t.attrName.String()
	for i := range t.tok.Attr {
		if t.tok.Attr[i].Name == name {
			t.errorf("duplicate-attribute")
			t.tok.Attr = append(t.tok.Attr, token.Attribute{Name: name, Omitted: true})
			return
		}
	}
	t.tok.Attr = append(t.tok.Attr, token.Attribute{Name: name})
}

func (t *Tokenizer) currentAttr() *token.Attribute {
	return &t.tok.Attr[len(t.tok.Attr)-1]
}

func (t *Tokenizer) finishAttributeValue() {
	t.currentAttr().Value = t.attrValue.String()
}

func (t *Tokenizer) finishTag() {
	if name, ok := atom.Tags.Lookup(t.tok.TagName); ok {
		t.tok.TagAtom = name
	} else {
		t.tok.TagAtom = atom.Unknown
	}
	if t.tok.Type == token.StartTag {
		t.lastStartTagName = t.tok.TagName
	}
	if t.tok.Type == token.EndTag && (len(t.tok.Attr) > 0 || t.tok.SelfClosing) {
		if len(t.tok.Attr) > 0 {
			t.errorf("end-tag-with-attributes")
		}
		if t.tok.SelfClosing {
			t.errorf("end-tag-with-trailing-solidus")
		}
	}
	t.emit()
}

func (t *Tokenizer) flushCharRefBuf() {
	if t.charRefBuf.Len() > 0 {
		t.emitCharString(t.charRefBuf.String())
		t.charRefBuf.Reset()
	}
}

func (t *Tokenizer) appendCharRefBuf(s string) {
	t.charRefBuf.WriteString(s)
}

// isAppropriateEndTag reports whether the currently-buffered end tag name
// matches the last emitted start tag name, per spec.md §4.3.
func (t *Tokenizer) isAppropriateEndTag() bool {
	return t.lastStartTagName != "" && t.tok.TagName == t.lastStartTagName
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIIAlnum(r rune) bool {
	return isASCIIAlpha(r) || isASCIIDigit(r)
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f':
		return true
	}
	return false
}
