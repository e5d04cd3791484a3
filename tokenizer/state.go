package tokenizer

import (
	"strings"

	"github.com/tagtree/htmlkit/internal/charref"
	"github.com/tagtree/htmlkit/token"
)

// --- 13.2.5.1 Data state and siblings --------------------------------

func dataState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.emitEOF()
		return dataState
	}
	switch r {
	case '&':
		t.returnState = dataState
		t.returnStateIsAttr = false
		return characterReferenceState
	case '<':
		return tagOpenState
	case 0:
		t.errorf("unexpected-null-character")
		t.emitChar(r)
		return dataState
	default:
		t.emitChar(r)
		return dataState
	}
}

func rcdataState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.emitEOF()
		return rcdataState
	}
	switch r {
	case '&':
		t.returnState = rcdataState
		t.returnStateIsAttr = false
		return characterReferenceState
	case '<':
		return rcdataLessThanSignState
	case 0:
		t.errorf("unexpected-null-character")
		t.emitChar('�')
		return rcdataState
	default:
		t.emitChar(r)
		return rcdataState
	}
}

func rawtextState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.emitEOF()
		return rawtextState
	}
	switch r {
	case '<':
		return rawtextLessThanSignState
	case 0:
		t.errorf("unexpected-null-character")
		t.emitChar('�')
		return rawtextState
	default:
		t.emitChar(r)
		return rawtextState
	}
}

func scriptDataState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.emitEOF()
		return scriptDataState
	}
	switch r {
	case '<':
		return scriptDataLessThanSignState
	case 0:
		t.errorf("unexpected-null-character")
		t.emitChar('�')
		return scriptDataState
	default:
		t.emitChar(r)
		return scriptDataState
	}
}

func plaintextState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.emitEOF()
		return plaintextState
	}
	if r == 0 {
		t.errorf("unexpected-null-character")
		t.emitChar('�')
		return plaintextState
	}
	t.emitChar(r)
	return plaintextState
}

// --- Tag open family --------------------------------------------------

func tagOpenState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-before-tag-name")
		t.emitChar('<')
		t.emitEOF()
		return tagOpenState
	}
	switch {
	case r == '!':
		return markupDeclarationOpenState
	case r == '/':
		return endTagOpenState
	case isASCIIAlpha(r):
		t.buf.Reconsume()
		t.startNewTag(false)
		return tagNameState
	case r == '?':
		t.errorf("unexpected-question-mark-instead-of-tag-name")
		t.buf.Reconsume()
		t.tok.Type = token.Comment
		t.tok.Data = ""
		return bogusCommentState
	default:
		t.errorf("invalid-first-character-of-tag-name")
		t.emitChar('<')
		t.buf.Reconsume()
		return dataState
	}
}

func endTagOpenState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-before-tag-name")
		t.emitCharString("</")
		t.emitEOF()
		return endTagOpenState
	}
	switch {
	case isASCIIAlpha(r):
		t.buf.Reconsume()
		t.startNewTag(true)
		return tagNameState
	case r == '>':
		t.errorf("missing-end-tag-name")
		return dataState
	default:
		t.errorf("invalid-first-character-of-tag-name")
		t.buf.Reconsume()
		t.tok.Type = token.Comment
		t.tok.Data = ""
		return bogusCommentState
	}
}

func tagNameState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-tag")
			t.emitEOF()
			return tagNameState
		}
		switch {
		case isWhitespace(r):
			return beforeAttributeNameState
		case r == '/':
			return selfClosingStartTagState
		case r == '>':
			t.finishTag()
			return dataState
		case r == 0:
			t.errorf("unexpected-null-character")
			t.tok.TagName += "�"
		default:
			t.appendTagName(r)
		}
	}
}

// --- RCDATA/RAWTEXT/script-data end tag handling ----------------------

func rcdataLessThanSignState(t *Tokenizer) stateFn {
	return genericLessThanSignState(t, rcdataState, rcdataEndTagOpenState)
}
func rawtextLessThanSignState(t *Tokenizer) stateFn {
	return genericLessThanSignState(t, rawtextState, rawtextEndTagOpenState)
}
func scriptDataLessThanSignState(t *Tokenizer) stateFn {
	r, ok := t.buf.Next()
	if ok && r == '!' {
		t.buf.Consume()
		t.emitCharString("<!")
		return scriptDataState // simplified: no separate escaped-state machinery
	}
	return genericLessThanSignState(t, scriptDataState, scriptDataEndTagOpenState)
}

func genericLessThanSignState(t *Tokenizer, fallback, endTagOpen stateFn) stateFn {
	r, ok := t.buf.Next()
	if ok && r == '/' {
		t.buf.Consume()
		return endTagOpen
	}
	t.emitChar('<')
	return fallback
}

func rcdataEndTagOpenState(t *Tokenizer) stateFn {
	return genericEndTagOpenState(t, rcdataState, rcdataEndTagNameState)
}
func rawtextEndTagOpenState(t *Tokenizer) stateFn {
	return genericEndTagOpenState(t, rawtextState, rawtextEndTagNameState)
}
func scriptDataEndTagOpenState(t *Tokenizer) stateFn {
	return genericEndTagOpenState(t, scriptDataState, scriptDataEndTagNameState)
}

func genericEndTagOpenState(t *Tokenizer, fallback, endTagName stateFn) stateFn {
	r, ok := t.buf.Next()
	if ok && isASCIIAlpha(r) {
		t.startNewTag(true)
		return endTagName
	}
	t.emitCharString("</")
	return fallback
}

func rcdataEndTagNameState(t *Tokenizer) stateFn {
	return genericEndTagNameState(t, rcdataState)
}
func rawtextEndTagNameState(t *Tokenizer) stateFn {
	return genericEndTagNameState(t, rawtextState)
}
func scriptDataEndTagNameState(t *Tokenizer) stateFn {
	return genericEndTagNameState(t, scriptDataState)
}

// genericEndTagNameState implements the "is appropriate end tag" guard
// shared by RCDATA/RAWTEXT/script-data end-tag-name states: if the
// accumulated name doesn't match the last start tag, the whole thing is
// reinterpreted as ordinary text (spec.md §4.3's last-start-tag-name
// discipline).
func genericEndTagNameState(t *Tokenizer, fallback stateFn) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.emitCharString("</" + t.tok.TagName)
		t.tok = token.Token{}
		return fallback
	}
	switch {
	case isWhitespace(r) && t.isAppropriateEndTag():
		return beforeAttributeNameState
	case r == '/' && t.isAppropriateEndTag():
		return selfClosingStartTagState
	case r == '>' && t.isAppropriateEndTag():
		t.finishTag()
		return dataState
	case isASCIIAlpha(r):
		t.appendTagName(r)
		return curryEndTagName(fallback)
	default:
		t.emitCharString("</" + t.tok.TagName)
		t.buf.Reconsume()
		t.tok = token.Token{}
		return fallback
	}
}

func curryEndTagName(fallback stateFn) stateFn {
	return func(t *Tokenizer) stateFn {
		return genericEndTagNameState(t, fallback)
	}
}

// --- Attributes ---------------------------------------------------------

func beforeAttributeNameState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		return afterAttributeNameStateEOF(t)
	}
	switch {
	case isWhitespace(r):
		return beforeAttributeNameState
	case r == '/' || r == '>':
		t.buf.Reconsume()
		return afterAttributeNameState
	case r == '=':
		t.errorf("unexpected-equals-sign-before-attribute-name")
		t.beginAttribute()
		t.attrName.WriteRune(r)
		return attributeNameState
	default:
		t.buf.Reconsume()
		t.beginAttribute()
		return attributeNameState
	}
}

func afterAttributeNameStateEOF(t *Tokenizer) stateFn {
	t.errorf("eof-in-tag")
	t.emitEOF()
	return beforeAttributeNameState
}

func attributeNameState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.finishAttributeName()
			return afterAttributeNameStateEOF(t)
		}
		switch {
		case isWhitespace(r) || r == '/' || r == '>':
			t.finishAttributeName()
			t.buf.Reconsume()
			return afterAttributeNameState
		case r == '=':
			t.finishAttributeName()
			return beforeAttributeValueState
		case r == 0:
			t.errorf("unexpected-null-character")
			t.attrName.WriteRune('�')
		case r == '"' || r == '\'' || r == '<':
			t.errorf("unexpected-character-in-attribute-name")
			t.attrName.WriteRune(lowerASCII(r))
		default:
			t.attrName.WriteRune(lowerASCII(r))
		}
	}
}

func afterAttributeNameState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		return afterAttributeNameStateEOF(t)
	}
	switch {
	case isWhitespace(r):
		return afterAttributeNameState
	case r == '/':
		return selfClosingStartTagState
	case r == '=':
		return beforeAttributeValueState
	case r == '>':
		t.finishTag()
		return dataState
	default:
		t.buf.Reconsume()
		t.beginAttribute()
		return attributeNameState
	}
}

func beforeAttributeValueState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.buf.Reconsume()
		return attributeValueUnquotedState
	}
	switch {
	case isWhitespace(r):
		return beforeAttributeValueState
	case r == '"':
		return attributeValueDoubleQuotedState
	case r == '\'':
		return attributeValueSingleQuotedState
	case r == '>':
		t.errorf("missing-attribute-value")
		t.finishTag()
		return dataState
	default:
		t.buf.Reconsume()
		return attributeValueUnquotedState
	}
}

func attributeValueDoubleQuotedState(t *Tokenizer) stateFn {
	return attributeValueQuotedState(t, '"')
}
func attributeValueSingleQuotedState(t *Tokenizer) stateFn {
	return attributeValueQuotedState(t, '\'')
}

func attributeValueQuotedState(t *Tokenizer, quote rune) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-tag")
			t.finishAttributeValue()
			t.emitEOF()
			return dataState
		}
		switch {
		case r == quote:
			t.finishAttributeValue()
			return afterAttributeValueQuotedState
		case r == '&':
			t.returnState = curryQuotedAttrRef(quote)
			t.returnStateIsAttr = true
			return characterReferenceState
		case r == 0:
			t.errorf("unexpected-null-character")
			t.attrValue.WriteRune('�')
		default:
			t.attrValue.WriteRune(r)
		}
	}
}

func curryQuotedAttrRef(quote rune) stateFn {
	return func(t *Tokenizer) stateFn { return attributeValueQuotedState(t, quote) }
}

func attributeValueUnquotedState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-tag")
			t.finishAttributeValue()
			t.emitEOF()
			return dataState
		}
		switch {
		case isWhitespace(r):
			t.finishAttributeValue()
			return beforeAttributeNameState
		case r == '&':
			t.returnState = attributeValueUnquotedState
			t.returnStateIsAttr = true
			return characterReferenceState
		case r == '>':
			t.finishAttributeValue()
			t.finishTag()
			return dataState
		case r == 0:
			t.errorf("unexpected-null-character")
			t.attrValue.WriteRune('�')
		case r == '"' || r == '\'' || r == '<' || r == '=' || r == '`':
			t.errorf("unexpected-character-in-unquoted-attribute-value")
			t.attrValue.WriteRune(r)
		default:
			t.attrValue.WriteRune(r)
		}
	}
}

func afterAttributeValueQuotedState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-tag")
		t.emitEOF()
		return afterAttributeValueQuotedState
	}
	switch {
	case isWhitespace(r):
		return beforeAttributeNameState
	case r == '/':
		return selfClosingStartTagState
	case r == '>':
		t.finishTag()
		return dataState
	default:
		t.errorf("missing-whitespace-between-attributes")
		t.buf.Reconsume()
		return beforeAttributeNameState
	}
}

func selfClosingStartTagState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-tag")
		t.emitEOF()
		return selfClosingStartTagState
	}
	if r == '>' {
		t.tok.SelfClosing = true
		t.finishTag()
		return dataState
	}
	t.errorf("unexpected-solidus-in-tag")
	t.buf.Reconsume()
	return beforeAttributeNameState
}

// --- Comments -------------------------------------------------------

func markupDeclarationOpenState(t *Tokenizer) stateFn {
	if t.buf.Match("--", false, false) {
		t.tok.Type = token.Comment
		t.tok.Data = ""
		return commentStartState
	}
	if t.buf.Match("DOCTYPE", true, false) {
		return doctypeState
	}
	if t.buf.Match("[CDATA[", false, false) {
		// The tokenizer does not track foreign content: the section's text
		// is emitted as character tokens wherever it appears, and no bogus
		// comment is produced for it.
		return cdataSectionState
	}
	t.errorf("incorrectly-opened-comment")
	t.tok.Type = token.Comment
	t.tok.Data = ""
	return bogusCommentState
}

func bogusCommentState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.emit()
			t.emitEOF()
			return bogusCommentState
		}
		switch r {
		case '>':
			t.emit()
			return dataState
		case 0:
			t.tok.Data += "�"
		default:
			t.tok.Data += string(r)
		}
	}
}

func commentStartState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.buf.Reconsume()
		return commentState
	}
	switch r {
	case '-':
		return commentStartDashState
	case '>':
		t.errorf("abrupt-closing-of-empty-comment")
		t.emit()
		return dataState
	default:
		t.buf.Reconsume()
		return commentState
	}
}

func commentStartDashState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-comment")
		t.emit()
		t.emitEOF()
		return commentStartDashState
	}
	switch r {
	case '-':
		return commentEndState
	case '>':
		t.errorf("abrupt-closing-of-empty-comment")
		t.emit()
		return dataState
	default:
		t.tok.Data += "-"
		t.buf.Reconsume()
		return commentState
	}
}

func commentState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-comment")
			t.emit()
			t.emitEOF()
			return commentState
		}
		switch r {
		case '<':
			t.tok.Data += "<"
			return commentLessThanSignState
		case '-':
			return commentEndDashState
		case 0:
			t.errorf("unexpected-null-character")
			t.tok.Data += "�"
		default:
			t.tok.Data += string(r)
		}
	}
}

func commentLessThanSignState(t *Tokenizer) stateFn {
	r, ok := t.buf.Next()
	if ok && r == '!' {
		t.buf.Consume()
		t.tok.Data += "!"
		return commentLessThanSignBangState
	}
	if ok && r == '<' {
		t.buf.Consume()
		t.tok.Data += "<"
		return commentLessThanSignState
	}
	return commentState
}

func commentLessThanSignBangState(t *Tokenizer) stateFn {
	r, ok := t.buf.Next()
	if ok && r == '-' {
		t.buf.Consume()
		return commentLessThanSignBangDashState
	}
	return commentState
}

func commentLessThanSignBangDashState(t *Tokenizer) stateFn {
	r, ok := t.buf.Next()
	if ok && r == '-' {
		t.buf.Consume()
		return commentEndState
	}
	return commentEndDashState
}

func commentEndDashState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-comment")
		t.emit()
		t.emitEOF()
		return commentEndDashState
	}
	if r == '-' {
		return commentEndState
	}
	t.tok.Data += "-"
	t.buf.Reconsume()
	return commentState
}

func commentEndState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-comment")
		t.emit()
		t.emitEOF()
		return commentEndState
	}
	switch r {
	case '>':
		t.emit()
		return dataState
	case '!':
		return commentEndBangState
	case '-':
		t.tok.Data += "-"
		return commentEndState
	default:
		t.tok.Data += "--"
		t.buf.Reconsume()
		return commentState
	}
}

func commentEndBangState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-comment")
		t.emit()
		t.emitEOF()
		return commentEndBangState
	}
	switch r {
	case '-':
		t.tok.Data += "--!"
		return commentEndDashState
	case '>':
		t.errorf("incorrectly-closed-comment")
		t.emit()
		return dataState
	default:
		t.tok.Data += "--!"
		t.buf.Reconsume()
		return commentState
	}
}

// --- DOCTYPE ----------------------------------------------------------

func doctypeState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.emitForceQuirksDoctype()
		t.emitEOF()
		return doctypeState
	}
	if isWhitespace(r) {
		return beforeDoctypeNameState
	}
	t.errorf("missing-whitespace-before-doctype-name")
	t.buf.Reconsume()
	return beforeDoctypeNameState
}

func (t *Tokenizer) emitForceQuirksDoctype() {
	t.tok.Type = token.Doctype
	t.tok.ForceQuirks = true
	t.emit()
}

func beforeDoctypeNameState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.emitForceQuirksDoctype()
		t.emitEOF()
		return beforeDoctypeNameState
	}
	switch {
	case isWhitespace(r):
		return beforeDoctypeNameState
	case r == 0:
		t.errorf("unexpected-null-character")
		t.docName.Reset()
		t.docName.WriteRune('�')
		return doctypeNameState
	case r == '>':
		t.errorf("missing-doctype-name")
		t.docName.Reset()
		t.emitForceQuirksDoctype()
		return dataState
	default:
		t.docName.Reset()
		t.docName.WriteRune(lowerASCII(r))
		return doctypeNameState
	}
}

func doctypeNameState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-doctype")
			t.finishDoctypeUpTo(true, false, false)
			t.emitEOF()
			return doctypeNameState
		}
		switch {
		case isWhitespace(r):
			return afterDoctypeNameState
		case r == '>':
			t.finishDoctypeUpTo(false, false, false)
			return dataState
		case r == 0:
			t.errorf("unexpected-null-character")
			t.docName.WriteRune('�')
		default:
			t.docName.WriteRune(lowerASCII(r))
		}
	}
}

func (t *Tokenizer) finishDoctypeUpTo(forceQuirks, hasPublic, hasSystem bool) {
	t.tok.Type = token.Doctype
	t.tok.Name = t.docName.String()
	t.tok.ForceQuirks = forceQuirks
	t.tok.HasPublicID = hasPublic
	t.tok.HasSystemID = hasSystem
	if hasPublic {
		t.tok.PublicID = t.docPublic.String()
	}
	if hasSystem {
		t.tok.SystemID = t.docSystem.String()
	}
	t.emit()
	t.docName.Reset()
	t.docPublic.Reset()
	t.docSystem.Reset()
}

func afterDoctypeNameState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, false, false)
		t.emitEOF()
		return afterDoctypeNameState
	}
	switch {
	case isWhitespace(r):
		return afterDoctypeNameState
	case r == '>':
		t.finishDoctypeUpTo(false, false, false)
		return dataState
	case t.buf.matchKeywordAfterFirst(r, "public"):
		return afterDoctypePublicKeywordState
	case t.buf.matchKeywordAfterFirst(r, "system"):
		return afterDoctypeSystemKeywordState
	default:
		t.errorf("invalid-character-sequence-after-doctype-name")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func afterDoctypePublicKeywordState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, false, false)
		t.emitEOF()
		return afterDoctypePublicKeywordState
	}
	switch {
	case isWhitespace(r):
		return beforeDoctypePublicIdentifierState
	case r == '"':
		t.errorf("missing-whitespace-after-doctype-public-keyword")
		t.docPublic.Reset()
		return doctypePublicIdentifierQuotedState(t, '"')
	case r == '\'':
		t.errorf("missing-whitespace-after-doctype-public-keyword")
		t.docPublic.Reset()
		return doctypePublicIdentifierQuotedState(t, '\'')
	case r == '>':
		t.errorf("missing-doctype-public-identifier")
		t.finishDoctypeUpTo(true, false, false)
		return dataState
	default:
		t.errorf("missing-quote-before-doctype-public-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func beforeDoctypePublicIdentifierState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, false, false)
		t.emitEOF()
		return beforeDoctypePublicIdentifierState
	}
	switch {
	case isWhitespace(r):
		return beforeDoctypePublicIdentifierState
	case r == '"':
		t.docPublic.Reset()
		return doctypePublicIdentifierQuotedState(t, '"')
	case r == '\'':
		t.docPublic.Reset()
		return doctypePublicIdentifierQuotedState(t, '\'')
	case r == '>':
		t.errorf("missing-doctype-public-identifier")
		t.finishDoctypeUpTo(true, false, false)
		return dataState
	default:
		t.errorf("missing-quote-before-doctype-public-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func doctypePublicIdentifierQuotedState(t *Tokenizer, quote rune) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-doctype")
			t.finishDoctypeUpTo(true, true, false)
			t.emitEOF()
			return dataState
		}
		switch {
		case r == quote:
			return afterDoctypePublicIdentifierState
		case r == 0:
			t.docPublic.WriteRune('�')
		case r == '>':
			t.errorf("abrupt-doctype-public-identifier")
			t.finishDoctypeUpTo(true, true, false)
			return dataState
		default:
			t.docPublic.WriteRune(r)
		}
	}
}

func afterDoctypePublicIdentifierState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, true, false)
		t.emitEOF()
		return afterDoctypePublicIdentifierState
	}
	switch {
	case isWhitespace(r):
		return betweenDoctypePublicAndSystemIdentifiersState
	case r == '>':
		t.finishDoctypeUpTo(false, true, false)
		return dataState
	case r == '"':
		t.errorf("missing-whitespace-between-doctype-public-and-system-identifiers")
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '"')
	case r == '\'':
		t.errorf("missing-whitespace-between-doctype-public-and-system-identifiers")
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '\'')
	default:
		t.errorf("missing-quote-before-doctype-system-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func betweenDoctypePublicAndSystemIdentifiersState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, true, false)
		t.emitEOF()
		return betweenDoctypePublicAndSystemIdentifiersState
	}
	switch {
	case isWhitespace(r):
		return betweenDoctypePublicAndSystemIdentifiersState
	case r == '>':
		t.finishDoctypeUpTo(false, true, false)
		return dataState
	case r == '"':
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '"')
	case r == '\'':
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '\'')
	default:
		t.errorf("missing-quote-before-doctype-system-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func afterDoctypeSystemKeywordState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, false, false)
		t.emitEOF()
		return afterDoctypeSystemKeywordState
	}
	switch {
	case isWhitespace(r):
		return beforeDoctypeSystemIdentifierState
	case r == '"':
		t.errorf("missing-whitespace-after-doctype-system-keyword")
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '"')
	case r == '\'':
		t.errorf("missing-whitespace-after-doctype-system-keyword")
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '\'')
	case r == '>':
		t.errorf("missing-doctype-system-identifier")
		t.finishDoctypeUpTo(true, false, false)
		return dataState
	default:
		t.errorf("missing-quote-before-doctype-system-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func beforeDoctypeSystemIdentifierState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, false, false)
		t.emitEOF()
		return beforeDoctypeSystemIdentifierState
	}
	switch {
	case isWhitespace(r):
		return beforeDoctypeSystemIdentifierState
	case r == '"':
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '"')
	case r == '\'':
		t.docSystem.Reset()
		return doctypeSystemIdentifierQuotedState(t, '\'')
	case r == '>':
		t.errorf("missing-doctype-system-identifier")
		t.finishDoctypeUpTo(true, false, false)
		return dataState
	default:
		t.errorf("missing-quote-before-doctype-system-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func doctypeSystemIdentifierQuotedState(t *Tokenizer, quote rune) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-doctype")
			t.finishDoctypeUpTo(true, false, true)
			t.emitEOF()
			return dataState
		}
		switch {
		case r == quote:
			return afterDoctypeSystemIdentifierState
		case r == 0:
			t.docSystem.WriteRune('�')
		case r == '>':
			t.errorf("abrupt-doctype-system-identifier")
			t.finishDoctypeUpTo(true, false, true)
			return dataState
		default:
			t.docSystem.WriteRune(r)
		}
	}
}

func afterDoctypeSystemIdentifierState(t *Tokenizer) stateFn {
	r, ok := t.buf.Consume()
	if !ok {
		t.errorf("eof-in-doctype")
		t.finishDoctypeUpTo(true, false, true)
		t.emitEOF()
		return afterDoctypeSystemIdentifierState
	}
	switch {
	case isWhitespace(r):
		return afterDoctypeSystemIdentifierState
	case r == '>':
		t.finishDoctypeUpTo(false, false, true)
		return dataState
	default:
		t.errorf("unexpected-character-after-doctype-system-identifier")
		t.buf.Reconsume()
		return bogusDoctypeState
	}
}

func bogusDoctypeState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.finishDoctypeUpTo(true, false, false)
			t.emitEOF()
			return bogusDoctypeState
		}
		if r == '>' {
			t.finishDoctypeUpTo(false, false, false)
			return dataState
		}
	}
}

// --- CDATA (emitted as character tokens in every context) ------------

func cdataSectionState(t *Tokenizer) stateFn {
	var data strings.Builder
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("eof-in-cdata")
			t.emitCharString(data.String())
			t.emitEOF()
			return cdataSectionState
		}
		if r == ']' && t.buf.Match("]>", false, true) {
			t.buf.Match("]>", false, false)
			t.emitCharString(data.String())
			return dataState
		}
		data.WriteRune(r)
	}
}

// --- Character references (spec.md §4.2) -----------------------------

func characterReferenceState(t *Tokenizer) stateFn {
	t.appendCharRefBuf("&")
	r, ok := t.buf.Next()
	if ok && isASCIIAlnum(r) {
		return namedCharacterReferenceState
	}
	if ok && r == '#' {
		t.buf.Consume()
		t.appendCharRefBuf("#")
		return numericCharacterReferenceState
	}
	return flushCharRef(t)
}

func namedCharacterReferenceState(t *Tokenizer) stateFn {
	window := t.buf.peekWindow(32)
	res := charref.Lookup(window)
	if !res.Matched {
		return ambiguousAmpersandState
	}
	matched := window[:res.Length]
	// Consume exactly the matched runes.
	for range []rune(matched) {
		t.buf.Consume()
	}
	if !res.EndsWithSemicolon {
		t.errorf("missing-semicolon-after-character-reference")
		if nxt, ok := t.buf.Next(); ok && (nxt == '=' || isASCIIAlnum(nxt)) && t.inAttributeContext() {
			t.appendCharRefBuf(matched)
			return flushCharRef(t)
		}
	}
	t.charRefBuf.Reset()
	for _, cp := range res.Codepoints {
		t.appendCharRefBuf(string(cp))
	}
	return flushCharRef(t)
}

func ambiguousAmpersandState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Next()
		if !ok || !isASCIIAlnum(r) {
			break
		}
		t.buf.Consume()
		t.appendCharRefBuf(string(r))
	}
	if r, ok := t.buf.Next(); ok && r == ';' {
		t.errorf("unknown-named-character-reference")
	}
	return flushCharRef(t)
}

func numericCharacterReferenceState(t *Tokenizer) stateFn {
	t.numericValue = 0
	r, ok := t.buf.Next()
	if ok && (r == 'x' || r == 'X') {
		t.buf.Consume()
		t.appendCharRefBuf(string(r))
		return hexadecimalCharacterReferenceStartState
	}
	return decimalCharacterReferenceStartState
}

func hexadecimalCharacterReferenceStartState(t *Tokenizer) stateFn {
	r, ok := t.buf.Next()
	if !ok || !isHexDigit(r) {
		t.errorf("absence-of-digits-in-numeric-character-reference")
		return flushCharRef(t)
	}
	return hexadecimalCharacterReferenceState
}

func decimalCharacterReferenceStartState(t *Tokenizer) stateFn {
	r, ok := t.buf.Next()
	if !ok || !isASCIIDigit(r) {
		t.errorf("absence-of-digits-in-numeric-character-reference")
		return flushCharRef(t)
	}
	return decimalCharacterReferenceState
}

func hexadecimalCharacterReferenceState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("missing-semicolon-after-character-reference")
			return numericCharacterReferenceEndState
		}
		switch {
		case isHexDigit(r):
			t.numericValue = t.numericValue*16 + hexVal(r)
		case r == ';':
			return numericCharacterReferenceEndState
		default:
			t.errorf("missing-semicolon-after-character-reference")
			t.buf.Reconsume()
			return numericCharacterReferenceEndState
		}
	}
}

func decimalCharacterReferenceState(t *Tokenizer) stateFn {
	for {
		r, ok := t.buf.Consume()
		if !ok {
			t.errorf("missing-semicolon-after-character-reference")
			return numericCharacterReferenceEndState
		}
		switch {
		case isASCIIDigit(r):
			t.numericValue = t.numericValue*10 + int64(r-'0')
		case r == ';':
			return numericCharacterReferenceEndState
		default:
			t.errorf("missing-semicolon-after-character-reference")
			t.buf.Reconsume()
			return numericCharacterReferenceEndState
		}
	}
}

var c1ControlReplacements = map[int64]rune{
	0x80: '€', 0x82: '‚', 0x83: 'ƒ', 0x84: '„',
	0x85: '…', 0x86: '†', 0x87: '‡', 0x88: 'ˆ',
	0x89: '‰', 0x8A: 'Š', 0x8B: '‹', 0x8C: 'Œ',
	0x8E: 'Ž', 0x91: '‘', 0x92: '’', 0x93: '“',
	0x94: '”', 0x95: '•', 0x96: '–', 0x97: '—',
	0x98: '˜', 0x99: '™', 0x9A: 'š', 0x9B: '›',
	0x9C: 'œ', 0x9E: 'ž', 0x9F: 'Ÿ',
}

func numericCharacterReferenceEndState(t *Tokenizer) stateFn {
	v := t.numericValue
	var out rune
	switch {
	case v == 0:
		t.errorf("null-character-reference")
		out = '�'
	case v > 0x10FFFF:
		t.errorf("character-reference-outside-unicode-range")
		out = '�'
	case v >= 0xD800 && v <= 0xDFFF:
		t.errorf("surrogate-character-reference")
		out = '�'
	case v >= 0x80 && v <= 0x9F:
		if rep, ok := c1ControlReplacements[v]; ok {
			t.errorf("control-character-reference")
			out = rep
		} else {
			out = rune(v)
		}
	default:
		out = rune(v)
	}
	t.charRefBuf.Reset()
	t.appendCharRefBuf(string(out))
	return flushCharRef(t)
}

func isHexDigit(r rune) bool {
	return isASCIIDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(r rune) int64 {
	switch {
	case r >= '0' && r <= '9':
		return int64(r - '0')
	case r >= 'a' && r <= 'f':
		return int64(r-'a') + 10
	default:
		return int64(r-'A') + 10
	}
}

// flushCharRef delivers the accumulated character-reference text either
// into the current attribute value (if the return state writes to one) or
// as character tokens, then resumes the return state.
func flushCharRef(t *Tokenizer) stateFn {
	data := t.charRefBuf.String()
	t.charRefBuf.Reset()
	if t.inAttributeContext() {
		t.attrValue.WriteString(data)
	} else {
		t.emitCharString(data)
	}
	rs := t.returnState
	t.returnState = nil
	return rs
}

// inAttributeContext reports whether the current returnState writes into an
// attribute value rather than emitting character tokens directly.
func (t *Tokenizer) inAttributeContext() bool {
	return t.returnStateIsAttr
}
