package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// parseError is reported by Buffer and Tokenizer for non-fatal conditions
// (spec.md §7): the name is a stable, spec-defined identifier, and parsing
// always continues afterward.
type parseError struct {
	Name string
}

// ErrorSink receives parse errors as they're discovered. A nil sink is a
// valid no-op per spec.md §7 ("the parse itself never aborts on a parse
// error").
type ErrorSink func(name string)

const noRune = utf8.RuneError + 1 // sentinel distinct from the replacement char

// Buffer is the code-point input buffer of spec.md §4.1. It normalizes line
// endings and surfaces four primitives: current/next, consume, reconsume,
// and a bounded literal match, all operating purely on runes fed to it by
// Push (the decoder is external per spec.md §1).
type Buffer struct {
	runes []rune
	pos   int // index of the next unconsumed rune
	// last is the most recently consumed rune, restored by Reconsume.
	last    rune
	hasLast bool
	eof     bool
	onError ErrorSink

	// pendingCR defers a lone CR until the next Push call decides whether
	// it was part of a CRLF pair (spec.md §4.1's CR/CRLF/LF normalization).
	pendingCR bool
}

// NewBuffer creates an empty Buffer. Feed it code points with Push, and
// call SetEOF once the decoder signals end of stream.
func NewBuffer(onError ErrorSink) *Buffer {
	return &Buffer{onError: onError}
}

func (b *Buffer) reportError(name string) {
	if b.onError != nil {
		b.onError(name)
	}
}

// Push normalizes and appends one decoded code point: CR -> LF, CRLF ->
// single LF, lone LF passed through unchanged (spec.md §4.1).
func (b *Buffer) Push(r rune) {
	if b.pendingCR {
		b.pendingCR = false
		b.runes = append(b.runes, '\n')
		b.checkChar('\n')
		if r == '\n' {
			// The LF completing a CRLF pair was already folded in above.
			return
		}
	}
	if r == '\r' {
		b.pendingCR = true
		return
	}
	b.runes = append(b.runes, r)
	b.checkChar(r)
}

// checkChar applies the parse-error-but-still-emitted rules for surrogates,
// noncharacters, and disallowed ASCII controls (spec.md §4.1).
func (b *Buffer) checkChar(r rune) {
	switch {
	case r >= 0xD800 && r <= 0xDFFF:
		b.reportError("surrogate-in-input-stream")
	case isNoncharacter(r):
		b.reportError("noncharacter-in-input-stream")
	case r <= 0x1F && r != '\t' && r != '\n' && r != '\f' && r != ' ':
		b.reportError("control-character-in-input-stream")
	case r == 0x00:
		b.reportError("unexpected-null-character")
	}
}

func isNoncharacter(r rune) bool {
	if r >= 0xFDD0 && r <= 0xFDEF {
		return true
	}
	switch r & 0xFFFF {
	case 0xFFFE, 0xFFFF:
		return true
	}
	return false
}

// SetEOF signals that the decoder has no more code points. Any pending
// lone CR is flushed as a LF first.
func (b *Buffer) SetEOF() {
	if b.pendingCR {
		b.pendingCR = false
		b.runes = append(b.runes, '\n')
	}
	b.eof = true
}

// EOF reports whether the buffer is exhausted and the decoder has
// signaled end of stream.
func (b *Buffer) EOF() bool {
	return b.eof && b.pos >= len(b.runes)
}

// Current returns the most recently consumed rune. Valid only after a
// successful Consume.
func (b *Buffer) Current() rune {
	return b.last
}

// Next peeks at the next unconsumed rune without consuming it. ok is false
// at EOF.
func (b *Buffer) Next() (r rune, ok bool) {
	if b.pos >= len(b.runes) {
		return 0, false
	}
	return b.runes[b.pos], true
}

// PeekAt peeks n runes ahead of the cursor (0 is the same as Next).
func (b *Buffer) PeekAt(n int) (r rune, ok bool) {
	i := b.pos + n
	if i >= len(b.runes) {
		return 0, false
	}
	return b.runes[i], true
}

// Consume advances the cursor by one rune and returns it. ok is false
// whenever no buffered rune remains, whether or not EOF has been signaled;
// the tokenizer treats that as end of input and emits an EOF token.
func (b *Buffer) Consume() (r rune, ok bool) {
	if b.pos >= len(b.runes) {
		return 0, false
	}
	r = b.runes[b.pos]
	b.pos++
	b.last = r
	b.hasLast = true
	return r, true
}

// Reconsume ungets the last consumed rune, so the next Consume returns it
// again. It is the tokenizer's "reconsume in state X" primitive.
func (b *Buffer) Reconsume() {
	if b.pos > 0 {
		b.pos--
	}
}

// Match succeeds only if enough buffered runes exist to compare the whole
// literal (spec.md §4.1's match(literal, case-insensitive, peek)). When
// peek is false and the literal matches, the matched runes are consumed;
// otherwise the cursor is left untouched.
func (b *Buffer) Match(literal string, caseInsensitive, peek bool) bool {
	lit := []rune(literal)
	for i, want := range lit {
		got, ok := b.PeekAt(i)
		if !ok {
			return false
		}
		if got != want {
			if !caseInsensitive {
				return false
			}
			if foldRune(got) != foldRune(want) {
				return false
			}
		}
	}
	if !peek {
		b.pos += len(lit)
	}
	return true
}

// matchKeywordAfterFirst reports whether first (a rune already consumed by
// the caller) together with the following len(keyword)-1 buffered runes
// case-insensitively spell out keyword, consuming that suffix on success.
// Used for the DOCTYPE "PUBLIC"/"SYSTEM" keyword checks (spec.md §4.3),
// which begin mid-keyword because the caller already consumed one rune to
// decide it wasn't whitespace or '>'.
func (b *Buffer) matchKeywordAfterFirst(first rune, keyword string) bool {
	kw := []rune(keyword)
	if len(kw) == 0 || foldRune(first) != foldRune(kw[0]) {
		return false
	}
	for i := 1; i < len(kw); i++ {
		got, ok := b.PeekAt(i - 1)
		if !ok || foldRune(got) != foldRune(kw[i]) {
			return false
		}
	}
	b.pos += len(kw) - 1
	return true
}

// peekWindow returns up to n unconsumed runes ahead of the cursor without
// consuming them, used by named-character-reference lookup's longest-prefix
// match against a bounded lookahead.
func (b *Buffer) peekWindow(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		r, ok := b.PeekAt(i)
		if !ok {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func foldRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
