package cssselect

import "fmt"

// SyntaxError reports a selector string that does not conform to spec.md
// §4.6's grammar, kept distinct from the parse errors construct.Constructor
// accumulates (SPEC_FULL.md §9): a bad selector is a caller mistake, not a
// malformed-document condition to recover from and continue past.
type SyntaxError struct {
	Selector string
	Reason   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cssselect: invalid selector %q: %s", e.Selector, e.Reason)
}

func syntaxErrorf(selector, format string, args ...any) *SyntaxError {
	return &SyntaxError{Selector: selector, Reason: fmt.Sprintf(format, args...)}
}
