package cssselect

import "testing"

func tokenize1(t *testing.T, src string) []Token {
	t.Helper()
	toks := tokenize(src)
	if len(toks) == 0 || toks[len(toks)-1].Kind != EOFToken {
		t.Fatalf("tokenize(%q): missing trailing EOF token", src)
	}
	return toks[:len(toks)-1]
}

func TestTokenizeBasicSelector(t *testing.T) {
	toks := tokenize1(t, "div.cls#id[attr=\"v\"]")
	wantKinds := []TokenKind{
		IdentToken, DelimToken, IdentToken, HashToken,
		LBracketToken, IdentToken, DelimToken, StringToken, RBracketToken,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: got kind %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[0].Value != "div" {
		t.Errorf("tag ident: got %q", toks[0].Value)
	}
	if toks[2].Value != "cls" {
		t.Errorf("class ident: got %q", toks[2].Value)
	}
	if toks[3].Value != "id" || toks[3].IsID != true {
		t.Errorf("hash: got %+v", toks[3])
	}
}

func TestTokenizeWhitespaceCombinator(t *testing.T) {
	toks := tokenize1(t, "a  >  b")
	var kinds []TokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []TokenKind{IdentToken, WhitespaceToken, DelimToken, WhitespaceToken, IdentToken}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

// TestTokenizeFunctionAndNumbers also pins down a non-obvious CSS Syntax
// Level 3 tokenizing rule: a sign adjacent to digits with no whitespace
// between is folded into the number itself rather than staying a separate
// delimiter, so "2n+1" lexes as a dimension followed directly by a single
// signed number token, not three separate tokens.
func TestTokenizeFunctionAndNumbers(t *testing.T) {
	toks := tokenize1(t, ":nth-child(2n+1)")
	if toks[0].Kind != ColonToken {
		t.Fatalf("expected colon, got %v", toks[0].Kind)
	}
	if toks[1].Kind != FunctionToken || toks[1].Value != "nth-child" {
		t.Fatalf("expected function nth-child, got %+v", toks[1])
	}
	if toks[2].Kind != DimensionToken || toks[2].Number != 2 || toks[2].Value != "n" {
		t.Fatalf("expected dimension 2n, got %+v", toks[2])
	}
	if toks[3].Kind != NumberToken || toks[3].Number != 1 || !toks[3].IsInteger {
		t.Fatalf("expected integer +1 folded into one token, got %+v", toks[3])
	}
	if toks[4].Kind != RParenToken {
		t.Fatalf("expected ')', got %v", toks[4].Kind)
	}
}

func TestTokenizeString(t *testing.T) {
	toks := tokenize1(t, `"hello\20world"`)
	if len(toks) != 1 || toks[0].Kind != StringToken {
		t.Fatalf("got %+v", toks)
	}
	if toks[0].Value != "hello world" {
		t.Errorf("got %q, want %q", toks[0].Value, "hello world")
	}
}
