package cssselect

import (
	"strings"
	"testing"

	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/htmlparse"
)

func parseTree(t *testing.T, src string) (*domtree.Tree, domtree.Ref) {
	t.Helper()
	res, err := htmlparse.ParseDocument(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return res.Tree, res.Doc
}

func textOf(tree *domtree.Tree, ref domtree.Ref) string {
	end := tree.EndTag(ref)
	var sb strings.Builder
	for r := ref; r != end; r = tree.SerialNext(r) {
		if n := tree.Value(r); n.Kind == domtree.Text {
			sb.WriteString(n.Data)
		}
	}
	return sb.String()
}

// TestQueryAllDocumentOrder exercises spec.md §8's named "selector match"
// scenario: query_selector_all(root, "p") on
// <p>text1</p><p>text2</p> must return the two <p> elements in document
// order.
func TestQueryAllDocumentOrder(t *testing.T) {
	tree, doc := parseTree(t, "<p>text1</p><p>text2</p>")

	matches, err := QueryAll(tree, doc, "p", Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if got := textOf(tree, matches[0]); got != "text1" {
		t.Errorf("matches[0]: got %q, want %q", got, "text1")
	}
	if got := textOf(tree, matches[1]); got != "text2" {
		t.Errorf("matches[1]: got %q, want %q", got, "text2")
	}
}

func TestQueryClassAndID(t *testing.T) {
	tree, doc := parseTree(t, `<div id="main"><span class="a b">one</span><span class="b">two</span></div>`)

	ref, ok, err := Query(tree, doc, "#main", Context{})
	if err != nil || !ok {
		t.Fatalf("Query(#main): ok=%v err=%v", ok, err)
	}
	if tree.Value(ref).TagName() != "div" {
		t.Fatalf("got %s", tree.Value(ref).TagName())
	}

	matches, err := QueryAll(tree, doc, ".b", Context{})
	if err != nil {
		t.Fatalf("QueryAll(.b): %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	matches, err = QueryAll(tree, doc, ".a.b", Context{})
	if err != nil {
		t.Fatalf("QueryAll(.a.b): %v", err)
	}
	if len(matches) != 1 || textOf(tree, matches[0]) != "one" {
		t.Fatalf("got %v", matches)
	}
}

func TestQueryAttributeSelectors(t *testing.T) {
	tree, doc := parseTree(t, `<a href="https://example.com/path">x</a><a href="mailto:y">y</a>`)

	matches, err := QueryAll(tree, doc, `a[href^="https://"]`, Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 1 || textOf(tree, matches[0]) != "x" {
		t.Fatalf("got %v", matches)
	}

	matches, err = QueryAll(tree, doc, `a[href]`, Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestQueryCombinators(t *testing.T) {
	tree, doc := parseTree(t, `<ul><li>one</li><li>two</li><li>three</li></ul>`)

	matches, err := QueryAll(tree, doc, "ul > li", Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	matches, err = QueryAll(tree, doc, "li + li", Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if textOf(tree, matches[0]) != "two" || textOf(tree, matches[1]) != "three" {
		t.Fatalf("got texts %q, %q", textOf(tree, matches[0]), textOf(tree, matches[1]))
	}
}

func TestQueryNthChild(t *testing.T) {
	tree, doc := parseTree(t, `<ul><li>one</li><li>two</li><li>three</li><li>four</li></ul>`)

	matches, err := QueryAll(tree, doc, "li:nth-child(odd)", Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 2 || textOf(tree, matches[0]) != "one" || textOf(tree, matches[1]) != "three" {
		t.Fatalf("got %v", matches)
	}

	ref, ok, err := Query(tree, doc, "li:last-child", Context{})
	if err != nil || !ok {
		t.Fatalf("Query(:last-child): ok=%v err=%v", ok, err)
	}
	if textOf(tree, ref) != "four" {
		t.Fatalf("got %q", textOf(tree, ref))
	}
}

func TestQueryNot(t *testing.T) {
	tree, doc := parseTree(t, `<ul><li class="skip">one</li><li>two</li></ul>`)

	matches, err := QueryAll(tree, doc, "li:not(.skip)", Context{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(matches) != 1 || textOf(tree, matches[0]) != "two" {
		t.Fatalf("got %v", matches)
	}
}

func TestMatchesRoot(t *testing.T) {
	tree, doc := parseTree(t, `<p>hi</p>`)

	htmlRef := tree.FirstChild(doc)
	for tree.Value(htmlRef).Kind != domtree.Element {
		htmlRef = tree.Next(htmlRef)
	}

	list, err := ParseSelector(":root")
	if err != nil {
		t.Fatalf("ParseSelector: %v", err)
	}
	if !Matches(tree, htmlRef, list, Context{}) {
		t.Fatalf("expected <html> to match :root")
	}

	ref, ok, err := Query(tree, doc, "p", Context{})
	if err != nil || !ok {
		t.Fatalf("Query(p): ok=%v err=%v", ok, err)
	}
	if Matches(tree, ref, list, Context{}) {
		t.Fatalf("<p> must not match :root")
	}
}
