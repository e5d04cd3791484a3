package htmlparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/construct"
	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/token"
)

func childByTag(t *domtree.Tree, parent domtree.Ref, a atom.Atom) (domtree.Ref, bool) {
	end := t.ChildrenEnd(parent)
	for r := t.FirstChild(parent); r != end; r = t.Next(r) {
		if n := t.Value(r); n.Kind == domtree.Element && n.Local == a {
			return r, true
		}
	}
	return 0, false
}

func textContent(t *domtree.Tree, ref domtree.Ref) string {
	end := t.EndTag(ref)
	var out string
	for r := ref; r != end; r = t.SerialNext(r) {
		if n := t.Value(r); n.Kind == domtree.Text {
			out += n.Data
		}
	}
	return out
}

func TestParseDocumentBuildsTree(t *testing.T) {
	res, err := ParseDocument(strings.NewReader(`<!DOCTYPE html><html><head><title>Hi</title></head><body><p>Hello</p></body></html>`))
	require.NoError(t, err)

	htmlRef, ok := childByTag(res.Tree, res.Doc, atom.Html)
	require.True(t, ok)
	bodyRef, ok := childByTag(res.Tree, htmlRef, atom.Body)
	require.True(t, ok)
	pRef, ok := childByTag(res.Tree, bodyRef, atom.P)
	require.True(t, ok)
	assert.Equal(t, "Hello", textContent(res.Tree, pRef))
}

// TestMetaCharsetTriggersEncodingRestart exercises spec.md §8's named
// scenario: a document whose <meta charset> names a different encoding
// than the initial guess must come out decoded with the declared
// encoding, whether that's resolved by the BOM/meta prescan up front or
// by metaCharsetSink's own in-parse restart signal.
func TestMetaCharsetTriggersEncodingRestart(t *testing.T) {
	// windows-1252 encodes 'é' (U+00E9) as the single byte 0xE9; UTF-8
	// would instead see that byte as a continuation byte and substitute
	// U+FFFD. If the restart worked, the paragraph's decoded text carries
	// the accented character; if it didn't, it carries the replacement
	// character instead.
	src := "<html><head><meta charset=\"windows-1252\"></head><body><p>caf\xe9</p></body></html>"

	res, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", res.Encoding)

	htmlRef, ok := childByTag(res.Tree, res.Doc, atom.Html)
	require.True(t, ok)
	bodyRef, ok := childByTag(res.Tree, htmlRef, atom.Body)
	require.True(t, ok)
	pRef, ok := childByTag(res.Tree, bodyRef, atom.P)
	require.True(t, ok)
	assert.Equal(t, "café", textContent(res.Tree, pRef))
}

func TestParseDocumentHonorsCertainEncodingHint(t *testing.T) {
	src := "<p>caf\xe9</p>"
	res, err := ParseDocument(strings.NewReader(src), WithEncodingHint("windows-1252", true))
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", res.Encoding)

	htmlRef, _ := childByTag(res.Tree, res.Doc, atom.Html)
	bodyRef, _ := childByTag(res.Tree, htmlRef, atom.Body)
	pRef, ok := childByTag(res.Tree, bodyRef, atom.P)
	require.True(t, ok)
	assert.Equal(t, "café", textContent(res.Tree, pRef))
}

func hasAnyElement(t *domtree.Tree, root domtree.Ref, a atom.Atom) bool {
	end := t.ChildrenEnd(root)
	for r := t.SerialNext(root); r != end; r = t.SerialNext(r) {
		if n := t.Value(r); n.Kind == domtree.Element && n.Local == a {
			return true
		}
	}
	return false
}

func TestParseFragmentUsesContextContentModel(t *testing.T) {
	tree := domtree.New()
	context := domtree.NewElement(atom.HTML, atom.Title, "title")

	res, err := ParseFragment(strings.NewReader("<b>not a tag, literal text</b>"), tree, context)
	require.NoError(t, err)

	// In RCDATA, "<b>" is just text: no <b> element should appear anywhere
	// in the parsed fragment.
	assert.False(t, hasAnyElement(res.Tree, res.Doc, atom.B),
		"RCDATA content model must not tokenize <b> as a tag")
}

// TestMetaCharsetSinkFlagsEncodingChange unit-tests the restart signal in
// isolation, independent of whether golang.org/x/net/html/charset's own
// BOM/meta prescan already resolved the encoding up front.
func TestMetaCharsetSinkFlagsEncodingChange(t *testing.T) {
	sink := &metaCharsetSink{
		Constructor: construct.New(domtree.New()),
		confidence:  Tentative,
		current:     "utf-8",
	}
	sink.ProcessToken(&token.Token{
		Type:    token.StartTag,
		TagAtom: atom.Meta,
		Attr:    []token.Attribute{{Name: "charset", Value: "windows-1252"}},
	})
	assert.Equal(t, "windows-1252", sink.changeTo)

	// A meta whose declared charset matches the current encoding must not
	// flag a change.
	sink2 := &metaCharsetSink{
		Constructor: construct.New(domtree.New()),
		confidence:  Tentative,
		current:     "utf-8",
	}
	sink2.ProcessToken(&token.Token{
		Type:    token.StartTag,
		TagAtom: atom.Meta,
		Attr:    []token.Attribute{{Name: "charset", Value: "utf-8"}},
	})
	assert.Equal(t, "", sink2.changeTo)
}

func TestExtractCharsetFromContentType(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`text/html; charset=utf-8`, "utf-8", true},
		{`text/html; charset="Shift_JIS"`, "Shift_JIS", true},
		{`text/html`, "", false},
		{`text/html;CHARSET = 'iso-8859-1'`, "iso-8859-1", true},
	}
	for _, c := range cases {
		got, ok := extractCharsetFromContentType(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}
