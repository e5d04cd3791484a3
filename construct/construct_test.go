package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/tokenizer"
)

// parseHTML feeds src through a tokenizer into a fresh Constructor and
// returns the finished tree plus the constructor (for inspecting oe/afe
// state, errors, etc).
func parseHTML(src string) (*domtree.Tree, *Constructor) {
	tree := domtree.New()
	c := New(tree)
	var errs []string
	buf := tokenizer.NewBuffer(func(name string) { errs = append(errs, name) })
	for _, r := range src {
		buf.Push(r)
	}
	buf.SetEOF()
	tok := tokenizer.New(buf, c)
	c.SetTokenizer(tok)
	tok.Run()
	return tree, c
}

// childByTag returns the first Element child of parent with local name a,
// searching only direct children (via Tree.Next from FirstChild).
func childByTag(t *domtree.Tree, parent domtree.Ref, a atom.Atom) (domtree.Ref, bool) {
	end := t.ChildrenEnd(parent)
	for r := t.FirstChild(parent); r != end; r = t.Next(r) {
		n := t.Value(r)
		if n.Kind == domtree.Element && n.Local == a {
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

func TestSimpleParagraphBuildsHtmlHeadBodyStructure(t *testing.T) {
	tree, c := parseHTML(`<!DOCTYPE html><html><head><title>Hi</title></head><body><p>Hello, world.</p></body></html>`)

	htmlRef, ok := childByTag(tree, c.Document(), atom.Html)
	require.True(t, ok)

	headRef, ok := childByTag(tree, htmlRef, atom.Head)
	require.True(t, ok)
	titleRef, ok := childByTag(tree, headRef, atom.Title)
	require.True(t, ok)
	assert.Equal(t, "Hi", textContent(tree, titleRef))

	bodyRef, ok := childByTag(tree, htmlRef, atom.Body)
	require.True(t, ok)
	pRef, ok := childByTag(tree, bodyRef, atom.P)
	require.True(t, ok)
	assert.Equal(t, "Hello, world.", textContent(tree, pRef))
}

// TestMisnestedEmphasisSplitsStrongViaAdoptionAgency exercises the
// classic adoption-agency fixture: <p>This is <em>very <strong>wrong</em>
// !</strong></p> must come out with the <strong> split across the </em>
// boundary rather than left improperly nested.
func TestMisnestedEmphasisSplitsStrongViaAdoptionAgency(t *testing.T) {
	tree, c := parseHTML(`<p>This is <em>very <strong>wrong</em>!</strong></p>`)

	htmlRef, ok := childByTag(tree, c.Document(), atom.Html)
	require.True(t, ok)
	bodyRef, ok := childByTag(tree, htmlRef, atom.Body)
	require.True(t, ok)
	pRef, ok := childByTag(tree, bodyRef, atom.P)
	require.True(t, ok)

	emRef, ok := childByTag(tree, pRef, atom.Em)
	require.True(t, ok)
	strongInEm, ok := childByTag(tree, emRef, atom.Strong)
	require.True(t, ok, "strong should open inside em")
	assert.Equal(t, "wrong", textContent(tree, strongInEm))

	// A second, cloned <strong> must exist as a sibling of <em> inside <p>,
	// holding "!" — proof the adoption agency actually split the element
	// instead of just closing em and leaving strong dangling.
	var clones []domtree.Ref
	end := tree.ChildrenEnd(pRef)
	for r := tree.FirstChild(pRef); r != end; r = tree.Next(r) {
		if n := tree.Value(r); n.Kind == domtree.Element && n.Local == atom.Strong {
			clones = append(clones, r)
		}
	}
	require.Len(t, clones, 1, "expected exactly one cloned <strong> as a sibling of <em>")
	assert.Equal(t, "!", textContent(tree, clones[0]))
}

func TestDoctypePublicIDSelectsQuirksMode(t *testing.T) {
	tree, c := parseHTML(`<!DOCTYPE HTML PUBLIC "-//W3O//DTD W3 HTML Strict 3.0//EN//"><p>x</p>`)
	doc := tree.Value(c.Document())
	assert.Equal(t, domtree.Quirks, doc.Mode)
}

func TestNoDoctypeIsQuirks(t *testing.T) {
	tree, c := parseHTML(`<p>x</p>`)
	doc := tree.Value(c.Document())
	assert.Equal(t, domtree.Quirks, doc.Mode)
}

func TestStandardDoctypeIsNoQuirks(t *testing.T) {
	tree, c := parseHTML(`<!DOCTYPE html><p>x</p>`)
	doc := tree.Value(c.Document())
	assert.Equal(t, domtree.NoQuirks, doc.Mode)
}

func TestFosterParentingMovesTextOutOfTable(t *testing.T) {
	tree, c := parseHTML(`<table>stray text<tr><td>cell</td></tr></table>`)

	htmlRef, ok := childByTag(tree, c.Document(), atom.Html)
	require.True(t, ok)
	bodyRef, ok := childByTag(tree, htmlRef, atom.Body)
	require.True(t, ok)

	// "stray text" must land before <table> as a foster-parented sibling,
	// not as a child of <table> itself.
	tableRef, ok := childByTag(tree, bodyRef, atom.Table)
	require.True(t, ok)

	prev := tree.Prev(tableRef)
	require.NotEqual(t, domtree.Ref(0), prev)
	prevNode := tree.Value(prev)
	require.Equal(t, domtree.Text, prevNode.Kind)
	assert.Contains(t, prevNode.Data, "stray text")

	trRef, ok := childByTag(tree, tableRef, atom.Tbody)
	require.True(t, ok)
	_, hasTr := childByTag(tree, trRef, atom.Tr)
	assert.True(t, hasTr)
}

func TestListItemsDoNotNest(t *testing.T) {
	tree, c := parseHTML(`<ul><li>one<li>two<li>three</ul>`)
	htmlRef, _ := childByTag(tree, c.Document(), atom.Html)
	bodyRef, _ := childByTag(tree, htmlRef, atom.Body)
	ulRef, ok := childByTag(tree, bodyRef, atom.Ul)
	require.True(t, ok)

	var items []domtree.Ref
	end := tree.ChildrenEnd(ulRef)
	for r := tree.FirstChild(ulRef); r != end; r = tree.Next(r) {
		if n := tree.Value(r); n.Kind == domtree.Element && n.Local == atom.Li {
			items = append(items, r)
		}
	}
	require.Len(t, items, 3)
	for _, li := range items {
		_, nested := childByTag(tree, li, atom.Li)
		assert.False(t, nested, "li elements must not nest")
	}
}

func TestFormattingReconstructionReopensAcrossBlock(t *testing.T) {
	// <b> spans the block boundary: reconstructActiveFormattingElements
	// must re-open a clone inside the <p> after the implied-end-tag close
	// of an unclosed earlier one.
	tree, c := parseHTML(`<p><b>bold<p>still bold</p>`)
	htmlRef, _ := childByTag(tree, c.Document(), atom.Html)
	bodyRef, _ := childByTag(tree, htmlRef, atom.Body)

	firstP, ok := childByTag(tree, bodyRef, atom.P)
	require.True(t, ok)
	_, bInFirstP := childByTag(tree, firstP, atom.B)
	assert.True(t, bInFirstP)

	pRef := tree.Next(firstP)
	require.Equal(t, atom.P, tree.Value(pRef).Local)
	_, bInsideP := childByTag(tree, pRef, atom.B)
	assert.True(t, bInsideP, "b must be reconstructed inside the new p")
}
