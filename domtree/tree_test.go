package domtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagtree/htmlkit/atom"
)

func TestInsertBuildsSiblingChain(t *testing.T) {
	tree := New()
	require.True(t, tree.Empty())

	div := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.Div, ""))
	p := tree.Insert(tree.ChildrenEnd(div), NewElement(atom.HTML, atom.P, ""))
	tree.Insert(tree.ChildrenEnd(p), NewText("hello"))

	assert.False(t, tree.Empty())
	assert.Equal(t, 3, tree.Len())

	assert.Equal(t, Element, tree.Value(div).Kind)
	assert.True(t, tree.IsStartTag(div))
	assert.True(t, tree.IsEndTag(tree.EndTag(div)))

	child := tree.FirstChild(div)
	assert.Equal(t, p, child)
	assert.Equal(t, Text, tree.Value(tree.FirstChild(p)).Kind)
	assert.Equal(t, "hello", tree.Value(tree.FirstChild(p)).Data)

	assert.Equal(t, div, tree.Parent(p))
	assert.Equal(t, p, tree.Parent(tree.FirstChild(p)))
	assert.Equal(t, Ref(0), tree.Parent(div))
}

func TestNextSkipsEndTags(t *testing.T) {
	tree := New()
	a := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.A, ""))
	tree.Insert(tree.ChildrenEnd(a), NewText("x"))
	b := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.B, ""))

	assert.Equal(t, b, tree.Next(a))
	assert.Equal(t, a, tree.Prev(b))
}

func TestEraseReleasesSubtreeToFreeList(t *testing.T) {
	tree := New()
	div := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.Div, ""))
	tree.Insert(tree.ChildrenEnd(div), NewText("a"))
	tree.Insert(tree.ChildrenEnd(div), NewText("b"))
	span := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.U, ""))

	sizeBefore := len(tree.slots)
	next := tree.Erase(div)
	assert.Equal(t, span, next)
	assert.Equal(t, 1, tree.Len())

	reused := tree.Insert(tree.Root(), NewComment("c"))
	assert.Less(t, int(reused), sizeBefore, "erased slots should be reused before growing the vector")
}

func TestCharCursorSkipsEmptyTextNodes(t *testing.T) {
	tree := New()
	div := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.Div, ""))
	tree.Insert(tree.ChildrenEnd(div), NewText(""))
	tree.Insert(tree.ChildrenEnd(div), NewText("ab"))
	tree.Insert(tree.ChildrenEnd(div), NewText(""))
	tree.Insert(tree.ChildrenEnd(div), NewText("c"))

	c := NewCharCursor(tree, tree.Next(tree.Root()))
	var got []rune
	for !c.Done() {
		got = append(got, c.Rune())
		c.Next()
	}
	assert.Equal(t, []rune("abc"), got)
}

func TestCastIteratorFiltersByKind(t *testing.T) {
	tree := New()
	div := tree.Insert(tree.Root(), NewElement(atom.HTML, atom.Div, ""))
	tree.Insert(tree.ChildrenEnd(div), NewText("x"))
	tree.Insert(tree.ChildrenEnd(div), NewElement(atom.HTML, atom.Strong, ""))
	tree.Insert(tree.ChildrenEnd(div), NewText("y"))

	it := NewCastIterator(tree, tree.FirstChild(div), tree.ChildrenEnd(div), tree.Next, func(n *Node) bool {
		return n.Kind == Text
	})
	var texts []string
	for !it.Done() {
		texts = append(texts, it.Value().Data)
		it.Next()
	}
	assert.Equal(t, []string{"x", "y"}, texts)
}
