package domtree

// Next advances ref to its next sibling in tree order, jumping over any
// end-tag slot in between (spec.md §3.3's tree iterator), grounded on
// original_source's tag_tree_iterator::operator++.
func (t *Tree) Next(ref Ref) Ref {
	tail := t.slots[ref].tail
	if tail == 0 {
		return Ref(t.slots[ref].next)
	}
	return Ref(t.slots[tail].next)
}

// Prev is the inverse of Next, grounded on tag_tree_iterator::operator--.
func (t *Tree) Prev(ref Ref) Ref {
	prev := t.slots[ref].prev
	head := t.slots[prev].head
	if head == 0 {
		return Ref(prev)
	}
	return Ref(head)
}

// Parent walks back through sibling end-tags until it finds the enclosing
// start-tag, grounded on tag_tree_iterator::parent(). Returns the root
// sentinel (0) for a top-level node.
func (t *Tree) Parent(ref Ref) Ref {
	idx := t.slots[ref].prev
	for idx != 0 {
		if t.slots[idx].tail != 0 {
			return Ref(idx)
		}
		if head := t.slots[idx].head; head != 0 {
			idx = head
		}
		idx = t.slots[idx].prev
	}
	return 0
}

// FirstChild returns ref's first child, or ChildrenEnd(ref) if ref is a
// leaf or has none.
func (t *Tree) FirstChild(ref Ref) Ref {
	if t.slots[ref].tail == 0 {
		return 0
	}
	return Ref(t.slots[ref].next)
}

// ChildrenEnd is the sentinel that terminates iteration over ref's
// children: ref's own end-tag slot, or 0 if ref is a leaf.
func (t *Tree) ChildrenEnd(ref Ref) Ref { return Ref(t.slots[ref].tail) }

// SerialNext advances to the next slot in document order, including
// end-tag slots (spec.md §3.3's serial iterator).
func (t *Tree) SerialNext(ref Ref) Ref { return Ref(t.slots[ref].next) }

// SerialPrev is the inverse of SerialNext.
func (t *Tree) SerialPrev(ref Ref) Ref { return Ref(t.slots[ref].prev) }

// CharCursor walks the document-order text content of a tree one rune at a
// time, skipping every non-Text slot (elements, end-tags, comments) and
// every empty Text node so it never yields an empty run (spec.md §3.3's
// character iterator; the "empty text nodes yield zero characters" choice
// is recorded in DESIGN.md).
type CharCursor struct {
	tree  *Tree
	ref   Ref
	runes []rune
	pos   int
}

// NewCharCursor positions a cursor at the first rune at or after from in
// serial order.
func NewCharCursor(t *Tree, from Ref) *CharCursor {
	c := &CharCursor{tree: t, ref: from}
	c.seekForward()
	return c
}

func (c *CharCursor) seekForward() {
	for c.ref != 0 {
		n := c.tree.Value(c.ref)
		if n.Kind == Text {
			if r := []rune(n.Data); len(r) > 0 {
				c.runes, c.pos = r, 0
				return
			}
		}
		c.ref = c.tree.SerialNext(c.ref)
	}
	c.runes, c.pos = nil, 0
}

func (c *CharCursor) seekBackward() {
	for c.ref != 0 {
		n := c.tree.Value(c.ref)
		if n.Kind == Text {
			if r := []rune(n.Data); len(r) > 0 {
				c.runes, c.pos = r, len(r)-1
				return
			}
		}
		c.ref = c.tree.SerialPrev(c.ref)
	}
	c.runes, c.pos = nil, 0
}

// Done reports whether the cursor has run off either end of the tree.
func (c *CharCursor) Done() bool { return c.ref == 0 }

// Rune returns the code unit at the cursor's current position. Valid only
// when Done reports false.
func (c *CharCursor) Rune() rune { return c.runes[c.pos] }

// Next advances to the next code unit in document order.
func (c *CharCursor) Next() {
	c.pos++
	if c.pos >= len(c.runes) {
		c.ref = c.tree.SerialNext(c.ref)
		c.seekForward()
	}
}

// Prev retreats to the previous code unit in document order.
func (c *CharCursor) Prev() {
	c.pos--
	if c.pos < 0 {
		c.ref = c.tree.SerialPrev(c.ref)
		c.seekBackward()
	}
}

// CastIterator filters a tree walk down to slots whose Node satisfies
// keep, so callers (the selector matcher above all) don't need a type
// switch at every step. Grounded on
// original_source/include/wordring/tag_tree/cast_iterator.hpp's notion of
// an iterator adaptor over the tagged tree, generalized from "cast to a
// dynamic type" to an arbitrary predicate since Go has no down-casting to
// drive a literal translation.
type CastIterator struct {
	tree *Tree
	ref  Ref
	end  Ref
	step func(Ref) Ref
	keep func(*Node) bool
}

// NewCastIterator walks from `from` to `end` (exclusive) using step
// (typically (*Tree).Next for siblings or (*Tree).SerialNext for a full
// subtree walk), yielding only refs whose Node satisfies keep.
func NewCastIterator(t *Tree, from, end Ref, step func(Ref) Ref, keep func(*Node) bool) *CastIterator {
	c := &CastIterator{tree: t, ref: from, end: end, step: step, keep: keep}
	c.skip()
	return c
}

func (c *CastIterator) skip() {
	for c.ref != c.end && !c.keep(c.tree.Value(c.ref)) {
		c.ref = c.step(c.ref)
	}
}

// Done reports whether the iterator has reached its end bound.
func (c *CastIterator) Done() bool { return c.ref == c.end }

// Ref returns the current matching slot.
func (c *CastIterator) Ref() Ref { return c.ref }

// Value returns the Node at the current matching slot.
func (c *CastIterator) Value() *Node { return c.tree.Value(c.ref) }

// Next advances to the next matching slot.
func (c *CastIterator) Next() {
	c.ref = c.step(c.ref)
	c.skip()
}
