package domtree

// slot is one entry of the tagged tree's backing vector (spec.md §3.3).
// prev/next link the cyclic document-order list rooted at index 0; for an
// element-like node tail points at its synthesized end-tag slot and the
// end-tag's head points back. A freed slot reuses head/tail as its
// free-list backward/forward links instead, with prev/next zeroed.
type slot struct {
	prev, next, head, tail uint32
	value                  Node
}

// Ref is a stable handle to one slot: a start-tag, end-tag, or leaf node.
// The zero Ref refers to index 0, the sentinel — Tree.Root's parent, and
// every tree/serial iterator's end position.
type Ref uint32

// Tree is the compact tagged tree of spec.md §3.3: a single slot vector
// with O(1) splice-based insert/erase/move and a free-list rooted at the
// sentinel slot 0, grounded directly on
// original_source/include/wordring/tag_tree/tag_tree.hpp's allocate/free/
// link/unlink scheme, translated from its unique_ptr<vector<wrapper>> into
// a plain Go slice of slot.
type Tree struct {
	slots []slot
}

// New creates an empty tree holding just the sentinel slot.
func New() *Tree {
	return &Tree{slots: []slot{{}}}
}

// Root is the before-begin/past-the-end/free-list-root sentinel. It is
// never a real node; Root's Next is the document's first top-level node
// (or Root itself when empty), mirroring the cyclic list in
// tag_tree.hpp's begin()/end().
func (t *Tree) Root() Ref { return 0 }

// Empty reports whether the tree holds no nodes.
func (t *Tree) Empty() bool { return t.slots[0].next == 0 }

// Len counts real nodes (start-tags, single leaf nodes), excluding
// synthesized end-tag slots, mirroring tag_tree::size().
func (t *Tree) Len() int {
	n := 0
	for i := t.slots[0].next; i != 0; i = t.slots[i].next {
		if t.slots[i].tail == 0 && t.slots[i].head != 0 {
			continue // end-tag slot
		}
		n++
	}
	return n
}

// Value returns the Node stored at ref. Calling this on the sentinel or an
// end-tag slot returns the zero Node.
func (t *Tree) Value(ref Ref) *Node { return &t.slots[ref].value }

// IsEndTag reports whether ref refers to a synthesized end-tag slot.
func (t *Tree) IsEndTag(ref Ref) bool { return ref != 0 && t.slots[ref].head != 0 }

// IsStartTag reports whether ref refers to a slot with a matching end-tag,
// i.e. an element-like node's opening slot.
func (t *Tree) IsStartTag(ref Ref) bool { return ref != 0 && t.slots[ref].tail != 0 }

// EndTag returns the end-tag slot matching a start-tag ref, or ref itself
// if it has none (leaf node) or is already an end-tag.
func (t *Tree) EndTag(ref Ref) Ref {
	if t.IsStartTag(ref) {
		return Ref(t.slots[ref].tail)
	}
	return ref
}

// StartTag is the inverse of EndTag.
func (t *Tree) StartTag(ref Ref) Ref {
	if t.IsEndTag(ref) {
		return Ref(t.slots[ref].head)
	}
	return ref
}

// Insert splices a new node immediately before pos (spec.md §3.3's
// insert(pos, value)). Element-like nodes allocate a matching end-tag slot
// too. Returns a Ref to the new node's start (or only) slot.
func (t *Tree) Insert(pos Ref, n Node) Ref {
	start := t.allocate(n)
	t.link(pos, start)
	if n.IsElementLike() {
		end := t.allocate(Node{})
		t.link(pos, end)
		t.slots[start].tail = uint32(end)
		t.slots[end].head = uint32(start)
	}
	return Ref(start)
}

// Erase removes the node at pos and, if it is element-like, every
// descendant between its start- and end-tag slots, releasing all of them
// to the free-list. Returns a Ref to the node that followed the removed
// span.
func (t *Tree) Erase(pos Ref) Ref {
	idx := uint32(pos)
	before := t.slots[idx].prev
	tail := t.slots[idx].tail
	if tail == 0 {
		tail = idx
	}
	after := t.slots[tail].next

	for tail != before {
		prev := t.slots[tail].prev
		t.unlink(tail)
		t.free(tail)
		tail = prev
	}

	return Ref(after)
}

// Move splices the contiguous span headed by sub (its start-tag through
// its end-tag, or just itself if it's a leaf) so it sits immediately
// before pos, without reallocating any slot. Returns a Ref to the moved
// span's head.
func (t *Tree) Move(pos, sub Ref) Ref {
	posBefore := t.slots[pos].prev
	posIdx := uint32(pos)

	subBefore := t.slots[sub].prev
	subHead := uint32(sub)
	subTail := t.slots[subHead].tail
	if subTail == 0 {
		subTail = subHead
	}
	subAfter := t.slots[subTail].next
	if subAfter == posIdx {
		// Already immediately before pos.
		return Ref(subHead)
	}

	t.slots[posBefore].next = subHead
	t.slots[subHead].prev = posBefore

	t.slots[posIdx].prev = subTail
	t.slots[subTail].next = posIdx

	t.slots[subBefore].next = subAfter
	t.slots[subAfter].prev = subBefore

	return Ref(subHead)
}

func (t *Tree) allocate(n Node) uint32 {
	idx := t.slots[0].tail
	if idx == 0 {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{value: n})
		return idx
	}
	before := t.slots[idx].head
	after := t.slots[idx].tail
	t.slots[idx].value = n
	t.slots[idx].prev = 0
	t.slots[idx].next = 0
	t.slots[idx].head = 0
	t.slots[idx].tail = 0
	t.slots[before].tail = after
	t.slots[after].head = before
	return idx
}

// free returns idx to the free-list in ascending order, keeping the vector
// compact for reuse, mirroring tag_tree.hpp's free().
func (t *Tree) free(idx uint32) {
	var before uint32
	for i := t.slots[0].tail; i != 0 && i < idx; i = t.slots[before].tail {
		before = i
	}
	after := t.slots[before].tail

	t.slots[before].tail = idx
	t.slots[idx].head = before
	t.slots[idx].tail = after
	t.slots[after].head = idx

	t.slots[idx].prev = 0
	t.slots[idx].next = 0
	t.slots[idx].value = Node{}
}

func (t *Tree) link(pos Ref, idx uint32) {
	before := t.slots[pos].prev
	after := uint32(pos)

	t.slots[before].next = idx
	t.slots[idx].prev = before
	t.slots[idx].next = after
	t.slots[after].prev = idx

	t.slots[idx].head = 0
	t.slots[idx].tail = 0
}

func (t *Tree) unlink(idx uint32) {
	before := t.slots[idx].prev
	after := t.slots[idx].next

	t.slots[before].next = after
	t.slots[after].prev = before

	t.slots[idx].prev = 0
	t.slots[idx].next = 0
	t.slots[idx].head = 0
	t.slots[idx].tail = 0
}
