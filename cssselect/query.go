// Package cssselect's query.go implements the document-order traversal
// entry points spec.md §4.6 and the original's
// include/wordring/css/selector.hpp name: query_selector_all and
// query_selector, generalized here to QueryAll and Query.
package cssselect

import "github.com/tagtree/htmlkit/domtree"

// QueryAll returns every descendant Element of root, in document order,
// that matches selector, per spec.md §8's scenario:
// query_selector_all(root, "p") on <p>text1</p><p>text2</p> yields the two
// <p> elements in source order. root must be an element-like ref (a
// Document, DocumentFragment, or Element) such as the one htmlparse.Result
// exposes as Doc — never a Tree's bare Root(), whose "tail" slot is
// double-purposed as the tree's free-list pointer.
func QueryAll(tree *domtree.Tree, root domtree.Ref, selector string, ctx Context) ([]domtree.Ref, error) {
	list, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	return QueryAllCompiled(tree, root, list, ctx), nil
}

// QueryAllCompiled is QueryAll for a selector already parsed once via
// ParseSelector, letting a repeated query skip reparsing.
func QueryAllCompiled(tree *domtree.Tree, root domtree.Ref, list *SelectorList, ctx Context) []domtree.Ref {
	var out []domtree.Ref
	end := tree.ChildrenEnd(root)
	if !tree.Value(root).IsElementLike() {
		end = root
	}
	it := domtree.NewCastIterator(tree, firstCandidate(tree, root), end, tree.SerialNext, isElement)
	for !it.Done() {
		if Matches(tree, it.Ref(), list, ctx) {
			out = append(out, it.Ref())
		}
		it.Next()
	}
	return out
}

// Query returns the first Element matching selector in document order, or
// ok=false if none does.
func Query(tree *domtree.Tree, root domtree.Ref, selector string, ctx Context) (domtree.Ref, bool, error) {
	list, err := ParseSelector(selector)
	if err != nil {
		return 0, false, err
	}
	ref, ok := QueryCompiled(tree, root, list, ctx)
	return ref, ok, nil
}

// QueryCompiled is Query for an already-parsed selector.
func QueryCompiled(tree *domtree.Tree, root domtree.Ref, list *SelectorList, ctx Context) (domtree.Ref, bool) {
	end := tree.ChildrenEnd(root)
	if !tree.Value(root).IsElementLike() {
		end = root
	}
	it := domtree.NewCastIterator(tree, firstCandidate(tree, root), end, tree.SerialNext, isElement)
	for !it.Done() {
		if Matches(tree, it.Ref(), list, ctx) {
			return it.Ref(), true
		}
		it.Next()
	}
	return 0, false
}

// firstCandidate starts the scan at root's first descendant rather than at
// root itself: a selector query never matches the scope root, mirroring
// Element.querySelectorAll's own "match against root's descendants" rule.
func firstCandidate(tree *domtree.Tree, root domtree.Ref) domtree.Ref {
	if tree.Value(root).IsElementLike() {
		return tree.FirstChild(root)
	}
	return tree.SerialNext(root)
}

func isElement(n *domtree.Node) bool { return n.Kind == domtree.Element }
