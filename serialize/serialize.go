// Package serialize implements the mechanical HTML5 serializer spec.md §6
// defines the contract for ("out of scope but contract defined"), grounded
// on original_source/include/wordring/whatwg/html/parsing/serializing.hpp's
// to_string: the void-element rule, the tag-name qualification rule, and
// the attribute/text escaping rules all follow that file's switch
// statements directly. The tree walk itself departs from to_string's
// parent-stack/search-stack bookkeeping, which exists there to drive a
// generic begin()/end() child-range adapter; domtree.Tree already exposes
// a flat document-order slot sequence (SerialNext, EndTag), so the walk
// here is a single linear scan instead.
package serialize

import (
	"fmt"
	"io"
	"strings"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
)

// rawTextTags are the HTML-namespace elements whose text-node children are
// written out verbatim rather than escaped, per serializing.hpp's to_string
// (the Style/Script/Xmp/Iframe/Noembed/Noframes/Plaintext case).
var rawTextTags = map[atom.Atom]bool{
	atom.Style: true, atom.Script: true, atom.Xmp: true, atom.Iframe: true,
	atom.Noembed: true, atom.Noframes: true, atom.Plaintext: true,
}

// SerializesAsVoid reports whether n serializes with no children and no end
// tag: either an HTML void element (atom.VoidTags) or one of the
// legacy void-like elements spec.md §6 names, which atom.VoidTags already
// folds into the same set.
func SerializesAsVoid(n *domtree.Node) bool {
	if n.Kind != domtree.Element {
		return false
	}
	return n.ElemNamespace == atom.HTML && atom.VoidTags[n.Local]
}

// Node writes the HTML5 serialization of the subtree rooted at ref
// (spec.md's "html-fragment-serialisation-algorithm") to w. ref may be an
// Element, Document, or DocumentFragment; for a Document or
// DocumentFragment only its children are written, per the algorithm's own
// "node" step, which special-cases a document node by serializing its
// children directly.
func Node(w io.Writer, tree *domtree.Tree, ref domtree.Ref) error {
	n := tree.Value(ref)
	switch n.Kind {
	case domtree.Document, domtree.DocumentFragment:
		return children(w, tree, ref)
	default:
		return node(w, tree, ref, n)
	}
}

// children writes each of ref's direct children in document order.
func children(w io.Writer, tree *domtree.Tree, ref domtree.Ref) error {
	end := tree.ChildrenEnd(ref)
	for c := tree.FirstChild(ref); c != end; c = tree.Next(c) {
		if err := node(w, tree, c, tree.Value(c)); err != nil {
			return err
		}
	}
	return nil
}

// node writes a single non-document node, descending into its children
// (via the tag-start/tag-end split below) when it is element-like.
func node(w io.Writer, tree *domtree.Tree, ref domtree.Ref, n *domtree.Node) error {
	switch n.Kind {
	case domtree.Element:
		return element(w, tree, ref, n)
	case domtree.Text:
		return text(w, n.Data, parentRawText(tree, ref))
	case domtree.Comment:
		_, err := fmt.Fprintf(w, "<!--%s-->", n.Data)
		return err
	case domtree.DocumentType:
		_, err := fmt.Fprintf(w, "<!DOCTYPE %s>", n.Name)
		return err
	case domtree.ProcessingInstruction:
		_, err := fmt.Fprintf(w, "<?%s %s>", n.Target, n.Data)
		return err
	default:
		return nil
	}
}

func element(w io.Writer, tree *domtree.Tree, ref domtree.Ref, n *domtree.Node) error {
	if err := writeStartTag(w, n); err != nil {
		return err
	}
	if SerializesAsVoid(n) {
		return nil
	}
	if err := children(w, tree, ref); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "</%s>", tagName(n))
	return err
}

func writeStartTag(w io.Writer, n *domtree.Node) error {
	if _, err := fmt.Fprintf(w, "<%s", tagName(n)); err != nil {
		return err
	}
	for _, a := range n.Attrs {
		if _, err := fmt.Fprintf(w, " %s=\"", attrName(a)); err != nil {
			return err
		}
		if err := escapeAttrValue(w, a.Value); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\""); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">")
	return err
}

// tagName renders an element's serialized name: the bare local name for
// HTML, MathML, and SVG (the three namespaces this module actually
// constructs elements in), the prefix-qualified name otherwise, mirroring
// serializing.hpp's get_tag_name.
func tagName(n *domtree.Node) string {
	switch n.ElemNamespace {
	case atom.HTML, atom.MathML, atom.SVG:
		if n.Local != atom.Unknown {
			return atom.Tags.String(n.Local)
		}
		return n.LocalName
	default:
		return n.TagName()
	}
}

// attrName renders an attribute's serialized name, mirroring
// serializing.hpp's get_attributes_serialized_name: xlink:/xml:/xmlns:
// prefixes are reconstructed from the namespace rather than carried
// verbatim, and a bare "xmlns" attribute (as opposed to a prefixed
// "xmlns:foo") is never given a redundant "xmlns:" prefix.
func attrName(a domtree.Attr) string {
	switch a.Namespace {
	case atom.NoNamespace:
		return a.Name()
	case atom.XML:
		return "xml:" + a.Name()
	case atom.XMLNS:
		if a.Name() == "xmlns" {
			return "xmlns"
		}
		return "xmlns:" + a.Name()
	case atom.XLink:
		return "xlink:" + a.Name()
	default:
		return a.Name()
	}
}

func parentRawText(tree *domtree.Tree, ref domtree.Ref) bool {
	p := tree.Parent(ref)
	if p == 0 {
		return false
	}
	n := tree.Value(p)
	return n.Kind == domtree.Element && n.ElemNamespace == atom.HTML && rawTextTags[n.Local]
}

func text(w io.Writer, data string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, data)
		return err
	}
	return escapeText(w, data)
}

// escapeText implements serializing.hpp's escape_string in its non-attr
// mode: &, U+00A0, '<', and '>' are replaced with their named references;
// everything else passes through unchanged.
func escapeText(w io.Writer, s string) error {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '\u00A0':
			sb.WriteString("&nbsp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteRune(r)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// escapeAttrValue implements escape_string's attr_mode: only &, U+00A0, and
// '"' are replaced; '<'/'>' pass through since they need no escaping inside
// a quoted attribute value.
func escapeAttrValue(w io.Writer, s string) error {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '\u00A0':
			sb.WriteString("&nbsp;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(r)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns Node's output as a string, for callers that don't already
// have a io.Writer at hand (the CLI's --query path, tests).
func String(tree *domtree.Tree, ref domtree.Ref) (string, error) {
	var sb strings.Builder
	if err := Node(&sb, tree, ref); err != nil {
		return "", err
	}
	return sb.String(), nil
}
