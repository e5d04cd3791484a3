package construct

import (
	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/tokenizer"
)

// NewFragment creates a Constructor primed for fragment parsing (spec.md
// §4.5's fragment-parsing presets): tokens are parsed as if they were found
// in a document whose single element were context, per the HTML spec's
// "parsing HTML fragments" algorithm. Grounded on
// dpotapov-go-pages/chtml/html/parse.go's own Parse() entry point, which is
// itself already fragment-shaped — it seeds im directly at inBodyIM instead
// of running the document-level modes — generalized here to prime the
// correct tokenizer content model and insertion mode for any context
// element rather than always assuming body.
func NewFragment(tree *domtree.Tree, context domtree.Node) *Constructor {
	c := &Constructor{tree: tree}
	c.doc = tree.Insert(tree.Root(), domtree.NewDocument())
	c.framesetOK = true
	c.fragmentContext = &context

	root := c.appendChild(c.doc, domtree.NewElement(atom.HTML, atom.Html, "html"))
	c.oe.push(root)

	if context.ElemNamespace == atom.HTML && context.Local == atom.Template {
		c.templateModes = append(c.templateModes, mInBody)
	}

	// formElement stays zero even when context is a <form>: the spec's
	// fragment algorithm seeds the form pointer only to suppress a second
	// nested <form> start tag, which the in-body form handler already does
	// once a real <form> token is processed inside this fragment.

	c.resetInsertionMode()
	return c
}

// fragmentContentModel reports the tokenizer content model a fragment
// parse's context element would have switched the tokenizer to, had it been
// opened by a real start tag (spec.md §4.5's fragment-parsing presets).
// Callers prime the tokenizer with this before feeding it the fragment's
// source text.
func fragmentContentModel(context domtree.Node) tokenizer.ContentModel {
	if context.ElemNamespace != atom.HTML {
		return tokenizer.DataState
	}
	switch context.Local {
	case atom.Title, atom.Textarea:
		return tokenizer.RCDATAState
	case atom.Style, atom.Xmp, atom.Iframe, atom.Noembed, atom.Noframes:
		return tokenizer.RAWTEXTState
	case atom.Script:
		return tokenizer.ScriptDataState
	case atom.Plaintext:
		return tokenizer.PlaintextState
	default:
		return tokenizer.DataState
	}
}

// FragmentContentModel is the exported form of fragmentContentModel, used by
// htmlparse.ParseFragment to prime the tokenizer before SetTokenizer.
func FragmentContentModel(context domtree.Node) tokenizer.ContentModel {
	return fragmentContentModel(context)
}

// Fragment returns the synthetic <html> root inserted by NewFragment. Its
// children are the parsed fragment; the root itself is only the wrapper
// (spec.md §4.5's "fragment parsing algorithm").
func (c *Constructor) Fragment() domtree.Ref {
	return c.oe[0]
}
