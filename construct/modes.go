package construct

import (
	"strings"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/token"
	"github.com/tagtree/htmlkit/tokenizer"
)

func isAllWhitespace(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
		default:
			return false
		}
	}
	return true
}

func stripLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	if strings.HasPrefix(s, "\n") {
		return s[1:]
	}
	return s
}

// initialMode is spec.md §4.5's initial insertion mode: decides the
// document's quirks mode from an initial DOCTYPE, if any.
func initialMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return true
		}
	case token.Comment:
		c.appendChild(c.doc, domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		doc := c.tree.Value(c.doc)
		doc.Mode = resolveQuirksMode(tok.Name, tok.PublicID, tok.SystemID, tok.HasSystemID, tok.ForceQuirks)
		c.appendChild(c.doc, domtree.NewDocumentType(tok.Name, tok.PublicID, tok.SystemID))
		c.im = mBeforeHTML
		return true
	}
	c.tree.Value(c.doc).Mode = domtree.Quirks
	c.im = mBeforeHTML
	return false
}

func beforeHTMLMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.Comment:
		c.appendChild(c.doc, domtree.NewComment(tok.Data))
		return true
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return true
		}
	case token.StartTag:
		if tok.TagAtom == atom.Html {
			c.addElement(tok)
			c.im = mBeforeHead
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Head, atom.Body, atom.Html, atom.Br:
		default:
			c.errorf("unexpected-end-tag")
			return true
		}
	}
	c.addChild(domtree.NewElement(atom.HTML, atom.Html, "html"))
	c.im = mBeforeHead
	return false
}

func beforeHeadMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return true
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Head:
			ref := c.addElement(tok)
			c.headElement = ref
			c.im = mInHead
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Head, atom.Body, atom.Html, atom.Br:
		default:
			c.errorf("unexpected-end-tag")
			return true
		}
	}
	ref := c.addChild(domtree.NewElement(atom.HTML, atom.Head, "head"))
	c.headElement = ref
	c.im = mInHead
	return false
}

func inHeadMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			c.addText(tok.Data)
			return true
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link:
			c.addElement(tok)
			c.oe.pop()
			c.acknowledgeSelfClosing(tok)
			return true
		case atom.Meta:
			c.addElement(tok)
			c.oe.pop()
			c.acknowledgeSelfClosing(tok)
			// A <meta charset> or http-equiv content-type signal is wired
			// into the encoding-confidence loop by htmlparse's decoder,
			// which watches tokens at the Sink boundary rather than here.
			return true
		case atom.Title:
			c.addElement(tok)
			c.setContentModel(tokenizer.RCDATAState)
			c.setOriginalIM()
			c.im = mText
			return true
		case atom.Noscript:
			c.addElement(tok)
			if c.scriptingEnabled {
				c.setContentModel(tokenizer.RAWTEXTState)
				c.setOriginalIM()
				c.im = mText
			} else {
				c.im = mInHeadNoscript
			}
			return true
		case atom.Noframes, atom.Style:
			c.addElement(tok)
			c.setContentModel(tokenizer.RAWTEXTState)
			c.setOriginalIM()
			c.im = mText
			return true
		case atom.Script:
			c.addElement(tok)
			c.setContentModel(tokenizer.ScriptDataState)
			c.setOriginalIM()
			c.im = mText
			return true
		case atom.Template:
			c.addElement(tok)
			c.afe = append(c.afe, afeEntry{marker: true})
			c.framesetOK = false
			c.im = mInTemplate
			c.templateModes = append(c.templateModes, mAfterHead)
			return true
		case atom.Head:
			c.errorf("unexpected-start-tag")
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Head:
			c.oe.pop()
			c.im = mAfterHead
			return true
		case atom.Body, atom.Html, atom.Br:
		case atom.Template:
			return inTemplateMode(c, tok)
		default:
			c.errorf("unexpected-end-tag")
			return true
		}
	case token.EOF:
		c.oe.pop()
		c.im = mAfterHead
		return false
	}
	c.oe.pop()
	c.im = mAfterHead
	return false
}

func inHeadNoscriptMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Basefont, atom.Bgsound, atom.Link, atom.Meta, atom.Noframes, atom.Style:
			return inHeadMode(c, tok)
		case atom.Head, atom.Noscript:
			c.errorf("unexpected-start-tag")
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Noscript:
			c.oe.pop()
			c.im = mInHead
			return true
		case atom.Br:
		default:
			c.errorf("unexpected-end-tag")
			return true
		}
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return inHeadMode(c, tok)
		}
	case token.Comment:
		return inHeadMode(c, tok)
	}
	c.oe.pop()
	c.im = mInHead
	return false
}

func afterHeadMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			c.addText(tok.Data)
			return true
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Body:
			c.addElement(tok)
			c.framesetOK = false
			c.im = mInBody
			return true
		case atom.Frameset:
			c.addElement(tok)
			c.im = mInFrameset
			return true
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta,
			atom.Noframes, atom.Script, atom.Style, atom.Template, atom.Title:
			c.oe.push(c.headElement)
			consumed := inHeadMode(c, tok)
			c.oe.remove(c.headElement)
			return consumed
		case atom.Head:
			c.errorf("unexpected-start-tag")
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Template:
			return inTemplateMode(c, tok)
		case atom.Body, atom.Html, atom.Br:
		default:
			c.errorf("unexpected-end-tag")
			return true
		}
	}
	c.addChild(domtree.NewElement(atom.HTML, atom.Body, "body"))
	c.im = mInBody
	return false
}

func inBodyMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.Character:
		d := strings.ReplaceAll(tok.Data, "\x00", "")
		if d == "" {
			return true
		}
		c.reconstructActiveFormattingElements()
		if top := c.currentNode(); top.ElemNamespace == atom.HTML && (top.Local == atom.Pre || top.Local == atom.Listing) {
			if c.lastChild(c.top()) == 0 {
				d = stripLeadingNewline(d)
			}
		}
		c.addText(d)
		if !isAllWhitespace(d) {
			c.framesetOK = false
		}
		return true
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.EOF:
		return true
	case token.StartTag:
		return inBodyStartTag(c, tok)
	case token.EndTag:
		return inBodyEndTag(c, tok)
	}
	return true
}

func inBodyStartTag(c *Constructor, tok *token.Token) bool {
	switch tok.TagAtom {
	case atom.Html:
		n := c.tree.Value(c.oe[0])
		for _, a := range tok.Attr {
			if a.Omitted {
				continue
			}
			if _, ok := n.Attr(a.Name); !ok {
				n.Attrs = append(n.Attrs, domtree.Attr{Local: a.Atom, LocalName: a.Name, Value: a.Value})
			}
		}
		return true
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Center,
		atom.Details, atom.Dialog, atom.Dir, atom.Div, atom.Dl, atom.Fieldset,
		atom.Figcaption, atom.Figure, atom.Footer, atom.Header, atom.Hgroup,
		atom.Main, atom.Menu, atom.Nav, atom.Ol, atom.P, atom.Section,
		atom.Summary, atom.Ul:
		c.popUntil(buttonScope, atom.P)
		c.addElement(tok)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.popUntil(buttonScope, atom.P)
		if top := c.currentNode(); top.ElemNamespace == atom.HTML {
			switch top.Local {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				c.oe.pop()
			}
		}
		c.addElement(tok)
	case atom.Pre, atom.Listing:
		c.popUntil(buttonScope, atom.P)
		c.addElement(tok)
		c.framesetOK = false
	case atom.Form:
		if c.formElement != 0 && !c.oe.contains(atom.Template, c.tree) {
			return true
		}
		c.popUntil(buttonScope, atom.P)
		ref := c.addElement(tok)
		if !c.oe.contains(atom.Template, c.tree) {
			c.formElement = ref
		}
	case atom.Li:
		for i := len(c.oe) - 1; i >= 0; i-- {
			n := c.tree.Value(c.oe[i])
			switch {
			case n.ElemNamespace == atom.HTML && n.Local == atom.Li:
				c.oe = c.oe[:i]
			case n.ElemNamespace == atom.HTML && (n.Local == atom.Address || n.Local == atom.Div || n.Local == atom.P):
				continue
			default:
				if !isSpecialElement(c.tree, c.oe[i]) {
					continue
				}
			}
			break
		}
		c.popUntil(buttonScope, atom.P)
		c.addElement(tok)
	case atom.Dd, atom.Dt:
		for i := len(c.oe) - 1; i >= 0; i-- {
			n := c.tree.Value(c.oe[i])
			switch {
			case n.ElemNamespace == atom.HTML && (n.Local == atom.Dd || n.Local == atom.Dt):
				c.oe = c.oe[:i]
			case n.ElemNamespace == atom.HTML && (n.Local == atom.Address || n.Local == atom.Div || n.Local == atom.P):
				continue
			default:
				if !isSpecialElement(c.tree, c.oe[i]) {
					continue
				}
			}
			break
		}
		c.popUntil(buttonScope, atom.P)
		c.addElement(tok)
	case atom.Plaintext:
		c.popUntil(buttonScope, atom.P)
		c.addElement(tok)
		c.setContentModel(tokenizer.PlaintextState)
	case atom.Button:
		c.popUntil(defaultScope, atom.Button)
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
		c.framesetOK = false
	case atom.A:
		for i := len(c.afe) - 1; i >= 0 && !c.afe[i].marker; i-- {
			if n := c.tree.Value(c.afe[i].ref); n.Local == atom.A {
				ref := c.afe[i].ref
				c.adoptionAgency(atom.A)
				c.oe.remove(ref)
				c.afe.remove(ref)
				break
			}
		}
		c.reconstructActiveFormattingElements()
		c.addFormattingElement(tok)
	case atom.B, atom.Big, atom.Code, atom.Em, atom.Font, atom.I, atom.S,
		atom.Small, atom.Strike, atom.Strong, atom.Tt, atom.U:
		c.reconstructActiveFormattingElements()
		c.addFormattingElement(tok)
	case atom.Nobr:
		c.reconstructActiveFormattingElements()
		if c.elementInScope(defaultScope, atom.Nobr) {
			c.adoptionAgency(atom.Nobr)
			c.reconstructActiveFormattingElements()
		}
		c.addFormattingElement(tok)
	case atom.Applet, atom.Marquee, atom.Object:
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
		c.afe = append(c.afe, afeEntry{marker: true})
		c.framesetOK = false
	case atom.Table:
		if doc := c.tree.Value(c.doc); doc.Mode != domtree.Quirks {
			c.popUntil(buttonScope, atom.P)
		}
		c.addElement(tok)
		c.framesetOK = false
		c.im = mInTable
	case atom.Area, atom.Br, atom.Embed, atom.Img, atom.Keygen, atom.Wbr:
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
		c.oe.pop()
		c.acknowledgeSelfClosing(tok)
		c.framesetOK = false
	case atom.Input:
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
		c.oe.pop()
		c.acknowledgeSelfClosing(tok)
		if v, ok := tok.Attribute("type"); !ok || !strings.EqualFold(v, "hidden") {
			c.framesetOK = false
		}
	case atom.Param, atom.Source, atom.Track:
		c.addElement(tok)
		c.oe.pop()
		c.acknowledgeSelfClosing(tok)
	case atom.Hr:
		c.popUntil(buttonScope, atom.P)
		c.addElement(tok)
		c.oe.pop()
		c.acknowledgeSelfClosing(tok)
		c.framesetOK = false
	case atom.Textarea:
		c.addElement(tok)
		c.setContentModel(tokenizer.RCDATAState)
		c.setOriginalIM()
		c.im = mText
		c.framesetOK = false
	case atom.Xmp:
		c.popUntil(buttonScope, atom.P)
		c.reconstructActiveFormattingElements()
		c.framesetOK = false
		c.addElement(tok)
		c.setContentModel(tokenizer.RAWTEXTState)
		c.setOriginalIM()
		c.im = mText
	case atom.Iframe:
		c.framesetOK = false
		c.addElement(tok)
		c.setContentModel(tokenizer.RAWTEXTState)
		c.setOriginalIM()
		c.im = mText
	case atom.Noembed:
		c.addElement(tok)
		c.setContentModel(tokenizer.RAWTEXTState)
		c.setOriginalIM()
		c.im = mText
	case atom.Select:
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
		c.framesetOK = false
		switch c.im {
		case mInTable, mInCaption, mInTableBody, mInRow, mInCell:
			c.im = mInSelectInTable
		default:
			c.im = mInSelect
		}
	case atom.Optgroup, atom.Option:
		if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Option {
			c.oe.pop()
		}
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
	case atom.Rp, atom.Rt:
		if c.elementInScope(defaultScope, atom.Ruby) {
			c.generateImpliedEndTags()
		}
		c.addElement(tok)
	case atom.Math:
		c.reconstructActiveFormattingElements()
		ref := c.addChild(domtree.NewElement(atom.MathML, tok.TagAtom, tok.TagName))
		c.setAttrsFromToken(ref, tok)
		if tok.SelfClosing {
			c.oe.pop()
			c.acknowledgeSelfClosing(tok)
		}
	case atom.Svg:
		c.reconstructActiveFormattingElements()
		ref := c.addChild(domtree.NewElement(atom.SVG, tok.TagAtom, tok.TagName))
		c.setAttrsFromToken(ref, tok)
		if tok.SelfClosing {
			c.oe.pop()
			c.acknowledgeSelfClosing(tok)
		}
	default:
		c.reconstructActiveFormattingElements()
		c.addElement(tok)
	}
	return true
}

func (c *Constructor) setAttrsFromToken(ref domtree.Ref, tok *token.Token) {
	n := c.tree.Value(ref)
	for _, a := range tok.Attr {
		if a.Omitted {
			continue
		}
		n.Attrs = append(n.Attrs, domtree.Attr{Namespace: a.Namespace, Prefix: a.Prefix, Local: a.Atom, LocalName: a.Name, Value: a.Value})
	}
}

func inBodyEndTag(c *Constructor, tok *token.Token) bool {
	switch tok.TagAtom {
	case atom.Body:
		if c.elementInScope(defaultScope, atom.Body) {
			c.im = mAfterBody
		} else {
			c.errorf("unexpected-end-tag")
		}
	case atom.Html:
		if c.elementInScope(defaultScope, atom.Body) {
			inBodyEndTag(c, &token.Token{Type: token.EndTag, TagAtom: atom.Body, TagName: "body"})
			return false
		}
		return true
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Button,
		atom.Center, atom.Details, atom.Dialog, atom.Dir, atom.Div, atom.Dl,
		atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer, atom.Header,
		atom.Hgroup, atom.Listing, atom.Main, atom.Menu, atom.Nav, atom.Ol,
		atom.Pre, atom.Section, atom.Summary, atom.Ul:
		if !c.elementInScope(defaultScope, tok.TagAtom) {
			c.errorf("unexpected-end-tag")
			return true
		}
		c.generateImpliedEndTags()
		c.popUntil(defaultScope, tok.TagAtom)
	case atom.Form:
		if c.oe.contains(atom.Template, c.tree) {
			i := c.indexOfElementInScope(defaultScope, atom.Form)
			if i == -1 {
				return true
			}
			c.generateImpliedEndTags()
			if c.tree.Value(c.oe[i]).Local != atom.Form {
				return true
			}
			c.popUntil(defaultScope, atom.Form)
		} else {
			node := c.formElement
			c.formElement = 0
			i := c.indexOfElementInScope(defaultScope, atom.Form)
			if node == 0 || i == -1 || c.oe[i] != node {
				return true
			}
			c.generateImpliedEndTags()
			c.oe.remove(node)
		}
	case atom.P:
		if !c.elementInScope(buttonScope, atom.P) {
			c.addElement(&token.Token{Type: token.StartTag, TagAtom: atom.P, TagName: "p"})
		}
		c.popUntil(buttonScope, atom.P)
	case atom.Li:
		if !c.elementInScope(listItemScope, atom.Li) {
			c.errorf("unexpected-end-tag")
			return true
		}
		c.generateImpliedEndTags(atom.Li)
		c.popUntil(listItemScope, atom.Li)
	case atom.Dd, atom.Dt:
		if !c.elementInScope(defaultScope, tok.TagAtom) {
			c.errorf("unexpected-end-tag")
			return true
		}
		c.generateImpliedEndTags(tok.TagAtom)
		c.popUntil(defaultScope, tok.TagAtom)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		if !c.elementInScope(defaultScope, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6) {
			c.errorf("unexpected-end-tag")
			return true
		}
		c.generateImpliedEndTags()
		c.popUntil(defaultScope, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)
	case atom.A, atom.B, atom.Big, atom.Code, atom.Em, atom.Font, atom.I,
		atom.Nobr, atom.S, atom.Small, atom.Strike, atom.Strong, atom.Tt, atom.U:
		c.adoptionAgency(tok.TagAtom)
	case atom.Applet, atom.Marquee, atom.Object:
		if c.popUntil(defaultScope, tok.TagAtom) {
			c.clearActiveFormattingElements()
		}
	case atom.Br:
		c.addElement(&token.Token{Type: token.StartTag, TagAtom: atom.Br, TagName: "br"})
	default:
		c.inBodyEndTagOther(tok.TagAtom)
	}
	return true
}

func textMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.EOF:
		c.errorf("eof-in-text")
		c.oe.pop()
		c.im = c.originalIM
		return false
	case token.Character:
		d := tok.Data
		if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Textarea {
			if c.lastChild(c.top()) == 0 {
				d = stripLeadingNewline(d)
			}
		}
		c.addText(d)
		return true
	case token.EndTag:
		c.oe.pop()
		c.im = c.originalIM
		return true
	}
	return true
}

func clearStackBackToTableContext(c *Constructor) {
	for {
		n := c.currentNode()
		if n.ElemNamespace == atom.HTML {
			switch n.Local {
			case atom.Table, atom.Html, atom.Template:
				return
			}
		}
		c.oe.pop()
	}
}

func clearStackBackToTableBodyContext(c *Constructor) {
	for {
		n := c.currentNode()
		if n.ElemNamespace == atom.HTML {
			switch n.Local {
			case atom.Tbody, atom.Tfoot, atom.Thead, atom.Html, atom.Template:
				return
			}
		}
		c.oe.pop()
	}
}

func clearStackBackToTableRowContext(c *Constructor) {
	for {
		n := c.currentNode()
		if n.ElemNamespace == atom.HTML {
			switch n.Local {
			case atom.Tr, atom.Html, atom.Template:
				return
			}
		}
		c.oe.pop()
	}
}

func inTableMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if n := c.currentNode(); n.ElemNamespace == atom.HTML {
			switch n.Local {
			case atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
				c.originalIM = c.im
				c.pendingTableChars.Reset()
				c.tableCharsNonWS = false
				c.im = mInTableText
				return false
			}
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Caption:
			clearStackBackToTableContext(c)
			c.afe = append(c.afe, afeEntry{marker: true})
			c.addElement(tok)
			c.im = mInCaption
			return true
		case atom.Colgroup:
			clearStackBackToTableContext(c)
			c.addElement(tok)
			c.im = mInColumnGroup
			return true
		case atom.Col:
			clearStackBackToTableContext(c)
			c.addChild(domtree.NewElement(atom.HTML, atom.Colgroup, "colgroup"))
			c.im = mInColumnGroup
			return false
		case atom.Tbody, atom.Tfoot, atom.Thead:
			clearStackBackToTableContext(c)
			c.addElement(tok)
			c.im = mInTableBody
			return true
		case atom.Td, atom.Th, atom.Tr:
			clearStackBackToTableContext(c)
			c.addElement(&token.Token{Type: token.StartTag, TagAtom: atom.Tbody, TagName: "tbody"})
			c.im = mInTableBody
			return false
		case atom.Table:
			c.errorf("unexpected-start-tag")
			if c.popUntil(tableScope, atom.Table) {
				c.resetInsertionMode()
				return false
			}
			return true
		case atom.Style, atom.Script, atom.Template:
			return inHeadMode(c, tok)
		case atom.Input:
			if v, ok := tok.Attribute("type"); ok && strings.EqualFold(v, "hidden") {
				c.addElement(tok)
				c.oe.pop()
				c.acknowledgeSelfClosing(tok)
				return true
			}
		case atom.Form:
			if c.formElement == 0 && !c.oe.contains(atom.Template, c.tree) {
				ref := c.addElement(tok)
				c.oe.pop()
				c.formElement = ref
			}
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Table:
			if c.popUntil(tableScope, atom.Table) {
				c.resetInsertionMode()
			}
			return true
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html,
			atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr:
			c.errorf("unexpected-end-tag")
			return true
		case atom.Template:
			return inTemplateMode(c, tok)
		}
	case token.EOF:
		return inBodyMode(c, tok)
	}
	c.fosterParent = true
	consumed := inBodyMode(c, tok)
	c.fosterParent = false
	return consumed
}

func inTableTextMode(c *Constructor, tok *token.Token) bool {
	if tok.Type == token.Character {
		if strings.Contains(tok.Data, "\x00") {
			return true
		}
		c.pendingTableChars.WriteString(tok.Data)
		if !isAllWhitespace(tok.Data) {
			c.tableCharsNonWS = true
		}
		return true
	}

	text := c.pendingTableChars.String()
	c.pendingTableChars.Reset()
	if text != "" {
		if c.tableCharsNonWS {
			c.fosterParent = true
			c.addText(text)
			c.fosterParent = false
			c.framesetOK = false
		} else {
			c.addText(text)
		}
	}
	c.tableCharsNonWS = false
	c.im = c.originalIM
	return false
}

func inCaptionMode(c *Constructor, tok *token.Token) bool {
	closeCaption := func() bool {
		if !c.elementInScope(tableScope, atom.Caption) {
			return false
		}
		c.generateImpliedEndTags()
		c.popUntil(tableScope, atom.Caption)
		c.clearActiveFormattingElements()
		c.im = mInTable
		return true
	}

	switch tok.Type {
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td,
			atom.Tfoot, atom.Th, atom.Thead, atom.Tr:
			if closeCaption() {
				return false
			}
			return true
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Caption:
			closeCaption()
			return true
		case atom.Table:
			if closeCaption() {
				return false
			}
			return true
		case atom.Body, atom.Col, atom.Colgroup, atom.Html, atom.Tbody,
			atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr:
			c.errorf("unexpected-end-tag")
			return true
		}
	}
	return inBodyMode(c, tok)
}

func inColumnGroupMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			c.addText(tok.Data)
			return true
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Col:
			c.addElement(tok)
			c.oe.pop()
			c.acknowledgeSelfClosing(tok)
			return true
		case atom.Template:
			return inHeadMode(c, tok)
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Colgroup:
			if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Colgroup {
				c.oe.pop()
				c.im = mInTable
			} else {
				c.errorf("unexpected-end-tag")
			}
			return true
		case atom.Col:
			c.errorf("unexpected-end-tag")
			return true
		case atom.Template:
			return inTemplateMode(c, tok)
		}
	case token.EOF:
		return inBodyMode(c, tok)
	}
	if n := c.currentNode(); !(n.ElemNamespace == atom.HTML && n.Local == atom.Colgroup) {
		return true
	}
	c.oe.pop()
	c.im = mInTable
	return false
}

func inTableBodyMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Tr:
			clearStackBackToTableBodyContext(c)
			c.addElement(tok)
			c.im = mInRow
			return true
		case atom.Th, atom.Td:
			clearStackBackToTableBodyContext(c)
			c.addElement(&token.Token{Type: token.StartTag, TagAtom: atom.Tr, TagName: "tr"})
			c.im = mInRow
			return false
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Tfoot, atom.Thead:
			if !c.elementInScope(tableScope, atom.Tbody, atom.Thead, atom.Tfoot) {
				c.errorf("unexpected-start-tag")
				return true
			}
			clearStackBackToTableBodyContext(c)
			c.oe.pop()
			c.im = mInTable
			return false
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Tbody, atom.Tfoot, atom.Thead:
			if !c.elementInScope(tableScope, tok.TagAtom) {
				c.errorf("unexpected-end-tag")
				return true
			}
			clearStackBackToTableBodyContext(c)
			c.oe.pop()
			c.im = mInTable
			return true
		case atom.Table:
			if !c.elementInScope(tableScope, atom.Tbody, atom.Thead, atom.Tfoot) {
				c.errorf("unexpected-end-tag")
				return true
			}
			clearStackBackToTableBodyContext(c)
			c.oe.pop()
			c.im = mInTable
			return false
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html, atom.Td, atom.Th, atom.Tr:
			c.errorf("unexpected-end-tag")
			return true
		}
	}
	return inTableMode(c, tok)
}

func inRowMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Th, atom.Td:
			clearStackBackToTableRowContext(c)
			c.addElement(tok)
			c.im = mInCell
			c.afe = append(c.afe, afeEntry{marker: true})
			return true
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
			if !c.elementInScope(tableScope, atom.Tr) {
				c.errorf("unexpected-start-tag")
				return true
			}
			clearStackBackToTableRowContext(c)
			c.oe.pop()
			c.im = mInTableBody
			return false
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Tr:
			if !c.elementInScope(tableScope, atom.Tr) {
				c.errorf("unexpected-end-tag")
				return true
			}
			clearStackBackToTableRowContext(c)
			c.oe.pop()
			c.im = mInTableBody
			return true
		case atom.Table:
			if !c.elementInScope(tableScope, atom.Tr) {
				c.errorf("unexpected-end-tag")
				return true
			}
			clearStackBackToTableRowContext(c)
			c.oe.pop()
			c.im = mInTableBody
			return false
		case atom.Tbody, atom.Tfoot, atom.Thead:
			if !c.elementInScope(tableScope, tok.TagAtom) || !c.elementInScope(tableScope, atom.Tr) {
				c.errorf("unexpected-end-tag")
				return true
			}
			clearStackBackToTableRowContext(c)
			c.oe.pop()
			c.im = mInTableBody
			return false
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html, atom.Td, atom.Th:
			c.errorf("unexpected-end-tag")
			return true
		}
	}
	return inTableMode(c, tok)
}

func inCellMode(c *Constructor, tok *token.Token) bool {
	closeCell := func() {
		c.generateImpliedEndTags()
		if n := c.currentNode(); n.ElemNamespace == atom.HTML && (n.Local == atom.Td || n.Local == atom.Th) {
			c.popUntil(tableScope, n.Local)
		} else {
			c.popUntil(tableScope, atom.Td, atom.Th)
		}
		c.clearActiveFormattingElements()
		c.im = mInRow
	}

	switch tok.Type {
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Td, atom.Th:
			if !c.elementInScope(tableScope, tok.TagAtom) {
				c.errorf("unexpected-end-tag")
				return true
			}
			closeCell()
			return true
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html:
			c.errorf("unexpected-end-tag")
			return true
		case atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
			if !c.elementInScope(tableScope, tok.TagAtom) {
				c.errorf("unexpected-end-tag")
				return true
			}
			closeCell()
			return false
		}
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td,
			atom.Tfoot, atom.Th, atom.Thead, atom.Tr:
			if c.elementInScope(tableScope, atom.Td) || c.elementInScope(tableScope, atom.Th) {
				closeCell()
				return false
			}
			return true
		}
	}
	return inBodyMode(c, tok)
}

func inSelectMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if strings.Contains(tok.Data, "\x00") {
			return true
		}
		c.addText(tok.Data)
		return true
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.EOF:
		return inBodyMode(c, tok)
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Option:
			if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Option {
				c.oe.pop()
			}
			c.addElement(tok)
			return true
		case atom.Optgroup:
			if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Option {
				c.oe.pop()
			}
			if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Optgroup {
				c.oe.pop()
			}
			c.addElement(tok)
			return true
		case atom.Select:
			c.errorf("unexpected-start-tag")
			if c.elementInScope(selectScope, atom.Select) {
				c.popUntil(selectScope, atom.Select)
				c.resetInsertionMode()
			}
			return true
		case atom.Input, atom.Keygen, atom.Textarea:
			c.errorf("unexpected-start-tag")
			if !c.elementInScope(selectScope, atom.Select) {
				return true
			}
			c.popUntil(selectScope, atom.Select)
			c.resetInsertionMode()
			return false
		case atom.Script, atom.Template:
			return inHeadMode(c, tok)
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Optgroup:
			n := c.currentNode()
			if n.ElemNamespace == atom.HTML && n.Local == atom.Option && len(c.oe) > 1 {
				if p := c.tree.Value(c.oe[len(c.oe)-2]); p.ElemNamespace == atom.HTML && p.Local == atom.Optgroup {
					c.oe.pop()
				}
			}
			if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Optgroup {
				c.oe.pop()
			} else {
				c.errorf("unexpected-end-tag")
			}
			return true
		case atom.Option:
			if n := c.currentNode(); n.ElemNamespace == atom.HTML && n.Local == atom.Option {
				c.oe.pop()
			} else {
				c.errorf("unexpected-end-tag")
			}
			return true
		case atom.Select:
			if !c.elementInScope(selectScope, atom.Select) {
				c.errorf("unexpected-end-tag")
				return true
			}
			c.popUntil(selectScope, atom.Select)
			c.resetInsertionMode()
			return true
		case atom.Template:
			return inTemplateMode(c, tok)
		}
	}
	c.errorf("unexpected-token")
	return true
}

func inSelectInTableMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Caption, atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr, atom.Td, atom.Th:
			c.errorf("unexpected-start-tag")
			c.popUntil(selectScope, atom.Select)
			c.resetInsertionMode()
			return false
		}
	case token.EndTag:
		switch tok.TagAtom {
		case atom.Caption, atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr, atom.Td, atom.Th:
			if !c.elementInScope(tableScope, tok.TagAtom) {
				c.errorf("unexpected-end-tag")
				return true
			}
			c.popUntil(selectScope, atom.Select)
			c.resetInsertionMode()
			return false
		}
	}
	return inSelectMode(c, tok)
}

func inTemplateMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta,
			atom.Noframes, atom.Script, atom.Style, atom.Template, atom.Title:
			return inHeadMode(c, tok)
		case atom.Caption, atom.Colgroup, atom.Tbody, atom.Tfoot, atom.Thead:
			c.popTemplateMode()
			c.templateModes = append(c.templateModes, mInTable)
			c.im = mInTable
			return false
		case atom.Col:
			c.popTemplateMode()
			c.templateModes = append(c.templateModes, mInColumnGroup)
			c.im = mInColumnGroup
			return false
		case atom.Tr:
			c.popTemplateMode()
			c.templateModes = append(c.templateModes, mInTableBody)
			c.im = mInTableBody
			return false
		case atom.Td, atom.Th:
			c.popTemplateMode()
			c.templateModes = append(c.templateModes, mInRow)
			c.im = mInRow
			return false
		default:
			c.popTemplateMode()
			c.templateModes = append(c.templateModes, mInBody)
			c.im = mInBody
			return false
		}
	case token.EndTag:
		if tok.TagAtom == atom.Template {
			if !c.oe.contains(atom.Template, c.tree) {
				return true
			}
			c.generateImpliedEndTags()
			c.popUntil(defaultScope, atom.Template)
			c.clearActiveFormattingElements()
			c.popTemplateMode()
			c.resetInsertionMode()
			return true
		}
		c.errorf("unexpected-end-tag")
		return true
	case token.Character, token.Comment, token.Doctype:
		return inBodyMode(c, tok)
	case token.EOF:
		if !c.oe.contains(atom.Template, c.tree) {
			return true
		}
		c.popUntil(defaultScope, atom.Template)
		c.clearActiveFormattingElements()
		c.popTemplateMode()
		c.resetInsertionMode()
		return false
	}
	return true
}

func (c *Constructor) popTemplateMode() {
	if len(c.templateModes) > 0 {
		c.templateModes = c.templateModes[:len(c.templateModes)-1]
	}
}

func afterBodyMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return inBodyMode(c, tok)
		}
	case token.Comment:
		c.appendChild(c.oe[0], domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		if tok.TagAtom == atom.Html {
			return inBodyMode(c, tok)
		}
	case token.EndTag:
		if tok.TagAtom == atom.Html {
			c.im = mAfterAfterBody
			return true
		}
	case token.EOF:
		return true
	}
	c.im = mInBody
	return false
}

func inFramesetMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			c.addText(tok.Data)
			return true
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Frameset:
			c.addElement(tok)
			return true
		case atom.Frame:
			c.addElement(tok)
			c.oe.pop()
			c.acknowledgeSelfClosing(tok)
			return true
		case atom.Noframes:
			return inHeadMode(c, tok)
		}
	case token.EndTag:
		if tok.TagAtom == atom.Frameset {
			if len(c.oe) > 1 {
				c.oe.pop()
			}
			if n := c.currentNode(); !(n.ElemNamespace == atom.HTML && n.Local == atom.Frameset) {
				c.im = mAfterFrameset
			}
			return true
		}
	case token.EOF:
		return true
	}
	c.errorf("unexpected-token")
	return true
}

func afterFramesetMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Character:
		if isAllWhitespace(tok.Data) {
			c.addText(tok.Data)
			return true
		}
	case token.Comment:
		c.addChild(domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		c.errorf("unexpected-doctype")
		return true
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Noframes:
			return inHeadMode(c, tok)
		}
	case token.EndTag:
		if tok.TagAtom == atom.Html {
			c.im = mAfterAfterFrameset
			return true
		}
	case token.EOF:
		return true
	}
	c.errorf("unexpected-token")
	return true
}

func afterAfterBodyMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Comment:
		c.appendChild(c.doc, domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		return inBodyMode(c, tok)
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return inBodyMode(c, tok)
		}
	case token.StartTag:
		if tok.TagAtom == atom.Html {
			return inBodyMode(c, tok)
		}
	case token.EOF:
		return true
	}
	c.im = mInBody
	return false
}

func afterAfterFramesetMode(c *Constructor, tok *token.Token) bool {
	switch tok.Type {
	case token.Comment:
		c.appendChild(c.doc, domtree.NewComment(tok.Data))
		return true
	case token.Doctype:
		return inBodyMode(c, tok)
	case token.Character:
		if isAllWhitespace(tok.Data) {
			return inBodyMode(c, tok)
		}
	case token.StartTag:
		switch tok.TagAtom {
		case atom.Html:
			return inBodyMode(c, tok)
		case atom.Noframes:
			return inHeadMode(c, tok)
		}
	case token.EOF:
		return true
	}
	c.errorf("unexpected-token")
	return true
}

// resetInsertionMode implements spec.md §4.5's "reset the insertion mode
// appropriately", used when a <select> end tag closes a select-in-table
// context and when fragment parsing seeds the initial mode.
func (c *Constructor) resetInsertionMode() {
	for i := len(c.oe) - 1; i >= 0; i-- {
		last := i == 0
		var n *domtree.Node
		if last && c.fragmentContext != nil {
			n = c.fragmentContext
		} else {
			n = c.tree.Value(c.oe[i])
		}
		if n.ElemNamespace == atom.HTML {
			switch n.Local {
			case atom.Select:
				for j := i - 1; j >= 0; j-- {
					anc := c.tree.Value(c.oe[j])
					if anc.ElemNamespace != atom.HTML {
						continue
					}
					if anc.Local == atom.Template {
						break
					}
					if anc.Local == atom.Table {
						c.im = mInSelectInTable
						return
					}
				}
				c.im = mInSelect
				return
			case atom.Td, atom.Th:
				if !last {
					c.im = mInCell
					return
				}
			case atom.Tr:
				c.im = mInRow
				return
			case atom.Tbody, atom.Thead, atom.Tfoot:
				c.im = mInTableBody
				return
			case atom.Caption:
				c.im = mInCaption
				return
			case atom.Colgroup:
				c.im = mInColumnGroup
				return
			case atom.Table:
				c.im = mInTable
				return
			case atom.Template:
				if len(c.templateModes) > 0 {
					c.im = c.templateModes[len(c.templateModes)-1]
					return
				}
				c.im = mInBody
				return
			case atom.Head:
				if !last {
					c.im = mInHead
					return
				}
			case atom.Body:
				c.im = mInBody
				return
			case atom.Frameset:
				c.im = mInFrameset
				return
			case atom.Html:
				if c.headElement == 0 {
					c.im = mBeforeHead
				} else {
					c.im = mAfterHead
				}
				return
			}
		}
		if last {
			c.im = mInBody
			return
		}
	}
	c.im = mInBody
}

func (c *Constructor) setContentModel(cm tokenizer.ContentModel) {
	if c.tok != nil {
		c.tok.SetContentModel(cm)
	}
}

func (c *Constructor) acknowledgeSelfClosing(tok *token.Token) {
	if tok.SelfClosing {
		tok.SelfClosing = false
	}
}

func (c *Constructor) errorf(name string) { c.ReportError(name) }
