package atom

// tagNames and attrNames are the generated-data tables spec.md §2 assigns a
// 5% "share" and explicitly places out of this spec's core (§1, "the set of
// pre-generated ... atom tables (treated as fixed lookup tables)"). The
// lists below are a representative subset of the full HTML/SVG/MathML
// vocabulary, sufficient to exercise every branch of the tree constructor
// and selector matcher that this module implements.
var tagNames = []string{
	"a", "abbr", "address", "applet", "area", "article", "aside", "audio",
	"b", "base", "basefont", "bgsound", "bdi", "bdo", "big", "blockquote",
	"body", "br", "button",
	"canvas", "caption", "center", "cite", "code", "col", "colgroup",
	"data", "datalist", "dd", "del", "details", "dfn", "dialog", "dir",
	"div", "dl", "dt",
	"em", "embed",
	"fieldset", "figcaption", "figure", "font", "footer", "foreignObject",
	"form", "frame", "frameset",
	"h1", "h2", "h3", "h4", "h5", "h6", "head", "header", "hgroup", "hr",
	"html",
	"i", "iframe", "img", "input", "ins",
	"kbd", "keygen",
	"label", "legend", "li", "link", "listing",
	"main", "map", "mark", "marquee", "math", "menu", "meta", "meter",
	"mi", "mn", "mo", "ms", "mtext", "annotation-xml",
	"nav", "nobr", "noembed", "noframes", "noscript",
	"object", "ol", "optgroup", "option", "output",
	"p", "param", "picture", "plaintext", "pre", "progress",
	"q",
	"rp", "rt", "ruby",
	"s", "samp", "script", "section", "select", "slot", "small", "source",
	"span", "strike", "strong", "style", "sub", "summary", "sup", "svg",
	"table", "tbody", "td", "template", "textarea", "tfoot", "th", "thead",
	"time", "title", "tr", "track", "tt",
	"u", "ul",
	"var", "video",
	"wbr",
	"xmp",
	"desc",
}

var attrNames = []string{
	"abbr", "accept", "accept-charset", "accesskey", "action", "align",
	"alt", "async", "autocomplete", "autofocus", "autoplay",
	"background", "bgcolor", "border",
	"charset", "checked", "cite", "class", "color", "cols", "colspan",
	"content", "contenteditable", "controls", "coords",
	"data", "datetime", "default", "defer", "dir", "dirname", "disabled",
	"download", "draggable", "dropzone",
	"enctype",
	"for", "form", "formaction", "formenctype", "formmethod",
	"formnovalidate", "formtarget",
	"headers", "height", "hidden", "high", "href", "hreflang",
	"http-equiv",
	"id",
	"ismap",
	"kind",
	"label", "lang", "list", "loop", "low",
	"max", "maxlength", "media", "method", "min", "multiple", "muted",
	"name", "novalidate",
	"onblur", "onchange", "onclick", "onerror", "onfocus", "onload",
	"open", "optimum",
	"pattern", "ping", "placeholder", "poster", "preload",
	"readonly", "rel", "required", "reversed", "rows", "rowspan",
	"sandbox", "scope", "selected", "shape", "size", "sizes", "span",
	"spellcheck", "src", "srcdoc", "srclang", "srcset", "start", "step",
	"style",
	"tabindex", "target", "title", "translate", "type",
	"usemap",
	"value",
	"width", "wrap",
	"xlink:actuate", "xlink:arcrole", "xlink:href", "xlink:role",
	"xlink:show", "xlink:title", "xlink:type",
	"xml:base", "xml:lang", "xml:space",
	"xmlns", "xmlns:xlink",
}
