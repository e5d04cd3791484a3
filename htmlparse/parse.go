// Package htmlparse wires the decoder, tokenizer, and tree constructor
// together into the two entry points spec.md §4.5 and §6 name:
// parse_document and parse_fragment. Grounded on
// dpotapov-go-pages/chtml/parse.go's own Parse/ParseWithSource pair, which
// owns the tokenizer and error-accumulation discipline this package
// generalizes to a pluggable decoder.
package htmlparse

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/tagtree/htmlkit/atom"
	"github.com/tagtree/htmlkit/construct"
	"github.com/tagtree/htmlkit/domtree"
	"github.com/tagtree/htmlkit/token"
	"github.com/tagtree/htmlkit/tokenizer"
)

// Confidence is the encoding-confidence state of spec.md §4.5: "tentative"
// means a <meta charset> seen while parsing may still override the guess;
// "certain" means the encoding came from an authoritative source (a BOM, an
// HTTP Content-Type header, or a caller-supplied hint) and no meta tag may
// override it.
type Confidence uint8

const (
	Tentative Confidence = iota
	Certain
)

// maxEncodingRestarts bounds the decode-retokenize loop. The WHATWG "change
// the encoding" algorithm can only raise confidence from tentative to
// certain once per parse, so a single restart always suffices; this is a
// defensive ceiling against a pathological host-supplied hint, not a
// normal code path.
const maxEncodingRestarts = 2

// Option configures ParseDocument / ParseFragment.
type Option func(*options)

type options struct {
	encodingHint string
	certain      bool
	contentType  string
}

// WithEncodingHint seeds the initial encoding guess from an external
// source such as an HTTP Content-Type charset parameter or a user's
// --encoding flag (spec.md §6's "encoding hint"). certain should be true
// only when the hint is authoritative (e.g. it came from a protocol-level
// header); otherwise a <meta charset> is still allowed to override it.
func WithEncodingHint(label string, certain bool) Option {
	return func(o *options) {
		o.encodingHint = label
		o.certain = certain
	}
}

// WithContentType passes an HTTP Content-Type header value through to the
// BOM/meta-prescan sniffer (golang.org/x/net/html/charset.DetermineEncoding
// also consults it for a charset parameter).
func WithContentType(ct string) Option {
	return func(o *options) { o.contentType = ct }
}

// Result is the outcome of a document or fragment parse: the tree plus the
// error list spec.md §7 requires parse_document/parse_fragment to return
// alongside the tree, never in place of it.
type Result struct {
	Tree     *domtree.Tree
	Doc      domtree.Ref // the Document node; use as the root for childByTag-style lookups
	Errors   []string
	Encoding string // canonical WHATWG encoding name actually used
}

// ParseDocument implements spec.md §4.5's parse_document(bytes,
// encoding-confidence, encoding-hint) -> (tree, errors). It resolves the
// initial encoding (caller hint, else BOM/meta sniff via
// golang.org/x/net/html/charset), and restarts the decode once from byte
// zero if a <meta charset> raises confidence to certain with a different
// encoding (spec.md §4.5 "Encoding feedback", §4.4 "Encoding restart").
func ParseDocument(r io.Reader, opts ...Option) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("htmlparse: read input: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	enc, confidence, err := initialEncoding(data, o)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxEncodingRestarts; attempt++ {
		tree := domtree.New()
		c := construct.New(tree)
		sink := &metaCharsetSink{Constructor: c, confidence: confidence, current: canonicalName(enc)}

		buf, err := decodeInto(data, enc, c.ReportError)
		if err != nil {
			return nil, fmt.Errorf("htmlparse: decode: %w", err)
		}
		tok := tokenizer.New(buf, sink)
		c.SetTokenizer(tok)
		tok.Run()

		if sink.changeTo != "" && confidence == Tentative {
			next, err := htmlindex.Get(sink.changeTo)
			if err == nil {
				enc = next
				confidence = Certain
				continue
			}
		}

		return &Result{Tree: tree, Doc: c.Document(), Errors: c.Errors(), Encoding: sink.current}, nil
	}

	return nil, fmt.Errorf("htmlparse: exceeded %d encoding restarts", maxEncodingRestarts)
}

// ParseFragment implements spec.md §4.5's parse_fragment(bytes,
// context-element, encoding-confidence, encoding-hint) -> (tree, errors).
// Fragment parsing never triggers an encoding restart: the context
// element's own document already settled on an encoding before the
// fragment's source text was extracted from it.
func ParseFragment(r io.Reader, tree *domtree.Tree, context domtree.Node, opts ...Option) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("htmlparse: read input: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	enc, _, err := initialEncoding(data, o)
	if err != nil {
		return nil, err
	}

	c := construct.NewFragment(tree, context)

	buf, err := decodeInto(data, enc, c.ReportError)
	if err != nil {
		return nil, fmt.Errorf("htmlparse: decode: %w", err)
	}

	tok := tokenizer.New(buf, c)
	tok.SetContentModel(construct.FragmentContentModel(context))
	if context.ElemNamespace == atom.HTML {
		tok.SetLastStartTagName(context.TagName())
	}
	c.SetTokenizer(tok)
	tok.Run()

	return &Result{Tree: tree, Doc: c.Document(), Errors: c.Errors(), Encoding: canonicalName(enc)}, nil
}

// initialEncoding resolves the encoding to start decoding with and the
// confidence that goes with it, per spec.md §4.4's three inputs: a
// caller-asserted hint, else a BOM/meta sniff, defaulting to UTF-8 under
// tentative confidence (spec.md §4.5's default).
func initialEncoding(data []byte, o options) (encoding.Encoding, Confidence, error) {
	if o.encodingHint != "" {
		enc, err := htmlindex.Get(o.encodingHint)
		if err != nil {
			return nil, Tentative, fmt.Errorf("htmlparse: unknown encoding hint %q: %w", o.encodingHint, err)
		}
		if o.certain {
			return enc, Certain, nil
		}
		return enc, Tentative, nil
	}

	enc, _, certain := charset.DetermineEncoding(data, o.contentType)
	if certain {
		return enc, Certain, nil
	}
	return enc, Tentative, nil
}

// decodeInto runs data through enc's decoder and pushes the resulting code
// points into a fresh tokenizer.Buffer. Malformed byte sequences are
// replaced with U+FFFD by the decoder per spec.md §7's "invalid UTF-8 ...
// replaced with U+FFFD before reaching the parser". onError receives the
// buffer's own normalization errors (surrogate-in-input-stream and
// friends) so they end up in the same Result.Errors list as the
// tokenizer's and constructor's.
func decodeInto(data []byte, enc encoding.Encoding, onError tokenizer.ErrorSink) (*tokenizer.Buffer, error) {
	buf := tokenizer.NewBuffer(onError)

	r := bufio.NewReader(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	for {
		ch, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		buf.Push(ch)
	}
	buf.SetEOF()
	return buf, nil
}

func canonicalName(enc encoding.Encoding) string {
	name, err := htmlindex.Name(enc)
	if err != nil {
		return ""
	}
	return name
}

// metaCharsetSink forwards to a *construct.Constructor but watches
// StartTag "meta" tokens for a charset declaration while confidence is
// still tentative (spec.md §4.5's "Encoding feedback"). It never aborts
// the in-progress parse early: per spec.md §4.4, "the parser provides the
// necessary signal but performs no retry itself", so ParseDocument decides
// whether to restart only after this pass finishes.
type metaCharsetSink struct {
	*construct.Constructor
	confidence Confidence
	current    string
	changeTo   string
}

func (s *metaCharsetSink) ProcessToken(tok *token.Token) {
	if s.changeTo == "" && s.confidence == Tentative && tok.Type == token.StartTag && tok.TagAtom == atom.Meta {
		if label, ok := metaCharsetLabel(tok); ok {
			if canon, err := htmlindex.Get(label); err == nil {
				if name, _ := htmlindex.Name(canon); name != "" && name != s.current {
					s.changeTo = name
				}
			}
		}
	}
	s.Constructor.ProcessToken(tok)
}

// metaCharsetLabel extracts an encoding label from a <meta> start tag, per
// spec.md §4.5: either a bare charset="..." attribute, or an
// http-equiv="content-type" meta's content="...;charset=..." parameter.
func metaCharsetLabel(tok *token.Token) (string, bool) {
	if v, ok := tok.Attribute("charset"); ok && v != "" {
		return v, true
	}
	equiv, ok := tok.Attribute("http-equiv")
	if !ok || !stringsEqualFold(equiv, "content-type") {
		return "", false
	}
	content, ok := tok.Attribute("content")
	if !ok {
		return "", false
	}
	return extractCharsetFromContentType(content)
}

// extractCharsetFromContentType implements the WHATWG "extracting a
// character encoding from a meta element" algorithm's content-type half:
// scan for the substring "charset" case-insensitively, skip to the '=',
// then read a quoted or bare token as the label.
func extractCharsetFromContentType(s string) (string, bool) {
	lower := toLowerASCII(s)
	idx := indexString(lower, "charset")
	if idx == -1 {
		return "", false
	}
	i := idx + len("charset")
	i = skipWhitespace(s, i)
	if i >= len(s) || s[i] != '=' {
		return "", false
	}
	i++
	i = skipWhitespace(s, i)
	if i >= len(s) {
		return "", false
	}
	if s[i] == '"' || s[i] == '\'' {
		quote := s[i]
		i++
		start := i
		for i < len(s) && s[i] != quote {
			i++
		}
		if i >= len(s) {
			return "", false
		}
		return s[start:i], true
	}
	start := i
	for i < len(s) && s[i] != ';' && !isSpaceByte(s[i]) {
		i++
	}
	if start == i {
		return "", false
	}
	return s[start:i], true
}

func skipWhitespace(s string, i int) int {
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func indexString(haystack, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if haystack[i:i+n] == needle {
			return i
		}
	}
	return -1
}

func stringsEqualFold(a, b string) bool {
	return toLowerASCII(a) == toLowerASCII(b)
}
