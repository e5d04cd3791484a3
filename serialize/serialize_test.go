package serialize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagtree/htmlkit/htmlparse"
)

func mustParse(t *testing.T, src string) (*htmlparse.Result, string) {
	t.Helper()
	res, err := htmlparse.ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	return res, src
}

// TestSimpleParagraphRoundTrips exercises spec.md §8's named scenario:
// <p>Hello HTML!</p> parses to a document whose serialization is
// <html><head></head><body><p>Hello HTML!</p></body></html>.
func TestSimpleParagraphRoundTrips(t *testing.T) {
	res, _ := mustParse(t, `<p>Hello HTML!</p>`)

	out, err := String(res.Tree, res.Doc)
	require.NoError(t, err)
	assert.Equal(t, "<html><head></head><body><p>Hello HTML!</p></body></html>", out)
}

func TestVoidElementHasNoEndTag(t *testing.T) {
	res, _ := mustParse(t, `<p>one<br>two</p>`)

	out, err := String(res.Tree, res.Doc)
	require.NoError(t, err)
	assert.Contains(t, out, "one<br>two")
	assert.NotContains(t, out, "</br>")
}

func TestAttributeValuesAreEscaped(t *testing.T) {
	res, _ := mustParse(t, `<a href="?bill&ted">x</a>`)

	out, err := String(res.Tree, res.Doc)
	require.NoError(t, err)
	assert.Contains(t, out, `href="?bill&amp;ted"`)
}

func TestTextContentIsEscaped(t *testing.T) {
	res, _ := mustParse(t, `<p>1 &lt; 2 &amp; 3 &gt; 0</p>`)

	out, err := String(res.Tree, res.Doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>1 &lt; 2 &amp; 3 &gt; 0</p>")
}

func TestScriptContentIsNotEscaped(t *testing.T) {
	res, _ := mustParse(t, `<script>if (a < b && c) { x(); }</script>`)

	out, err := String(res.Tree, res.Doc)
	require.NoError(t, err)
	assert.Contains(t, out, "if (a < b && c) { x(); }")
}

func TestCommentRoundTrips(t *testing.T) {
	res, _ := mustParse(t, `<!--hello--><p>x</p>`)

	out, err := String(res.Tree, res.Doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<!--hello-->")
}
