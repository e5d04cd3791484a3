package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCommandPrintsSerializedDocument(t *testing.T) {
	path := writeTempHTML(t, `<p>Hello HTML!</p>`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse", path})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "<html><head></head><body><p>Hello HTML!</p></body></html>\n", out.String())
}

func TestParseCommandWithQueryPrintsOnlyMatches(t *testing.T) {
	path := writeTempHTML(t, `<ul><li>one</li><li>two</li></ul>`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse", "--query", "li", path})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "<li>one</li>\n<li>two</li>\n", out.String())
}
