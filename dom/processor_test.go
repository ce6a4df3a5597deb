package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTextMapBlockBoundaries(t *testing.T) {
	root, err := Parse(`<p>Alpha beta.</p><p>Gamma delta.</p>`)
	require.NoError(t, err)

	tm := BuildTextMap(root, "html-hl")
	// Each <p> is a block boundary; the separator is inserted both before and
	// after its children, so a trailing paragraph also leaves a trailing '\n'.
	require.Equal(t, "Alpha beta.\nGamma delta.\n", tm.PlainText)
}

func TestBuildTextMapSkipsScriptStyleAndMarker(t *testing.T) {
	root, err := Parse(`<p>keep</p><script>drop()</script><style>.x{}</style><html-hl>dropped</html-hl>`)
	require.NoError(t, err)

	tm := BuildTextMap(root, "html-hl")
	require.Equal(t, "keep\n", tm.PlainText)
}

func TestBuildTextMapNoConsecutiveNewlines(t *testing.T) {
	root, err := Parse(`<div><p>one</p><p></p><p>two</p></div>`)
	require.NoError(t, err)

	tm := BuildTextMap(root, "html-hl")
	require.Equal(t, "one\ntwo\n", tm.PlainText)
}

func TestRemoveHighlightsUnwrapsAndNormalizes(t *testing.T) {
	root, err := Parse(`<p>a<html-hl data-hl-id="1">middle</html-hl>b</p>`)
	require.NoError(t, err)

	RemoveHighlights(root, "html-hl")
	out, err := Serialize(root)
	require.NoError(t, err)
	require.Equal(t, "<p>amiddleb</p>", out)
}

func TestRemoveHighlightsLegacySpanForm(t *testing.T) {
	root, err := Parse(`<p>a<span data-hl-id="1">middle</span>b</p>`)
	require.NoError(t, err)

	RemoveHighlights(root, "html-hl")
	out, err := Serialize(root)
	require.NoError(t, err)
	require.Equal(t, "<p>amiddleb</p>", out)
}

func TestRemoveHighlightsIdempotent(t *testing.T) {
	root, err := Parse(`<p>a<html-hl data-hl-id="1">mid</html-hl>b</p>`)
	require.NoError(t, err)

	RemoveHighlights(root, "html-hl")
	first, err := Serialize(root)
	require.NoError(t, err)

	RemoveHighlights(root, "html-hl")
	second, err := Serialize(root)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestSerializeReturnsInnerHTMLOfBody(t *testing.T) {
	root, err := Parse(`<html><head></head><body><p>hi</p></body></html>`)
	require.NoError(t, err)
	out, err := Serialize(root)
	require.NoError(t, err)
	require.Equal(t, "<p>hi</p>", out)
}
