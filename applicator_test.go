package highlight

import (
	"strings"
	"testing"

	"github.com/briarwood-reader/highlight/dom"
	"github.com/stretchr/testify/require"
)

func TestApplyResolvedSingleNodeWrapsMiddle(t *testing.T) {
	root, err := dom.Parse(`<p>hello world today</p>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")

	start := strings.Index(tm.PlainText, "world")
	rh := ResolvedHighlight{AnchorID: "a1", Start: start, End: start + len("world"), Strategy: StrategyTextPosition, Confidence: 1.0}

	applyResolved(tm, rh, ParseColor("yellow"), "mark")
	out, err := dom.Serialize(root)
	require.NoError(t, err)
	require.Contains(t, out, `<mark data-hl-id="a1"`)
	require.Contains(t, out, `>world</mark>`)
	require.Contains(t, out, "hello ")
	require.Contains(t, out, " today")
}

func TestApplyResolvedUnderAnchorUsesSpanNotMark(t *testing.T) {
	root, err := dom.Parse(`<a href="/x">click here now</a>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")

	start := strings.Index(tm.PlainText, "here")
	rh := ResolvedHighlight{AnchorID: "a2", Start: start, End: start + len("here"), Strategy: StrategyTextPosition, Confidence: 1.0}

	applyResolved(tm, rh, ParseColor("green"), "mark")
	out, err := dom.Serialize(root)
	require.NoError(t, err)
	require.Contains(t, out, `<span data-hl-id="a2"`)
	require.NotContains(t, out, "<mark")
}

func TestApplyResolvedInCodeUsesReducedOpacityStyle(t *testing.T) {
	root, err := dom.Parse(`<pre><code>func main() {}</code></pre>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")

	start := strings.Index(tm.PlainText, "main")
	rh := ResolvedHighlight{AnchorID: "a3", Start: start, End: start + len("main"), Strategy: StrategyTextPosition, Confidence: 1.0}

	applyResolved(tm, rh, ParseColor("yellow"), "mark")
	out, err := dom.Serialize(root)
	require.NoError(t, err)
	require.Contains(t, out, "rgba(255,241,118,0.3)")
	require.NotContains(t, out, "padding")
}

func TestApplyResolvedTwoNonOverlappingHighlightsInSameTextNode(t *testing.T) {
	root, err := dom.Parse(`<p>alpha beta gamma delta</p>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")

	alphaStart := strings.Index(tm.PlainText, "alpha")
	deltaStart := strings.Index(tm.PlainText, "delta")

	// Apply in descending start order, per engine orchestration contract.
	applyResolved(tm, ResolvedHighlight{AnchorID: "later", Start: deltaStart, End: deltaStart + len("delta"), Strategy: StrategyTextPosition, Confidence: 1.0}, ParseColor("blue"), "mark")
	applyResolved(tm, ResolvedHighlight{AnchorID: "earlier", Start: alphaStart, End: alphaStart + len("alpha"), Strategy: StrategyTextPosition, Confidence: 1.0}, ParseColor("pink"), "mark")

	out, err := dom.Serialize(root)
	require.NoError(t, err)
	require.Contains(t, out, `data-hl-id="earlier"`)
	require.Contains(t, out, `data-hl-id="later"`)
	require.Contains(t, out, ">alpha</mark>")
	require.Contains(t, out, ">delta</mark>")
	require.Contains(t, out, "beta gamma")
}
