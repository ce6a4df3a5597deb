package highlight

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/briarwood-reader/highlight/dom"
	"github.com/stretchr/testify/require"
)

func textMapFrom(t *testing.T, htmlStr string) *dom.TextMap {
	t.Helper()
	root, err := dom.Parse(htmlStr)
	require.NoError(t, err)
	return dom.BuildTextMap(root, "html-hl")
}

func baseAnchor() Anchor {
	now := time.Now()
	return Anchor{ID: "a1", ArticleID: "art1", Color: "yellow", CreatedAt: now, UpdatedAt: now}
}

func TestResolveTextPositionExactPrefixSuffix(t *testing.T) {
	tm := textMapFrom(t, `<p>This is a powerful engine.</p>`)
	a := baseAnchor()
	a.ExactText = "powerful"
	a.PrefixContext = "is a "
	a.SuffixContext = " engine"

	rh := Resolve(a, tm)
	require.Equal(t, StrategyTextPosition, rh.Strategy)
	require.Equal(t, 1.0, rh.Confidence)
	require.Equal(t, "powerful", tm.PlainText[rh.Start:rh.End])
}

func TestResolveTextPositionUniqueOccurrence(t *testing.T) {
	tm := textMapFrom(t, `<p>Find zzzunique here.</p>`)
	a := baseAnchor()
	a.ExactText = "zzzunique"
	a.PrefixContext = "not matching"
	a.SuffixContext = "not matching either"

	rh := Resolve(a, tm)
	require.Equal(t, StrategyTextPosition, rh.Strategy)
	require.Equal(t, 0.8, rh.Confidence)
}

func TestResolveTextPositionLocalityAmongDuplicates(t *testing.T) {
	tm := textMapFrom(t, `<p>dup near start, then dup far away at the end dup</p>`)
	a := baseAnchor()
	a.ExactText = "dup"
	a.PrefixContext = "no such prefix"
	a.SuffixContext = "no such suffix"
	a.StartOffset = 0 // closest to the first occurrence

	rh := Resolve(a, tm)
	require.Equal(t, StrategyTextPosition, rh.Strategy)
	require.Equal(t, 0.7, rh.Confidence)
	require.Equal(t, 0, rh.Start)
}

func TestResolveOrphanWhenNothingMatches(t *testing.T) {
	tm := textMapFrom(t, `<p>Nothing matches here.</p>`)
	a := baseAnchor()
	a.ExactText = "zzz_missing"

	rh := Resolve(a, tm)
	require.Equal(t, StrategyFailed, rh.Strategy)
	require.Equal(t, -1, rh.Start)
	require.Equal(t, -1, rh.End)
	require.Equal(t, 0.0, rh.Confidence)
}

func TestResolveDOMPathHighConfidence(t *testing.T) {
	root, err := dom.Parse(`<p>This is a powerful engine.</p>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")
	require.Len(t, tm.Nodes, 1)

	path := tm.Nodes[0].Path.String()
	offset := 10 // "This is a " is 10 chars
	endOffset := offset + len("powerful")

	a := baseAnchor()
	a.ExactText = "powerful"
	a.StartNodePath = &path
	a.StartNodeOffset = &offset
	a.EndNodePath = &path
	a.EndNodeOffset = &endOffset

	rh := Resolve(a, tm)
	require.Equal(t, StrategyDOMPath, rh.Strategy)
	require.GreaterOrEqual(t, rh.Confidence, 0.9)
}

func TestResolveDOMPathAbortsOnNegativeOffset(t *testing.T) {
	root, err := dom.Parse(`<p>This is a powerful engine.</p>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")

	path := tm.Nodes[0].Path.String()
	startOffset := -100
	endOffset := 5

	a := baseAnchor()
	a.ExactText = "zzz_no_match_anywhere"
	a.StartNodePath = &path
	a.StartNodeOffset = &startOffset
	a.EndNodePath = &path
	a.EndNodeOffset = &endOffset

	require.NotPanics(t, func() {
		rh := Resolve(a, tm)
		require.Equal(t, StrategyFailed, rh.Strategy)
	})
}

func TestResolveDOMPathFallsThroughOnStalePath(t *testing.T) {
	root, err := dom.Parse(`<p>This is a powerful engine.</p>`)
	require.NoError(t, err)
	tm := dom.BuildTextMap(root, "html-hl")

	stalePath := "/body/p[9]/text()[0]" // does not resolve in this document
	offset := 0

	a := baseAnchor()
	a.ExactText = "powerful"
	a.PrefixContext = "is a "
	a.SuffixContext = " engine"
	a.StartNodePath = &stalePath
	a.StartNodeOffset = &offset
	a.EndNodePath = &stalePath
	a.EndNodeOffset = &offset

	rh := Resolve(a, tm)
	// DOM path aborts (unresolvable path), falls through to text position.
	require.Equal(t, StrategyTextPosition, rh.Strategy)
}

func TestResolveContextSearchMultiByteTextStaysValidUTF8(t *testing.T) {
	// "café" and the em-dash are both multi-byte in UTF-8; a byte-indexed
	// window slide could land mid-codepoint and corrupt the result.
	tm := textMapFrom(t, `<p>We visited the café—it was wonderful and quaint.</p>`)
	a := baseAnchor()
	a.ExactText = "cafe—it wos"            // typo'd, forces the fuzzy strategy
	a.PrefixContext = "visited the "
	a.SuffixContext = " wonderful"

	rh := Resolve(a, tm)
	require.Equal(t, StrategyContextSearch, rh.Strategy)
	require.True(t, rh.Start >= 0 && rh.Start <= rh.End && rh.End <= len(tm.PlainText))
	matched := tm.PlainText[rh.Start:rh.End]
	require.True(t, utf8.ValidString(matched), "matched span %q is not valid UTF-8", matched)
}

func TestResolveContextSearchFuzzyMatch(t *testing.T) {
	tm := textMapFrom(t, `<p>The quick brown fox jumps over the lazy dog.</p>`)
	a := baseAnchor()
	a.ExactText = "quik brown fox" // typo, won't exact-match
	a.PrefixContext = "The "
	a.SuffixContext = " jumps"

	rh := Resolve(a, tm)
	require.Equal(t, StrategyContextSearch, rh.Strategy)
	require.GreaterOrEqual(t, rh.Confidence, acceptContextSearch)
}
