package highlight

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/briarwood-reader/highlight/dom"
)

// Strategy names the resolution technique that produced (or failed to
// produce) a ResolvedHighlight.
type Strategy string

const (
	StrategyDOMPath       Strategy = "dom_path"
	StrategyTextPosition  Strategy = "text_position"
	StrategyContextSearch Strategy = "context_search"
	StrategyFailed        Strategy = "failed"
)

// Acceptance thresholds per strategy (§4.4). These are kept separate rather
// than merged into one scoring function so each can be retuned on its own.
const (
	acceptDOMPath       = 0.9
	acceptTextPosition  = 0.7
	acceptContextSearch = 0.5

	// minTextSimInWindow is the per-window text-similarity floor the context
	// search strategy requires before a window is even scored (§4.4, Strategy C).
	minTextSimInWindow = 0.7
)

// ResolvedHighlight is the outcome of resolving one Anchor against a
// TextMap: either a [Start, End) plain-text range with the strategy and
// confidence that produced it, or a failed resolution (Start=End=-1,
// Confidence=0, Strategy=StrategyFailed).
type ResolvedHighlight struct {
	AnchorID   string
	Start      int
	End        int
	Strategy   Strategy
	Confidence float64
}

// Resolve turns an anchor into a plain-text range by trying, in order, the
// DOM-path, text-position, and context-search strategies, returning the
// first whose confidence meets its own acceptance threshold (§4.4).
func Resolve(a Anchor, tm *dom.TextMap) ResolvedHighlight {
	if rh, found := resolveDOMPath(a, tm); found && rh.Confidence >= acceptDOMPath {
		return rh
	}
	if rh, found := resolveTextPosition(a, tm); found && rh.Confidence >= acceptTextPosition {
		return rh
	}
	if rh, found := resolveContextSearch(a, tm); found && rh.Confidence >= acceptContextSearch {
		return rh
	}
	return ResolvedHighlight{AnchorID: a.ID, Start: -1, End: -1, Strategy: StrategyFailed, Confidence: 0}
}

func resolved(a Anchor, start, end int, strategy Strategy, confidence float64) ResolvedHighlight {
	return ResolvedHighlight{AnchorID: a.ID, Start: start, End: end, Strategy: strategy, Confidence: confidence}
}

// resolveDOMPath is Strategy A (§4.4). It requires v2 path data and
// accepts (at the cascade level) only when the matched text is at least
// 90% similar to exact_text; a 0.7–0.9 match is still reported so the
// cascade can fall through to the next strategy rather than discard it
// outright.
func resolveDOMPath(a Anchor, tm *dom.TextMap) (ResolvedHighlight, bool) {
	if !a.HasV2Data() {
		return ResolvedHighlight{}, false
	}
	startRec, ok := tm.NodeByPath(*a.StartNodePath)
	if !ok {
		return ResolvedHighlight{}, false
	}
	endRec, ok := tm.NodeByPath(*a.EndNodePath)
	if !ok {
		return ResolvedHighlight{}, false
	}
	start := startRec.Start + *a.StartNodeOffset
	end := endRec.Start + *a.EndNodeOffset
	if start < 0 || start >= end || end > len(tm.PlainText) {
		return ResolvedHighlight{}, false
	}
	sim := Similarity(tm.PlainText[start:end], a.ExactText)
	if sim < 0.7 {
		return ResolvedHighlight{}, false
	}
	return resolved(a, start, end, StrategyDOMPath, sim), true
}

// resolveTextPosition is Strategy B (§4.4): a fixed-order cascade of exact
// substring patterns against the plain text.
func resolveTextPosition(a Anchor, tm *dom.TextMap) (ResolvedHighlight, bool) {
	text := tm.PlainText
	exact := a.ExactText
	prefix := a.PrefixContext
	suffix := a.SuffixContext

	if idx := strings.Index(text, prefix+exact+suffix); idx >= 0 {
		start := idx + len(prefix)
		return resolved(a, start, start+len(exact), StrategyTextPosition, 1.0), true
	}
	if prefix != "" {
		if idx := strings.Index(text, prefix+exact); idx >= 0 {
			start := idx + len(prefix)
			return resolved(a, start, start+len(exact), StrategyTextPosition, 0.9), true
		}
	}
	if suffix != "" {
		if idx := strings.Index(text, exact+suffix); idx >= 0 {
			return resolved(a, idx, idx+len(exact), StrategyTextPosition, 0.9), true
		}
	}

	occurrences := findAllOccurrences(text, exact)
	switch len(occurrences) {
	case 0:
		return ResolvedHighlight{}, false
	case 1:
		start := occurrences[0]
		return resolved(a, start, start+len(exact), StrategyTextPosition, 0.8), true
	default:
		best := occurrences[0]
		bestDist := absInt(best - a.StartOffset)
		for _, o := range occurrences[1:] {
			if d := absInt(o - a.StartOffset); d < bestDist {
				best, bestDist = o, d
			}
		}
		return resolved(a, best, best+len(exact), StrategyTextPosition, 0.7), true
	}
}

func findAllOccurrences(text, needle string) []int {
	if needle == "" {
		return nil
	}
	var out []int
	for offset := 0; ; {
		idx := strings.Index(text[offset:], needle)
		if idx < 0 {
			break
		}
		out = append(out, offset+idx)
		offset += idx + 1
	}
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// resolveContextSearch is Strategy C (§4.4): a fuzzy sliding window over the
// plain text, falling back to a whitespace-normalized scan if the raw pass
// finds nothing.
func resolveContextSearch(a Anchor, tm *dom.TextMap) (ResolvedHighlight, bool) {
	text := tm.PlainText
	exact := a.ExactText

	if score, start, end, ok := scanContextWindows(text, exact, a.PrefixContext, a.SuffixContext); ok {
		return resolved(a, start, end, StrategyContextSearch, score), true
	}

	normText := normalizeWhitespace(text)
	normExact := normalizeWhitespace(exact)
	normPrefix := normalizeWhitespace(a.PrefixContext)
	normSuffix := normalizeWhitespace(a.SuffixContext)

	score, pos, _, ok := scanContextWindows(normText, normExact, normPrefix, normSuffix)
	if !ok {
		return ResolvedHighlight{}, false
	}

	// Quirk preserved from the documented source behavior (§9 open
	// questions): the winning offset was found by scanning the
	// whitespace-normalized text, but the candidate substring is then cut
	// from the ORIGINAL plain text using the RAW (un-normalized) exact_text
	// length rather than the normalized length used for the scan. Since
	// normalization can shift offsets, this can legitimately point at a
	// span that doesn't match exact_text; it is kept as-is rather than
	// "fixed", per the spec's instruction to preserve observed behavior.
	// The cut points are still snapped outward to the nearest rune boundary
	// so the result is always valid UTF-8 even when the span is wrong.
	start := snapRuneBoundaryBack(text, pos)
	end := snapRuneBoundaryForward(text, start+len(exact))
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ResolvedHighlight{}, false
	}
	return resolved(a, start, end, StrategyContextSearch, score), true
}

// scanContextWindows slides a window, sized in runes to match searchText,
// over text, scoring each position by 0.6*text_sim + 0.4*context_sim and
// returning the best as a [start, end) BYTE range. Sliding by rune rather
// than byte keeps every window on a codepoint boundary, since real article
// text routinely carries multi-byte UTF-8 (accents, curly quotes,
// em-dashes) that a byte-indexed slide could cut in half. Windows whose text
// similarity falls below minTextSimInWindow are skipped entirely, not merely
// scored low.
func scanContextWindows(text, searchText, prefix, suffix string) (score float64, start, end int, found bool) {
	runes := []rune(text)
	width := len([]rune(searchText))
	if width <= 0 || width > len(runes) {
		return 0, 0, 0, false
	}
	prefixRunes := []rune(prefix)
	suffixRunes := []rune(suffix)
	byteOffsets := runeByteOffsets(text)

	best := -1.0
	bestPos := 0
	for i := 0; i+width <= len(runes); i++ {
		window := string(runes[i : i+width])
		textSim := Similarity(window, searchText)
		if textSim < minTextSimInWindow {
			continue
		}

		prefixStart := i - len(prefixRunes)
		if prefixStart < 0 {
			prefixStart = 0
		}
		actualPrefix := string(runes[prefixStart:i])

		suffixEnd := i + width + len(suffixRunes)
		if suffixEnd > len(runes) {
			suffixEnd = len(runes)
		}
		actualSuffix := string(runes[i+width : suffixEnd])

		contextScore := (Similarity(actualPrefix, prefix) + Similarity(actualSuffix, suffix)) / 2
		total := 0.6*textSim + 0.4*contextScore
		if total > best {
			best, bestPos, found = total, i, true
		}
	}
	if !found {
		return 0, 0, 0, false
	}
	return best, byteOffsets[bestPos], byteOffsets[bestPos+width], true
}

// runeByteOffsets returns, for each rune index in s (plus one trailing entry
// for len(s)), the byte offset at which that rune starts.
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return offsets
}

// snapRuneBoundaryForward advances i to the next rune-start byte offset at
// or after i, so a slice endpoint never lands inside a multi-byte rune.
func snapRuneBoundaryForward(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// snapRuneBoundaryBack retreats i to the nearest rune-start byte offset at
// or before i.
func snapRuneBoundaryBack(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeWhitespace collapses runs of whitespace to a single ASCII space
// and trims both ends.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
