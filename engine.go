package highlight

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/briarwood-reader/highlight/dom"
)

const defaultMarkerTag = "html-hl"

// Engine ties together resolution, overlap filtering, DOM mutation and
// caching into the single durable-highlighting façade described in §3–§5.
// The zero value is not usable; construct one with NewEngine.
type Engine struct {
	cache     *TextMapCache
	logger    *slog.Logger
	markerTag string
}

// Option configures an Engine constructed by NewEngine.
type Option func(*Engine)

// WithLogger overrides the engine's structured logger. The default discards
// all output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCacheCapacity overrides the text-map cache's capacity (§4.7).
func WithCacheCapacity(capacity int) Option {
	return func(e *Engine) { e.cache = NewTextMapCache(capacity) }
}

// WithMarkerTag overrides the element tag used to wrap highlighted text.
// The default is "html-hl".
func WithMarkerTag(tag string) Option {
	return func(e *Engine) {
		if tag != "" {
			e.markerTag = tag
		}
	}
}

// NewEngine constructs an Engine, applying opts over its defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:     NewTextMapCache(defaultCacheCapacity),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		markerTag: defaultMarkerTag,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply resolves every anchor against rawHTML's text projection, filters out
// anchors that would overlap an earlier (by start offset) anchor, mutates a
// fresh parse of rawHTML to wrap each successfully resolved anchor in a
// marker element, and returns the result (§4, §8).
//
// The parsed document is first stripped of any prior markers: re-applying the same
// anchor set to already-highlighted HTML is idempotent (§8, Testable
// Property #2), because resolution always runs against a clean text
// projection.
//
// Apply takes article_id from anchors[0] and always builds Result.TextMap,
// rather than exposing the optional article_id/include_text_map parameters
// from §4.7's signature; callers that need the cached-without-applying path
// or a text map without paying for a parse should use GetTextMap directly.
func (e *Engine) Apply(rawHTML string, anchors []Anchor) (*Result, error) {
	if len(anchors) == 0 {
		// §4.7 step 1: empty anchors return the input as-is, without parsing
		// it or even stripping prior markers.
		return &Result{HTML: rawHTML, Applied: 0, OrphanedIDs: nil}, nil
	}

	cleanRoot, err := dom.Parse(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("highlight: parse: %w", err)
	}
	dom.RemoveHighlights(cleanRoot, e.markerTag)
	tm := dom.BuildTextMap(cleanRoot, e.markerTag)

	articleID := anchors[0].ArticleID

	resolved := make([]ResolvedHighlight, 0, len(anchors))
	var orphans []string
	for _, a := range anchors {
		rh := Resolve(a, tm)
		if rh.Strategy == StrategyFailed {
			orphans = append(orphans, a.ID)
			e.logger.Debug("anchor orphaned", "anchor_id", a.ID, "article_id", a.ArticleID)
			continue
		}
		resolved = append(resolved, rh)
	}

	// Overlap-eliminated anchors join neither Applied nor OrphanedIDs (§4.5,
	// §8 Testable Property 4): the filter silently drops them.
	accepted, _ := filterOverlaps(resolved)

	colorByID := make(map[string]Color, len(anchors))
	for _, a := range anchors {
		colorByID[a.ID] = ParseColor(a.Color)
	}

	// Apply in descending start order so wrapping one highlight never shifts
	// the document-order position another still-pending highlight needs to
	// read (§4.5).
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start > accepted[j].Start })
	for _, rh := range accepted {
		applyResolved(tm, rh, colorByID[rh.AnchorID], e.markerTag)
	}

	outHTML, err := dom.Serialize(cleanRoot)
	if err != nil {
		return nil, fmt.Errorf("highlight: serialize: %w", err)
	}

	if articleID != "" {
		e.cache.Put(articleID, tm)
	}

	return &Result{
		HTML:        outHTML,
		Applied:     len(accepted),
		OrphanedIDs: orphans,
		TextMap:     tm,
	}, nil
}

// filterOverlaps walks resolved highlights in document order (by Start,
// input order as tiebreak) and keeps a highlight only if it does not overlap
// any highlight already accepted (§4.5, §8 S7): first-wins, deterministic.
func filterOverlaps(resolved []ResolvedHighlight) (accepted []ResolvedHighlight, droppedIDs []string) {
	ordered := make([]ResolvedHighlight, len(resolved))
	copy(ordered, resolved)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	accepted = make([]ResolvedHighlight, 0, len(ordered))
	lastEnd := -1
	for _, rh := range ordered {
		if rh.Start < lastEnd {
			droppedIDs = append(droppedIDs, rh.AnchorID)
			continue
		}
		accepted = append(accepted, rh)
		if rh.End > lastEnd {
			lastEnd = rh.End
		}
	}
	return accepted, droppedIDs
}

// GetTextMap returns the plain-text projection and text-node index for
// rawHTML, after stripping any prior highlight markers, using the engine's
// cache when articleID is non-empty and already cached (§4.7).
func (e *Engine) GetTextMap(articleID, rawHTML string) (*dom.TextMap, error) {
	if articleID != "" {
		if tm, ok := e.cache.Get(articleID); ok {
			return tm, nil
		}
	}
	root, err := dom.Parse(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("highlight: parse: %w", err)
	}
	dom.RemoveHighlights(root, e.markerTag)
	tm := dom.BuildTextMap(root, e.markerTag)
	if articleID != "" {
		e.cache.Put(articleID, tm)
	}
	return tm, nil
}

// ExtractPlainText returns rawHTML's plain-text projection, with any prior
// highlight markers stripped first (§4.7).
func (e *Engine) ExtractPlainText(rawHTML string) (string, error) {
	root, err := dom.Parse(rawHTML)
	if err != nil {
		return "", fmt.Errorf("highlight: parse: %w", err)
	}
	dom.RemoveHighlights(root, e.markerTag)
	return dom.BuildTextMap(root, e.markerTag).PlainText, nil
}

// RemoveHighlights strips every marker element from rawHTML and returns the
// unwrapped, re-serialized result, without touching the engine's cache.
func (e *Engine) RemoveHighlights(rawHTML string) (string, error) {
	root, err := dom.Parse(rawHTML)
	if err != nil {
		return "", fmt.Errorf("highlight: parse: %w", err)
	}
	dom.RemoveHighlights(root, e.markerTag)
	return dom.Serialize(root)
}

// ClearCache drops the cached text map for a single article.
func (e *Engine) ClearCache(articleID string) { e.cache.Clear(articleID) }

// ClearAllCache empties the engine's text-map cache entirely.
func (e *Engine) ClearAllCache() { e.cache.ClearAll() }

// Default is the package-level engine used by the Apply, GetTextMap,
// ExtractPlainText, RemoveHighlights, ClearCache and ClearAllCache
// top-level functions, for callers that don't need per-engine configuration.
var Default = NewEngine()

// Apply delegates to Default.Apply.
func Apply(rawHTML string, anchors []Anchor) (*Result, error) { return Default.Apply(rawHTML, anchors) }

// GetTextMap delegates to Default.GetTextMap.
func GetTextMap(articleID, rawHTML string) (*dom.TextMap, error) {
	return Default.GetTextMap(articleID, rawHTML)
}

// ExtractPlainText delegates to Default.ExtractPlainText.
func ExtractPlainText(rawHTML string) (string, error) { return Default.ExtractPlainText(rawHTML) }

// RemoveHighlights delegates to Default.RemoveHighlights.
func RemoveHighlights(rawHTML string) (string, error) { return Default.RemoveHighlights(rawHTML) }

// ClearCache delegates to Default.ClearCache.
func ClearCache(articleID string) { Default.ClearCache(articleID) }

// ClearAllCache delegates to Default.ClearAllCache.
func ClearAllCache() { Default.ClearAllCache() }
