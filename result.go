package highlight

import "github.com/briarwood-reader/highlight/dom"

// Result is the outcome of a single Engine.Apply call (§6).
type Result struct {
	HTML        string
	Applied     int
	OrphanedIDs []string // preserves anchor input order
	TextMap     *dom.TextMap
}

// OrphanedCount returns the number of anchors that could not be placed.
func (r *Result) OrphanedCount() int { return len(r.OrphanedIDs) }

// AllApplied reports whether no anchor was orphaned. Anchors dropped by the
// overlap filter are not orphans, so AllApplied can be true even when
// Applied is less than the number of anchors passed to Apply.
func (r *Result) AllApplied() bool { return len(r.OrphanedIDs) == 0 }

// Total returns Applied + OrphanedCount(). Per §8's orphan-accounting
// invariant this is ≤ the number of anchors passed to Apply; it falls short
// only when the overlap filter silently dropped later-overlapping anchors.
func (r *Result) Total() int { return r.Applied + len(r.OrphanedIDs) }
