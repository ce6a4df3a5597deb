package dom

import "golang.org/x/net/html"

// TextNodeRecord describes one addressable text node: its location in the
// tree (Node, Path) and its span in the owning TextMap's PlainText
// ([Start, End)).
type TextNodeRecord struct {
	Node  *html.Node
	Path  Path
	Start int
	End   int
	Text  string // the node's literal text at build time, unchanged from source
}

// TextMap is the bidirectional mapping between a document's plain-text
// projection and its text nodes, produced by BuildTextMap (§3, §4.3).
//
// A TextMap retained beyond the call that built it (e.g. in a cache) keeps
// its Node pointers, but the tree those nodes belong to may have been
// discarded by the caller. Such a retained map supports position queries
// only; using it to drive a mutation is a caller error.
type TextMap struct {
	PlainText string
	Nodes     []*TextNodeRecord // document order, non-overlapping, may have gaps
	ByPath    map[string]*TextNodeRecord
}

// NodeByPath looks up the record for an exact path string.
func (tm *TextMap) NodeByPath(path string) (*TextNodeRecord, bool) {
	rec, ok := tm.ByPath[path]
	return rec, ok
}

// FindNodeAtPosition returns the record whose [Start, End) contains pos.
func (tm *TextMap) FindNodeAtPosition(pos int) (*TextNodeRecord, bool) {
	for _, rec := range tm.Nodes {
		if pos >= rec.Start && pos < rec.End {
			return rec, true
		}
	}
	return nil, false
}

// NodesInRange returns, in document order, every record whose span
// intersects [start, end).
func (tm *TextMap) NodesInRange(start, end int) []*TextNodeRecord {
	var out []*TextNodeRecord
	for _, rec := range tm.Nodes {
		if rec.Start < end && rec.End > start {
			out = append(out, rec)
		}
	}
	return out
}

// PlainTextToDOM maps a plain-text offset to the path and local offset of
// the text node that owns it.
func (tm *TextMap) PlainTextToDOM(pos int) (path string, offset int, ok bool) {
	rec, found := tm.FindNodeAtPosition(pos)
	if !found {
		return "", 0, false
	}
	return rec.Path.String(), pos - rec.Start, true
}

// DOMToPlainText maps a (path, local offset) pair back to a plain-text
// position.
func (tm *TextMap) DOMToPlainText(path string, offset int) (int, bool) {
	rec, ok := tm.ByPath[path]
	if !ok {
		return 0, false
	}
	return rec.Start + offset, true
}
