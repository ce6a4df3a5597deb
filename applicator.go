package highlight

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/briarwood-reader/highlight/dom"
)

// applyResolved wraps one resolved range in marker elements (§4.6). It looks
// up the affected text-node records from the pre-mutation TextMap, then
// splits and wraps each in the node's CURRENT text (not the record's
// snapshot), so that two non-overlapping highlights landing in the same
// original text node compose correctly: wrapping always keeps the
// unconsumed prefix of a node live in the tree under the same pointer, so a
// later (lower plain-text offset) call still finds valid content there.
func applyResolved(tm *dom.TextMap, rh ResolvedHighlight, color Color, markerTag string) {
	records := tm.NodesInRange(rh.Start, rh.End)
	if len(records) == 0 {
		return
	}

	if len(records) == 1 {
		rec := records[0]
		wrapNodeRange(rec, rh.Start-rec.Start, rh.End-rec.Start, rh.AnchorID, color, markerTag)
		return
	}

	// Multi-node: iterate affected records in reverse document order so
	// wrapping an earlier node can't shift the sibling positions a later
	// node's wrap still needs to read (§4.5).
	last := len(records) - 1
	for i := last; i >= 0; i-- {
		rec := records[i]
		var localStart, localEnd int
		switch i {
		case 0:
			localStart = rh.Start - rec.Start
			localEnd = len(rec.Node.Data)
		case last:
			localStart = 0
			localEnd = rh.End - rec.Start
		default:
			localStart = 0
			localEnd = len(rec.Node.Data)
		}
		wrapNodeRange(rec, localStart, localEnd, rh.AnchorID, color, markerTag)
	}
}

// wrapNodeRange splits rec.Node's current text at [localStart, localEnd),
// clamped to its live length, and wraps the middle portion in a marker
// element, leaving the before/after remainders as plain text siblings.
func wrapNodeRange(rec *dom.TextNodeRecord, localStart, localEnd int, anchorID string, color Color, markerTag string) {
	node := rec.Node
	parent := node.Parent
	if parent == nil {
		return
	}
	text := node.Data

	if localStart < 0 {
		localStart = 0
	}
	if localEnd > len(text) {
		localEnd = len(text)
	}
	if localStart >= localEnd {
		return
	}

	before := text[:localStart]
	middle := text[localStart:localEnd]
	after := text[localEnd:]

	wrapper := buildWrapper(node, anchorID, color, markerTag)
	wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: middle})

	if before != "" {
		node.Data = before
		parent.InsertBefore(wrapper, node.NextSibling)
	} else {
		parent.InsertBefore(wrapper, node)
	}
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, wrapper.NextSibling)
	}
	if before == "" {
		parent.RemoveChild(node)
	}
}

// buildWrapper constructs the marker element for a wrapped span (§4.6.1):
// span instead of the configured marker tag under an <a> ancestor (to avoid
// nesting anchors), and the reduced-opacity, no-padding style under
// <pre>/<code>.
func buildWrapper(textNode *html.Node, anchorID string, color Color, markerTag string) *html.Node {
	tag := markerTag
	if hasAncestorTag(textNode, "a") {
		tag = "span"
	}
	inCode := hasAncestorTag(textNode, "pre") || hasAncestorTag(textNode, "code")

	return &html.Node{
		Type: html.ElementNode,
		Data: tag,
		Attr: []html.Attribute{
			{Key: "data-hl-id", Val: anchorID},
			{Key: "style", Val: color.style(inCode)},
		},
	}
}

func hasAncestorTag(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && strings.EqualFold(p.Data, tag) {
			return true
		}
	}
	return false
}
