package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses an HTML fragment or document and returns its body element
// (or the document element, if no body exists), per §4.2.
func Parse(source string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}
	if body := findBody(doc); body != nil {
		return body, nil
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// textAccumulator builds the plain-text projection while tracking the last
// written byte, so block-boundary newline insertion (§4.2) doesn't need to
// re-scan the buffer on every element.
type textAccumulator struct {
	sb       strings.Builder
	lastByte byte
}

func (t *textAccumulator) writeString(s string) {
	if s == "" {
		return
	}
	t.sb.WriteString(s)
	t.lastByte = s[len(s)-1]
}

func (t *textAccumulator) ensureNewline() {
	if t.sb.Len() > 0 && t.lastByte != '\n' {
		t.writeString("\n")
	}
}

func (t *textAccumulator) len() int { return t.sb.Len() }

// BuildTextMap performs the depth-first, document-order traversal described
// in §4.2: it builds the plain-text projection and the ordered text-node
// index, skipping script/style/marker subtrees and inserting block-boundary
// newlines without letting them stack up.
func BuildTextMap(root *html.Node, markerTag string) *TextMap {
	tm := &TextMap{ByPath: make(map[string]*TextNodeRecord)}
	acc := &textAccumulator{}
	marker := strings.ToLower(markerTag)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if tag == "script" || tag == "style" || tag == marker {
				return
			}
			block := isBlockTag(tag)
			if block {
				acc.ensureNewline()
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				acc.ensureNewline()
			}
		case html.TextNode:
			if isWhitespaceOnly(n.Data) {
				return
			}
			start := acc.len()
			acc.writeString(n.Data)
			rec := &TextNodeRecord{
				Node:  n,
				Path:  EncodePath(root, n),
				Start: start,
				End:   acc.len(),
				Text:  n.Data,
			}
			tm.Nodes = append(tm.Nodes, rec)
			tm.ByPath[rec.Path.String()] = rec
		}
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	tm.PlainText = acc.sb.String()
	return tm
}

// RemoveHighlights strips every prior marker element (by tag, plus the
// legacy span[data-hl-id] form) from root, unwrapping their children in
// document order, then normalizes adjacent text siblings (§4.2). It is
// idempotent: running it twice has the same effect as running it once.
func RemoveHighlights(root *html.Node, markerTag string) {
	marker := strings.ToLower(markerTag)

	var targets []*html.Node
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				tag := strings.ToLower(c.Data)
				if tag == marker || (tag == "span" && hasAttr(c, "data-hl-id")) {
					targets = append(targets, c)
				}
			}
			collect(c)
		}
	}
	collect(root)

	for _, n := range targets {
		unwrap(n)
	}
	normalizeTextNodes(root)
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// unwrap moves n's children into n's parent at n's position, then removes n.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// normalizeTextNodes merges runs of adjacent text siblings throughout the
// tree, restoring the "no adjacent text nodes" invariant that stable paths
// depend on.
func normalizeTextNodes(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		if c.Type == html.ElementNode {
			normalizeTextNodes(c)
		}
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue // re-check c against its new next sibling
		}
		c = next
	}
}

// Serialize returns the inner HTML of root (the concatenated serialization
// of its children), since root is the body element, not the document.
func Serialize(root *html.Node) (string, error) {
	var sb strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("dom: serialize: %w", err)
		}
	}
	return sb.String(), nil
}
