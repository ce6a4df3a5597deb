// Package dom implements the pluggable HTML tree boundary of the highlighting
// engine: node path encoding, the plain-text projection, and the DOM
// processor that parses, strips, and serializes a document. It is built
// directly on golang.org/x/net/html, whose Node type already exposes the
// parent/sibling/child links an encoder needs; no second tree wrapper is
// introduced on top of it.
package dom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// SegmentKind distinguishes the two path segment forms described in §4.1:
// element segments (tag name + like-tag sibling index) and text segments
// (index among non-whitespace text siblings).
type SegmentKind int

const (
	ElementSegment SegmentKind = iota
	TextSegment
)

// Segment is one step of a Path, relative to its parent node.
type Segment struct {
	Kind  SegmentKind
	Tag   string // lowercase tag name; unset for text segments
	Index int
}

// Path is a deterministic, XPath-like identifier for a text node, expressed
// as a sequence of segments from body down to the target node.
type Path []Segment

// String renders the path in its canonical "/body/tag[i]/text()[j]" form.
// The index is always written explicitly, even when it is zero.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("/body")
	for _, s := range p {
		sb.WriteByte('/')
		if s.Kind == TextSegment {
			sb.WriteString("text()")
		} else {
			sb.WriteString(s.Tag)
		}
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(s.Index))
		sb.WriteByte(']')
	}
	return sb.String()
}

var (
	textSegmentPattern    = regexp.MustCompile(`^text\(\)(?:\[(\d+)\])?$`)
	elementSegmentPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*(?:-[A-Za-z0-9]+)*)(?:\[(\d+)\])?$`)
)

// ParsePath parses a path string of the form produced by Path.String. Index
// brackets are optional on input (default 0) even though encoding always
// writes them.
func ParsePath(s string) (Path, error) {
	var segs Path
	for _, part := range strings.Split(s, "/") {
		if part == "" || strings.EqualFold(part, "body") {
			continue
		}
		if m := textSegmentPattern.FindStringSubmatch(part); m != nil {
			idx := 0
			if m[1] != "" {
				idx, _ = strconv.Atoi(m[1])
			}
			segs = append(segs, Segment{Kind: TextSegment, Index: idx})
			continue
		}
		if m := elementSegmentPattern.FindStringSubmatch(part); m != nil {
			idx := 0
			if m[2] != "" {
				idx, _ = strconv.Atoi(m[2])
			}
			segs = append(segs, Segment{Kind: ElementSegment, Tag: strings.ToLower(m[1]), Index: idx})
			continue
		}
		return nil, fmt.Errorf("dom: invalid path segment %q", part)
	}
	return segs, nil
}

// EncodePath walks n's ancestors up to (but not including) root, computing a
// segment for each node relative to its parent, and returns the accumulated
// path. root is normally the body element returned by Parse.
func EncodePath(root, n *html.Node) Path {
	var segs Path
	for cur := n; cur != nil && cur != root; cur = cur.Parent {
		switch cur.Type {
		case html.TextNode:
			segs = append(Path{{Kind: TextSegment, Index: textSiblingIndex(cur)}}, segs...)
		case html.ElementNode:
			segs = append(Path{{Kind: ElementSegment, Tag: strings.ToLower(cur.Data), Index: elementSiblingIndex(cur)}}, segs...)
		}
	}
	return segs
}

// Resolve walks root according to p's segments, selecting the nth like-kind
// child at each step. It returns nil if any segment cannot be satisfied.
func (p Path) Resolve(root *html.Node) *html.Node {
	cur := root
	for _, seg := range p {
		next := resolveSegment(cur, seg)
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

func resolveSegment(parent *html.Node, seg Segment) *html.Node {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch seg.Kind {
		case TextSegment:
			if c.Type != html.TextNode || isWhitespaceOnly(c.Data) {
				continue
			}
		case ElementSegment:
			if c.Type != html.ElementNode || !strings.EqualFold(c.Data, seg.Tag) {
				continue
			}
		}
		if count == seg.Index {
			return c
		}
		count++
	}
	return nil
}

// textSiblingIndex counts the non-whitespace text siblings preceding n, so
// that insignificant whitespace cannot shift a text node's index.
func textSiblingIndex(n *html.Node) int {
	idx := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.TextNode && !isWhitespaceOnly(s.Data) {
			idx++
		}
	}
	return idx
}

// elementSiblingIndex counts the same-tag element siblings preceding n.
func elementSiblingIndex(n *html.Node) int {
	idx := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && strings.EqualFold(s.Data, n.Data) {
			idx++
		}
	}
	return idx
}
