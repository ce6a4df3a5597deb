package dom

import (
	"strings"
	"unicode"
)

// blockTags are the element tags that introduce a paragraph boundary in the
// plain-text projection (§4.2). The set intentionally matches spec.md
// exactly; it is not derived from any HTML5 "block-level" notion broader
// than what the projection needs.
var blockTags = map[string]bool{
	"p": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true,
	"hr": true, "br": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "td": true, "th": true,
	"article": true, "section": true, "header": true, "footer": true,
	"nav": true, "aside": true, "figure": true, "figcaption": true,
	"address": true, "dd": true, "dt": true, "dl": true,
}

func isBlockTag(tag string) bool {
	return blockTags[strings.ToLower(tag)]
}

// isWhitespaceOnly reports whether s contains only Unicode whitespace.
func isWhitespaceOnly(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
