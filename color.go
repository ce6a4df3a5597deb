package highlight

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is the decoded form of an anchor's opaque color value: an RGB
// triple, used only to build a marker's inline style (§4.6.1).
type Color struct {
	R, G, B uint8
}

// Palette holds the named highlight colors recognized by this engine.
// Anchor.Color may name one of these, or carry a raw hex string directly.
var Palette = map[string]string{
	"yellow": "FFF176",
	"green":  "AED581",
	"blue":   "81D4FA",
	"pink":   "F48FB1",
	"purple": "CE93D8",
	"orange": "FFCC80",
}

// defaultColorHex is used whenever a palette name is unrecognized (§6).
const defaultColorHex = "FFF176"

// ParseColor decodes an anchor's color field, which is either a palette name
// or a 6-digit hex string (with or without a leading '#'). Unknown names
// fall back to the default palette color.
func ParseColor(value string) Color {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if hex, ok := parseHex6(v); ok {
		return hex
	}
	if hex, ok := Palette[strings.ToLower(value)]; ok {
		if c, ok := parseHex6(hex); ok {
			return c
		}
	}
	c, _ := parseHex6(defaultColorHex)
	return c
}

func parseHex6(s string) (Color, bool) {
	if len(s) != 6 {
		return Color{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
	}, true
}

// style builds the inline style string for a marker element (§4.6.1). code
// selects the reduced-opacity, no-padding form used inside <pre>/<code>.
func (c Color) style(code bool) string {
	if code {
		return fmt.Sprintf("background-color:rgba(%d,%d,%d,0.3);", c.R, c.G, c.B)
	}
	return fmt.Sprintf("background-color:rgba(%d,%d,%d,0.4);border-radius:2px;padding:0 2px;", c.R, c.G, c.B)
}
