package drawutil

import "fmt"

// Color is an immutable color value: four normalized channels plus the
// protocol-native pixel encoding the immediate backend loads into
// graphics contexts. Built once from hex text and never modified.
type Color struct {
	R, G, B, A float64
	Pixel      uint32
}

// HexToColor parses a "#RRGGBB" or "#RRGGBBAA" string. The alpha pair is
// honored only when the input has exactly the nine-character form with
// alpha; anything else leaves alpha fully opaque. Parsing is lenient:
// an invalid digit ends its group and a group without digits reads as
// zero, so garbage input degrades to black rather than failing. Callers
// that want strict validation check the text before it gets here.
func HexToColor(s string) Color {
	alpha := "FF"
	if len(s) == len("#rrggbbaa") {
		alpha = s[7:9]
	}
	return Color{
		R:     float64(parseHex(hexGroup(s, 1))) / 255.0,
		G:     float64(parseHex(hexGroup(s, 3))) / 255.0,
		B:     float64(parseHex(hexGroup(s, 5))) / 255.0,
		A:     float64(parseHex(alpha)) / 255.0,
		Pixel: colorPixel(s),
	}
}

// colorPixel derives the protocol pixel value from the same text. The
// top byte is set high so a 32-bit visual shows the color fully opaque.
func colorPixel(s string) uint32 {
	r := parseHex(hexGroup(s, 1))
	g := parseHex(hexGroup(s, 3))
	b := parseHex(hexGroup(s, 5))
	return 0xff<<24 | r<<16 | g<<8 | b
}

// hexGroup cuts the two-character channel group starting at i, shortened
// when the input ends early.
func hexGroup(s string, i int) string {
	if i >= len(s) {
		return ""
	}
	j := i + 2
	if j > len(s) {
		j = len(s)
	}
	return s[i:j]
}

// parseHex reads hex digits until the first invalid one, like strtol
// with base 16. No digits means zero.
func parseHex(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case '0' <= c && c <= '9':
			d = uint32(c - '0')
		case 'a' <= c && c <= 'f':
			d = uint32(c-'a') + 10
		case 'A' <= c && c <= 'F':
			d = uint32(c-'A') + 10
		default:
			return v
		}
		v = v*16 + d
	}
	return v
}

// String renders the color back in hex form, alpha included.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x",
		uint8(c.R*255+0.5), uint8(c.G*255+0.5), uint8(c.B*255+0.5), uint8(c.A*255+0.5))
}
