package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Text is the text handle passed through the drawing layer. It owns the
// UTF-8 form and a cached UCS-2 encoding for the core-font text request.
// Runes outside the basic multilingual plane are replaced, since the wire
// format carries two bytes per character.
type Text struct {
	str  string
	ucs2 []xproto.Char2b
}

// NewText builds a text handle from a UTF-8 string.
func NewText(s string) *Text {
	t := &Text{str: s}
	t.ucs2 = make([]xproto.Char2b, 0, len(s))
	for _, r := range s {
		if r > 0xffff {
			r = 0xfffd
		}
		t.ucs2 = append(t.ucs2, xproto.Char2b{Byte1: byte(r >> 8), Byte2: byte(r)})
	}
	return t
}

// String returns the UTF-8 form.
func (t *Text) String() string { return t.str }

// Len returns the number of drawable characters.
func (t *Text) Len() int { return len(t.ucs2) }

// Font is a core X font together with the metrics needed to place and
// measure text. It is the glyph-rasterization primitive the drawing layer
// delegates to: the server draws the glyphs, we only issue requests.
type Font struct {
	conn    *xgb.Conn
	id      xproto.Font
	name    string
	ascent  int
	descent int

	// char indexing per the core protocol: linear when byte1 range is
	// empty, row/column otherwise
	minByte1, maxByte1 byte
	minB2, maxB2       uint16
	defaultChar        uint16
	defaultWidth       int
	widths             []int16
}

// OpenFont opens a core font by name ("fixed", an XLFD pattern, ...) and
// queries its metrics.
func (c *Context) OpenFont(name string) (*Font, error) {
	fid, err := xproto.NewFontId(c.conn)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate font id: %v", err)
	}
	if err := xproto.OpenFontChecked(c.conn, fid, uint16(len(name)), name).Check(); err != nil {
		return nil, fmt.Errorf("cannot open font %q: %v", name, err)
	}
	reply, err := xproto.QueryFont(c.conn, xproto.Fontable(fid)).Reply()
	if err != nil {
		xproto.CloseFont(c.conn, fid)
		return nil, fmt.Errorf("cannot query font %q: %v", name, err)
	}

	f := &Font{
		conn:         c.conn,
		id:           fid,
		name:         name,
		ascent:       int(reply.FontAscent),
		descent:      int(reply.FontDescent),
		minByte1:     reply.MinByte1,
		maxByte1:     reply.MaxByte1,
		minB2:        reply.MinCharOrByte2,
		maxB2:        reply.MaxCharOrByte2,
		defaultChar:  reply.DefaultChar,
		defaultWidth: int(reply.MaxBounds.CharacterWidth),
	}
	if len(reply.CharInfos) > 0 {
		f.widths = make([]int16, len(reply.CharInfos))
		for i, ci := range reply.CharInfos {
			f.widths[i] = ci.CharacterWidth
		}
		if w, ok := f.lookupWidth(f.defaultChar); ok && w > 0 {
			f.defaultWidth = w
		}
	}
	return f, nil
}

// Close releases the server-side font resource.
func (f *Font) Close() {
	xproto.CloseFont(f.conn, f.id)
}

// Name returns the pattern the font was opened with.
func (f *Font) Name() string { return f.name }

// Ascent returns the distance from the baseline to the top of the glyphs.
func (f *Font) Ascent() int { return f.ascent }

// Height returns the line height (ascent plus descent).
func (f *Font) Height() int { return f.ascent + f.descent }

// lookupWidth resolves the advance of one 16-bit character code against
// the font's char-info table.
func (f *Font) lookupWidth(code uint16) (int, bool) {
	if f.widths == nil {
		return 0, false
	}
	var idx int
	if f.minByte1 == 0 && f.maxByte1 == 0 {
		if code < f.minB2 || code > f.maxB2 {
			return 0, false
		}
		idx = int(code - f.minB2)
	} else {
		b1, b2 := byte(code>>8), uint16(code&0xff)
		if b1 < f.minByte1 || b1 > f.maxByte1 || b2 < f.minB2 || b2 > f.maxB2 {
			return 0, false
		}
		cols := int(f.maxB2-f.minB2) + 1
		idx = int(b1-f.minByte1)*cols + int(b2-f.minB2)
	}
	if idx < 0 || idx >= len(f.widths) {
		return 0, false
	}
	return int(f.widths[idx]), true
}

// charWidth returns the advance of one character, falling back to the
// font's default for codes the font does not cover.
func (f *Font) charWidth(ch xproto.Char2b) int {
	code := uint16(ch.Byte1)<<8 | uint16(ch.Byte2)
	if w, ok := f.lookupWidth(code); ok && w > 0 {
		return w
	}
	return f.defaultWidth
}

// TextWidth returns the pixel width of the whole text in this font.
func (f *Font) TextWidth(t *Text) int {
	w := 0
	for _, ch := range t.ucs2 {
		w += f.charWidth(ch)
	}
	return w
}

// truncate returns the longest prefix of the text that fits maxWidth
// pixels. maxWidth <= 0 means no limit.
func (f *Font) truncate(t *Text, maxWidth int) []xproto.Char2b {
	if maxWidth <= 0 {
		return t.ucs2
	}
	w := 0
	for i, ch := range t.ucs2 {
		w += f.charWidth(ch)
		if w > maxWidth {
			return t.ucs2[:i]
		}
	}
	return t.ucs2
}

// SetColors loads the foreground and background pixels, and this font,
// into the graphics context used by the next text request.
func (f *Font) SetColors(gc xproto.Gcontext, fg, bg uint32) {
	mask := uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcFont)
	xproto.ChangeGC(f.conn, gc, mask, []uint32{fg, bg, uint32(f.id)})
}

// Draw renders the text on the drawable with the top of the line at y,
// truncated to maxWidth pixels. The image-text request paints the
// background box itself, so the caller only loads colors via SetColors.
// One request carries at most 255 characters; longer text is split and
// each chunk advanced by its measured width.
func (f *Font) Draw(d xproto.Drawable, gc xproto.Gcontext, x, y, maxWidth int, t *Text) {
	chars := f.truncate(t, maxWidth)
	baseline := y + f.ascent
	for len(chars) > 0 {
		n := len(chars)
		if n > 255 {
			n = 255
		}
		chunk := chars[:n]
		xproto.ImageText16(f.conn, byte(n), d, gc, int16(x), int16(baseline), chunk)
		for _, ch := range chunk {
			x += f.charWidth(ch)
		}
		chars = chars[n:]
	}
}
