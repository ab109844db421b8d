// Package drawutiltest provides a recording drawing backend and a fixed
// metrics font for exercising bar code without a display server.
package drawutiltest

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/BlackSnak89/i3/drawutil"
	"github.com/BlackSnak89/i3/x11"
)

// GettableDrawOps retrieves the operations a recording backend has seen.
type GettableDrawOps interface {
	DrawOps() []string
	Clear()
}

// recordingBackend implements drawutil.Backend by appending one readable
// string per operation. Surfaces get fake graphics contexts from a
// counter, so init/free pairing shows up in the record.
type recordingBackend struct {
	drawops []string
	nextgc  uint32
}

// NewRecording returns a backend that records operations instead of
// drawing. The result also satisfies GettableDrawOps.
func NewRecording() drawutil.Backend {
	return &recordingBackend{}
}

func (b *recordingBackend) op(format string, args ...any) {
	b.drawops = append(b.drawops, fmt.Sprintf(format, args...))
}

func (b *recordingBackend) DrawOps() []string { return b.drawops }

func (b *recordingBackend) Clear() { b.drawops = nil }

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) InitSurface(s *drawutil.Surface) error {
	b.nextgc++
	s.GC = xproto.Gcontext(b.nextgc)
	b.op("init drawable %d %dx%d gc %d", s.Drawable, s.Width, s.Height, s.GC)
	return nil
}

func (b *recordingBackend) FreeSurface(s *drawutil.Surface) {
	b.op("free drawable %d gc %d", s.Drawable, s.GC)
}

func (b *recordingBackend) Rectangle(s *drawutil.Surface, c drawutil.Color, x, y, w, h float64) {
	b.op("rectangle %v (%g,%g) %gx%g on %d", c, x, y, w, h, s.Drawable)
}

func (b *recordingBackend) ClearSurface(s *drawutil.Surface, c drawutil.Color) {
	b.op("clear %v on %d", c, s.Drawable)
}

func (b *recordingBackend) Copy(src, dest *drawutil.Surface, srcX, srcY, destX, destY, w, h float64) {
	b.op("copy %d -> %d src(%g,%g) dest(%g,%g) %gx%g",
		src.Drawable, dest.Drawable, srcX, srcY, destX, destY, w, h)
}

func (b *recordingBackend) Text(s *drawutil.Surface, f drawutil.Font, t *x11.Text, fg, bg drawutil.Color, x, y, maxWidth int) {
	b.op("text %q fg %v bg %v (%d,%d) max %d on %d",
		t.String(), fg, bg, x, y, maxWidth, s.Drawable)
}

// fixedFont is a font with uniform character metrics and no server side.
type fixedFont struct {
	charWidth int
	ascent    int
	descent   int
}

// NewFont returns a font whose every character is charWidth pixels wide.
// Drawing with it is a no-op; it exists for layout math in tests.
func NewFont(charWidth, ascent, descent int) drawutil.Font {
	return &fixedFont{charWidth: charWidth, ascent: ascent, descent: descent}
}

func (f *fixedFont) Ascent() int { return f.ascent }

func (f *fixedFont) Height() int { return f.ascent + f.descent }

func (f *fixedFont) TextWidth(t *x11.Text) int { return f.charWidth * t.Len() }

func (f *fixedFont) SetColors(gc xproto.Gcontext, fg, bg uint32) {}

func (f *fixedFont) Draw(d xproto.Drawable, gc xproto.Gcontext, x, y, maxWidth int, t *x11.Text) {
}
