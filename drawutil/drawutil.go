// Package drawutil is the drawing layer of the bar. It creates surfaces
// over protocol drawables and offers a small set of verbs on them: fill a
// rectangle, clear, copy a region between surfaces, draw text. Each verb
// forwards to one of two interchangeable backends chosen at construction
// time (immediate protocol requests, or a client-side retained renderer
// that uploads its pixels), so callers never see which one is active.
package drawutil

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/BlackSnak89/i3/x11"
)

// Surface is one drawable region under the facade. A surface is either
// uninitialized or initialized: Init is the only way in, Free the only
// way out, and every drawing operation requires the initialized state.
// Each surface belongs to a single logical owner; nothing here locks.
type Surface struct {
	Drawable xproto.Drawable
	Width    int
	Height   int

	// GC is the graphics context bound to the drawable. The protocol
	// backend draws with it; the retained backend uploads through it and
	// both hand it to the text primitive.
	GC xproto.Gcontext

	backend Backend
	state   any // backend-owned per-surface state
}

// Init readies the surface for drawing on the given drawable. The
// backend allocates the graphics context and whatever per-surface state
// it keeps; on failure the surface stays uninitialized and partially
// allocated resources are released before the error comes back.
func Init(s *Surface, b Backend, d xproto.Drawable, width, height int) error {
	s.Drawable = d
	s.Width = width
	s.Height = height
	if err := b.InitSurface(s); err != nil {
		*s = Surface{}
		return err
	}
	s.backend = b
	return nil
}

// Free releases the surface's resources. Call it exactly once per
// successful Init; afterwards the surface is uninitialized again.
func (s *Surface) Free() {
	s.backend.FreeSurface(s)
	*s = Surface{}
}

// Rectangle fills one rectangle with the color, replacing whatever was
// under it. A partially transparent color lands with exactly the
// requested channels instead of blending into the old pixels, so the
// result does not depend on prior surface content.
func (s *Surface) Rectangle(c Color, x, y, w, h float64) {
	s.backend.Rectangle(s, c, x, y, w, h)
}

// Clear covers the whole surface with the color, with the same
// replacement rule as Rectangle.
func (s *Surface) Clear(c Color) {
	s.backend.ClearSurface(s, c)
}

// DrawText renders text with the top of the line at y, truncated to
// maxWidth pixels. Glyphs always come from the font primitive drawing at
// the protocol level; the retained backend re-reads the drawable
// afterwards rather than trusting its cached pixels.
func (s *Surface) DrawText(f Font, t *x11.Text, fg, bg Color, x, y, maxWidth int) {
	s.backend.Text(s, f, t, fg, bg, x, y, maxWidth)
}

// CopySurface copies a w×h region between two surfaces of the same
// backend, reading from (srcX, srcY) in src and writing at
// (destX, destY) in dest.
func CopySurface(src, dest *Surface, srcX, srcY, destX, destY, w, h float64) {
	dest.backend.Copy(src, dest, srcX, srcY, destX, destY, w, h)
}
