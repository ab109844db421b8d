package drawutil

import (
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/gogpu/gg"

	"github.com/BlackSnak89/i3/x11"
)

// retainedBackend renders client-side: each surface carries a pixel
// mirror (a gg pixmap) that paint operations write with the replacement
// rule, and every operation uploads the region it touched, so the
// drawable is current when an operation returns. Text is still drawn by
// the server, which leaves the mirror stale until the next readback.
type retainedBackend struct {
	srv server
}

// server is the protocol surface the retained backend touches. The
// production implementation forwards to the connection context; tests
// substitute an in-memory pixel store.
type server interface {
	createGC(s *Surface) error
	freeGC(s *Surface)
	put(d xproto.Drawable, gc xproto.Gcontext, r image.Rectangle, rgba []byte, stride int) error
	get(d xproto.Drawable, r image.Rectangle, rgba []byte, stride int) error
}

type x11Server struct {
	ctx *x11.Context
}

func (v x11Server) createGC(s *Surface) error { return allocGC(v.ctx, s) }
func (v x11Server) freeGC(s *Surface)         { releaseGC(v.ctx, s) }

func (v x11Server) put(d xproto.Drawable, gc xproto.Gcontext, r image.Rectangle, rgba []byte, stride int) error {
	return v.ctx.PutRGBA(d, gc, r, rgba, stride)
}

func (v x11Server) get(d xproto.Drawable, r image.Rectangle, rgba []byte, stride int) error {
	return v.ctx.GetRGBA(d, r, rgba, stride)
}

// mirror is the per-surface state: the client-side pixmap plus the flag
// marking it stale relative to the drawable.
type mirror struct {
	pm    *gg.Pixmap
	stale bool
}

func mirrorOf(s *Surface) *mirror { return s.state.(*mirror) }

func (b *retainedBackend) Name() string { return "retained" }

func (b *retainedBackend) InitSurface(s *Surface) error {
	if err := b.srv.createGC(s); err != nil {
		return err
	}
	m := &mirror{pm: gg.NewPixmap(s.Width, s.Height)}
	// Start from the drawable's current pixels so the first partial fill
	// composes against reality. A failed readback rolls the graphics
	// context back and leaves the surface uninitialized.
	if err := b.srv.get(s.Drawable, s.bounds(), m.pm.Data(), s.Width*4); err != nil {
		b.srv.freeGC(s)
		return &ResourceError{Op: "surface init", Resource: "surface mirror", Err: err}
	}
	s.state = m
	return nil
}

func (b *retainedBackend) FreeSurface(s *Surface) {
	b.srv.freeGC(s)
}

func (s *Surface) bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// sync refreshes a stale mirror from the drawable. On a failed readback
// the mirror stays stale and the next reader retries.
func (b *retainedBackend) sync(s *Surface) {
	m := mirrorOf(s)
	if !m.stale {
		return
	}
	if err := b.srv.get(s.Drawable, s.bounds(), m.pm.Data(), s.Width*4); err == nil {
		m.stale = false
	}
}

func (b *retainedBackend) upload(s *Surface, r image.Rectangle) {
	r = r.Intersect(s.bounds())
	m := mirrorOf(s)
	b.srv.put(s.Drawable, s.GC, r, m.pm.Data(), s.Width*4)
}

func (b *retainedBackend) Rectangle(s *Surface, c Color, x, y, w, h float64) {
	r := truncRect(x, y, w, h).Intersect(s.bounds())
	fillRect(mirrorOf(s).pm, r, c)
	b.upload(s, r)
}

func (b *retainedBackend) ClearSurface(s *Surface, c Color) {
	m := mirrorOf(s)
	m.pm.Clear(gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	// Every pixel was rewritten, so the mirror is authoritative again.
	m.stale = false
	b.upload(s, s.bounds())
}

// Copy composites src's pixels into dest's rectangle. The source is
// positioned at (destX-srcX, srcY) relative to dest's origin: the x
// offset is relative, the y offset is the absolute source y. Callers
// depend on this placement, so it is part of the contract. Sample points
// outside src read as transparent.
func (b *retainedBackend) Copy(src, dest *Surface, srcX, srcY, destX, destY, w, h float64) {
	b.sync(src)
	r := truncRect(destX, destY, w, h).Intersect(dest.bounds())
	ox := int(destX) - int(srcX)
	oy := int(srcY)
	copyRegion(mirrorOf(dest).pm, mirrorOf(src).pm, r, ox, oy)
	b.upload(dest, r)
	// src has nothing pending: every paint operation uploads as it goes.
}

// Text draws through the font primitive like the immediate backend.
// Local paint is already on the drawable (each operation uploads its
// region), so only the other half of the bracket remains: mark the
// mirror stale afterwards, and the next retained-mode read pulls the
// glyph pixels back in instead of using a cached copy.
func (b *retainedBackend) Text(s *Surface, f Font, t *x11.Text, fg, bg Color, x, y, maxWidth int) {
	f.SetColors(s.GC, fg.Pixel, bg.Pixel)
	f.Draw(s.Drawable, s.GC, x, y, maxWidth, t)
	mirrorOf(s).stale = true
}

// truncRect converts the facade's float coordinates the way the wire
// format would: toward zero. Negative sizes collapse to empty.
func truncRect(x, y, w, h float64) image.Rectangle {
	iw, ih := int(w), int(h)
	if iw < 0 {
		iw = 0
	}
	if ih < 0 {
		ih = 0
	}
	ix, iy := int(x), int(y)
	return image.Rect(ix, iy, ix+iw, iy+ih)
}

// fillRect writes the color into a pixmap region, replacing pixels
// rather than blending: alpha is stored, not composited. The first row
// is written pixel by pixel and the rest copy it.
func fillRect(pm *gg.Pixmap, r image.Rectangle, c Color) {
	r = r.Intersect(image.Rect(0, 0, pm.Width(), pm.Height()))
	if r.Empty() {
		return
	}
	col := gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	for x := r.Min.X; x < r.Max.X; x++ {
		pm.SetPixel(x, r.Min.Y, col)
	}
	stride := pm.Width() * 4
	data := pm.Data()
	first := data[r.Min.Y*stride+r.Min.X*4 : r.Min.Y*stride+r.Max.X*4]
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := y*stride + r.Min.X*4
		copy(data[off:off+len(first)], first)
	}
}

// copyRegion writes src pixels into the dest rectangle r, sampling src
// at (x-ox, y-oy) for each dest point. Points outside src come out
// transparent; in-bounds rows are copied byte for byte.
func copyRegion(dst, src *gg.Pixmap, r image.Rectangle, ox, oy int) {
	r = r.Intersect(image.Rect(0, 0, dst.Width(), dst.Height()))
	if r.Empty() {
		return
	}
	fillRect(dst, r, Color{})
	in := r.Intersect(image.Rect(ox, oy, ox+src.Width(), oy+src.Height()))
	if in.Empty() {
		return
	}
	sstride := src.Width() * 4
	dstride := dst.Width() * 4
	sdata, ddata := src.Data(), dst.Data()
	rowBytes := in.Dx() * 4
	for y := in.Min.Y; y < in.Max.Y; y++ {
		soff := (y-oy)*sstride + (in.Min.X-ox)*4
		doff := y*dstride + in.Min.X*4
		copy(ddata[doff:doff+rowBytes], sdata[soff:soff+rowBytes])
	}
}
