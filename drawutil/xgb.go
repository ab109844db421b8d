package drawutil

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/BlackSnak89/i3/x11"
)

// protocolBackend draws with immediate requests: every operation is one
// request against the drawable and the server owns all pixel state, so
// there is nothing to flush and nothing to go stale.
type protocolBackend struct {
	ctx *x11.Context
}

func (b *protocolBackend) Name() string { return "protocol" }

// allocGC creates the graphics context every surface carries, checking
// the request so a rejected allocation surfaces as an error instead of a
// protocol error event later.
func allocGC(ctx *x11.Context, s *Surface) error {
	conn := ctx.Conn()
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return &ResourceError{Op: "surface init", Resource: "graphics context id", Err: err}
	}
	if err := xproto.CreateGCChecked(conn, gc, s.Drawable, 0, nil).Check(); err != nil {
		return &ResourceError{Op: "surface init", Resource: "graphical context", Err: err}
	}
	s.GC = gc
	return nil
}

func releaseGC(ctx *x11.Context, s *Surface) {
	xproto.FreeGC(ctx.Conn(), s.GC)
}

func (b *protocolBackend) InitSurface(s *Surface) error {
	return allocGC(b.ctx, s)
}

func (b *protocolBackend) FreeSurface(s *Surface) {
	releaseGC(b.ctx, s)
}

// setSourceColor loads the color into both color slots of the graphics
// context, so fills and text backgrounds agree on what the color means.
func (b *protocolBackend) setSourceColor(s *Surface, c Color) {
	mask := uint32(xproto.GcForeground | xproto.GcBackground)
	xproto.ChangeGC(b.ctx.Conn(), s.GC, mask, []uint32{c.Pixel, c.Pixel})
}

func (b *protocolBackend) Rectangle(s *Surface, c Color, x, y, w, h float64) {
	b.setSourceColor(s, c)
	rect := xproto.Rectangle{
		X: int16(x), Y: int16(y),
		Width: uint16(w), Height: uint16(h),
	}
	xproto.PolyFillRectangle(b.ctx.Conn(), s.Drawable, s.GC, []xproto.Rectangle{rect})
}

func (b *protocolBackend) ClearSurface(s *Surface, c Color) {
	b.Rectangle(s, c, 0, 0, float64(s.Width), float64(s.Height))
}

// Copy is one area-copy request. Coordinates truncate toward zero to fit
// the integer wire format.
func (b *protocolBackend) Copy(src, dest *Surface, srcX, srcY, destX, destY, w, h float64) {
	xproto.CopyArea(b.ctx.Conn(), src.Drawable, dest.Drawable, dest.GC,
		int16(srcX), int16(srcY), int16(destX), int16(destY),
		uint16(w), uint16(h))
}

func (b *protocolBackend) Text(s *Surface, f Font, t *x11.Text, fg, bg Color, x, y, maxWidth int) {
	f.SetColors(s.GC, fg.Pixel, bg.Pixel)
	f.Draw(s.Drawable, s.GC, x, y, maxWidth, t)
}
