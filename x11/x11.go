// Package x11 maintains the X connection state shared by the bar: the
// connection itself, the default screen, and the root visual type
// describing the screen's color model. It also carries the protocol-level
// text primitive (core fonts) and raw image transfer between client
// buffers and drawables.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Context is the connection context handed to every component that talks
// to the display. It replaces process-wide globals: the owner creates it,
// passes it down, and closes it.
type Context struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
	visual xproto.VisualInfo
	depth  byte
	bpp    byte
}

// Connect opens a connection to the given display (the usual ":0" form;
// empty means $DISPLAY) and resolves the root visual type.
func Connect(display string) (*Context, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to display %q: %v", display, err)
	}

	conn := xu.Conn()
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	visual, depth, err := findVisual(screen, screen.RootVisual)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Context{
		xu:     xu,
		conn:   conn,
		setup:  setup,
		screen: screen,
		visual: visual,
		depth:  depth,
		bpp:    bitsPerPixel(setup, depth),
	}, nil
}

// findVisual locates the visual type record for the given visual id.
func findVisual(screen *xproto.ScreenInfo, id xproto.Visualid) (xproto.VisualInfo, byte, error) {
	for _, d := range screen.AllowedDepths {
		for _, v := range d.Visuals {
			if v.VisualId == id {
				return v, d.Depth, nil
			}
		}
	}
	return xproto.VisualInfo{}, 0, fmt.Errorf("no visual type for visual id %d", id)
}

// bitsPerPixel reports the server's storage size for pixels of the given
// depth. Depth 24 is almost always stored as 32 bits per pixel.
func bitsPerPixel(setup *xproto.SetupInfo, depth byte) byte {
	for _, f := range setup.PixmapFormats {
		if f.Depth == depth {
			return f.BitsPerPixel
		}
	}
	return 32
}

// Conn returns the underlying protocol connection.
func (c *Context) Conn() *xgb.Conn { return c.conn }

// XUtil returns the xgbutil handle for property helpers.
func (c *Context) XUtil() *xgbutil.XUtil { return c.xu }

// Screen returns the default screen.
func (c *Context) Screen() *xproto.ScreenInfo { return c.screen }

// Root returns the root window of the default screen.
func (c *Context) Root() xproto.Window { return c.screen.Root }

// Visual returns the root visual type. Both the retained drawing backend
// and window creation bind to this color model.
func (c *Context) Visual() xproto.VisualInfo { return c.visual }

// Depth returns the root depth in bits.
func (c *Context) Depth() byte { return c.depth }

// BitsPerPixel returns the server's storage size for root-depth pixels.
func (c *Context) BitsPerPixel() byte { return c.bpp }

// MaxRequestBytes returns the largest request size the server accepts,
// in bytes.
func (c *Context) MaxRequestBytes() int {
	return int(c.setup.MaximumRequestLength) * 4
}

// ColorPixel composes the protocol pixel for an opaque color on a
// truecolor visual. Channels are normalized to [0,1].
func ColorPixel(r, g, b float64) uint32 {
	return 0xff<<24 |
		uint32(r*255.0+0.5)<<16 |
		uint32(g*255.0+0.5)<<8 |
		uint32(b*255.0+0.5)
}

// AllocPixel resolves a pixel value for the color on whatever visual the
// screen has: direct composition on truecolor, an AllocColor round trip
// on mapped visuals.
func (c *Context) AllocPixel(r, g, b float64) (uint32, error) {
	switch c.visual.Class {
	case xproto.VisualClassTrueColor, xproto.VisualClassDirectColor:
		return ColorPixel(r, g, b), nil
	}
	reply, err := xproto.AllocColor(c.conn, c.screen.DefaultColormap,
		uint16(r*0xffff), uint16(g*0xffff), uint16(b*0xffff)).Reply()
	if err != nil {
		return 0, fmt.Errorf("cannot allocate color: %v", err)
	}
	return reply.Pixel, nil
}

// NewPixmap creates a server-side pixmap of the root depth, sized in
// pixels. The caller frees it with FreePixmap.
func (c *Context) NewPixmap(width, height int) (xproto.Pixmap, error) {
	id, err := xproto.NewPixmapId(c.conn)
	if err != nil {
		return 0, fmt.Errorf("cannot allocate pixmap id: %v", err)
	}
	err = xproto.CreatePixmapChecked(c.conn, c.depth, id,
		xproto.Drawable(c.screen.Root), uint16(width), uint16(height)).Check()
	if err != nil {
		return 0, fmt.Errorf("cannot create %dx%d pixmap: %v", width, height, err)
	}
	return id, nil
}

// FreePixmap releases a pixmap created with NewPixmap.
func (c *Context) FreePixmap(p xproto.Pixmap) {
	xproto.FreePixmap(c.conn, p)
}

// Sync forces a round trip, draining every request issued so far.
func (c *Context) Sync() {
	c.xu.Sync()
}

// Close shuts the connection down. The context is unusable afterwards.
func (c *Context) Close() {
	c.conn.Close()
}
