package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
)

// The wire format for ZPixmap images at depth 24/32 on the usual
// little-endian server is 4 bytes per pixel in BGRA order; client buffers
// here are RGBA. The conversion is a red/blue swap, which is its own
// inverse.

func swapRB(dst, src []byte) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i+3 < n; i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
	}
}

// PutRGBA uploads the region r of a client-side RGBA buffer onto the
// drawable at the same coordinates. The buffer is indexed with the given
// row stride, so a full-drawable mirror can be uploaded region by region.
// Rows are batched to stay under the server's request size limit.
func (c *Context) PutRGBA(d xproto.Drawable, gc xproto.Gcontext, r image.Rectangle, rgba []byte, stride int) error {
	if r.Empty() {
		return nil
	}
	if c.bpp != 32 {
		return fmt.Errorf("unsupported pixel storage: %d bits per pixel", c.bpp)
	}

	rowBytes := r.Dx() * 4
	rowsPer := (c.MaxRequestBytes() - 28) / rowBytes
	if rowsPer < 1 {
		return fmt.Errorf("scanline of %d bytes exceeds the request size limit", rowBytes)
	}

	buf := make([]byte, rowsPer*rowBytes)
	for y := r.Min.Y; y < r.Max.Y; y += rowsPer {
		rows := r.Max.Y - y
		if rows > rowsPer {
			rows = rowsPer
		}
		for i := 0; i < rows; i++ {
			off := (y+i)*stride + r.Min.X*4
			swapRB(buf[i*rowBytes:(i+1)*rowBytes], rgba[off:off+rowBytes])
		}
		xproto.PutImage(c.conn, xproto.ImageFormatZPixmap, d, gc,
			uint16(r.Dx()), uint16(rows), int16(r.Min.X), int16(y),
			0, c.depth, buf[:rows*rowBytes])
	}
	return nil
}

// GetRGBA reads the region r of the drawable back into the client-side
// RGBA buffer at the same coordinates. At depths without an alpha channel
// the server-side filler byte is meaningless, so alpha is forced opaque.
func (c *Context) GetRGBA(d xproto.Drawable, r image.Rectangle, rgba []byte, stride int) error {
	if r.Empty() {
		return nil
	}
	if c.bpp != 32 {
		return fmt.Errorf("unsupported pixel storage: %d bits per pixel", c.bpp)
	}

	reply, err := xproto.GetImage(c.conn, xproto.ImageFormatZPixmap, d,
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()),
		(1<<32)-1).Reply()
	if err != nil {
		return fmt.Errorf("cannot read drawable %d back: %v", d, err)
	}

	rowBytes := r.Dx() * 4
	if len(reply.Data) < r.Dy()*rowBytes {
		return fmt.Errorf("short image reply: %d bytes for %v", len(reply.Data), r)
	}
	for y := 0; y < r.Dy(); y++ {
		off := (r.Min.Y+y)*stride + r.Min.X*4
		row := rgba[off : off+rowBytes]
		swapRB(row, reply.Data[y*rowBytes:(y+1)*rowBytes])
		if c.depth != 32 {
			for i := 3; i < len(row); i += 4 {
				row[i] = 0xff
			}
		}
	}
	return nil
}
