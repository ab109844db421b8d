package drawutil

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/BlackSnak89/i3/x11"
)

// Backend renders the facade's operations onto drawables. The two
// production backends are chosen by New when the drawing layer is built,
// so both can live in one binary; tests substitute their own.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// InitSurface allocates the per-surface resources. The surface's
	// drawable and size are set; everything else is the backend's to
	// fill in. A failed allocation leaves nothing behind.
	InitSurface(s *Surface) error

	// FreeSurface releases what InitSurface allocated.
	FreeSurface(s *Surface)

	// Rectangle fills the given rectangle, replacing destination pixels
	// (alpha included) rather than blending over them.
	Rectangle(s *Surface, c Color, x, y, w, h float64)

	// ClearSurface fills the whole surface the same way.
	ClearSurface(s *Surface, c Color)

	// Copy transfers a w×h region between two surfaces of this backend.
	Copy(src, dest *Surface, srcX, srcY, destX, destY, w, h float64)

	// Text renders text through the font primitive, keeping any
	// client-side pixel state coherent around the server-side draw.
	Text(s *Surface, f Font, t *x11.Text, fg, bg Color, x, y, maxWidth int)
}

// Font is the glyph primitive surfaces draw text with. The production
// implementation is x11.Font; tests substitute their own metrics.
type Font interface {
	Ascent() int
	Height() int
	TextWidth(t *x11.Text) int
	SetColors(gc xproto.Gcontext, fg, bg uint32)
	Draw(d xproto.Drawable, gc xproto.Gcontext, x, y, maxWidth int, t *x11.Text)
}

// Mode selects a production backend.
type Mode int

const (
	// Protocol issues immediate drawing requests against the drawable.
	Protocol Mode = iota
	// Retained renders into a client-side pixel mirror and uploads the
	// touched regions.
	Retained
)

func (m Mode) String() string {
	switch m {
	case Protocol:
		return "protocol"
	case Retained:
		return "retained"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps the command-line spelling of a backend to its Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "protocol":
		return Protocol, nil
	case "retained":
		return Retained, nil
	}
	return 0, fmt.Errorf("unknown drawing backend %q", s)
}

// New builds the backend for the given mode, bound to the connection
// context.
func New(ctx *x11.Context, m Mode) (Backend, error) {
	switch m {
	case Protocol:
		return &protocolBackend{ctx: ctx}, nil
	case Retained:
		if ctx.BitsPerPixel() != 32 {
			return nil, fmt.Errorf("retained drawing needs 32-bit pixel transport, server stores %d", ctx.BitsPerPixel())
		}
		return &retainedBackend{srv: x11Server{ctx: ctx}}, nil
	}
	return nil, fmt.Errorf("unknown drawing backend %v", m)
}

// ResourceError reports a failed allocation of a rendering resource
// during surface setup. Such a failure means the environment cannot
// render; whether that is fatal is the embedding application's call, so
// it is reported instead of acted on.
type ResourceError struct {
	Op       string
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: could not create %s: %v", e.Op, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
