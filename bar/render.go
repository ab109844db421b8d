package bar

import (
	"github.com/BlackSnak89/i3/config"
	"github.com/BlackSnak89/i3/drawutil"
	"github.com/BlackSnak89/i3/ipc"
	"github.com/BlackSnak89/i3/statusline"
	"github.com/BlackSnak89/i3/x11"
)

const (
	wsPadding = 5 // text inset inside a workspace button
	wsGap     = 3 // space before and between workspace buttons
)

// view holds what one redraw needs, plus the hit regions the last
// render produced for click routing.
type view struct {
	cfg    *config.Config
	pal    config.Palette
	font   drawutil.Font
	width  int
	height int

	workspaces []ipc.Workspace
	mode       string // binding mode indicator; empty when default
	line       statusline.Update

	wsRects    []region
	blockRects []region
}

// region is a horizontal span of the bar and what lives there.
type region struct {
	x, w           int
	name, instance string
}

// render draws the whole bar into the buffer: background, workspace
// buttons and the binding mode indicator on the left, the statusline
// right-aligned. Everything goes through the drawing facade.
func (v *view) render(buf *drawutil.Surface) {
	v.wsRects = v.wsRects[:0]
	v.blockRects = v.blockRects[:0]

	buf.Clear(v.pal.Background)
	x := 0
	if v.cfg.WorkspaceButtons {
		x = v.drawWorkspaces(buf)
	}
	if v.mode != "" {
		x = v.drawButton(buf, x, v.mode, v.pal.Urgent)
	}
	v.drawStatus(buf, x)
}

func (v *view) textY() int {
	return (v.height - v.font.Height()) / 2
}

func (v *view) drawWorkspaces(buf *drawutil.Surface) int {
	x := 0
	for _, ws := range v.workspaces {
		next := v.drawButton(buf, x, ws.Name, v.wsColors(ws))
		v.wsRects = append(v.wsRects, region{x: x + wsGap, w: next - x - wsGap, name: ws.Name})
		x = next
	}
	return x
}

// drawButton paints one bordered button a gap after x and returns where
// the button ends.
func (v *view) drawButton(buf *drawutil.Surface, x int, label string, c config.WorkspacePalette) int {
	t := x11.NewText(label)
	w := v.font.TextWidth(t) + 2*wsPadding
	bx := x + wsGap
	buf.Rectangle(c.Border, float64(bx), 0, float64(w), float64(v.height))
	buf.Rectangle(c.Background, float64(bx+1), 1, float64(w-2), float64(v.height-2))
	buf.DrawText(v.font, t, c.Text, c.Background, bx+wsPadding, v.textY(), w-2*wsPadding)
	return bx + w
}

func (v *view) wsColors(ws ipc.Workspace) config.WorkspacePalette {
	switch {
	case ws.Urgent:
		return v.pal.Urgent
	case ws.Focused:
		return v.pal.Focused
	case ws.Visible:
		return v.pal.Active
	default:
		return v.pal.Inactive
	}
}

func (v *view) drawStatus(buf *drawutil.Surface, left int) {
	if len(v.line) == 0 {
		return
	}
	measure := func(s string) int { return v.font.TextWidth(x11.NewText(s)) }

	type laid struct {
		blk *statusline.Block
		t   *x11.Text
		w   int
		sep int // separator width after the block; 0 for the last
	}
	blocks := make([]laid, 0, len(v.line))
	total := 0
	for i := range v.line {
		blk := &v.line[i]
		t := x11.NewText(blk.FullText)
		w := v.font.TextWidth(t)
		if mw := blk.MinWidth.Pixels(measure); mw > w {
			w = mw
		}
		sep := 0
		if blk.Separator && i < len(v.line)-1 {
			sep = blk.SeparatorBlockWidth
		}
		blocks = append(blocks, laid{blk: blk, t: t, w: w, sep: sep})
		total += w + sep
	}

	x := v.width - total
	if x < left {
		x = left
	}
	for _, lb := range blocks {
		blk := lb.blk

		bg := v.pal.Background
		fg := v.pal.Statusline
		switch {
		case blk.Urgent:
			bg, fg = v.pal.Urgent.Background, v.pal.Urgent.Text
		default:
			if blk.Background != "" {
				bg = drawutil.HexToColor(blk.Background)
			}
			if blk.Color != "" {
				fg = drawutil.HexToColor(blk.Color)
			}
		}

		switch {
		case blk.Border != "":
			buf.Rectangle(drawutil.HexToColor(blk.Border), float64(x), 0, float64(lb.w), float64(v.height))
			buf.Rectangle(bg, float64(x+1), 1, float64(lb.w-2), float64(v.height-2))
		case bg != v.pal.Background:
			buf.Rectangle(bg, float64(x), 0, float64(lb.w), float64(v.height))
		}

		textW := v.font.TextWidth(lb.t)
		offset := 0
		switch blk.Align {
		case "center":
			offset = (lb.w - textW) / 2
		case "right":
			offset = lb.w - textW
		}
		if offset < 0 {
			offset = 0
		}
		buf.DrawText(v.font, lb.t, fg, bg, x+offset, v.textY(), lb.w-offset)

		v.blockRects = append(v.blockRects, region{x: x, w: lb.w, name: blk.Name, instance: blk.Instance})
		x += lb.w

		if lb.sep > 0 {
			v.drawSeparator(buf, x, lb.sep)
			x += lb.sep
		}
	}
}

// drawSeparator fills the gap after a block: the configured symbol when
// there is one, a thin line otherwise.
func (v *view) drawSeparator(buf *drawutil.Surface, x, width int) {
	if sym := v.cfg.SeparatorSymbol; sym != "" {
		t := x11.NewText(sym)
		w := v.font.TextWidth(t)
		buf.DrawText(v.font, t, v.pal.Separator, v.pal.Background, x+(width-w)/2, v.textY(), w)
		return
	}
	buf.Rectangle(v.pal.Separator, float64(x+width/2), 2, 1, float64(v.height-4))
}

// hitWorkspace finds the workspace button under bar coordinate x.
func (v *view) hitWorkspace(x int) (string, bool) {
	for _, r := range v.wsRects {
		if x >= r.x && x < r.x+r.w {
			return r.name, true
		}
	}
	return "", false
}

// hitBlock finds the statusline block under bar coordinate x.
func (v *view) hitBlock(x int) (name, instance string, ok bool) {
	for _, r := range v.blockRects {
		if x >= r.x && x < r.x+r.w {
			return r.name, r.instance, true
		}
	}
	return "", "", false
}
