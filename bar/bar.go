// Package bar assembles the dock window and runs it: one select loop
// over display events, statusline updates and window manager events,
// with every redraw drawn into a back buffer through the drawing facade
// and copied onto the window.
package bar

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/sirupsen/logrus"

	"github.com/BlackSnak89/i3/config"
	"github.com/BlackSnak89/i3/drawutil"
	"github.com/BlackSnak89/i3/ipc"
	"github.com/BlackSnak89/i3/statusline"
	"github.com/BlackSnak89/i3/x11"
)

// Options wires a bar together. Status, WM and Events are optional: the
// bar renders whatever sources it has.
type Options struct {
	Context *x11.Context
	Backend drawutil.Backend
	Font    *x11.Font
	Config  *config.Config
	Status  *statusline.Runner
	WM      *ipc.Conn
	Events  *ipc.Subscription
	Log     *logrus.Entry
}

// Bar is one dock window with its back buffer.
type Bar struct {
	view
	ctx    *x11.Context
	status *statusline.Runner
	wm     *ipc.Conn
	sub    *ipc.Subscription
	log    *logrus.Entry

	win     *xwindow.Window
	pixmap  xproto.Pixmap
	buffer  drawutil.Surface
	screen  drawutil.Surface
	visible bool
}

// New creates the bar window, announces it as a dock, and readies the
// double-buffered drawing surfaces.
func New(o Options) (*Bar, error) {
	pal, err := o.Config.Palette()
	if err != nil {
		return nil, err
	}
	if o.Log == nil {
		o.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	b := &Bar{
		view:   view{cfg: o.Config, pal: pal, font: o.Font},
		ctx:    o.Context,
		status: o.Status,
		wm:     o.WM,
		sub:    o.Events,
		log:    o.Log,
	}

	scr := o.Context.Screen()
	b.width = int(scr.WidthInPixels)
	b.height = o.Config.Height
	if b.height == 0 {
		b.height = o.Font.Height() + 6
	}
	y := 0
	if o.Config.Position == "bottom" {
		y = int(scr.HeightInPixels) - b.height
	}

	// The window background pixel must be valid for the screen's visual;
	// on mapped visuals that takes an AllocColor round trip.
	bg, err := o.Context.AllocPixel(pal.Background.R, pal.Background.G, pal.Background.B)
	if err != nil {
		b.log.Warnf("cannot allocate the background pixel: %v", err)
		bg = pal.Background.Pixel
	}

	win, err := xwindow.Generate(o.Context.XUtil())
	if err != nil {
		return nil, fmt.Errorf("cannot allocate bar window id: %v", err)
	}
	err = win.CreateChecked(o.Context.Root(), 0, y, b.width, b.height,
		xproto.CwBackPixel|xproto.CwEventMask,
		bg,
		uint32(xproto.EventMaskExposure|xproto.EventMaskButtonPress))
	if err != nil {
		return nil, fmt.Errorf("cannot create bar window: %v", err)
	}
	b.win = win
	b.announceDock(y)

	pm, err := o.Context.NewPixmap(b.width, b.height)
	if err != nil {
		win.Destroy()
		return nil, err
	}
	b.pixmap = pm

	if err := drawutil.Init(&b.buffer, o.Backend, xproto.Drawable(pm), b.width, b.height); err != nil {
		o.Context.FreePixmap(pm)
		win.Destroy()
		return nil, fmt.Errorf("buffer surface: %v", err)
	}
	if err := drawutil.Init(&b.screen, o.Backend, xproto.Drawable(win.Id), b.width, b.height); err != nil {
		b.buffer.Free()
		o.Context.FreePixmap(pm)
		win.Destroy()
		return nil, fmt.Errorf("window surface: %v", err)
	}
	return b, nil
}

// announceDock marks the window as a dock and reserves its screen edge,
// so the window manager keeps it visible and tiles around it.
func (b *Bar) announceDock(y int) {
	xu := b.ctx.XUtil()
	id := b.win.Id
	if err := ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_DOCK"}); err != nil {
		b.log.Warnf("cannot set dock window type: %v", err)
	}
	if err := ewmh.WmNameSet(xu, id, "bar"); err != nil {
		b.log.Debugf("cannot set window name: %v", err)
	}
	if err := icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: "i3bar", Class: "i3bar"}); err != nil {
		b.log.Debugf("cannot set window class: %v", err)
	}
	if err := ewmh.WmDesktopSet(xu, id, 0xffffffff); err != nil {
		b.log.Debugf("cannot make the bar sticky: %v", err)
	}
	strut := &ewmh.WmStrutPartial{}
	if b.cfg.Position == "top" {
		strut.Top = uint(b.height)
		strut.TopEndX = uint(b.width - 1)
	} else {
		strut.Bottom = uint(b.height)
		strut.BottomEndX = uint(b.width - 1)
	}
	if err := ewmh.WmStrutPartialSet(xu, id, strut); err != nil {
		b.log.Warnf("cannot reserve screen edge: %v", err)
	}
}

// SetVisible maps or unmaps the bar, pausing and resuming the status
// child alongside.
func (b *Bar) SetVisible(v bool) {
	if v == b.visible {
		return
	}
	b.visible = v
	if v {
		b.win.Map()
		if b.status != nil {
			b.status.Cont()
		}
		b.redraw()
	} else {
		b.win.Unmap()
		if b.status != nil {
			b.status.Stop()
		}
	}
}

// redraw renders the current state into the back buffer and shows it.
func (b *Bar) redraw() {
	if !b.visible {
		return
	}
	b.render(&b.buffer)
	b.flip()
}

// flip copies the back buffer onto the window.
func (b *Bar) flip() {
	drawutil.CopySurface(&b.buffer, &b.screen, 0, 0, 0, 0, float64(b.width), float64(b.height))
}

// Run drives the bar until stop closes or the display connection ends.
func (b *Bar) Run(stop <-chan struct{}) error {
	if b.wm != nil {
		if ws, err := b.wm.Workspaces(); err != nil {
			b.log.Warnf("workspace list: %v", err)
		} else {
			b.workspaces = ws
		}
	}
	b.SetVisible(!(b.cfg.Mode == "hide" && b.cfg.HiddenState == "hide"))

	xevents := make(chan xgb.Event, 8)
	go readEvents(b.ctx.Conn(), xevents)

	var updates <-chan statusline.Update
	var done <-chan error
	if b.status != nil {
		updates, done = b.status.Updates(), b.status.Done()
	}
	var wmEvents <-chan ipc.Event
	if b.sub != nil {
		wmEvents = b.sub.Events()
	}

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-xevents:
			if !ok {
				return fmt.Errorf("display connection closed")
			}
			b.handleX(ev)
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			b.line = u
			b.redraw()
		case err := <-done:
			done = nil
			b.log.Warnf("%v", err)
			b.line = statusline.Update{errorBlock(err)}
			b.redraw()
		case ev, ok := <-wmEvents:
			if !ok {
				b.log.Warnf("window manager events ended: %v", b.sub.Err())
				wmEvents = nil
				continue
			}
			b.handleWM(ev)
		}
	}
}

// readEvents turns the blocking protocol event stream into a channel.
// The channel closes when the connection does.
func readEvents(conn *xgb.Conn, ch chan<- xgb.Event) {
	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			close(ch)
			return
		}
		if err != nil {
			continue
		}
		ch <- ev
	}
}

func (b *Bar) handleX(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ExposeEvent:
		if e.Count == 0 {
			b.flip()
		}
	case xproto.ButtonPressEvent:
		b.click(int(e.EventX), int(e.RootX), int(e.RootY), int(e.Detail))
	}
}

func (b *Bar) click(x, rootX, rootY, button int) {
	if name, ok := b.hitWorkspace(x); ok {
		if b.wm == nil {
			return
		}
		if err := b.wm.RunCommand(fmt.Sprintf("workspace %q", name)); err != nil {
			b.log.Warnf("workspace switch: %v", err)
		}
		return
	}
	if b.status == nil {
		return
	}
	if name, instance, ok := b.hitBlock(x); ok {
		err := b.status.Click(statusline.ClickEvent{
			Name: name, Instance: instance,
			Button: button, X: rootX, Y: rootY,
		})
		if err != nil {
			b.log.Warnf("click event: %v", err)
		}
	}
}

func (b *Bar) handleWM(ev ipc.Event) {
	switch ev.Type {
	case ipc.EventWorkspace, ipc.EventOutput:
		if b.wm == nil {
			return
		}
		ws, err := b.wm.Workspaces()
		if err != nil {
			b.log.Warnf("workspace list: %v", err)
			return
		}
		b.workspaces = ws
		b.redraw()
	case ipc.EventMode:
		change, err := ev.Change()
		if err != nil {
			b.log.Warnf("mode event: %v", err)
			return
		}
		if change == "default" {
			b.mode = ""
		} else {
			b.mode = change
		}
		b.redraw()
	case ipc.EventBarConfigUpdate:
		bc, err := ev.BarConfig()
		if err != nil {
			b.log.Warnf("barconfig event: %v", err)
			return
		}
		switch {
		case bc.Mode == "invisible":
			b.SetVisible(false)
		case bc.Mode == "hide" && bc.HiddenState == "hide":
			b.SetVisible(false)
		default:
			b.SetVisible(true)
		}
	}
}

func errorBlock(err error) statusline.Block {
	return statusline.Block{FullText: err.Error(), Urgent: true}
}

// Close releases the bar's window and drawing resources. The final
// round trip drains the teardown requests before the connection drops.
func (b *Bar) Close() {
	b.screen.Free()
	b.buffer.Free()
	b.ctx.FreePixmap(b.pixmap)
	b.win.Destroy()
	b.ctx.Sync()
}
