// Command i3bar draws a dock bar: workspace buttons and a binding mode
// indicator on the left, the output of a status command on the right.
// It talks to the display server directly and to the window manager
// over its IPC socket.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/BlackSnak89/i3/bar"
	"github.com/BlackSnak89/i3/config"
	"github.com/BlackSnak89/i3/drawutil"
	"github.com/BlackSnak89/i3/ipc"
	"github.com/BlackSnak89/i3/statusline"
	"github.com/BlackSnak89/i3/x11"
)

const version = "1.0"

var configflag = flag.String("c", "", "bar configuration file (TOML); built-in defaults when empty")
var baridflag = flag.String("bar_id", "", "bar id whose window manager configuration overrides the file")
var socketflag = flag.String("socket", "", "window manager IPC socket; $I3SOCK when empty")
var displayflag = flag.String("display", "", "display to connect to; $DISPLAY when empty")
var backendflag = flag.String("backend", "", "drawing backend, protocol or retained; picked from the visual when empty")
var debugflag = flag.Bool("d", false, "debug logging")
var versionflag = flag.Bool("V", false, "print the version and exit")

func main() {
	flag.Parse()
	if *versionflag {
		fmt.Println("i3bar version " + version)
		return
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debugflag {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(*configflag)
	if err != nil {
		return err
	}

	ctx, err := x11.Connect(*displayflag)
	if err != nil {
		return fmt.Errorf("cannot open display: %v", err)
	}
	defer ctx.Close()

	mode := drawutil.Retained
	if ctx.BitsPerPixel() != 32 {
		mode = drawutil.Protocol
	}
	if *backendflag != "" {
		if mode, err = drawutil.ParseMode(*backendflag); err != nil {
			return err
		}
	}
	be, err := drawutil.New(ctx, mode)
	if err != nil {
		return err
	}
	logrus.Debugf("drawing through the %s backend at depth %d", be.Name(), ctx.Depth())

	socket := ipc.SocketPath(*socketflag)
	var wm *ipc.Conn
	var sub *ipc.Subscription
	if socket == "" {
		logrus.Warn("no window manager socket; workspace buttons and click commands are off")
	} else {
		if wm, err = ipc.Dial(socket); err != nil {
			return err
		}
		defer wm.Close()
		if sub, err = ipc.SubscribeEvents(socket, "workspace", "output", "mode", "barconfig_update"); err != nil {
			return err
		}
		defer sub.Close()
	}
	if *baridflag != "" && wm != nil {
		bc, err := wm.BarConfig(*baridflag)
		if err != nil {
			return err
		}
		applyBarConfig(cfg, bc)
	}

	font, err := ctx.OpenFont(cfg.Font)
	if err != nil {
		return fmt.Errorf("cannot open font %q: %v", cfg.Font, err)
	}
	defer font.Close()

	var status *statusline.Runner
	if cfg.StatusCommand != "" {
		if status, err = statusline.Run(cfg.StatusCommand, cfg.StatusPty); err != nil {
			return err
		}
		defer status.Close()
	}

	b, err := bar.New(bar.Options{
		Context: ctx,
		Backend: be,
		Font:    font,
		Config:  cfg,
		Status:  status,
		WM:      wm,
		Events:  sub,
		Log:     logrus.WithField("component", "bar"),
	})
	if err != nil {
		return err
	}
	defer b.Close()

	csignal := make(chan os.Signal, 1)
	signal.Ignore(ignoreSignals...)
	signal.Notify(csignal, hangupSignals...)
	stop := make(chan struct{})
	go func() {
		s := <-csignal
		logrus.Infof("shutting down on %v", s)
		close(stop)
	}()

	return b.Run(stop)
}

// applyBarConfig lays the window manager's settings for this bar over
// the file configuration. Values it does not understand keep the file's.
func applyBarConfig(cfg *config.Config, bc *ipc.BarConfig) {
	switch bc.Mode {
	case "dock", "hide":
		cfg.Mode = bc.Mode
	}
	switch bc.HiddenState {
	case "hide", "show":
		cfg.HiddenState = bc.HiddenState
	}
	switch bc.Position {
	case "top", "bottom":
		cfg.Position = bc.Position
	}
	set := func(dst *string, key string) {
		if v, ok := bc.Colors[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Colors.Background, "background")
	set(&cfg.Colors.Statusline, "statusline")
	set(&cfg.Colors.Separator, "separator")
	ws := func(dst *config.WorkspaceColors, key string) {
		set(&dst.Border, key+"_border")
		set(&dst.Background, key+"_bg")
		set(&dst.Text, key+"_text")
	}
	ws(&cfg.Colors.FocusedWorkspace, "focused_workspace")
	ws(&cfg.Colors.ActiveWorkspace, "active_workspace")
	ws(&cfg.Colors.InactiveWorkspace, "inactive_workspace")
	ws(&cfg.Colors.UrgentWorkspace, "urgent_workspace")
}
