package bar

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/BlackSnak89/i3/config"
	"github.com/BlackSnak89/i3/drawutil"
	"github.com/BlackSnak89/i3/drawutiltest"
	"github.com/BlackSnak89/i3/ipc"
	"github.com/BlackSnak89/i3/statusline"
)

// Fixture: a 400x20 bar with a 7px-per-char font of height 14, so text
// sits at y=3. Colors are the stock palette.
func testView(t *testing.T, width int) (*view, *drawutil.Surface, drawutiltest.GettableDrawOps) {
	t.Helper()
	cfg := config.Default()
	pal, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	be := drawutiltest.NewRecording()
	buf := new(drawutil.Surface)
	if err := drawutil.Init(buf, be, 1, width, 20); err != nil {
		t.Fatalf("Init: %v", err)
	}
	rec := be.(drawutiltest.GettableDrawOps)
	rec.Clear()
	v := &view{
		cfg:    cfg,
		pal:    pal,
		font:   drawutiltest.NewFont(7, 11, 3),
		width:  width,
		height: 20,
	}
	return v, buf, rec
}

func TestRenderEmptyBar(t *testing.T) {
	v, buf, rec := testView(t, 400)
	v.render(buf)
	want := []string{"clear #000000ff on 1"}
	if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderWorkspaceButtons(t *testing.T) {
	v, buf, rec := testView(t, 400)
	v.workspaces = []ipc.Workspace{
		{Num: 1, Name: "1", Focused: true},
		{Num: -1, Name: "mail"},
	}
	v.render(buf)

	want := []string{
		"clear #000000ff on 1",
		"rectangle #4c7899ff (3,0) 17x20 on 1",
		"rectangle #285577ff (4,1) 15x18 on 1",
		`text "1" fg #ffffffff bg #285577ff (8,3) max 7 on 1`,
		"rectangle #333333ff (23,0) 38x20 on 1",
		"rectangle #222222ff (24,1) 36x18 on 1",
		`text "mail" fg #888888ff bg #222222ff (28,3) max 28 on 1`,
	}
	if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}

	hits := []struct {
		x    int
		name string
		ok   bool
	}{
		{0, "", false},  // leading gap
		{3, "1", true},  // left edge of the first button
		{19, "1", true}, // last pixel of the first button
		{20, "", false}, // gap between buttons
		{25, "mail", true},
		{60, "mail", true},
		{61, "", false},
	}
	for _, h := range hits {
		name, ok := v.hitWorkspace(h.x)
		if name != h.name || ok != h.ok {
			t.Errorf("hitWorkspace(%d) = %q, %v, want %q, %v", h.x, name, ok, h.name, h.ok)
		}
	}
}

func TestWorkspaceColorPrecedence(t *testing.T) {
	cfg := config.Default()
	pal, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	v := &view{cfg: cfg, pal: pal}
	tt := []struct {
		name string
		ws   ipc.Workspace
		want config.WorkspacePalette
	}{
		{"urgent beats focused", ipc.Workspace{Urgent: true, Focused: true}, pal.Urgent},
		{"focused beats visible", ipc.Workspace{Focused: true, Visible: true}, pal.Focused},
		{"visible", ipc.Workspace{Visible: true}, pal.Active},
		{"plain", ipc.Workspace{}, pal.Inactive},
	}
	for _, tc := range tt {
		if got := v.wsColors(tc.ws); got != tc.want {
			t.Errorf("%s: wsColors = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestRenderStatusline(t *testing.T) {
	v, buf, rec := testView(t, 400)
	v.line = statusline.Update{
		{FullText: "CPU 50%", Name: "cpu", Separator: true, SeparatorBlockWidth: 9},
		{FullText: "12:00", Name: "clock", Instance: "local", Separator: true, SeparatorBlockWidth: 9},
	}
	v.render(buf)

	// 49px + 9px separator + 35px right-aligned on a 400px bar puts the
	// first block at x=307 and the separator line in the middle of its
	// nine pixels.
	want := []string{
		"clear #000000ff on 1",
		`text "CPU 50%" fg #ffffffff bg #000000ff (307,3) max 49 on 1`,
		"rectangle #666666ff (360,2) 1x16 on 1",
		`text "12:00" fg #ffffffff bg #000000ff (365,3) max 35 on 1`,
	}
	if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}

	hits := []struct {
		x              int
		name, instance string
		ok             bool
	}{
		{306, "", "", false},
		{307, "cpu", "", true},
		{355, "cpu", "", true},
		{356, "", "", false}, // separator band
		{365, "clock", "local", true},
		{399, "clock", "local", true},
	}
	for _, h := range hits {
		name, instance, ok := v.hitBlock(h.x)
		if name != h.name || instance != h.instance || ok != h.ok {
			t.Errorf("hitBlock(%d) = %q, %q, %v, want %q, %q, %v",
				h.x, name, instance, ok, h.name, h.instance, h.ok)
		}
	}
}

func TestRenderSeparatorSymbol(t *testing.T) {
	v, buf, rec := testView(t, 400)
	v.cfg.SeparatorSymbol = "|"
	v.line = statusline.Update{
		{FullText: "CPU 50%", Separator: true, SeparatorBlockWidth: 9},
		{FullText: "12:00", Separator: true, SeparatorBlockWidth: 9},
	}
	v.render(buf)

	want := []string{
		"clear #000000ff on 1",
		`text "CPU 50%" fg #ffffffff bg #000000ff (307,3) max 49 on 1`,
		`text "|" fg #666666ff bg #000000ff (357,3) max 7 on 1`,
		`text "12:00" fg #ffffffff bg #000000ff (365,3) max 35 on 1`,
	}
	if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderBlockStyles(t *testing.T) {
	tt := []struct {
		name  string
		block statusline.Block
		want  []string
	}{
		{
			name:  "urgent fills the urgent background",
			block: statusline.Block{FullText: "ALERT", Urgent: true},
			want: []string{
				"clear #000000ff on 1",
				"rectangle #900000ff (365,0) 35x20 on 1",
				`text "ALERT" fg #ffffffff bg #900000ff (365,3) max 35 on 1`,
			},
		},
		{
			name:  "own colors fill the block background",
			block: statusline.Block{FullText: "ok", Color: "#00ff00", Background: "#111111"},
			want: []string{
				"clear #000000ff on 1",
				"rectangle #111111ff (386,0) 14x20 on 1",
				`text "ok" fg #00ff00ff bg #111111ff (386,3) max 14 on 1`,
			},
		},
		{
			name:  "border draws a frame around the block",
			block: statusline.Block{FullText: "b", Border: "#ff0000"},
			want: []string{
				"clear #000000ff on 1",
				"rectangle #ff0000ff (393,0) 7x20 on 1",
				"rectangle #000000ff (394,1) 5x18 on 1",
				`text "b" fg #ffffffff bg #000000ff (393,3) max 7 on 1`,
			},
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			v, buf, rec := testView(t, 400)
			v.line = statusline.Update{tc.block}
			v.render(buf)
			if diff := cmp.Diff(tc.want, rec.DrawOps()); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderMinWidthAndAlign(t *testing.T) {
	tt := []struct {
		name  string
		block statusline.Block
		want  string
	}{
		{
			name:  "center shifts the text into the minimum width",
			block: statusline.Block{FullText: "42", MinWidth: statusline.MinWidth{Px: 100}, Align: "center"},
			want:  `text "42" fg #ffffffff bg #000000ff (343,3) max 57 on 1`,
		},
		{
			name:  "right pushes the text to the far edge",
			block: statusline.Block{FullText: "42", MinWidth: statusline.MinWidth{Px: 100}, Align: "right"},
			want:  `text "42" fg #ffffffff bg #000000ff (386,3) max 14 on 1`,
		},
		{
			name:  "sample text sets the width",
			block: statusline.Block{FullText: "9:05", MinWidth: statusline.MinWidth{Sample: "00:00"}},
			want:  `text "9:05" fg #ffffffff bg #000000ff (365,3) max 35 on 1`,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			v, buf, rec := testView(t, 400)
			v.line = statusline.Update{tc.block}
			v.render(buf)
			want := []string{"clear #000000ff on 1", tc.want}
			if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderModeIndicator(t *testing.T) {
	v, buf, rec := testView(t, 400)
	v.mode = "resize"
	v.render(buf)

	want := []string{
		"clear #000000ff on 1",
		"rectangle #2f343aff (3,0) 52x20 on 1",
		"rectangle #900000ff (4,1) 50x18 on 1",
		`text "resize" fg #ffffffff bg #900000ff (8,3) max 42 on 1`,
	}
	if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestStatuslineClampsToLeftEdge(t *testing.T) {
	v, buf, rec := testView(t, 100)
	v.line = statusline.Update{{FullText: "averylongstatusline"}}
	v.render(buf)

	// 133px of text on a 100px bar starts at the left edge instead of a
	// negative x.
	want := []string{
		"clear #000000ff on 1",
		`text "averylongstatusline" fg #ffffffff bg #000000ff (0,3) max 133 on 1`,
	}
	if diff := cmp.Diff(want, rec.DrawOps()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderResetsHitRegions(t *testing.T) {
	v, buf, _ := testView(t, 400)
	v.workspaces = []ipc.Workspace{{Name: "1"}}
	v.line = statusline.Update{{FullText: "x", Name: "a"}}
	v.render(buf)
	v.workspaces = nil
	v.line = nil
	v.render(buf)
	if len(v.wsRects) != 0 || len(v.blockRects) != 0 {
		t.Errorf("stale hit regions after empty render: ws %d, blocks %d",
			len(v.wsRects), len(v.blockRects))
	}
}
