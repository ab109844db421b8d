package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestColorPixel(t *testing.T) {
	tt := []struct {
		r, g, b float64
		want    uint32
	}{
		{0, 0, 0, 0xff000000},
		{1, 1, 1, 0xffffffff},
		{1, 0, 0, 0xffff0000},
		{0x3f / 255.0, 0xbc / 255.0, 0x59 / 255.0, 0xff3fbc59},
	}
	for _, tc := range tt {
		if got := ColorPixel(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("ColorPixel(%g,%g,%g) = %#08x, want %#08x",
				tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestFindVisual(t *testing.T) {
	screen := &xproto.ScreenInfo{
		AllowedDepths: []xproto.DepthInfo{
			{Depth: 1, Visuals: []xproto.VisualInfo{{VisualId: 7}}},
			{Depth: 24, Visuals: []xproto.VisualInfo{{VisualId: 33}, {VisualId: 34}}},
		},
	}
	v, depth, err := findVisual(screen, 34)
	if err != nil {
		t.Fatalf("findVisual: %v", err)
	}
	if v.VisualId != 34 || depth != 24 {
		t.Errorf("findVisual = visual %d at depth %d, want 34 at 24", v.VisualId, depth)
	}
	if _, _, err := findVisual(screen, 99); err == nil {
		t.Error("findVisual found a visual for an unknown id")
	}
}

func TestBitsPerPixel(t *testing.T) {
	setup := &xproto.SetupInfo{
		PixmapFormats: []xproto.Format{
			{Depth: 1, BitsPerPixel: 1},
			{Depth: 24, BitsPerPixel: 32},
		},
	}
	if got := bitsPerPixel(setup, 24); got != 32 {
		t.Errorf("bitsPerPixel(24) = %d, want 32", got)
	}
	if got := bitsPerPixel(setup, 16); got != 32 {
		t.Errorf("bitsPerPixel(16) = %d, want the 32 fallback", got)
	}
}
