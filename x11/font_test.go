package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/google/go-cmp/cmp"
)

// testFont builds a linear font covering codes 32–126 where every
// character is 6px wide except 'W' (10px), with an 8px fallback.
func testFont() *Font {
	f := &Font{
		minB2:        32,
		maxB2:        126,
		defaultChar:  32,
		defaultWidth: 8,
		ascent:       11,
		descent:      3,
	}
	f.widths = make([]int16, int(f.maxB2-f.minB2)+1)
	for i := range f.widths {
		f.widths[i] = 6
	}
	f.widths['W'-32] = 10
	return f
}

func TestNewText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []xproto.Char2b
	}{
		{"ascii", "ab", []xproto.Char2b{{Byte1: 0, Byte2: 'a'}, {Byte1: 0, Byte2: 'b'}}},
		{"latin1", "é", []xproto.Char2b{{Byte1: 0x00, Byte2: 0xe9}}},
		{"bmp", "→", []xproto.Char2b{{Byte1: 0x21, Byte2: 0x92}}},
		{"astral_replaced", "\U0001F600", []xproto.Char2b{{Byte1: 0xff, Byte2: 0xfd}}},
		{"empty", "", []xproto.Char2b{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewText(tc.in)
			if diff := cmp.Diff(tc.want, got.ucs2); diff != "" {
				t.Errorf("NewText(%q) encoding mismatch (-want +got):\n%s", tc.in, diff)
			}
			if got.String() != tc.in {
				t.Errorf("String() = %q, want %q", got.String(), tc.in)
			}
			if got.Len() != len(tc.want) {
				t.Errorf("Len() = %d, want %d", got.Len(), len(tc.want))
			}
		})
	}
}

func TestTextWidth(t *testing.T) {
	f := testFont()
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"plain", "abc", 18},
		{"wide_char", "WW", 20},
		{"mixed", "aWa", 22},
		{"outside_table", "é", 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.TextWidth(NewText(tc.in)); got != tc.want {
				t.Errorf("TextWidth(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	f := testFont()
	tests := []struct {
		name     string
		in       string
		maxWidth int
		want     int // characters kept
	}{
		{"no_limit", "abcd", 0, 4},
		{"negative_no_limit", "abcd", -1, 4},
		{"exact_fit", "abc", 18, 3},
		{"one_short", "abc", 17, 2},
		{"nothing_fits", "abc", 5, 0},
		{"wide_char_cut", "aW", 15, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := f.truncate(NewText(tc.in), tc.maxWidth)
			if len(got) != tc.want {
				t.Errorf("truncate(%q, %d) kept %d chars, want %d",
					tc.in, tc.maxWidth, len(got), tc.want)
			}
		})
	}
}

func TestLookupWidthMatrix(t *testing.T) {
	// Row/column font: byte1 in 1..2, byte2 in 3..4, so four cells.
	f := &Font{
		minByte1:     1,
		maxByte1:     2,
		minB2:        3,
		maxB2:        4,
		defaultWidth: 9,
		widths:       []int16{10, 11, 12, 13},
	}
	tests := []struct {
		code uint16
		want int
		ok   bool
	}{
		{0x0103, 10, true},
		{0x0104, 11, true},
		{0x0203, 12, true},
		{0x0204, 13, true},
		{0x0105, 0, false},
		{0x0303, 0, false},
		{0x0003, 0, false},
	}
	for _, tc := range tests {
		got, ok := f.lookupWidth(tc.code)
		if got != tc.want || ok != tc.ok {
			t.Errorf("lookupWidth(%#04x) = %d, %v; want %d, %v",
				tc.code, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFontHeight(t *testing.T) {
	f := testFont()
	if got := f.Height(); got != 14 {
		t.Errorf("Height() = %d, want 14", got)
	}
	if got := f.Ascent(); got != 11 {
		t.Errorf("Ascent() = %d, want 11", got)
	}
}
