package x11

import (
	"bytes"
	"testing"
)

func TestSwapRB(t *testing.T) {
	rgba := []byte{
		0x11, 0x22, 0x33, 0x44,
		0xaa, 0xbb, 0xcc, 0xdd,
	}
	want := []byte{
		0x33, 0x22, 0x11, 0x44,
		0xcc, 0xbb, 0xaa, 0xdd,
	}
	got := make([]byte, len(rgba))
	swapRB(got, rgba)
	if !bytes.Equal(got, want) {
		t.Errorf("swapRB = % x, want % x", got, want)
	}

	// The swap is its own inverse.
	back := make([]byte, len(got))
	swapRB(back, got)
	if !bytes.Equal(back, rgba) {
		t.Errorf("swapRB round trip = % x, want % x", back, rgba)
	}
}

func TestSwapRBShortBuffers(t *testing.T) {
	// Trailing bytes that do not make a full pixel are left untouched.
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := []byte{0, 0, 0, 0, 9, 9}
	swapRB(dst, src)
	want := []byte{3, 2, 1, 4, 9, 9}
	if !bytes.Equal(dst, want) {
		t.Errorf("swapRB partial pixel = % x, want % x", dst, want)
	}
}
