package vdp

import "testing"

func TestGrbToRGB8_BlackAndWhite(t *testing.T) {
	r, g, b := grbToRGB8(0x000)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("grb 0x000 = (%d,%d,%d), want black", r, g, b)
	}
	r, g, b = grbToRGB8(0x1FF)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("grb 0x1FF = (%d,%d,%d), want white", r, g, b)
	}
}

func TestGrbToRGB8_ChannelPacking(t *testing.T) {
	// bits 8:6 = G, 5:3 = R, 2:0 = B; set only R to max.
	r, g, b := grbToRGB8(0x038)
	if r != 255 {
		t.Errorf("R channel = %d, want 255", r)
	}
	if g != 0 || b != 0 {
		t.Errorf("unexpected G/B bleed: g=%d b=%d", g, b)
	}
}

func TestMSX1Palette_TransparentIsBlack(t *testing.T) {
	if msx1Palette[0] != [3]uint8{0, 0, 0} {
		t.Errorf("MSX1 palette index 0 = %v, want black", msx1Palette[0])
	}
}
