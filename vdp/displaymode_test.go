package vdp

import "testing"

func TestNewDisplayMode_Graphic1(t *testing.T) {
	m := NewDisplayMode(0x00, 0x00, 0x00)
	if m.Base() != ModeGraphic1 {
		t.Errorf("Base() = %#x, want Graphic1", m.Base())
	}
}

func TestNewDisplayMode_Text1(t *testing.T) {
	// R#1 bit 4 (M1) set selects Text1.
	m := NewDisplayMode(0x00, 0x10, 0x00)
	if m.Base() != ModeText1 {
		t.Errorf("Base() = %#x, want Text1", m.Base())
	}
	if !m.IsTextMode() {
		t.Error("Text1 should report IsTextMode")
	}
}

func TestNewDisplayMode_Graphic7(t *testing.T) {
	reg0 := byte(0x0E) // M5,M4,M3 = 111 after the packing shift
	reg1 := byte(0x00)
	reg25 := byte(0x00)
	m := NewDisplayMode(reg0, reg1, reg25)
	if m.Base() != ModeGraphic7 {
		t.Errorf("Base() = %#x, want Graphic7 (0x1C)", m.Base())
	}
}

func TestDisplayMode_IsBitmapMode(t *testing.T) {
	cases := []struct {
		mode DisplayMode
		want bool
	}{
		{ModeGraphic1, false},
		{ModeGraphic3, false},
		{ModeGraphic4, true},
		{ModeGraphic7, true},
	}
	for _, c := range cases {
		if got := c.mode.IsBitmapMode(); got != c.want {
			t.Errorf("IsBitmapMode(%#x) = %v, want %v", c.mode, got, c.want)
		}
	}
}

func TestDisplayMode_IsPlanar(t *testing.T) {
	if !ModeGraphic6.IsPlanar() {
		t.Error("Graphic6 should be planar")
	}
	if !ModeGraphic7.IsPlanar() {
		t.Error("Graphic7 should be planar")
	}
	if ModeGraphic4.IsPlanar() {
		t.Error("Graphic4 should not be planar")
	}
}

func TestDisplayMode_LineWidth(t *testing.T) {
	cases := []struct {
		mode DisplayMode
		want int
	}{
		{ModeGraphic1, 256},
		{ModeGraphic4, 256},
		{ModeGraphic5, 512},
		{ModeGraphic6, 512},
		{ModeText2, 512},
	}
	for _, c := range cases {
		if got := c.mode.LineWidth(); got != c.want {
			t.Errorf("LineWidth(%#x) = %d, want %d", c.mode, got, c.want)
		}
	}
}

func TestDisplayMode_SpriteMode(t *testing.T) {
	if ModeText1.SpriteMode() != 0 {
		t.Error("text modes have no sprites")
	}
	if ModeGraphic1.SpriteMode() != 1 {
		t.Error("Graphic1 uses MSX1 sprite attribute layout")
	}
	if ModeGraphic5.SpriteMode() != 2 {
		t.Error("Graphic5 uses MSX2 sprite attribute layout")
	}
}

func TestDisplayMode_YJKFlags(t *testing.T) {
	m := ModeGraphic7 | FlagYJK
	if !m.HasYJK() {
		t.Error("expected HasYJK")
	}
	if m.HasYAE() {
		t.Error("did not expect HasYAE")
	}
	m |= FlagYAE
	if !m.HasYAE() {
		t.Error("expected HasYAE once flag set")
	}
}
