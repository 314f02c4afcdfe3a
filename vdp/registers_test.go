package vdp

import "testing"

func TestNewRegisters_DisplayBlankedOnReset(t *testing.T) {
	r := NewRegisters(VersionV9958)
	if r.IsDisplayEnabled() {
		t.Error("display should be blanked at power-on")
	}
}

func TestRegisters_WriteMaskedByVersion(t *testing.T) {
	r := NewRegisters(VersionMSX1)
	r.Write(0, 0xFF)
	if got := r.Read(0); got != 0x0E {
		t.Errorf("MSX1 R#0 write should mask to 0x0E, got %#x", got)
	}
}

func TestRegisters_OutOfRangeWriteIgnored(t *testing.T) {
	r := NewRegisters(VersionMSX1)
	r.Write(40, 0xFF) // MSX1 only has 8 registers
	if got := r.Read(40); got != 0 {
		t.Errorf("write beyond MSX1 register count should be ignored, got %#x", got)
	}
}

func TestRegisters_V9958AllowsExtendedRegisters(t *testing.T) {
	r := NewRegisters(VersionV9958)
	r.Write(44, 0x5A)
	if got := r.Read(44); got != 0x5A {
		t.Errorf("R#44 write should stick on V9958, got %#x", got)
	}
}

func TestRegisters_DisplayModeFromRegisters(t *testing.T) {
	r := NewRegisters(VersionV9958)
	r.Write(0, 0x0E)
	r.Write(1, 0x00)
	r.Write(25, 0x00)
	if got := r.DisplayMode().Base(); got != ModeGraphic7 {
		t.Errorf("DisplayMode().Base() = %#x, want Graphic7", got)
	}
}

func TestRegisters_PaletteIgnoredOnMSX1(t *testing.T) {
	r := NewRegisters(VersionMSX1)
	r.SetPalette(1, 0x1FF)
	if got := r.Palette(1); got != 0 {
		t.Errorf("MSX1 has a fixed palette, expected 0, got %#x", got)
	}
}

func TestRegisters_PaletteRoundTrip(t *testing.T) {
	r := NewRegisters(VersionV9938)
	r.SetPalette(5, 0x1AB)
	if got := r.Palette(5); got != 0x1AB {
		t.Errorf("Palette(5) = %#x, want 0x1AB", got)
	}
}

func TestRegisters_StatusRoundTrip(t *testing.T) {
	r := NewRegisters(VersionV9958)
	r.SetStatus(0, 0x80)
	if got := r.Status(0); got != 0x80 {
		t.Errorf("Status(0) = %#x, want 0x80", got)
	}
}

func TestRegisters_TableBasesCombineExtendedBits(t *testing.T) {
	r := NewRegisters(VersionV9938)
	r.Write(3, 0xFF)
	r.Write(10, 0x07)
	if got := r.ColourTableBase(); got != 0x7FF {
		t.Errorf("ColourTableBase() = %#x, want 0x7FF", got)
	}
}
