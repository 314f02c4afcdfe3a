package vdp

// grbToRGB8 expands a 9-bit GRB palette entry (3 bits green, 3 bits red, 3
// bits blue, the V9938 data book's packing: bits 8:6=G, 5:3=R, 2:0=B) into
// 8-bit-per-channel RGB. Scaling is the same 0..7 -> 0..255 stretch the
// V9938 DAC performs (value*255/7).
func grbToRGB8(grb uint16) (r, g, b uint8) {
	g6 := (grb >> 6) & 0x07
	r6 := (grb >> 3) & 0x07
	b6 := grb & 0x07
	scale := func(v uint16) uint8 { return uint8(v * 255 / 7) }
	return scale(r6), scale(g6), scale(b6)
}

// defaultV9938Palette is the power-on palette used before the CPU programs
// any entries, taken from the V9938 data book's documented defaults; index
// 0 (transparent/background) stays black.
var defaultV9938Palette = [16]uint16{
	0x000, 0x000, 0x189, 0x1DB, 0x04F, 0x0D7, 0x069, 0x197,
	0x079, 0x0FB, 0x1B1, 0x1B4, 0x109, 0x0B5, 0x16D, 0x1FF,
}

// msx1Palette is the fixed TMS9918A palette (never writable), expressed as
// 8-bit RGB directly since MSX1 has no programmable GRB registers.
var msx1Palette = [16][3]uint8{
	{0, 0, 0}, {0, 0, 0}, {62, 184, 73}, {116, 208, 125},
	{89, 85, 224}, {128, 118, 241}, {185, 94, 81}, {101, 219, 239},
	{219, 101, 89}, {255, 137, 125}, {204, 195, 94}, {222, 208, 135},
	{58, 162, 65}, {183, 102, 181}, {204, 204, 204}, {255, 255, 255},
}
