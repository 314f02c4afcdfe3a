package vdp

// bitmapConverter renders one scan line of a bitmap display mode
// (GRAPHIC4..7), including the YJK/YAE overlay.
type bitmapConverter struct {
	vram *VRAM
	regs *Registers
	yjk  *yjkDecoder
}

func newBitmapConverter(vram *VRAM, regs *Registers, yjk *yjkDecoder) *bitmapConverter {
	return &bitmapConverter{vram: vram, regs: regs, yjk: yjk}
}

// scrollX returns the current horizontal scroll offset in pixels, from
// R#26 (coarse, 8-pixel steps) and R#27 (fine, low 3 bits).
func (b *bitmapConverter) scrollX() int {
	return (int(b.regs.Read(26)&0x3F) << 3) + int(b.regs.Read(27)&0x07)
}

// pageWrapEnabled reports whether multi-page horizontal wrap applies
// (R#25 bit 0 and R#2 bit 5 both set).
func (b *bitmapConverter) pageWrapEnabled() bool {
	return b.regs.Read(25)&0x01 != 0 && b.regs.Read(2)&0x20 != 0
}

// renderLine draws one display line in a GRAPHIC4..7 bitmap mode.
func (b *bitmapConverter) renderLine(mode DisplayMode, row int, frame FrameBuffer, line, xOffset int, rgb8 *[16][3]uint8) {
	width := mode.LineWidth()
	scroll := b.scrollX()
	wrap := b.pageWrapEnabled()

	for x := 0; x < width; x++ {
		srcX := x + scroll
		if wrap {
			srcX &= (width - 1)
		} else if srcX >= width {
			continue
		}
		colour := readPixel(b.vram, mode, srcX, row)
		r, g, b2 := b.decodeColour(mode, colour, srcX, row, rgb8)
		frame.SetPixel(line, xOffset+x, r, g, b2)
	}
}

// decodeColour resolves a raw VRAM colour index to RGB, applying the YJK
// overlay when the mode has it active.
func (b *bitmapConverter) decodeColour(mode DisplayMode, colour byte, x, y int, rgb8 *[16][3]uint8) (r, g, bl uint8) {
	if !mode.HasYJK() {
		if mode.Base() == ModeGraphic7 {
			return graphic7R(colour), graphic7G(colour), graphic7B(colour)
		}
		return rgb8[colour][0], rgb8[colour][1], rgb8[colour][2]
	}

	// YJK: four horizontal pixels form one group sharing a (J, K) pair.
	// Each byte carries its own Y in the top 5 bits; K is assembled from
	// the low 3 bits of bytes 0 and 1, J from bytes 2 and 3.
	groupX := x &^ 0x03
	b0 := readPixel(b.vram, mode, groupX+0, y)
	b1 := readPixel(b.vram, mode, groupX+1, y)
	b2 := readPixel(b.vram, mode, groupX+2, y)
	b3 := readPixel(b.vram, mode, groupX+3, y)
	k := int(b0&0x07) | int(b1&0x07)<<3
	j := int(b2&0x07) | int(b3&0x07)<<3

	if mode.HasYAE() && colour&0x08 != 0 {
		idx := int(colour >> 4)
		return rgb8[idx][0], rgb8[idx][1], rgb8[idx][2]
	}

	var yVal byte
	switch x & 0x03 {
	case 0:
		yVal = b0 >> 3
	case 1:
		yVal = b1 >> 3
	case 2:
		yVal = b2 >> 3
	default:
		yVal = b3 >> 3
	}
	dr, dg, db := b.yjk.decode(int(yVal), j, k)
	return to8(dr), to8(dg), to8(db)
}

// graphic7R/G/B implement GRAPHIC7's fixed 256-color mapping: a direct
// 3-3-2 RGB split of the raw byte.
func graphic7R(v byte) uint8 { return uint8(int(v>>5&0x07) * 255 / 7) }
func graphic7G(v byte) uint8 { return uint8(int(v>>2&0x07) * 255 / 7) }
func graphic7B(v byte) uint8 { return uint8(int(v&0x03) * 255 / 3) }
