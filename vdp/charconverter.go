package vdp

// charConverter renders one scan line of a character-based display mode
// (TEXT1, TEXT2, GRAPHIC1, GRAPHIC2/3, MULTICOLOUR) into a FrameBuffer:
// fetch the character code from the name table, its pattern row from the
// pattern table, and the fg/bg pair from the mode-specific colour source.
type charConverter struct {
	vram *VRAM
	regs *Registers
}

func newCharConverter(vram *VRAM, regs *Registers) *charConverter {
	return &charConverter{vram: vram, regs: regs}
}

// charWidth returns 6 for the two TEXT modes, 8 otherwise.
func charWidth(mode DisplayMode) int {
	if mode.Base() == ModeText1 || mode.Base() == ModeText2 {
		return 6
	}
	return 8
}

// colsFor returns how many character cells span one display line.
func colsFor(mode DisplayMode) int {
	switch mode.Base() {
	case ModeText1:
		return 40
	case ModeText2:
		return 80
	default:
		return 32
	}
}

// renderLine draws colsFor(mode)*charWidth(mode) display pixels (excluding border) of row
// into frame at (line, xOffset), using rgb8 as the 16-entry palette cache.
func (c *charConverter) renderLine(mode DisplayMode, row int, frame FrameBuffer, line, xOffset int, rgb8 *[16][3]uint8) {
	cw := charWidth(mode)
	cols := colsFor(mode)
	lineInChar := row % 8

	fg0 := int(c.regs.BorderColourIndex() >> 4)
	bg0 := int(c.regs.BorderColourIndex() & 0x0F)

	nameBase := nameTableAddr(c.regs)
	patternBase := patternTableAddr(c.regs)
	colourBase := colourTableAddr(c.regs)

	for col := 0; col < cols; col++ {
		charAddr := row/8*cols + col
		charCode := c.vram.Peek(nameBase + charAddr)

		var pattern byte
		fg, bg := fg0, bg0

		switch mode.Base() {
		case ModeText1, ModeText2:
			pattern = c.vram.Peek(patternBase + int(charCode)*8 + lineInChar)
		case ModeGraphic1:
			pattern = c.vram.Peek(patternBase + int(charCode)*8 + lineInChar)
			colByte := c.vram.Peek(colourBase + int(charCode)/8)
			fg, bg = int(colByte>>4), int(colByte&0x0F)
		case ModeGraphic2, ModeGraphic3:
			group := (row / 64) * 2048
			idx := group + int(charCode)*8 + lineInChar
			pattern = c.vram.Peek(patternBase + idx)
			colByte := c.vram.Peek(colourBase + idx)
			fg, bg = int(colByte>>4), int(colByte&0x0F)
		case ModeMulticolour:
			blockRow := (row % 8) / 4
			idx := int(charCode)*8 + blockRow
			colByte := c.vram.Peek(patternBase + idx)
			fg, bg = int(colByte>>4), int(colByte&0x0F)
			pattern = 0xFF // whole 8x4 block is solid fg; drawn below as a block fill
		}

		for px := 0; px < cw; px++ {
			var set bool
			if mode.Base() == ModeMulticolour {
				set = true
			} else {
				set = pattern&(0x80>>uint(px)) != 0
			}
			idx := fg
			if !set {
				idx = bg
			}
			if idx == 0 {
				continue // transparent/background: border shows through
			}
			r, g, b := rgb8[idx][0], rgb8[idx][1], rgb8[idx][2]
			frame.SetPixel(line, xOffset+col*cw+px, r, g, b)
		}
	}
}
