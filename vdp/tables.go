package vdp

// Table base-address helpers translate the register fields Registers
// exposes into absolute VRAM byte addresses. Granularities below are the
// documented per-mode table sizes.
func nameTableAddr(regs *Registers) int {
	return regs.NameTableBase() << 10
}

func patternTableAddr(regs *Registers) int {
	return regs.PatternTableBase() << 11
}

func colourTableAddr(regs *Registers) int {
	return regs.ColourTableBase() << 6
}

func spriteAttribTableAddr(regs *Registers) int {
	return regs.SpriteAttribTableBase() << 7
}

func spritePatternTableAddr(regs *Registers) int {
	return regs.SpritePatternTableBase() << 11
}

// spriteAttribTableSize is large enough to cover both the 128-byte mode-1
// layout and mode-2's extra 512-byte-offset color sub-table.
const spriteAttribTableSize = 0x400

// spritePatternTableSize covers the largest sprite pattern table this core
// addresses (256 patterns x 16 bytes for 16x16 sprites).
const spritePatternTableSize = 0x1000
