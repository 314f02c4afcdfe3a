package vdp

import "testing"

func newTestRasterizer(t *testing.T, height int) (*VRAM, *Registers, *SpriteChecker, *Rasterizer, FrameBuffer) {
	t.Helper()
	vram, err := NewVRAM(0x20000)
	if err != nil {
		t.Fatal(err)
	}
	regs := NewRegisters(VersionV9938)
	sprites := NewSpriteChecker(vram, regs)
	frame := NewRawFrame8888(height)
	r := NewRasterizer(vram, regs, sprites, frame)
	return vram, regs, sprites, r, frame
}

func TestTickToX_ScalesProportionally(t *testing.T) {
	if x := tickToX(0); x != 0 {
		t.Errorf("tickToX(0) = %d, want 0", x)
	}
	if x := tickToX(TicksPerLine); x != rawFrameWidth {
		t.Errorf("tickToX(TicksPerLine) = %d, want %d", x, rawFrameWidth)
	}
}

func TestRasterizer_DrawBorderFillsSolidColour(t *testing.T) {
	_, regs, _, r, frame := newTestRasterizer(t, 240)
	regs.Write(7, 0x04) // border colour index 4
	r.SetDisplayMode(ModeGraphic1)

	r.DrawBorder(0, 5, TicksPerLine, 6)

	rf := frame.(*RawFrame8888)
	p := rf.Pixel(5, 0)
	if byte(p) != 0xFF {
		t.Fatalf("expected opaque alpha byte, got %#x", p)
	}
	meta := rf.LineMeta(5)
	if !meta.SolidColor {
		t.Error("expected DrawBorder to mark the line as solid-coloured")
	}
}

func TestRasterizer_DrawDisplayDispatchesByMode(t *testing.T) {
	vram, regs, _, r, frame := newTestRasterizer(t, 240)
	regs.Write(2, 0x0E) // name table at 0x3800
	regs.Write(3, 0xFF) // colour table at 0x3FC0
	regs.Write(4, 0x03) // pattern table at 0x1800
	vram.CPUWrite(0x3800, 0x01, 0)     // cell (0,0) -> character 1
	vram.CPUWrite(0x1800+1*8, 0xFF, 0) // character 1, pattern row 0: all fg
	vram.CPUWrite(0x3FC0, 0xF0, 0)     // characters 0..7: white fg
	r.SetDisplayMode(ModeGraphic1)

	r.DrawDisplay(0, 10, 0, 0, 256, 1)

	rf := frame.(*RawFrame8888)
	if p := rf.Pixel(10, 0); byte(p>>24) == 0 {
		t.Error("expected character mode rendering to set a foreground pixel")
	}
	if meta := rf.LineMeta(10); meta.SolidColor {
		t.Error("DrawDisplay should not mark lines solid")
	}
}

func TestRasterizer_DrawSpritesSkippedWhenModeHasNoSprites(t *testing.T) {
	_, _, _, r, frame := newTestRasterizer(t, 240)
	r.SetDisplayMode(ModeText1)
	r.DrawSprites(0, 10, 0, 0, 256, 1)
	rf := frame.(*RawFrame8888)
	if p := rf.Pixel(10, 0); p != 0 {
		t.Error("text mode should never draw sprites")
	}
}

func TestRasterizer_DrawSpritesMergesCCColours(t *testing.T) {
	vram, regs, sprites, r, frame := newTestRasterizer(t, 240)
	regs.Write(5, 0)              // sprite attribute table at 0
	regs.Write(6, 1)              // sprite pattern table at 0x800
	sprites.SetMode(ModeGraphic4) // sprite mode 2
	r.SetDisplayMode(ModeGraphic4)

	// Sprite 0: non-CC, colour 1. Sprite 1: CC=1, colour 2, same position;
	// its bits must OR into sprite 0's colour, giving palette index 3.
	vram.CPUWrite(0, 20, 0)
	vram.CPUWrite(1, 0, 0)
	vram.CPUWrite(2, 0, 0)
	vram.CPUWrite(mode2ColorTableOffset+0, 0x01, 0)

	vram.CPUWrite(4, 20, 0)
	vram.CPUWrite(5, 0, 0)
	vram.CPUWrite(6, 0, 0)
	vram.CPUWrite(mode2ColorTableOffset+1, attrCC|0x02, 0)

	vram.CPUWrite(8, spriteTerminatorY(2), 0)

	patternBase := spritePatternTableAddr(regs)
	vram.CPUWrite(patternBase, 0x80, 0) // leftmost pixel of both sprites

	regs.SetPalette(1, 0x007)
	regs.SetPalette(2, 0x038)
	regs.SetPalette(3, 0x1C0) // the merged index must pick this entry
	r.InvalidatePalette()

	r.DrawSprites(0, 100, 0, 20, 256, 1)

	rf := frame.(*RawFrame8888)
	p := rf.Pixel(100, 0)
	wantR, wantG, wantB := grbToRGB8(0x1C0)
	got := [3]byte{byte(p >> 24), byte(p >> 16), byte(p >> 8)}
	if got != [3]byte{wantR, wantG, wantB} {
		t.Errorf("CC-merged pixel = %v, want palette[3] %v", got, [3]byte{wantR, wantG, wantB})
	}
}

func TestRasterizer_CCSpriteAloneDoesNotPaint(t *testing.T) {
	vram, regs, sprites, r, frame := newTestRasterizer(t, 240)
	regs.Write(5, 0)
	regs.Write(6, 1)
	sprites.SetMode(ModeGraphic4)
	r.SetDisplayMode(ModeGraphic4)

	// A lone CC=1 sprite has no higher-priority sprite to combine with.
	vram.CPUWrite(0, 20, 0)
	vram.CPUWrite(1, 0, 0)
	vram.CPUWrite(2, 0, 0)
	vram.CPUWrite(mode2ColorTableOffset+0, attrCC|0x0F, 0)
	vram.CPUWrite(4, spriteTerminatorY(2), 0)

	patternBase := spritePatternTableAddr(regs)
	vram.CPUWrite(patternBase, 0x80, 0)

	r.DrawSprites(0, 100, 0, 20, 256, 1)

	rf := frame.(*RawFrame8888)
	if p := rf.Pixel(100, 0); p != 0 {
		t.Errorf("a CC sprite with nothing underneath must not paint, got %#08x", p)
	}
}

func TestRasterizer_DrawSpritesPaintsVisibleSprite(t *testing.T) {
	vram, regs, sprites, r, frame := newTestRasterizer(t, 240)
	regs.Write(5, 0) // sprite attribute table at 0
	regs.Write(6, 1) // sprite pattern table at 0x800
	sprites.SetMode(ModeGraphic1)
	r.SetDisplayMode(ModeGraphic1)

	vram.CPUWrite(0, 20, 0)   // Y
	vram.CPUWrite(1, 0, 0)    // X
	vram.CPUWrite(2, 0, 0)    // pattern index
	vram.CPUWrite(3, 0x0F, 0) // colour
	vram.CPUWrite(4, 208, 0)  // terminator

	patternBase := spritePatternTableAddr(regs)
	vram.CPUWrite(patternBase, 0x80, 0) // leftmost column set

	r.DrawSprites(0, 100, 0, 20, 256, 1)

	rf := frame.(*RawFrame8888)
	if p := rf.Pixel(100, 0); byte(p>>24) == 0 {
		t.Error("expected visible sprite pixel at column 0")
	}
}
