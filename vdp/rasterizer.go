package vdp

// Rasterizer consumes current VDP state and produces one FrameBuffer per
// emulated frame, delegating per-line conversion to the character and
// bitmap converters. Kept as a plain struct dispatching on mode.Base();
// no per-mode type hierarchy.
type Rasterizer struct {
	vram    *VRAM
	regs    *Registers
	sprites *SpriteChecker
	frame   FrameBuffer

	chars   *charConverter
	bitmaps *bitmapConverter
	yjk     *yjkDecoder

	mode         DisplayMode
	rgb8         [16][3]uint8
	rgb8Valid    bool
	transparency bool
}

// NewRasterizer builds a rasterizer drawing into frame.
func NewRasterizer(vram *VRAM, regs *Registers, sprites *SpriteChecker, frame FrameBuffer) *Rasterizer {
	yjk := newYJKDecoder()
	return &Rasterizer{
		vram:    vram,
		regs:    regs,
		sprites: sprites,
		frame:   frame,
		chars:   newCharConverter(vram, regs),
		bitmaps: newBitmapConverter(vram, regs, yjk),
		yjk:     yjk,
	}
}

// Reset clears the frame buffer and drops the palette cache.
func (r *Rasterizer) Reset() {
	r.frame.Reset()
	r.rgb8Valid = false
}

// FrameStart begins a new frame: clears the buffer for the incoming
// content. Border/display calls re-fill every line every frame; nothing
// persists across frames.
func (r *Rasterizer) FrameStart() {
	r.frame.Reset()
}

// FrameEnd marks the end of a frame. Nothing to flush: the VDP reads
// r.Frame() directly to hand the completed buffer onward.
func (r *Rasterizer) FrameEnd() {}

// Frame returns the buffer being drawn into.
func (r *Rasterizer) Frame() FrameBuffer { return r.frame }

// SetDisplayMode updates the active mode.
func (r *Rasterizer) SetDisplayMode(mode DisplayMode) {
	r.mode = mode
}

// InvalidatePalette forces the next draw call to recompute the RGB8 cache
// from Registers; called after any palette port write.
func (r *Rasterizer) InvalidatePalette() {
	r.rgb8Valid = false
}

// SetTransparency records whether colour index 0 is transparent. The
// converters do not read this flag: character modes always let index 0
// show the border, and bitmap modes always paint index 0 from the palette.
func (r *Rasterizer) SetTransparency(enabled bool) {
	r.transparency = enabled
}

func (r *Rasterizer) ensurePalette() {
	if r.rgb8Valid {
		return
	}
	if r.regs.Version() == VersionMSX1 {
		for i := 0; i < 16; i++ {
			r.rgb8[i] = msx1Palette[i]
		}
	} else {
		for i := 0; i < 16; i++ {
			rr, g, b := grbToRGB8(r.regs.Palette(i))
			r.rgb8[i] = [3]uint8{rr, g, b}
		}
	}
	r.rgb8Valid = true
}

// tickToX converts a VDP-tick X coordinate (ticks since the start of the
// line) to a host pixel column. A direct proportional mapping: the chip's
// mask/step machinery handles sub-pixel dot-clock phase, which this core
// does not model at tick granularity.
func tickToX(tick int) int {
	return tick * rawFrameWidth / TicksPerLine
}

// DrawBorder fills the rectangle spanning ticks [fromX, limitX) and lines
// [fromY, limitY) with the current border color.
func (r *Rasterizer) DrawBorder(fromX, fromY, limitX, limitY int) {
	r.ensurePalette()
	x0 := tickToX(fromX)
	x1 := tickToX(limitX)
	if x1 > r.frame.Width() {
		x1 = r.frame.Width()
	}
	idx := r.regs.BorderColourIndex()

	for line := fromY; line < limitY; line++ {
		switch {
		case r.mode.Base() == ModeGraphic7:
			rr, g, b := graphic7R(byte(idx)), graphic7G(byte(idx)), graphic7B(byte(idx))
			for x := x0; x < x1; x++ {
				r.frame.SetPixel(line, x, rr, g, b)
			}
		case r.mode.Base() == ModeGraphic5:
			hi := r.rgb8[idx>>2&0x0F]
			lo := r.rgb8[idx&0x03]
			for x := x0; x < x1; x++ {
				c := hi
				if x%2 == 1 {
					c = lo
				}
				r.frame.SetPixel(line, x, c[0], c[1], c[2])
			}
		default:
			c := r.rgb8[idx&0x0F]
			for x := x0; x < x1; x++ {
				r.frame.SetPixel(line, x, c[0], c[1], c[2])
			}
		}
		r.frame.SetLineMeta(line, LineMeta{PixelCount: x1 - x0, SolidColor: true})
	}
}

// DrawDisplay renders the active display area for lines [displayY,
// displayY+h), dispatching to the character or bitmap converter based on
// the current mode.
func (r *Rasterizer) DrawDisplay(fromX, fromY, displayX, displayY, w, h int) {
	r.ensurePalette()
	xOffset := tickToX(displayX)
	for i := 0; i < h; i++ {
		row := displayY + i
		line := fromY + i
		if r.mode.IsBitmapMode() {
			r.bitmaps.renderLine(r.mode, row, r.frame, line, xOffset, &r.rgb8)
		} else {
			r.chars.renderLine(r.mode, row, r.frame, line, xOffset, &r.rgb8)
		}
		r.frame.SetLineMeta(line, LineMeta{PixelCount: w, SolidColor: false})
	}
}

// DrawSprites overlays the sprite checker's per-line records onto the
// already-drawn display area. Sprites composite front to back in slot
// order: the first non-CC sprite covering a pixel wins it, and in sprite
// mode 2 every lower-priority CC=1 sprite covering the same pixel ORs its
// color bits into the winner. Only called when sprites are enabled and
// SpriteMode() != 0.
func (r *Rasterizer) DrawSprites(fromX, fromY, displayX, displayY, w, h int) {
	if r.mode.SpriteMode() == 0 {
		return
	}
	r.ensurePalette()
	xOffset := tickToX(displayX)
	spriteMode := r.mode.SpriteMode()
	width := r.mode.LineWidth()

	var colourBuf [512]byte
	var claimed [512]bool
	for i := 0; i < h; i++ {
		row := displayY + i
		line := fromY + i
		records := r.sprites.ProcessLine(row, 0)
		if len(records) == 0 {
			continue
		}
		for x := 0; x < width; x++ {
			colourBuf[x] = 0
			claimed[x] = false
		}
		for _, rec := range records {
			colour := rec.ColorAttrib & 0x0F
			cc := spriteMode == 2 && rec.ColorAttrib&attrCC != 0
			if colour == 0 && !cc {
				continue // transparent
			}
			for bit := 0; bit < 32; bit++ {
				if rec.Pattern&(1<<uint(31-bit)) == 0 {
					continue
				}
				x := rec.X + bit
				if x < 0 || x >= width {
					continue
				}
				switch {
				case cc && claimed[x]:
					colourBuf[x] |= colour
				case !cc && !claimed[x]:
					claimed[x] = true
					colourBuf[x] = colour
				}
			}
		}
		for x := 0; x < width; x++ {
			if !claimed[x] || colourBuf[x] == 0 {
				continue
			}
			px := xOffset + x
			if px < 0 || px >= r.frame.Width() {
				continue
			}
			c := r.rgb8[colourBuf[x]]
			r.frame.SetPixel(line, px, c[0], c[1], c[2])
		}
	}
}
