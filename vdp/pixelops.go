package vdp

// pixelFormat returns the bits-per-pixel and pixels-per-byte packing for
// the bitmap modes the command engine operates in. Other modes fall back
// to the GRAPHIC4 packing; the command engine is never driven in
// character modes in practice.
func pixelFormat(mode DisplayMode) (bpp, pxPerByte int) {
	switch mode.Base() {
	case ModeGraphic5:
		return 2, 4
	case ModeGraphic7:
		return 8, 1
	case ModeGraphic4, ModeGraphic6:
		return 4, 2
	default:
		return 4, 2
	}
}

// pixelAddress returns the VRAM byte address and the pixel's bit shift
// within that byte, for pixel (x,y) in the given mode. Y wraps within the
// page: 1024 rows, or 512 in the planar modes. Planar modes (Graphic6/7)
// route the logical byte offset through PlanarAddress, the same transform
// the rasterizer applies.
func pixelAddress(mode DisplayMode, x, y int) (addr int, shift int, mask byte) {
	bpp, pxPerByte := pixelFormat(mode)
	width := mode.LineWidth()
	if mode.IsPlanar() {
		y &= 511
	} else {
		y &= 1023
	}
	bytesPerRow := width / pxPerByte
	logical := y*bytesPerRow + x/pxPerByte
	if mode.IsPlanar() {
		logical = PlanarAddress(logical)
	}
	posInByte := x % pxPerByte
	shift = (pxPerByte - 1 - posInByte) * bpp
	mask = byte((1 << uint(bpp)) - 1)
	return logical, shift, mask
}

// readPixel returns the colour index at (x,y) in mode, reading straight
// from VRAM (the command engine is the thing VRAM's CPU-sync path
// synchronises against, so it reads directly rather than through
// VRAM.CPURead).
func readPixel(vram *VRAM, mode DisplayMode, x, y int) byte {
	addr, shift, mask := pixelAddress(mode, x, y)
	return (vram.Peek(addr) >> uint(shift)) & mask
}

// writePixelRaw stores colour (already masked to bpp bits) at (x,y),
// leaving the rest of the byte untouched.
func writePixelRaw(vram *VRAM, mode DisplayMode, x, y int, colour byte, t EmuTime) {
	addr, shift, mask := pixelAddress(mode, x, y)
	cur := vram.Peek(addr)
	next := (cur &^ (mask << uint(shift))) | ((colour & mask) << uint(shift))
	vram.CmdWrite(addr, next, t)
}

// LogOp is the 4-bit logical operator a block/line/point command combines
// source and destination pixels with.
type LogOp byte

const (
	OpIMP LogOp = iota
	OpAND
	OpOR
	OpXOR
	OpNOT
	op5
	op6
	op7
	OpTIMP
	OpTAND
	OpTOR
	OpTXOR
	OpTNOT
	opD
	opE
	opF
)

// isTransparent reports whether op is one of the T-prefixed variants that
// skip the write entirely when the source colour is zero.
func (op LogOp) isTransparent() bool {
	return op >= OpTIMP
}

// apply combines src into dst per op, masked to bpp bits. Undefined codes
// (5,6,7,D,E,F) are no-ops, returning dst unchanged.
func (op LogOp) apply(dst, src, mask byte) byte {
	switch op &^ 0x08 {
	case OpIMP:
		return src & mask
	case OpAND:
		return dst & src & mask
	case OpOR:
		return (dst | src) & mask
	case OpXOR:
		return (dst ^ src) & mask
	case OpNOT:
		return (^src) & mask
	default:
		return dst
	}
}

// writePixel applies op to combine src with the existing pixel at (x,y)
// and stores it, unless op is a transparent variant and src is zero.
func writePixel(vram *VRAM, mode DisplayMode, x, y int, src byte, op LogOp, t EmuTime) {
	_, _, mask := pixelAddress(mode, x, y)
	if op.isTransparent() && (src&mask) == 0 {
		return
	}
	dst := readPixel(vram, mode, x, y)
	writePixelRaw(vram, mode, x, y, op.apply(dst, src, mask), t)
}

// writeByteRaw stores value as a whole VRAM byte at the address (x,y) maps
// to, ignoring pixel packing within that byte: the "high-speed" command
// family (HMMV/HMMM/YMMM/HMMC) moves whole bytes, not individual pixels.
func writeByteRaw(vram *VRAM, mode DisplayMode, x, y int, value byte, t EmuTime) {
	addr, _, _ := pixelAddress(mode, x, y)
	vram.CmdWrite(addr, value, t)
}

// readByteRaw is writeByteRaw's read-side counterpart, used by HMMM/YMMM's
// byte-granularity copy.
func readByteRaw(vram *VRAM, mode DisplayMode, x, y int) byte {
	addr, _, _ := pixelAddress(mode, x, y)
	return vram.Peek(addr)
}
