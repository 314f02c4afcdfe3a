package vdp

import "fmt"

// VDP is the top-level chip model: it owns the register file, VRAM, the
// command engine, the sprite checker and the rasterizer, and drives them
// all from a single SyncTo(t) entry point plus the CPU-facing I/O port
// methods. Scheduling is scanline-driven: line boundaries are the commit
// points for deferred register writes, and VSCAN/HSCAN/VSYNC all fall on
// them.
type VDP struct {
	version VDPVersion
	region  Region
	timing  TimingProfile

	regs    *Registers
	vram    *VRAM
	cmd     *CmdEngine
	sprites *SpriteChecker
	raster  *Rasterizer
	host    *HostServices

	currentTime    EmuTime
	frameStartTime EmuTime
	currentLine    int

	mode      DisplayMode
	modeDirty bool

	vScanFlag  bool // S#0 bit 7 (F)
	hScanFlag  bool // S#1 bit 0 (FH)
	vIRQActive bool
	hIRQActive bool

	// Port 0 (VRAM data) state.
	readAhead   byte
	vramPointer int

	// Port 1 (dual-phase register/address write) state.
	ctrlLatch byte
	ctrlPhase bool

	// Port 2 (palette write) state.
	paletteLatch byte
	palettePhase bool
	paletteIndex int

	onFrame func(FrameBuffer)
}

// NewVDP constructs a VDP of the given version/region, with vramSize bytes
// of VRAM, drawing into frame. onFrame (may be nil) is called with the
// completed FrameBuffer at every VSYNC.
func NewVDP(version VDPVersion, region Region, vramSize int, frame FrameBuffer, host *HostServices, onFrame func(FrameBuffer)) (*VDP, error) {
	vram, err := NewVRAM(vramSize)
	if err != nil {
		return nil, fmt.Errorf("vdp: %w", err)
	}
	regs := NewRegisters(version)
	cmd := NewCmdEngine(vram)
	vram.SetCmdEngineSync(cmd.ExecuteUntil)
	sprites := NewSpriteChecker(vram, regs)
	raster := NewRasterizer(vram, regs, sprites, frame)

	v := &VDP{
		version: version,
		region:  region,
		timing:  TimingForRegion(region),
		regs:    regs,
		vram:    vram,
		cmd:     cmd,
		sprites: sprites,
		raster:  raster,
		host:    host,
		onFrame: onFrame,
	}
	v.modeDirty = true
	return v, nil
}

// Registers, VRAM, CmdEngine, Sprites and Rasterizer give test code and a
// host harness direct access to the sub-components: everything a
// serializer needs to reach.
func (v *VDP) Registers() *Registers   { return v.regs }
func (v *VDP) VRAM() *VRAM             { return v.vram }
func (v *VDP) CmdEngine() *CmdEngine   { return v.cmd }
func (v *VDP) Sprites() *SpriteChecker { return v.sprites }
func (v *VDP) Rasterizer() *Rasterizer { return v.raster }
func (v *VDP) CurrentTime() EmuTime    { return v.currentTime }

// Reset reinitializes scheduling state at time t; register/VRAM contents
// are left as-is (a fresh VDP already has zeroed registers and VRAM from
// NewVDP; Reset is for re-synchronizing the scheduler after a save-state
// load or a host-driven hard reset).
func (v *VDP) Reset(t EmuTime) {
	v.currentTime = t
	v.frameStartTime = t
	v.currentLine = 0
	v.vScanFlag = false
	v.hScanFlag = false
	v.setIRQ(IRQVertical, false)
	v.setIRQ(IRQHorizontal, false)
	v.modeDirty = true
	v.raster.Reset()
	v.applyPendingMode()
}

// lineZero is the first display line within a frame:
// (palTiming ? 59 : 32) - 14 + verticalAdjust, honoring R#9 bit 7's
// 192/212-line choice only insofar as it changes displayLines below.
func (v *VDP) lineZero() int {
	base := 32
	if v.region == RegionPAL {
		base = 59
	}
	return base - 14 + v.verticalAdjust()
}

// horizontalAdjust/verticalAdjust decode R#18's signed 4-bit nibbles.
func (v *VDP) horizontalAdjust() int {
	return signExtend4(int(v.regs.Read(18) & 0x0F))
}

func (v *VDP) verticalAdjust() int {
	return signExtend4(int(v.regs.Read(18)>>4) & 0x0F)
}

func signExtend4(v int) int {
	v &= 0x0F
	if v&0x08 != 0 {
		return v - 0x10
	}
	return v
}

// displayLines is 212 when R#9 bit 7 is set, 192 otherwise.
func (v *VDP) displayLines() int {
	if v.regs.Read(9)&0x80 != 0 {
		return 212
	}
	return 192
}

// hscanLine is the line at which a horizontal-scan IRQ may fire: R#19 -
// R#23, wrapped to a byte.
func (v *VDP) hscanLine() int {
	return (int(v.regs.Read(19)) - int(v.regs.Read(23))) & 0xFF
}

// WriteRegister writes control register index at time t. Ports 1 and 3
// and the command engine's own R#32..R#46 range all funnel through here;
// values are masked per version and command registers are delegated to
// the engine.
func (v *VDP) WriteRegister(index int, value byte, t EmuTime) {
	v.SyncTo(t)
	if index >= 32 && index < 32+15 {
		v.regs.Write(index, value)
		v.cmd.WriteReg(index-32, value, t)
		if index == 45 {
			v.vram.SetExtendedBank(value&0x40 != 0)
		}
		return
	}
	v.regs.Write(index, value)
	switch index {
	case 16:
		v.paletteIndex = int(value & 0x0F)
	case 0, 1, 18, 25:
		v.modeDirty = true
	}
}

// applyPendingMode recomputes the effective display mode and propagates
// it to the command engine, sprite checker and rasterizer. Mode-relevant
// register writes only mark the mode dirty; the commit happens here, at
// the next line boundary.
func (v *VDP) applyPendingMode() {
	if !v.modeDirty {
		return
	}
	v.mode = v.regs.DisplayMode()
	v.cmd.SetDisplayMode(v.mode, v.currentTime)
	v.sprites.SetMode(v.mode)
	v.sprites.SetSizeAndMagnification(v.regs.Read(1)&0x02 != 0, v.regs.Read(1)&0x01 != 0)
	v.sprites.RefreshWindows(v.currentTime)
	v.refreshTableWindows()
	v.raster.SetDisplayMode(v.mode)
	v.modeDirty = false
}

// refreshTableWindows re-derives the name/pattern/colour and bitmap window
// masks from the current registers and mode, so anything observing those
// windows is invalidated whenever a table moves. The bitmap window spans
// the whole address space in bitmap modes and is disabled otherwise.
func (v *VDP) refreshTableWindows() {
	t := v.currentTime
	name := nameTableAddr(v.regs)
	pattern := patternTableAddr(v.regs)
	colour := colourTableAddr(v.regs)
	v.vram.NameTable.SetMask(name|0x0FFF, name, t)
	v.vram.PatternTable.SetMask(pattern|0x1FFF, pattern, t)
	v.vram.ColourTable.SetMask(colour|0x1FFF, colour, t)
	if v.mode.IsBitmapMode() {
		v.vram.BitmapWindow.SetMask(v.vram.Size()-1, 0, t)
	} else {
		v.vram.BitmapWindow.Disable(t)
	}
}

// SyncTo advances every sub-component's notion of time up to t, firing
// whatever line boundaries, sync points and IRQ edges fall in between.
func (v *VDP) SyncTo(t EmuTime) {
	for {
		lineEnd := v.frameStartTime.Add((v.currentLine + 1) * TicksPerLine)
		if t.Before(lineEnd) {
			break
		}
		v.crossLineBoundary(lineEnd)
	}
	if v.currentTime.Before(t) {
		v.currentTime = t
	}
	v.cmd.ExecuteUntil(t)
}

// crossLineBoundary renders the line that just finished, advances the
// line counter, applies any per-line-deferred register commits, and
// fires VSCAN/HSCAN/VSYNC if this boundary crosses one of them.
func (v *VDP) crossLineBoundary(t EmuTime) {
	v.cmd.ExecuteUntil(t)
	v.renderLine(v.currentLine)
	v.currentLine++
	v.currentTime = t
	v.applyPendingMode()

	lz := v.lineZero()
	if v.currentLine == lz+v.displayLines() {
		v.vScanFlag = true
		if v.regs.IsIRQEnabled() {
			v.setIRQ(IRQVertical, true)
		}
	}
	if v.currentLine == v.hscanLine() {
		v.hScanFlag = true
		if v.regs.IsHScanIRQEnabled() {
			v.setIRQ(IRQHorizontal, true)
		}
	}
	if v.currentLine >= v.timing.Lines {
		v.vsync(t)
	}
}

// vsync closes the current frame, hands it to onFrame, and rebases the
// scheduler onto a fresh frame starting at t.
func (v *VDP) vsync(t EmuTime) {
	v.raster.FrameEnd()
	if v.onFrame != nil {
		v.onFrame(v.raster.Frame())
	}
	v.currentLine = 0
	v.frameStartTime = t
	v.raster.FrameStart()
	v.sprites.FrameStart()
}

// displayTickRange returns the [start, end) tick range, within one line,
// that the current mode's display area occupies, centered within the
// line.
func (v *VDP) displayTickRange() (start, end int) {
	visibleTicks := v.mode.LineWidth() * TicksPerLine / rawFrameWidth
	adjustTicks := v.horizontalAdjust() * TicksPerLine / rawFrameWidth
	start = (TicksPerLine-visibleTicks)/2 + adjustTicks
	return start, start + visibleTicks
}

// renderLine draws scan line `line` (0-based within the current frame)
// into the rasterizer's frame buffer: border across the whole line, then
// (if line falls in the active display area) the display content and
// sprites over the centered display-area columns.
func (v *VDP) renderLine(line int) {
	if line < 0 || line >= v.timing.Lines {
		return
	}
	v.raster.DrawBorder(0, line, TicksPerLine, line+1)

	lz := v.lineZero()
	row := line - lz
	if row < 0 || row >= v.displayLines() || !v.regs.IsDisplayEnabled() {
		return
	}
	startTick, _ := v.displayTickRange()
	w := v.mode.LineWidth()
	v.raster.DrawDisplay(startTick, line, startTick, row, w, 1)
	if v.mode.SpriteMode() != 0 && v.regs.Read(8)&0x02 == 0 {
		v.raster.DrawSprites(startTick, line, startTick, row, w, 1)
	}
}

func (v *VDP) setIRQ(line IRQLine, active bool) {
	var cur *bool
	if line == IRQVertical {
		cur = &v.vIRQActive
	} else {
		cur = &v.hIRQActive
	}
	if *cur == active {
		return
	}
	*cur = active
	if active {
		v.host.raiseIRQ(line)
	} else {
		v.host.lowerIRQ(line)
	}
}

// IRQActive reports whether the named interrupt line is currently
// asserted.
func (v *VDP) IRQActive(line IRQLine) bool {
	if line == IRQVertical {
		return v.vIRQActive
	}
	return v.hIRQActive
}

// ReadStatus reads status register index at time t, applying the
// documented read side effects: S#0 clears F and the
// vertical IRQ; S#1 clears FH and the horizontal IRQ (if IE1); S#5 resets
// the collision coordinate latch; S#7 resets the LMCM color latch.
func (v *VDP) ReadStatus(index int, t EmuTime) byte {
	v.SyncTo(t)
	switch index {
	case 0:
		val := byte(0)
		if v.vScanFlag {
			val |= 0x80
		}
		if v.sprites.CollisionFlag() {
			val |= 0x20
		}
		if v.sprites.OverflowFlag() {
			val |= 0x40
			val |= byte(v.sprites.OverflowIndex() & 0x1F)
		}
		v.vScanFlag = false
		v.setIRQ(IRQVertical, false)
		v.sprites.AcknowledgeStatus0Read()
		return val
	case 1:
		val := byte(0)
		if v.hScanFlag {
			val |= 0x01
		}
		if v.version != VersionMSX1 {
			val |= idBits(v.version) << 1
		}
		if v.regs.IsHScanIRQEnabled() {
			v.hScanFlag = false
			v.setIRQ(IRQHorizontal, false)
		}
		return val
	case 2:
		val := v.cmd.Status(t)
		lz := v.lineZero()
		if v.currentLine < lz || v.currentLine >= lz+v.displayLines() {
			val |= 0x40 // VR: vertical border/retrace
		}
		return val
	case 3:
		return byte(v.sprites.CollisionX() & 0xFF)
	case 4:
		return byte((v.sprites.CollisionX() >> 8) & 0x01)
	case 5:
		val := byte(v.sprites.CollisionY() & 0xFF)
		v.sprites.AcknowledgeStatus5Read()
		return val
	case 6:
		return byte((v.sprites.CollisionY() >> 8) & 0x01)
	case 7:
		return v.cmd.ReadCPU(t)
	default:
		return 0
	}
}

// idBits reports the V9938/V9958 ID bits S#1 exposes in its upper bits.
func idBits(version VDPVersion) byte {
	if version == VersionV9958 {
		return 3
	}
	return 2
}

// vramAddr composes the 14-bit vramPointer with R#14's bank-select bits
// (V9938/V9958 only use bits beyond 14; MSX1 VRAM never exceeds 16K so
// R#14 is always 0 there) and masks to the installed VRAM size.
func (v *VDP) vramAddr() int {
	return (int(v.regs.Read(14))<<14 | v.vramPointer) & (v.vram.Size() - 1)
}

func (v *VDP) advancePointer() {
	v.vramPointer = (v.vramPointer + 1) & 0x3FFF
	if v.vramPointer == 0 && v.version != VersionMSX1 {
		v.regs.Write(14, (v.regs.Read(14)+1)&0x07)
	}
}

// WritePort0 implements CPU port 0: a VRAM data write.
func (v *VDP) WritePort0(value byte, t EmuTime) {
	v.SyncTo(t)
	v.vram.CPUWrite(v.vramAddr(), value, t)
	v.advancePointer()
}

// ReadPort0 implements CPU port 0: returns the previously latched
// "read-ahead" byte, then refills it.
func (v *VDP) ReadPort0(t EmuTime) byte {
	v.SyncTo(t)
	value := v.readAhead
	v.advancePointer()
	v.readAhead = v.vram.CPURead(v.vramAddr(), t)
	return value
}

// WritePort1 implements CPU port 1: the dual-phase register/address
// write.
func (v *VDP) WritePort1(value byte, t EmuTime) {
	v.SyncTo(t)
	if !v.ctrlPhase {
		v.ctrlLatch = value
		v.ctrlPhase = true
		return
	}
	v.ctrlPhase = false
	if value&0x80 != 0 {
		v.WriteRegister(int(value&0x3F), v.ctrlLatch, t)
		return
	}
	v.vramPointer = (int(value)<<8 | int(v.ctrlLatch)) & 0x3FFF
	if value&0x40 == 0 {
		v.readAhead = v.vram.CPURead(v.vramAddr(), t)
	}
}

// WritePort2 implements CPU port 2: the dual-phase palette write. First
// byte carries G (bits 6:4) and R (bits 2:0); second carries B (bits
// 2:0); together they complete the palette entry R#16 points at, after
// which R#16's low 4 bits auto-increment.
func (v *VDP) WritePort2(value byte, t EmuTime) {
	v.SyncTo(t)
	if !v.palettePhase {
		v.paletteLatch = value
		v.palettePhase = true
		return
	}
	v.palettePhase = false
	g := uint16(v.paletteLatch>>4) & 0x07
	r := uint16(v.paletteLatch) & 0x07
	b := uint16(value) & 0x07
	grb := g<<6 | r<<3 | b
	v.regs.SetPalette(v.paletteIndex, grb)
	v.raster.InvalidatePalette()
	v.paletteIndex = (v.paletteIndex + 1) & 0x0F
	v.regs.Write(16, byte(v.paletteIndex))
}

// WritePort3 implements CPU port 3: indirect register write via R#17,
// auto-incrementing unless R#17 bit 7 is set.
func (v *VDP) WritePort3(value byte, t EmuTime) {
	v.SyncTo(t)
	idx := int(v.regs.Read(17) & 0x3F)
	v.WriteRegister(idx, value, t)
	if v.regs.Read(17)&0x80 == 0 {
		v.regs.Write(17, (v.regs.Read(17)+1)&0x3F)
	}
}

// SetSpriteLimitEnabled toggles the host "sprite limit" convenience
// option.
func (v *VDP) SetSpriteLimitEnabled(enabled bool) {
	v.sprites.SetLimitEnabled(enabled)
}

// SetBrokenCmdTiming toggles the "broken/instant timing" configuration
// flag: commands complete with zero elapsed emulated time.
func (v *VDP) SetBrokenCmdTiming(broken bool) {
	v.cmd.SetBrokenTiming(broken)
}

// SetCmdTimingMode selects which flat per-operation tick-cost table the
// command engine uses.
func (v *VDP) SetCmdTimingMode(mode TimingMode) {
	v.cmd.SetTimingMode(mode)
}
