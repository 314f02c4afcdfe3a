package vdp

// SpriteRecord is the per-visible-sprite-per-line result: pattern bits, X
// position (post early-clock), and the attribute byte sprite mode 2 packs
// CC/IC/EC/color into.
type SpriteRecord struct {
	Pattern     uint32
	X           int
	ColorAttrib byte
}

// colorAttrib bit layout.
const (
	attrEC byte = 0x80 // early clock
	attrCC byte = 0x40 // color-combine (mode 2)
	attrIC byte = 0x20 // invisible-on-collision (mode 2)
)

// spriteTerminatorY is the Y value that stops sprite-slot iteration early:
// 208 in sprite mode 1, 216 in mode 2.
func spriteTerminatorY(mode int) byte {
	if mode == 2 {
		return 216
	}
	return 208
}

// SpriteChecker is a VRAMObserver on the sprite attribute and pattern
// windows. It computes, per rendered scan line, the set of visible
// sprites and the frame's collision/overflow status. The visible set is a
// pure function of (line, VRAM windows, mode), memoized in a derivedCache
// that the observer callbacks below purge.
type SpriteChecker struct {
	vram *VRAM
	regs *Registers
	mode DisplayMode

	spriteSizeLarge bool // R#1 bit 1 (SI): 16x16 base pattern instead of 8x8
	magnify         bool // R#1 bit 0 (MAG): double every pixel
	limitEnabled    bool // host "sprite limit" toggle; off keeps overflow sprites in the draw buffer

	lineCache *derivedCache[int, []SpriteRecord]

	collisionFlag    bool
	collisionLatched bool // true once this frame's coordinates are fixed
	collisionX       int
	collisionY       int

	overflowFlag   bool
	overflowIndex  int
	overflowFrozen bool // true once set, until AcknowledgeStatus0Read
}

// NewSpriteChecker constructs a checker observing vram's sprite windows.
func NewSpriteChecker(vram *VRAM, regs *Registers) *SpriteChecker {
	s := &SpriteChecker{
		vram:         vram,
		regs:         regs,
		limitEnabled: true,
		lineCache:    newDerivedCache[int, []SpriteRecord](313),
	}
	vram.SpriteAttribTable.SetObserver(s)
	vram.SpritePatternTable.SetObserver(s)
	return s
}

// RefreshWindows re-derives the sprite attribute/pattern table window
// masks from the current registers and mode, so UpdateVRAM/UpdateWindow
// fire (and the line cache purges) whenever a write lands in the tables
// the current mode actually uses. Called by VDP after any register write
// or mode change that could move a sprite table.
func (s *SpriteChecker) RefreshWindows(t EmuTime) {
	attribBase := spriteAttribTableAddr(s.regs)
	patternBase := spritePatternTableAddr(s.regs)
	s.vram.SpriteAttribTable.SetMask((spriteAttribTableSize-1)|attribBase, attribBase, t)
	s.vram.SpritePatternTable.SetMask((spritePatternTableSize-1)|patternBase, patternBase, t)
}

// SetMode informs the checker of the current display mode; sprites are
// wholly disabled in text modes (DisplayMode.SpriteMode() == 0).
func (s *SpriteChecker) SetMode(mode DisplayMode) {
	if mode != s.mode {
		s.lineCache.purge()
	}
	s.mode = mode
}

// SetSizeAndMagnification applies R#1 bits SI/MAG.
func (s *SpriteChecker) SetSizeAndMagnification(large, magnify bool) {
	if large != s.spriteSizeLarge || magnify != s.magnify {
		s.lineCache.purge()
	}
	s.spriteSizeLarge = large
	s.magnify = magnify
}

// SetLimitEnabled toggles the host "sprite limit" convenience option: when
// disabled, overflow sprites still get drawn (and recorded) instead of
// dropped.
func (s *SpriteChecker) SetLimitEnabled(enabled bool) {
	s.limitEnabled = enabled
}

// UpdateVRAM implements VRAMObserver: any write inside a sprite window can
// change any line's visible set, so the whole per-line cache is purged.
// (A finer-grained invalidation by sprite slot is possible but not worth
// the complexity at this VRAM size.)
func (s *SpriteChecker) UpdateVRAM(address int, t EmuTime) {
	s.lineCache.purge()
}

// UpdateWindow implements VRAMObserver: a mask change invalidates
// everything.
func (s *SpriteChecker) UpdateWindow(t EmuTime) {
	s.lineCache.purge()
}

// FrameStart clears the per-frame collision coordinate latch: coordinates
// stay fixed for the rest of the frame once a collision is detected, and
// only VSYNC releases the latch.
func (s *SpriteChecker) FrameStart() {
	s.collisionLatched = false
	s.lineCache.purge()
}

// AcknowledgeStatus0Read clears the collision and 5th/9th-sprite overflow
// flags, mirroring the chip's clear-on-S#0-read behavior. The overflow
// index freezes once set and only this read releases it.
func (s *SpriteChecker) AcknowledgeStatus0Read() {
	s.collisionFlag = false
	s.overflowFlag = false
	s.overflowFrozen = false
}

// AcknowledgeStatus5Read resets the latched collision coordinates.
func (s *SpriteChecker) AcknowledgeStatus5Read() {
	s.collisionX = 0
	s.collisionY = 0
}

// CollisionFlag, CollisionX, CollisionY, OverflowFlag and OverflowIndex
// expose the bits VDP.ReadStatus composes S#0/S#3..S#6 from.
func (s *SpriteChecker) CollisionFlag() bool { return s.collisionFlag }
func (s *SpriteChecker) CollisionX() int     { return s.collisionX }
func (s *SpriteChecker) CollisionY() int     { return s.collisionY }
func (s *SpriteChecker) OverflowFlag() bool  { return s.overflowFlag }
func (s *SpriteChecker) OverflowIndex() int  { return s.overflowIndex }

func (s *SpriteChecker) maxPerLine() int {
	if s.mode.SpriteMode() == 1 {
		return 4
	}
	return 8
}

func (s *SpriteChecker) spriteSize() int {
	if s.spriteSizeLarge {
		return 16
	}
	return 8
}

func (s *SpriteChecker) magnifiedSize() int {
	n := s.spriteSize()
	if s.magnify {
		n *= 2
	}
	return n
}

// readPattern fetches the (possibly doubled) 32-bit pattern row for
// patternIndex at patternLine (0..magnifiedSize-1), bit-doubling via
// interleave when magnification is on.
func (s *SpriteChecker) readPattern(patternIndex int, patternLine int) uint32 {
	srcLine := patternLine
	if s.magnify {
		srcLine /= 2
	}
	patternBase := spritePatternTableAddr(s.regs)
	base := patternIndex * 8
	if s.spriteSizeLarge {
		base = (patternIndex &^ 0x03) * 8
	}
	var raw uint32
	if s.spriteSizeLarge {
		hi := s.vram.Peek(patternBase + base + srcLine)
		lo := s.vram.Peek(patternBase + base + srcLine + 16)
		raw = uint32(hi)<<24 | uint32(lo)<<16
	} else {
		b := s.vram.Peek(patternBase + base + srcLine)
		raw = uint32(b) << 24
	}
	if !s.magnify {
		return raw
	}
	return doublePattern(raw)
}

// doublePattern bit-interleaves a pattern so every source bit occupies two
// output bits, the MAG=1 pixel doubling.
func doublePattern(pattern uint32) uint32 {
	var out uint32
	for i := 0; i < 32; i++ {
		if pattern&(1<<uint(31-i)) != 0 {
			bit := uint32(1) << uint(31-i*2)
			if i*2+1 < 32 {
				out |= bit | (bit >> 1)
			} else {
				out |= bit
			}
		}
	}
	return out
}

// attribStride is the byte stride between consecutive sprites in the
// attribute table: 4 bytes (Y,X,pattern,color) in mode 1, and mode 2 packs
// the same 4-byte Y/X/pattern record plus a separate 512-byte-offset
// color sub-table.
const attribStride = 4
const mode2ColorTableOffset = 512

// ProcessLine computes the visible sprite set for displayLine, updating
// collision and overflow state as a side effect, and caches the result.
func (s *SpriteChecker) ProcessLine(displayLine int, t EmuTime) []SpriteRecord {
	if s.mode.SpriteMode() == 0 {
		return nil
	}
	if cached, ok := s.lineCache.get(displayLine); ok {
		return cached
	}

	spriteMode := s.mode.SpriteMode()
	terminator := spriteTerminatorY(spriteMode)
	magSize := s.magnifiedSize()
	maxPerLine := s.maxPerLine()
	attribBase := spriteAttribTableAddr(s.regs)

	var records []SpriteRecord
	overflowCount := 0
	var firstOverflowIndex = -1

	for slot := 0; slot < 32; slot++ {
		y := s.vram.Peek(attribBase + slot*attribStride + 0)
		if y == terminator {
			break
		}
		spriteY := int(y)
		line := (displayLine - spriteY) & 0xFF
		if line >= magSize {
			continue
		}

		if len(records) >= maxPerLine {
			overflowCount++
			if firstOverflowIndex < 0 {
				firstOverflowIndex = slot
			}
			if s.limitEnabled {
				continue
			}
		}

		x := int(s.vram.Peek(attribBase + slot*attribStride + 1))
		patternIdx := int(s.vram.Peek(attribBase + slot*attribStride + 2))
		colorAttr := s.vram.Peek(attribBase + slot*attribStride + 3)
		if spriteMode == 2 {
			colorAttr = s.vram.Peek(attribBase + mode2ColorTableOffset + slot)
		}

		pattern := s.readPattern(patternIdx, line)

		if colorAttr&attrEC != 0 {
			x -= 32
		}

		records = append(records, SpriteRecord{Pattern: pattern, X: x, ColorAttrib: colorAttr})
	}

	if overflowCount > 0 && !s.overflowFrozen {
		s.overflowFlag = true
		s.overflowFrozen = true
		s.overflowIndex = firstOverflowIndex
	}

	s.detectCollisions(records, displayLine, spriteMode, magSize)

	s.lineCache.put(displayLine, records)
	return records
}

// detectCollisions runs the pairwise overlap test: shift the farther
// pattern by |dx| and AND with the nearer one. Pairs at identical X
// (dx == 0) are skipped.
func (s *SpriteChecker) detectCollisions(records []SpriteRecord, line, spriteMode, magSize int) {
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if spriteMode == 2 && (a.ColorAttrib&(attrCC|attrIC) != 0 || b.ColorAttrib&(attrCC|attrIC) != 0) {
				continue
			}
			dx := a.X - b.X
			if dx == 0 || abs(dx) >= magSize {
				continue
			}
			var near, far SpriteRecord
			if dx > 0 {
				near, far = b, a
			} else {
				near, far = a, b
			}
			shift := abs(dx)
			if shift >= 32 {
				continue
			}
			if (near.Pattern&(far.Pattern>>uint(shift))) != 0 {
				s.collisionFlag = true
				if !s.collisionLatched {
					s.collisionLatched = true
					if dx > 0 {
						s.collisionX = b.X
					} else {
						s.collisionX = a.X
					}
					s.collisionY = line
				}
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SpriteCheckerState is the serializable subset of SpriteChecker state
// (vdp/state.go). The line cache is intentionally excluded: it is purely
// derived and repopulates lazily from VRAM/registers after restore.
type SpriteCheckerState struct {
	SpriteSizeLarge  bool
	Magnify          bool
	LimitEnabled     bool
	CollisionFlag    bool
	CollisionLatched bool
	CollisionX       int
	CollisionY       int
	OverflowFlag     bool
	OverflowIndex    int
	OverflowFrozen   bool
}

func (s *SpriteChecker) ExportState() SpriteCheckerState {
	return SpriteCheckerState{
		SpriteSizeLarge:  s.spriteSizeLarge,
		Magnify:          s.magnify,
		LimitEnabled:     s.limitEnabled,
		CollisionFlag:    s.collisionFlag,
		CollisionLatched: s.collisionLatched,
		CollisionX:       s.collisionX,
		CollisionY:       s.collisionY,
		OverflowFlag:     s.overflowFlag,
		OverflowIndex:    s.overflowIndex,
		OverflowFrozen:   s.overflowFrozen,
	}
}

func (s *SpriteChecker) RestoreState(st SpriteCheckerState) {
	s.spriteSizeLarge = st.SpriteSizeLarge
	s.magnify = st.Magnify
	s.limitEnabled = st.LimitEnabled
	s.collisionFlag = st.CollisionFlag
	s.collisionLatched = st.CollisionLatched
	s.collisionX = st.CollisionX
	s.collisionY = st.CollisionY
	s.overflowFlag = st.OverflowFlag
	s.overflowIndex = st.OverflowIndex
	s.overflowFrozen = st.OverflowFrozen
	s.lineCache.purge()
}
