package vdp

import "fmt"

// PlanarAddress applies the Graphic 6/7 address interleave: logical address
// a maps to physical ((a<<16)|(a>>1)) & 0x1FFFF. Callers (the rasterizer,
// the command engine) apply this themselves before touching VRAM; VRAM
// itself never does.
func PlanarAddress(a int) int {
	return ((a << 16) | (a >> 1)) & 0x1FFFF
}

// VRAM is the byte-addressed video memory plus the set of windows that
// observe writes into it.
type VRAM struct {
	data []byte
	mask int
	size int

	// Extended VRAM bank, selected by MXC (R#45 bit 6) for CPU access
	// only; display and commands always address the main bank. Only
	// meaningful when size == 65536: no VDP revision in this core ships a
	// second 128K/16K bank.
	extData     []byte
	extSelected bool

	// Windows used by the core.
	NameTable          Window
	PatternTable       Window
	ColourTable        Window
	SpriteAttribTable  Window
	SpritePatternTable Window
	BitmapWindow       Window
	CmdReadWindow      Window
	CmdWriteWindow     Window

	currentTime EmuTime

	// cmdEngineSync lets CPURead/CPUWrite catch the command engine up to
	// the access time before touching addresses inside the command
	// engine's own read/write windows. Set once, after construction, to
	// break the VRAM<->CmdEngine circular dependency.
	cmdEngineSync func(t EmuTime)
}

// NewVRAM constructs VRAM of the given size. Only {16384, 65536, 131072}
// are valid VDP VRAM sizes; any other size is a construction-time error.
func NewVRAM(size int) (*VRAM, error) {
	switch size {
	case 16384, 65536, 131072:
	default:
		return nil, fmt.Errorf("vdp: invalid VRAM size %d (must be 16384, 65536, or 131072)", size)
	}
	v := &VRAM{
		data: make([]byte, size),
		mask: size - 1,
		size: size,
	}
	if size == 65536 {
		v.extData = make([]byte, size)
		for i := range v.extData {
			v.extData[i] = 0xFF
		}
	}
	return v, nil
}

// Size returns the VRAM size in bytes.
func (v *VRAM) Size() int { return v.size }

// SetCmdEngineSync installs the callback used to catch the command engine
// up to a given time before a CPU access touches its read/write windows.
func (v *VRAM) SetCmdEngineSync(sync func(t EmuTime)) {
	v.cmdEngineSync = sync
}

// SetExtendedBank selects whether CPU-port access targets the secondary
// VRAM bank (MXC bit). Has no effect on command-engine or display
// addressing.
func (v *VRAM) SetExtendedBank(selected bool) {
	v.extSelected = selected
}

// allWindows lists the eight windows dispatched on every byte write.
func (v *VRAM) allWindows() [8]*Window {
	return [8]*Window{
		&v.NameTable, &v.PatternTable, &v.ColourTable,
		&v.SpriteAttribTable, &v.SpritePatternTable, &v.BitmapWindow,
		&v.CmdReadWindow, &v.CmdWriteWindow,
	}
}

// notifyAndStore notifies every window whose range contains addr, then
// stores value in main VRAM and advances currentTime. Shared by both the
// CPU and the command-engine write paths.
func (v *VRAM) notifyAndStore(addr int, value byte, t EmuTime) {
	for _, w := range v.allWindows() {
		w.Notify(addr, t)
	}
	v.data[addr&v.mask] = value
	v.currentTime = t
}

// CmdWrite is the write path used by the command engine: it notifies every
// observer except the command engine itself, which does not observe its
// own windows, so there is nothing to skip in practice.
func (v *VRAM) CmdWrite(addr int, value byte, t EmuTime) {
	v.notifyAndStore(addr, value, t)
}

// CPUWrite is the write path used by port 0 (CPU VRAM access). If addr
// falls within the command engine's read or write window, the command
// engine is synchronised to t first so its in-flight writes are visible
// before this one lands.
func (v *VRAM) CPUWrite(addr int, value byte, t EmuTime) {
	if v.extSelected && v.extData != nil {
		// The secondary bank backs no display table or command window, so
		// there is nothing to notify or synchronise.
		v.extData[addr&v.mask] = value
		v.currentTime = t
		return
	}
	if v.cmdEngineSync != nil && (v.CmdReadWindow.IsInside(addr) || v.CmdWriteWindow.IsInside(addr)) {
		v.cmdEngineSync(t)
	}
	v.notifyAndStore(addr, value, t)
}

// CPURead reads through the CPU/extended-bank path. If addr falls inside
// the command write window, the command engine is synced first so a
// read-after-command-write observes the committed value.
func (v *VRAM) CPURead(addr int, t EmuTime) byte {
	if v.cmdEngineSync != nil && v.CmdWriteWindow.IsInside(addr) {
		v.cmdEngineSync(t)
	}
	if v.extSelected && v.extData != nil {
		return v.extData[addr&v.mask]
	}
	return v.data[addr&v.mask]
}

// Peek reads a byte directly from main VRAM with no synchronisation or
// extended-bank redirection; used by the command engine and rasterizer,
// which are themselves the thing being synced against.
func (v *VRAM) Peek(addr int) byte {
	return v.data[addr&v.mask]
}

// CurrentTime returns the time of the most recent write.
func (v *VRAM) CurrentTime() EmuTime {
	return v.currentTime
}

// Bytes returns the main VRAM backing slice directly, for save-state
// serialization (vdp/state.go). Callers must copy before mutating a
// stored snapshot.
func (v *VRAM) Bytes() []byte { return v.data }

// ExtBytes returns the extended-bank backing slice (nil unless size ==
// 65536).
func (v *VRAM) ExtBytes() []byte { return v.extData }

// ExtSelected reports whether CPU access currently targets the extended
// bank.
func (v *VRAM) ExtSelected() bool { return v.extSelected }

// Restore overwrites VRAM contents from a snapshot (vdp/state.go). Sizes
// must match what NewVRAM already allocated.
func (v *VRAM) Restore(data, extData []byte, extSelected bool) {
	copy(v.data, data)
	if extData != nil && v.extData != nil {
		copy(v.extData, extData)
	}
	v.extSelected = extSelected
}
