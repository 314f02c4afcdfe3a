package vdp

// VRAMObserver is notified when the VRAM contents or addressing of a Window
// it is registered on changes. Implementations mark their own derived cache
// dirty and recompute lazily.
type VRAMObserver interface {
	// UpdateVRAM is called before the byte at address changes, with the
	// emulated time the write occurs at.
	UpdateVRAM(address int, t EmuTime)

	// UpdateWindow is called when the window's mask changes or it is
	// disabled: a full invalidation, since every address mapping may now
	// be different.
	UpdateWindow(t EmuTime)
}

// Window is a masked address region ("table" in VDP data-book terms) with
// at most one observer. baseMask/indexMask define baseAddr and combiMask,
// and IsInside is a single AND+compare.
type Window struct {
	baseMask  int
	baseAddr  int
	combiMask int
	enabled   bool
	observer  VRAMObserver
}

// SetMask installs a new mask and enables the window. The observer (if
// any) is notified of the old mapping one last time before the change.
func (w *Window) SetMask(baseMask, indexMask int, t EmuTime) {
	if w.observer != nil {
		w.observer.UpdateWindow(t)
	}
	w.baseMask = baseMask
	w.baseAddr = baseMask & indexMask
	w.combiMask = ^baseMask | indexMask
	w.enabled = true
}

// Disable turns off the window; isInside will report false for every
// address until SetMask is called again.
func (w *Window) Disable(t EmuTime) {
	if w.observer != nil {
		w.observer.UpdateWindow(t)
	}
	w.enabled = false
}

// SetObserver registers (or clears, with nil) the window's observer.
func (w *Window) SetObserver(o VRAMObserver) {
	w.observer = o
}

// IsInside reports whether address maps inside this window. Disabled
// windows never contain any address.
func (w *Window) IsInside(address int) bool {
	return w.enabled && (address&w.combiMask) == w.baseAddr
}

// Notify calls the observer's UpdateVRAM if address falls inside the
// window and an observer is registered.
func (w *Window) Notify(address int, t EmuTime) {
	if w.observer != nil && w.IsInside(address) {
		w.observer.UpdateVRAM(address, t)
	}
}

// ReadNP reads a byte from vram at the window-masked index. Index should
// have all bits outside the table's index range set to 1.
func (w *Window) ReadNP(vram []byte, index int) byte {
	return vram[w.baseMask&index]
}

// Mask returns the current base mask. Only meaningful while enabled.
func (w *Window) Mask() int {
	return w.baseMask
}

// Enabled reports whether the window currently maps any address.
func (w *Window) Enabled() bool {
	return w.enabled
}
