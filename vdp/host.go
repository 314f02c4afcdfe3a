package vdp

// IRQLine identifies one of the VDP's two active-high interrupt outputs.
type IRQLine int

const (
	IRQVertical IRQLine = iota
	IRQHorizontal
)

func (l IRQLine) String() string {
	if l == IRQHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// HostServices is the explicit dependency-injection boundary between the
// VDP core and the surrounding emulator: the core receives IRQ callbacks
// and an optional filesystem handle, never reaching for ambient global
// state.
type HostServices struct {
	// RaiseIRQ and LowerIRQ report edges on the named interrupt line. Both
	// may be nil, in which case the VDP still tracks line state
	// internally (queryable via VDP.IRQActive) but issues no callback.
	RaiseIRQ func(line IRQLine)
	LowerIRQ func(line IRQLine)

	// Filesystem backs the optional SaveStateToFile/LoadStateFromFile
	// helpers in vdp/state.go. nil disables the file-backed helpers; the
	// in-memory Snapshot/Restore API always works regardless.
	Filesystem Filesystem
}

// Filesystem is the narrow slice of afero.Fs the save-state helpers need,
// so vdp/state.go depends on an interface rather than the concrete afero
// package when no file access is wanted at all.
type Filesystem interface {
	WriteFile(name string, data []byte, perm uint32) error
	ReadFile(name string) ([]byte, error)
}

func (h *HostServices) raiseIRQ(line IRQLine) {
	if h != nil && h.RaiseIRQ != nil {
		h.RaiseIRQ(line)
	}
}

func (h *HostServices) lowerIRQ(line IRQLine) {
	if h != nil && h.LowerIRQ != nil {
		h.LowerIRQ(line)
	}
}
