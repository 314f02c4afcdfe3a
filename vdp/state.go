package vdp

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// snapshotFormatVersion is bumped whenever SnapshotV1's shape changes in a
// way that breaks gob compatibility with previously saved states.
const snapshotFormatVersion = 1

// SnapshotV1 is the complete, serializable state of one VDP instance:
// scheduler position, every control/status/palette register, VRAM
// contents, and the command engine's and sprite checker's own in-flight
// state. Plain, fully-exported fields gob can walk with no custom
// (Un)MarshalBinary.
type SnapshotV1 struct {
	FormatVersion int
	VDPVersion    VDPVersion
	Region        Region

	CurrentTime    EmuTime
	FrameStartTime EmuTime
	CurrentLine    int

	Mode      DisplayMode
	ModeDirty bool

	VScanFlag  bool
	HScanFlag  bool
	VIRQActive bool
	HIRQActive bool

	ReadAhead   byte
	VRAMPointer int

	CtrlLatch byte
	CtrlPhase bool

	PaletteLatch byte
	PalettePhase bool
	PaletteIndex int

	Control [NumRegisters]byte
	Palette [16]uint16
	Status  [10]byte

	VRAMData    []byte
	ExtVRAMData []byte
	ExtSelected bool

	Cmd     CmdEngineState
	Sprites SpriteCheckerState
}

// Snapshot captures v's complete state as a SnapshotV1 value. Safe to call
// at any time; it does not itself advance the scheduler.
func (v *VDP) Snapshot() SnapshotV1 {
	control, palette, status := v.regs.ExportState()
	vramData := make([]byte, len(v.vram.Bytes()))
	copy(vramData, v.vram.Bytes())

	var extData []byte
	if eb := v.vram.ExtBytes(); eb != nil {
		extData = make([]byte, len(eb))
		copy(extData, eb)
	}

	return SnapshotV1{
		FormatVersion:  snapshotFormatVersion,
		VDPVersion:     v.version,
		Region:         v.region,
		CurrentTime:    v.currentTime,
		FrameStartTime: v.frameStartTime,
		CurrentLine:    v.currentLine,
		Mode:           v.mode,
		ModeDirty:      v.modeDirty,
		VScanFlag:      v.vScanFlag,
		HScanFlag:      v.hScanFlag,
		VIRQActive:     v.vIRQActive,
		HIRQActive:     v.hIRQActive,
		ReadAhead:      v.readAhead,
		VRAMPointer:    v.vramPointer,
		CtrlLatch:      v.ctrlLatch,
		CtrlPhase:      v.ctrlPhase,
		PaletteLatch:   v.paletteLatch,
		PalettePhase:   v.palettePhase,
		PaletteIndex:   v.paletteIndex,
		Control:        control,
		Palette:        palette,
		Status:         status,
		VRAMData:       vramData,
		ExtVRAMData:    extData,
		ExtSelected:    v.vram.ExtSelected(),
		Cmd:            v.cmd.ExportState(),
		Sprites:        v.sprites.ExportState(),
	}
}

// Restore reinstates a previously captured snapshot. The VDP must already
// be constructed with the same VRAM size and version the snapshot was
// taken from; NewVDP's caller owns picking a compatible configuration.
func (v *VDP) Restore(s SnapshotV1) error {
	if s.FormatVersion != snapshotFormatVersion {
		return fmt.Errorf("vdp: unsupported snapshot format version %d (want %d)", s.FormatVersion, snapshotFormatVersion)
	}
	if len(s.VRAMData) != len(v.vram.Bytes()) {
		return fmt.Errorf("vdp: snapshot VRAM size %d does not match this VDP's %d bytes", len(s.VRAMData), len(v.vram.Bytes()))
	}

	v.version = s.VDPVersion
	v.region = s.Region
	v.timing = TimingForRegion(s.Region)
	v.currentTime = s.CurrentTime
	v.frameStartTime = s.FrameStartTime
	v.currentLine = s.CurrentLine
	v.mode = s.Mode
	v.modeDirty = s.ModeDirty
	v.vScanFlag = s.VScanFlag
	v.hScanFlag = s.HScanFlag
	v.vIRQActive = s.VIRQActive
	v.hIRQActive = s.HIRQActive
	v.readAhead = s.ReadAhead
	v.vramPointer = s.VRAMPointer
	v.ctrlLatch = s.CtrlLatch
	v.ctrlPhase = s.CtrlPhase
	v.paletteLatch = s.PaletteLatch
	v.palettePhase = s.PalettePhase
	v.paletteIndex = s.PaletteIndex

	v.regs.RestoreState(s.Control, s.Palette, s.Status)
	v.vram.Restore(s.VRAMData, s.ExtVRAMData, s.ExtSelected)
	v.cmd.RestoreState(s.Cmd, s.CurrentTime)
	v.sprites.RestoreState(s.Sprites)

	v.raster.SetDisplayMode(v.mode)
	v.raster.InvalidatePalette()
	v.sprites.SetMode(v.mode)
	v.sprites.RefreshWindows(v.currentTime)

	return nil
}

// Encode serializes a snapshot with gob, then compresses it with zstd;
// the VRAM payload (up to 128 KB, mostly repetitive) dominates the blob
// and compresses well.
func (s SnapshotV1) Encode() ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(s); err != nil {
		return nil, fmt.Errorf("vdp: encode snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("vdp: create zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(raw.Bytes(), nil), nil
}

// DecodeSnapshot reverses Encode.
func DecodeSnapshot(data []byte) (SnapshotV1, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("vdp: create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("vdp: decompress snapshot: %w", err)
	}

	var s SnapshotV1
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return SnapshotV1{}, fmt.Errorf("vdp: decode snapshot: %w", err)
	}
	return s, nil
}

// SaveStateToFile encodes v's current state and writes it through
// v's HostServices.Filesystem, if one is configured.
func (v *VDP) SaveStateToFile(path string) error {
	if v.host == nil || v.host.Filesystem == nil {
		return fmt.Errorf("vdp: no filesystem configured in HostServices")
	}
	data, err := v.Snapshot().Encode()
	if err != nil {
		return err
	}
	return v.host.Filesystem.WriteFile(path, data, 0o644)
}

// LoadStateFromFile reads and restores a snapshot previously written by
// SaveStateToFile.
func (v *VDP) LoadStateFromFile(path string) error {
	if v.host == nil || v.host.Filesystem == nil {
		return fmt.Errorf("vdp: no filesystem configured in HostServices")
	}
	data, err := v.host.Filesystem.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	return v.Restore(s)
}

// AferoFilesystem adapts an afero.Fs to the narrow Filesystem interface
// HostServices wants, so a host can plug in an in-memory, OS, or
// zip-backed afero filesystem interchangeably.
type AferoFilesystem struct {
	Fs afero.Fs
}

func (a AferoFilesystem) WriteFile(name string, data []byte, perm uint32) error {
	return afero.WriteFile(a.Fs, name, data, os.FileMode(perm))
}

func (a AferoFilesystem) ReadFile(name string) ([]byte, error) {
	f, err := a.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
