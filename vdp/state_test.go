package vdp

import (
	"testing"

	"github.com/spf13/afero"
)

func TestVDP_SnapshotRestoreRoundTrip(t *testing.T) {
	v, _, _ := newTestVDP(t)
	v.WriteRegister(7, 0x42, 0)
	v.WritePort2(0x70, 0)
	v.WritePort2(0x03, 0)
	v.vram.CPUWrite(100, 0x77, 0)
	v.SyncTo(EmuTime(10 * TicksPerLine))

	snap := v.Snapshot()

	fresh, _, _ := newTestVDP(t)
	if err := fresh.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if fresh.Registers().Read(7) != 0x42 {
		t.Errorf("R#7 after restore = %#x, want 0x42", fresh.Registers().Read(7))
	}
	if fresh.VRAM().Peek(100) != 0x77 {
		t.Errorf("VRAM[100] after restore = %#x, want 0x77", fresh.VRAM().Peek(100))
	}
	if fresh.CurrentTime() != v.CurrentTime() {
		t.Errorf("CurrentTime after restore = %d, want %d", fresh.CurrentTime(), v.CurrentTime())
	}
}

func TestSnapshot_RejectsMismatchedFormatVersion(t *testing.T) {
	v, _, _ := newTestVDP(t)
	snap := v.Snapshot()
	snap.FormatVersion = 999
	if err := v.Restore(snap); err == nil {
		t.Error("expected an error restoring a snapshot with a mismatched format version")
	}
}

func TestSnapshot_RejectsMismatchedVRAMSize(t *testing.T) {
	v, _, _ := newTestVDP(t)
	snap := v.Snapshot()
	snap.VRAMData = make([]byte, len(snap.VRAMData)/2)
	if err := v.Restore(snap); err == nil {
		t.Error("expected an error restoring a snapshot with a mismatched VRAM size")
	}
}

func TestSnapshot_EncodeDecodeRoundTrip(t *testing.T) {
	v, _, _ := newTestVDP(t)
	v.WriteRegister(7, 0x55, 0)
	v.vram.CPUWrite(42, 0x99, 0)

	data, err := v.Snapshot().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if decoded.Control[7] != 0x55 {
		t.Errorf("decoded R#7 = %#x, want 0x55", decoded.Control[7])
	}
	if decoded.VRAMData[42] != 0x99 {
		t.Errorf("decoded VRAM[42] = %#x, want 0x99", decoded.VRAMData[42])
	}
}

func TestVDP_SaveLoadStateToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	host := &HostServices{Filesystem: AferoFilesystem{Fs: fs}}
	frame := NewRawFrame8888(NTSCTiming.Lines)
	v, err := NewVDP(VersionV9938, RegionNTSC, 65536, frame, host, nil)
	if err != nil {
		t.Fatal(err)
	}
	v.WriteRegister(7, 0x99, 0)
	v.vram.CPUWrite(5, 0x11, 0)

	if err := v.SaveStateToFile("/state.bin"); err != nil {
		t.Fatalf("SaveStateToFile: %v", err)
	}

	frame2 := NewRawFrame8888(NTSCTiming.Lines)
	v2, err := NewVDP(VersionV9938, RegionNTSC, 65536, frame2, host, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := v2.LoadStateFromFile("/state.bin"); err != nil {
		t.Fatalf("LoadStateFromFile: %v", err)
	}
	if v2.Registers().Read(7) != 0x99 {
		t.Errorf("R#7 after load = %#x, want 0x99", v2.Registers().Read(7))
	}
	if v2.VRAM().Peek(5) != 0x11 {
		t.Errorf("VRAM[5] after load = %#x, want 0x11", v2.VRAM().Peek(5))
	}
}

func TestVDP_SaveStateWithoutFilesystemErrors(t *testing.T) {
	v, _, _ := newTestVDP(t)
	if err := v.SaveStateToFile("/state.bin"); err == nil {
		t.Error("expected an error saving state with no Filesystem configured")
	}
}
