package vdp

import "testing"

func TestTiming_NTSC(t *testing.T) {
	if NTSCTiming.Lines != 262 {
		t.Errorf("NTSC lines: expected 262, got %d", NTSCTiming.Lines)
	}
	if NTSCTiming.TicksPerFrame != 262*1368 {
		t.Errorf("NTSC ticks/frame: expected %d, got %d", 262*1368, NTSCTiming.TicksPerFrame)
	}
	if NTSCTiming.FPS != 60 {
		t.Errorf("NTSC FPS: expected 60, got %d", NTSCTiming.FPS)
	}
}

func TestTiming_PAL(t *testing.T) {
	if PALTiming.Lines != 313 {
		t.Errorf("PAL lines: expected 313, got %d", PALTiming.Lines)
	}
	if PALTiming.TicksPerFrame != 313*1368 {
		t.Errorf("PAL ticks/frame: expected %d, got %d", 313*1368, PALTiming.TicksPerFrame)
	}
	if PALTiming.FPS != 50 {
		t.Errorf("PAL FPS: expected 50, got %d", PALTiming.FPS)
	}
}

func TestTimingForRegion(t *testing.T) {
	if TimingForRegion(RegionNTSC).Lines != NTSCTiming.Lines {
		t.Errorf("TimingForRegion(NTSC) mismatch")
	}
	if TimingForRegion(RegionPAL).Lines != PALTiming.Lines {
		t.Errorf("TimingForRegion(PAL) mismatch")
	}
}

func TestDefaultRegion(t *testing.T) {
	if DefaultRegion() != RegionNTSC {
		t.Errorf("expected NTSC default, got %v", DefaultRegion())
	}
}

func TestRegionString(t *testing.T) {
	if RegionNTSC.String() != "NTSC" {
		t.Errorf("expected NTSC, got %s", RegionNTSC.String())
	}
	if RegionPAL.String() != "PAL" {
		t.Errorf("expected PAL, got %s", RegionPAL.String())
	}
	if Region(99).String() != "Unknown" {
		t.Errorf("expected Unknown for out-of-range region")
	}
}
