//go:build !libretro && !ios

package main

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/bmp"

	"github.com/openmsx-go/vdpcore/vdp"
)

// renderScreenshot runs the demo script headlessly for the given number of
// frames and writes the last emitted frame to path as a BMP. Useful on
// machines with no display, and as a quick render-regression check.
func renderScreenshot(version vdp.VDPVersion, region vdp.Region, vramSize, frames int, path string) error {
	if frames < 1 {
		return fmt.Errorf("need at least 1 frame, got %d", frames)
	}
	timing := vdp.TimingForRegion(region)
	frame := vdp.NewRawFrame8888(timing.Lines)

	var capturedImg *image.RGBA
	count := 0
	core, err := vdp.NewVDP(version, region, vramSize, frame, nil, func(fb vdp.FrameBuffer) {
		count++
		if count == frames {
			// The buffer is reset right after this callback returns, so the
			// copy has to happen here.
			capturedImg = fb.(*vdp.RawFrame8888).ToImage()
		}
	})
	if err != nil {
		return err
	}

	runSetupScript(core, 0)
	var t vdp.EmuTime
	for i := 0; i < frames; i++ {
		t = t.Add(timing.TicksPerFrame)
		core.SyncTo(t)
	}
	if capturedImg == nil {
		return fmt.Errorf("no frame emitted after %d frame(s)", frames)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bmp.Encode(f, capturedImg)
}
