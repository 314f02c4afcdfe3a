//go:build !libretro && !ios

// Command vdpview drives the VDP core with a synthetic register/VRAM
// script (this module has no CPU or ROM loader of its own) and presents
// the resulting frames in an Ebiten window.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	vdpebiten "github.com/openmsx-go/vdpcore/bridge/ebiten"
	"github.com/openmsx-go/vdpcore/vdp"
)

func main() {
	versionFlag := flag.String("version", "v9938", "chip version: msx1, v9938, or v9958")
	regionFlag := flag.String("region", "ntsc", "region: ntsc or pal")
	vramFlag := flag.Int("vram", 131072, "VRAM size in bytes: 16384, 65536, or 131072")
	screenshotFlag := flag.String("screenshot", "", "render headlessly and write a BMP to this path instead of opening a window")
	framesFlag := flag.Int("frames", 3, "frames to emulate before a -screenshot is taken")
	flag.Parse()

	version, err := parseVersion(*versionFlag)
	if err != nil {
		log.Fatal(err)
	}
	region, err := parseRegion(*regionFlag)
	if err != nil {
		log.Fatal(err)
	}

	if *screenshotFlag != "" {
		if err := renderScreenshot(version, region, *vramFlag, *framesFlag, *screenshotFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	emulator, err := vdpebiten.NewEmulator(version, region, *vramFlag, nil)
	if err != nil {
		log.Fatalf("failed to create VDP: %v", err)
	}

	timing := vdp.TimingForRegion(region)
	ebiten.SetWindowSize(640*2, timing.Lines*2)
	ebiten.SetWindowTitle("vdpview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(timing.FPS)

	runner := newDemoRunner(emulator, timing)
	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}

func parseVersion(s string) (vdp.VDPVersion, error) {
	switch s {
	case "msx1":
		return vdp.VersionMSX1, nil
	case "v9938":
		return vdp.VersionV9938, nil
	case "v9958":
		return vdp.VersionV9958, nil
	default:
		return 0, fmt.Errorf("unknown version: %s", s)
	}
}

func parseRegion(s string) (vdp.Region, error) {
	switch s {
	case "ntsc":
		return vdp.RegionNTSC, nil
	case "pal":
		return vdp.RegionPAL, nil
	default:
		return 0, fmt.Errorf("unknown region: %s", s)
	}
}
