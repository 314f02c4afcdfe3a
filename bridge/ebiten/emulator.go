//go:build !libretro && !ios

// Package ebiten provides an Ebiten-specific presenter for the VDP core.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/openmsx-go/vdpcore/vdp"
)

// Emulator wraps a vdp.VDP with Ebiten-specific rendering: it owns the
// RawFrame8888 the core draws into and an offscreen ebiten.Image kept in
// sync with it. The offscreen buffer and pixel slice are reused across
// frames to avoid per-frame allocation.
type Emulator struct {
	core  *vdp.VDP
	frame *vdp.RawFrame8888

	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
	pixelBuf  []byte
}

// NewEmulator constructs an Emulator of the given version/region with
// vramSize bytes of VRAM. host may be nil (no IRQ callbacks, no file-
// backed save states).
func NewEmulator(version vdp.VDPVersion, region vdp.Region, vramSize int, host *vdp.HostServices) (*Emulator, error) {
	timing := vdp.TimingForRegion(region)
	frame := vdp.NewRawFrame8888(timing.Lines)

	core, err := vdp.NewVDP(version, region, vramSize, frame, host, nil)
	if err != nil {
		return nil, err
	}

	return &Emulator{
		core:     core,
		frame:    frame,
		pixelBuf: make([]byte, frame.Width()*frame.Height()*4),
	}, nil
}

// Core exposes the underlying VDP so a host CPU/bus loop can drive ports
// and registers directly.
func (e *Emulator) Core() *vdp.VDP { return e.core }

// Close releases Ebiten-side resources; the VDP core itself holds nothing
// that needs explicit cleanup.
func (e *Emulator) Close() {
	e.offscreen = nil
}

func (e *Emulator) ensureOffscreen() {
	if e.offscreen == nil {
		e.offscreen = ebiten.NewImage(e.frame.Width(), e.frame.Height())
	}
}

// syncOffscreen copies the core's RawFrame8888 into the Ebiten offscreen
// image via WritePixels.
func (e *Emulator) syncOffscreen() {
	e.ensureOffscreen()
	e.frame.ToRGBA(e.pixelBuf)
	e.offscreen.WritePixels(e.pixelBuf)
}

// DrawToScreen renders the core's current frame to screen, scaled and
// centered to fit while preserving aspect ratio.
func (e *Emulator) DrawToScreen(screen *ebiten.Image) {
	e.syncOffscreen()

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW, nativeH := float64(e.frame.Width()), float64(e.frame.Height())

	scaleX := float64(screenW) / nativeW
	scaleY := float64(screenH) / nativeH
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	scaledW := nativeW * scale
	scaledH := nativeH * scale
	offsetX := (float64(screenW) - scaledW) / 2
	offsetY := (float64(screenH) - scaledH) / 2

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate(offsetX, offsetY)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(e.offscreen, &e.drawOpts)
}

func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// FrameImage returns the Ebiten image backing the current frame, syncing
// it from the core first.
func (e *Emulator) FrameImage() *ebiten.Image {
	e.syncOffscreen()
	return e.offscreen
}
