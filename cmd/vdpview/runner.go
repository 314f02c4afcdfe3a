//go:build !libretro && !ios

package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	vdpebiten "github.com/openmsx-go/vdpcore/bridge/ebiten"
	"github.com/openmsx-go/vdpcore/vdp"
)

// demoRunner is an ebiten.Game driving the VDP core with a fixed setup
// script instead of a CPU: it programs SCREEN 2 (GRAPHIC2), draws a
// character set pattern and a few sprites once, then lets SyncTo advance
// one frame per Update call.
type demoRunner struct {
	emulator      *vdpebiten.Emulator
	ticksPerFrame int
	currentTime   vdp.EmuTime
	scripted      bool
}

func newDemoRunner(e *vdpebiten.Emulator, timing vdp.TimingProfile) *demoRunner {
	return &demoRunner{
		emulator:      e,
		ticksPerFrame: timing.TicksPerFrame,
	}
}

// Update implements ebiten.Game: runs the one-time setup script on the
// first call, then advances the core by one frame's worth of ticks.
func (r *demoRunner) Update() error {
	core := r.emulator.Core()
	if !r.scripted {
		runSetupScript(core, r.currentTime)
		r.scripted = true
	}
	r.currentTime = r.currentTime.Add(r.ticksPerFrame)
	core.SyncTo(r.currentTime)
	return nil
}

// Draw implements ebiten.Game.
func (r *demoRunner) Draw(screen *ebiten.Image) {
	r.emulator.DrawToScreen(screen)
}

// Layout implements ebiten.Game.
func (r *demoRunner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// runSetupScript programs a GRAPHIC2 (SCREEN 2) display: name table
// identity-mapped onto the pattern table's 768 character slots, a
// diagonal-stripe pattern generator, a fixed color table, and one sprite.
func runSetupScript(core *vdp.VDP, t vdp.EmuTime) {
	const nameTableBase = 0x1800 >> 10   // R#2
	const patternTableBase = 0x0000 >> 11 // R#4
	const colourTableBase = 0x2000 >> 6   // R#3
	const spriteAttribBase = 0x1B00 >> 7  // R#5
	const spritePatternBase = 0x3800 >> 11 // R#6

	core.WriteRegister(0, 0x02, t) // M3 set -> GRAPHIC2 (with M1/M2 clear below)
	core.WriteRegister(1, 0x42, t) // BL=1 (display on), SI=1 (16x16 sprites), M1/M2 clear
	core.WriteRegister(2, byte(nameTableBase), t)
	core.WriteRegister(3, byte(colourTableBase), t)
	core.WriteRegister(4, byte(patternTableBase), t)
	core.WriteRegister(5, byte(spriteAttribBase), t)
	core.WriteRegister(6, byte(spritePatternBase), t)
	core.WriteRegister(7, 0xF1, t) // border/backdrop white-on-black

	vram := core.VRAM()

	// Name table: identity map, one pattern per character cell (768 total).
	for i := 0; i < 768; i++ {
		vram.CPUWrite(0x1800+i, byte(i), t)
	}

	// Pattern generator table: diagonal stripes, one 8x8 tile repeated
	// across each of the three GRAPHIC2 pattern groups.
	for group := 0; group < 3; group++ {
		base := group * 2048
		for ch := 0; ch < 256; ch++ {
			for row := 0; row < 8; row++ {
				vram.CPUWrite(base+ch*8+row, byte(0x01<<uint(row%8)), t)
			}
		}
	}

	// Colour table: alternate white-on-blue and black-on-blue across the
	// three groups.
	for group := 0; group < 3; group++ {
		base := group * 2048
		for i := 0; i < 256*8; i++ {
			if group%2 == 0 {
				vram.CPUWrite(base+i, 0xF4, t) // white fg, blue bg
			} else {
				vram.CPUWrite(base+i, 0x14, t) // black fg, blue bg
			}
		}
	}

	// One 16x16 sprite near the center of the screen.
	spriteAttrib := 0x1B00
	vram.CPUWrite(spriteAttrib+0, 100, t) // Y
	vram.CPUWrite(spriteAttrib+1, 120, t) // X
	vram.CPUWrite(spriteAttrib+2, 0, t)   // pattern index
	vram.CPUWrite(spriteAttrib+3, 0x0F, t) // white
	vram.CPUWrite(spriteAttrib+4, 208, t)  // terminator for remaining slots

	spritePattern := 0x3800
	for row := 0; row < 16; row++ {
		vram.CPUWrite(spritePattern+row, 0xFF, t)
		vram.CPUWrite(spritePattern+row+16, 0xFF, t)
	}
}
