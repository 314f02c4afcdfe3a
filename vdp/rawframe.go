package vdp

import "image"

// LineMeta carries per-line frame metadata: how many pixels were actually
// drawn on the line, and whether the whole line is a single solid border
// color (letting a presenter blit-fill it instead of copying pixels one
// by one).
type LineMeta struct {
	PixelCount int
	SolidColor bool
}

// FrameBuffer is the narrow interface the rasterizer draws through. Pixel
// format (16bpp RGB555 vs 32bpp RGBA8888) is chosen once at construction
// as one of two concrete specializations: the rasterizer and mode
// converters never branch on format, they only ever call through this
// interface.
type FrameBuffer interface {
	// SetPixel stores one pixel at (x, line) from 8-bit RGB components.
	SetPixel(line, x int, r, g, b uint8)
	// SetLineMeta records per-line metadata after a line is fully drawn.
	SetLineMeta(line int, meta LineMeta)
	// Width and Height report the buffer's fixed dimensions.
	Width() int
	Height() int
	// Reset clears every pixel to black and every line's metadata, ready
	// for the next frame.
	Reset()
}

const rawFrameWidth = 640

// RawFrame555 is the 16bpp RGB555 specialization of FrameBuffer.
type RawFrame555 struct {
	height int
	pixels [][]uint16
	lines  []LineMeta
}

// NewRawFrame555 allocates a 640-wide, height-line RGB555 frame buffer.
func NewRawFrame555(height int) *RawFrame555 {
	f := &RawFrame555{height: height}
	f.pixels = make([][]uint16, height)
	for i := range f.pixels {
		f.pixels[i] = make([]uint16, rawFrameWidth)
	}
	f.lines = make([]LineMeta, height)
	return f
}

func (f *RawFrame555) Width() int  { return rawFrameWidth }
func (f *RawFrame555) Height() int { return f.height }

func (f *RawFrame555) SetPixel(line, x int, r, g, b uint8) {
	if line < 0 || line >= f.height || x < 0 || x >= rawFrameWidth {
		return
	}
	f.pixels[line][x] = uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
}

func (f *RawFrame555) SetLineMeta(line int, meta LineMeta) {
	if line < 0 || line >= f.height {
		return
	}
	f.lines[line] = meta
}

func (f *RawFrame555) Reset() {
	for i := range f.pixels {
		row := f.pixels[i]
		for j := range row {
			row[j] = 0
		}
		f.lines[i] = LineMeta{}
	}
}

// Pixel returns the raw RGB555 value at (x, line).
func (f *RawFrame555) Pixel(line, x int) uint16 { return f.pixels[line][x] }

// LineMeta returns the recorded metadata for line.
func (f *RawFrame555) LineMeta(line int) LineMeta { return f.lines[line] }

// RawFrame8888 is the 32bpp RGBA8888 specialization of FrameBuffer, the
// format a host presenter (e.g. bridge/ebiten) consumes directly.
type RawFrame8888 struct {
	height int
	pixels [][]uint32
	lines  []LineMeta
}

// NewRawFrame8888 allocates a 640-wide, height-line RGBA8888 frame buffer.
func NewRawFrame8888(height int) *RawFrame8888 {
	f := &RawFrame8888{height: height}
	f.pixels = make([][]uint32, height)
	for i := range f.pixels {
		f.pixels[i] = make([]uint32, rawFrameWidth)
	}
	f.lines = make([]LineMeta, height)
	return f
}

func (f *RawFrame8888) Width() int  { return rawFrameWidth }
func (f *RawFrame8888) Height() int { return f.height }

func (f *RawFrame8888) SetPixel(line, x int, r, g, b uint8) {
	if line < 0 || line >= f.height || x < 0 || x >= rawFrameWidth {
		return
	}
	f.pixels[line][x] = uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
}

func (f *RawFrame8888) SetLineMeta(line int, meta LineMeta) {
	if line < 0 || line >= f.height {
		return
	}
	f.lines[line] = meta
}

func (f *RawFrame8888) Reset() {
	for i := range f.pixels {
		row := f.pixels[i]
		for j := range row {
			row[j] = 0
		}
		f.lines[i] = LineMeta{}
	}
}

// Pixel returns the raw RGBA8888 value at (x, line).
func (f *RawFrame8888) Pixel(line, x int) uint32 { return f.pixels[line][x] }

// LineMeta returns the recorded metadata for line.
func (f *RawFrame8888) LineMeta(line int) LineMeta { return f.lines[line] }

// ToImage copies the frame into a freshly allocated image.RGBA, for
// screenshot writers and other stdlib image consumers.
func (f *RawFrame8888) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rawFrameWidth, f.height))
	f.ToRGBA(img.Pix)
	return img
}

// ToRGBA writes the frame's pixels into an RGBA byte slice (4 bytes/pixel,
// row-major, stride == Width()*4), the layout bridge/ebiten's
// ebiten.Image.WritePixels expects.
func (f *RawFrame8888) ToRGBA(dst []byte) {
	stride := rawFrameWidth * 4
	for y := 0; y < f.height; y++ {
		row := dst[y*stride : y*stride+stride]
		for x := 0; x < rawFrameWidth; x++ {
			p := f.pixels[y][x]
			row[x*4+0] = byte(p >> 24)
			row[x*4+1] = byte(p >> 16)
			row[x*4+2] = byte(p >> 8)
			row[x*4+3] = byte(p)
		}
	}
}
