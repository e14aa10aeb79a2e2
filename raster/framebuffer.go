package raster

import (
	"math"

	"github.com/meridian-render/meridian/types"
)

// FrameBuffer owns the per-pixel, per-sample color and depth storage plus
// the resolved displayable image. Sample storage is laid out row-major with
// the samples of a pixel adjacent: index = (y*width+x)*sampleCount + s.
type FrameBuffer struct {
	width           uint32
	height          uint32
	sampleCountLog2 uint32
	sampleCount     uint32

	// Per-sample packed RGBA colors and depths.
	samples []uint32
	depth   []float32

	// The resolved image, row-major RGBA, one color per pixel.
	pixels []byte
}

func newFrameBuffer(width, height, sampleCountLog2 uint32) *FrameBuffer {
	sampleCount := uint32(1) << sampleCountLog2
	fb := &FrameBuffer{
		width:           width,
		height:          height,
		sampleCountLog2: sampleCountLog2,
		sampleCount:     sampleCount,
		samples:         make([]uint32, width*height*sampleCount),
		depth:           make([]float32, width*height*sampleCount),
		pixels:          make([]byte, width*height*4),
	}

	// Depths start at the far plane so draw calls issued before the first
	// Clear still pass the depth test.
	for i := range fb.depth {
		fb.depth[i] = math.MaxFloat32
	}
	return fb
}

// Get frame width in pixels.
func (fb *FrameBuffer) Width() uint32 {
	return fb.width
}

// Get frame height in pixels.
func (fb *FrameBuffer) Height() uint32 {
	return fb.height
}

// Get the number of samples stored per pixel.
func (fb *FrameBuffer) SampleCount() uint32 {
	return fb.sampleCount
}

// Pixels exposes the resolved image as a read-only, row-major RGBA byte
// buffer. Callers must not retain it across a Resize.
func (fb *FrameBuffer) Pixels() []byte {
	return fb.pixels
}

// clearRows resets the sample colors and depths of pixel rows [y0, y1).
func (fb *FrameBuffer) clearRows(color uint32, y0, y1 uint32) {
	start := y0 * fb.width * fb.sampleCount
	end := y1 * fb.width * fb.sampleCount
	for i := start; i < end; i++ {
		fb.samples[i] = color
		fb.depth[i] = math.MaxFloat32
	}
}

// resolveRows reduces the multisample storage of pixel rows [y0, y1) to one
// displayable color per pixel by averaging the samples per channel.
func (fb *FrameBuffer) resolveRows(y0, y1 uint32) {
	sc := fb.sampleCount
	for y := y0; y < y1; y++ {
		for x := uint32(0); x < fb.width; x++ {
			base := (y*fb.width + x) * sc

			var r, g, b, a uint32
			for s := uint32(0); s < sc; s++ {
				c := fb.samples[base+s]
				r += c & 0xff
				g += (c >> 8) & 0xff
				b += (c >> 16) & 0xff
				a += (c >> 24) & 0xff
			}

			offset := (y*fb.width + x) * 4
			fb.pixels[offset] = byte(r >> fb.sampleCountLog2)
			fb.pixels[offset+1] = byte(g >> fb.sampleCountLog2)
			fb.pixels[offset+2] = byte(b >> fb.sampleCountLog2)
			fb.pixels[offset+3] = byte(a >> fb.sampleCountLog2)
		}
	}
}

// Resolve reduces the whole multisample buffer. The renderer calls the
// row-ranged variant from its worker pool; this convenience entry point runs
// the reduction serially.
func (fb *FrameBuffer) Resolve() {
	fb.resolveRows(0, fb.height)
}

// packColor converts a linear RGB color to packed RGBA8 with saturation.
func packColor(c types.Vec3) uint32 {
	return uint32(packChannel(c[0])) |
		uint32(packChannel(c[1]))<<8 |
		uint32(packChannel(c[2]))<<16 |
		0xff<<24
}

func packChannel(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
