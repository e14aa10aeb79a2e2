package raster

import (
	"github.com/meridian-render/meridian/texture"
	"github.com/meridian-render/meridian/types"
)

const (
	// Screen coordinates are converted to 28.4 fixed point before edge
	// setup; four fractional bits give 1/16 pixel snapping.
	subPixelBits = 4
	subPixelStep = 1 << subPixelBits

	// Half a pixel in fixed point units; pixel (x, y) is sampled at its
	// center (16x+8, 16y+8) in the single-sample case.
	halfPixel = subPixelStep / 2

	// Sample patterns are defined up to 8x MSAA. The coverage mask itself
	// has room for 32 samples per pixel.
	maxSampleCountLog2 = 3
)

// Per-sample offsets from the pixel's top-left corner in 1/16 pixel units,
// indexed by sampleCountLog2. The 4x and 8x patterns are the standard
// rotated-grid positions.
var sampleOffsets = [maxSampleCountLog2 + 1][][2]int32{
	{{8, 8}},
	{{4, 4}, {12, 12}},
	{{6, 2}, {14, 6}, {2, 10}, {10, 14}},
	{{9, 5}, {7, 11}, {13, 9}, {5, 3}, {3, 13}, {1, 7}, {11, 15}, {15, 1}},
}

// RenderState carries the per-draw-call render configuration: transform
// matrices, lighting, texture slots and the multisample mode. It is treated
// as immutable for the duration of a draw call; mutation is only allowed
// between draw calls through the Renderer configuration entry points.
type RenderState struct {
	ModelView     types.Mat4
	Proj          types.Mat4
	ModelViewProj types.Mat4

	// Maps NDC coordinates to screen pixels.
	Raster types.Mat4

	// Lighting inputs consumed by the pixel shaders.
	EyePos   types.Vec3
	LightDir types.Vec3

	// Texture slots addressed by the per-triangle texture id.
	TextureSlots []*texture.Texture

	SampleCountLog2 uint32
	SampleCount     uint32
}

// Get the texture bound to the given slot or nil when the slot is empty.
func (s *RenderState) Texture(slot int32) *texture.Texture {
	if slot < 0 || int(slot) >= len(s.TextureSlots) {
		return nil
	}
	return s.TextureSlots[slot]
}
