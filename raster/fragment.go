package raster

import (
	"github.com/meridian-render/meridian/types"
)

// The output of the vertex shading stage for a single vertex. ProjectedPos
// holds the homogeneous clip space position until the perspective divide,
// after which it holds screen space coordinates with z in NDC units. InvW is
// assigned during the divide and is immutable afterwards; it is strictly
// positive for any vertex that survived clipping.
type ProjectedVertex struct {
	ProjectedPos types.Vec4
	InvW         float32

	// Interpolation attributes.
	Position types.Vec3
	Normal   types.Vec3
	UV       types.Vec2
}

// CoverageMask records which (pixel lane, sample) pairs of a quad fragment
// are inside the triangle. Bit sampleID<<2|lane corresponds to sample
// sampleID of lane "lane"; capacity is 32 samples per pixel.
type CoverageMask struct {
	bits [4]uint32
}

// Set a single coverage bit.
func (m *CoverageMask) SetBit(i uint32) {
	m.bits[i>>5] |= 1 << (i & 31)
}

// Set the coverage bits of all four lanes for the given sample from a
// per-lane mask.
func (m *CoverageMask) SetLanes(mask types.Bool4, sampleID uint32) {
	offset := sampleID << 2
	for lane := uint32(0); lane < 4; lane++ {
		if mask[lane] {
			m.SetBit(offset + lane)
		}
	}
}

// Test a single coverage bit.
func (m *CoverageMask) Bit(i uint32) bool {
	return m.bits[i>>5]&(1<<(i&31)) != 0
}

// Merge all words; a zero result means the fragment covers nothing.
func (m *CoverageMask) Merge() uint32 {
	return m.bits[0] | m.bits[1] | m.bits[2] | m.bits[3]
}

// A quad fragment is the shading unit of the pipeline: one 2x2 pixel block
// processed as four packed lanes. Lambda0/Lambda1 hold the raw (screen
// space) barycentric weights of the triangle's first two vertices at the
// four pixel centers. The (CoreID, VID0..2) tuple recovers the source
// ProjectedVertex data from the owning worker partition, and the
// (TileID, IntraTileIdx) pair addresses the fragment's private slot in the
// tile shading result buffer.
type QuadFragment struct {
	Lambda0 types.Float4
	Lambda1 types.Float4

	Coverage CoverageMask

	// Top-left pixel of the 2x2 block.
	X, Y uint16

	VID0, VID1, VID2 int32
	CoreID           int32
	TextureID        int32

	TileID       int32
	IntraTileIdx uint32
}

// Interpolate computes perspective-correct position, normal and uv values
// for all four lanes. The raw weights are scaled by each vertex's reciprocal
// w and renormalized, which turns screen space barycentrics into
// perspective-correct ones.
func (f *QuadFragment) Interpolate(v0, v1, v2 *ProjectedVertex) (position, normal types.Vec3x4, uv types.Vec2x4) {
	b0 := f.Lambda0.Scale(v0.InvW)
	b1 := f.Lambda1.Scale(v1.InvW)
	b2 := types.Splat4(1).Sub(f.Lambda0).Sub(f.Lambda1).Scale(v2.InvW)

	invB := b0.Add(b1).Add(b2).Rcp()
	b0 = b0.Mul(invB)
	b1 = b1.Mul(invB)
	b2 = types.Splat4(1).Sub(b0).Sub(b1)

	position = types.SplatVec3(v0.Position).MulWeight(b0).
		Add(types.SplatVec3(v1.Position).MulWeight(b1)).
		Add(types.SplatVec3(v2.Position).MulWeight(b2))
	normal = types.SplatVec3(v0.Normal).MulWeight(b0).
		Add(types.SplatVec3(v1.Normal).MulWeight(b1)).
		Add(types.SplatVec3(v2.Normal).MulWeight(b2))
	uv = types.SplatVec2(v0.UV).MulWeight(b0).
		Add(types.SplatVec2(v1.UV).MulWeight(b1)).
		Add(types.SplatVec2(v2.UV).MulWeight(b2))
	return position, normal, uv
}

// Depths computes the screen space depth of all four lanes by linear
// interpolation of the post-divide z coordinates. Unlike attributes, depth
// interpolates linearly in screen space, so the raw weights are used as is.
func (f *QuadFragment) Depths(v0, v1, v2 *ProjectedVertex) types.Float4 {
	l2 := types.Splat4(1).Sub(f.Lambda0).Sub(f.Lambda1)
	return f.Lambda0.Scale(v0.ProjectedPos[2]).
		Add(f.Lambda1.Scale(v1.ProjectedPos[2])).
		Add(l2.Scale(v2.ProjectedPos[2]))
}

// A single-pixel fragment used by the scalar shading path.
type Fragment struct {
	Position types.Vec3
	Normal   types.Vec3
	UV       types.Vec2
	Depth    float32
}

// Interpolate fills the fragment attributes with perspective-correct values
// for the given barycentric weights.
func (f *Fragment) Interpolate(v0, v1, v2 *ProjectedVertex, b0, b1 float32) {
	b2 := (1 - b0 - b1) * v2.InvW
	b0 *= v0.InvW
	b1 *= v1.InvW
	invB := 1.0 / (b0 + b1 + b2)
	b0 *= invB
	b1 *= invB
	b2 = 1 - b0 - b1

	f.Position = v0.Position.Mul(b0).Add(v1.Position.Mul(b1)).Add(v2.Position.Mul(b2))
	f.Normal = v0.Normal.Mul(b0).Add(v1.Normal.Mul(b1)).Add(v2.Normal.Mul(b2))
	f.UV = v0.UV.Mul(b0).Add(v1.UV.Mul(b1)).Add(v2.UV.Mul(b2))
}
