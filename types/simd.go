package types

import "github.com/chewxy/math32"

// The 4-wide packed types below stand in for SSE registers. Throughout the
// rasterizer lane i holds pixel i of a 2x2 pixel block in row-major order:
// lane 0 = (x, y), lane 1 = (x+1, y), lane 2 = (x, y+1), lane 3 = (x+1, y+1).

// Four packed float32 lanes.
type Float4 [4]float32

// Four packed boolean lanes.
type Bool4 [4]bool

// Broadcast a scalar to all four lanes.
func Splat4(s float32) Float4 {
	return Float4{s, s, s, s}
}

// Add lanes pairwise.
func (a Float4) Add(b Float4) Float4 {
	return Float4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// Subtract lanes pairwise.
func (a Float4) Sub(b Float4) Float4 {
	return Float4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

// Multiply lanes pairwise.
func (a Float4) Mul(b Float4) Float4 {
	return Float4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Multiply all lanes with a scalar.
func (a Float4) Scale(s float32) Float4 {
	return Float4{a[0] * s, a[1] * s, a[2] * s, a[3] * s}
}

// Add a scalar to all lanes.
func (a Float4) AddScalar(s float32) Float4 {
	return Float4{a[0] + s, a[1] + s, a[2] + s, a[3] + s}
}

// Compute the per-lane reciprocal.
func (a Float4) Rcp() Float4 {
	return Float4{1.0 / a[0], 1.0 / a[1], 1.0 / a[2], 1.0 / a[3]}
}

// Compute the per-lane reciprocal square root.
func (a Float4) Rsqrt() Float4 {
	return Float4{
		1.0 / math32.Sqrt(a[0]),
		1.0 / math32.Sqrt(a[1]),
		1.0 / math32.Sqrt(a[2]),
		1.0 / math32.Sqrt(a[3]),
	}
}

// Compare lanes pairwise for a < b.
func (a Float4) Less(b Float4) Bool4 {
	return Bool4{a[0] < b[0], a[1] < b[1], a[2] < b[2], a[3] < b[3]}
}

// Pick lanes from a where the mask is set, from b elsewhere.
func Select4(mask Bool4, a, b Float4) Float4 {
	out := b
	for i := 0; i < 4; i++ {
		if mask[i] {
			out[i] = a[i]
		}
	}
	return out
}

// Four packed 2 component vectors.
type Vec2x4 struct {
	U, V Float4
}

// Broadcast a Vec2 to all four lanes.
func SplatVec2(v Vec2) Vec2x4 {
	return Vec2x4{Splat4(v[0]), Splat4(v[1])}
}

// Extract lane i as a Vec2.
func (v Vec2x4) Lane(i int) Vec2 {
	return Vec2{v.U[i], v.V[i]}
}

// Add lanes pairwise.
func (v Vec2x4) Add(v2 Vec2x4) Vec2x4 {
	return Vec2x4{v.U.Add(v2.U), v.V.Add(v2.V)}
}

// Multiply each lane vector with the matching weight lane.
func (v Vec2x4) MulWeight(w Float4) Vec2x4 {
	return Vec2x4{v.U.Mul(w), v.V.Mul(w)}
}

// Four packed 3 component vectors.
type Vec3x4 struct {
	X, Y, Z Float4
}

// Broadcast a Vec3 to all four lanes.
func SplatVec3(v Vec3) Vec3x4 {
	return Vec3x4{Splat4(v[0]), Splat4(v[1]), Splat4(v[2])}
}

// Extract lane i as a Vec3.
func (v Vec3x4) Lane(i int) Vec3 {
	return Vec3{v.X[i], v.Y[i], v.Z[i]}
}

// Store a Vec3 into lane i.
func (v *Vec3x4) SetLane(i int, v2 Vec3) {
	v.X[i] = v2[0]
	v.Y[i] = v2[1]
	v.Z[i] = v2[2]
}

// Add lanes pairwise.
func (v Vec3x4) Add(v2 Vec3x4) Vec3x4 {
	return Vec3x4{v.X.Add(v2.X), v.Y.Add(v2.Y), v.Z.Add(v2.Z)}
}

// Subtract lanes pairwise.
func (v Vec3x4) Sub(v2 Vec3x4) Vec3x4 {
	return Vec3x4{v.X.Sub(v2.X), v.Y.Sub(v2.Y), v.Z.Sub(v2.Z)}
}

// Multiply lanes pairwise.
func (v Vec3x4) Mul(v2 Vec3x4) Vec3x4 {
	return Vec3x4{v.X.Mul(v2.X), v.Y.Mul(v2.Y), v.Z.Mul(v2.Z)}
}

// Multiply each lane vector with the matching weight lane.
func (v Vec3x4) MulWeight(w Float4) Vec3x4 {
	return Vec3x4{v.X.Mul(w), v.Y.Mul(w), v.Z.Mul(w)}
}

// Multiply all lanes with a scalar.
func (v Vec3x4) Scale(s float32) Vec3x4 {
	return Vec3x4{v.X.Scale(s), v.Y.Scale(s), v.Z.Scale(s)}
}

// Calculate the per-lane dot product of 2 packed vectors.
func (v Vec3x4) Dot(v2 Vec3x4) Float4 {
	return v.X.Mul(v2.X).Add(v.Y.Mul(v2.Y)).Add(v.Z.Mul(v2.Z))
}

// Normalize each lane vector.
func (v Vec3x4) Normalize() Vec3x4 {
	w := v.Dot(v).Rsqrt()
	return v.MulWeight(w)
}
