package types

import (
	"github.com/chewxy/math32"
)

// Epsilon used for float comparisons in this package.
const floatCmpEpsilon float32 = 1e-7

// A 4x4 matrix stored in column-major order.
type Mat4 [16]float32

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Multiply two 4x4 matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * m2[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Multiply a 4x4 matrix with a 4 component vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]*v[3],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]*v[3],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]*v[3],
		m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]*v[3],
	}
}

// Multiply a 3 component vector by the top-left 3x3 block of the matrix.
// Used for transforming directions (normals) without translation.
func (m Mat4) Mul3x1(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	out := Ident4()
	out[12] = v[0]
	out[13] = v[1]
	out[14] = v[2]
	return out
}

// Create a perspective projection matrix. The fov parameter is expressed in
// degrees.
func Perspective4(fov, aspect, near, far float32) Mat4 {
	f := 1.0 / math32.Tan(fov*math32.Pi/360.0)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), -1,
		0, 0, (2 * far * near) / (near - far), 0,
	}
}

// Create a view matrix looking from eye towards center.
func LookAtV(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up.Normalize()).Normalize()
	u := s.Cross(f)

	m := Mat4{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		0, 0, 0, 1,
	}
	return m.Mul4(Translate4(Vec3{-eye[0], -eye[1], -eye[2]}))
}

// Create a raster (viewport) matrix mapping NDC coordinates to a wxh pixel
// grid with Y growing downwards. Z passes through unchanged.
func Viewport4(width, height float32) Mat4 {
	return Mat4{
		width * 0.5, 0, 0, 0,
		0, -height * 0.5, 0, 0,
		0, 0, 1, 0,
		width * 0.5, height * 0.5, 0, 1,
	}
}
