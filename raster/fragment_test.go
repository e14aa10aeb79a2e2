package raster

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/meridian-render/meridian/types"
)

func TestCoverageMaskBits(t *testing.T) {
	var m CoverageMask

	if m.Merge() != 0 {
		t.Fatalf("expected fresh mask to merge to 0; got %d", m.Merge())
	}

	// One bit per (sample, lane) pair across all words.
	for i := uint32(0); i < 128; i += 7 {
		m.SetBit(i)
	}
	for i := uint32(0); i < 128; i++ {
		expected := i%7 == 0
		if m.Bit(i) != expected {
			t.Fatalf("expected bit %d to be %t", i, expected)
		}
	}

	if m.Merge() == 0 {
		t.Fatal("expected non-zero merge after setting bits")
	}
}

func TestCoverageMaskSetLanes(t *testing.T) {
	var m CoverageMask
	m.SetLanes(types.Bool4{true, false, true, false}, 2)

	for lane := uint32(0); lane < 4; lane++ {
		expected := lane == 0 || lane == 2
		if m.Bit(2<<2|lane) != expected {
			t.Fatalf("expected sample 2 lane %d coverage to be %t", lane, expected)
		}
		if m.Bit(0<<2 | lane) {
			t.Fatalf("expected sample 0 lane %d to be clear", lane)
		}
	}
}

func TestPerspectiveCorrectInterpolation(t *testing.T) {
	// Three vertices at different depths with distinct attributes.
	v0 := ProjectedVertex{InvW: 1.0 / 2.0, Position: types.Vec3{1, 0, 0}, Normal: types.Vec3{1, 0, 0}, UV: types.Vec2{0, 0}}
	v1 := ProjectedVertex{InvW: 1.0 / 5.0, Position: types.Vec3{0, 1, 0}, Normal: types.Vec3{0, 1, 0}, UV: types.Vec2{1, 0}}
	v2 := ProjectedVertex{InvW: 1.0 / 9.0, Position: types.Vec3{0, 0, 1}, Normal: types.Vec3{0, 0, 1}, UV: types.Vec2{0, 1}}

	// Interpolate at the centroid.
	third := float32(1.0 / 3.0)
	frag := QuadFragment{
		Lambda0: types.Splat4(third),
		Lambda1: types.Splat4(third),
	}

	position, _, uv := frag.Interpolate(&v0, &v1, &v2)

	// Direct perspective-correct computation.
	b0 := third * v0.InvW
	b1 := third * v1.InvW
	b2 := third * v2.InvW
	invB := 1.0 / (b0 + b1 + b2)
	b0 *= invB
	b1 *= invB
	b2 = 1 - b0 - b1

	expPos := v0.Position.Mul(b0).Add(v1.Position.Mul(b1)).Add(v2.Position.Mul(b2))
	expUV := v0.UV.Mul(b0).Add(v1.UV.Mul(b1)).Add(v2.UV.Mul(b2))

	for lane := 0; lane < 4; lane++ {
		got := position.Lane(lane)
		for c := 0; c < 3; c++ {
			if !closeRel(got[c], expPos[c], 1e-5) {
				t.Fatalf("lane %d: expected position component %d to be %f; got %f", lane, c, expPos[c], got[c])
			}
		}
		gotUV := uv.Lane(lane)
		for c := 0; c < 2; c++ {
			if !closeRel(gotUV[c], expUV[c], 1e-5) {
				t.Fatalf("lane %d: expected uv component %d to be %f; got %f", lane, c, expUV[c], gotUV[c])
			}
		}
	}

	// The scalar path must agree with the packed one.
	var scalar Fragment
	scalar.Interpolate(&v0, &v1, &v2, third, third)
	for c := 0; c < 3; c++ {
		if !closeRel(scalar.Position[c], expPos[c], 1e-5) {
			t.Fatalf("expected scalar position component %d to be %f; got %f", c, expPos[c], scalar.Position[c])
		}
	}
}

func TestDepthsInterpolateLinearly(t *testing.T) {
	v0 := ProjectedVertex{ProjectedPos: types.Vec4{0, 0, 0.1, 1}, InvW: 1}
	v1 := ProjectedVertex{ProjectedPos: types.Vec4{0, 0, 0.5, 1}, InvW: 1}
	v2 := ProjectedVertex{ProjectedPos: types.Vec4{0, 0, 0.9, 1}, InvW: 1}

	frag := QuadFragment{
		Lambda0: types.Splat4(0.25),
		Lambda1: types.Splat4(0.25),
	}
	depths := frag.Depths(&v0, &v1, &v2)

	exp := 0.25*0.1 + 0.25*0.5 + 0.5*0.9
	for lane := 0; lane < 4; lane++ {
		if !closeRel(depths[lane], float32(exp), 1e-6) {
			t.Fatalf("expected lane %d depth to be %f; got %f", lane, exp, depths[lane])
		}
	}
}

func closeRel(got, exp, tol float32) bool {
	diff := math32.Abs(got - exp)
	scale := math32.Abs(exp)
	if scale < 1 {
		scale = 1
	}
	return diff <= tol*scale
}
