package raster

import (
	"github.com/chewxy/math32"
	"github.com/meridian-render/meridian/types"
)

// An edge function E(p) = a*p.x + b*p.y + c in 28.4 fixed point, zero along
// one triangle edge and positive on the interior side. topLeft caches the
// fill rule classification of the edge.
type edgeFn struct {
	a, b    int32
	c       int64
	topLeft bool

	// 2-bit corner selectors: bit 0 picks max x over min x, bit 1 picks
	// max y over min y. The reject corner maximizes E over a block, the
	// accept corner minimizes it.
	rejectCorner uint8
	acceptCorner uint8
}

// Evaluate the edge function at a fixed point coordinate.
func (e *edgeFn) eval(x, y int32) int64 {
	return int64(e.a)*int64(x) + int64(e.b)*int64(y) + e.c
}

// Evaluate the edge function at the selected corner of a fixed point block.
func (e *edgeFn) evalCorner(sel uint8, x0, y0, x1, y1 int32) int64 {
	x := x0
	if sel&1 != 0 {
		x = x1
	}
	y := y0
	if sel&2 != 0 {
		y = y1
	}
	return e.eval(x, y)
}

// covered applies the half-open top-left fill rule: points strictly inside
// the edge are covered, points exactly on it only when the edge is a top or
// left edge.
func (e *edgeFn) covered(v int64) bool {
	return v > 0 || (v == 0 && e.topLeft)
}

// makeEdgeFn builds the edge function for the directed edge a -> b of a
// positive-area triangle. With y growing downwards a "top" edge is an exactly
// horizontal edge running towards +x and a "left" edge runs towards -y.
func makeEdgeFn(ax, ay, bx, by int32) edgeFn {
	e := edgeFn{
		a:       ay - by,
		b:       bx - ax,
		topLeft: (ay == by && bx > ax) || by < ay,
	}
	e.c = -int64(e.a)*int64(ax) - int64(e.b)*int64(ay)

	if e.a > 0 {
		e.rejectCorner |= 1
	} else {
		e.acceptCorner |= 1
	}
	if e.b > 0 {
		e.rejectCorner |= 2
	} else {
		e.acceptCorner |= 2
	}
	return e
}

// A screen space triangle prepared for rasterization: 28.4 fixed point
// vertices, the three edge functions with their corner selectors, and the
// partition-local ids required to recover vertex attributes. Immutable once
// constructed by the clipper.
type RasterTriangle struct {
	x0, y0, x1, y1, x2, y2 int32

	// edges[0] = v1->v2, edges[1] = v2->v0, edges[2] = v0->v1, so that
	// edge i is the one opposite vertex i and lambda_i = E_i / 2A.
	edges [3]edgeFn

	// Reciprocal of twice the signed area in fixed point units.
	invArea2 float32

	// Fixed point bounding box.
	minX, minY, maxX, maxY int32

	// Partition-local vertex ids and the triangle's texture slot.
	I0, I1, I2 int32
	TextureID  int32

	// The input winding was clockwise and got swapped during setup. The
	// clipper drops flipped triangles when backface culling is enabled.
	flipped bool
}

// makeRasterTriangle converts three screen space vertices (post perspective
// divide and raster transform) into a RasterTriangle. It normalizes the
// winding so the signed area is positive and reports false for degenerate
// (zero fixed point area) triangles, which must never reach the rasterizer.
func makeRasterTriangle(p0, p1, p2 types.Vec4, i0, i1, i2, textureID int32) (RasterTriangle, bool) {
	t := RasterTriangle{
		x0: toFixed(p0[0]), y0: toFixed(p0[1]),
		x1: toFixed(p1[0]), y1: toFixed(p1[1]),
		x2: toFixed(p2[0]), y2: toFixed(p2[1]),
		I0: i0, I1: i1, I2: i2,
		TextureID: textureID,
	}

	area2 := int64(t.x1-t.x0)*int64(t.y2-t.y0) - int64(t.y1-t.y0)*int64(t.x2-t.x0)
	if area2 == 0 {
		return t, false
	}
	if area2 < 0 {
		t.x1, t.y1, t.x2, t.y2 = t.x2, t.y2, t.x1, t.y1
		t.I1, t.I2 = t.I2, t.I1
		area2 = -area2
		t.flipped = true
	}

	t.edges[0] = makeEdgeFn(t.x1, t.y1, t.x2, t.y2)
	t.edges[1] = makeEdgeFn(t.x2, t.y2, t.x0, t.y0)
	t.edges[2] = makeEdgeFn(t.x0, t.y0, t.x1, t.y1)
	t.invArea2 = 1.0 / float32(area2)

	t.minX = min32(t.x0, min32(t.x1, t.x2))
	t.minY = min32(t.y0, min32(t.y1, t.y2))
	t.maxX = max32(t.x0, max32(t.x1, t.x2))
	t.maxY = max32(t.y0, max32(t.y1, t.y2))
	return t, true
}

// classifyBlock runs the reject/accept corner tests against a fixed point
// block [x0,x1]x[y0,y1]. Edges already present in acceptFlags are skipped.
// It returns the widened accept flags and whether the block is provably
// outside the triangle. The accept test is strict (E > 0 at the minimizing
// corner) so trivially accepted coverage agrees bit for bit with the fine
// per-sample test.
func (t *RasterTriangle) classifyBlock(x0, y0, x1, y1 int32, acceptFlags uint8) (flags uint8, rejected bool) {
	flags = acceptFlags
	for i := 0; i < 3; i++ {
		if flags&(1<<i) != 0 {
			continue
		}
		e := &t.edges[i]
		if e.evalCorner(e.rejectCorner, x0, y0, x1, y1) < 0 {
			return flags, true
		}
		if e.evalCorner(e.acceptCorner, x0, y0, x1, y1) > 0 {
			flags |= 1 << i
		}
	}
	return flags, false
}

// quadLambdas evaluates the barycentric weights of vertices 0 and 1 at the
// four pixel centers of the 2x2 block anchored at pixel (px, py).
func (t *RasterTriangle) quadLambdas(px, py int32) (l0, l1 types.Float4) {
	for lane := int32(0); lane < 4; lane++ {
		x := (px+(lane&1))<<subPixelBits + halfPixel
		y := (py+(lane>>1))<<subPixelBits + halfPixel
		l0[lane] = float32(t.edges[0].eval(x, y)) * t.invArea2
		l1[lane] = float32(t.edges[1].eval(x, y)) * t.invArea2
	}
	return l0, l1
}

// Convert a float screen coordinate to 28.4 fixed point.
func toFixed(v float32) int32 {
	return int32(math32.Round(v * subPixelStep))
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
