package raster

import (
	"github.com/meridian-render/meridian/scene"
)

// Points with w below this value are clipped away; it bounds InvW and keeps
// the perspective divide finite.
const wClipEpsilon = 1e-5

// A worker-owned slice of the per-draw geometry: every worker clips its own
// range of the index buffer into these buffers, so no locking is needed
// anywhere in the clipping or binning phases. Buffers are cleared, not
// reallocated, between draw calls.
type partition struct {
	id int32

	verts []ProjectedVertex
	tris  []RasterTriangle

	// Scratch polygons for the clipper.
	polyA []ProjectedVertex
	polyB []ProjectedVertex
}

func (p *partition) reset() {
	p.verts = p.verts[:0]
	p.tris = p.tris[:0]
}

// lerpVertex interpolates the full vertex record at parameter t along the
// edge a -> b. InvW stays zero; it is assigned by the perspective divide.
func lerpVertex(a, b *ProjectedVertex, t float32) ProjectedVertex {
	return ProjectedVertex{
		ProjectedPos: a.ProjectedPos.Lerp(b.ProjectedPos, t),
		Position:     a.Position.Lerp(b.Position, t),
		Normal:       a.Normal.Lerp(b.Normal, t),
		UV:           a.UV.Lerp(b.UV, t),
	}
}

// clipW discards the polygon parts with w <= wClipEpsilon. Running this pass
// first guarantees a strictly positive w (and therefore InvW) for every
// vertex that reaches the divide.
func clipW(in, out []ProjectedVertex) []ProjectedVertex {
	out = out[:0]
	if len(in) == 0 {
		return out
	}

	prev := &in[len(in)-1]
	prevInside := prev.ProjectedPos[3] >= wClipEpsilon
	for i := range in {
		cur := &in[i]
		curInside := cur.ProjectedPos[3] >= wClipEpsilon

		if curInside != prevInside {
			t := (prev.ProjectedPos[3] - wClipEpsilon) / (prev.ProjectedPos[3] - cur.ProjectedPos[3])
			out = append(out, lerpVertex(prev, cur, t))
		}
		if curInside {
			out = append(out, *cur)
		}

		prev = cur
		prevInside = curInside
	}
	return out
}

// clipAxis clips the polygon against the plane factor*component <= w using
// the Sutherland-Hodgman walk. axis selects x, y or z; factor is +1 or -1
// for the two frustum planes of that axis.
func clipAxis(in, out []ProjectedVertex, factor float32, axis int) []ProjectedVertex {
	out = out[:0]
	if len(in) == 0 {
		return out
	}

	prev := &in[len(in)-1]
	prevDist := prev.ProjectedPos[3] - factor*prev.ProjectedPos[axis]
	for i := range in {
		cur := &in[i]
		curDist := cur.ProjectedPos[3] - factor*cur.ProjectedPos[axis]

		if (curDist >= 0) != (prevDist >= 0) {
			t := prevDist / (prevDist - curDist)
			out = append(out, lerpVertex(prev, cur, t))
		}
		if curDist >= 0 {
			out = append(out, *cur)
		}

		prev = cur
		prevDist = curDist
	}
	return out
}

// clipTriangle clips one clip space triangle against the w plane and the six
// frustum planes, returning the surviving polygon in partition scratch
// storage. The returned slice is valid until the next call.
func (p *partition) clipTriangle(v0, v1, v2 *ProjectedVertex) []ProjectedVertex {
	p.polyA = append(p.polyA[:0], *v0, *v1, *v2)

	poly := clipW(p.polyA, p.polyB)
	p.polyA, p.polyB = poly, p.polyA

	for axis := 0; axis < 3; axis++ {
		for _, factor := range [2]float32{1, -1} {
			if len(p.polyA) == 0 {
				return p.polyA
			}
			poly = clipAxis(p.polyA, p.polyB, factor, axis)
			p.polyA, p.polyB = poly, p.polyA
		}
	}
	return p.polyA
}

// clipPartition runs the clipping stage for the triangle range [start, end)
// of the mesh: frustum clip, perspective divide, raster transform and edge
// setup, filling the partition's vertex and triangle buffers. Degenerate and
// fully culled triangles are silently dropped.
func (r *Renderer) clipPartition(p *partition, mesh *scene.Mesh, vertOut []ProjectedVertex, start, end int) {
	maxX := int32(r.opts.FrameW) << subPixelBits
	maxY := int32(r.opts.FrameH) << subPixelBits

	for tri := start; tri < end; tri++ {
		v0 := &vertOut[mesh.Indices[tri*3]]
		v1 := &vertOut[mesh.Indices[tri*3+1]]
		v2 := &vertOut[mesh.Indices[tri*3+2]]

		poly := p.clipTriangle(v0, v1, v2)
		if len(poly) < 3 {
			continue
		}

		// Perspective divide and raster transform. This runs after the
		// clipper proper so every vertex here has w > wClipEpsilon.
		base := int32(len(p.verts))
		for i := range poly {
			vert := poly[i]
			invW := 1.0 / vert.ProjectedPos[3]
			ndc := vert.ProjectedPos.Mul(invW)
			ndc[3] = 1
			vert.ProjectedPos = r.state.Raster.Mul4x1(ndc)
			vert.InvW = invW
			p.verts = append(p.verts, vert)
		}

		// Fan triangulate the clipped polygon.
		texID := mesh.TextureID(tri)
		for i := int32(1); i < int32(len(poly))-1; i++ {
			rt, ok := makeRasterTriangle(
				p.verts[base].ProjectedPos,
				p.verts[base+i].ProjectedPos,
				p.verts[base+i+1].ProjectedPos,
				base, base+i, base+i+1, texID)
			if !ok {
				continue
			}
			if rt.flipped && r.opts.CullBackfaces {
				continue
			}
			if rt.maxX < 0 || rt.maxY < 0 || rt.minX >= maxX || rt.minY >= maxY {
				continue
			}
			p.tris = append(p.tris, rt)
		}
	}
}
