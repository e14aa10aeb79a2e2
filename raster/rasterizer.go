package raster

import (
	"github.com/meridian-render/meridian/types"
)

// binPartition bins every triangle of a partition into the tiles its
// bounding box overlaps. Small triangles (bounding box spanning fewer than 2
// tiles in both axes) are registered as trivial-accept references without
// any corner test: the tile is assumed covered. This over-covers whenever
// the triangle does not actually fill the tile; it is a deliberate fast-path
// approximation and can be turned off with Options.ExactSmallTriangles,
// which routes small triangles through the fine per-sample test instead.
//
// Big triangles are classified per tile with the reject/accept corner tests;
// provably-outside tiles get no reference at all.
func (r *Renderer) binPartition(p *partition, g *tileGrid) {
	shift := g.tileSizeLog2 + subPixelBits

	for ti := range p.tris {
		tri := &p.tris[ti]

		minTx := clamp32(tri.minX>>shift, 0, g.tilesX-1)
		minTy := clamp32(tri.minY>>shift, 0, g.tilesY-1)
		maxTx := clamp32((tri.maxX-1)>>shift, minTx, g.tilesX-1)
		maxTy := clamp32((tri.maxY-1)>>shift, minTy, g.tilesY-1)

		small := maxTx-minTx < 2 && maxTy-minTy < 2

		for ty := minTy; ty <= maxTy; ty++ {
			for tx := minTx; tx <= maxTx; tx++ {
				tile := g.tileAt(tx, ty)

				if small {
					tile.refs[p.id] = append(tile.refs[p.id], TriangleRef{
						triIdx:  int32(ti),
						trivial: !r.opts.ExactSmallTriangles,
					})
					continue
				}

				flags, rejected := tri.classifyBlock(
					tile.minX<<subPixelBits, tile.minY<<subPixelBits,
					tile.maxX<<subPixelBits, tile.maxY<<subPixelBits, 0)
				if rejected {
					continue
				}
				tile.refs[p.id] = append(tile.refs[p.id], TriangleRef{
					triIdx:      int32(ti),
					acceptFlags: flags,
					big:         true,
					trivial:     flags == 0x7,
				})
			}
		}
	}
}

// rasterizeTile walks every triangle reference of a tile and emits quad
// fragments. References were classified at binning time: trivially accepted
// triangles cover the whole tile without a per-pixel test, big partially
// covering triangles descend hierarchically when enabled, everything else
// takes the fine per-sample path.
func (r *Renderer) rasterizeTile(t *Tile) {
	for pi := range r.partitions {
		p := &r.partitions[pi]
		for _, ref := range t.refs[pi] {
			tri := &p.tris[ref.triIdx]
			switch {
			case ref.trivial:
				r.rasterizeTrivial(t, tri, p.id, t.minX, t.minY, t.maxX, t.maxY)
			case ref.big && r.opts.Hierarchical:
				r.rasterizeCoarse(t, tri, p.id, ref.acceptFlags)
			default:
				r.rasterizeFine(t, tri, p.id, ref.acceptFlags, t.minX, t.minY, t.maxX, t.maxY)
			}
		}
	}
}

// rasterizeTrivial emits fully covered quad fragments for every 2x2 block of
// the pixel region [x0,x1)x[y0,y1). Barycentrics are still evaluated per
// quad since shading needs them; no edge or coverage test is run.
func (r *Renderer) rasterizeTrivial(t *Tile, tri *RasterTriangle, coreID int32, x0, y0, x1, y1 int32) {
	for py := y0; py < y1; py += 2 {
		for px := x0; px < x1; px += 2 {
			l0, l1 := tri.quadLambdas(px, py)
			t.emit(QuadFragment{
				Lambda0:   l0,
				Lambda1:   l1,
				Coverage:  r.fullMask,
				X:         uint16(px),
				Y:         uint16(py),
				VID0:      tri.I0,
				VID1:      tri.I1,
				VID2:      tri.I2,
				CoreID:    coreID,
				TextureID: tri.TextureID,
			})
		}
	}
}

// rasterizeCoarse descends from tile granularity towards 2x2 blocks,
// re-running the reject/accept corner tests per sub-block. Fully accepted
// blocks are emitted wholesale, rejected ones are dropped, and the remainder
// is subdivided until the fine test takes over at quad granularity. The
// amortization only pays off for triangles much larger than a quad, which is
// exactly the set binned as "big".
func (r *Renderer) rasterizeCoarse(t *Tile, tri *RasterTriangle, coreID int32, acceptFlags uint8) {
	r.coarseBlock(t, tri, coreID, t.minX, t.minY, int32(1)<<r.grid.tileSizeLog2, acceptFlags)
}

func (r *Renderer) coarseBlock(t *Tile, tri *RasterTriangle, coreID int32, x0, y0, size int32, acceptFlags uint8) {
	if size == 2 {
		r.rasterizeFine(t, tri, coreID, acceptFlags, x0, y0, min32(x0+2, t.maxX), min32(y0+2, t.maxY))
		return
	}

	half := size >> 1
	for cy := int32(0); cy < 2; cy++ {
		for cx := int32(0); cx < 2; cx++ {
			bx0 := x0 + cx*half
			by0 := y0 + cy*half
			bx1 := min32(bx0+half, t.maxX)
			by1 := min32(by0+half, t.maxY)
			if bx0 >= bx1 || by0 >= by1 {
				continue
			}

			flags, rejected := tri.classifyBlock(
				bx0<<subPixelBits, by0<<subPixelBits,
				bx1<<subPixelBits, by1<<subPixelBits, acceptFlags)
			if rejected {
				continue
			}
			if flags == 0x7 {
				r.rasterizeTrivial(t, tri, coreID, bx0, by0, bx1, by1)
				continue
			}
			r.coarseBlock(t, tri, coreID, bx0, by0, half, flags)
		}
	}
}

// rasterizeFine evaluates the edge functions at every sample position of
// every quad in the pixel region [x0,x1)x[y0,y1), intersected with the
// triangle's bounding box. Edges marked in acceptFlags were proven to pass
// everywhere in the region at classification time and are skipped here.
func (r *Renderer) rasterizeFine(t *Tile, tri *RasterTriangle, coreID int32, acceptFlags uint8, x0, y0, x1, y1 int32) {
	// Quads are anchored at even pixel coordinates; align the start down
	// so blocks line up across tiles.
	px0 := max32(x0, (tri.minX>>subPixelBits)) &^ 1
	py0 := max32(y0, (tri.minY>>subPixelBits)) &^ 1
	px1 := min32(x1, (tri.maxX>>subPixelBits)+1)
	py1 := min32(y1, (tri.maxY>>subPixelBits)+1)

	offsets := sampleOffsets[r.state.SampleCountLog2]

	for py := py0; py < py1; py += 2 {
		for px := px0; px < px1; px += 2 {
			var coverage CoverageMask
			for s, off := range offsets {
				var lanes types.Bool4
				anySet := false
				for lane := int32(0); lane < 4; lane++ {
					sx := (px+(lane&1))<<subPixelBits + off[0]
					sy := (py+(lane>>1))<<subPixelBits + off[1]

					inside := true
					for e := 0; e < 3; e++ {
						if acceptFlags&(1<<e) != 0 {
							continue
						}
						edge := &tri.edges[e]
						if !edge.covered(edge.eval(sx, sy)) {
							inside = false
							break
						}
					}
					if inside {
						lanes[lane] = true
						anySet = true
					}
				}
				if anySet {
					coverage.SetLanes(lanes, uint32(s))
				}
			}

			if coverage.Merge() == 0 {
				continue
			}

			l0, l1 := tri.quadLambdas(px, py)
			t.emit(QuadFragment{
				Lambda0:   l0,
				Lambda1:   l1,
				Coverage:  coverage,
				X:         uint16(px),
				Y:         uint16(py),
				VID0:      tri.I0,
				VID1:      tri.I1,
				VID2:      tri.I2,
				CoreID:    coreID,
				TextureID: tri.TextureID,
			})
		}
	}
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
