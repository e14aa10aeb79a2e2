package raster

import (
	"testing"

	"github.com/meridian-render/meridian/types"
)

func mustRasterTriangle(t *testing.T, p0, p1, p2 types.Vec4) RasterTriangle {
	t.Helper()
	tri, ok := makeRasterTriangle(p0, p1, p2, 0, 1, 2, -1)
	if !ok {
		t.Fatal("expected a valid raster triangle")
	}
	return tri
}

// referenceCovered is the brute-force oracle for pixel center coverage: all
// three edge functions pass at the center sample of pixel (px, py).
func referenceCovered(tri *RasterTriangle, px, py int32) bool {
	x := px<<subPixelBits + halfPixel
	y := py<<subPixelBits + halfPixel
	for e := 0; e < 3; e++ {
		edge := &tri.edges[e]
		if !edge.covered(edge.eval(x, y)) {
			return false
		}
	}
	return true
}

// Tiles that binning drops for a big triangle must not contain any covered
// pixel center.
func TestBinningSoundness(t *testing.T) {
	r, err := New(Options{FrameW: 64, FrameH: 64, TileSizeLog2: 3, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}

	tri := mustRasterTriangle(t,
		types.Vec4{0, 0, 0, 1}, types.Vec4{64, 0, 0, 1}, types.Vec4{0, 64, 0, 1})

	p := &r.partitions[0]
	p.tris = append(p.tris, tri)
	r.grid.reset()
	r.binPartition(p, r.grid)

	var binned, rejected int
	for ti := range r.grid.tiles {
		tile := &r.grid.tiles[ti]
		if len(tile.refs[0]) > 0 {
			if ref := tile.refs[0][0]; !ref.big {
				t.Fatalf("expected tile %d reference to be classified big", tile.id)
			}
			binned++
			continue
		}

		rejected++
		for py := tile.minY; py < tile.maxY; py++ {
			for px := tile.minX; px < tile.maxX; px++ {
				if referenceCovered(&tri, px, py) {
					t.Fatalf("tile %d was rejected but covers pixel (%d, %d)", tile.id, px, py)
				}
			}
		}
	}

	if binned == 0 || rejected == 0 {
		t.Fatalf("expected both binned and rejected tiles; got %d binned, %d rejected", binned, rejected)
	}
}

// collectCoverage reduces a tile's fragment list to a per-pixel-center
// coverage map for sample 0.
func collectCoverage(tile *Tile) map[[2]int32]bool {
	out := make(map[[2]int32]bool)
	for i := range tile.frags {
		frag := &tile.frags[i]
		for lane := uint32(0); lane < 4; lane++ {
			if !frag.Coverage.Bit(lane) {
				continue
			}
			px := int32(frag.X) + int32(lane&1)
			py := int32(frag.Y) + int32(lane>>1)
			out[[2]int32{px, py}] = true
		}
	}
	return out
}

func coverageEqual(a, b map[[2]int32]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// The trivial, coarse and fine paths must produce identical coverage for a
// tile the triangle fully covers.
func TestCoverageConservationFullTile(t *testing.T) {
	r, err := New(Options{FrameW: 64, FrameH: 64, TileSizeLog2: 3, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}

	// Strictly covers tile (0, 0) with room to spare on every edge.
	tri := mustRasterTriangle(t,
		types.Vec4{-16, -16, 0, 1}, types.Vec4{128, -16, 0, 1}, types.Vec4{-16, 128, 0, 1})

	tile := r.grid.tileAt(0, 0)

	flags, rejected := tri.classifyBlock(
		tile.minX<<subPixelBits, tile.minY<<subPixelBits,
		tile.maxX<<subPixelBits, tile.maxY<<subPixelBits, 0)
	if rejected || flags != 0x7 {
		t.Fatalf("expected the tile to be trivially accepted; got flags %03b, rejected %t", flags, rejected)
	}

	tile.reset()
	r.rasterizeTrivial(tile, &tri, 0, tile.minX, tile.minY, tile.maxX, tile.maxY)
	trivial := collectCoverage(tile)

	tile.reset()
	r.rasterizeCoarse(tile, &tri, 0, 0)
	coarse := collectCoverage(tile)

	tile.reset()
	r.rasterizeFine(tile, &tri, 0, 0, tile.minX, tile.minY, tile.maxX, tile.maxY)
	fine := collectCoverage(tile)

	if len(trivial) != 64 {
		t.Fatalf("expected 64 covered pixels from the trivial path; got %d", len(trivial))
	}
	if !coverageEqual(trivial, coarse) {
		t.Fatalf("expected coarse coverage to match trivial; got %d vs %d pixels", len(coarse), len(trivial))
	}
	if !coverageEqual(trivial, fine) {
		t.Fatalf("expected fine coverage to match trivial; got %d vs %d pixels", len(fine), len(trivial))
	}
}

// The coarse descent must agree with the fine test on a partially covered
// tile, and both must agree with the brute-force oracle.
func TestCoverageConservationPartialTile(t *testing.T) {
	r, err := New(Options{FrameW: 64, FrameH: 64, TileSizeLog2: 3, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}

	tri := mustRasterTriangle(t,
		types.Vec4{0, 0, 0, 1}, types.Vec4{64, 0, 0, 1}, types.Vec4{0, 64, 0, 1})

	// The hypotenuse runs through this tile.
	tile := r.grid.tileAt(4, 3)

	flags, rejected := tri.classifyBlock(
		tile.minX<<subPixelBits, tile.minY<<subPixelBits,
		tile.maxX<<subPixelBits, tile.maxY<<subPixelBits, 0)
	if rejected || flags == 0x7 {
		t.Fatalf("expected a partially covered tile; got flags %03b, rejected %t", flags, rejected)
	}

	tile.reset()
	r.rasterizeCoarse(tile, &tri, 0, flags)
	coarse := collectCoverage(tile)

	tile.reset()
	r.rasterizeFine(tile, &tri, 0, flags, tile.minX, tile.minY, tile.maxX, tile.maxY)
	fine := collectCoverage(tile)

	if !coverageEqual(coarse, fine) {
		t.Fatalf("expected coarse and fine coverage to match; got %d vs %d pixels", len(coarse), len(fine))
	}
	if len(fine) == 0 || len(fine) == 64 {
		t.Fatalf("expected partial tile coverage; got %d pixels", len(fine))
	}

	for py := tile.minY; py < tile.maxY; py++ {
		for px := tile.minX; px < tile.maxX; px++ {
			if fine[[2]int32{px, py}] != referenceCovered(&tri, px, py) {
				t.Fatalf("expected pixel (%d, %d) coverage to match the oracle", px, py)
			}
		}
	}
}

// Two triangles sharing an edge must cover every pixel of their union exactly
// once.
func TestFillRuleIdempotence(t *testing.T) {
	r, err := New(Options{FrameW: 16, FrameH: 16, TileSizeLog2: 4, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}

	// A square split along its diagonal.
	t1 := mustRasterTriangle(t,
		types.Vec4{0, 0, 0, 1}, types.Vec4{16, 0, 0, 1}, types.Vec4{16, 16, 0, 1})
	t2 := mustRasterTriangle(t,
		types.Vec4{0, 0, 0, 1}, types.Vec4{16, 16, 0, 1}, types.Vec4{0, 16, 0, 1})

	tile := r.grid.tileAt(0, 0)
	tile.reset()
	r.rasterizeFine(tile, &t1, 0, 0, tile.minX, tile.minY, tile.maxX, tile.maxY)
	r.rasterizeFine(tile, &t2, 0, 0, tile.minX, tile.minY, tile.maxX, tile.maxY)

	counts := make(map[[2]int32]int)
	for i := range tile.frags {
		frag := &tile.frags[i]
		for lane := uint32(0); lane < 4; lane++ {
			if frag.Coverage.Bit(lane) {
				counts[[2]int32{int32(frag.X) + int32(lane&1), int32(frag.Y) + int32(lane>>1)}]++
			}
		}
	}

	for py := int32(0); py < 16; py++ {
		for px := int32(0); px < 16; px++ {
			if c := counts[[2]int32{px, py}]; c != 1 {
				t.Fatalf("expected pixel (%d, %d) to be covered exactly once; got %d", px, py, c)
			}
		}
	}
}

// MSAA sample positions must stay inside their pixel footprint so coverage
// never leaks across pixels.
func TestSampleOffsetsInPixelFootprint(t *testing.T) {
	for log2, offsets := range sampleOffsets {
		if len(offsets) != 1<<log2 {
			t.Fatalf("expected %d offsets for log2 %d; got %d", 1<<log2, log2, len(offsets))
		}
		for s, off := range offsets {
			if off[0] < 0 || off[0] >= subPixelStep || off[1] < 0 || off[1] >= subPixelStep {
				t.Fatalf("expected sample %d of pattern %d inside the pixel; got (%d, %d)", s, log2, off[0], off[1])
			}
		}
	}
}
