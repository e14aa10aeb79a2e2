package raster

// A reference to a triangle binned to a tile. The triangle index addresses
// the RasterTriangle array of the partition that produced the reference;
// references never cross partitions.
type TriangleRef struct {
	triIdx int32

	// Per-edge trivial accept flags established at binning time (bit i =
	// edge i passes everywhere in the tile).
	acceptFlags uint8

	// Big triangles go through the coarse/fine corner-test machinery;
	// small ones are binned unconditionally.
	big bool

	// The whole tile is covered; no per-pixel test needed.
	trivial bool
}

// A fixed size square screen region. Triangle references are segregated per
// partition so that binning workers never contend; the fragment and shading
// result lists are owned by exactly one worker during a phase.
type Tile struct {
	id int32

	// Pixel bounds, half-open.
	minX, minY, maxX, maxY int32

	// Per-partition triangle reference lists, repopulated every draw call.
	refs [][]TriangleRef

	// Fragment output list and the matching shading results, indexed by
	// QuadFragment.IntraTileIdx.
	frags  []QuadFragment
	shaded [][4]uint32
}

// reset clears the per-draw lists without releasing their storage.
func (t *Tile) reset() {
	for i := range t.refs {
		t.refs[i] = t.refs[i][:0]
	}
	t.frags = t.frags[:0]
	t.shaded = t.shaded[:0]
}

// emit appends a quad fragment, assigning its intra-tile slot.
func (t *Tile) emit(frag QuadFragment) {
	frag.TileID = t.id
	frag.IntraTileIdx = uint32(len(t.frags))
	t.frags = append(t.frags, frag)
}

// A fixed partition of the screen into square tiles. Created at
// initialization and on resize; never mutated during a draw call except for
// the per-tile lists.
type tileGrid struct {
	tileSizeLog2 uint32
	width        int32
	height       int32
	tilesX       int32
	tilesY       int32
	tiles        []Tile
}

func newTileGrid(width, height, partitions int, tileSizeLog2 uint32) *tileGrid {
	tileSize := int32(1) << tileSizeLog2
	g := &tileGrid{
		tileSizeLog2: tileSizeLog2,
		width:        int32(width),
		height:       int32(height),
		tilesX:       (int32(width) + tileSize - 1) >> tileSizeLog2,
		tilesY:       (int32(height) + tileSize - 1) >> tileSizeLog2,
	}

	g.tiles = make([]Tile, g.tilesX*g.tilesY)
	for ty := int32(0); ty < g.tilesY; ty++ {
		for tx := int32(0); tx < g.tilesX; tx++ {
			id := ty*g.tilesX + tx
			g.tiles[id] = Tile{
				id:   id,
				minX: tx << tileSizeLog2,
				minY: ty << tileSizeLog2,
				maxX: min32((tx+1)<<tileSizeLog2, g.width),
				maxY: min32((ty+1)<<tileSizeLog2, g.height),
				refs: make([][]TriangleRef, partitions),
			}
		}
	}
	return g
}

// tileAt returns the tile at grid coordinates (tx, ty).
func (g *tileGrid) tileAt(tx, ty int32) *Tile {
	return &g.tiles[ty*g.tilesX+tx]
}

// reset clears all per-draw tile state.
func (g *tileGrid) reset() {
	for i := range g.tiles {
		g.tiles[i].reset()
	}
}
