package raster

import (
	"runtime"
	"sync"
	"time"

	"github.com/meridian-render/meridian/log"
	"github.com/meridian-render/meridian/scene"
	"github.com/meridian-render/meridian/texture"
	"github.com/meridian-render/meridian/types"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Log2 of the square tile edge in pixels; 0 selects the default of 5
	// (32x32 tiles). Valid range is 2 to 7.
	TileSizeLog2 uint32

	// Log2 of the MSAA sample count per pixel, 0 to 3.
	SampleCountLog2 uint32

	// Worker pool size; 0 selects runtime.NumCPU().
	Workers int

	// Enable the hierarchical (coarse) descent for big triangles instead
	// of running the fine test over their whole tile-clipped bound.
	Hierarchical bool

	// Route small triangles through the fine per-sample test instead of
	// the trivial-accept fast path. See binPartition.
	ExactSmallTriangles bool

	// Drop clockwise triangles during clipping. When disabled they are
	// rendered two-sided with their winding normalized.
	CullBackfaces bool

	// Shader selection; nil selects DefaultVertexShader and
	// QuadLambertianShader.
	VertexShader VertexShader
	PixelShader  QuadPixelShader

	// Lighting inputs forwarded to the pixel shaders.
	EyePos   types.Vec3
	LightDir types.Vec3
}

// Renderer drives the five-phase tile-parallel pipeline. All configuration
// entry points (SetTransform, SetMSAAMode, Resize, ...) must only be called
// between draw calls; mutating the renderer while RenderMesh runs is
// undefined behavior and is deliberately not guarded at runtime.
type Renderer struct {
	opts  Options
	state RenderState

	fb         *FrameBuffer
	grid       *tileGrid
	partitions []partition

	// Vertex shader output for the current draw call, shared read-only by
	// all clipping workers.
	vertCache []ProjectedVertex

	// Coverage mask with every (lane, sample) bit set for the current
	// sample count; assigned wholesale to trivially accepted quads.
	fullMask CoverageMask

	vertexShader VertexShader
	pixelShader  QuadPixelShader

	logger log.Logger
	stats  FrameStats
}

// Create a new renderer.
func New(opts Options) (*Renderer, error) {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}
	if opts.TileSizeLog2 == 0 {
		opts.TileSizeLog2 = 5
	}
	if opts.TileSizeLog2 < 2 || opts.TileSizeLog2 > 7 {
		return nil, ErrInvalidTileSize
	}
	if opts.SampleCountLog2 > maxSampleCountLog2 {
		return nil, ErrInvalidSampleCount
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.VertexShader == nil {
		opts.VertexShader = DefaultVertexShader{}
	}
	if opts.PixelShader == nil {
		opts.PixelShader = QuadLambertianShader{}
	}

	r := &Renderer{
		opts:         opts,
		vertexShader: opts.VertexShader,
		pixelShader:  opts.PixelShader,
		partitions:   make([]partition, opts.Workers),
		logger:       log.New("raster"),
	}
	for i := range r.partitions {
		r.partitions[i].id = int32(i)
	}

	r.state = RenderState{
		ModelView:       types.Ident4(),
		Proj:            types.Ident4(),
		ModelViewProj:   types.Ident4(),
		Raster:          types.Viewport4(float32(opts.FrameW), float32(opts.FrameH)),
		EyePos:          opts.EyePos,
		LightDir:        opts.LightDir,
		SampleCountLog2: opts.SampleCountLog2,
		SampleCount:     1 << opts.SampleCountLog2,
	}
	r.fullMask = fullCoverageMask(r.state.SampleCount)

	r.fb = newFrameBuffer(opts.FrameW, opts.FrameH, opts.SampleCountLog2)
	r.grid = newTileGrid(int(opts.FrameW), int(opts.FrameH), opts.Workers, opts.TileSizeLog2)

	r.logger.Noticef("initialized %dx%d frame, %d workers, %dx%d tiles of %dpx, %dx MSAA",
		opts.FrameW, opts.FrameH, opts.Workers,
		r.grid.tilesX, r.grid.tilesY, 1<<opts.TileSizeLog2, r.state.SampleCount)

	return r, nil
}

// Get the frame buffer.
func (r *Renderer) FrameBuffer() *FrameBuffer {
	return r.fb
}

// Get the render state consumed by the pipeline phases.
func (r *Renderer) State() *RenderState {
	return &r.state
}

// Get render statistics for the last draw call.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Set the transform matrices for subsequent draw calls.
func (r *Renderer) SetTransform(modelView, proj, toRaster types.Mat4) {
	r.state.ModelView = modelView
	r.state.Proj = proj
	r.state.ModelViewProj = proj.Mul4(modelView)
	r.state.Raster = toRaster
}

// Set the eye position and light direction for subsequent draw calls.
func (r *Renderer) SetLighting(eyePos, lightDir types.Vec3) {
	r.state.EyePos = eyePos
	r.state.LightDir = lightDir
}

// Bind a texture to a slot, growing the slot table as needed.
func (r *Renderer) SetTexture(slot int32, tex *texture.Texture) {
	for int32(len(r.state.TextureSlots)) <= slot {
		r.state.TextureSlots = append(r.state.TextureSlots, nil)
	}
	r.state.TextureSlots[slot] = tex
}

// Change the MSAA mode. Rebuilds the multisample storage.
func (r *Renderer) SetMSAAMode(sampleCountLog2 uint32) error {
	if sampleCountLog2 > maxSampleCountLog2 {
		return ErrInvalidSampleCount
	}
	r.opts.SampleCountLog2 = sampleCountLog2
	r.state.SampleCountLog2 = sampleCountLog2
	r.state.SampleCount = 1 << sampleCountLog2
	r.fullMask = fullCoverageMask(r.state.SampleCount)
	r.fb = newFrameBuffer(r.opts.FrameW, r.opts.FrameH, sampleCountLog2)
	return nil
}

// Resize the frame. Rebuilds the frame buffer and the tile grid.
func (r *Renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return ErrInvalidFrameDims
	}
	r.opts.FrameW = width
	r.opts.FrameH = height
	r.state.Raster = types.Viewport4(float32(width), float32(height))
	r.fb = newFrameBuffer(width, height, r.opts.SampleCountLog2)
	r.grid = newTileGrid(int(width), int(height), r.opts.Workers, r.opts.TileSizeLog2)
	return nil
}

// Clear fills every sample of the frame buffer with the given color and
// resets the depth storage.
func (r *Renderer) Clear(color types.Vec3) {
	packed := packColor(color)
	r.forEachChunk(int(r.fb.height), func(_, y0, y1 int) {
		r.fb.clearRows(packed, uint32(y0), uint32(y1))
	})
}

// RenderMesh runs the full pipeline for one mesh draw call: vertex
// processing, clipping, tiled rasterization, fragment shading and the frame
// buffer update with multisample resolve. Every phase is a hard barrier; no
// phase overlaps the next.
func (r *Renderer) RenderMesh(mesh *scene.Mesh) error {
	if mesh == nil {
		return ErrMeshNotDefined
	}
	if mesh.VertexCount() == 0 || mesh.TriangleCount() == 0 {
		return nil
	}

	start := time.Now()

	// Phase 1: vertex processing.
	if cap(r.vertCache) < mesh.VertexCount() {
		r.vertCache = make([]ProjectedVertex, mesh.VertexCount())
	}
	vertOut := r.vertCache[:mesh.VertexCount()]
	r.forEachChunk(mesh.VertexCount(), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			r.vertexShader.Shade(&r.state, mesh.Positions[i], mesh.Normals[i], mesh.UVs[i], &vertOut[i])
		}
	})
	r.stats.VertexTime = time.Since(start)

	// Phase 2: clipping, perspective divide and raster triangle setup,
	// one partition per worker.
	mark := time.Now()
	for i := range r.partitions {
		r.partitions[i].reset()
	}
	r.forEachChunk(mesh.TriangleCount(), func(worker, lo, hi int) {
		r.clipPartition(&r.partitions[worker], mesh, vertOut, lo, hi)
	})
	r.stats.ClipTime = time.Since(mark)

	// Phase 3: tiled rasterization. Binning parallelizes over partitions,
	// the tile walk over tiles; both are contention-free by construction.
	mark = time.Now()
	r.grid.reset()
	r.forEachChunk(len(r.partitions), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			r.binPartition(&r.partitions[i], r.grid)
		}
	})
	r.stats.BinTime = time.Since(mark)

	mark = time.Now()
	r.forEachChunk(len(r.grid.tiles), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			r.rasterizeTile(&r.grid.tiles[i])
		}
	})
	r.stats.RasterTime = time.Since(mark)

	// Phase 4: fragment shading.
	mark = time.Now()
	r.forEachChunk(len(r.grid.tiles), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			r.shadeTile(&r.grid.tiles[i])
		}
	})
	r.stats.ShadeTime = time.Since(mark)

	// Phase 5: frame buffer update. Tiles map to disjoint pixel regions,
	// so scattering is parallel across tiles; fragment order within a
	// tile is preserved.
	mark = time.Now()
	r.forEachChunk(len(r.grid.tiles), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			r.scatterTile(&r.grid.tiles[i])
		}
	})
	r.stats.ScatterTime = time.Since(mark)

	mark = time.Now()
	r.forEachChunk(int(r.fb.height), func(_, y0, y1 int) {
		r.fb.resolveRows(uint32(y0), uint32(y1))
	})
	r.stats.ResolveTime = time.Since(mark)

	r.stats.RenderTime = time.Since(start)
	r.stats.Triangles = 0
	for i := range r.partitions {
		r.stats.Triangles += len(r.partitions[i].tris)
	}
	r.stats.Fragments = 0
	for i := range r.grid.tiles {
		r.stats.Fragments += len(r.grid.tiles[i].frags)
	}

	r.logger.Debugf("rendered %d triangles, %d fragments in %s",
		r.stats.Triangles, r.stats.Fragments, r.stats.RenderTime)

	return nil
}

// shadeTile interpolates and shades every quad fragment of a tile, packing
// the four lane colors into the tile's shading result buffer. Each fragment
// owns a unique slot so no synchronization is needed.
func (r *Renderer) shadeTile(t *Tile) {
	if cap(t.shaded) < len(t.frags) {
		t.shaded = make([][4]uint32, len(t.frags))
	}
	t.shaded = t.shaded[:len(t.frags)]

	for i := range t.frags {
		frag := &t.frags[i]
		p := &r.partitions[frag.CoreID]
		v0 := &p.verts[frag.VID0]
		v1 := &p.verts[frag.VID1]
		v2 := &p.verts[frag.VID2]

		position, normal, uv := frag.Interpolate(v0, v1, v2)
		color := r.pixelShader.Shade(frag, r.state.EyePos, r.state.LightDir, position, normal, uv, &r.state)

		for lane := 0; lane < 4; lane++ {
			t.shaded[frag.IntraTileIdx][lane] = packColor(color.Lane(lane))
		}
	}
}

// scatterTile writes the shaded colors of a tile's fragments into the
// per-sample storage, honoring coverage bits and the depth test. Fragments
// are processed in emission order so that later fragments overwrite earlier
// ones at equal depth.
func (r *Renderer) scatterTile(t *Tile) {
	fb := r.fb
	sc := fb.sampleCount

	for i := range t.frags {
		frag := &t.frags[i]
		p := &r.partitions[frag.CoreID]
		depths := frag.Depths(&p.verts[frag.VID0], &p.verts[frag.VID1], &p.verts[frag.VID2])
		colors := &t.shaded[frag.IntraTileIdx]

		for lane := uint32(0); lane < 4; lane++ {
			px := uint32(frag.X) + (lane & 1)
			py := uint32(frag.Y) + (lane >> 1)
			if px >= fb.width || py >= fb.height {
				continue
			}

			base := (py*fb.width + px) * sc
			for s := uint32(0); s < sc; s++ {
				if !frag.Coverage.Bit(s<<2 | lane) {
					continue
				}
				idx := base + s
				if depths[lane] <= fb.depth[idx] {
					fb.depth[idx] = depths[lane]
					fb.samples[idx] = colors[lane]
				}
			}
		}
	}
}

// forEachChunk splits [0, n) into one contiguous chunk per worker and joins
// before returning; it is the fork-join primitive behind every phase
// barrier.
func (r *Renderer) forEachChunk(n int, fn func(worker, start, end int)) {
	workers := r.opts.Workers
	chunk := (n + workers - 1) / workers
	if chunk == 0 {
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			fn(w, start, end)
		}(w, start, end)
	}
	wg.Wait()
}

// fullCoverageMask builds the mask with every (lane, sample) bit set for the
// given sample count.
func fullCoverageMask(sampleCount uint32) CoverageMask {
	var m CoverageMask
	for i := uint32(0); i < sampleCount*4; i++ {
		m.SetBit(i)
	}
	return m
}
