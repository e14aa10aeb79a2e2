package raster

import "time"

// FrameStats collects per-phase timings and work counters for the last
// RenderMesh call.
type FrameStats struct {
	// Per-phase render times.
	VertexTime  time.Duration
	ClipTime    time.Duration
	BinTime     time.Duration
	RasterTime  time.Duration
	ShadeTime   time.Duration
	ScatterTime time.Duration
	ResolveTime time.Duration

	// Total render time for the draw call.
	RenderTime time.Duration

	// Number of raster triangles that survived clipping and the number of
	// quad fragments emitted across all tiles.
	Triangles int
	Fragments int
}
