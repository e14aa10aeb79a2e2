package raster

import "errors"

var (
	ErrMeshNotDefined     = errors.New("raster: no mesh provided")
	ErrInvalidFrameDims   = errors.New("raster: frame dimensions must be positive")
	ErrInvalidTileSize    = errors.New("raster: tile size log2 must be between 2 and 7")
	ErrInvalidSampleCount = errors.New("raster: MSAA sample count log2 must be between 0 and 3")
)
