package scene

import (
	"github.com/meridian-render/meridian/types"
)

// A triangle mesh. Vertex attributes are stored in parallel arrays indexed
// by the index buffer; every 3 consecutive indices form one triangle. The
// mesh is owned by the caller and treated as immutable for the duration of
// a draw call.
type Mesh struct {
	// Per-vertex attributes.
	Positions []types.Vec3
	Normals   []types.Vec3
	UVs       []types.Vec2

	// The index buffer; 3 entries per triangle.
	Indices []uint32

	// Per-triangle texture slot index; -1 marks an untextured triangle.
	TextureIDs []int32
}

// Get the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Get the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Get the texture slot for triangle triIdx. Returns -1 when the mesh does
// not carry texture assignments.
func (m *Mesh) TextureID(triIdx int) int32 {
	if triIdx >= len(m.TextureIDs) {
		return -1
	}
	return m.TextureIDs[triIdx]
}
