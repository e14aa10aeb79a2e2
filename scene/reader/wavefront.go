package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-render/meridian/log"
	"github.com/meridian-render/meridian/scene"
	"github.com/meridian-render/meridian/types"
)

type wavefrontReader struct {
	logger log.Logger

	// Raw attribute pools referenced by face statements.
	positions []types.Vec3
	normals   []types.Vec3
	uvs       []types.Vec2

	mesh *scene.Mesh
}

// Read a triangle mesh from a wavefront obj file.
func ReadMesh(path string) (*scene.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &wavefrontReader{
		logger: log.New("wavefront mesh reader"),
		mesh:   &scene.Mesh{},
	}

	r.logger.Noticef(`parsing mesh from "%s"`, path)
	start := time.Now()
	if err = r.parse(f, path); err != nil {
		return nil, err
	}
	r.logger.Noticef("parsed %d triangles in %d ms", r.mesh.TriangleCount(), time.Since(start).Nanoseconds()/1e6)

	return r.mesh, nil
}

func (r *wavefrontReader) parse(src io.Reader, file string) error {
	var lineNum int
	var err error

	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			var v types.Vec3
			v, err = parseVec3(lineTokens)
			r.positions = append(r.positions, v)
		case "vn":
			var v types.Vec3
			v, err = parseVec3(lineTokens)
			r.normals = append(r.normals, v)
		case "vt":
			var v types.Vec2
			v, err = parseVec2(lineTokens)
			r.uvs = append(r.uvs, v)
		case "f":
			err = r.parseFace(lineTokens)
		}

		if err != nil {
			return fmt.Errorf("%s: line %d: %s", file, lineNum, err.Error())
		}
	}

	return scanner.Err()
}

// Parse a face statement. Faces with more than 3 vertices are triangulated
// as a fan anchored at the first vertex.
func (r *wavefrontReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	corners := len(lineTokens) - 1
	first := uint32(r.mesh.VertexCount())
	for arg := 1; arg <= corners; arg++ {
		vTokens := strings.Split(lineTokens[arg], "/")

		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}
		posIdx, err := selectFaceCoordIndex(vTokens[0], len(r.positions))
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		r.mesh.Positions = append(r.mesh.Positions, r.positions[posIdx])

		var uv types.Vec2
		if len(vTokens) > 1 && vTokens[1] != "" {
			uvIdx, err := selectFaceCoordIndex(vTokens[1], len(r.uvs))
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
			uv = r.uvs[uvIdx]
		}
		r.mesh.UVs = append(r.mesh.UVs, uv)

		var normal types.Vec3
		if len(vTokens) > 2 && vTokens[2] != "" {
			nIdx, err := selectFaceCoordIndex(vTokens[2], len(r.normals))
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normal = r.normals[nIdx]
		}
		r.mesh.Normals = append(r.mesh.Normals, normal)
	}

	// Synthesize flat normals when the face carries none.
	if len(strings.Split(lineTokens[1], "/")) < 3 {
		e1 := r.mesh.Positions[first+1].Sub(r.mesh.Positions[first])
		e2 := r.mesh.Positions[first+2].Sub(r.mesh.Positions[first])
		flat := e1.Cross(e2).Normalize()
		for i := 0; i < corners; i++ {
			r.mesh.Normals[int(first)+i] = flat
		}
	}

	for i := 1; i < corners-1; i++ {
		r.mesh.Indices = append(r.mesh.Indices, first, first+uint32(i), first+uint32(i)+1)
		r.mesh.TextureIDs = append(r.mesh.TextureIDs, -1)
	}

	return nil
}

// Convert a 1-based, possibly negative wavefront index into a slice offset.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.Atoi(indexToken)
	if err != nil {
		return -1, err
	}

	if index < 0 {
		index += coordListLen
	} else {
		index--
	}

	if index < 0 || index >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return index, nil
}

func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
