package reader

import (
	"strings"
	"testing"

	"github.com/meridian-render/meridian/log"
	"github.com/meridian-render/meridian/scene"
	"github.com/meridian-render/meridian/types"
)

func parseString(t *testing.T, payload string) *scene.Mesh {
	t.Helper()
	r := &wavefrontReader{
		logger: log.New("wavefront mesh reader"),
		mesh:   &scene.Mesh{},
	}
	if err := r.parse(strings.NewReader(payload), "test.obj"); err != nil {
		t.Fatalf("expected payload to parse; got %v", err)
	}
	return r.mesh
}

func TestParseTriangleWithAttributes(t *testing.T) {
	payload := `
# comment
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 0 1
f 1/1/1 2/2/1 3/3/1
`
	mesh := parseString(t, payload)

	if mesh.TriangleCount() != 1 || mesh.VertexCount() != 3 {
		t.Fatalf("expected 1 triangle with 3 vertices; got %d and %d", mesh.TriangleCount(), mesh.VertexCount())
	}
	if mesh.Positions[1] != (types.Vec3{1, 0, 0}) {
		t.Fatalf("expected position (1, 0, 0); got %v", mesh.Positions[1])
	}
	if mesh.UVs[2] != (types.Vec2{0, 1}) {
		t.Fatalf("expected uv (0, 1); got %v", mesh.UVs[2])
	}
	for i := 0; i < 3; i++ {
		if mesh.Normals[i] != (types.Vec3{0, 0, 1}) {
			t.Fatalf("expected normal (0, 0, 1) at vertex %d; got %v", i, mesh.Normals[i])
		}
	}
	if mesh.TextureIDs[0] != -1 {
		t.Fatalf("expected the triangle to start untextured; got slot %d", mesh.TextureIDs[0])
	}
}

func TestParseQuadFanTriangulation(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	mesh := parseString(t, payload)

	if mesh.TriangleCount() != 2 {
		t.Fatalf("expected the quad to fan into 2 triangles; got %d", mesh.TriangleCount())
	}
	expIndices := []uint32{0, 1, 2, 0, 2, 3}
	for i, exp := range expIndices {
		if mesh.Indices[i] != exp {
			t.Fatalf("expected index %d to be %d; got %d", i, exp, mesh.Indices[i])
		}
	}

	// No vn statements: flat normals get synthesized from the face plane.
	for i := 0; i < 4; i++ {
		if mesh.Normals[i] != (types.Vec3{0, 0, 1}) {
			t.Fatalf("expected synthesized flat normal (0, 0, 1) at vertex %d; got %v", i, mesh.Normals[i])
		}
	}
}

func TestParseNegativeIndices(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	mesh := parseString(t, payload)

	if mesh.TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle; got %d", mesh.TriangleCount())
	}
	if mesh.Positions[2] != (types.Vec3{0, 1, 0}) {
		t.Fatalf("expected position (0, 1, 0); got %v", mesh.Positions[2])
	}
}

func TestParseErrors(t *testing.T) {
	type spec struct {
		payload  string
		expError string
	}

	specs := []spec{
		{
			"v 1 2\n",
			`test.obj: line 1: unsupported syntax for "v"; expected 3 arguments; got 2`,
		},
		{
			"vt 1\n",
			`test.obj: line 1: unsupported syntax for "vt"; expected 2 arguments; got 1`,
		},
		{
			"v 0 0 0\nf 1 2\n",
			`test.obj: line 2: unsupported syntax for "f"; expected at least 3 arguments; got 2`,
		},
		{
			"v 0 0 0\nf 1 2 3\n",
			"test.obj: line 2: could not parse vertex coord for face argument 2: index out of bounds",
		},
		{
			"f / / /\n",
			"test.obj: line 1: face argument 1 does not include a vertex index",
		},
	}

	for idx, s := range specs {
		r := &wavefrontReader{
			logger: log.New("wavefront mesh reader"),
			mesh:   &scene.Mesh{},
		}
		err := r.parse(strings.NewReader(s.payload), "test.obj")
		if err == nil {
			t.Fatalf("[spec %d] expected a parse error", idx)
		}
		if err.Error() != s.expError {
			t.Fatalf("[spec %d] expected error:\n %s\ngot:\n %s", idx, s.expError, err.Error())
		}
	}
}

func TestSelectFaceCoordIndex(t *testing.T) {
	type spec struct {
		token   string
		listLen int
		index   int
		valid   bool
	}

	specs := []spec{
		{"1", 3, 0, true},
		{"3", 3, 2, true},
		{"-1", 3, 2, true},
		{"-3", 3, 0, true},
		{"4", 3, -1, false},
		{"0", 3, -1, false},
		{"-4", 3, -1, false},
		{"abc", 3, -1, false},
	}

	for idx, s := range specs {
		got, err := selectFaceCoordIndex(s.token, s.listLen)
		if (err == nil) != s.valid {
			t.Fatalf("[spec %d] expected validity %t; got error %v", idx, s.valid, err)
		}
		if s.valid && got != s.index {
			t.Fatalf("[spec %d] expected index %d; got %d", idx, s.index, got)
		}
	}
}
