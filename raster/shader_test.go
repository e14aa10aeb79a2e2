package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/meridian-render/meridian/texture"
	"github.com/meridian-render/meridian/types"
)

func TestLambertTermClampsBackfacingLight(t *testing.T) {
	lightDir := types.Vec3{0, 0, 1}

	facing := lambertTerm(lightDir, types.SplatVec3(types.Vec3{0, 0, 1}))
	away := lambertTerm(lightDir, types.SplatVec3(types.Vec3{0, 0, -1}))

	wantFacing := (float32(1.0) + 0.2) * (2 * invPi)
	wantAway := float32(0.2) * (2 * invPi)
	for lane := 0; lane < 4; lane++ {
		if !closeRel(facing[lane], wantFacing, 1e-6) {
			t.Fatalf("expected lane %d head-on diffuse to be %f; got %f", lane, wantFacing, facing[lane])
		}
		if !closeRel(away[lane], wantAway, 1e-6) {
			t.Fatalf("expected lane %d back-facing diffuse to clamp to the ambient %f; got %f", lane, wantAway, away[lane])
		}
	}
}

func TestAlbedoShaderFallsBackWithoutTexture(t *testing.T) {
	var state RenderState
	frag := &QuadFragment{TextureID: -1}
	normal := types.SplatVec3(types.Vec3{0, 0, 1})
	light := types.Vec3{0, 0, 1}

	plain := QuadLambertianShader{}.Shade(frag, types.Vec3{}, light, types.Vec3x4{}, normal, types.Vec2x4{}, &state)
	albedo := QuadLambertianAlbedoShader{}.Shade(frag, types.Vec3{}, light, types.Vec3x4{}, normal, types.Vec2x4{}, &state)

	if plain != albedo {
		t.Fatal("expected the albedo shader to match the plain lambertian shade without a texture")
	}
}

func TestAlbedoShaderModulatesTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})

	state := RenderState{
		TextureSlots: []*texture.Texture{texture.New(img)},
	}
	frag := &QuadFragment{TextureID: 0}
	normal := types.SplatVec3(types.Vec3{0, 0, 1})
	light := types.Vec3{0, 0, 1}

	out := QuadLambertianAlbedoShader{}.Shade(frag, types.Vec3{}, light, types.Vec3x4{}, normal, types.SplatVec2(types.Vec2{0.5, 0.5}), &state)

	diffuse := (float32(1.0) + 0.2) * (2 * invPi)
	for lane := 0; lane < 4; lane++ {
		if !closeRel(out.X[lane], diffuse, 1e-6) {
			t.Fatalf("expected lane %d red channel to carry the full diffuse term; got %f", lane, out.X[lane])
		}
		if out.Y[lane] != 0 || out.Z[lane] != 0 {
			t.Fatalf("expected lane %d green and blue to be fully absorbed; got (%f, %f)", lane, out.Y[lane], out.Z[lane])
		}
	}
}

var _ PixelShader = BlinnPhongShader{}

// The scalar shading path must mirror the packed Blinn-Phong math, with its
// own smaller ambient fold.
func TestBlinnPhongShaderScalar(t *testing.T) {
	frag := &Fragment{
		Position: types.Vec3{0, 0, 0},
		Normal:   types.Vec3{0, 0, 1},
	}
	light := types.Vec3{0, 0, 1}
	eye := types.Vec3{0, 0, 10}

	lit := BlinnPhongShader{}.Shade(frag, eye, light)
	want := (float32(1.0)+0.1)*2*invPi + 2
	for c := 0; c < 3; c++ {
		if !closeRel(lit[c], want, 1e-5) {
			t.Fatalf("expected channel %d head-on shade of %f; got %f", c, want, lit[c])
		}
	}

	// Back-facing normal: diffuse clamps to the ambient term and the
	// highlight vanishes.
	frag.Normal = types.Vec3{0, 0, -1}
	dark := BlinnPhongShader{}.Shade(frag, eye, light)
	ambient := float32(0.1) * 2 * invPi
	for c := 0; c < 3; c++ {
		if !closeRel(dark[c], ambient, 1e-5) {
			t.Fatalf("expected channel %d back-facing shade to clamp to %f; got %f", c, ambient, dark[c])
		}
	}
}

func TestBlinnPhongSpecularHighlight(t *testing.T) {
	normal := types.SplatVec3(types.Vec3{0, 0, 1})
	light := types.Vec3{0, 0, 1}
	// Eye straight above the surface point: the half vector lines up with
	// the normal for a maximal highlight.
	eye := types.Vec3{0, 0, 10}
	position := types.SplatVec3(types.Vec3{0, 0, 0})

	lit := QuadBlinnPhongShader{}.Shade(&QuadFragment{}, eye, light, position, normal, types.Vec2x4{}, &RenderState{})

	diffuse := (float32(1.0) + 0.2) * (2 * invPi)
	want := diffuse + 2
	for lane := 0; lane < 4; lane++ {
		if !closeRel(lit.X[lane], want, 1e-4) {
			t.Fatalf("expected lane %d highlight of %f; got %f", lane, want, lit.X[lane])
		}
	}

	// Grazing view: the highlight must decay to almost nothing.
	grazing := QuadBlinnPhongShader{}.Shade(&QuadFragment{}, types.Vec3{10, 0, 0.01}, light, position, normal, types.Vec2x4{}, &RenderState{})
	for lane := 0; lane < 4; lane++ {
		if grazing.X[lane] > diffuse+0.01 {
			t.Fatalf("expected lane %d grazing highlight to decay; got %f", lane, grazing.X[lane])
		}
	}
}
