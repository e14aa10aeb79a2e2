package raster

import (
	"github.com/chewxy/math32"
	"github.com/meridian-render/meridian/types"
)

// VertexShader transforms an input vertex into clip space and forwards the
// interpolation attributes. Implementations may be swapped per renderer
// instance without touching the pipeline.
type VertexShader interface {
	Shade(state *RenderState, position, normal types.Vec3, uv types.Vec2, out *ProjectedVertex)
}

// QuadPixelShader computes the color of the four lanes of a quad fragment.
// The returned packed vector holds linear RGB per lane.
type QuadPixelShader interface {
	Shade(frag *QuadFragment, eyePos, lightDir types.Vec3,
		position, normal types.Vec3x4, uv types.Vec2x4, state *RenderState) types.Vec3x4
}

// PixelShader is the scalar counterpart of QuadPixelShader, used by the
// single-pixel shading path.
type PixelShader interface {
	Shade(frag *Fragment, eyePos, lightDir types.Vec3) types.Vec3
}

// The default vertex shader: transform by the combined model-view-projection
// matrix and pass attributes through.
type DefaultVertexShader struct{}

func (DefaultVertexShader) Shade(state *RenderState, position, normal types.Vec3, uv types.Vec2, out *ProjectedVertex) {
	out.ProjectedPos = state.ModelViewProj.Mul4x1(position.Vec4(1))
	out.Position = position
	out.Normal = normal
	out.UV = uv
}

const invPi = 1.0 / math32.Pi

// lambertTerm computes the shared diffuse term of the quad shaders: the
// clamped N.L with a small ambient fold.
func lambertTerm(lightDir types.Vec3, normal types.Vec3x4) types.Float4 {
	n := normal.Normalize()
	l := types.SplatVec3(lightDir.Normalize())

	diffuseAmount := l.Dot(n)
	mask := diffuseAmount.Less(types.Splat4(0))
	diffuseAmount = types.Select4(mask, types.Splat4(0), diffuseAmount)
	return diffuseAmount.AddScalar(0.2).Scale(2 * invPi)
}

// Untextured Lambertian shading.
type QuadLambertianShader struct{}

func (QuadLambertianShader) Shade(frag *QuadFragment, eyePos, lightDir types.Vec3,
	position, normal types.Vec3x4, uv types.Vec2x4, state *RenderState) types.Vec3x4 {

	diffuse := lambertTerm(lightDir, normal)
	return types.Vec3x4{X: diffuse, Y: diffuse, Z: diffuse}
}

// Lambertian shading modulated by an albedo texture sampled per lane from
// the fragment's texture slot.
type QuadLambertianAlbedoShader struct{}

func (QuadLambertianAlbedoShader) Shade(frag *QuadFragment, eyePos, lightDir types.Vec3,
	position, normal types.Vec3x4, uv types.Vec2x4, state *RenderState) types.Vec3x4 {

	diffuse := lambertTerm(lightDir, normal)

	tex := state.Texture(frag.TextureID)
	if tex == nil {
		return types.Vec3x4{X: diffuse, Y: diffuse, Z: diffuse}
	}

	var albedo types.Vec3x4
	for lane := 0; lane < 4; lane++ {
		albedo.SetLane(lane, tex.Sample(uv.Lane(lane)))
	}
	return albedo.MulWeight(diffuse)
}

// Blinn-Phong shading with a fixed specular exponent.
type QuadBlinnPhongShader struct{}

func (QuadBlinnPhongShader) Shade(frag *QuadFragment, eyePos, lightDir types.Vec3,
	position, normal types.Vec3x4, uv types.Vec2x4, state *RenderState) types.Vec3x4 {

	n := normal.Normalize()
	l := types.SplatVec3(lightDir.Normalize())

	diffuseAmount := l.Dot(n)
	mask := diffuseAmount.Less(types.Splat4(0))
	diffuseAmount = types.Select4(mask, types.Splat4(0), diffuseAmount)
	diffuse := diffuseAmount.AddScalar(0.2).Scale(2 * invPi)

	eyeDir := types.SplatVec3(eyePos).Sub(position).Normalize()
	halfVec := l.Add(eyeDir).Normalize()

	specularAmount := n.Dot(halfVec)
	specularAmount = types.Select4(specularAmount.Less(types.Splat4(0)), types.Splat4(0), specularAmount)
	specular := types.Float4{
		math32.Pow(specularAmount[0], 200),
		math32.Pow(specularAmount[1], 200),
		math32.Pow(specularAmount[2], 200),
		math32.Pow(specularAmount[3], 200),
	}.Scale(2)

	out := diffuse.Add(specular)
	return types.Vec3x4{X: out, Y: out, Z: out}
}

// Scalar Blinn-Phong shader for the single-pixel path.
type BlinnPhongShader struct{}

func (BlinnPhongShader) Shade(frag *Fragment, eyePos, lightDir types.Vec3) types.Vec3 {
	normal := frag.Normal.Normalize()
	light := lightDir.Normalize()

	diffuseAmount := light.Dot(normal)
	if diffuseAmount < 0 {
		diffuseAmount = 0
	}
	diffuse := (diffuseAmount + 0.1) * 2 * invPi

	eyeDir := eyePos.Sub(frag.Position).Normalize()
	halfVec := light.Add(eyeDir).Normalize()
	specularAmount := normal.Dot(halfVec)
	if specularAmount < 0 {
		specularAmount = 0
	}
	specular := math32.Pow(specularAmount, 200) * 2

	out := diffuse + specular
	return types.Vec3{out, out, out}
}
