package material

import (
	"math"

	"github.com/crgnam/vira-sub001/types"
)

// Lambertian is a perfectly diffuse surface: constant BSDF albedo/pi over
// the hemisphere, sampled with the cosine-weighted strategy.
type Lambertian struct {
	CosineSampler

	// Base albedo multiplied into the vertex-interpolated albedo.
	BaseAlbedo types.Spectrum
}

func NewLambertian(albedo types.Spectrum) *Lambertian {
	return &Lambertian{BaseAlbedo: albedo}
}

func (m *Lambertian) EvaluateBSDF(uv types.Vec2, n, l, v types.Vec3, albedo types.Spectrum) types.Spectrum {
	if n.Dot(l) <= 0 || n.Dot(v) <= 0 {
		return types.Spectrum{}
	}
	return m.BaseAlbedo.Mul(albedo).Scale(1.0 / math.Pi)
}

func (m *Lambertian) Albedo(uv types.Vec2) types.Spectrum {
	return m.BaseAlbedo
}

func (m *Lambertian) Normal(uv types.Vec2, n types.Vec3, tangentToWorld types.Mat3f) types.Vec3 {
	return n
}

func (m *Lambertian) ApplyAmbient(ambient, albedo types.Spectrum, uv types.Vec2) types.Spectrum {
	return ambient.Mul(m.BaseAlbedo).Mul(albedo)
}
