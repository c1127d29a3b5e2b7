package light

import (
	"math/rand"

	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

// PointLight is an isotropic delta emitter with inverse-square falloff.
// Intensity is radiant intensity (power per steradian).
type PointLight struct {
	Position  types.Vec3d
	Intensity types.Spectrum
}

func NewPointLight(position types.Vec3d, intensity types.Spectrum) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (l *PointLight) Sample(point types.Vec3d, rng *rand.Rand) Sample {
	toLight := l.Position.Sub(point)
	distance := toLight.Len()
	if distance == 0 {
		return Sample{}
	}
	direction := toLight.Mul(1.0 / distance)

	return Sample{
		Radiance: l.Intensity.Scale(1.0 / (distance * distance)),
		Ray:      tracer.NewRay(point, direction),
		Distance: distance,
		PDF:      1,
	}
}

func (l *PointLight) PDF(point, direction types.Vec3d) float64 {
	return 0
}

func (l *PointLight) Irradiance(point types.Vec3d) types.Spectrum {
	toLight := l.Position.Sub(point)
	d2 := toLight.Dot(toLight)
	if d2 == 0 {
		return types.Spectrum{}
	}
	return l.Intensity.Scale(1.0 / d2)
}

func (l *PointLight) Delta() bool { return true }
