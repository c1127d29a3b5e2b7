package light

import (
	"math"
	"math/rand"

	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

// SphereLight is a uniformly emitting sphere sampled over the cone of
// directions it subtends. Unlike the point light it has a real solid angle,
// so both sampling strategies can reach it and the integrator weighs them
// with the power heuristic.
type SphereLight struct {
	Center types.Vec3d
	Radius float64

	// Emitted radiance of the surface.
	Radiance types.Spectrum
}

func NewSphereLight(center types.Vec3d, radius float64, radiance types.Spectrum) *SphereLight {
	return &SphereLight{Center: center, Radius: radius, Radiance: radiance}
}

// cosThetaMax returns the cosine of the half-angle of the cone the sphere
// subtends from the given point, or -1 when the point is inside.
func (l *SphereLight) cosThetaMax(point types.Vec3d) float64 {
	toCenter := l.Center.Sub(point)
	d2 := toCenter.Dot(toCenter)
	r2 := l.Radius * l.Radius
	if d2 <= r2 {
		return -1
	}
	return math.Sqrt(1 - r2/d2)
}

func (l *SphereLight) Sample(point types.Vec3d, rng *rand.Rand) Sample {
	cosMax := l.cosThetaMax(point)
	if cosMax < 0 {
		return Sample{}
	}

	// Uniform direction inside the subtended cone.
	u1 := rng.Float64()
	u2 := rng.Float64()
	cosTheta := 1 - u1*(1-cosMax)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2

	toCenter := l.Center.Sub(point)
	dist := toCenter.Len()
	w := toCenter.Mul(1.0 / dist)

	// Frame around the cone axis.
	var up types.Vec3d
	if math.Abs(w[0]) > 0.9 {
		up = types.Vec3d{0, 1, 0}
	} else {
		up = types.Vec3d{1, 0, 0}
	}
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	direction := u.Mul(math.Cos(phi) * sinTheta).
		Add(v.Mul(math.Sin(phi) * sinTheta)).
		Add(w.Mul(cosTheta)).
		Normalize()

	pdf := 1.0 / (2 * math.Pi * (1 - cosMax))

	// Distance to the sphere surface along the sampled direction.
	surfaceDist := dist*cosTheta - math.Sqrt(math.Max(0, l.Radius*l.Radius-dist*dist*(1-cosTheta*cosTheta)))

	return Sample{
		Radiance: l.Radiance,
		Ray:      tracer.NewRay(point, direction),
		Distance: surfaceDist,
		PDF:      pdf,
	}
}

func (l *SphereLight) PDF(point, direction types.Vec3d) float64 {
	cosMax := l.cosThetaMax(point)
	if cosMax < 0 {
		return 0
	}

	toCenter := l.Center.Sub(point).Normalize()
	if toCenter.Dot(direction) < cosMax {
		return 0
	}
	return 1.0 / (2 * math.Pi * (1 - cosMax))
}

func (l *SphereLight) Irradiance(point types.Vec3d) types.Spectrum {
	cosMax := l.cosThetaMax(point)
	if cosMax < 0 {
		return l.Radiance.Scale(math.Pi)
	}
	return l.Radiance.Scale(2 * math.Pi * (1 - cosMax))
}

func (l *SphereLight) Delta() bool { return false }
