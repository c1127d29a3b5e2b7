// Package material defines the opaque surface-response capability consumed
// by the integrator. The integrator never inspects a material's internals;
// it only evaluates, samples and queries densities through this interface.
package material

import (
	"math/rand"

	"github.com/crgnam/vira-sub001/types"
)

type Material interface {
	// Evaluate the BSDF for light arriving from L and leaving towards V at
	// a surface point with shading normal N. The albedo argument is the
	// vertex-interpolated surface albedo at the hit.
	EvaluateBSDF(uv types.Vec2, n, l, v types.Vec3, albedo types.Spectrum) types.Spectrum

	// Importance-sample a continuation direction for a path arriving from
	// V. Returns the world-space direction and its sampling density; a zero
	// density means the sample is unusable.
	SampleDirection(v, n types.Vec3, tangentToWorld types.Mat3f, uv types.Vec2, rng *rand.Rand) (types.Vec3, float64)

	// Density the sampler above would have assigned to direction L.
	PDF(v, n, l types.Vec3, tangentToWorld types.Mat3f, uv types.Vec2) float64

	// Base surface albedo at the given texture coordinate.
	Albedo(uv types.Vec2) types.Spectrum

	// Shading normal after any normal mapping; the default returns the
	// interpolated geometric input unchanged.
	Normal(uv types.Vec2, n types.Vec3, tangentToWorld types.Mat3f) types.Vec3

	// Response of the surface to the scene's constant ambient term.
	ApplyAmbient(ambient, albedo types.Spectrum, uv types.Vec2) types.Spectrum
}
