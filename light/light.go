// Package light defines the light-sampling capability consumed by the
// integrator's next-event estimation, plus the emitters shipped with the
// renderer.
package light

import (
	"math/rand"

	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

// Sample is one next-event-estimation draw towards a light.
type Sample struct {
	// Incident radiance arriving at the shaded point from the sampled
	// direction, falloff already applied.
	Radiance types.Spectrum

	// Occlusion ray from the shaded point towards the light.
	Ray tracer.Ray

	// World distance to the sampled light point.
	Distance float64

	// Density of the draw. Delta lights report 1.
	PDF float64
}

type Light interface {
	// Draw a direction towards the light from the given point.
	Sample(point types.Vec3d, rng *rand.Rand) Sample

	// Density the sampler would assign to the given direction from the
	// given point. Zero for directions that cannot reach the light and for
	// delta lights, which a BSDF sample can never hit.
	PDF(point, direction types.Vec3d) float64

	// Total irradiance the light deposits at a point, ignoring occlusion.
	Irradiance(point types.Vec3d) types.Spectrum

	// Delta reports whether the light occupies zero solid angle. The
	// integrator skips multiple-importance weighting for delta lights:
	// only one strategy can ever produce them.
	Delta() bool
}
