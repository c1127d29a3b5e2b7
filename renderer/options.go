package renderer

// IntegratorType selects the light-transport algorithm.
type IntegratorType uint8

const (
	Unidirectional IntegratorType = iota
)

type Options struct {
	// Samples per pixel; adaptive termination may use fewer but never
	// more, and always at least one.
	Samples int

	// Number of indirect bounces after the camera hit.
	Bounces int

	// Add background radiance for escaping rays.
	ShowBackground bool

	// Run the edge-aware denoiser over the radiance passes.
	Denoise bool

	// Evaluate lights and materials. Disabled renders still produce the
	// geometry passes (depth, normals, ids).
	SimulateLighting bool

	Integrator IntegratorType

	// Adaptive termination settings.
	AdaptiveSampling    bool
	SamplesPerBatch     int
	SamplingTolerance   float64
	SamplesToDetectMiss int

	// Optional auxiliary passes.
	SaveVelocity     bool
	SaveTriangleSize bool

	// Parallel sweep settings. Zero values pick defaults (32 px tiles,
	// one worker per CPU).
	TileSize   int
	NumWorkers int
}

// DefaultOptions mirror the most common still-frame configuration.
func DefaultOptions() Options {
	return Options{
		Samples:             1,
		Bounces:             0,
		SimulateLighting:    true,
		SamplesPerBatch:     30,
		SamplingTolerance:   0.05,
		SamplesToDetectMiss: 30,
	}
}
