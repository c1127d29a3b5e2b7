// Package camera defines the ray-generation and radiometric-conversion
// contract the integrator renders through, plus a pinhole implementation
// good enough to exercise the core end to end. Distortion models, apertures
// and sensor noise belong to the excluded camera simulation layer.
package camera

import (
	"math/rand"

	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

// Pixel addresses one sensor photosite; I is the column, J the row.
type Pixel struct {
	I int
	J int
}

type Camera interface {
	// Sensor resolution in pixels.
	Resolution() (width, height int)

	// Generate the ray through the center of a pixel.
	PixelToRay(pixel Pixel) tracer.Ray

	// Generate a ray with a jittered sub-pixel offset.
	PixelToRayJittered(pixel Pixel, rng *rand.Rand) tracer.Ray

	// Convert pixel radiance into sensor-received power, applying the
	// camera's etendue, exposure and gain model.
	CalculateReceivedPower(radiance types.Spectrum, pixel Pixel) types.Spectrum

	// View matrix mapping world space into the camera frame; used for the
	// camera-space normal and velocity passes.
	ViewMatrix() types.Mat4d

	// Point-spread function, when one is configured.
	HasPSF() bool
	PSF() PSF
}

// PSF is a discrete point-spread kernel convolved over the rendered frame.
type PSF interface {
	// Kernel returns a normalized, odd-sized square kernel.
	Kernel() [][]float64
}
