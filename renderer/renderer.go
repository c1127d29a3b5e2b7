// Package renderer contains the CPU path-tracing integrator: a parallel
// tile sweep over the sensor that traces camera rays through the scene's
// acceleration structures and integrates light transport with
// multiple-importance-sampled next-event estimation.
package renderer

import (
	"github.com/crgnam/vira-sub001/camera"
	"github.com/crgnam/vira-sub001/scene"
)

type Renderer interface {
	// Render one frame into the renderer's pass buffers. Runs to
	// completion; configuration problems are reported before any work
	// begins.
	Render(cam camera.Camera, sc *scene.Scene) error

	// Get render statistics for the last frame.
	Stats() FrameStats
}
