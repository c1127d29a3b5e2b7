package renderer

import "time"

// FrameStats summarize the last completed render call.
type FrameStats struct {
	RenderTime time.Duration

	Width  int
	Height int

	Tiles   int
	Workers int

	// Total primary samples traced over the whole frame.
	TotalSamples uint64

	// Largest per-pixel sample count; equals the configured sample count
	// unless adaptive termination fired everywhere.
	MaxSamplesUsed int

	AvgSamplesPerPixel float64

	// Samples dropped because they produced a non-finite radiance value.
	NumericAnomalies uint64
}
