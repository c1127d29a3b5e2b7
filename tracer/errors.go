package tracer

import "errors"

var (
	// Raised before any work begins when a top-level structure is requested
	// for a scene with no visible geometry.
	ErrNoGeometry = errors.New("tracer: no leaves to build top-level structure from")

	// Raised when a mesh has no triangles to index.
	ErrEmptyMesh = errors.New("tracer: mesh has no triangles")
)
