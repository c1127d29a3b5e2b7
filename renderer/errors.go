package renderer

import "errors"

var (
	ErrSceneNotDefined    = errors.New("renderer: no scene defined")
	ErrCameraNotDefined   = errors.New("renderer: no camera defined")
	ErrUnknownIntegrator  = errors.New("renderer: unsupported integrator type")
	ErrInvalidSampleCount = errors.New("renderer: sample count must be at least 1")
)
