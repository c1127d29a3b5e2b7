package camera

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

// Pinhole is a distortion-free perspective camera with a physical sensor
// description, positioned by a world pose. Rays leave the pinhole towards
// the -Z axis of the camera frame.
type Pinhole struct {
	width  int
	height int

	// Focal length and sensor size in meters.
	focalLength float64
	sensorW     float64
	sensorH     float64

	// Radiometric conversion settings.
	exposureTime      float64
	apertureArea      float64
	opticalEfficiency float64

	pose types.Mat4d
	view types.Mat4d
	psf  PSF
}

func NewPinhole(width, height int, focalLength, sensorWidth float64) *Pinhole {
	return &Pinhole{
		width:             width,
		height:            height,
		focalLength:       focalLength,
		sensorW:           sensorWidth,
		sensorH:           sensorWidth * float64(height) / float64(width),
		exposureTime:      1.0,
		apertureArea:      1.0,
		opticalEfficiency: 1.0,
		pose:              mgl64.Ident4(),
		view:              mgl64.Ident4(),
	}
}

// SetPose positions the camera in the world. The pose maps camera frame to
// world frame.
func (c *Pinhole) SetPose(pose types.Mat4d) {
	c.pose = pose
	c.view = pose.Inv()
}

// LookAt orients the camera at eye towards target.
func (c *Pinhole) LookAt(eye, target, up types.Vec3d) {
	c.view = mgl64.LookAtV(eye, target, up)
	c.pose = c.view.Inv()
}

func (c *Pinhole) SetExposureTime(t float64)      { c.exposureTime = t }
func (c *Pinhole) SetApertureArea(a float64)      { c.apertureArea = a }
func (c *Pinhole) SetOpticalEfficiency(e float64) { c.opticalEfficiency = e }
func (c *Pinhole) SetPSF(psf PSF)                 { c.psf = psf }

func (c *Pinhole) Resolution() (int, int) { return c.width, c.height }

func (c *Pinhole) ViewMatrix() types.Mat4d { return c.view }

func (c *Pinhole) HasPSF() bool { return c.psf != nil }
func (c *Pinhole) PSF() PSF     { return c.psf }

// rayThrough builds the world-space ray through sensor coordinates
// (u, v) in [0,1)^2.
func (c *Pinhole) rayThrough(u, v float64) tracer.Ray {
	// Sensor plane point in the camera frame: +x right, +y up, -z forward.
	x := (u - 0.5) * c.sensorW
	y := (0.5 - v) * c.sensorH
	dir := types.Vec3d{x, y, -c.focalLength}.Normalize()

	origin := types.TransformPoint(c.pose, types.Vec3d{})
	worldDir := types.TransformDirection(c.pose, dir).Normalize()
	return tracer.NewRay(origin, worldDir)
}

func (c *Pinhole) PixelToRay(pixel Pixel) tracer.Ray {
	u := (float64(pixel.I) + 0.5) / float64(c.width)
	v := (float64(pixel.J) + 0.5) / float64(c.height)
	return c.rayThrough(u, v)
}

func (c *Pinhole) PixelToRayJittered(pixel Pixel, rng *rand.Rand) tracer.Ray {
	u := (float64(pixel.I) + rng.Float64()) / float64(c.width)
	v := (float64(pixel.J) + rng.Float64()) / float64(c.height)
	return c.rayThrough(u, v)
}

// CalculateReceivedPower converts radiance into power collected by the
// pixel: radiance times the pixel's etendue (pixel area times aperture area
// over the focal length squared, with the cos^4 off-axis falloff), times
// exposure and optical efficiency.
func (c *Pinhole) CalculateReceivedPower(radiance types.Spectrum, pixel Pixel) types.Spectrum {
	pixelArea := (c.sensorW / float64(c.width)) * (c.sensorH / float64(c.height))

	x := (float64(pixel.I)+0.5)/float64(c.width) - 0.5
	y := (float64(pixel.J)+0.5)/float64(c.height) - 0.5
	dx := x * c.sensorW
	dy := y * c.sensorH
	cosTheta := c.focalLength / math.Sqrt(dx*dx+dy*dy+c.focalLength*c.focalLength)
	cos4 := cosTheta * cosTheta * cosTheta * cosTheta

	etendue := pixelArea * c.apertureArea / (c.focalLength * c.focalLength) * cos4
	return radiance.Scale(etendue * c.exposureTime * c.opticalEfficiency)
}
