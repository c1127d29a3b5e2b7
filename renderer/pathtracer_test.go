package renderer

import (
	"math"
	"testing"

	"github.com/crgnam/vira-sub001/camera"
	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/light"
	"github.com/crgnam/vira-sub001/material"
	"github.com/crgnam/vira-sub001/scene"
	"github.com/crgnam/vira-sub001/types"
)

// wallScene places a square facing +z at the given depth in front of the
// default camera pose, with one Lambertian material.
func wallScene(t *testing.T, albedo types.Spectrum, half, depth float64) *scene.Scene {
	t.Helper()

	sc := scene.New()
	matID := sc.AddMaterial(material.NewLambertian(albedo))

	n := types.XYZ(0, 0, 1)
	m := geometry.NewMesh()
	slot := m.AddMaterial(matID)
	m.SetVertices([]geometry.Vertex{
		{Position: types.Vec3d{-half, -half, -depth}, Normal: n, UV: types.XY(0, 0), Albedo: types.Gray(1)},
		{Position: types.Vec3d{half, -half, -depth}, Normal: n, UV: types.XY(1, 0), Albedo: types.Gray(1)},
		{Position: types.Vec3d{half, half, -depth}, Normal: n, UV: types.XY(1, 1), Albedo: types.Gray(1)},
		{Position: types.Vec3d{-half, half, -depth}, Normal: n, UV: types.XY(0, 1), Albedo: types.Gray(1)},
	})
	m.SetIndices([]uint32{0, 1, 2, 0, 2, 3}, []uint32{slot, slot})

	meshID := sc.AddMesh(m)
	if _, err := sc.CreateInstance(meshID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sc
}

func TestRenderValidation(t *testing.T) {
	sc := wallScene(t, types.Gray(0.8), 10, 5)
	cam := camera.NewPinhole(8, 8, 0.035, 0.036)

	r := NewCPUPathTracer(DefaultOptions())
	if err := r.Render(nil, sc); err != ErrCameraNotDefined {
		t.Fatalf("expected ErrCameraNotDefined; got %v", err)
	}
	if err := r.Render(cam, nil); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}

	r.Options.Integrator = IntegratorType(99)
	if err := r.Render(cam, sc); err != ErrUnknownIntegrator {
		t.Fatalf("expected ErrUnknownIntegrator; got %v", err)
	}
	r.Options.Integrator = Unidirectional

	r.Options.Samples = 0
	if err := r.Render(cam, sc); err != ErrInvalidSampleCount {
		t.Fatalf("expected ErrInvalidSampleCount; got %v", err)
	}
}

func TestRenderDirectLightingClosedForm(t *testing.T) {
	// Perpendicular wall at distance 5, point light at the camera origin:
	// the center pixel sees L = albedo/pi * cos(0) * I/d^2.
	albedo := 0.8
	intensity := 25.0
	depth := 5.0

	sc := wallScene(t, types.Gray(albedo), 10, depth)
	sc.AddLight(light.NewPointLight(types.Vec3d{0, 0, 0}, types.Gray(intensity)))

	cam := camera.NewPinhole(33, 33, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 1
	opts.Bounces = 0
	opts.NumWorkers = 2
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	exp := albedo / math.Pi * intensity / (depth * depth)
	got := r.Passes.TotalRadiance.At(16, 16)
	if math.Abs(got[0]-exp) > 1e-4 {
		t.Fatalf("expected center radiance %f; got %f", exp, got[0])
	}

	// Bounce-zero light is direct; nothing indirect exists at 0 bounces.
	direct := r.Passes.DirectRadiance.At(16, 16)
	if math.Abs(direct[0]-got[0]) > 1e-12 {
		t.Fatalf("expected all radiance to be direct; direct %f total %f", direct[0], got[0])
	}
	if indirect := r.Passes.IndirectRadiance.At(16, 16); !indirect.IsBlack() {
		t.Fatalf("expected no indirect radiance at 0 bounces; got %v", indirect)
	}

	if gotDepth := r.Passes.Depth.At(16, 16); math.Abs(float64(gotDepth)-depth) > 1e-3 {
		t.Fatalf("expected depth %f; got %f", depth, gotDepth)
	}
	if alpha := r.Passes.Alpha.At(16, 16); alpha != 1 {
		t.Fatalf("expected full coverage at the center; got %f", alpha)
	}
	if gotAlbedo := r.Passes.Albedo.At(16, 16); math.Abs(gotAlbedo[0]-albedo) > 1e-12 {
		t.Fatalf("expected albedo pass %f; got %f", albedo, gotAlbedo[0])
	}
	if id := r.Passes.InstanceID.At(16, 16); id != 0 {
		t.Fatalf("expected instance 0 at the center; got %d", id)
	}
	if n := r.Passes.NormalGlobal.At(16, 16); math.Abs(float64(n[2])-1) > 1e-5 {
		t.Fatalf("expected +z normal at the center; got %v", n)
	}

	stats := r.Stats()
	if stats.TotalSamples != 33*33 {
		t.Fatalf("expected one sample per pixel; got %d", stats.TotalSamples)
	}
	if stats.NumericAnomalies != 0 {
		t.Fatalf("expected no dropped samples; got %d", stats.NumericAnomalies)
	}
}

func TestRenderAmbientTerm(t *testing.T) {
	albedo := 0.5
	sc := wallScene(t, types.Gray(albedo), 10, 5)
	sc.SetAmbient(types.Gray(0.2))

	cam := camera.NewPinhole(9, 9, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 1
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	// No lights: only the ambient response survives.
	exp := 0.2 * albedo
	got := r.Passes.TotalRadiance.At(4, 4)
	if math.Abs(got[0]-exp) > 1e-12 {
		t.Fatalf("expected ambient radiance %f; got %f", exp, got[0])
	}
}

func TestRenderBackground(t *testing.T) {
	// A wall too small to cover the frame; corner pixels escape.
	sc := wallScene(t, types.Gray(0.8), 0.05, 5)
	sc.SetBackgroundEmission(types.Gray(2))

	cam := camera.NewPinhole(33, 33, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 1
	opts.ShowBackground = true
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	corner := r.Passes.TotalRadiance.At(0, 0)
	if math.Abs(corner[0]-2) > 1e-12 {
		t.Fatalf("expected background radiance 2 at the corner; got %f", corner[0])
	}
	if alpha := r.Passes.Alpha.At(0, 0); alpha != 0 {
		t.Fatalf("expected zero coverage at the corner; got %f", alpha)
	}
	if d := r.Passes.Depth.At(0, 0); !math.IsInf(float64(d), 1) {
		t.Fatalf("expected infinite depth at the corner; got %f", d)
	}

	// Hidden background stays black.
	opts.ShowBackground = false
	r = NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if corner := r.Passes.TotalRadiance.At(0, 0); !corner.IsBlack() {
		t.Fatalf("expected black corner with a hidden background; got %v", corner)
	}
}

func TestRenderHiddenBackgroundSecondaryBounces(t *testing.T) {
	// An unlit wall in front of a bright hidden background. Continuation
	// rays leave the wall and miss; with the background hidden those
	// misses must contribute nothing at any bounce.
	sc := wallScene(t, types.Gray(0.8), 10, 5)
	sc.SetBackgroundEmission(types.Gray(10))

	cam := camera.NewPinhole(33, 33, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 1
	opts.Bounces = 2
	opts.ShowBackground = false
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	if center := r.Passes.TotalRadiance.At(16, 16); !center.IsBlack() {
		t.Fatalf("expected black center with a hidden background; got %v", center)
	}
	if indirect := r.Passes.IndirectRadiance.At(16, 16); !indirect.IsBlack() {
		t.Fatalf("expected black indirect radiance; got %v", indirect)
	}
	if alpha := r.Passes.Alpha.At(16, 16); alpha != 1 {
		t.Fatalf("expected full coverage at the center; got %f", alpha)
	}
}

func TestRenderOccludedLight(t *testing.T) {
	// A second wall between the light and the first one blocks all direct
	// light on the center pixel.
	sc := wallScene(t, types.Gray(0.8), 10, 5)
	sc.AddLight(light.NewPointLight(types.Vec3d{0, 0, 10}, types.Gray(100)))

	blockerMat := sc.AddMaterial(material.NewLambertian(types.Gray(0.1)))
	n := types.XYZ(0, 0, 1)
	m := geometry.NewMesh()
	slot := m.AddMaterial(blockerMat)
	m.SetVertices([]geometry.Vertex{
		{Position: types.Vec3d{-1, -1, 2}, Normal: n, Albedo: types.Gray(1)},
		{Position: types.Vec3d{1, -1, 2}, Normal: n, Albedo: types.Gray(1)},
		{Position: types.Vec3d{0, 1, 2}, Normal: n, Albedo: types.Gray(1)},
	})
	m.SetIndices([]uint32{0, 1, 2}, []uint32{slot})
	meshID := sc.AddMesh(m)
	if _, err := sc.CreateInstance(meshID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cam := camera.NewPinhole(9, 9, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 1
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	if got := r.Passes.TotalRadiance.At(4, 4); !got.IsBlack() {
		t.Fatalf("expected fully shadowed center pixel; got %v", got)
	}
}

func TestRenderAdaptiveSampling(t *testing.T) {
	sc := wallScene(t, types.Gray(0.8), 10, 5)
	sc.AddLight(light.NewPointLight(types.Vec3d{0, 0, 0}, types.Gray(25)))

	cam := camera.NewPinhole(9, 9, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 100
	opts.AdaptiveSampling = true
	opts.SamplesPerBatch = 10
	opts.SamplingTolerance = 0.05
	opts.SamplesToDetectMiss = 5
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	stats := r.Stats()
	if stats.MaxSamplesUsed < 1 || stats.MaxSamplesUsed > opts.Samples {
		t.Fatalf("expected sample counts in [1, %d]; max used %d", opts.Samples, stats.MaxSamplesUsed)
	}
	// Direct lighting on a flat wall has near-zero sample variance; every
	// pixel should converge at the first batch check.
	if stats.MaxSamplesUsed > opts.SamplesPerBatch {
		t.Fatalf("expected convergence within one batch; max used %d", stats.MaxSamplesUsed)
	}
}

func TestRenderGeometryOnly(t *testing.T) {
	sc := wallScene(t, types.Gray(0.8), 10, 5)
	cam := camera.NewPinhole(9, 9, 0.035, 0.036)

	opts := DefaultOptions()
	opts.SimulateLighting = false
	opts.SaveVelocity = true
	opts.SaveTriangleSize = true
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	if r.Passes.TotalRadiance != nil {
		t.Fatalf("expected no radiance planes without lighting simulation")
	}
	if d := r.Passes.Depth.At(4, 4); math.Abs(float64(d)-5) > 1e-3 {
		t.Fatalf("expected depth 5; got %f", d)
	}
	// Static instances have no motion.
	if v := r.Passes.VelocityGlobal.At(4, 4); v.Len() != 0 {
		t.Fatalf("expected zero velocity for a static instance; got %v", v)
	}
	if size := r.Passes.TriangleSize.At(4, 4); size <= 0 || math.IsInf(float64(size), 1) {
		t.Fatalf("expected a finite triangle footprint; got %f", size)
	}
	if got := r.Stats().TotalSamples; got != 9*9 {
		t.Fatalf("expected one sample per pixel; got %d", got)
	}
}

func TestRenderDenoisePreservesFlatRegions(t *testing.T) {
	sc := wallScene(t, types.Gray(0.8), 10, 5)
	sc.SetAmbient(types.Gray(0.2))

	cam := camera.NewPinhole(17, 17, 0.035, 0.036)

	opts := DefaultOptions()
	opts.Samples = 1
	opts.Denoise = true
	r := NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	// A constant region must stay constant through the filter.
	exp := 0.2 * 0.8
	got := r.Passes.TotalRadiance.At(8, 8)
	if math.Abs(got[0]-exp) > 1e-6 {
		t.Fatalf("expected denoised flat radiance %f; got %f", exp, got[0])
	}
}
