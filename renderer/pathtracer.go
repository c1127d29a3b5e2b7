package renderer

import (
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/crgnam/vira-sub001/camera"
	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/light"
	"github.com/crgnam/vira-sub001/log"
	"github.com/crgnam/vira-sub001/material"
	"github.com/crgnam/vira-sub001/scene"
	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

const defaultTileSize = 32

// confidenceZ is the two-sided 95% normal quantile used by the adaptive
// sample-count test.
const confidenceZ = 1.96

// CPUPathTracer is the software unidirectional path-tracing integrator. It
// sweeps the sensor in tiles across a worker pool; each pixel owns its
// payload so workers never contend on pass memory.
type CPUPathTracer struct {
	Options Options
	Passes  RenderPasses

	// Denoiser configuration applied when Options.Denoise is set.
	Denoiser EATWTOptions

	logger log.Logger
	stats  FrameStats
}

func NewCPUPathTracer(opts Options) *CPUPathTracer {
	return &CPUPathTracer{
		Options:  opts,
		Denoiser: DefaultEATWTOptions(),
		logger:   log.New("renderer"),
	}
}

func (r *CPUPathTracer) Stats() FrameStats { return r.stats }

// frameContext bundles the per-frame immutable state shared by all workers.
type frameContext struct {
	scene  *scene.Scene
	cam    camera.Camera
	tlas   tracer.TLAS
	lights []light.Light
	view   types.Mat4d
}

type tile struct {
	x0, y0, x1, y1 int
}

// Render one frame. Blocks until every tile has completed; the pass buffers
// are valid only after a nil return.
func (r *CPUPathTracer) Render(cam camera.Camera, sc *scene.Scene) error {
	if cam == nil {
		return ErrCameraNotDefined
	}
	if sc == nil {
		return ErrSceneNotDefined
	}
	if r.Options.Integrator != Unidirectional {
		return ErrUnknownIntegrator
	}
	if r.Options.Samples < 1 {
		return ErrInvalidSampleCount
	}

	tlas, err := sc.BuildTLAS()
	if err != nil {
		return errors.Wrap(err, "renderer: building top-level structure")
	}

	width, height := cam.Resolution()
	r.Passes.SimulateLighting = r.Options.SimulateLighting
	r.Passes.SaveVelocity = r.Options.SaveVelocity
	r.Passes.SaveTriangleSize = r.Options.SaveTriangleSize
	r.Passes.Initialize(width, height)

	fc := &frameContext{
		scene:  sc,
		cam:    cam,
		tlas:   tlas,
		lights: sc.Lights(),
		view:   cam.ViewMatrix(),
	}

	tileSize := r.Options.TileSize
	if tileSize <= 0 {
		tileSize = defaultTileSize
	}
	numWorkers := r.Options.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	tiles := make([]tile, 0, ((width+tileSize-1)/tileSize)*((height+tileSize-1)/tileSize))
	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			tiles = append(tiles, tile{
				x0: x,
				y0: y,
				x1: min(x+tileSize, width),
				y1: min(y+tileSize, height),
			})
		}
	}

	r.logger.Noticef("rendering %dx%d frame: %d samples/pixel, %d bounces, %d tiles, %d workers",
		width, height, r.Options.Samples, r.Options.Bounces, len(tiles), numWorkers)

	var (
		totalSamples atomic.Uint64
		anomalies    atomic.Uint64
		maxSamples   atomic.Int64
	)

	start := time.Now()
	tileCh := make(chan tile)
	var group errgroup.Group
	for w := 0; w < numWorkers; w++ {
		workerID := w
		group.Go(func() error {
			rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(workerID)<<32))
			fc.tlas.Init()

			var (
				workerSamples   uint64
				workerAnomalies uint64
				workerMax       int
				lums            []float64
			)
			for t := range tileCh {
				for j := t.y0; j < t.y1; j++ {
					for i := t.x0; i < t.x1; i++ {
						payload, dropped := r.renderPixel(fc, i, j, rng, &lums)
						r.Passes.Update(&payload)

						workerSamples += uint64(payload.Count)
						workerAnomalies += dropped
						if payload.Count > workerMax {
							workerMax = payload.Count
						}
					}
				}
			}
			totalSamples.Add(workerSamples)
			anomalies.Add(workerAnomalies)
			for {
				cur := maxSamples.Load()
				if int64(workerMax) <= cur || maxSamples.CompareAndSwap(cur, int64(workerMax)) {
					break
				}
			}
			return nil
		})
	}
	for _, t := range tiles {
		tileCh <- t
	}
	close(tileCh)
	if err := group.Wait(); err != nil {
		return err
	}

	r.postProcess(fc, width, height)

	r.stats = FrameStats{
		RenderTime:         time.Since(start),
		Width:              width,
		Height:             height,
		Tiles:              len(tiles),
		Workers:            numWorkers,
		TotalSamples:       totalSamples.Load(),
		MaxSamplesUsed:     int(maxSamples.Load()),
		AvgSamplesPerPixel: float64(totalSamples.Load()) / float64(width*height),
		NumericAnomalies:   anomalies.Load(),
	}
	r.logger.Noticef("frame completed in %s (%.1f avg samples/pixel)",
		r.stats.RenderTime.Truncate(time.Millisecond), r.stats.AvgSamplesPerPixel)
	return nil
}

// renderPixel integrates one pixel to completion and returns its payload plus
// the number of samples dropped for non-finite radiance. The lums scratch
// slice is reused across pixels of the same worker.
func (r *CPUPathTracer) renderPixel(fc *frameContext, i, j int, rng *rand.Rand, lums *[]float64) (DataPayload, uint64) {
	payload := newDataPayload(i, j)
	px := camera.Pixel{I: i, J: j}

	var dropped uint64
	hits := 0
	*lums = (*lums)[:0]

	for s := 0; s < r.Options.Samples; s++ {
		payload.Sample = s

		var ray tracer.Ray
		if s == 0 {
			ray = fc.cam.PixelToRay(px)
		} else {
			ray = fc.cam.PixelToRayJittered(px, rng)
		}

		sample, hit := r.simulatePath(fc, ray, &payload, rng)
		if !sample.IsFinite() {
			dropped++
			continue
		}
		payload.Count++
		if hit {
			hits++
		}

		payload.TotalRadiance = payload.TotalRadiance.Add(sample)

		if !r.Options.SimulateLighting {
			break
		}
		if r.Options.AdaptiveSampling {
			*lums = append(*lums, sample.Luminance())
			if hits == 0 && payload.Count >= r.Options.SamplesToDetectMiss {
				break
			}
			if r.Options.SamplesPerBatch > 0 && payload.Count%r.Options.SamplesPerBatch == 0 {
				mean, std := stat.MeanStdDev(*lums, nil)
				halfWidth := confidenceZ * std / math.Sqrt(float64(len(*lums)))
				if mean > 0 && halfWidth <= r.Options.SamplingTolerance*mean {
					break
				}
			}
		}
	}

	if payload.Count > 0 {
		payload.Alpha = float32(hits) / float32(payload.Count)
	}
	return payload, dropped
}

// simulatePath traces one complete light path for a pixel and accumulates its
// contribution into the payload's radiance sums. Returns the path's total
// radiance and whether the primary ray hit geometry.
func (r *CPUPathTracer) simulatePath(fc *frameContext, ray tracer.Ray, payload *DataPayload, rng *rand.Rand) (types.Spectrum, bool) {
	var total types.Spectrum
	throughput := types.Gray(1)
	primaryHit := false

	for bounce := 0; bounce <= r.Options.Bounces; bounce++ {
		payload.Bounce = bounce
		fc.tlas.Intersect(&ray)

		if math.IsInf(ray.Hit.T, 1) {
			if r.Options.ShowBackground {
				contrib := throughput.Mul(fc.scene.BackgroundRadiance(ray.Direction))
				total = total.Add(contrib)
				r.accumulate(payload, bounce, contrib)
			}
			break
		}
		if bounce == 0 {
			primaryHit = true
		}

		sp, err := r.resolveHit(fc, &ray)
		if err != nil {
			// Stale handle in the hit record; drop the path.
			r.logger.Warningf("dropping path: %v", err)
			break
		}

		if bounce == 0 && payload.FirstHit {
			r.capturePrimaryHit(fc, payload, &ray, sp)
		}
		if !r.Options.SimulateLighting {
			break
		}

		if bounce == 0 && fc.scene.HasAmbient() {
			contrib := throughput.Mul(sp.mat.ApplyAmbient(fc.scene.Ambient(), sp.albedo, sp.uv))
			total = total.Add(contrib)
			r.accumulate(payload, bounce, contrib)
		}

		for _, l := range fc.lights {
			contrib := r.sampleLight(fc, l, sp, throughput, rng)
			if contrib.IsBlack() {
				continue
			}
			total = total.Add(contrib)
			r.accumulate(payload, bounce, contrib)
		}

		if bounce == r.Options.Bounces {
			break
		}

		dir, pdf := sp.mat.SampleDirection(sp.view, sp.shadingNormal, sp.frame, sp.uv, rng)
		if pdf <= 0 {
			break
		}
		cos := float64(sp.shadingNormal.Dot(dir))
		if cos <= 0 {
			break
		}
		f := sp.mat.EvaluateBSDF(sp.uv, sp.shadingNormal, dir, sp.view, sp.albedo)
		if f.IsBlack() {
			break
		}

		// Weight the continuation against the combined light-sampling
		// density for the same direction so direct light reachable by
		// both strategies is not counted twice.
		worldDir := dir.Vec3d().Normalize()
		lightPDF := 0.0
		for _, l := range fc.lights {
			if !l.Delta() {
				lightPDF += l.PDF(sp.origin, worldDir)
			}
		}
		weight := powerHeuristic(pdf, lightPDF)

		throughput = throughput.Mul(f).Scale(cos * weight / pdf)
		if throughput.IsBlack() {
			break
		}
		ray = tracer.NewRay(sp.origin, worldDir)
	}

	return total, primaryHit
}

// sampleLight performs one next-event-estimation draw towards a light and
// returns the weighted, throughput-scaled contribution. Black means the draw
// was occluded, back-facing or unusable.
func (r *CPUPathTracer) sampleLight(fc *frameContext, l light.Light, sp *surfacePoint, throughput types.Spectrum, rng *rand.Rand) types.Spectrum {
	s := l.Sample(sp.origin, rng)
	if s.PDF <= 0 || s.Radiance.IsBlack() {
		return types.Spectrum{}
	}

	lDir := types.V3(s.Ray.Direction)
	cos := float64(sp.shadingNormal.Dot(lDir))
	if cos <= 0 {
		return types.Spectrum{}
	}

	// Cap the occlusion search at the light so geometry behind it cannot
	// shadow the point.
	shadow := s.Ray
	shadow.Hit.T = s.Distance
	fc.tlas.Intersect(&shadow)
	if shadow.Hit.T < s.Distance {
		return types.Spectrum{}
	}

	weight := 1.0
	if !l.Delta() {
		bsdfPDF := sp.mat.PDF(sp.view, sp.shadingNormal, lDir, sp.frame, sp.uv)
		weight = powerHeuristic(s.PDF, bsdfPDF)
	}

	f := sp.mat.EvaluateBSDF(sp.uv, sp.shadingNormal, lDir, sp.view, sp.albedo)
	return throughput.Mul(f).Mul(s.Radiance).Scale(cos * weight / s.PDF)
}

// surfacePoint is a hit record resolved into world space with its material
// and shading frame ready for evaluation.
type surfacePoint struct {
	mesh *geometry.Mesh
	inst *scene.Instance
	mat  material.Material

	materialID types.MaterialID

	// World-space vertex positions of the hit triangle.
	pos [3]types.Vec3d
	// World-space unit vertex normals.
	nrm [3]types.Vec3

	// Barycentric hit point, world space.
	point types.Vec3d
	// Offset ray origin for secondary rays, terminator-corrected.
	origin types.Vec3d

	geomNormal    types.Vec3
	shadingNormal types.Vec3
	frame         types.Mat3f

	uv     types.Vec2
	albedo types.Spectrum

	// Unit direction back towards the previous path vertex.
	view types.Vec3
}

// resolveHit turns the traversal hit record into a world-space shading point.
// Handles carried by the hit are resolved against the scene registries.
func (r *CPUPathTracer) resolveHit(fc *frameContext, ray *tracer.Ray) (*surfacePoint, error) {
	hit := &ray.Hit

	mesh := fc.scene.Mesh(hit.Mesh)
	inst := fc.scene.Instance(hit.Instance)
	if mesh == nil || inst == nil {
		return nil, errors.Errorf("hit references unknown mesh %d or instance %d", hit.Mesh, hit.Instance)
	}
	matID := mesh.MaterialAt(hit.MaterialSlot)
	mat := fc.scene.Material(matID)
	if mat == nil {
		return nil, errors.Errorf("hit references unknown material %d", matID)
	}

	sp := &surfacePoint{
		mesh:       mesh,
		inst:       inst,
		mat:        mat,
		materialID: matID,
	}

	m := inst.Transform()
	nm := types.NormalMatrix(m)
	for k := 0; k < 3; k++ {
		sp.pos[k] = types.TransformPoint(m, hit.Vert[k].Position)
		sp.nrm[k] = types.V3(nm.Mul3x1(hit.Vert[k].Normal.Vec3d())).Normalize()
	}
	sp.geomNormal = types.V3(nm.Mul3x1(hit.FaceNormal.Vec3d())).Normalize()

	w := hit.W
	sp.point = sp.pos[0].Mul(w[0]).Add(sp.pos[1].Mul(w[1])).Add(sp.pos[2].Mul(w[2]))
	sp.uv = types.XY(
		float32(w[0])*hit.Vert[0].UV[0]+float32(w[1])*hit.Vert[1].UV[0]+float32(w[2])*hit.Vert[2].UV[0],
		float32(w[0])*hit.Vert[0].UV[1]+float32(w[1])*hit.Vert[1].UV[1]+float32(w[2])*hit.Vert[2].UV[1],
	)
	sp.albedo = hit.Vert[0].Albedo.Scale(w[0]).
		Add(hit.Vert[1].Albedo.Scale(w[1])).
		Add(hit.Vert[2].Albedo.Scale(w[2]))

	sp.view = types.V3(ray.Direction.Mul(-1))

	// Shade both sides: flip the frame when the ray arrives from behind.
	if sp.geomNormal.Dot(sp.view) < 0 {
		sp.geomNormal = sp.geomNormal.Mul(-1)
		for k := 0; k < 3; k++ {
			sp.nrm[k] = sp.nrm[k].Mul(-1)
		}
	}

	interpNormal := sp.nrm[0].Mul(float32(w[0])).
		Add(sp.nrm[1].Mul(float32(w[1]))).
		Add(sp.nrm[2].Mul(float32(w[2]))).Normalize()
	if !mesh.SmoothShading() {
		interpNormal = sp.geomNormal
	}

	frame := material.TangentToWorld(interpNormal)
	sp.shadingNormal = mat.Normal(sp.uv, interpNormal, frame)
	if sp.shadingNormal != interpNormal {
		frame = material.TangentToWorld(sp.shadingNormal)
	}
	sp.frame = frame

	shadingOrigin := sp.point
	if mesh.SmoothShading() {
		shadingOrigin = computeShadingPoint(sp, w)
	}
	sp.origin = tracer.OffsetPoint(shadingOrigin, sp.geomNormal)

	return sp, nil
}

// computeShadingPoint mitigates the shadow-terminator artifact on smooth
// meshes: the hit point is projected onto each vertex's tangent plane and the
// projections blended barycentrically. The blend is only used when it stays
// on the outside of the true surface.
func computeShadingPoint(sp *surfacePoint, w [3]float64) types.Vec3d {
	var blended types.Vec3d
	for k := 0; k < 3; k++ {
		n := sp.nrm[k].Vec3d()
		toPoint := sp.point.Sub(sp.pos[k])
		projected := sp.point.Sub(n.Mul(toPoint.Dot(n)))
		blended = blended.Add(projected.Mul(w[k]))
	}
	if blended.Sub(sp.point).Dot(sp.geomNormal.Vec3d()) < 0 {
		return sp.point
	}
	return blended
}

// capturePrimaryHit fills the payload's auxiliary fields from the primary
// ray's first recorded hit. Only the first hitting sample writes them.
func (r *CPUPathTracer) capturePrimaryHit(fc *frameContext, payload *DataPayload, ray *tracer.Ray, sp *surfacePoint) {
	payload.FirstHit = false

	payload.Depth = ray.Hit.T
	payload.Albedo = sp.mat.Albedo(sp.uv)
	payload.NormalGlobal = sp.shadingNormal
	payload.NormalCamera = types.V3(types.TransformDirection(fc.view, sp.shadingNormal.Vec3d())).Normalize()

	payload.InstanceID = ray.Hit.Instance
	payload.MeshID = ray.Hit.Mesh
	payload.TriangleID = ray.Hit.TriangleID
	payload.MaterialID = sp.materialID

	if r.Options.SaveVelocity {
		prior := sp.inst.PriorTransform()
		tri := sp.mesh.Triangle(int(ray.Hit.TriangleID))
		var local types.Vec3d
		for k := 0; k < 3; k++ {
			local = local.Add(tri.V[k].Position.Mul(ray.Hit.W[k]))
		}
		priorWorld := types.TransformPoint(prior, local)
		payload.VelocityGlobal = types.V3(sp.point.Sub(priorWorld))
		payload.VelocityCamera = types.V3(
			types.TransformPoint(fc.view, sp.point).Sub(types.TransformPoint(fc.view, priorWorld)))
	}
	if r.Options.SaveTriangleSize {
		e1 := sp.pos[1].Sub(sp.pos[0])
		e2 := sp.pos[2].Sub(sp.pos[0])
		area := 0.5 * e1.Cross(e2).Len()
		payload.TriangleSize = float32(math.Sqrt(area))
	}
}

func (r *CPUPathTracer) accumulate(payload *DataPayload, bounce int, contrib types.Spectrum) {
	if bounce == 0 {
		payload.DirectRadiance = payload.DirectRadiance.Add(contrib)
	} else {
		payload.IndirectRadiance = payload.IndirectRadiance.Add(contrib)
	}
}

// postProcess runs the frame-level stages after integration: denoising,
// radiometric conversion and point-spread convolution.
func (r *CPUPathTracer) postProcess(fc *frameContext, width, height int) {
	if !r.Options.SimulateLighting {
		return
	}

	if r.Options.Denoise {
		start := time.Now()
		denoiseSpectrum(r.Passes.DirectRadiance, r.Passes.Albedo, r.Passes.Depth, r.Passes.NormalGlobal, r.Denoiser)
		denoiseSpectrum(r.Passes.IndirectRadiance, r.Passes.Albedo, r.Passes.Depth, r.Passes.NormalGlobal, r.Denoiser)
		for idx := range r.Passes.TotalRadiance.Pix {
			r.Passes.TotalRadiance.Pix[idx] = r.Passes.DirectRadiance.Pix[idx].
				Add(r.Passes.IndirectRadiance.Pix[idx])
		}
		r.logger.Debugf("denoised frame in %s", time.Since(start).Truncate(time.Millisecond))
	}

	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			power := fc.cam.CalculateReceivedPower(r.Passes.TotalRadiance.At(i, j), camera.Pixel{I: i, J: j})
			r.Passes.ReceivedPower.Set(i, j, power)
		}
	}

	if fc.cam.HasPSF() {
		convolvePSF(r.Passes.ReceivedPower, fc.cam.PSF().Kernel())
	}
}

// convolvePSF convolves a spectrum plane with an odd-sized kernel, clamping
// taps at the frame border.
func convolvePSF(buf *Buffer[types.Spectrum], kernel [][]float64) {
	radius := len(kernel) / 2
	out := make([]types.Spectrum, len(buf.Pix))
	for j := 0; j < buf.H; j++ {
		for i := 0; i < buf.W; i++ {
			var sum types.Spectrum
			for kj := -radius; kj <= radius; kj++ {
				for ki := -radius; ki <= radius; ki++ {
					si := clampInt(i+ki, 0, buf.W-1)
					sj := clampInt(j+kj, 0, buf.H-1)
					sum = sum.Add(buf.At(si, sj).Scale(kernel[kj+radius][ki+radius]))
				}
			}
			out[j*buf.W+i] = sum
		}
	}
	buf.Pix = out
}

// powerHeuristic is the beta=2 multiple-importance weight for a sample drawn
// with density a against a competing strategy with density b.
func powerHeuristic(a, b float64) float64 {
	a2 := a * a
	return a2 / (a2 + b*b)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
