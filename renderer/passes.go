package renderer

import (
	"math"

	"github.com/crgnam/vira-sub001/types"
)

// Buffer is a dense row-major image plane of one pass.
type Buffer[T any] struct {
	W, H int
	Pix  []T
}

func NewBuffer[T any](w, h int) *Buffer[T] {
	return &Buffer[T]{W: w, H: h, Pix: make([]T, w*h)}
}

func (b *Buffer[T]) At(i, j int) T     { return b.Pix[j*b.W+i] }
func (b *Buffer[T]) Set(i, j int, v T) { b.Pix[j*b.W+i] = v }

// DataPayload carries everything one pixel accumulates during integration.
// Each pixel owns exactly one payload, so no cross-pixel synchronization is
// needed. Auxiliary fields are captured only on the primary ray's first hit.
type DataPayload struct {
	I, J int

	// Number of samples actually taken.
	Count int

	Depth float64
	Alpha float32

	TotalRadiance    types.Spectrum
	DirectRadiance   types.Spectrum
	IndirectRadiance types.Spectrum

	Albedo types.Spectrum

	NormalGlobal types.Vec3
	NormalCamera types.Vec3

	VelocityGlobal types.Vec3
	VelocityCamera types.Vec3

	InstanceID types.InstanceID
	MeshID     types.MeshID
	TriangleID uint32
	MaterialID types.MaterialID

	TriangleSize float32

	// Tracking of the in-flight path.
	Bounce   int
	Sample   int
	FirstHit bool
}

func newDataPayload(i, j int) DataPayload {
	return DataPayload{
		I:            i,
		J:            j,
		Depth:        math.Inf(1),
		InstanceID:   types.NoInstance,
		MeshID:       types.NoMesh,
		TriangleID:   math.MaxUint32,
		MaterialID:   types.NoMaterial,
		TriangleSize: float32(math.Inf(1)),
		FirstHit:     true,
	}
}

// RenderPasses are the typed image planes one render call writes. Required
// planes are always allocated; the optional ones only when their feature is
// enabled for the call.
type RenderPasses struct {
	Depth *Buffer[float32]
	Alpha *Buffer[float32]

	Albedo       *Buffer[types.Spectrum]
	NormalGlobal *Buffer[types.Vec3]
	NormalCamera *Buffer[types.Vec3]

	InstanceID *Buffer[types.InstanceID]
	MeshID     *Buffer[types.MeshID]
	TriangleID *Buffer[uint32]
	MaterialID *Buffer[types.MaterialID]

	SimulateLighting bool
	ReceivedPower    *Buffer[types.Spectrum]
	TotalRadiance    *Buffer[types.Spectrum]
	DirectRadiance   *Buffer[types.Spectrum]
	IndirectRadiance *Buffer[types.Spectrum]

	SaveVelocity   bool
	VelocityGlobal *Buffer[types.Vec3]
	VelocityCamera *Buffer[types.Vec3]

	SaveTriangleSize bool
	TriangleSize     *Buffer[float32]
}

// Initialize allocates all enabled planes at the given resolution. Any
// previous contents are discarded; pass lifetime is one render call.
func (rp *RenderPasses) Initialize(w, h int) {
	rp.Depth = NewBuffer[float32](w, h)
	rp.Alpha = NewBuffer[float32](w, h)
	rp.Albedo = NewBuffer[types.Spectrum](w, h)
	rp.NormalGlobal = NewBuffer[types.Vec3](w, h)
	rp.NormalCamera = NewBuffer[types.Vec3](w, h)
	rp.InstanceID = NewBuffer[types.InstanceID](w, h)
	rp.MeshID = NewBuffer[types.MeshID](w, h)
	rp.TriangleID = NewBuffer[uint32](w, h)
	rp.MaterialID = NewBuffer[types.MaterialID](w, h)

	if rp.SimulateLighting {
		rp.ReceivedPower = NewBuffer[types.Spectrum](w, h)
		rp.TotalRadiance = NewBuffer[types.Spectrum](w, h)
		rp.DirectRadiance = NewBuffer[types.Spectrum](w, h)
		rp.IndirectRadiance = NewBuffer[types.Spectrum](w, h)
	}
	if rp.SaveVelocity {
		rp.VelocityGlobal = NewBuffer[types.Vec3](w, h)
		rp.VelocityCamera = NewBuffer[types.Vec3](w, h)
	}
	if rp.SaveTriangleSize {
		rp.TriangleSize = NewBuffer[float32](w, h)
	}
}

// Update writes a finalized pixel payload into the planes. Radiance fields
// are sample sums; they are averaged by the payload count here.
func (rp *RenderPasses) Update(p *DataPayload) {
	rp.Depth.Set(p.I, p.J, float32(p.Depth))
	rp.Alpha.Set(p.I, p.J, p.Alpha)
	rp.Albedo.Set(p.I, p.J, p.Albedo)
	rp.NormalGlobal.Set(p.I, p.J, p.NormalGlobal)
	rp.NormalCamera.Set(p.I, p.J, p.NormalCamera)
	rp.InstanceID.Set(p.I, p.J, p.InstanceID)
	rp.MeshID.Set(p.I, p.J, p.MeshID)
	rp.TriangleID.Set(p.I, p.J, p.TriangleID)
	rp.MaterialID.Set(p.I, p.J, p.MaterialID)

	inv := 1.0
	if p.Count > 0 {
		inv = 1.0 / float64(p.Count)
	}
	if rp.SimulateLighting {
		rp.TotalRadiance.Set(p.I, p.J, p.TotalRadiance.Scale(inv))
		rp.DirectRadiance.Set(p.I, p.J, p.DirectRadiance.Scale(inv))
		rp.IndirectRadiance.Set(p.I, p.J, p.IndirectRadiance.Scale(inv))
	}
	if rp.SaveVelocity {
		rp.VelocityGlobal.Set(p.I, p.J, p.VelocityGlobal)
		rp.VelocityCamera.Set(p.I, p.J, p.VelocityCamera)
	}
	if rp.SaveTriangleSize {
		rp.TriangleSize.Set(p.I, p.J, p.TriangleSize)
	}
}
