package tracer

import (
	"math"

	"github.com/crgnam/vira-sub001/types"
)

// AABB is a growable axis-aligned box. The zero value is the empty box
// (min = +Inf, max = -Inf), which is the identity element for Grow.
type AABB struct {
	min types.Vec3d
	max types.Vec3d
}

// Create an empty box.
func NewAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		min: types.Vec3d{inf, inf, inf},
		max: types.Vec3d{-inf, -inf, -inf},
	}
}

// Create a box spanning the given corners.
func NewAABBFromCorners(min, max types.Vec3d) AABB {
	return AABB{min: min, max: max}
}

func (b AABB) Min() types.Vec3d { return b.min }
func (b AABB) Max() types.Vec3d { return b.max }

func (b *AABB) Extent() types.Vec3d { return b.max.Sub(b.min) }
func (b *AABB) Center() types.Vec3d { return b.min.Add(b.max).Mul(0.5) }

// Report whether the box contains no points.
func (b *AABB) IsEmpty() bool {
	return b.min[0] > b.max[0] || b.min[1] > b.max[1] || b.min[2] > b.max[2]
}

// Grow the box to contain a point. Monotonic: the box only ever expands.
func (b *AABB) GrowPoint(p types.Vec3d) {
	b.min = types.MinVec3d(b.min, p)
	b.max = types.MaxVec3d(b.max, p)
}

// Grow the box to contain another box. No-op when other is empty.
func (b *AABB) Grow(other AABB) {
	if other.IsEmpty() {
		return
	}
	b.min = types.MinVec3d(b.min, other.min)
	b.max = types.MaxVec3d(b.max, other.max)
}

// Area returns the half surface area used as the SAH cost proxy. Zero for
// empty boxes.
func (b *AABB) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	e := b.Extent()
	return e[0]*e[1] + e[1]*e[2] + e[2]*e[0]
}

// Intersect runs the slab test against the ray. Returns the entry distance,
// or +Inf when the ray misses or the entry point cannot beat the ray's
// current closest hit.
func (b *AABB) Intersect(ray *Ray) float64 {
	tx1 := (b.min[0] - ray.Origin[0]) * ray.ReciprocalDirection[0]
	tx2 := (b.max[0] - ray.Origin[0]) * ray.ReciprocalDirection[0]
	tmin := math.Min(tx1, tx2)
	tmax := math.Max(tx1, tx2)

	ty1 := (b.min[1] - ray.Origin[1]) * ray.ReciprocalDirection[1]
	ty2 := (b.max[1] - ray.Origin[1]) * ray.ReciprocalDirection[1]
	tmin = math.Max(tmin, math.Min(ty1, ty2))
	tmax = math.Min(tmax, math.Max(ty1, ty2))

	tz1 := (b.min[2] - ray.Origin[2]) * ray.ReciprocalDirection[2]
	tz2 := (b.max[2] - ray.Origin[2]) * ray.ReciprocalDirection[2]
	tmin = math.Max(tmin, math.Min(tz1, tz2))
	tmax = math.Min(tmax, math.Max(tz1, tz2))

	if tmax >= tmin && tmin < ray.Hit.T && tmax > 0 {
		return tmin
	}
	return math.Inf(1)
}

// Corners returns the 8 box corners in a fixed order (x fastest, then y,
// then z).
func (b *AABB) Corners() [8]types.Vec3d {
	var out [8]types.Vec3d
	for i := 0; i < 8; i++ {
		out[i] = types.Vec3d{
			pick(i&1 == 0, b.min[0], b.max[0]),
			pick(i&2 == 0, b.min[1], b.max[1]),
			pick(i&4 == 0, b.min[2], b.max[2]),
		}
	}
	return out
}

// Faces returns the 6 planar quads of the box. Each quad winds counter
// clockwise as seen from outside the box.
func (b *AABB) Faces() [6][4]types.Vec3d {
	c := b.Corners()
	return [6][4]types.Vec3d{
		{c[0], c[4], c[6], c[2]}, // -x
		{c[1], c[3], c[7], c[5]}, // +x
		{c[0], c[1], c[5], c[4]}, // -y
		{c[2], c[6], c[7], c[3]}, // +y
		{c[0], c[2], c[3], c[1]}, // -z
		{c[4], c[5], c[7], c[6]}, // +z
	}
}

// ApplyTransformation transforms all 8 corners and grows a fresh box around
// them. Correct for any affine transform, though not tight under rotation.
func (b AABB) ApplyTransformation(m types.Mat4d) AABB {
	if b.IsEmpty() {
		return NewAABB()
	}
	out := NewAABB()
	for _, corner := range b.Corners() {
		out.GrowPoint(types.TransformPoint(m, corner))
	}
	return out
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
