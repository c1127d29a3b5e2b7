package types

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// World-space math runs in double precision regardless of the precision of
// the mesh attributes it was derived from. Large scene coordinates (planetary
// terrain, spacecraft ranges) cancel catastrophically in single precision.
type Vec3d = mgl64.Vec3
type Vec4d = mgl64.Vec4
type Mat3d = mgl64.Mat3
type Mat4d = mgl64.Mat4

// Single-precision 3x3 used for tangent-space shading frames.
type Mat3f = mgl32.Mat3

// Widen a single-precision vector.
func (v Vec3) Vec3d() Vec3d {
	return Vec3d{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Narrow a double-precision vector.
func V3(v Vec3d) Vec3 {
	return Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Calc per-component minimum of two vectors.
func MinVec3d(a, b Vec3d) Vec3d {
	return Vec3d{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

// Calc per-component maximum of two vectors.
func MaxVec3d(a, b Vec3d) Vec3d {
	return Vec3d{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// Transform a point by an affine matrix (w = 1).
func TransformPoint(m Mat4d, p Vec3d) Vec3d {
	out := m.Mul4x1(p.Vec4(1))
	return Vec3d{out[0], out[1], out[2]}
}

// Transform a direction by an affine matrix (w = 0). The result is not
// normalized; callers that need world units must divide by its length.
func TransformDirection(m Mat4d, d Vec3d) Vec3d {
	out := m.Mul4x1(d.Vec4(0))
	return Vec3d{out[0], out[1], out[2]}
}

// Matrix that maps surface normals through the given point transform. For
// rigid or uniformly scaled transforms this equals the rotation block.
func NormalMatrix(m Mat4d) Mat3d {
	return m.Mat3().Inv().Transpose()
}
