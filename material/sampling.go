package material

import (
	"math"
	"math/rand"

	"github.com/crgnam/vira-sub001/types"
)

// TangentToWorld builds an orthonormal shading frame around the given unit
// normal. Column 2 is the normal itself; columns 0 and 1 span the tangent
// plane (branchless construction, stable for all normal orientations).
func TangentToWorld(n types.Vec3) types.Mat3f {
	sign := float32(1)
	if n[2] < 0 {
		sign = -1
	}
	a := -1.0 / (sign + n[2])
	b := n[0] * n[1] * a

	tangent := types.Vec3{1 + sign*n[0]*n[0]*a, sign * b, -sign * n[0]}
	bitangent := types.Vec3{b, sign + n[1]*n[1]*a, -n[1]}

	return types.Mat3f{
		tangent[0], tangent[1], tangent[2],
		bitangent[0], bitangent[1], bitangent[2],
		n[0], n[1], n[2],
	}
}

// cosineSampleHemisphere draws a direction in the local frame (z up) with
// density cos(theta)/pi.
func cosineSampleHemisphere(rng *rand.Rand) (types.Vec3, float64) {
	u1 := rng.Float64()
	u2 := rng.Float64()

	r := math.Sqrt(u1)
	phi := 2 * math.Pi * u2

	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u1))

	return types.Vec3{float32(x), float32(y), float32(z)}, z / math.Pi
}

// CosineSampler provides the cosine-weighted hemisphere strategy shared by
// diffuse-leaning materials. Embed it to satisfy the sampling half of the
// Material interface.
type CosineSampler struct{}

func (CosineSampler) SampleDirection(v, n types.Vec3, tangentToWorld types.Mat3f, uv types.Vec2, rng *rand.Rand) (types.Vec3, float64) {
	local, pdf := cosineSampleHemisphere(rng)
	world := tangentToWorld.Mul3x1(mgl3(local))
	return types.Vec3{world[0], world[1], world[2]}, pdf
}

func (CosineSampler) PDF(v, n, l types.Vec3, tangentToWorld types.Mat3f, uv types.Vec2) float64 {
	cos := float64(n.Dot(l))
	if cos <= 0 {
		return 0
	}
	return cos / math.Pi
}

func mgl3(v types.Vec3) [3]float32 {
	return [3]float32{v[0], v[1], v[2]}
}
