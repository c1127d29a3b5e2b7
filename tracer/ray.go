package tracer

import (
	"math"

	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/types"
)

// Interaction records the nearest hit found so far along a ray. Distances are
// world units; the mesh and instance fields are registry handles resolved by
// the integrator, never touched by traversal itself.
type Interaction struct {
	// Nearest hit distance. +Inf until a hit is recorded; a miss is not an
	// error, it is this sentinel.
	T float64

	// Barycentric weights of the three hit vertices.
	W [3]float64

	// The hit triangle's vertices, in the mesh local frame and in the
	// triangle's construction winding.
	Vert [3]geometry.Vertex

	// Unit geometric normal in the mesh local frame.
	FaceNormal types.Vec3

	TriangleID   uint32
	MaterialSlot uint32

	Mesh     types.MeshID
	Instance types.InstanceID
}

// Ray carries an origin/direction pair plus the reciprocal direction used by
// the slab test, and accumulates its closest hit in place.
type Ray struct {
	Origin              types.Vec3d
	Direction           types.Vec3d
	ReciprocalDirection types.Vec3d

	Hit Interaction
}

// Create a ray with an empty hit record. Direction is expected to be unit
// length in the frame the ray will be traced in.
func NewRay(origin, direction types.Vec3d) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		ReciprocalDirection: types.Vec3d{
			1.0 / direction[0],
			1.0 / direction[1],
			1.0 / direction[2],
		},
		Hit: Interaction{
			T:        math.Inf(1),
			Mesh:     types.NoMesh,
			Instance: types.NoInstance,
		},
	}
}

// Minimum accepted hit distance. Suppresses self-intersection of a surface
// with its own outgoing rays.
const intersectEpsilon = 1e-9

// OffsetPoint nudges a surface point off the surface along the geometric
// normal, scaled with the magnitude of the point so the offset survives the
// float cancellation of large scene coordinates.
func OffsetPoint(p types.Vec3d, n types.Vec3) types.Vec3d {
	scale := 1e-7 * math.Max(1.0, p.Len())
	return p.Add(n.Vec3d().Mul(scale))
}
