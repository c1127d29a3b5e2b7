package geometry

import "github.com/crgnam/vira-sub001/types"

// Triangle is the immutable per-face record consumed by the acceleration
// structures. Everything derivable from the vertex buffer is precomputed
// here once per mesh rebuild: the unnormalized face normal, the two edge
// vectors used by the barycentric intersection test and the centroid used
// for split-plane selection.
type Triangle struct {
	V [3]Vertex

	// Cross(E1, E2); unnormalized so its length doubles as twice the
	// triangle area.
	FaceNormal types.Vec3d

	E1, E2   types.Vec3d
	Centroid types.Vec3d

	// Index into the owning mesh's local material cache, not a global id.
	MaterialSlot uint32

	SmoothShading bool
}

func makeTriangle(v0, v1, v2 Vertex, materialSlot uint32, smooth bool) Triangle {
	e1 := v1.Position.Sub(v0.Position)
	e2 := v2.Position.Sub(v0.Position)
	return Triangle{
		V:             [3]Vertex{v0, v1, v2},
		FaceNormal:    e1.Cross(e2),
		E1:            e1,
		E2:            e2,
		Centroid:      v0.Position.Add(v1.Position).Add(v2.Position).Mul(1.0 / 3.0),
		MaterialSlot:  materialSlot,
		SmoothShading: smooth,
	}
}

// Area of the triangle in world units squared.
func (t *Triangle) Area() float64 {
	return 0.5 * t.FaceNormal.Len()
}
