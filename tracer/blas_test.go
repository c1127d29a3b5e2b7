package tracer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/types"
)

// randomTriangleMesh scatters numTris small triangles inside [-10,10]^3.
func randomTriangleMesh(numTris int, rng *rand.Rand) *geometry.Mesh {
	verts := make([]geometry.Vertex, 0, numTris*3)
	indices := make([]uint32, 0, numTris*3)
	slots := make([]uint32, numTris)

	for i := 0; i < numTris; i++ {
		center := types.Vec3d{
			rng.Float64()*20 - 10,
			rng.Float64()*20 - 10,
			rng.Float64()*20 - 10,
		}
		for k := 0; k < 3; k++ {
			offset := types.Vec3d{
				rng.Float64() - 0.5,
				rng.Float64() - 0.5,
				rng.Float64() - 0.5,
			}
			verts = append(verts, geometry.Vertex{
				Position: center.Add(offset),
				Normal:   types.XYZ(0, 1, 0),
			})
			indices = append(indices, uint32(len(indices)))
		}
	}

	m := geometry.NewMesh()
	m.SetVertices(verts)
	m.SetIndices(indices, slots)
	return m
}

func singleTriangleMesh(v0, v1, v2 types.Vec3d) *geometry.Mesh {
	normal := types.XYZ(0, 0, 1)
	m := geometry.NewMesh()
	m.SetVertices([]geometry.Vertex{
		{Position: v0, Normal: normal},
		{Position: v1, Normal: normal},
		{Position: v2, Normal: normal},
	})
	m.SetIndices([]uint32{0, 1, 2}, []uint32{0})
	return m
}

func TestBLASEmptyMesh(t *testing.T) {
	_, err := NewSoftwareBLAS(geometry.NewMesh())
	if err != ErrEmptyMesh {
		t.Fatalf("expected ErrEmptyMesh; got %v", err)
	}
}

func TestBLASLeafPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	mesh := randomTriangleMesh(256, rng)

	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	// Every triangle index must appear exactly once across the leaves,
	// and each leaf range must stay inside its node bounds.
	seen := make(map[uint32]int)
	for i := uint32(0); i < blas.nodesUsed; i++ {
		node := &blas.nodes[i]
		if !node.IsLeaf() {
			continue
		}
		for j := node.LeftFirst; j < node.LeftFirst+node.TriCount; j++ {
			triID := blas.triIdx[j]
			seen[triID]++

			tri := mesh.Triangle(int(triID))
			for k := 0; k < 3; k++ {
				p := tri.V[k].Position
				min, max := node.AABB.Min(), node.AABB.Max()
				for axis := 0; axis < 3; axis++ {
					if p[axis] < min[axis]-1e-9 || p[axis] > max[axis]+1e-9 {
						t.Fatalf("triangle %d vertex outside leaf bounds on axis %d", triID, axis)
					}
				}
			}
		}
	}
	if len(seen) != mesh.NumTriangles() {
		t.Fatalf("expected %d distinct triangles across leaves; got %d", mesh.NumTriangles(), len(seen))
	}
	for triID, count := range seen {
		if count != 1 {
			t.Fatalf("expected triangle %d to appear once; appeared %d times", triID, count)
		}
	}
}

func TestBLASTraversalMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	mesh := randomTriangleMesh(128, rng)

	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	for trial := 0; trial < 200; trial++ {
		origin := types.Vec3d{
			rng.Float64()*30 - 15,
			rng.Float64()*30 - 15,
			rng.Float64()*30 - 15,
		}
		dir := types.Vec3d{
			rng.Float64()*2 - 1,
			rng.Float64()*2 - 1,
			rng.Float64()*2 - 1,
		}.Normalize()

		ray := NewRay(origin, dir)
		blas.Intersect(&ray)

		brute := NewRay(origin, dir)
		for i := 0; i < mesh.NumTriangles(); i++ {
			blas.intersectTriangle(&brute, uint32(i))
		}

		if math.IsInf(ray.Hit.T, 1) != math.IsInf(brute.Hit.T, 1) {
			t.Fatalf("trial %d: traversal and brute force disagree on hit/miss", trial)
		}
		if !math.IsInf(ray.Hit.T, 1) {
			if math.Abs(ray.Hit.T-brute.Hit.T) > 1e-9 {
				t.Fatalf("trial %d: expected hit distance %f; got %f", trial, brute.Hit.T, ray.Hit.T)
			}
			if ray.Hit.TriangleID != brute.Hit.TriangleID {
				t.Fatalf("trial %d: expected triangle %d; got %d", trial, brute.Hit.TriangleID, ray.Hit.TriangleID)
			}
		}
	}
}

func TestBLASHitRecord(t *testing.T) {
	mesh := singleTriangleMesh(
		types.Vec3d{-1, -1, 0},
		types.Vec3d{1, -1, 0},
		types.Vec3d{0, 1, 0},
	)
	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	ray := NewRay(types.Vec3d{0, -0.25, -3}, types.Vec3d{0, 0, 1})
	blas.Intersect(&ray)

	if math.IsInf(ray.Hit.T, 1) {
		t.Fatalf("expected perpendicular ray to hit the triangle")
	}
	if math.Abs(ray.Hit.T-3) > 1e-12 {
		t.Fatalf("expected hit distance 3; got %f", ray.Hit.T)
	}
	wSum := ray.Hit.W[0] + ray.Hit.W[1] + ray.Hit.W[2]
	if math.Abs(wSum-1) > 1e-12 {
		t.Fatalf("expected barycentric weights to sum to 1; got %f", wSum)
	}
	if got := ray.Hit.FaceNormal.Len(); math.Abs(float64(got)-1) > 1e-5 {
		t.Fatalf("expected unit face normal; got length %f", got)
	}

	// Re-tracing with a closer recorded hit must not overwrite it.
	ray = NewRay(types.Vec3d{0, -0.25, -3}, types.Vec3d{0, 0, 1})
	ray.Hit.T = 1
	blas.Intersect(&ray)
	if ray.Hit.T != 1 {
		t.Fatalf("expected closer recorded hit to survive; got %f", ray.Hit.T)
	}
}

func TestBLASRebuildTracksGeneration(t *testing.T) {
	mesh := singleTriangleMesh(
		types.Vec3d{-1, -1, 0},
		types.Vec3d{1, -1, 0},
		types.Vec3d{0, 1, 0},
	)
	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if blas.Generation() != mesh.Generation() {
		t.Fatalf("expected build to snapshot the mesh generation")
	}

	normal := types.XYZ(0, 0, 1)
	mesh.SetVertices([]geometry.Vertex{
		{Position: types.Vec3d{-2, -2, 0}, Normal: normal},
		{Position: types.Vec3d{2, -2, 0}, Normal: normal},
		{Position: types.Vec3d{0, 2, 0}, Normal: normal},
	})
	if blas.Generation() == mesh.Generation() {
		t.Fatalf("expected mesh edit to bump the generation")
	}

	if err := blas.Build(); err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}
	if blas.Generation() != mesh.Generation() {
		t.Fatalf("expected rebuild to refresh the generation snapshot")
	}
	if got := blas.AABB().Max()[0]; math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected rebuilt bounds to cover the new vertices; got max x %f", got)
	}
}
