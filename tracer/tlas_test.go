package tracer

import (
	"math"
	"testing"

	"github.com/crgnam/vira-sub001/types"
)

func testTranslation(x, y, z float64) types.Mat4d {
	return types.Mat4d{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func TestTLASNoLeaves(t *testing.T) {
	_, err := NewSoftwareTLAS(nil)
	if err != ErrNoGeometry {
		t.Fatalf("expected ErrNoGeometry; got %v", err)
	}
}

func TestTLASSingleLeaf(t *testing.T) {
	mesh := singleTriangleMesh(
		types.Vec3d{-1, -1, 0},
		types.Vec3d{1, -1, 0},
		types.Vec3d{0, 1, 0},
	)
	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	leaf := NewTLASLeaf(blas, testTranslation(0, 0, 5), 3, 9)
	tlas, err := NewSoftwareTLAS([]TLASLeaf{leaf})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if got := tlas.NumLeaves(); got != 1 {
		t.Fatalf("expected 1 leaf; got %d", got)
	}

	ray := NewRay(types.Vec3d{0, -0.25, 0}, types.Vec3d{0, 0, 1})
	tlas.Intersect(&ray)
	if math.IsInf(ray.Hit.T, 1) {
		t.Fatalf("expected ray to hit the translated instance")
	}
	if math.Abs(ray.Hit.T-5) > 1e-12 {
		t.Fatalf("expected hit distance 5; got %f", ray.Hit.T)
	}
	if ray.Hit.Mesh != 3 || ray.Hit.Instance != 9 {
		t.Fatalf("expected hit to carry mesh 3 instance 9; got mesh %d instance %d", ray.Hit.Mesh, ray.Hit.Instance)
	}
}

func TestTLASSharedMeshInstances(t *testing.T) {
	mesh := singleTriangleMesh(
		types.Vec3d{-1, -1, 0},
		types.Vec3d{1, -1, 0},
		types.Vec3d{0, 1, 0},
	)
	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	// Two placements of the same bottom-level structure at different
	// depths; the nearer one must win.
	leaves := []TLASLeaf{
		NewTLASLeaf(blas, testTranslation(0, 0, 10), 0, 0),
		NewTLASLeaf(blas, testTranslation(0, 0, 4), 0, 1),
	}
	tlas, err := NewSoftwareTLAS(leaves)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	ray := NewRay(types.Vec3d{0, -0.25, 0}, types.Vec3d{0, 0, 1})
	tlas.Intersect(&ray)
	if math.Abs(ray.Hit.T-4) > 1e-12 {
		t.Fatalf("expected nearest instance at distance 4; got %f", ray.Hit.T)
	}
	if ray.Hit.Instance != 1 {
		t.Fatalf("expected hit on instance 1; got %d", ray.Hit.Instance)
	}
}

func TestTLASScaledInstanceDistances(t *testing.T) {
	mesh := singleTriangleMesh(
		types.Vec3d{-1, -1, 0},
		types.Vec3d{1, -1, 0},
		types.Vec3d{0, 1, 0},
	)
	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	// Uniform scale by 3 and translation: hit distances must come back in
	// world units despite the scaled local frame.
	m := types.Mat4d{
		3, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, 3, 0,
		0, 0, 6, 1,
	}
	tlas, err := NewSoftwareTLAS([]TLASLeaf{NewTLASLeaf(blas, m, 0, 0)})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	ray := NewRay(types.Vec3d{0, -0.5, 0}, types.Vec3d{0, 0, 1})
	tlas.Intersect(&ray)
	if math.IsInf(ray.Hit.T, 1) {
		t.Fatalf("expected ray to hit the scaled instance")
	}
	if math.Abs(ray.Hit.T-6) > 1e-12 {
		t.Fatalf("expected world hit distance 6; got %f", ray.Hit.T)
	}
}

func TestTLASLeafBounds(t *testing.T) {
	mesh := singleTriangleMesh(
		types.Vec3d{-1, -1, 0},
		types.Vec3d{1, -1, 0},
		types.Vec3d{0, 1, 0},
	)
	blas, err := NewSoftwareBLAS(mesh)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	leaf := NewTLASLeaf(blas, testTranslation(10, 0, 0), 0, 0)
	exp := blas.AABB().ApplyTransformation(testTranslation(10, 0, 0))
	got := leaf.AABB()
	if got.Min() != exp.Min() || got.Max() != exp.Max() {
		t.Fatalf("expected leaf bounds %v - %v; got %v - %v", exp.Min(), exp.Max(), got.Min(), got.Max())
	}

	tlas, err := NewSoftwareTLAS([]TLASLeaf{leaf})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	root := tlas.AABB()
	if root.Min() != exp.Min() || root.Max() != exp.Max() {
		t.Fatalf("expected root bounds to cover the single leaf")
	}
}
