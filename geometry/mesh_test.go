package geometry

import (
	"math"
	"testing"

	"github.com/crgnam/vira-sub001/types"
)

func testVertices() []Vertex {
	n := types.XYZ(0, 0, 1)
	return []Vertex{
		{Position: types.Vec3d{0, 0, 0}, Normal: n},
		{Position: types.Vec3d{2, 0, 0}, Normal: n},
		{Position: types.Vec3d{0, 2, 0}, Normal: n},
	}
}

func TestConstructTriangles(t *testing.T) {
	m := NewMesh()
	m.SetVertices(testVertices())
	m.SetIndices([]uint32{0, 1, 2}, []uint32{0})

	if err := m.ConstructTriangles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.NumTriangles(); got != 1 {
		t.Fatalf("expected 1 triangle; got %d", got)
	}

	tri := m.Triangle(0)
	if got, exp := tri.Area(), 2.0; math.Abs(got-exp) > 1e-12 {
		t.Fatalf("expected triangle area %f; got %f", exp, got)
	}
	if got, exp := tri.Centroid, (types.Vec3d{2.0 / 3, 2.0 / 3, 0}); got.Sub(exp).Len() > 1e-12 {
		t.Fatalf("expected centroid %v; got %v", exp, got)
	}
	// Face normal length is twice the area.
	if got := tri.FaceNormal.Len(); math.Abs(got-4) > 1e-6 {
		t.Fatalf("expected unnormalized face normal length 4; got %f", got)
	}
}

func TestConstructTrianglesValidation(t *testing.T) {
	m := NewMesh()
	m.SetVertices(testVertices())

	m.SetIndices([]uint32{0, 1}, nil)
	if err := m.ConstructTriangles(); err == nil {
		t.Fatalf("expected error for truncated index buffer")
	}

	m.SetIndices([]uint32{0, 1, 7}, nil)
	if err := m.ConstructTriangles(); err == nil {
		t.Fatalf("expected error for out-of-range vertex index")
	}
}

func TestConstructTrianglesIdempotent(t *testing.T) {
	m := NewMesh()
	m.SetVertices(testVertices())
	m.SetIndices([]uint32{0, 1, 2}, []uint32{0})

	if err := m.ConstructTriangles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := m.Triangle(0)
	if err := m.ConstructTriangles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Triangle(0) != first {
		t.Fatalf("expected repeated construction on an unchanged mesh to be a no-op")
	}

	// A mutation invalidates the sequence and triggers a rebuild.
	m.SetSmoothShading(true)
	if err := m.ConstructTriangles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Triangle(0).SmoothShading {
		t.Fatalf("expected rebuilt triangle to pick up the smoothing flag")
	}
}

func TestAddMaterialDeduplicates(t *testing.T) {
	m := NewMesh()

	s0 := m.AddMaterial(types.MaterialID(11))
	s1 := m.AddMaterial(types.MaterialID(22))
	if s0 == s1 {
		t.Fatalf("expected distinct slots for distinct materials")
	}
	if got := m.AddMaterial(types.MaterialID(11)); got != s0 {
		t.Fatalf("expected repeated registration to return slot %d; got %d", s0, got)
	}

	if got := m.MaterialAt(s1); got != 22 {
		t.Fatalf("expected slot %d to resolve to material 22; got %d", s1, got)
	}
	if got := m.MaterialAt(99); got != types.NoMaterial {
		t.Fatalf("expected unknown slot to resolve to NoMaterial; got %d", got)
	}
}

func TestGenerationAdvances(t *testing.T) {
	m := NewMesh()
	gen := m.Generation()

	m.SetVertices(testVertices())
	if m.Generation() == gen {
		t.Fatalf("expected vertex replacement to bump the generation")
	}
	gen = m.Generation()

	m.SetIndices([]uint32{0, 1, 2}, nil)
	if m.Generation() == gen {
		t.Fatalf("expected index replacement to bump the generation")
	}
}
