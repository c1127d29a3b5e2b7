package tracer

import (
	"math"
	"testing"

	"github.com/crgnam/vira-sub001/types"
)

func TestAABBGrow(t *testing.T) {
	b := NewAABB()
	if !b.IsEmpty() {
		t.Fatalf("expected fresh box to be empty")
	}
	if got := b.Area(); got != 0 {
		t.Fatalf("expected empty box area to be 0; got %f", got)
	}

	b.GrowPoint(types.Vec3d{1, 2, 3})
	b.GrowPoint(types.Vec3d{-1, 0, 1})
	if b.IsEmpty() {
		t.Fatalf("expected grown box to be non-empty")
	}

	expMin := types.Vec3d{-1, 0, 1}
	expMax := types.Vec3d{1, 2, 3}
	if b.Min() != expMin || b.Max() != expMax {
		t.Fatalf("expected bounds %v - %v; got %v - %v", expMin, expMax, b.Min(), b.Max())
	}

	// Half surface of a 2x2x2 cube.
	other := NewAABBFromCorners(types.Vec3d{-1, 0, 1}, types.Vec3d{1, 2, 3})
	if got, exp := other.Area(), 12.0; math.Abs(got-exp) > 1e-12 {
		t.Fatalf("expected area %f; got %f", exp, got)
	}

	grown := b
	grown.Grow(other)
	if grown.Min() != b.Min() || grown.Max() != b.Max() {
		t.Fatalf("expected growing by a contained box to be a no-op")
	}

	grown.Grow(NewAABB())
	if grown.Min() != b.Min() || grown.Max() != b.Max() {
		t.Fatalf("expected growing by an empty box to be a no-op")
	}
}

func TestAABBIntersect(t *testing.T) {
	b := NewAABBFromCorners(types.Vec3d{-1, -1, -1}, types.Vec3d{1, 1, 1})

	ray := NewRay(types.Vec3d{0, 0, -5}, types.Vec3d{0, 0, 1})
	if got := b.Intersect(&ray); math.IsInf(got, 1) {
		t.Fatalf("expected ray through the box to hit")
	} else if math.Abs(got-4) > 1e-12 {
		t.Fatalf("expected entry distance 4; got %f", got)
	}

	// Origin inside: entry distance is behind the origin but the box hits.
	ray = NewRay(types.Vec3d{0, 0, 0}, types.Vec3d{0, 0, 1})
	if got := b.Intersect(&ray); math.IsInf(got, 1) {
		t.Fatalf("expected ray starting inside the box to hit")
	}

	// Box entirely behind the origin.
	ray = NewRay(types.Vec3d{0, 0, 5}, types.Vec3d{0, 0, 1})
	if got := b.Intersect(&ray); !math.IsInf(got, 1) {
		t.Fatalf("expected box behind the ray to miss; got %f", got)
	}

	// Slab miss.
	ray = NewRay(types.Vec3d{5, 0, -5}, types.Vec3d{0, 0, 1})
	if got := b.Intersect(&ray); !math.IsInf(got, 1) {
		t.Fatalf("expected offset ray to miss; got %f", got)
	}

	// A closer recorded hit suppresses the box.
	ray = NewRay(types.Vec3d{0, 0, -5}, types.Vec3d{0, 0, 1})
	ray.Hit.T = 2
	if got := b.Intersect(&ray); !math.IsInf(got, 1) {
		t.Fatalf("expected box beyond the recorded hit to be culled; got %f", got)
	}
}

func TestAABBApplyTransformation(t *testing.T) {
	b := NewAABBFromCorners(types.Vec3d{-1, -1, -1}, types.Vec3d{1, 1, 1})

	// Rotate 45 degrees around y: the transformed bounds inflate to
	// cover the rotated corners.
	s := math.Sqrt2
	m := types.Mat4d{
		s / 2, 0, -s / 2, 0,
		0, 1, 0, 0,
		s / 2, 0, s / 2, 0,
		0, 0, 0, 1,
	}
	rotated := b.ApplyTransformation(m)
	if got := rotated.Max()[0]; math.Abs(got-s) > 1e-12 {
		t.Fatalf("expected rotated max x to be sqrt(2); got %f", got)
	}
	if got := rotated.Max()[1]; math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected y extent to be preserved; got %f", got)
	}
}

func TestOBBFromAABB(t *testing.T) {
	b := NewAABBFromCorners(types.Vec3d{-1, -2, -3}, types.Vec3d{1, 2, 3})

	m := types.Mat4d{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 0, 0, 1,
	}
	obb := b.ToOBB(m)
	if got, exp := obb.Position, (types.Vec3d{5, 0, 0}); got != exp {
		t.Fatalf("expected obb center %v; got %v", exp, got)
	}
	if got, exp := obb.HalfExtents, (types.Vec3d{1, 2, 3}); got != exp {
		t.Fatalf("expected half extents %v; got %v", exp, got)
	}
}
