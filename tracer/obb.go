package tracer

import "github.com/crgnam/vira-sub001/types"

// OBB is an oriented box produced by pushing an axis-aligned box through a
// decomposed transform. Unlike ApplyTransformation it stays tight under
// rotation, which matters for frustum culling of far terrain tiles.
type OBB struct {
	// World-space center of the box.
	Position types.Vec3d

	// Orthonormal rotation of the box axes.
	Rotation types.Mat3d

	// Half extents along the rotated axes, scale already applied.
	HalfExtents types.Vec3d
}

// ToOBB decomposes the transform into position, rotation and scale and
// applies each to the box. The transform must be affine with no shear.
func (b *AABB) ToOBB(m types.Mat4d) OBB {
	// Column lengths of the upper 3x3 give the per-axis scale.
	basis := m.Mat3()
	scale := types.Vec3d{
		basis.Col(0).Len(),
		basis.Col(1).Len(),
		basis.Col(2).Len(),
	}

	var rotation types.Mat3d
	for i := 0; i < 3; i++ {
		col := basis.Col(i).Mul(1.0 / scale[i])
		rotation.SetCol(i, col)
	}

	center := b.Center()
	halfExtent := b.Extent().Mul(0.5)
	return OBB{
		Position: types.TransformPoint(m, center),
		Rotation: rotation,
		HalfExtents: types.Vec3d{
			halfExtent[0] * scale[0],
			halfExtent[1] * scale[1],
			halfExtent[2] * scale[2],
		},
	}
}

// Corners returns the 8 world-space corners of the oriented box.
func (o *OBB) Corners() [8]types.Vec3d {
	var out [8]types.Vec3d
	for i := 0; i < 8; i++ {
		local := types.Vec3d{
			pick(i&1 == 0, -o.HalfExtents[0], o.HalfExtents[0]),
			pick(i&2 == 0, -o.HalfExtents[1], o.HalfExtents[1]),
			pick(i&4 == 0, -o.HalfExtents[2], o.HalfExtents[2]),
		}
		out[i] = o.Position.Add(o.Rotation.Mul3x1(local))
	}
	return out
}
