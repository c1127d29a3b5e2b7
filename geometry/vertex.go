package geometry

import "github.com/crgnam/vira-sub001/types"

// Vertex carries the per-corner attributes interpolated during shading.
// Positions are double precision; normals, texture coordinates and albedo
// stay in mesh (single) precision.
type Vertex struct {
	Position types.Vec3d
	Normal   types.Vec3
	UV       types.Vec2
	Albedo   types.Spectrum
}
