package cmd

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/crgnam/vira-sub001/camera"
	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/light"
	"github.com/crgnam/vira-sub001/material"
	"github.com/crgnam/vira-sub001/scene"
	"github.com/crgnam/vira-sub001/types"
)

// builtinScene assembles a demo scene plus a camera posed for it.
type builtinScene struct {
	description string
	build       func(width, height int) (*scene.Scene, camera.Camera, error)
}

var builtinScenes = map[string]builtinScene{
	"plane": {
		description: "flat ground plane lit by a point light",
		build:       buildPlaneScene,
	},
	"boxes": {
		description: "two instanced boxes on a plane under a spherical light",
		build:       buildBoxesScene,
	},
}

func builtinSceneNames() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadBuiltinScene(name string, width, height int) (*scene.Scene, camera.Camera, error) {
	bs, exists := builtinScenes[name]
	if !exists {
		return nil, nil, errors.Errorf("unknown scene %q; use the scenes command for the available names", name)
	}
	return bs.build(width, height)
}

func buildPlaneScene(width, height int) (*scene.Scene, camera.Camera, error) {
	sc := scene.New()

	ground := sc.AddMaterial(material.NewLambertian(types.Gray(0.8)))
	meshID := sc.AddMesh(newQuadMesh(ground, 5))
	if _, err := sc.CreateInstance(meshID); err != nil {
		return nil, nil, err
	}

	sc.AddLight(light.NewPointLight(types.Vec3d{0, 4, 0}, types.Gray(40)))
	sc.SetAmbient(types.Gray(0.02))

	cam := camera.NewPinhole(width, height, 0.035, 0.036)
	cam.LookAt(types.Vec3d{0, 3, 6}, types.Vec3d{0, 0, 0}, types.Vec3d{0, 1, 0})
	return sc, cam, nil
}

func buildBoxesScene(width, height int) (*scene.Scene, camera.Camera, error) {
	sc := scene.New()

	ground := sc.AddMaterial(material.NewLambertian(types.Gray(0.7)))
	red := sc.AddMaterial(material.NewLambertian(types.RGB(0.8, 0.2, 0.2)))

	groundID := sc.AddMesh(newQuadMesh(ground, 8))
	if _, err := sc.CreateInstance(groundID); err != nil {
		return nil, nil, err
	}

	// Both boxes share one mesh and therefore one bottom-level structure.
	boxID := sc.AddMesh(newBoxMesh(red, 0.5))
	left, err := sc.CreateInstance(boxID)
	if err != nil {
		return nil, nil, err
	}
	left.SetTransform(translate(-1.2, 0.5, 0))
	right, err := sc.CreateInstance(boxID)
	if err != nil {
		return nil, nil, err
	}
	right.SetTransform(translate(1.2, 0.5, -0.5))

	sc.AddLight(light.NewSphereLight(types.Vec3d{0, 5, 2}, 0.5, types.Gray(60)))
	sc.SetBackgroundEmission(types.Gray(0.05))
	sc.SetAmbient(types.Gray(0.01))

	cam := camera.NewPinhole(width, height, 0.035, 0.036)
	cam.LookAt(types.Vec3d{0, 2.5, 7}, types.Vec3d{0, 0.5, 0}, types.Vec3d{0, 1, 0})
	return sc, cam, nil
}

// newQuadMesh builds a two-triangle square in the y=0 plane, centered on the
// origin and facing +y.
func newQuadMesh(matID types.MaterialID, half float64) *geometry.Mesh {
	m := geometry.NewMesh()
	slot := m.AddMaterial(matID)

	up := types.XYZ(0, 1, 0)
	m.SetVertices([]geometry.Vertex{
		{Position: types.Vec3d{-half, 0, -half}, Normal: up, UV: types.XY(0, 0), Albedo: types.Gray(1)},
		{Position: types.Vec3d{half, 0, -half}, Normal: up, UV: types.XY(1, 0), Albedo: types.Gray(1)},
		{Position: types.Vec3d{half, 0, half}, Normal: up, UV: types.XY(1, 1), Albedo: types.Gray(1)},
		{Position: types.Vec3d{-half, 0, half}, Normal: up, UV: types.XY(0, 1), Albedo: types.Gray(1)},
	})
	m.SetIndices([]uint32{0, 2, 1, 0, 3, 2}, []uint32{slot, slot})
	return m
}

// newBoxMesh builds an axis-aligned cube with per-face normals, centered on
// the origin with the given half extent.
func newBoxMesh(matID types.MaterialID, half float64) *geometry.Mesh {
	m := geometry.NewMesh()
	slot := m.AddMaterial(matID)

	faces := []struct {
		normal  types.Vec3
		corners [4]types.Vec3d
	}{
		{types.XYZ(0, 0, 1), [4]types.Vec3d{{-half, -half, half}, {half, -half, half}, {half, half, half}, {-half, half, half}}},
		{types.XYZ(0, 0, -1), [4]types.Vec3d{{half, -half, -half}, {-half, -half, -half}, {-half, half, -half}, {half, half, -half}}},
		{types.XYZ(1, 0, 0), [4]types.Vec3d{{half, -half, half}, {half, -half, -half}, {half, half, -half}, {half, half, half}}},
		{types.XYZ(-1, 0, 0), [4]types.Vec3d{{-half, -half, -half}, {-half, -half, half}, {-half, half, half}, {-half, half, -half}}},
		{types.XYZ(0, 1, 0), [4]types.Vec3d{{-half, half, half}, {half, half, half}, {half, half, -half}, {-half, half, -half}}},
		{types.XYZ(0, -1, 0), [4]types.Vec3d{{-half, -half, -half}, {half, -half, -half}, {half, -half, half}, {-half, -half, half}}},
	}

	var (
		vertices []geometry.Vertex
		indices  []uint32
		slots    []uint32
	)
	for _, face := range faces {
		base := uint32(len(vertices))
		uvs := [4]types.Vec2{types.XY(0, 0), types.XY(1, 0), types.XY(1, 1), types.XY(0, 1)}
		for k, corner := range face.corners {
			vertices = append(vertices, geometry.Vertex{
				Position: corner,
				Normal:   face.normal,
				UV:       uvs[k],
				Albedo:   types.Gray(1),
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		slots = append(slots, slot, slot)
	}
	m.SetVertices(vertices)
	m.SetIndices(indices, slots)
	return m
}

func translate(x, y, z float64) types.Mat4d {
	return types.Mat4d{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}
