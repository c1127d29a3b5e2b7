// Package scene owns the object registries (meshes, instances, materials,
// lights) and hands the renderer a built top-level acceleration structure
// over the currently visible placements. Registry handles are plain integers;
// the tables are read-only during a render pass, so resolution is safe from
// any worker without locks.
package scene

import (
	"github.com/pkg/errors"

	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/light"
	"github.com/crgnam/vira-sub001/log"
	"github.com/crgnam/vira-sub001/material"
	"github.com/crgnam/vira-sub001/tracer"
	"github.com/crgnam/vira-sub001/types"
)

type Scene struct {
	meshes    []*geometry.Mesh
	instances []*Instance
	materials []material.Material
	lights    []light.Light

	ambient    types.Spectrum
	hasAmbient bool

	// Uniform background emission sampled by direction on ray misses.
	background types.Spectrum

	// Set by any mutation that invalidates the current TLAS snapshot.
	dirty bool

	tlas *tracer.SoftwareTLAS

	// One BLAS per distinct mesh, reused across instances and across
	// snapshots until the mesh generation moves.
	blasCache map[types.MeshID]*tracer.SoftwareBLAS

	logger log.Logger
}

func New() *Scene {
	return &Scene{
		dirty:     true,
		blasCache: make(map[types.MeshID]*tracer.SoftwareBLAS),
		logger:    log.New("scene"),
	}
}

// AddMesh registers a mesh and returns its handle.
func (s *Scene) AddMesh(mesh *geometry.Mesh) types.MeshID {
	s.meshes = append(s.meshes, mesh)
	s.dirty = true
	return types.MeshID(len(s.meshes) - 1)
}

// Mesh resolves a mesh handle. Nil for unknown handles.
func (s *Scene) Mesh(id types.MeshID) *geometry.Mesh {
	if int(id) >= len(s.meshes) {
		return nil
	}
	return s.meshes[id]
}

// AddMaterial registers a material and returns its handle.
func (s *Scene) AddMaterial(mat material.Material) types.MaterialID {
	s.materials = append(s.materials, mat)
	return types.MaterialID(len(s.materials) - 1)
}

// Material resolves a material handle. Nil for unknown handles.
func (s *Scene) Material(id types.MaterialID) material.Material {
	if int(id) >= len(s.materials) {
		return nil
	}
	return s.materials[id]
}

// CreateInstance places a mesh in the world and returns the placement.
func (s *Scene) CreateInstance(meshID types.MeshID) (*Instance, error) {
	if s.Mesh(meshID) == nil {
		return nil, errors.Errorf("scene: cannot instance unknown mesh %d", meshID)
	}
	inst := newInstance(s, types.InstanceID(len(s.instances)), meshID)
	s.instances = append(s.instances, inst)
	s.dirty = true
	return inst, nil
}

// Instance resolves an instance handle. Nil for unknown handles.
func (s *Scene) Instance(id types.InstanceID) *Instance {
	if int(id) >= len(s.instances) {
		return nil
	}
	return s.instances[id]
}

// AddLight registers a light and returns its handle.
func (s *Scene) AddLight(l light.Light) types.LightID {
	s.lights = append(s.lights, l)
	return types.LightID(len(s.lights) - 1)
}

func (s *Scene) Lights() []light.Light { return s.lights }

// SetAmbient enables the constant ambient term applied on primary hits.
func (s *Scene) SetAmbient(ambient types.Spectrum) {
	s.ambient = ambient
	s.hasAmbient = !ambient.IsBlack()
}

func (s *Scene) Ambient() types.Spectrum { return s.ambient }
func (s *Scene) HasAmbient() bool        { return s.hasAmbient }

// SetBackgroundEmission sets the uniform radiance returned for escaping rays.
func (s *Scene) SetBackgroundEmission(emission types.Spectrum) {
	s.background = emission
}

// BackgroundRadiance returns the radiance arriving from the given world
// direction when a ray escapes the scene.
func (s *Scene) BackgroundRadiance(direction types.Vec3d) types.Spectrum {
	return s.background
}

// MarkDirty forces a TLAS rebuild on the next BuildTLAS call.
func (s *Scene) MarkDirty() { s.dirty = true }

// BuildTLAS returns the acceleration structure for the current snapshot,
// rebuilding it only when geometry, placement or visibility changed.
// Rebuilds are single-threaded and happen strictly between render passes.
func (s *Scene) BuildTLAS() (tracer.TLAS, error) {
	if !s.dirty && s.tlas != nil {
		return s.tlas, nil
	}

	leaves := make([]tracer.TLASLeaf, 0, len(s.instances))
	for _, inst := range s.instances {
		if !inst.Visible() {
			continue
		}

		blas, err := s.blasFor(inst.MeshID())
		if err != nil {
			return nil, errors.Wrapf(err, "scene: instance %d", inst.ID())
		}
		leaves = append(leaves, tracer.NewTLASLeaf(blas, inst.Transform(), inst.MeshID(), inst.ID()))
	}

	tlas, err := tracer.NewSoftwareTLAS(leaves)
	if err != nil {
		return nil, errors.Wrap(err, "scene: build failed")
	}

	s.tlas = tlas
	s.dirty = false
	s.logger.Debugf("rebuilt TLAS with %d leaves", tlas.NumLeaves())
	return s.tlas, nil
}

// blasFor returns the cached bottom-level structure for a mesh, rebuilding
// it when the mesh generation has moved past the indexed snapshot.
func (s *Scene) blasFor(id types.MeshID) (*tracer.SoftwareBLAS, error) {
	mesh := s.Mesh(id)
	if blas, ok := s.blasCache[id]; ok && blas.Generation() == mesh.Generation() {
		return blas, nil
	}

	blas, err := tracer.NewSoftwareBLAS(mesh)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %d", id)
	}
	s.blasCache[id] = blas
	return blas, nil
}

// NumVisibleInstances counts the placements the next snapshot will index.
func (s *Scene) NumVisibleInstances() int {
	count := 0
	for _, inst := range s.instances {
		if inst.Visible() {
			count++
		}
	}
	return count
}
