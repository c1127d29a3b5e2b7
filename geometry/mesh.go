package geometry

import (
	"github.com/pkg/errors"

	"github.com/crgnam/vira-sub001/types"
)

// Mesh owns a vertex/index buffer pair plus a contiguous triangle sequence
// rebuilt from them. Mutations bump a generation counter; the acceleration
// layer compares generations instead of relying on a shared dirty flag, so a
// bottom-level structure knows exactly which snapshot of the geometry it
// indexed.
type Mesh struct {
	vertices      []Vertex
	indices       []uint32
	materialSlots []uint32

	// Local material cache: slot index -> scene material handle.
	materialCache []types.MaterialID

	triangles     []Triangle
	smoothShading bool

	generation     uint64
	triGeneration  uint64
}

func NewMesh() *Mesh {
	return &Mesh{generation: 1}
}

// Replace the vertex buffer.
func (m *Mesh) SetVertices(vertices []Vertex) {
	m.vertices = vertices
	m.generation++
}

// Replace the index buffer. Three indices per face; faces without an entry
// in slots fall back to material slot 0.
func (m *Mesh) SetIndices(indices []uint32, slots []uint32) {
	m.indices = indices
	m.materialSlots = slots
	m.generation++
}

// Register a scene material with this mesh, returning the local slot index
// referenced by the face material list.
func (m *Mesh) AddMaterial(id types.MaterialID) uint32 {
	for slot, existing := range m.materialCache {
		if existing == id {
			return uint32(slot)
		}
	}
	m.materialCache = append(m.materialCache, id)
	return uint32(len(m.materialCache) - 1)
}

// Resolve a local material slot to the scene material handle.
func (m *Mesh) MaterialAt(slot uint32) types.MaterialID {
	if int(slot) >= len(m.materialCache) {
		return types.NoMaterial
	}
	return m.materialCache[slot]
}

func (m *Mesh) SetSmoothShading(smooth bool) {
	m.smoothShading = smooth
	m.generation++
}

func (m *Mesh) SmoothShading() bool { return m.smoothShading }

// Generation identifies the current snapshot of the mesh buffers. It changes
// on every mutation and never repeats.
func (m *Mesh) Generation() uint64 { return m.generation }

// ConstructTriangles rebuilds the triangle sequence from the vertex and index
// buffers. Idempotent for an unchanged generation.
func (m *Mesh) ConstructTriangles() error {
	if m.triGeneration == m.generation && m.triangles != nil {
		return nil
	}
	if len(m.indices)%3 != 0 {
		return errors.Errorf("geometry: index buffer length %d is not a multiple of 3", len(m.indices))
	}

	numTris := len(m.indices) / 3
	m.triangles = make([]Triangle, 0, numTris)
	for f := 0; f < numTris; f++ {
		i0, i1, i2 := m.indices[3*f], m.indices[3*f+1], m.indices[3*f+2]
		if int(i0) >= len(m.vertices) || int(i1) >= len(m.vertices) || int(i2) >= len(m.vertices) {
			return errors.Errorf("geometry: face %d references vertex beyond buffer end", f)
		}

		var slot uint32
		if f < len(m.materialSlots) {
			slot = m.materialSlots[f]
		}
		m.triangles = append(m.triangles, makeTriangle(
			m.vertices[i0], m.vertices[i1], m.vertices[i2], slot, m.smoothShading,
		))
	}

	m.triGeneration = m.generation
	return nil
}

func (m *Mesh) NumTriangles() int { return len(m.triangles) }

func (m *Mesh) Triangle(i int) *Triangle { return &m.triangles[i] }

func (m *Mesh) Triangles() []Triangle { return m.triangles }
