package types

import "math"

// Stable integer handles into the scene registries. Hit records carry these
// instead of pointers; the registries are read-only during a render pass so
// resolution is safe from any worker.
type (
	MeshID     uint32
	InstanceID uint32
	MaterialID uint32
	LightID    uint32
)

// Sentinel values reported for pixels that never hit geometry.
const (
	NoMesh     MeshID     = math.MaxUint32
	NoInstance InstanceID = math.MaxUint32
	NoMaterial MaterialID = math.MaxUint32
	NoLight    LightID    = math.MaxUint32
)
