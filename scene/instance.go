package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/crgnam/vira-sub001/types"
)

// Instance is one placement of a mesh in the world. Instances are created
// through the scene so every one of them gets a stable registry handle;
// mutations flow back into the scene's dirty flag so the next render knows
// to rebuild the top-level structure.
type Instance struct {
	id     types.InstanceID
	meshID types.MeshID

	transform types.Mat4d

	// Transform at the previous snapshot, kept for the velocity pass.
	priorTransform types.Mat4d

	visible bool

	owner *Scene
}

func newInstance(owner *Scene, id types.InstanceID, meshID types.MeshID) *Instance {
	return &Instance{
		id:             id,
		meshID:         meshID,
		transform:      mgl64.Ident4(),
		priorTransform: mgl64.Ident4(),
		visible:        true,
		owner:          owner,
	}
}

func (in *Instance) ID() types.InstanceID { return in.id }
func (in *Instance) MeshID() types.MeshID { return in.meshID }

// SetTransform replaces the local-to-world placement. The previous transform
// is retained until the next snapshot for velocity estimation.
func (in *Instance) SetTransform(transform types.Mat4d) {
	in.priorTransform = in.transform
	in.transform = transform
	in.owner.MarkDirty()
}

func (in *Instance) Transform() types.Mat4d      { return in.transform }
func (in *Instance) PriorTransform() types.Mat4d { return in.priorTransform }

// SetVisible toggles the instance in and out of the renderable set.
func (in *Instance) SetVisible(visible bool) {
	if in.visible != visible {
		in.visible = visible
		in.owner.MarkDirty()
	}
}

func (in *Instance) Visible() bool { return in.visible }
