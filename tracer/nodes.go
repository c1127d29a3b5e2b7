package tracer

import (
	"github.com/crgnam/vira-sub001/types"
)

// Traversal stacks are fixed arrays. The depth bound holds for any binary
// tree over 2^32 primitives built by the software structures; exceeding it
// would require a pathological chain the builders cannot produce.
const traversalStackDepth = 64

// BLASNode is an array-resident binary BVH node. Leaves hold a contiguous
// range of the triangle permutation array; interior nodes store the index of
// their left child, with the right child always adjacent at left+1.
type BLASNode struct {
	AABB AABB

	// Index into the triangle-index array for leaves, index of the left
	// child node for interior nodes.
	LeftFirst uint32

	// Number of triangles in the leaf; zero marks an interior node.
	TriCount uint32
}

func (n *BLASNode) IsLeaf() bool { return n.TriCount > 0 }

// TLASNode is a node of the scene-wide tree. Leaves reference an entry in the
// leaf vector; interior nodes pack both child indices into one word.
type TLASNode struct {
	AABB AABB

	// Zero for leaves; otherwise the low and high halves hold the left and
	// right child node indices. Node 0 is never a child, so zero is free to
	// act as the leaf marker.
	LeftRight uint64

	LeafID uint32
}

func (n *TLASNode) IsLeaf() bool { return n.LeftRight == 0 }

func (n *TLASNode) Left() uint32  { return uint32(n.LeftRight) }
func (n *TLASNode) Right() uint32 { return uint32(n.LeftRight >> 32) }

func packChildren(left, right uint32) uint64 {
	return uint64(left) | uint64(right)<<32
}

// TLASLeaf wraps a bottom-level structure placement: the BLAS reference, the
// world transform pair and the identifiers recorded into hit records. The
// leaf does not own the BLAS; callers guarantee mesh and BLAS lifetime covers
// the TLAS lifetime.
type TLASLeaf struct {
	blas BLAS

	localToGlobal types.Mat4d
	globalToLocal types.Mat4d

	meshID     types.MeshID
	instanceID types.InstanceID

	aabb AABB
}

// Create a leaf for one instance placement. The world AABB is computed once
// here from the BLAS local bounds and the placement transform.
func NewTLASLeaf(blas BLAS, localToGlobal types.Mat4d, meshID types.MeshID, instanceID types.InstanceID) TLASLeaf {
	local := blas.AABB()
	return TLASLeaf{
		blas:          blas,
		localToGlobal: localToGlobal,
		globalToLocal: localToGlobal.Inv(),
		meshID:        meshID,
		instanceID:    instanceID,
		aabb:          local.ApplyTransformation(localToGlobal),
	}
}

func (l *TLASLeaf) AABB() AABB                    { return l.aabb }
func (l *TLASLeaf) MeshID() types.MeshID          { return l.meshID }
func (l *TLASLeaf) InstanceID() types.InstanceID  { return l.instanceID }
func (l *TLASLeaf) LocalToGlobal() types.Mat4d    { return l.localToGlobal }

// Intersect transforms the ray into the BLAS local frame, delegates, and
// writes any closer hit back into the world-space record.
//
// Distances found in a scaled local frame are not world distances: if the
// transformed direction has pre-normalization length s, a world distance t
// corresponds to a local distance t*s. The current best hit is contracted by
// s on the way in and any improved hit is expanded by 1/s on the way out.
func (l *TLASLeaf) Intersect(ray *Ray) {
	localOrigin := types.TransformPoint(l.globalToLocal, ray.Origin)
	localDir := types.TransformDirection(l.globalToLocal, ray.Direction)

	scale := localDir.Len()
	if scale == 0 {
		return
	}
	localDir = localDir.Mul(1.0 / scale)

	localRay := NewRay(localOrigin, localDir)
	localRay.Hit.T = ray.Hit.T * scale

	l.blas.Intersect(&localRay)

	worldT := localRay.Hit.T / scale
	if worldT < ray.Hit.T {
		ray.Hit = localRay.Hit
		ray.Hit.T = worldT
		ray.Hit.Mesh = l.meshID
		ray.Hit.Instance = l.instanceID
	}
}
