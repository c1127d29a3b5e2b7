package tracer

import (
	"math"
	"time"

	"github.com/crgnam/vira-sub001/geometry"
	"github.com/crgnam/vira-sub001/log"
	"github.com/crgnam/vira-sub001/types"
)

// BLAS is the bottom-level structure contract: a spatial index over one
// mesh's triangles. A hardware-accelerated backend can be substituted behind
// the same two calls.
type BLAS interface {
	// Trace the ray through the structure, updating its hit record in
	// place. Rays are expressed in the mesh local frame.
	Intersect(ray *Ray)

	// The mesh-local bounding box of the indexed geometry.
	AABB() AABB
}

// Number of centroid buckets evaluated by the split search.
const sahBins = 8

// A leaf is declared outright below this triangle count; splitting cannot
// pay for itself.
const minLeafTriangles = 2

// SoftwareBLAS is a binary BVH over one mesh's triangles, built with a
// binned surface-area-heuristic split search. The node array is sized
// 2N-1 up front; a companion permutation of triangle indices is partitioned
// in place during the build so every leaf owns a contiguous range.
type SoftwareBLAS struct {
	mesh *geometry.Mesh

	nodes     []BLASNode
	triIdx    []uint32
	nodesUsed uint32

	// Mesh generation snapshot captured by the last build.
	generation uint64

	logger log.Logger
}

type sahBin struct {
	bounds   AABB
	triCount int
}

// Create and build a BVH over the mesh's current triangle sequence.
func NewSoftwareBLAS(mesh *geometry.Mesh) (*SoftwareBLAS, error) {
	b := &SoftwareBLAS{
		mesh:   mesh,
		logger: log.New("blas"),
	}
	if err := b.Build(); err != nil {
		return nil, err
	}
	return b, nil
}

// Build (re)constructs the tree from the mesh's triangle sequence.
func (b *SoftwareBLAS) Build() error {
	if err := b.mesh.ConstructTriangles(); err != nil {
		return err
	}
	numTris := b.mesh.NumTriangles()
	if numTris == 0 {
		return ErrEmptyMesh
	}

	start := time.Now()

	b.nodes = make([]BLASNode, 2*numTris-1)
	b.triIdx = make([]uint32, numTris)
	for i := range b.triIdx {
		b.triIdx[i] = uint32(i)
	}

	root := &b.nodes[0]
	root.LeftFirst = 0
	root.TriCount = uint32(numTris)
	b.nodesUsed = 1

	b.updateNodeBounds(0)
	b.subdivide(0)

	b.generation = b.mesh.Generation()
	b.logger.Debugf(
		"BVH build: %d triangles, %d nodes, %d ms",
		numTris, b.nodesUsed, time.Since(start).Nanoseconds()/1e6,
	)
	return nil
}

// Generation reports the mesh snapshot this structure indexes. A mismatch
// with the mesh's own generation means the structure is stale.
func (b *SoftwareBLAS) Generation() uint64 { return b.generation }

// AABB returns the mesh-local bounds of the root node.
func (b *SoftwareBLAS) AABB() AABB {
	return b.nodes[0].AABB
}

func (b *SoftwareBLAS) updateNodeBounds(nodeIdx uint32) {
	node := &b.nodes[nodeIdx]
	node.AABB = NewAABB()
	for i := node.LeftFirst; i < node.LeftFirst+node.TriCount; i++ {
		tri := b.mesh.Triangle(int(b.triIdx[i]))
		node.AABB.GrowPoint(tri.V[0].Position)
		node.AABB.GrowPoint(tri.V[1].Position)
		node.AABB.GrowPoint(tri.V[2].Position)
	}
}

func (b *SoftwareBLAS) subdivide(nodeIdx uint32) {
	node := &b.nodes[nodeIdx]
	if node.TriCount <= minLeafTriangles {
		return
	}

	axis, splitPos, splitCost := b.findBestSplitPlane(node)
	if splitCost >= b.calculateNodeCost(node) {
		return
	}

	// Two-pointer in-place partition of the node's index range by centroid.
	i := int(node.LeftFirst)
	j := int(node.LeftFirst+node.TriCount) - 1
	for i <= j {
		tri := b.mesh.Triangle(int(b.triIdx[i]))
		if tri.Centroid[axis] < splitPos {
			i++
		} else {
			b.triIdx[i], b.triIdx[j] = b.triIdx[j], b.triIdx[i]
			j--
		}
	}

	leftCount := uint32(i) - node.LeftFirst
	if leftCount == 0 || leftCount == node.TriCount {
		return
	}

	leftChild := b.nodesUsed
	rightChild := b.nodesUsed + 1
	b.nodesUsed += 2

	b.nodes[leftChild] = BLASNode{LeftFirst: node.LeftFirst, TriCount: leftCount}
	b.nodes[rightChild] = BLASNode{LeftFirst: uint32(i), TriCount: node.TriCount - leftCount}
	node.LeftFirst = leftChild
	node.TriCount = 0

	b.updateNodeBounds(leftChild)
	b.updateNodeBounds(rightChild)
	b.subdivide(leftChild)
	b.subdivide(rightChild)
}

// findBestSplitPlane bins triangle centroids along the widest centroid-bounds
// axis and scores the 7 inter-bucket planes with cumulative prefix/suffix
// sweeps. Returns the winning axis, split position and SAH cost; the cost is
// +Inf when the node cannot be split at all.
func (b *SoftwareBLAS) findBestSplitPlane(node *BLASNode) (axis int, splitPos, bestCost float64) {
	// Centroid bounds of the node.
	cmin := types.Vec3d{math.Inf(1), math.Inf(1), math.Inf(1)}
	cmax := types.Vec3d{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := node.LeftFirst; i < node.LeftFirst+node.TriCount; i++ {
		c := b.mesh.Triangle(int(b.triIdx[i])).Centroid
		cmin = types.MinVec3d(cmin, c)
		cmax = types.MaxVec3d(cmax, c)
	}

	axis = 0
	extent := cmax.Sub(cmin)
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}
	if extent[axis] == 0 {
		return axis, 0, math.Inf(1)
	}

	var bins [sahBins]sahBin
	for i := range bins {
		bins[i].bounds = NewAABB()
	}

	scale := float64(sahBins) / extent[axis]
	for i := node.LeftFirst; i < node.LeftFirst+node.TriCount; i++ {
		tri := b.mesh.Triangle(int(b.triIdx[i]))
		binIdx := int((tri.Centroid[axis] - cmin[axis]) * scale)
		if binIdx > sahBins-1 {
			binIdx = sahBins - 1
		}
		bins[binIdx].triCount++
		bins[binIdx].bounds.GrowPoint(tri.V[0].Position)
		bins[binIdx].bounds.GrowPoint(tri.V[1].Position)
		bins[binIdx].bounds.GrowPoint(tri.V[2].Position)
	}

	// Prefix/suffix sweeps over the bins give left/right counts and areas
	// for each of the 7 candidate planes.
	var leftCount, rightCount [sahBins - 1]int
	var leftArea, rightArea [sahBins - 1]float64
	leftBox := NewAABB()
	rightBox := NewAABB()
	leftSum, rightSum := 0, 0
	for i := 0; i < sahBins-1; i++ {
		leftSum += bins[i].triCount
		leftCount[i] = leftSum
		leftBox.Grow(bins[i].bounds)
		leftArea[i] = leftBox.Area()

		rightSum += bins[sahBins-1-i].triCount
		rightCount[sahBins-2-i] = rightSum
		rightBox.Grow(bins[sahBins-1-i].bounds)
		rightArea[sahBins-2-i] = rightBox.Area()
	}

	bestCost = math.Inf(1)
	planeWidth := extent[axis] / float64(sahBins)
	for i := 0; i < sahBins-1; i++ {
		if leftCount[i] == 0 || rightCount[i] == 0 {
			continue
		}
		cost := float64(leftCount[i])*leftArea[i] + float64(rightCount[i])*rightArea[i]
		if cost < bestCost {
			bestCost = cost
			splitPos = cmin[axis] + planeWidth*float64(i+1)
		}
	}
	return axis, splitPos, bestCost
}

// SAH cost of keeping the node as a leaf.
func (b *SoftwareBLAS) calculateNodeCost(node *BLASNode) float64 {
	return float64(node.TriCount) * node.AABB.Area()
}

// Intersect walks the tree iteratively with a fixed-depth stack, visiting
// the nearer child first and pruning against the ray's current best hit.
func (b *SoftwareBLAS) Intersect(ray *Ray) {
	var stack [traversalStackDepth]uint32
	stackPtr := 0

	node := &b.nodes[0]
	if math.IsInf(node.AABB.Intersect(ray), 1) {
		return
	}

	for {
		if node.IsLeaf() {
			for i := node.LeftFirst; i < node.LeftFirst+node.TriCount; i++ {
				b.intersectTriangle(ray, b.triIdx[i])
			}
			if stackPtr == 0 {
				break
			}
			stackPtr--
			node = &b.nodes[stack[stackPtr]]
			continue
		}

		childIdx1 := node.LeftFirst
		childIdx2 := node.LeftFirst + 1
		child1 := &b.nodes[childIdx1]
		child2 := &b.nodes[childIdx2]
		dist1 := child1.AABB.Intersect(ray)
		dist2 := child2.AABB.Intersect(ray)
		if dist1 > dist2 {
			dist1, dist2 = dist2, dist1
			childIdx1, childIdx2 = childIdx2, childIdx1
			child1 = child2
		}

		if math.IsInf(dist1, 1) {
			if stackPtr == 0 {
				break
			}
			stackPtr--
			node = &b.nodes[stack[stackPtr]]
			continue
		}

		node = child1
		if !math.IsInf(dist2, 1) {
			stack[stackPtr] = childIdx2
			stackPtr++
		}
	}
}

// intersectTriangle runs the barycentric edge test against one triangle and
// records the hit when it beats the current best distance without falling
// inside the self-intersection tolerance.
func (b *SoftwareBLAS) intersectTriangle(ray *Ray, triID uint32) {
	tri := b.mesh.Triangle(int(triID))

	h := ray.Direction.Cross(tri.E2)
	det := tri.E1.Dot(h)
	if math.Abs(det) < 1e-15 {
		return
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(tri.V[0].Position)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return
	}

	q := s.Cross(tri.E1)
	v := invDet * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return
	}

	t := invDet * tri.E2.Dot(q)
	if t <= intersectEpsilon || t >= ray.Hit.T {
		return
	}

	ray.Hit.T = t
	ray.Hit.W = [3]float64{1 - u - v, u, v}
	ray.Hit.Vert = tri.V
	ray.Hit.FaceNormal = types.V3(tri.FaceNormal.Normalize())
	ray.Hit.TriangleID = triID
	ray.Hit.MaterialSlot = tri.MaterialSlot
}
