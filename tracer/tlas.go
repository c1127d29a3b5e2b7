package tracer

import (
	"math"
	"time"

	"github.com/crgnam/vira-sub001/log"
)

// TLAS is the scene-wide structure contract: a spatial index over instanced
// placements of meshes.
type TLAS interface {
	// Trace a world-space ray, updating its hit record in place.
	Intersect(ray *Ray)

	// One-time per-worker setup. Idempotent; safe to call redundantly. The
	// software implementation needs none, hardware backends prime
	// thread-local traversal contexts here.
	Init()

	// World-space bounds of the whole scene snapshot.
	AABB() AABB
}

// SoftwareTLAS is a binary tree over instance placements, built by greedy
// agglomerative clustering of mutual nearest neighbors. Instance counts are
// orders of magnitude below triangle counts, so the O(n^2) build is cheaper
// than a binned SAH pass and produces excellent trees.
//
// The TLAS owns its node array and leaf vector exclusively; it does not own
// the BLASes or meshes those leaves reference. It is rebuilt wholesale
// whenever the scene snapshot changes.
type SoftwareTLAS struct {
	nodes     []TLASNode
	leaves    []TLASLeaf
	nodesUsed uint32

	logger log.Logger
}

// Build a top-level structure over the given leaves. Fails with ErrNoGeometry
// before any work when the leaf list is empty.
func NewSoftwareTLAS(leaves []TLASLeaf) (*SoftwareTLAS, error) {
	if len(leaves) == 0 {
		return nil, ErrNoGeometry
	}

	t := &SoftwareTLAS{
		leaves: leaves,
		logger: log.New("tlas"),
	}
	t.build()
	return t, nil
}

// build runs the agglomerative clustering pass: starting from an arbitrary
// active node A, follow nearest-neighbor links until a mutual pair is found,
// merge it, and continue from the merged node. Terminates with a single
// active node, the root.
func (t *SoftwareTLAS) build() {
	start := time.Now()
	n := len(t.leaves)
	t.nodes = make([]TLASNode, 2*n)

	// Active node index list. Node 0 is reserved so that LeftRight == 0 can
	// mark leaves; the root is copied into it at the end.
	nodeIdx := make([]uint32, n)
	t.nodesUsed = 1
	for i := range t.leaves {
		nodeIdx[i] = t.nodesUsed
		t.nodes[t.nodesUsed] = TLASNode{
			AABB:   t.leaves[i].AABB(),
			LeafID: uint32(i),
		}
		t.nodesUsed++
	}

	a := 0
	b := t.findBestMatch(nodeIdx, n, a)
	for n > 1 {
		c := t.findBestMatch(nodeIdx, n, b)
		if a == c {
			// Mutual nearest pair: merge into a fresh interior node that
			// takes over A's slot; B's slot is filled from the list tail.
			idxA, idxB := nodeIdx[a], nodeIdx[b]
			merged := &t.nodes[t.nodesUsed]
			merged.LeftRight = packChildren(idxA, idxB)
			merged.AABB = t.nodes[idxA].AABB
			merged.AABB.Grow(t.nodes[idxB].AABB)

			nodeIdx[a] = t.nodesUsed
			t.nodesUsed++
			nodeIdx[b] = nodeIdx[n-1]
			n--
			if n > 1 {
				b = t.findBestMatch(nodeIdx, n, a)
			}
		} else {
			a = b
			b = c
		}
	}
	t.nodes[0] = t.nodes[nodeIdx[a]]

	t.logger.Debugf(
		"TLAS build: %d leaves, %d nodes, %d us",
		len(t.leaves), t.nodesUsed, time.Since(start).Microseconds(),
	)
}

// findBestMatch returns the index (into the active list) of the node whose
// merged bounds with list[a] have the smallest surface area.
func (t *SoftwareTLAS) findBestMatch(list []uint32, n, a int) int {
	smallest := math.Inf(1)
	bestB := -1
	for b := 0; b < n; b++ {
		if b == a {
			continue
		}
		merged := t.nodes[list[a]].AABB
		merged.Grow(t.nodes[list[b]].AABB)
		if area := merged.Area(); area < smallest {
			smallest = area
			bestB = b
		}
	}
	return bestB
}

// Init is a no-op for the software tree: traversal state lives on the
// caller's stack.
func (t *SoftwareTLAS) Init() {}

// AABB returns the world-space bounds of the root.
func (t *SoftwareTLAS) AABB() AABB { return t.nodes[0].AABB }

// NumLeaves reports the number of instance placements indexed.
func (t *SoftwareTLAS) NumLeaves() int { return len(t.leaves) }

// Leaf returns the i-th leaf.
func (t *SoftwareTLAS) Leaf(i int) *TLASLeaf { return &t.leaves[i] }

// Intersect walks the tree with the same near-first fixed stack as the
// bottom level, but over world-space boxes; leaves hand the ray off to their
// wrapped BLAS through the frame transform.
func (t *SoftwareTLAS) Intersect(ray *Ray) {
	var stack [traversalStackDepth]uint32
	stackPtr := 0

	node := &t.nodes[0]
	if math.IsInf(node.AABB.Intersect(ray), 1) {
		return
	}

	for {
		if node.IsLeaf() {
			t.leaves[node.LeafID].Intersect(ray)
			if stackPtr == 0 {
				break
			}
			stackPtr--
			node = &t.nodes[stack[stackPtr]]
			continue
		}

		childIdx1, childIdx2 := node.Left(), node.Right()
		child1 := &t.nodes[childIdx1]
		child2 := &t.nodes[childIdx2]
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
			node = &t.nodes[stack[stackPtr]]
			continue
		}

		node = child1
		if !math.IsInf(dist2, 1) {
			stack[stackPtr] = childIdx2
			stackPtr++
		}
	}
}
