// Package octree implements the packed sparse voxel octree that backs all
// ray traversal. Node children are stored in a contiguous, arena-indexed
// array; there is no pointer graph.
//
// An Octree is immutable while a frame is being traced. Regenerating a chunk
// must publish a complete replacement tree (see Chunk.Swap); concurrent
// read-during-write is a caller defect this package does not guard against.
package octree

// Octree is a packed sparse voxel octree with a fixed maximum depth. The
// root lives at index 0 of Nodes.
type Octree struct {
	MaxDepth int32
	Nodes    []Node
}

// Number of unit voxels along each edge of the volume covered by the tree.
func (t *Octree) Size() int32 {
	return 1 << uint(t.MaxDepth)
}

// Locate descends the tree towards the voxel containing the given point and
// returns the index of the deepest node reached, the depth it was reached at
// and whether the point landed inside a populated octant chain.
//
// When found is false the returned depth tells the caller how large the
// surrounding empty region is (the region spans 2^(MaxDepth-depth) voxels
// per edge), which traversal uses as a skip distance.
//
// The point must lie inside [0, Size) on all axes; out-of-range input is
// undefined. This runs on every traversal step so it stays branch-light.
func (t *Octree) Locate(x, y, z float32) (node uint32, depth int32, found bool) {
	h := float32(int32(1) << uint(t.MaxDepth-1))
	var index uint32

	for level := int32(0); level < t.MaxDepth; level++ {
		n := t.Nodes[index]
		if n.Mask == 0 {
			// Merged leaf covering the whole region.
			return index, level, true
		}

		var octant uint8
		if x >= h {
			octant |= 4
			x -= h
		}
		if y >= h {
			octant |= 2
			y -= h
		}
		if z >= h {
			octant |= 1
			z -= h
		}

		if n.Mask&(1<<octant) == 0 {
			// The empty region is the unset child octant, one level
			// below the node that rejected the point.
			return index, level + 1, false
		}

		index = n.ChildSlot(octant)
		h *= 0.5
	}

	return index, t.MaxDepth, true
}
