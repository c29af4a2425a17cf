package octree

import "math/bits"

// A packed sparse octree node. Children are stored contiguously starting at
// ChildBase and are compacted by rank among the set bits of Mask: the child
// for octant k lives at ChildBase + popcount(Mask & ((1<<k)-1)). A zero Mask
// marks a leaf.
type Node struct {
	ChildBase uint32
	Mask      uint8
	Material  uint32
}

// Check whether this node has no children.
func (n Node) IsLeaf() bool {
	return n.Mask == 0
}

// Get the node array index of the child occupying the given octant. The
// caller must ensure the octant bit is set in Mask.
func (n Node) ChildSlot(octant uint8) uint32 {
	return n.ChildBase + uint32(bits.OnesCount8(n.Mask&(1<<octant-1)))
}
