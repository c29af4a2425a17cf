package octree

import "github.com/voxelphile/octane/types"

// A chunk couples an octree with its integer grid coordinate. Chunks are
// created when terrain is generated or loaded and dropped when unloaded;
// traversal only ever reads them.
type Chunk struct {
	Coord [3]int32
	Tree  *Octree
}

// World-space position of the chunk's minimum corner.
func (c *Chunk) Origin() types.Vec3 {
	size := float32(c.Tree.Size())
	return types.XYZ(
		float32(c.Coord[0])*size,
		float32(c.Coord[1])*size,
		float32(c.Coord[2])*size,
	)
}

// Model transform translating chunk-local voxel space into world space.
func (c *Chunk) Model() types.Mat4 {
	return types.Translate4(c.Origin())
}

// Center of the chunk volume in world space.
func (c *Chunk) Center() types.Vec3 {
	half := float32(c.Tree.Size()) * 0.5
	return c.Origin().Add(types.XYZ(half, half, half))
}

// Swap publishes a replacement tree and returns the old one. The caller must
// guarantee that no in-flight ray still references the previous tree, e.g.
// by swapping between frames; this mirrors the whole-buffer publication rule
// for regenerated chunks.
func (c *Chunk) Swap(t *Octree) *Octree {
	old := c.Tree
	c.Tree = t
	return old
}
