package octree

// Builder accumulates voxels into a dense grid and compacts them into a
// packed Octree. It is not safe for concurrent use.
type Builder struct {
	maxDepth int32
	dim      uint32
	voxels   []uint32
}

// Create a builder for a tree of the given maximum depth. All voxels start
// out as air.
func NewBuilder(maxDepth int32) *Builder {
	dim := uint32(1) << uint(maxDepth)
	voxels := make([]uint32, dim*dim*dim)
	for i := range voxels {
		voxels[i] = MatAir
	}
	return &Builder{
		maxDepth: maxDepth,
		dim:      dim,
		voxels:   voxels,
	}
}

// Assign a material to the voxel at the given coordinates. Out-of-range
// coordinates are ignored.
func (b *Builder) Set(x, y, z uint32, material uint32) {
	if x >= b.dim || y >= b.dim || z >= b.dim {
		return
	}
	b.voxels[(x*b.dim+y)*b.dim+z] = material
}

// Get the material currently assigned to a voxel.
func (b *Builder) At(x, y, z uint32) uint32 {
	if x >= b.dim || y >= b.dim || z >= b.dim {
		return MatAir
	}
	return b.voxels[(x*b.dim+y)*b.dim+z]
}

// Build compacts the accumulated voxels into a packed octree. Octants that
// contain only air are omitted from their parent's occupancy mask and
// uniform regions collapse into merged leaves.
func (b *Builder) Build() *Octree {
	root := b.buildRegion(0, 0, 0, b.dim)
	return &Octree{
		MaxDepth: b.maxDepth,
		Nodes:    flatten(root),
	}
}

type buildNode struct {
	mask     uint8
	material uint32
	children [8]*buildNode
}

func (b *Builder) buildRegion(x, y, z, size uint32) *buildNode {
	if size == 1 {
		return &buildNode{material: b.voxels[(x*b.dim+y)*b.dim+z]}
	}

	half := size / 2
	var children [8]*buildNode
	uniform := true
	for octant := uint8(0); octant < 8; octant++ {
		ox := x + half*uint32(octant>>2&1)
		oy := y + half*uint32(octant>>1&1)
		oz := z + half*uint32(octant&1)
		children[octant] = b.buildRegion(ox, oy, oz, half)

		if children[octant].mask != 0 || children[octant].material != children[0].material {
			uniform = false
		}
	}

	if uniform {
		// All octants resolved to the same material; merge into one leaf.
		return &buildNode{material: children[0].material}
	}

	node := &buildNode{material: MatAir}
	for octant := uint8(0); octant < 8; octant++ {
		c := children[octant]
		if c.mask == 0 && c.material == MatAir {
			continue
		}
		node.mask |= 1 << octant
		node.children[octant] = c
	}
	return node
}

// Flatten the temporary pointer tree into a contiguous node array. Children
// are appended in ascending octant order so their slots match the popcount
// rank rule.
func flatten(root *buildNode) []Node {
	nodes := []Node{{Mask: root.mask, Material: root.material}}

	type pending struct {
		index uint32
		src   *buildNode
	}
	queue := []pending{{0, root}}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p.src.mask == 0 {
			continue
		}

		nodes[p.index].ChildBase = uint32(len(nodes))
		for octant := 0; octant < 8; octant++ {
			c := p.src.children[octant]
			if c == nil {
				continue
			}
			nodes = append(nodes, Node{Mask: c.mask, Material: c.material})
			queue = append(queue, pending{uint32(len(nodes) - 1), c})
		}
	}

	return nodes
}
