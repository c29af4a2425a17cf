package tracer

import (
	"math"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

// Traversal and shading parameters. One parameterized caster replaces the
// zoo of per-configuration variants: chunk size, render distance and the
// step epsilon are configuration, never constants baked into the march.
type Config struct {
	// Voxels along each chunk edge.
	ChunkSize int32

	// Chunks visible in each direction from the camera chunk; the
	// accessible volume spans 2*RenderDistance*ChunkSize voxels per edge.
	RenderDistance int32

	// Nudge applied when restarting a march past a boundary, keeping the
	// new origin out of the cell it just left.
	Epsilon float32

	// Iteration budget per cast. The grid has no cheap escape-at-distance
	// test, so exhausting the budget reports a miss.
	MaxSteps int

	// Bounce budget for the shading pipeline.
	MaxBounces int
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:      8,
		RenderDistance: 8,
		Epsilon:        1e-3,
		MaxSteps:       512,
		MaxBounces:     3,
	}
}

// Half extent of a chunk bounding box, derived from the configured chunk
// size.
func (c Config) HalfExtent() float32 {
	return float32(c.ChunkSize) * 0.5
}

// Edge length of the accessible volume around the camera.
func (c Config) VolumeSize() float32 {
	return 2 * float32(c.RenderDistance) * float32(c.ChunkSize)
}

// Caster intersects rays with a single chunk's octree in chunk-local voxel
// space. It never mutates the tree and is safe for concurrent use by many
// goroutines as long as the tree is not swapped mid-frame.
type Caster struct {
	cfg  Config
	tree *octree.Octree
}

func NewCaster(cfg Config, tree *octree.Octree) *Caster {
	return &Caster{cfg: cfg, tree: tree}
}

func (c *Caster) Tree() *octree.Octree {
	return c.tree
}

// Cast marches the ray through the voxel grid and returns the first solid
// voxel interface whose material differs from the ray's medium. The march
// runs until a hit, the iteration budget, the ray's MaxDist, or (for
// bounded rays) the chunk boundary.
func (c *Caster) Cast(ray Ray) (Hit, bool) {
	size := float32(c.tree.Size())
	half := size * 0.5

	origin := ray.Origin
	var tBase float32

	// Clip to the chunk volume when starting outside it.
	if !inCoarseBounds(origin, size) {
		center := types.XYZ(half, half, half)
		extent := types.XYZ(half, half, half)
		entry, ok := IntersectOBB(ray.Origin, ray.Dir, center, extent, AxisAligned)
		if !ok {
			return Hit{}, false
		}
		tBase = entry + c.cfg.Epsilon
		origin = ray.Origin.Add(ray.Dir.Mul(tBase))
	}

	st := newStepper(origin, ray.Dir)
	normal := dominantAxisNormal(ray.Dir)

	for iter := 0; iter < c.cfg.MaxSteps; iter++ {
		dist := tBase + st.t
		if ray.MaxDist > 0 && dist > ray.MaxDist {
			return Hit{}, false
		}

		cell := st.cell
		px := float32(cell[0]) + 0.5
		py := float32(cell[1]) + 0.5
		pz := float32(cell[2]) + 0.5

		// Both bounds tests are load bearing: the coarse test alone
		// admits false hits hovering just outside the volume, the exact
		// test alone drops hits along shared cell boundaries and renders
		// seams.
		coarse := coarseCellInBounds(cell, size)
		exact := exactCellInBounds(cell, int32(size))

		if !coarse {
			if ray.Bounded {
				return Hit{}, false
			}
			// Outside the chunk there is nothing to sample; keep
			// marching until MaxDist runs out.
			st.Step()
			normal = st.faceNormal(ray.Dir)
			continue
		}

		if exact {
			node, depth, found := c.tree.Locate(px, py, pz)
			if found {
				mat := c.tree.Nodes[node].Material
				if octree.IsSolid(mat) && mat != ray.Medium {
					return c.buildHit(ray, node, mat, cell, normal, dist), true
				}
			} else if region := c.tree.MaxDepth - depth; region > 0 {
				// The miss depth tells us how large the empty region is;
				// jump the march past it instead of stepping per cell.
				if exitT, exitNormal, ok := regionExit(origin, ray.Dir, cell, region); ok && exitT > st.t {
					adv := exitT + c.cfg.Epsilon
					origin = origin.Add(ray.Dir.Mul(adv))
					tBase += adv
					st = newStepper(origin, ray.Dir)
					normal = exitNormal
					continue
				}
			}
		}

		st.Step()
		normal = st.faceNormal(ray.Dir)
	}

	return Hit{}, false
}

// SolidAt samples the voxel containing the given chunk-local point. Points
// outside the tree sample as empty.
func (c *Caster) SolidAt(x, y, z float32) bool {
	size := float32(c.tree.Size())
	if x < 0 || x >= size || y < 0 || y >= size || z < 0 || z >= size {
		return false
	}
	node, _, found := c.tree.Locate(x, y, z)
	return found && octree.IsSolid(c.tree.Nodes[node].Material)
}

func (c *Caster) buildHit(ray Ray, node, mat uint32, cell [3]int32, normal types.Vec3, dist float32) Hit {
	pos := ray.Origin.Add(ray.Dir.Mul(dist))

	axis := 0
	if normal[1] != 0 {
		axis = 1
	} else if normal[2] != 0 {
		axis = 2
	}
	u := (axis + 1) % 3
	v := (axis + 2) % 3

	backStep := types.XYZ(
		float32(cell[0])+0.5,
		float32(cell[1])+0.5,
		float32(cell[2])+0.5,
	).Add(normal)

	eta := octree.MaterialByID(ray.Medium).RefractiveIndex / octree.MaterialByID(mat).RefractiveIndex

	return Hit{
		Node:     node,
		Material: mat,
		Pos:      pos,
		BackStep: backStep,
		Normal:   normal,
		Reflect:  reflect(ray.Dir, normal),
		Refract:  refract(ray.Dir, normal, eta),
		UV:       types.XY(frac(pos[u]), frac(pos[v])),
		Dist:     dist,
	}
}

// Mirror the incoming direction about the surface normal.
func reflect(dir, n types.Vec3) types.Vec3 {
	return dir.Sub(n.Mul(2 * dir.Dot(n)))
}

// Snell's-law transmission direction for the given refractive index ratio.
// Total internal reflection falls back to the mirror direction so callers
// always receive a usable continuation.
func refract(dir, n types.Vec3, eta float32) types.Vec3 {
	cosi := -dir.Dot(n)
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return reflect(dir, n)
	}
	return dir.Mul(eta).Add(n.Mul(eta*cosi - float32(math.Sqrt(float64(k))))).Normalize()
}

func frac(v float32) float32 {
	f := v - float32(math.Floor(float64(v)))
	if f < 0 {
		f = 0
	} else if f >= 1 {
		f = 0
	}
	return f
}

// Slop tolerated by the coarse bounds test, in voxel units.
const coarseSlop = 1e-3

func inCoarseBounds(p types.Vec3, size float32) bool {
	lo := float32(-1) - coarseSlop
	hi := size + 1 + coarseSlop
	return p[0] > lo && p[0] < hi && p[1] > lo && p[1] < hi && p[2] > lo && p[2] < hi
}

// One-cell-widened, float-slop-tolerant bounds test.
func coarseCellInBounds(cell [3]int32, size float32) bool {
	isize := int32(size)
	for i := 0; i < 3; i++ {
		if cell[i] < -1 || cell[i] > isize {
			return false
		}
	}
	return true
}

func exactCellInBounds(cell [3]int32, size int32) bool {
	return cell[0] >= 0 && cell[0] < size &&
		cell[1] >= 0 && cell[1] < size &&
		cell[2] >= 0 && cell[2] < size
}

// Exit distance of the empty region of the given depth-delta containing
// cell, along a march from origin, plus the face normal of the crossing.
func regionExit(origin, dir types.Vec3, cell [3]int32, depthDelta int32) (float32, types.Vec3, bool) {
	r := int32(1) << uint(depthDelta)

	var regionMin [3]int32
	for i := 0; i < 3; i++ {
		regionMin[i] = cell[i] &^ (r - 1)
	}

	exit := float32(math.Inf(1))
	axis := -1
	for i := 0; i < 3; i++ {
		var t float32
		switch {
		case dir[i] > 0:
			t = (float32(regionMin[i]+r) - origin[i]) / dir[i]
		case dir[i] < 0:
			t = (float32(regionMin[i]) - origin[i]) / dir[i]
		default:
			continue
		}
		if t < exit {
			exit = t
			axis = i
		}
	}
	if axis < 0 || math.IsInf(float64(exit), 1) {
		return 0, types.Vec3{}, false
	}

	var n types.Vec3
	if dir[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}

	return exit, n, true
}
