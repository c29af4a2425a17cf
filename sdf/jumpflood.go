// Package sdf builds signed distance fields over voxel volumes with the
// jump flooding algorithm and marches rays through them with
// distance-bounded strides.
package sdf

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/voxelphile/octane/octree"
)

// MaxVolumeDepth is the deepest octree Build accepts. The dense cell buffers
// and the int32 index arithmetic cover dim^3 cells, so a depth of 10
// (1024^3) is the largest volume that stays representable; deeper trees are
// valid on the wire but cannot be flooded.
const MaxVolumeDepth = 10

// Cell carries the coordinate of the nearest seed found so far and the
// distance to it, measured between cell centers.
type Cell struct {
	Seed [3]int32
	Dist float32
}

// Unseeded cells carry this sentinel until a flood pass reaches them.
var noSeed = Cell{Seed: [3]int32{-1, -1, -1}, Dist: float32(math.Inf(1))}

// Valid reports whether the cell has been claimed by a seed.
func (c Cell) Valid() bool {
	return c.Seed[0] >= 0
}

// Grid is a dense distance field over a cubic volume.
type Grid struct {
	Dim   int32
	Cells []Cell
}

// At returns the cell at the given coordinate. Out-of-range coordinates
// sample as unseeded.
func (g *Grid) At(x, y, z int32) Cell {
	if x < 0 || x >= g.Dim || y < 0 || y >= g.Dim || z < 0 || z >= g.Dim {
		return noSeed
	}
	return g.Cells[g.index(x, y, z)]
}

// Dist returns the distance to the nearest seed from the given coordinate.
func (g *Grid) Dist(x, y, z int32) float32 {
	return g.At(x, y, z).Dist
}

func (g *Grid) index(x, y, z int32) int32 {
	return (x*g.Dim+y)*g.Dim + z
}

// BuildOptions control distance field construction.
type BuildOptions struct {
	// Number of goroutines per pass. A value of 0 selects one per
	// logical core.
	Workers int

	// Explicit seed coordinates. When empty the solid voxels of the
	// source octree seed the field instead.
	Seeds [][3]int32
}

// Build computes the distance field for the volume of the given octree. The
// field converges after ceil(log2(dim)) flood passes; each pass halves the
// jump stride down to a final stride of one cell. Passes run the full grid
// before the next begins, so a cell only ever reads the previous pass's
// state.
//
// Trees deeper than MaxVolumeDepth are rejected.
func Build(tree *octree.Octree, opt BuildOptions) (*Grid, error) {
	if tree.MaxDepth > MaxVolumeDepth {
		return nil, fmt.Errorf("sdf: volume depth %d exceeds the supported maximum %d", tree.MaxDepth, MaxVolumeDepth)
	}

	dim := tree.Size()
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	front := make([]Cell, dim*dim*dim)
	back := make([]Cell, dim*dim*dim)
	grid := &Grid{Dim: dim, Cells: front}

	seedPass(grid, tree, opt.Seeds, workers)

	for stride := initialStride(dim); stride >= 1; stride /= 2 {
		floodPass(grid, back, stride, workers)
		grid.Cells, back = back, grid.Cells
	}

	return grid, nil
}

// The first jump stride is half the smallest power of two covering the
// volume edge.
func initialStride(dim int32) int32 {
	p := int32(1)
	for p < dim {
		p *= 2
	}
	return p / 2
}

// Mark the seed cells and reset everything else to the unseeded sentinel.
func seedPass(grid *Grid, tree *octree.Octree, seeds [][3]int32, workers int) {
	if len(seeds) > 0 {
		for idx := range grid.Cells {
			grid.Cells[idx] = noSeed
		}
		for _, s := range seeds {
			if s[0] < 0 || s[0] >= grid.Dim || s[1] < 0 || s[1] >= grid.Dim || s[2] < 0 || s[2] >= grid.Dim {
				continue
			}
			grid.Cells[grid.index(s[0], s[1], s[2])] = Cell{Seed: s, Dist: 0}
		}
		return
	}

	eachSlab(grid.Dim, workers, func(x0, x1 int32) {
		for x := x0; x < x1; x++ {
			for y := int32(0); y < grid.Dim; y++ {
				for z := int32(0); z < grid.Dim; z++ {
					cell := noSeed
					node, _, found := tree.Locate(float32(x)+0.5, float32(y)+0.5, float32(z)+0.5)
					if found && octree.IsSolid(tree.Nodes[node].Material) {
						cell = Cell{Seed: [3]int32{x, y, z}, Dist: 0}
					}
					grid.Cells[grid.index(x, y, z)] = cell
				}
			}
		}
	})
}

// One flood pass at the given stride: every cell inspects itself and its 26
// stride-offset neighbors in the previous state and keeps the closest
// claimed seed. Ties keep the first candidate found.
func floodPass(grid *Grid, dst []Cell, stride int32, workers int) {
	eachSlab(grid.Dim, workers, func(x0, x1 int32) {
		for x := x0; x < x1; x++ {
			for y := int32(0); y < grid.Dim; y++ {
				for z := int32(0); z < grid.Dim; z++ {
					best := grid.At(x, y, z)
					for dx := int32(-1); dx <= 1; dx++ {
						for dy := int32(-1); dy <= 1; dy++ {
							for dz := int32(-1); dz <= 1; dz++ {
								if dx == 0 && dy == 0 && dz == 0 {
									continue
								}
								cand := grid.At(x+dx*stride, y+dy*stride, z+dz*stride)
								if !cand.Valid() {
									continue
								}
								d := seedDist(cand.Seed, x, y, z)
								if d < best.Dist {
									best = Cell{Seed: cand.Seed, Dist: d}
								}
							}
						}
					}
					dst[grid.index(x, y, z)] = best
				}
			}
		}
	})
}

func seedDist(seed [3]int32, x, y, z int32) float32 {
	dx := float64(seed[0] - x)
	dy := float64(seed[1] - y)
	dz := float64(seed[2] - z)
	return float32(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

// Split the x range of the grid into contiguous slabs and run fn on each
// from its own goroutine, returning once every slab completes.
func eachSlab(dim int32, workers int, fn func(x0, x1 int32)) {
	if int32(workers) > dim {
		workers = int(dim)
	}

	var wg sync.WaitGroup
	slab := (dim + int32(workers) - 1) / int32(workers)
	for x0 := int32(0); x0 < dim; x0 += slab {
		x1 := x0 + slab
		if x1 > dim {
			x1 = dim
		}
		wg.Add(1)
		go func(x0, x1 int32) {
			defer wg.Done()
			fn(x0, x1)
		}(x0, x1)
	}
	wg.Wait()
}
