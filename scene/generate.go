package scene

import (
	"math"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

// GenerateOptions control procedural chunk generation.
type GenerateOptions struct {
	// Octree depth of each generated chunk. A depth of 7 yields 128^3
	// voxel chunks.
	Depth int32

	// Height of the water table in voxels. Terrain below this level that
	// is not solid gets filled with water.
	SeaLevel int32

	// Seed perturbs the terrain height field so different worlds do not
	// look alike.
	Seed int64
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Depth:    7,
		SeaLevel: 20,
		Seed:     1,
	}
}

// GenerateChunk builds the terrain for a single chunk coordinate. The height
// field is a fixed sum of sines so regeneration of the same coordinate with
// the same options is deterministic, which the chunk streaming relies on.
func GenerateChunk(coord [3]int32, opt GenerateOptions) *octree.Chunk {
	builder := octree.NewBuilder(opt.Depth)
	dim := int32(1) << opt.Depth

	baseX := coord[0] * dim
	baseZ := coord[2] * dim

	for x := int32(0); x < dim; x++ {
		for z := int32(0); z < dim; z++ {
			h := terrainHeight(baseX+x, baseZ+z, opt.Seed)
			if h >= dim {
				h = dim - 1
			}
			for y := int32(0); y <= h; y++ {
				builder.Set(uint32(x), uint32(y), uint32(z), layerMaterial(y, h, opt.SeaLevel))
			}
			for y := h + 1; y <= opt.SeaLevel && y < dim; y++ {
				builder.Set(uint32(x), uint32(y), uint32(z), octree.MatWater)
			}
		}
	}

	return &octree.Chunk{
		Coord: coord,
		Tree:  builder.Build(),
	}
}

// GenerateScene produces a grid of chunks within radius of the origin
// together with a camera placed above the terrain looking into the volume.
// It backs the demo render path when no scene file is supplied.
func GenerateScene(radius int32, opt GenerateOptions) (*Scene, error) {
	s := NewScene()
	for cx := -radius; cx <= radius; cx++ {
		for cz := -radius; cz <= radius; cz++ {
			// Single chunk layer; terrain never exceeds one chunk
			// of height.
			if err := s.AddChunk(GenerateChunk([3]int32{cx, 0, cz}, opt)); err != nil {
				return nil, err
			}
		}
	}

	dim := float32(int32(1) << opt.Depth)
	cam := NewCamera(45)
	cam.Position = types.XYZ(-dim*0.35, dim*1.25, -dim*0.35)
	cam.LookAt = types.XYZ(dim*0.5, dim*0.25, dim*0.5)
	cam.Update()
	s.SetCamera(cam)
	s.Light = types.XYZ(dim*0.5, dim*2.5, dim*0.5)
	return s, nil
}

func terrainHeight(x, z int32, seed int64) int32 {
	fx := float64(x) * 0.045
	fz := float64(z) * 0.045
	phase := float64(seed%1024) * 0.173

	h := 18.0
	h += 9.0 * math.Sin(fx+phase) * math.Cos(fz*0.8-phase)
	h += 4.5 * math.Sin(fx*2.3+fz*1.7+phase*2)
	h += 2.0 * math.Cos(fx*5.1-fz*4.3)
	if h < 1 {
		h = 1
	}
	return int32(h)
}

func layerMaterial(y, surface, seaLevel int32) uint32 {
	switch {
	case y == surface && y > seaLevel:
		return octree.MatGrass
	case y >= surface-3:
		return octree.MatDirt
	default:
		return octree.MatStone
	}
}
