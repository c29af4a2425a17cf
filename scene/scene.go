package scene

import (
	"fmt"
	"sort"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

// A Scene groups the chunks to render with the camera and light. The tracer
// core only ever reads chunk state; generation and unloading happen
// elsewhere.
type Scene struct {
	Camera *Camera
	Chunks []*octree.Chunk

	// Light position in world space.
	Light types.Vec3
}

func NewScene() *Scene {
	return &Scene{
		Chunks: make([]*octree.Chunk, 0),
		Light:  types.XYZ(64, 160, 48),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a chunk to the scene.
func (s *Scene) AddChunk(chunk *octree.Chunk) error {
	if chunk.Tree == nil {
		return fmt.Errorf("scene: chunk %v has no octree assigned", chunk.Coord)
	}
	for _, c := range s.Chunks {
		if c.Coord == chunk.Coord {
			return fmt.Errorf("scene: chunk %v already added", chunk.Coord)
		}
	}
	s.Chunks = append(s.Chunks, chunk)
	return nil
}

// Look up a chunk by its grid coordinate.
func (s *Scene) ChunkAt(coord [3]int32) *octree.Chunk {
	for _, c := range s.Chunks {
		if c.Coord == coord {
			return c
		}
	}
	return nil
}

// SwapChunk publishes a replacement octree for the chunk at the given
// coordinate and returns the previous tree. Swaps must happen between
// frames: in-flight rays keep whatever tree they started with and this
// package does not guard against readers racing the swap.
func (s *Scene) SwapChunk(coord [3]int32, tree *octree.Octree) (*octree.Octree, error) {
	chunk := s.ChunkAt(coord)
	if chunk == nil {
		return nil, fmt.Errorf("scene: no chunk at %v", coord)
	}
	return chunk.Swap(tree), nil
}

// VisibleChunks returns the chunks whose volumes fall within the render
// distance of the given position, ordered near to far so that traversal can
// stop at the first chunk reporting a hit.
func (s *Scene) VisibleChunks(pos types.Vec3, renderDistance int32) []*octree.Chunk {
	visible := make([]*octree.Chunk, 0, len(s.Chunks))
	for _, c := range s.Chunks {
		size := float32(c.Tree.Size())
		span := float32(renderDistance)*size + size
		center := c.Center()
		if abs32(center[0]-pos[0]) > span ||
			abs32(center[1]-pos[1]) > span ||
			abs32(center[2]-pos[2]) > span {
			continue
		}
		visible = append(visible, c)
	}

	sort.Slice(visible, func(i, j int) bool {
		di := visible[i].Center().Sub(pos).Len()
		dj := visible[j].Center().Sub(pos).Len()
		return di < dj
	})

	return visible
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
