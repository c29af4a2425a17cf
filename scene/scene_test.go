package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

func TestCameraCenterRayPointsForward(t *testing.T) {
	camera := NewCamera(45)
	camera.Position = types.XYZ(0, 0, 0)
	camera.LookAt = types.XYZ(0, 0, -1)
	camera.SetupProjection(1.0)

	dir := camera.RayDir(0.5, 0.5)
	expDir := types.XYZ(0, 0, -1)
	if dir.Sub(expDir).Len() > 1e-4 {
		t.Fatalf("expected center ray to point at %v; got %v", expDir, dir)
	}
}

func TestCameraFrustrumCornersDiverge(t *testing.T) {
	camera := NewCamera(60)
	camera.Position = types.XYZ(0, 0, 0)
	camera.LookAt = types.XYZ(0, 0, -1)
	camera.SetupProjection(1.0)

	topLeft := camera.RayDir(0, 0)
	bottomRight := camera.RayDir(1, 1)
	if topLeft[0] >= 0 || topLeft[1] <= 0 {
		t.Fatalf("expected top-left ray to point left and up; got %v", topLeft)
	}
	if bottomRight[0] <= 0 || bottomRight[1] >= 0 {
		t.Fatalf("expected bottom-right ray to point right and down; got %v", bottomRight)
	}
}

func TestCameraMove(t *testing.T) {
	type spec struct {
		dir      CameraDirection
		expected types.Vec3
	}

	specs := []spec{
		{Forward, types.XYZ(0, 0, -2)},
		{Backward, types.XYZ(0, 0, 2)},
		{Left, types.XYZ(-2, 0, 0)},
		{Right, types.XYZ(2, 0, 0)},
	}

	for idx, s := range specs {
		camera := NewCamera(45)
		camera.Position = types.XYZ(0, 0, 0)
		camera.LookAt = types.XYZ(0, 0, -1)
		camera.SetupProjection(1.0)

		camera.Move(s.dir, 2.0)
		if camera.Position.Sub(s.expected).Len() > 1e-4 {
			t.Fatalf("[spec %d] expected camera position %v; got %v", idx, s.expected, camera.Position)
		}
	}
}

func TestAddChunkRejectsDuplicateCoords(t *testing.T) {
	s := NewScene()
	tree := octree.NewBuilder(2).Build()

	err := s.AddChunk(&octree.Chunk{Coord: [3]int32{1, 0, 0}, Tree: tree})
	if err != nil {
		t.Fatal(err)
	}
	err = s.AddChunk(&octree.Chunk{Coord: [3]int32{1, 0, 0}, Tree: tree})
	if err == nil {
		t.Fatal("expected duplicate chunk coord to be rejected")
	}
}

func TestVisibleChunksSortedNearToFar(t *testing.T) {
	s := NewScene()
	tree := octree.NewBuilder(3).Build()
	coords := [][3]int32{{2, 0, 0}, {0, 0, 0}, {1, 0, 0}, {40, 0, 0}}
	for _, c := range coords {
		if err := s.AddChunk(&octree.Chunk{Coord: c, Tree: tree}); err != nil {
			t.Fatal(err)
		}
	}

	visible := s.VisibleChunks(types.XYZ(4, 4, 4), 4)
	if len(visible) != 3 {
		t.Fatalf("expected chunk beyond the render distance to be culled; got %d chunks", len(visible))
	}

	lastDist := float32(-1)
	for _, c := range visible {
		dist := c.Center().Sub(types.XYZ(4, 4, 4)).Len()
		if dist < lastDist {
			t.Fatalf("expected chunks sorted near to far; got %v", visible)
		}
		lastDist = dist
	}
}

func TestSwapChunkPublishesNewTree(t *testing.T) {
	s := NewScene()
	oldTree := octree.NewBuilder(2).Build()
	if err := s.AddChunk(&octree.Chunk{Tree: oldTree}); err != nil {
		t.Fatal(err)
	}

	b := octree.NewBuilder(2)
	b.Set(0, 0, 0, octree.MatStone)
	newTree := b.Build()

	prev, err := s.SwapChunk([3]int32{0, 0, 0}, newTree)
	if err != nil {
		t.Fatal(err)
	}
	if prev != oldTree {
		t.Fatal("expected swap to return the previous tree")
	}
	if s.ChunkAt([3]int32{0, 0, 0}).Tree != newTree {
		t.Fatal("expected swap to publish the new tree")
	}

	if _, err = s.SwapChunk([3]int32{9, 9, 9}, newTree); err == nil {
		t.Fatal("expected swap on unknown coord to fail")
	}
}

func TestGenerateChunkIsDeterministic(t *testing.T) {
	opt := DefaultGenerateOptions()
	opt.Depth = 5

	first := GenerateChunk([3]int32{1, 0, -2}, opt)
	second := GenerateChunk([3]int32{1, 0, -2}, opt)

	if len(first.Tree.Nodes) != len(second.Tree.Nodes) {
		t.Fatalf("expected identical node counts; got %d and %d", len(first.Tree.Nodes), len(second.Tree.Nodes))
	}
	for idx, node := range first.Tree.Nodes {
		if node != second.Tree.Nodes[idx] {
			t.Fatalf("expected node %d to match across regenerations; got %v and %v", idx, node, second.Tree.Nodes[idx])
		}
	}
}

func TestGenerateChunkFillsWaterToSeaLevel(t *testing.T) {
	opt := DefaultGenerateOptions()
	opt.Depth = 5

	chunk := GenerateChunk([3]int32{0, 0, 0}, opt)
	dim := chunk.Tree.Size()

	foundWater := false
	for x := int32(0); x < dim && !foundWater; x++ {
		for z := int32(0); z < dim && !foundWater; z++ {
			for y := int32(0); y <= opt.SeaLevel; y++ {
				node, _, found := chunk.Tree.Locate(float32(x)+0.5, float32(y)+0.5, float32(z)+0.5)
				if found && chunk.Tree.Nodes[node].Material == octree.MatWater {
					foundWater = true
					break
				}
			}
		}
	}
	if !foundWater {
		t.Fatal("expected terrain below the sea level to contain water")
	}
}

func TestGenerateSceneBuildsChunkGridWithCamera(t *testing.T) {
	opt := DefaultGenerateOptions()
	opt.Depth = 4

	sc, err := GenerateScene(1, opt)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Chunks) != 9 {
		t.Fatalf("expected a radius 1 grid to hold 9 chunks; got %d", len(sc.Chunks))
	}
	if sc.Camera == nil {
		t.Fatal("expected the generated scene to carry a camera")
	}
	if visible := sc.VisibleChunks(sc.Camera.Position, 1); len(visible) == 0 {
		t.Fatal("expected chunks to be visible from the generated camera")
	}
}

func TestTerrainHeightBounded(t *testing.T) {
	for x := int32(-200); x < 200; x += 7 {
		for z := int32(-200); z < 200; z += 7 {
			h := terrainHeight(x, z, 42)
			if h < 1 || float64(h) > 18+9+4.5+2+1 {
				t.Fatalf("terrain height %d at (%d,%d) outside expected range", h, x, z)
			}
		}
	}
}

func TestReadSceneRoundTrip(t *testing.T) {
	b := octree.NewBuilder(3)
	b.Set(1, 2, 3, octree.MatGrass)
	tree := b.Build()

	path := filepath.Join(t.TempDir(), "world.oct")
	if err := WriteOctree(path, tree); err != nil {
		t.Fatal(err)
	}

	s, err := ReadScene(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Camera == nil {
		t.Fatal("expected loaded scene to carry a camera")
	}
	chunk := s.ChunkAt([3]int32{0, 0, 0})
	if chunk == nil {
		t.Fatal("expected loaded scene to contain a chunk at the origin")
	}
	if len(chunk.Tree.Nodes) != len(tree.Nodes) {
		t.Fatalf("expected %d nodes after round trip; got %d", len(tree.Nodes), len(chunk.Tree.Nodes))
	}
}

func TestReadSceneMissingFile(t *testing.T) {
	if _, err := ReadScene(filepath.Join(os.TempDir(), "octane-does-not-exist.oct")); err == nil {
		t.Fatal("expected read of missing file to fail")
	}
}
