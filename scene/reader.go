package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

// ReadOctree loads an encoded octree from a local path or any URL scheme
// go-getter understands (http, s3, git). Remote resources are fetched into a
// temporary file which is removed before returning.
func ReadOctree(src string) (*octree.Octree, error) {
	path := src
	if isRemote(src) {
		tmpDir, err := os.MkdirTemp("", "octane-fetch")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(tmpDir)

		path = filepath.Join(tmpDir, "scene.oct")
		if err = getter.GetFile(path, src); err != nil {
			return nil, fmt.Errorf("scene: could not fetch %q: %v", src, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return octree.Decode(f)
}

// ReadScene loads a single-chunk scene from src and places a camera at the
// near top corner of the volume looking towards its center.
func ReadScene(src string) (*Scene, error) {
	tree, err := ReadOctree(src)
	if err != nil {
		return nil, err
	}

	s := NewScene()
	if err = s.AddChunk(&octree.Chunk{Tree: tree}); err != nil {
		return nil, err
	}

	dim := float32(tree.Size())
	cam := NewCamera(45)
	cam.Position = types.XYZ(-dim*0.35, dim*1.25, -dim*0.35)
	cam.LookAt = types.XYZ(dim*0.5, dim*0.25, dim*0.5)
	cam.Update()
	s.SetCamera(cam)
	s.Light = types.XYZ(dim*0.5, dim*2.5, dim*0.5)

	return s, nil
}

// WriteOctree encodes the chunk octree to a local file.
func WriteOctree(path string, tree *octree.Octree) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return octree.Encode(f, tree)
}

func isRemote(src string) bool {
	// Windows drive letters are not schemes.
	return strings.Index(src, "://") > 1
}
