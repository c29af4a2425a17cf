// Package tracer implements ray traversal and shading against packed sparse
// voxel octrees, plus the tracer pool and block scheduling used to fan a
// frame out over the available CPU cores.
package tracer

import "github.com/voxelphile/octane/types"

// A ray in chunk-local voxel space. Dir must be unit length.
type Ray struct {
	Origin  types.Vec3
	Dir     types.Vec3
	MaxDist float32

	// Material the ray is currently travelling through; interfaces against
	// a different solid material produce hits and refraction ratios.
	Medium uint32

	// Bounded rays terminate when they leave the owning chunk volume
	// instead of marching through neighboring space.
	Bounded bool
}

// Hit describes a ray/voxel intersection.
type Hit struct {
	// Index of the struck node in the octree and its material id.
	Node     uint32
	Material uint32

	// Intersection point and the center of the voxel the ray occupied just
	// before striking; ambient occlusion samples around the latter.
	Pos      types.Vec3
	BackStep types.Vec3

	// Unit axis normal of the struck face and the derived bounce
	// directions.
	Normal  types.Vec3
	Reflect types.Vec3
	Refract types.Vec3

	// Fractional position on the struck face.
	UV types.Vec2

	// Distance travelled from the ray origin.
	Dist float32
}
