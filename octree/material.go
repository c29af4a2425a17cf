package octree

import "github.com/voxelphile/octane/types"

// Material ids understood by the shading pipeline. The table is fixed at
// compile time; there is no dynamic registration.
const (
	MatError uint32 = iota
	MatAir
	MatGrass
	MatWater
	MatDirt
	MatStone
)

// Surface properties for a voxel material.
type Material struct {
	Name            string
	Albedo          types.Vec4
	Reflectivity    float32
	RefractiveIndex float32

	// Solid materials stop rays; non-solid ones (air) are traversed.
	Solid bool
}

var materials = [...]Material{
	MatError: {Name: "error", Albedo: types.XYZW(1, 0, 1, 1), RefractiveIndex: 1.0, Solid: true},
	MatAir:   {Name: "air", Albedo: types.XYZW(0, 0, 0, 0), RefractiveIndex: 1.0},
	MatGrass: {Name: "grass", Albedo: types.XYZW(0.24, 0.58, 0.22, 1), RefractiveIndex: 1.0, Solid: true},
	MatWater: {Name: "water", Albedo: types.XYZW(0.12, 0.32, 0.58, 0.62), Reflectivity: 0.25, RefractiveIndex: 1.33, Solid: true},
	MatDirt:  {Name: "dirt", Albedo: types.XYZW(0.44, 0.31, 0.17, 1), RefractiveIndex: 1.0, Solid: true},
	MatStone: {Name: "stone", Albedo: types.XYZW(0.52, 0.52, 0.55, 1), Reflectivity: 0.05, RefractiveIndex: 1.0, Solid: true},
}

// Look up a material by id. Unknown ids resolve to the error material so
// bad data renders loudly instead of crashing.
func MaterialByID(id uint32) Material {
	if id >= uint32(len(materials)) {
		return materials[MatError]
	}
	return materials[id]
}

// Report whether the material stops rays.
func IsSolid(id uint32) bool {
	return MaterialByID(id).Solid
}

// Number of entries in the material table.
func MaterialCount() uint32 {
	return uint32(len(materials))
}
