package tracer

import (
	"math"

	"github.com/voxelphile/octane/types"
)

// Axis set for boxes that are not rotated relative to the grid.
var AxisAligned = [3]types.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// IntersectOBB clips a ray against an oriented box using the three-axis slab
// test and returns the entry distance along the ray. Rays starting inside
// the box report an entry distance of zero.
func IntersectOBB(origin, dir, center, halfExtent types.Vec3, axes [3]types.Vec3) (float32, bool) {
	const parallelEps = 1e-7

	delta := center.Sub(origin)
	tMin := float32(math.Inf(-1))
	tMax := float32(math.Inf(1))

	for i := 0; i < 3; i++ {
		e := axes[i].Dot(delta)
		f := axes[i].Dot(dir)
		h := halfExtent[i]

		if f > parallelEps || f < -parallelEps {
			t1 := (e + h) / f
			t2 := (e - h) / f
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tMin {
				tMin = t1
			}
			if t2 < tMax {
				tMax = t2
			}
			// The slab intervals must overlap; omitting this rejection
			// turns every miss into a phantom hit.
			if tMax < tMin {
				return 0, false
			}
			if tMax < 0 {
				return 0, false
			}
		} else if e < -h || e > h {
			// Ray parallel to the slab and outside it.
			return 0, false
		}
	}

	if tMin < 0 {
		tMin = 0
	}
	return tMin, true
}
