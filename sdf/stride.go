package sdf

import (
	"github.com/voxelphile/octane/types"
)

// March advances a ray through the distance field in strides bounded by the
// field value at each sample: the nearest seed is at least that far away, so
// the ray can skip the whole interval without missing anything. Returns the
// travel distance to the first seeded cell and whether one was reached
// within maxDist.
func March(grid *Grid, origin, dir types.Vec3, maxDist float32) (float32, bool) {
	// A floor on the stride keeps the march from stalling inside cells
	// whose field value rounds to zero length.
	const minStride = 0.05

	var t float32
	for t < maxDist {
		p := origin.Add(dir.Mul(t))
		x, y, z := int32(floor32(p[0])), int32(floor32(p[1])), int32(floor32(p[2]))

		cell := grid.At(x, y, z)
		if !cell.Valid() {
			// Outside the field there is no skip information.
			t += 1
			continue
		}
		if cell.Dist <= 0 {
			return t, true
		}

		// The field measures center-to-center distance; back the stride
		// off by the worst-case offset of the sample point within its
		// cell plus the seed cell's half extent.
		stride := cell.Dist - 1.5
		if stride < minStride {
			stride = minStride
		}
		t += stride
	}

	return maxDist, false
}

func floor32(v float32) float32 {
	if v >= 0 || v == float32(int32(v)) {
		return float32(int32(v))
	}
	return float32(int32(v) - 1)
}
