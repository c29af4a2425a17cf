package tracer

import (
	"math"
	"testing"

	"github.com/voxelphile/octane/types"
)

func TestIntersectOBB(t *testing.T) {
	type spec struct {
		origin   types.Vec3
		dir      types.Vec3
		expEntry float32
		expHit   bool
	}

	center := types.XYZ(0, 0, 0)
	halfExtent := types.XYZ(1, 1, 1)
	diag := float32(1 / math.Sqrt2)

	specs := []spec{
		// Head-on hit from outside.
		{types.XYZ(-3, 0, 0), types.XYZ(1, 0, 0), 2, true},
		// Hit along the other axes.
		{types.XYZ(0, 4, 0), types.XYZ(0, -1, 0), 3, true},
		{types.XYZ(0, 0, -2.5), types.XYZ(0, 0, 1), 1.5, true},
		// Starting inside clips to zero.
		{types.XYZ(0.25, -0.5, 0), types.XYZ(1, 0, 0), 0, true},
		// Box behind the ray.
		{types.XYZ(3, 0, 0), types.XYZ(1, 0, 0), 0, false},
		// Parallel to a slab and outside it.
		{types.XYZ(-3, 2, 0), types.XYZ(1, 0, 0), 0, false},
		// Each slab is crossed but the intervals never overlap; without
		// the empty-interval rejection this registers as a hit.
		{types.XYZ(-3, 6, 0), types.XYZ(diag, -diag, 0), 0, false},
	}

	for idx, s := range specs {
		entry, hit := IntersectOBB(s.origin, s.dir, center, halfExtent, AxisAligned)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit %t; got %t", idx, s.expHit, hit)
		}
		if !hit {
			continue
		}
		if absDiff(entry, s.expEntry) > 1e-4 {
			t.Fatalf("[spec %d] expected entry distance %f; got %f", idx, s.expEntry, entry)
		}
	}
}

func TestIntersectOBBRotated(t *testing.T) {
	// Box rotated 45 degrees around y; a ray down the x axis should now
	// enter at the corner distance instead of the slab distance.
	diag := float32(1 / math.Sqrt2)
	axes := [3]types.Vec3{
		{diag, 0, -diag},
		{0, 1, 0},
		{diag, 0, diag},
	}

	entry, hit := IntersectOBB(types.XYZ(-3, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, 0), types.XYZ(1, 1, 1), axes)
	if !hit {
		t.Fatal("expected the ray to strike the rotated box")
	}
	expEntry := 3 - float32(math.Sqrt2)
	if absDiff(entry, expEntry) > 1e-4 {
		t.Fatalf("expected entry distance %f; got %f", expEntry, entry)
	}
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
