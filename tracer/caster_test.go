package tracer

import (
	"testing"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

func singleVoxelTree(t *testing.T, x, y, z uint32, material uint32) *octree.Octree {
	t.Helper()
	builder := octree.NewBuilder(2)
	builder.Set(x, y, z, material)
	return builder.Build()
}

func TestCastHitsSingleVoxel(t *testing.T) {
	tree := singleVoxelTree(t, 2, 1, 1, octree.MatStone)
	caster := NewCaster(DefaultConfig(), tree)

	ray := Ray{
		Origin: types.XYZ(-2, 1.5, 1.5),
		Dir:    types.XYZ(1, 0, 0),
		Medium: octree.MatAir,
	}

	hit, ok := caster.Cast(ray)
	if !ok {
		t.Fatal("expected the ray to strike the voxel")
	}
	if hit.Material != octree.MatStone {
		t.Fatalf("expected stone; got material %d", hit.Material)
	}
	if absDiff(hit.Dist, 4) > 0.05 {
		t.Fatalf("expected a hit around distance 4; got %f", hit.Dist)
	}
	if hit.Normal != types.XYZ(-1, 0, 0) {
		t.Fatalf("expected the -x face normal; got %v", hit.Normal)
	}
	if hit.BackStep.Sub(types.XYZ(1.5, 1.5, 1.5)).Len() > 1e-4 {
		t.Fatalf("expected the back-step voxel center at (1.5,1.5,1.5); got %v", hit.BackStep)
	}
	if absDiff(hit.UV[0], 0.5) > 0.01 || absDiff(hit.UV[1], 0.5) > 0.01 {
		t.Fatalf("expected the hit at the face center; got UV %v", hit.UV)
	}
}

func TestCastNormalIncidenceBounceDirections(t *testing.T) {
	tree := singleVoxelTree(t, 2, 1, 1, octree.MatWater)
	caster := NewCaster(DefaultConfig(), tree)

	hit, ok := caster.Cast(Ray{
		Origin: types.XYZ(0.1, 1.5, 1.5),
		Dir:    types.XYZ(1, 0, 0),
		Medium: octree.MatAir,
	})
	if !ok {
		t.Fatal("expected the ray to strike the voxel")
	}

	// At normal incidence the mirror direction folds straight back and
	// the refracted ray continues undeflected regardless of the index
	// ratio.
	if hit.Reflect.Sub(types.XYZ(-1, 0, 0)).Len() > 1e-5 {
		t.Fatalf("expected reflection (-1,0,0); got %v", hit.Reflect)
	}
	if hit.Refract.Sub(types.XYZ(1, 0, 0)).Len() > 1e-5 {
		t.Fatalf("expected refraction (1,0,0); got %v", hit.Refract)
	}
}

func TestCastMissesEmptyTree(t *testing.T) {
	caster := NewCaster(DefaultConfig(), octree.NewBuilder(2).Build())

	if _, ok := caster.Cast(Ray{Origin: types.XYZ(-2, 2, 2), Dir: types.XYZ(1, 0, 0), Medium: octree.MatAir}); ok {
		t.Fatal("expected a miss in an empty tree")
	}
}

func TestCastRespectsMaxDist(t *testing.T) {
	tree := singleVoxelTree(t, 3, 1, 1, octree.MatStone)
	caster := NewCaster(DefaultConfig(), tree)

	ray := Ray{Origin: types.XYZ(0.5, 1.5, 1.5), Dir: types.XYZ(1, 0, 0), MaxDist: 1.5, Medium: octree.MatAir}
	if _, ok := caster.Cast(ray); ok {
		t.Fatal("expected the ray to expire before the voxel")
	}

	ray.MaxDist = 8
	if _, ok := caster.Cast(ray); !ok {
		t.Fatal("expected the longer ray to reach the voxel")
	}
}

func TestCastRespectsStepBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 2

	tree := singleVoxelTree(t, 3, 1, 1, octree.MatStone)
	caster := NewCaster(cfg, tree)

	if _, ok := caster.Cast(Ray{Origin: types.XYZ(0.5, 1.5, 1.5), Dir: types.XYZ(1, 0, 0), Medium: octree.MatAir}); ok {
		t.Fatal("expected the step budget to expire before the voxel")
	}
}

func TestCastBoundedRayDiesAtChunkExit(t *testing.T) {
	caster := NewCaster(DefaultConfig(), octree.NewBuilder(2).Build())

	ray := Ray{Origin: types.XYZ(2, 2, 2), Dir: types.XYZ(1, 0, 0), Bounded: true, Medium: octree.MatAir}
	if _, ok := caster.Cast(ray); ok {
		t.Fatal("expected the bounded ray to exit without a hit")
	}
}

func TestCastSkipsEmptyRegions(t *testing.T) {
	// A deep tree with a single distant voxel: the region-skip jumps over
	// the large empty octants instead of stepping cell by cell, so the
	// hit must land well inside a small step budget.
	builder := octree.NewBuilder(6)
	builder.Set(60, 32, 32, octree.MatDirt)
	tree := builder.Build()

	cfg := DefaultConfig()
	cfg.MaxSteps = 24
	caster := NewCaster(cfg, tree)

	hit, ok := caster.Cast(Ray{Origin: types.XYZ(0.5, 32.5, 32.5), Dir: types.XYZ(1, 0, 0), Medium: octree.MatAir})
	if !ok {
		t.Fatal("expected the region-skipping march to reach the voxel")
	}
	if absDiff(hit.Dist, 59.5) > 0.1 {
		t.Fatalf("expected a hit around distance 59.5; got %f", hit.Dist)
	}
}

func TestCastMediumSuppressesSameMaterial(t *testing.T) {
	// A ray travelling inside water must pass through further water cells
	// and only report the interface with a different solid.
	builder := octree.NewBuilder(2)
	for x := uint32(0); x < 3; x++ {
		builder.Set(x, 1, 1, octree.MatWater)
	}
	builder.Set(3, 1, 1, octree.MatDirt)
	caster := NewCaster(DefaultConfig(), builder.Build())

	hit, ok := caster.Cast(Ray{Origin: types.XYZ(0.5, 1.5, 1.5), Dir: types.XYZ(1, 0, 0), Medium: octree.MatWater})
	if !ok {
		t.Fatal("expected the submerged ray to reach the dirt interface")
	}
	if hit.Material != octree.MatDirt {
		t.Fatalf("expected a dirt hit; got material %d", hit.Material)
	}
	if absDiff(hit.Dist, 2.5) > 0.05 {
		t.Fatalf("expected the interface at distance 2.5; got %f", hit.Dist)
	}
}

func TestSolidAt(t *testing.T) {
	tree := singleVoxelTree(t, 1, 2, 3, octree.MatGrass)
	caster := NewCaster(DefaultConfig(), tree)

	if !caster.SolidAt(1.5, 2.5, 3.5) {
		t.Fatal("expected the set voxel to sample solid")
	}
	if caster.SolidAt(0.5, 0.5, 0.5) {
		t.Fatal("expected an empty voxel to sample empty")
	}
	if caster.SolidAt(-1, 2.5, 3.5) || caster.SolidAt(1.5, 2.5, 7) {
		t.Fatal("expected out-of-range samples to be empty")
	}
}
