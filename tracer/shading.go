package tracer

import (
	"math/rand"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/types"
)

// Pipeline turns a primary ray into color, shadow visibility and depth. It
// runs a bounded multi-bounce integrator: albedo accumulation along
// refraction chains, one non-recursive reflection sample per reflective
// hit, ambient occlusion from the pre-hit voxel neighborhood and a soft
// shadow ray towards the light.
type Pipeline struct {
	cfg    Config
	caster *Caster

	// Per-frame view parameters.
	ViewProj types.Mat4

	// Light position in chunk-local space and its sampling radius for the
	// penumbra jitter.
	Light       types.Vec3
	LightRadius float32

	// Sky gradient and the angular threshold (as a cosine) for the sun
	// disc.
	SkyZenith  types.Vec4
	SkyHorizon types.Vec4
	SunColor   types.Vec4
	SunDiscCos float32
}

func NewPipeline(cfg Config, caster *Caster) *Pipeline {
	size := float32(caster.Tree().Size())
	return &Pipeline{
		cfg:         cfg,
		caster:      caster,
		ViewProj:    types.Ident4(),
		Light:       types.XYZ(size*2.5, size*4, size*1.5),
		LightRadius: 0.35,
		SkyZenith:   types.XYZW(0.28, 0.46, 0.80, 1),
		SkyHorizon:  types.XYZW(0.72, 0.80, 0.92, 1),
		SunColor:    types.XYZW(1.25, 1.17, 0.95, 1),
		SunDiscCos:  0.9994,
	}
}

// Shade traces the primary ray and returns the accumulated color, the
// shadow visibility for the first hit and its normalized device depth.
// Misses resolve to the sky with full visibility and far depth. The rng is
// owned by the calling sample; it is deliberately passed by value per
// invocation so parallel samples never share generator state.
func (p *Pipeline) Shade(ray Ray, rng *rand.Rand) (types.Vec4, float32, float32) {
	color, occlusion, depth, _ := p.shade(ray, rng)
	return color, occlusion, depth
}

func (p *Pipeline) shade(ray Ray, rng *rand.Rand) (types.Vec4, float32, float32, int) {
	var accum types.Vec4

	cur := ray
	var primary Hit
	hitAny := false
	bounces := 0

	for ; bounces < p.cfg.MaxBounces; bounces++ {
		hit, ok := p.caster.Cast(cur)
		if !ok {
			accum = accum.Add(p.skyColor(cur.Dir))
			break
		}
		if !hitAny {
			primary = hit
			hitAny = true
		}

		mat := octree.MaterialByID(hit.Material)

		atten := hit.Dist * hit.Dist
		if atten < 1 {
			atten = 1
		}
		accum = accum.Mul(1 / atten).Add(mat.Albedo)

		if mat.Reflectivity > 0 {
			accum = accum.Add(p.reflectionSample(cur, hit).Mul(mat.Reflectivity))
		}

		if accum[3] < 1 {
			// Transparent so far; continue the primary march along the
			// refraction direction inside the struck material. The
			// epsilon offset keeps the new origin clear of the interface
			// it just crossed.
			cur = Ray{
				Origin:  hit.Pos.Add(hit.Refract.Mul(p.cfg.Epsilon)),
				Dir:     hit.Refract,
				MaxDist: cur.MaxDist,
				Medium:  hit.Material,
				Bounded: cur.Bounded,
			}
			continue
		}
		break
	}

	if !hitAny {
		return p.skyColor(ray.Dir), 1, 1, bounces
	}

	color := accum.Normalize()

	shade := 1 - p.ambientOcclusion(primary)
	color = types.XYZW(color[0]*shade, color[1]*shade, color[2]*shade, color[3])

	occlusion := p.shadowVisibility(primary, rng)

	depth := float32(1)
	clip := p.ViewProj.Mul4x1(primary.Pos.Vec4(1))
	if clip[3] > 0 {
		depth = clip[2] / clip[3]
	}

	return color, occlusion, depth, bounces
}

// One non-recursive reflection sample: the albedo of whatever the mirror
// ray strikes, or the sky.
func (p *Pipeline) reflectionSample(cur Ray, hit Hit) types.Vec4 {
	refl := Ray{
		Origin:  hit.Pos.Add(hit.Normal.Mul(p.cfg.Epsilon)),
		Dir:     hit.Reflect,
		MaxDist: cur.MaxDist,
		Medium:  cur.Medium,
		Bounded: cur.Bounded,
	}
	if rhit, ok := p.caster.Cast(refl); ok {
		return octree.MaterialByID(rhit.Material).Albedo
	}
	return p.skyColor(refl.Dir)
}

// Sky gradient with a cheap sun glyph: directions within a tight angular
// threshold of the light direction get a bright disc.
func (p *Pipeline) skyColor(dir types.Vec3) types.Vec4 {
	if dir.Dot(p.lightDir()) > p.SunDiscCos {
		return p.SunColor
	}
	t := types.Clamp(0.5*(dir[1]+1), 0, 1)
	return p.SkyHorizon.Mul(1 - t).Add(p.SkyZenith.Mul(t))
}

func (p *Pipeline) lightDir() types.Vec3 {
	size := float32(p.caster.Tree().Size())
	center := types.XYZ(size*0.5, size*0.5, size*0.5)
	return p.Light.Sub(center).Normalize()
}

// Ambient occlusion at the voxel just behind the hit: the 4 edge neighbors
// and 4 corner neighbors in the hit face's plane combine per corner as
// (a + b + max(corner, a*b)) / 3 and interpolate bilinearly by the hit UV.
func (p *Pipeline) ambientOcclusion(hit Hit) float32 {
	axis := 0
	if hit.Normal[1] != 0 {
		axis = 1
	} else if hit.Normal[2] != 0 {
		axis = 2
	}
	u := (axis + 1) % 3
	v := (axis + 2) % 3

	sample := func(du, dv float32) float32 {
		point := hit.BackStep
		point[u] += du
		point[v] += dv
		if p.caster.SolidAt(point[0], point[1], point[2]) {
			return 1
		}
		return 0
	}

	corner := func(su, sv float32) float32 {
		sideA := sample(su, 0)
		sideB := sample(0, sv)
		c := sample(su, sv)
		m := sideA * sideB
		if c > m {
			m = c
		}
		return (sideA + sideB + m) / 3
	}

	c00 := corner(-1, -1)
	c10 := corner(1, -1)
	c01 := corner(-1, 1)
	c11 := corner(1, 1)

	bottom := types.Mix(c00, c10, hit.UV[0])
	top := types.Mix(c01, c11, hit.UV[0])
	return types.Clamp(types.Mix(bottom, top, hit.UV[1]), 0, 1)
}

// Soft shadow: a ray towards the (jittered) light position. Occluders
// report the fraction of the light distance they were found at, giving
// distance-proportional softness; any blur happens in external post
// processing.
func (p *Pipeline) shadowVisibility(hit Hit, rng *rand.Rand) float32 {
	target := p.Light
	if rng != nil && p.LightRadius > 0 {
		target = target.Add(types.XYZ(
			(rng.Float32()-0.5)*2,
			(rng.Float32()-0.5)*2,
			(rng.Float32()-0.5)*2,
		).Mul(p.LightRadius))
	}

	toLight := target.Sub(hit.Pos)
	dist := toLight.Len()
	if dist <= 0 {
		return 1
	}

	shadow := Ray{
		Origin:  hit.Pos.Add(hit.Normal.Mul(p.cfg.Epsilon)),
		Dir:     toLight.Mul(1 / dist),
		MaxDist: dist,
		Medium:  octree.MatAir,
	}
	if blocker, ok := p.caster.Cast(shadow); ok && blocker.Dist < dist {
		return blocker.Dist / dist
	}
	return 1
}
