package renderer

import "github.com/voxelphile/octane/tracer"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Bounce budget for the shading pipeline.
	NumBounces uint32

	// Number of samples.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Chunks visible in each direction from the camera.
	RenderDistance int32

	// Per-cast iteration budget.
	MaxSteps int
}

// Derive the traversal configuration shared with the tracers from the
// renderer options. A zero value falls back to the traversal default.
func (o Options) traceConfig(chunkSize int32) tracer.Config {
	cfg := tracer.DefaultConfig()
	if chunkSize > 0 {
		cfg.ChunkSize = chunkSize
	}
	if o.RenderDistance > 0 {
		cfg.RenderDistance = o.RenderDistance
	}
	if o.MaxSteps > 0 {
		cfg.MaxSteps = o.MaxSteps
	}
	if o.NumBounces > 0 {
		cfg.MaxBounces = int(o.NumBounces)
	}
	return cfg
}
