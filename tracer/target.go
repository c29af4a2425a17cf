package tracer

// Target holds the output buffers a local tracer renders into. The renderer
// owns the buffers; tracers write disjoint row bands so no synchronization
// is needed between them.
type Target struct {
	FrameW uint32
	FrameH uint32

	// Tonemapped RGBA output, 4 bytes per pixel.
	Color []uint8

	// Shadow visibility for the primary hit of each pixel, 1.0 when the
	// light is unoccluded.
	Occlusion []float32

	// Normalized device depth of the primary hit, 1.0 for misses.
	Depth []float32
}

func NewTarget(frameW, frameH uint32) *Target {
	pixels := frameW * frameH
	return &Target{
		FrameW:    frameW,
		FrameH:    frameH,
		Color:     make([]uint8, pixels*4),
		Occlusion: make([]float32, pixels),
		Depth:     make([]float32, pixels),
	}
}
