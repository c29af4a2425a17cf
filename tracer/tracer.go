package tracer

import "time"

type Flag uint8

const (
	// The tracer runs in-process and shares the frame buffers directly.
	Local Flag = 1 << iota
)

type UpdateType uint8

const (
	// The camera moved; tracers must refresh their cached frustum rays
	// and view-projection matrix. The payload is a *scene.Camera.
	UpdateCamera UpdateType = iota

	// The scene chunk set changed or a chunk octree was swapped. The
	// payload is a *scene.Scene.
	UpdateScene

	// Traversal options changed. The payload is a Config value.
	UpdateConfig
)

// A unit of work processed by a tracer. Each request covers a horizontal
// band of the frame.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The number of emitted rays per traced pixel.
	SamplesPerPixel uint32

	// The exposure value controls HDR -> LDR mapping.
	Exposure float32

	// A seed for the tracer's random number generator. Jittered light
	// sampling keys off this so repeated frames converge rather than
	// flicker.
	Seed uint32

	// Number of sequential rendered frames from the current camera
	// position.
	FrameCount uint32

	// A channel to signal on block completion with the number of
	// completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get tracer flags.
	Flags() Flag

	// Get the tracer's speed estimate compared to a baseline
	// single-worker implementation.
	Speed() uint32

	// Initialize tracer.
	Init() error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Update tracer state.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
