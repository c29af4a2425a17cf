package renderer

import "image"

type Renderer interface {
	// Render frame.
	Render() error

	// Access the frame contents rendered by the last Render call.
	Frame() *image.RGBA

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
