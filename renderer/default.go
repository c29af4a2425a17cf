package renderer

import (
	"image"
	"time"

	"github.com/voxelphile/octane/log"
	"github.com/voxelphile/octane/scene"
	"github.com/voxelphile/octane/tracer"
)

// The default renderer drives a pool of tracers through a block scheduler
// and renders one frame at a time into the shared target.
type defaultRenderer struct {
	logger log.Logger

	options Options

	sc     *scene.Scene
	target *tracer.Target

	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer

	// Block height assignment for each tracer, refreshed every frame.
	blockAssignments []uint32

	// Completion and error channels shared by all in-flight block
	// requests.
	doneChan chan uint32
	errChan  chan error

	frameCount uint32

	stats FrameStats
}

// Create a new default renderer using the specified block scheduler and
// tracer pool. The renderer initializes each tracer and pushes the scene,
// camera and traversal configuration to it.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, target *tracer.Target, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if target == nil {
		return nil, ErrNoTarget
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}

	var chunkSize int32
	if len(sc.Chunks) > 0 {
		chunkSize = sc.Chunks[0].Tree.Size()
	}
	cfg := opts.traceConfig(chunkSize)

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		sc:        sc,
		target:    target,
		scheduler: scheduler,
		tracers:   tracers,
		doneChan:  make(chan uint32, len(tracers)),
		errChan:   make(chan error, len(tracers)),
	}

	for _, tr := range tracers {
		if err := tr.Init(); err != nil {
			r.Close()
			return nil, err
		}
		tr.Update(tracer.UpdateConfig, cfg)
		tr.Update(tracer.UpdateScene, sc)
		tr.Update(tracer.UpdateCamera, sc.Camera)
		r.logger.Infof("attached tracer %s (speed estimate %d)", tr.Id(), tr.Speed())
	}

	return r, nil
}

// Render frame.
func (r *defaultRenderer) Render() error {
	err := r.renderFrame(r.frameCount)
	if err != nil {
		return err
	}
	r.frameCount++
	return nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Frame wraps the target's color buffer as an image without copying it. The
// data is only valid between frames.
func (r *defaultRenderer) Frame() *image.RGBA {
	return &image.RGBA{
		Pix:    r.target.Color,
		Stride: int(r.options.FrameW) * 4,
		Rect:   image.Rect(0, 0, int(r.options.FrameW), int(r.options.FrameH)),
	}
}

// Split the frame between the attached tracers and block until every row is
// accounted for.
func (r *defaultRenderer) renderFrame(frameCount uint32) error {
	start := time.Now()

	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	var blockY uint32
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			BlockY:          blockY,
			BlockH:          r.blockAssignments[idx],
			SamplesPerPixel: r.options.SamplesPerPixel,
			Exposure:        r.options.Exposure,
			Seed:            frameCount * 101,
			FrameCount:      frameCount,
			DoneChan:        r.doneChan,
			ErrChan:         r.errChan,
		})
		blockY += r.blockAssignments[idx]
	}

	var doneRows uint32
	for doneRows < r.options.FrameH {
		select {
		case rows := <-r.doneChan:
			doneRows += rows
		case err := <-r.errChan:
			return err
		}
	}

	r.collectStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) collectStats(frameTime time.Duration) {
	r.stats.RenderTime = frameTime
	r.stats.Tracers = r.stats.Tracers[:0]
	for idx, tr := range r.tracers {
		stats := tr.Stats()
		r.stats.Tracers = append(r.stats.Tracers, TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       stats.BlockH,
			FramePercent: float32(stats.BlockH) * 100 / float32(r.options.FrameH),
			RenderTime:   stats.RenderTime,
		})
	}
}

// updateCamera pushes the current camera state to every tracer.
func (r *defaultRenderer) updateCamera() {
	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateCamera, r.sc.Camera)
	}
}
