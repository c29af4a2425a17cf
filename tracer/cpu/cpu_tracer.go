// Package cpu implements an in-process tracer that marches octree chunks on
// a pool of worker goroutines.
package cpu

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/voxelphile/octane/log"
	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/scene"
	"github.com/voxelphile/octane/tracer"
	"github.com/voxelphile/octane/types"
)

type cpuTracer struct {
	sync.Mutex
	wg sync.WaitGroup

	logger log.Logger

	// The tracer's id.
	id string

	// Number of worker goroutines that split each block's rows.
	workers int

	// Shared output buffers owned by the renderer.
	target *tracer.Target

	// Render state. Guarded by the mutex; process() snapshots it at the
	// start of each block.
	cfg    tracer.Config
	camera *scene.Camera
	sc     *scene.Scene

	stats tracer.Stats

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}
}

// Create a new cpu tracer rendering into target. A workers value of 0
// selects one worker per logical core.
func NewTracer(id string, workers int, target *tracer.Target) tracer.Tracer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &cpuTracer{
		logger:       log.New("cpu tracer"),
		id:           id,
		workers:      workers,
		target:       target,
		cfg:          tracer.DefaultConfig(),
		blockReqChan: make(chan tracer.BlockRequest),
		closeChan:    make(chan struct{}),
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get tracer flags.
func (tr *cpuTracer) Flags() tracer.Flag {
	return tracer.Local
}

// Get speed estimate relative to a single-worker tracer.
func (tr *cpuTracer) Speed() uint32 {
	return uint32(tr.workers)
}

// Start processing incoming block requests.
func (tr *cpuTracer) Init() error {
	tr.Lock()
	defer tr.Unlock()

	if tr.target == nil {
		return fmt.Errorf("cpu tracer (%s): no render target assigned", tr.id)
	}

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				// Render block and reply with our completion status
				if err := tr.process(blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}
				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				return
			}
		}
	}()

	// Wait for worker goroutine to start
	<-readyChan
	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	close(tr.closeChan)
	tr.wg.Wait()
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
	}
}

// Update tracer state.
func (tr *cpuTracer) Update(updateType tracer.UpdateType, payload interface{}) {
	tr.Lock()
	defer tr.Unlock()

	switch updateType {
	case tracer.UpdateCamera:
		if camera, ok := payload.(*scene.Camera); ok {
			tr.camera = camera
		}
	case tracer.UpdateScene:
		if sc, ok := payload.(*scene.Scene); ok {
			tr.sc = sc
		}
	case tracer.UpdateConfig:
		if cfg, ok := payload.(tracer.Config); ok {
			tr.cfg = cfg
		}
	default:
		tr.logger.Warningf("unsupported update type %d", updateType)
	}
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return &tr.stats
}

// A chunk prepared for rendering: its caster plus the shading pipeline set
// up in chunk-local space.
type chunkView struct {
	origin   types.Vec3
	size     float32
	caster   *tracer.Caster
	pipeline *tracer.Pipeline
}

// Process block request.
func (tr *cpuTracer) process(blockReq tracer.BlockRequest) error {
	start := time.Now()

	tr.Lock()
	camera := tr.camera
	sc := tr.sc
	cfg := tr.cfg
	tr.Unlock()

	if camera == nil || sc == nil {
		return fmt.Errorf("cpu tracer (%s): no scene or camera assigned", tr.id)
	}
	if blockReq.BlockY+blockReq.BlockH > tr.target.FrameH {
		return fmt.Errorf("cpu tracer (%s): block [%d, %d) exceeds frame height %d",
			tr.id, blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, tr.target.FrameH)
	}

	views := tr.prepareChunks(camera, sc, cfg)

	var wg sync.WaitGroup
	for worker := 0; worker < tr.workers; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for y := blockReq.BlockY + uint32(worker); y < blockReq.BlockY+blockReq.BlockH; y += uint32(tr.workers) {
				// Seeding per row keeps the output independent of how
				// rows land on workers.
				rng := rand.New(rand.NewSource(int64(blockReq.Seed) + int64(y)))
				tr.renderRow(y, blockReq, camera, cfg, views, rng)
			}
		}(worker)
	}
	wg.Wait()

	tr.stats.BlockH = blockReq.BlockH
	tr.stats.RenderTime = time.Since(start)
	return nil
}

// Set up a caster and pipeline per visible chunk, ordered near to far. Rays
// and shading run in chunk-local coordinates so the view-projection matrix
// and light position fold in the chunk origin.
func (tr *cpuTracer) prepareChunks(camera *scene.Camera, sc *scene.Scene, cfg tracer.Config) []chunkView {
	chunks := sc.VisibleChunks(camera.Position, cfg.RenderDistance)
	views := make([]chunkView, 0, len(chunks))
	for _, chunk := range chunks {
		caster := tracer.NewCaster(cfg, chunk.Tree)
		pipeline := tracer.NewPipeline(cfg, caster)
		origin := chunk.Origin()
		pipeline.ViewProj = camera.ViewProjMat().Mul4(chunk.Model())
		pipeline.Light = sc.Light.Sub(origin)
		views = append(views, chunkView{
			origin:   origin,
			size:     float32(chunk.Tree.Size()),
			caster:   caster,
			pipeline: pipeline,
		})
	}
	return views
}

func (tr *cpuTracer) renderRow(y uint32, blockReq tracer.BlockRequest, camera *scene.Camera, cfg tracer.Config, views []chunkView, rng *rand.Rand) {
	frameW := tr.target.FrameW
	frameH := tr.target.FrameH
	samples := blockReq.SamplesPerPixel
	if samples == 0 {
		samples = 1
	}

	for x := uint32(0); x < frameW; x++ {
		var colorSum types.Vec4
		var occlusionSum, depthSum float32

		for sample := uint32(0); sample < samples; sample++ {
			jitterU, jitterV := float32(0.5), float32(0.5)
			if samples > 1 {
				jitterU = rng.Float32()
				jitterV = rng.Float32()
			}
			u := (float32(x) + jitterU) / float32(frameW)
			v := (float32(y) + jitterV) / float32(frameH)
			dir := camera.RayDir(u, v)

			color, occlusion, depth := tr.tracePixel(camera.Position, dir, cfg, views, rng)
			colorSum = colorSum.Add(color)
			occlusionSum += occlusion
			depthSum += depth
		}

		inv := 1 / float32(samples)
		writePixel(tr.target, y*frameW+x, colorSum.Mul(inv), occlusionSum*inv, depthSum*inv, blockReq.Exposure)
	}
}

// Trace a primary ray through the visible chunks near to far, shading inside
// the first chunk it strikes. Rays that cross every chunk untouched resolve
// to the sky.
func (tr *cpuTracer) tracePixel(eye, dir types.Vec3, cfg tracer.Config, views []chunkView, rng *rand.Rand) (types.Vec4, float32, float32) {
	for idx := range views {
		view := &views[idx]
		ray := tracer.Ray{
			Origin:  eye.Sub(view.origin),
			Dir:     dir,
			MaxDist: cfg.VolumeSize(),
			Medium:  octree.MatAir,
			Bounded: true,
		}
		if _, ok := view.caster.Cast(ray); ok {
			return view.pipeline.Shade(ray, rng)
		}
	}

	if len(views) > 0 {
		// Miss on every chunk; any pipeline yields the same sky.
		ray := tracer.Ray{Origin: eye.Sub(views[0].origin), Dir: dir, MaxDist: cfg.Epsilon, Medium: octree.MatAir, Bounded: true}
		return views[0].pipeline.Shade(ray, rng)
	}
	return types.XYZW(0, 0, 0, 1), 1, 1
}

// Reinhard tonemapping followed by gamma correction.
func writePixel(target *tracer.Target, pixel uint32, color types.Vec4, occlusion, depth, exposure float32) {
	if exposure <= 0 {
		exposure = 1
	}

	base := pixel * 4
	for ch := 0; ch < 3; ch++ {
		v := color[ch] * exposure
		v = v / (1 + v)
		v = pow32(v, 1/2.2)
		target.Color[base+uint32(ch)] = uint8(types.Clamp(v, 0, 1)*255 + 0.5)
	}
	target.Color[base+3] = 255

	target.Occlusion[pixel] = occlusion
	target.Depth[pixel] = depth
}

func pow32(v, exp float32) float32 {
	return float32(math.Pow(float64(v), float64(exp)))
}
