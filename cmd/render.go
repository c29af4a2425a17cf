package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/voxelphile/octane/renderer"
	"github.com/voxelphile/octane/scene"
	"github.com/voxelphile/octane/tracer"
	"github.com/voxelphile/octane/tracer/cpu"
)

// Load the scene and set up the renderer building blocks shared by the
// still-frame and interactive commands.
func setupRender(ctx *cli.Context) (*scene.Scene, []tracer.Tracer, *tracer.Target, renderer.Options, error) {
	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		Exposure:        float32(ctx.Float64("exposure")),
		NumBounces:      uint32(ctx.Int("num-bounces")),
		RenderDistance:  int32(ctx.Int("render-distance")),
	}

	var sc *scene.Scene
	var err error
	switch ctx.NArg() {
	case 0:
		// No scene file; render the procedural demo terrain.
		logger.Notice("no scene file supplied, generating demo terrain")
		sc, err = scene.GenerateScene(1, scene.DefaultGenerateOptions())
	case 1:
		sc, err = scene.ReadScene(ctx.Args().First())
	default:
		err = errors.New("expected at most one scene file argument")
	}
	if err != nil {
		return nil, nil, nil, opts, err
	}

	// Update projection matrix
	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	target := tracer.NewTarget(opts.FrameW, opts.FrameH)
	workers := ctx.Int("workers")
	tracers := []tracer.Tracer{cpu.NewTracer("cpu-0", workers, target)}

	return sc, tracers, target, opts, nil
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, tracers, target, opts, err := setupRender(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tracer.NaiveScheduler(), tracers, target, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Notice("rendering frame")
	if err = r.Render(); err != nil {
		return err
	}

	// Export PNG
	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, r.Frame()); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

// Use opengl to render a continuously updating view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	// The glfw event loop must run on the thread that created the window.
	runtime.LockOSThread()

	sc, tracers, target, opts, err := setupRender(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, tracer.PerfectScheduler(), tracers, target, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
