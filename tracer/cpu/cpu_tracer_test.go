package cpu

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/voxelphile/octane/log"
	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/scene"
	"github.com/voxelphile/octane/tracer"
	"github.com/voxelphile/octane/types"
)

func TestTracerRendersBlock(t *testing.T) {
	frameW, frameH := uint32(16), uint32(16)
	target := tracer.NewTarget(frameW, frameH)

	tr := NewTracer("test-cpu", 2, target)
	if err := tr.Init(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	sc := testScene(t)
	camera := testCamera(sc)

	cfg := tracer.DefaultConfig()
	cfg.RenderDistance = 2
	tr.Update(tracer.UpdateConfig, cfg)
	tr.Update(tracer.UpdateScene, sc)
	tr.Update(tracer.UpdateCamera, camera)

	doneChan := make(chan uint32)
	errChan := make(chan error)
	tr.Enqueue(tracer.BlockRequest{
		BlockY:          0,
		BlockH:          frameH,
		SamplesPerPixel: 1,
		Exposure:        1.2,
		Seed:            7,
		DoneChan:        doneChan,
		ErrChan:         errChan,
	})

	select {
	case rows := <-doneChan:
		if rows != frameH {
			t.Fatalf("expected %d completed rows; got %d", frameH, rows)
		}
	case err := <-errChan:
		t.Fatal(err)
	case <-time.After(30 * time.Second):
		t.Fatal("timeout waiting for block completion")
	}

	for pixel := uint32(0); pixel < frameW*frameH; pixel++ {
		if target.Color[pixel*4+3] != 255 {
			t.Fatalf("expected opaque alpha at pixel %d; got %d", pixel, target.Color[pixel*4+3])
		}
		if target.Depth[pixel] < 0 || target.Depth[pixel] > 1 {
			t.Fatalf("expected depth in [0, 1] at pixel %d; got %f", pixel, target.Depth[pixel])
		}
	}

	// The camera looks down at solid terrain; at least part of the frame
	// must resolve to a hit in front of the far plane.
	foundHit := false
	for pixel := uint32(0); pixel < frameW*frameH; pixel++ {
		if target.Depth[pixel] < 1 {
			foundHit = true
			break
		}
	}
	if !foundHit {
		t.Fatal("expected at least one pixel to hit the terrain")
	}

	stats := tr.Stats()
	if stats.BlockH != frameH {
		t.Fatalf("expected stats to report %d rendered rows; got %d", frameH, stats.BlockH)
	}
	if stats.RenderTime <= 0 {
		t.Fatal("expected a non-zero block render time")
	}
}

func TestTracerRejectsOversizedBlock(t *testing.T) {
	target := tracer.NewTarget(8, 8)
	tr := NewTracer("test-cpu", 1, target)
	if err := tr.Init(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	sc := testScene(t)
	tr.Update(tracer.UpdateScene, sc)
	tr.Update(tracer.UpdateCamera, testCamera(sc))

	doneChan := make(chan uint32)
	errChan := make(chan error)
	tr.Enqueue(tracer.BlockRequest{
		BlockY:   4,
		BlockH:   8,
		DoneChan: doneChan,
		ErrChan:  errChan,
	})

	select {
	case <-doneChan:
		t.Fatal("expected block exceeding the frame height to be rejected")
	case <-errChan:
	case <-time.After(30 * time.Second):
		t.Fatal("timeout waiting for block rejection")
	}
}

func TestTracerLogsDroppedBlock(t *testing.T) {
	var sink bytes.Buffer
	log.SetSink(&sink)
	defer log.SetSink(os.Stdout)

	target := tracer.NewTarget(4, 4)

	// Without Init no worker is listening, so the request must be dropped
	// with a diagnostic instead of blocking the renderer forever.
	tr := NewTracer("test-cpu", 1, target)
	tr.Enqueue(tracer.BlockRequest{BlockY: 0, BlockH: 4})

	if !strings.Contains(sink.String(), "did not receive block request") {
		t.Fatalf("expected the dropped block to be logged; got %q", sink.String())
	}
}

func TestTracerRequiresSceneAndCamera(t *testing.T) {
	target := tracer.NewTarget(4, 4)
	tr := NewTracer("test-cpu", 1, target)
	if err := tr.Init(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	doneChan := make(chan uint32)
	errChan := make(chan error)
	tr.Enqueue(tracer.BlockRequest{BlockY: 0, BlockH: 4, DoneChan: doneChan, ErrChan: errChan})

	select {
	case <-doneChan:
		t.Fatal("expected block on an unconfigured tracer to fail")
	case <-errChan:
	case <-time.After(30 * time.Second):
		t.Fatal("timeout waiting for error")
	}
}

// A single flat chunk of stone topped with grass.
func testScene(t *testing.T) *scene.Scene {
	t.Helper()

	builder := octree.NewBuilder(4)
	dim := uint32(16)
	for x := uint32(0); x < dim; x++ {
		for z := uint32(0); z < dim; z++ {
			for y := uint32(0); y < 4; y++ {
				builder.Set(x, y, z, octree.MatStone)
			}
			builder.Set(x, 4, z, octree.MatGrass)
		}
	}

	sc := scene.NewScene()
	if err := sc.AddChunk(&octree.Chunk{Tree: builder.Build()}); err != nil {
		t.Fatal(err)
	}
	sc.Light = types.XYZ(8, 40, 8)
	return sc
}

func testCamera(sc *scene.Scene) *scene.Camera {
	camera := scene.NewCamera(60)
	camera.Position = types.XYZ(8, 12, -4)
	camera.LookAt = types.XYZ(8, 4, 8)
	camera.SetupProjection(1.0)
	return camera
}
