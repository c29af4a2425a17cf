package cmd

import (
	"errors"
	"time"

	"github.com/urfave/cli"

	"github.com/voxelphile/octane/scene"
)

// Generate a terrain chunk and write it to an octree file.
func GenerateScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing output file argument")
	}
	outFile := ctx.Args().First()

	opt := scene.DefaultGenerateOptions()
	if depth := ctx.Int("depth"); depth > 0 {
		opt.Depth = int32(depth)
	}
	if opt.Depth > 10 {
		return errors.New("generation depth is capped at 10 (1024^3 voxels)")
	}
	opt.SeaLevel = int32(ctx.Int("sea-level"))
	opt.Seed = int64(ctx.Int("seed"))

	logger.Noticef("generating %d^3 terrain chunk", int32(1)<<opt.Depth)
	start := time.Now()
	chunk := scene.GenerateChunk([3]int32{0, 0, 0}, opt)
	logger.Noticef("generated %d octree nodes in %d ms", len(chunk.Tree.Nodes), time.Since(start).Nanoseconds()/1e6)

	if err := scene.WriteOctree(outFile, chunk.Tree); err != nil {
		return err
	}
	logger.Noticef("wrote octree to %s", outFile)

	return nil
}
