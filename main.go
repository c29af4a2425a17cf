package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/voxelphile/octane/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "octane"
	app.Usage = "render voxel octree scenes using cpu ray marching"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	frameFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.IntFlag{
			Name:  "num-bounces",
			Value: 3,
			Usage: "shading bounce budget",
		},
		cli.IntFlag{
			Name:  "render-distance",
			Value: 8,
			Usage: "chunks visible in each direction from the camera",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "tracer worker goroutines (0 selects one per core)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "generate",
			Usage: "generate a terrain chunk and save it as an octree file",
			Description: `
Build a deterministic height-field terrain (stone, dirt, grass and water),
compact it into a sparse voxel octree and write the result to a binary octree
file which can be supplied as an argument to the render command.`,
			ArgsUsage: "out.oct",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "depth",
					Value: 7,
					Usage: "octree depth; the chunk spans 2^depth voxels per edge",
				},
				cli.IntFlag{
					Name:  "sea-level",
					Value: 20,
					Usage: "water table height in voxels",
				},
				cli.IntFlag{
					Name:  "seed",
					Value: 1,
					Usage: "terrain seed",
				},
			},
			Action: cmd.GenerateScene,
		},
		{
			Name:      "inspect",
			Usage:     "print statistics for an octree file",
			ArgsUsage: "scene.oct",
			Action:    cmd.InspectScene,
		},
		{
			Name:      "sdf",
			Usage:     "build a distance field for an octree file",
			ArgsUsage: "scene.oct",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "flood pass goroutines (0 selects one per core)",
				},
			},
			Action: cmd.BuildSDF,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame. Without a scene file a generated demo terrain is rendered.`,
					ArgsUsage:   "[scene.oct]",
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "spp",
							Value: 4,
							Usage: "samples per pixel",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, frameFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Open a window and re-render the scene as the camera moves. Without a scene file a generated demo terrain is rendered.`,
					ArgsUsage:   "[scene.oct]",
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "spp",
							Value: 0,
							Usage: "samples per pixel to accumulate (0 renders forever)",
						},
					}, frameFlags...),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}
