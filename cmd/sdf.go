package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/voxelphile/octane/scene"
	"github.com/voxelphile/octane/sdf"
)

// Build a signed distance field for an octree file and print field
// statistics.
func BuildSDF(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	tree, err := scene.ReadOctree(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("flooding %d^3 distance field", tree.Size())
	start := time.Now()
	grid, err := sdf.Build(tree, sdf.BuildOptions{Workers: ctx.Int("workers")})
	if err != nil {
		return err
	}
	buildTime := time.Since(start)

	var seeds, claimed int
	var maxDist float32
	for _, cell := range grid.Cells {
		if !cell.Valid() {
			continue
		}
		claimed++
		if cell.Dist == 0 {
			seeds++
		}
		if cell.Dist > maxDist {
			maxDist = cell.Dist
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Field", fmt.Sprintf("%d^3 cells", grid.Dim)})
	table.Append([]string{"Seeds", fmt.Sprintf("%d", seeds)})
	table.Append([]string{"Claimed cells", fmt.Sprintf("%d", claimed)})
	table.Append([]string{"Max distance", fmt.Sprintf("%.2f", maxDist)})
	table.Append([]string{"Build time", fmt.Sprintf("%s", buildTime)})
	table.Render()

	logger.Noticef("distance field statistics\n%s", buf.String())
	return nil
}
