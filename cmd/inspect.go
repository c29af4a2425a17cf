package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/voxelphile/octane/octree"
	"github.com/voxelphile/octane/scene"
)

// Print structural statistics for an octree file.
func InspectScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	tree, err := scene.ReadOctree(ctx.Args().First())
	if err != nil {
		return err
	}

	var leaves, branches int
	materialCells := make([]int, octree.MaterialCount())
	for _, node := range tree.Nodes {
		if node.IsLeaf() {
			leaves++
			if int(node.Material) < len(materialCells) {
				materialCells[node.Material]++
			}
		} else {
			branches++
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", tree.MaxDepth)})
	table.Append([]string{"Volume", fmt.Sprintf("%d^3 voxels", tree.Size())})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", len(tree.Nodes))})
	table.Append([]string{"Branches", fmt.Sprintf("%d", branches)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", leaves)})
	for id, count := range materialCells {
		if count == 0 {
			continue
		}
		table.Append([]string{
			fmt.Sprintf("Leaves (%s)", octree.MaterialByID(uint32(id)).Name),
			fmt.Sprintf("%d", count),
		})
	}
	table.Render()

	logger.Noticef("octree statistics\n%s", buf.String())
	return nil
}
