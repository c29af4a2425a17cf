package cmd

import (
	"github.com/urfave/cli"

	"github.com/voxelphile/octane/log"
)

var logger = log.New("octane")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
