package cmd

import (
	"github.com/meridian-render/meridian/log"
	"github.com/urfave/cli"
)

var logger = log.New("meridian")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
