package cmd

import (
	"github.com/crgnam/vira-sub001/log"
	"github.com/urfave/cli"
)

var logger = log.New("vira")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
