package main

import (
	"os"

	"github.com/crgnam/vira-sub001/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "vira"
	app.Usage = "render scenes using path tracing"
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
	app.Commands = []cli.Command{
		{
			Name:   "scenes",
			Usage:  "list builtin demo scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:      "render",
			Usage:     "render a still frame of a builtin scene",
			ArgsUsage: "scene_name",
			Action:    cmd.RenderFrame,
			Flags: []cli.Flag{
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
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "num-bounces",
					Value: 3,
					Usage: "number of indirect bounces",
				},
				cli.BoolFlag{
					Name:  "adaptive",
					Usage: "stop sampling converged pixels early",
				},
				cli.BoolFlag{
					Name:  "denoise",
					Usage: "run the edge-aware denoiser on the radiance passes",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of render workers (defaults to the CPU count)",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "output exposure",
				},
				cli.StringFlag{
					Name:  "out",
					Value: "frame.png",
					Usage: "image filename",
				},
			},
		},
		{
			Name:      "passes",
			Usage:     "render the auxiliary geometry passes of a builtin scene",
			ArgsUsage: "scene_name",
			Action:    cmd.DumpPasses,
			Flags: []cli.Flag{
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
				cli.StringFlag{
					Name:  "out-dir",
					Value: ".",
					Usage: "directory for the pass images",
				},
			},
		},
	}

	app.Run(os.Args)
}
