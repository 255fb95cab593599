package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/cmd"
	"github.com/df07/go-sphere-pathtracer/pkg/log"
)

var logger = log.New("main")

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "spheretrace"
	app.Usage = "render sphere scenes using path tracing"
	app.Version = "0.1.0"
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
			Name:  "render",
			Usage: "render a scene to an image file",
			Description: `
Render a built-in scene (see the scenes command) or a JSON scene file.

By default the image is refined progressively in passes over a tile grid
using a pool of workers. With --reference the whole image is rendered in
a single pass on the calling goroutine. The image format is chosen from
the output file extension (.png, .bmp, .tif or .tiff).`,
			ArgsUsage: "[scene name or scene.json]",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Usage: "image width (default: scene camera width)",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "image height (default: scene camera height)",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "samples per pixel (default: scene sampling)",
				},
				cli.IntFlag{
					Name:  "depth",
					Usage: "maximum bounce depth (default: scene sampling)",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of render workers (default: number of CPUs)",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: 32,
					Usage: "tile edge length in pixels",
				},
				cli.IntFlag{
					Name:  "passes",
					Value: 5,
					Usage: "maximum number of progressive passes",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "random seed",
				},
				cli.BoolFlag{
					Name:  "reference",
					Usage: "render in a single pass without workers",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output image file (default: output/<scene>/render_<timestamp>.png)",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:  "scenes",
			Usage: "list built-in scenes and scene files",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "dir",
					Value: "scenes",
					Usage: "directory to scan for JSON scene files",
				},
			},
			Action: cmd.ListScenes,
		},
		{
			Name:  "serve",
			Usage: "serve progressive renders over HTTP",
			Description: `
Start an HTTP server with the following endpoints:

  /api/scenes        built-in scenes and scene files
  /api/scene-config  default camera and sampling settings of a scene
  /api/render        progressive render streamed as server-sent events
  /api/inspect       geometry seen through a pixel`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port, p",
					Value: 8080,
					Usage: "port to listen on",
				},
				cli.StringFlag{
					Name:  "dir",
					Value: "scenes",
					Usage: "directory to scan for JSON scene files",
				},
			},
			Action: cmd.Serve,
		},
		{
			Name:      "compare",
			Usage:     "compare two rendered images",
			ArgsUsage: "image_a image_b",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "threshold",
					Usage: "fail when the RMSE exceeds this value",
				},
			},
			Action: cmd.CompareImages,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
