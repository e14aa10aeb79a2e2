package main

import (
	"os"

	"github.com/meridian-render/meridian/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "meridian"
	app.Usage = "render triangle meshes with a tile-parallel CPU rasterizer"
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
			Name:  "render",
			Usage: "render a wavefront obj mesh to an image file",
			Description: `
Load a triangle mesh from a wavefront obj file and render a single frame with
the software rasterization pipeline: vertex transform, clipping, tile binning,
hierarchical rasterization, packed quad shading and multisample resolve.`,
			ArgsUsage: "mesh_file.obj",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 1024,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 768,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "tile-size-log2",
					Value: 5,
					Usage: "log2 of the square tile edge in pixels",
				},
				cli.IntFlag{
					Name:  "msaa-log2",
					Value: 0,
					Usage: "log2 of the MSAA sample count (0-3)",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "worker pool size; 0 uses all cores",
				},
				cli.BoolTFlag{
					Name:  "hierarchical",
					Usage: "use hierarchical rasterization for big triangles",
				},
				cli.BoolFlag{
					Name:  "exact-coverage",
					Usage: "disable the small-triangle trivial-accept fast path",
				},
				cli.BoolFlag{
					Name:  "cull-backfaces",
					Usage: "drop clockwise triangles instead of rendering them two-sided",
				},
				cli.StringFlag{
					Name:  "shader",
					Value: "lambert",
					Usage: "pixel shader: lambert, albedo or phong",
				},
				cli.StringFlag{
					Name:  "texture",
					Value: "",
					Usage: "albedo texture bound to slot 0",
				},
				cli.Float64Flag{
					Name:  "fov",
					Value: 45.0,
					Usage: "camera field of view in degrees",
				},
				cli.Float64Flag{
					Name:  "camera-distance",
					Value: 3.0,
					Usage: "camera distance from the origin",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.bmp",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:  "info",
			Usage: "print the pipeline configuration for a set of render flags",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 1024,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 768,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "tile-size-log2",
					Value: 5,
					Usage: "log2 of the square tile edge in pixels",
				},
				cli.IntFlag{
					Name:  "msaa-log2",
					Value: 0,
					Usage: "log2 of the MSAA sample count (0-3)",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "worker pool size; 0 uses all cores",
				},
			},
			Action: cmd.PipelineInfo,
		},
	}

	app.Run(os.Args)
}
