package cmd

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/image/bmp"

	"github.com/meridian-render/meridian/raster"
	"github.com/meridian-render/meridian/scene"
	"github.com/meridian-render/meridian/scene/reader"
	"github.com/meridian-render/meridian/texture"
	"github.com/meridian-render/meridian/types"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := raster.Options{
		FrameW:              uint32(ctx.Int("width")),
		FrameH:              uint32(ctx.Int("height")),
		TileSizeLog2:        uint32(ctx.Int("tile-size-log2")),
		SampleCountLog2:     uint32(ctx.Int("msaa-log2")),
		Workers:             ctx.Int("workers"),
		Hierarchical:        ctx.Bool("hierarchical"),
		ExactSmallTriangles: ctx.Bool("exact-coverage"),
		CullBackfaces:       ctx.Bool("cull-backfaces"),
	}

	// Load mesh
	if ctx.NArg() != 1 {
		return errors.New("missing mesh file argument")
	}

	mesh, err := reader.ReadMesh(ctx.Args().First())
	if err != nil {
		return err
	}

	switch shader := ctx.String("shader"); shader {
	case "lambert":
		opts.PixelShader = raster.QuadLambertianShader{}
	case "albedo":
		opts.PixelShader = raster.QuadLambertianAlbedoShader{}
	case "phong":
		opts.PixelShader = raster.QuadBlinnPhongShader{}
	default:
		return fmt.Errorf("unknown shader %q; supported: lambert, albedo, phong", shader)
	}

	r, err := raster.New(opts)
	if err != nil {
		return err
	}

	// Point the camera at the mesh from the requested distance.
	camera := scene.NewCamera(float32(ctx.Float64("fov")))
	camera.Position = types.Vec3{0, 0, float32(ctx.Float64("camera-distance"))}
	camera.LookAt = types.Vec3{0, 0, 0}
	camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	r.SetTransform(camera.ViewMat, camera.ProjMat,
		types.Viewport4(float32(opts.FrameW), float32(opts.FrameH)))
	r.SetLighting(camera.Position, types.Vec3{1, 1, 1})

	if texPath := ctx.String("texture"); texPath != "" {
		tex, err := texture.ReadFile(texPath)
		if err != nil {
			return err
		}
		r.SetTexture(0, tex)
		for i := range mesh.TextureIDs {
			mesh.TextureIDs[i] = 0
		}
	}

	r.Clear(types.Vec3{0, 0, 0})
	if err = r.RenderMesh(mesh); err != nil {
		return err
	}

	if err = writeFrame(r.FrameBuffer(), ctx.String("out")); err != nil {
		return err
	}
	logger.Noticef(`wrote frame to "%s"`, ctx.String("out"))

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

// writeFrame dumps the resolved frame buffer to a bmp file.
func writeFrame(fb *raster.FrameBuffer, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, int(fb.Width()), int(fb.Height())))
	copy(img.Pix, fb.Pixels())

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return bmp.Encode(f, img)
}

func displayFrameStats(stats raster.FrameStats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Phase", "Time"})
	table.Append([]string{"Vertex processing", stats.VertexTime.String()})
	table.Append([]string{"Clipping", stats.ClipTime.String()})
	table.Append([]string{"Binning", stats.BinTime.String()})
	table.Append([]string{"Rasterization", stats.RasterTime.String()})
	table.Append([]string{"Fragment shading", stats.ShadeTime.String()})
	table.Append([]string{"Scatter", stats.ScatterTime.String()})
	table.Append([]string{"Resolve", stats.ResolveTime.String()})
	table.SetFooter([]string{
		fmt.Sprintf("%d triangles / %d fragments", stats.Triangles, stats.Fragments),
		stats.RenderTime.String(),
	})
	table.Render()
}
