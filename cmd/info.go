package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print the pipeline configuration that a render command with the same flags
// would use.
func PipelineInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	width := ctx.Int("width")
	height := ctx.Int("height")
	tileSizeLog2 := uint(ctx.Int("tile-size-log2"))
	msaaLog2 := uint(ctx.Int("msaa-log2"))
	workers := ctx.Int("workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tileSize := 1 << tileSizeLog2
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	samples := 1 << msaaLog2

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Setting", "Value"})
	table.Append([]string{"Frame", fmt.Sprintf("%d x %d", width, height)})
	table.Append([]string{"Tile size", fmt.Sprintf("%d px", tileSize)})
	table.Append([]string{"Tile grid", fmt.Sprintf("%d x %d (%d tiles)", tilesX, tilesY, tilesX*tilesY)})
	table.Append([]string{"MSAA", fmt.Sprintf("%dx", samples)})
	table.Append([]string{"Sample storage", fmt.Sprintf("%d MiB", uint64(width)*uint64(height)*uint64(samples)*8/(1<<20))})
	table.Append([]string{"Workers", fmt.Sprintf("%d", workers)})
	table.Render()

	return nil
}
