package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/crgnam/vira-sub001/renderer"
	"github.com/crgnam/vira-sub001/types"
)

// Render a still frame of a builtin scene.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene name argument")
	}

	width := ctx.Int("width")
	height := ctx.Int("height")
	sc, cam, err := loadBuiltinScene(ctx.Args().First(), width, height)
	if err != nil {
		return err
	}

	opts := renderer.DefaultOptions()
	opts.Samples = ctx.Int("spp")
	opts.Bounces = ctx.Int("num-bounces")
	opts.ShowBackground = true
	opts.Denoise = ctx.Bool("denoise")
	opts.AdaptiveSampling = ctx.Bool("adaptive")
	opts.NumWorkers = ctx.Int("workers")

	r := renderer.NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		return err
	}

	exposure := ctx.Float64("exposure")
	out := ctx.String("out")
	if err := writeRadiancePNG(out, r.Passes.TotalRadiance, exposure); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Resolution", "Samples", "Avg spp", "Max spp", "Dropped", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%.1f", stats.AvgSamplesPerPixel),
		fmt.Sprintf("%d", stats.MaxSamplesUsed),
		fmt.Sprintf("%d", stats.NumericAnomalies),
		stats.RenderTime.String(),
	})
	table.Render()
	logger.Noticef("frame statistics:\n%s", buf.String())
}

// writeRadiancePNG tone-maps a radiance plane with a fixed exposure and
// gamma 2.2 and encodes it as an 8-bit PNG.
func writeRadiancePNG(path string, buf *renderer.Buffer[types.Spectrum], exposure float64) error {
	if buf == nil {
		return errors.New("no radiance pass available; lighting simulation was disabled")
	}
	img := image.NewRGBA(image.Rect(0, 0, buf.W, buf.H))
	for j := 0; j < buf.H; j++ {
		for i := 0; i < buf.W; i++ {
			s := buf.At(i, j).Scale(exposure)
			img.SetRGBA(i, j, color.RGBA{
				R: toneMapChannel(s[0]),
				G: toneMapChannel(s[1]),
				B: toneMapChannel(s[2]),
				A: 255,
			})
		}
	}
	return encodePNG(path, img)
}

func toneMapChannel(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	v = math.Pow(1-math.Exp(-v), 1/2.2)
	return uint8(math.Min(v, 1) * 255)
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return errors.Wrap(err, "encoding png")
	}
	return nil
}
