package cmd

import (
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/crgnam/vira-sub001/renderer"
	"github.com/crgnam/vira-sub001/types"
)

// DumpPasses renders a builtin scene and writes its auxiliary geometry
// passes (depth, normals, instance ids, velocity) next to the radiance
// frame. Useful for checking scene setup without a full lighting render.
func DumpPasses(ctx *cli.Context) error {
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
	opts.SimulateLighting = false
	opts.SaveVelocity = true
	opts.SaveTriangleSize = true

	r := renderer.NewCPUPathTracer(opts)
	if err := r.Render(cam, sc); err != nil {
		return err
	}

	dir := ctx.String("out-dir")
	outputs := []struct {
		name string
		img  image.Image
	}{
		{"depth.png", depthImage(r.Passes.Depth)},
		{"normal.png", normalImage(r.Passes.NormalGlobal)},
		{"instance.png", idImage(r.Passes.InstanceID)},
	}
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := encodePNG(path, o.img); err != nil {
			return err
		}
		logger.Noticef("wrote %s", path)
	}
	return nil
}

// depthImage maps finite depths linearly onto [0,255], nearest bright.
// Escaped pixels stay black.
func depthImage(buf *renderer.Buffer[float32]) image.Image {
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, d := range buf.Pix {
		v := float64(d)
		if math.IsInf(v, 0) {
			continue
		}
		minD = math.Min(minD, v)
		maxD = math.Max(maxD, v)
	}
	span := maxD - minD
	if span <= 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, buf.W, buf.H))
	for j := 0; j < buf.H; j++ {
		for i := 0; i < buf.W; i++ {
			v := float64(buf.At(i, j))
			if math.IsInf(v, 0) {
				continue
			}
			img.SetGray(i, j, color.Gray{Y: uint8((1 - (v-minD)/span) * 255)})
		}
	}
	return img
}

func normalImage(buf *renderer.Buffer[types.Vec3]) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, buf.W, buf.H))
	for j := 0; j < buf.H; j++ {
		for i := 0; i < buf.W; i++ {
			n := buf.At(i, j)
			img.SetRGBA(i, j, color.RGBA{
				R: uint8((n[0]*0.5 + 0.5) * 255),
				G: uint8((n[1]*0.5 + 0.5) * 255),
				B: uint8((n[2]*0.5 + 0.5) * 255),
				A: 255,
			})
		}
	}
	return img
}

// idImage hashes each id to a stable color so neighboring instances remain
// distinguishable.
func idImage(buf *renderer.Buffer[types.InstanceID]) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, buf.W, buf.H))
	for j := 0; j < buf.H; j++ {
		for i := 0; i < buf.W; i++ {
			id := buf.At(i, j)
			if id == types.NoInstance {
				img.SetRGBA(i, j, color.RGBA{A: 255})
				continue
			}
			h := uint32(id)*2654435761 + 1
			img.SetRGBA(i, j, color.RGBA{
				R: uint8(h >> 16),
				G: uint8(h >> 8),
				B: uint8(h),
				A: 255,
			})
		}
	}
	return img
}
