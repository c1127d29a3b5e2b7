package renderer

import (
	"math"

	"github.com/crgnam/vira-sub001/types"
)

// EATWTOptions configure the edge-avoiding a-trous wavelet denoiser. Each
// level widens the filter footprint by doubling the tap stride; the sigmas
// control how strongly color, normal and depth differences stop the filter
// at feature edges.
type EATWTOptions struct {
	Levels int

	ColorSigma  float64
	AlbedoSigma float64
	NormalSigma float64
	DepthSigma  float64
}

func DefaultEATWTOptions() EATWTOptions {
	return EATWTOptions{
		Levels:      3,
		ColorSigma:  0.5,
		AlbedoSigma: 0.25,
		NormalSigma: 0.3,
		DepthSigma:  0.5,
	}
}

// atrousKernel is the 1D B3-spline used for the separable 5x5 footprint.
var atrousKernel = [5]float64{1.0 / 16, 1.0 / 4, 3.0 / 8, 1.0 / 4, 1.0 / 16}

// denoiseSpectrum filters a radiance plane in place, guided by the albedo,
// depth and normal planes so material and geometric edges are preserved.
func denoiseSpectrum(rad *Buffer[types.Spectrum], albedo *Buffer[types.Spectrum], depth *Buffer[float32], normal *Buffer[types.Vec3], opts EATWTOptions) {
	if opts.Levels <= 0 {
		return
	}

	w, h := rad.W, rad.H
	src := rad.Pix
	dst := make([]types.Spectrum, len(src))

	for level := 0; level < opts.Levels; level++ {
		stride := 1 << level
		// The wavelet scale grows with the footprint, so the color
		// stopping power relaxes with each level.
		colorSigma := opts.ColorSigma * float64(uint(1)<<uint(level))

		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				center := j*w + i
				cRad := src[center]
				cAlbedo := albedo.Pix[center]
				cDepth := float64(depth.Pix[center])
				cNormal := normal.Pix[center]

				var sum types.Spectrum
				totalWeight := 0.0

				for kj := -2; kj <= 2; kj++ {
					for ki := -2; ki <= 2; ki++ {
						si := clampInt(i+ki*stride, 0, w-1)
						sj := clampInt(j+kj*stride, 0, h-1)
						tap := sj*w + si

						weight := atrousKernel[ki+2] * atrousKernel[kj+2] *
							edgeWeight(cRad, src[tap], colorSigma) *
							edgeWeight(cAlbedo, albedo.Pix[tap], opts.AlbedoSigma) *
							normalWeight(cNormal, normal.Pix[tap], opts.NormalSigma) *
							depthWeight(cDepth, float64(depth.Pix[tap]), opts.DepthSigma)

						sum = sum.Add(src[tap].Scale(weight))
						totalWeight += weight
					}
				}
				if totalWeight > 0 {
					dst[center] = sum.Scale(1.0 / totalWeight)
				} else {
					dst[center] = cRad
				}
			}
		}
		src, dst = dst, src
	}
	rad.Pix = src
}

func edgeWeight(a, b types.Spectrum, sigma float64) float64 {
	d := a.Luminance() - b.Luminance()
	return math.Exp(-(d * d) / (sigma*sigma + 1e-9))
}

func normalWeight(a, b types.Vec3, sigma float64) float64 {
	d := float64(a.Sub(b).Len())
	return math.Exp(-(d * d) / (sigma*sigma + 1e-9))
}

func depthWeight(a, b, sigma float64) float64 {
	// Escaped-ray pixels carry an infinite depth sentinel; they only blend
	// with other misses.
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		if a == b {
			return 1
		}
		return 0
	}
	d := a - b
	return math.Exp(-(d * d) / (sigma*sigma + 1e-9))
}
