package camera

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GaussianPSF is an isotropic Gaussian point-spread function discretized to
// a normalized square kernel. Sigma is in pixels.
type GaussianPSF struct {
	Sigma  float64
	Radius int

	kernel [][]float64
}

func NewGaussianPSF(sigma float64) *GaussianPSF {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	return &GaussianPSF{Sigma: sigma, Radius: radius}
}

// Kernel lazily builds the (2R+1)^2 kernel and normalizes it to unit sum so
// convolution conserves energy.
func (p *GaussianPSF) Kernel() [][]float64 {
	if p.kernel != nil {
		return p.kernel
	}

	size := 2*p.Radius + 1
	flat := make([]float64, size*size)
	inv2s2 := 1.0 / (2 * p.Sigma * p.Sigma)
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			dx := float64(i - p.Radius)
			dy := float64(j - p.Radius)
			flat[j*size+i] = math.Exp(-(dx*dx + dy*dy) * inv2s2)
		}
	}
	floats.Scale(1.0/floats.Sum(flat), flat)

	p.kernel = make([][]float64, size)
	for j := 0; j < size; j++ {
		p.kernel[j] = flat[j*size : (j+1)*size]
	}
	return p.kernel
}
