package types

import "math"

// Spectrum is the radiometric sample carried along a path. Three bands (RGB)
// are enough for the shipped materials; the channel count is fixed so the
// integrator can keep spectra on the stack.
type Spectrum [3]float64

// Define a spectrum with the same value in every band.
func Gray(v float64) Spectrum {
	return Spectrum{v, v, v}
}

// Define a spectrum from per-band values.
func RGB(r, g, b float64) Spectrum {
	return Spectrum{r, g, b}
}

// Add two spectra.
func (s Spectrum) Add(s2 Spectrum) Spectrum {
	return Spectrum{s[0] + s2[0], s[1] + s2[1], s[2] + s2[2]}
}

// Multiply two spectra band-wise.
func (s Spectrum) Mul(s2 Spectrum) Spectrum {
	return Spectrum{s[0] * s2[0], s[1] * s2[1], s[2] * s2[2]}
}

// Scale a spectrum by a scalar.
func (s Spectrum) Scale(v float64) Spectrum {
	return Spectrum{s[0] * v, s[1] * v, s[2] * v}
}

// Photometric luminance of the spectrum (Rec. 709 weights).
func (s Spectrum) Luminance() float64 {
	return 0.2126*s[0] + 0.7152*s[1] + 0.0722*s[2]
}

// Report whether every band is zero.
func (s Spectrum) IsBlack() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

// Report whether every band is a finite number.
func (s Spectrum) IsFinite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
