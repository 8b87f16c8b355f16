package ir

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// PowerSpectrum returns |X[k]|^2 for the non-negative frequency bins
// [0..fftSize/2] of the zero-padded response. fftSize must be at least
// the response length.
func PowerSpectrum(response []float64, fftSize int) ([]float64, error) {
	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	if fftSize < len(response) {
		return nil, fmt.Errorf("ir: fft size %d is smaller than response length %d", fftSize, len(response))
	}

	in := make([]complex128, fftSize)
	for i, v := range response {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("ir: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("ir: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	return power, nil
}

// SpectralFlatness returns the geometric-to-arithmetic mean ratio of the
// power bins above DC. Flat (noise-like) spectra score near 1, strongly
// colored spectra near 0. Returns 0 when fewer than two bins are given.
func SpectralFlatness(power []float64) float64 {
	if len(power) < 2 {
		return 0
	}

	// Floor keeps empty bins from collapsing the geometric mean to zero.
	// The arithmetic mean accumulates the raw power so a silent spectrum
	// still reports 0.
	const floor = 1e-30

	var logSum, sum float64

	bins := power[1:]
	for _, p := range bins {
		sum += p

		if p < floor {
			p = floor
		}

		logSum += math.Log(p)
	}

	if sum == 0 {
		return 0
	}

	n := float64(len(bins))

	return math.Exp(logSum/n) / (sum / n)
}
