package ir

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-diffuse/dsp/core"
)

// Errors returned by impulse response analysis.
var (
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrEmptyResponse     = errors.New("ir: response signal is empty")
	ErrNoDecay           = errors.New("ir: decay range not reached")
	ErrWindowSize        = errors.New("ir: window must be positive and no longer than the response")
)

// Decay time regression runs over the Schroeder curve between these
// levels and extrapolates the fitted slope to -60 dB.
const (
	decayFitUpperDB = -5.0
	decayFitLowerDB = -25.0
	decayTargetDB   = -60.0
)

// echoDensityNorm is erfc(1/sqrt(2)), the expected fraction of Gaussian
// samples exceeding one standard deviation. A fully dense (noise-like)
// response scores about 1 on the normalized profile.
var echoDensityNorm = math.Erfc(1 / math.Sqrt2)

// Analyzer computes impulse response metrics at a fixed sample rate.
type Analyzer struct {
	SampleRate float64
}

// Metrics summarizes an impulse response.
type Metrics struct {
	Peak        float64 // largest absolute sample
	PeakIndex   int     // index of the peak
	RMS         float64 // root mean square over the full response
	TotalEnergy float64 // sum of squared samples
	DecayTime   float64 // seconds to reach -60 dB, Schroeder extrapolation
}

// Analyze computes the full metric set for response. It returns
// ErrNoDecay when the Schroeder curve never covers the regression range,
// for example for a bare impulse with no tail.
func (a *Analyzer) Analyze(response []float64) (Metrics, error) {
	if a.SampleRate <= 0 {
		return Metrics{}, ErrInvalidSampleRate
	}

	if len(response) == 0 {
		return Metrics{}, ErrEmptyResponse
	}

	var m Metrics

	for i, v := range response {
		if abs := math.Abs(v); abs > m.Peak {
			m.Peak = abs
			m.PeakIndex = i
		}

		m.TotalEnergy += v * v
	}

	m.RMS = math.Sqrt(m.TotalEnergy / float64(len(response)))

	decay, err := a.DecayTime(response)
	if err != nil {
		return Metrics{}, err
	}

	m.DecayTime = decay

	return m, nil
}

// SchroederDecay returns the backward-integrated energy decay curve in
// dB, normalized so the curve starts at 0 dB. The curve is
// nonincreasing; trailing silence maps to -Inf.
func SchroederDecay(response []float64) ([]float64, error) {
	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	curve := make([]float64, len(response))

	tail := 0.0
	for i := len(response) - 1; i >= 0; i-- {
		tail += response[i] * response[i]
		curve[i] = tail
	}

	total := curve[0]
	if total == 0 {
		return nil, ErrNoDecay
	}

	for i, v := range curve {
		curve[i] = core.LinearPowerToDB(v / total)
	}

	return curve, nil
}

// DecayTime returns the time in seconds for the response energy to fall
// by 60 dB. The slope is fitted by least squares over the -5..-25 dB
// span of the Schroeder curve and extrapolated to -60 dB.
func (a *Analyzer) DecayTime(response []float64) (float64, error) {
	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	curve, err := SchroederDecay(response)
	if err != nil {
		return 0, err
	}

	upper := -1
	lower := -1

	for i, v := range curve {
		if upper < 0 && v <= decayFitUpperDB {
			upper = i
		}

		if v <= decayFitLowerDB {
			lower = i
			break
		}
	}

	if upper < 0 || lower < 0 || lower <= upper || math.IsInf(curve[lower], -1) {
		return 0, ErrNoDecay
	}

	var sumX, sumY, sumXY, sumXX float64

	for i := upper; i <= lower; i++ {
		x := float64(i)
		y := curve[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	n := float64(lower - upper + 1)

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, ErrNoDecay
	}

	slope := (n*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0, ErrNoDecay
	}

	return decayTargetDB / slope / a.SampleRate, nil
}

// EchoDensityProfile returns the normalized echo density over sliding
// windows of the given length, hopping by half a window. Each value is
// the fraction of window samples exceeding the window's standard
// deviation, normalized so Gaussian noise scores about 1. Sparse echo
// trains score near 0; the profile of a diffuse tail approaches 1.
func EchoDensityProfile(response []float64, window int) ([]float64, error) {
	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	if window <= 0 || window > len(response) {
		return nil, ErrWindowSize
	}

	hop := window / 2
	if hop == 0 {
		hop = 1
	}

	var profile []float64

	for start := 0; start+window <= len(response); start += hop {
		profile = append(profile, echoDensity(response[start:start+window]))
	}

	return profile, nil
}

func echoDensity(window []float64) float64 {
	var sumSq float64
	for _, v := range window {
		sumSq += v * v
	}

	sigma := math.Sqrt(sumSq / float64(len(window)))
	if sigma == 0 {
		return 0
	}

	count := 0

	for _, v := range window {
		if math.Abs(v) > sigma {
			count++
		}
	}

	return float64(count) / float64(len(window)) / echoDensityNorm
}
