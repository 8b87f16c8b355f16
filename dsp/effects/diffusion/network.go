package diffusion

import (
	"fmt"

	"github.com/cwbudde/algo-diffuse/dsp/core"
	"github.com/cwbudde/algo-diffuse/dsp/delay"
)

const (
	// NumStages is the fixed stage count of the diffusion topology.
	NumStages = 8
	// NumLines is the fixed number of delay lines per stage.
	NumLines = 4

	// MinDensity and MaxDensity bound the number of active stages.
	// ProcessSample clamps out-of-range densities instead of rejecting
	// them.
	MinDensity = 2
	MaxDensity = NumStages

	// networkOutputGain scales the recombined taps to a usable level.
	networkOutputGain = 0.015
	// densityGainSlope is the empirical compensation for the extra
	// energy contributed by additional active stages.
	densityGainSlope = 0.75
	// stageGrowthOffset grows line delays across stages so energy
	// spreads instead of repeating.
	stageGrowthOffset = 0.87
)

// baseDelayMs holds the per-line base delay times in milliseconds. The
// values are mutually incommensurate to avoid periodic comb resonances.
var baseDelayMs = [NumLines]float64{0.49, 1.41, 6.85, 11.23}

// Network is a feedforward 8x4 grid of fractional delay lines that
// spreads an input signal into a dense decaying echo train.
type Network struct {
	lines [NumStages][NumLines]*delay.Line
}

// NewNetwork sizes all delay lines for the given maximum diffusion time
// in milliseconds at the given sample rate. Line lengths grow with both
// the stage index and the per-line base delay.
func NewNetwork(maxDiffusionMs, sampleRate float64) (*Network, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("diffusion sample rate must be > 0: %f", sampleRate)
	}

	if maxDiffusionMs <= 0 || !core.IsFinite(maxDiffusionMs) {
		return nil, fmt.Errorf("diffusion time must be > 0 ms: %f", maxDiffusionMs)
	}

	sampleScale := sampleRate * maxDiffusionMs * 0.001

	n := &Network{}

	for stage := range n.lines {
		for line := range n.lines[stage] {
			size := 1 + int(sampleScale*baseDelayMs[line]*(stageGrowthOffset+float64(stage)))

			l, err := delay.New(size)
			if err != nil {
				return nil, fmt.Errorf("diffusion line (stage %d, line %d): %w", stage, line, err)
			}

			n.lines[stage][line] = l
		}
	}

	return n, nil
}

// ProcessSample pushes one sample through the active stages and returns
// the diffused output. factor in [0,1] scales the fractional read
// position of every line; density selects the number of active stages
// and is clamped to [MinDensity, MaxDensity].
func (n *Network) ProcessSample(input, factor float64, density int) float64 {
	density = core.ClampInt(density, MinDensity, MaxDensity)

	// Decorrelating input transforms seeding the four tap paths.
	taps := [NumLines]float64{
		0.8 * input,
		1.2 * input,
		-input - 0.1,
		-input + 0.1,
	}

	var outs [NumLines]float64

	for stage := 0; stage < density; stage++ {
		for line := range outs {
			n.lines[stage][line].Write(taps[line])
			outs[line] = n.lines[stage][line].ReadAtFactor(factor)
		}

		// Direct-signal contribution decays as diffusion accumulates.
		direct := (1 - float64(stage)/float64(density)) * 0.5 * input

		taps[0] = direct + outs[0] + outs[1] + outs[2] + outs[3]
		taps[1] = direct + outs[0] - outs[1] + outs[2] - outs[3]
		taps[2] = direct + outs[0] + outs[1] - outs[2] - outs[3]
		taps[3] = direct + outs[0] - outs[1] - outs[2] + outs[3]
	}

	sum := taps[0] + taps[1] + taps[2] + taps[3]
	compensation := 1 - float64(density)/float64(NumStages)*densityGainSlope

	return networkOutputGain * sum * compensation
}

// Reset clears all delay lines; their sizes are unchanged.
func (n *Network) Reset() {
	for stage := range n.lines {
		for line := range n.lines[stage] {
			n.lines[stage][line].Reset()
		}
	}
}

// LineLen returns the buffer size of the delay line at (stage, line).
func (n *Network) LineLen(stage, line int) int {
	return n.lines[stage][line].Len()
}
