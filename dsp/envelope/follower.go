// Package envelope provides a one-pole level tracker with independent
// attack and release time constants.
package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuse/dsp/core"
)

const (
	defaultAttackMs  = 10.0
	defaultReleaseMs = 200.0
)

// Follower tracks the smoothed absolute amplitude of a signal. Rising
// input is smoothed with the attack coefficient, falling input with the
// release coefficient.
type Follower struct {
	sampleRate  float64
	attackMs    float64
	releaseMs   float64
	attackCoef  float64
	releaseCoef float64
	envelope    float64
}

// New creates a follower for the given sample rate with 10 ms attack
// and 200 ms release.
func New(sampleRate float64) (*Follower, error) {
	f := &Follower{
		attackMs:  defaultAttackMs,
		releaseMs: defaultReleaseMs,
	}

	err := f.SetSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// SetSampleRate updates the sample rate and recomputes both smoothing
// coefficients. The envelope state is preserved.
func (f *Follower) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("envelope sample rate must be > 0: %f", sampleRate)
	}

	f.sampleRate = sampleRate
	f.recalculate()

	return nil
}

// SetTimes sets attack and release times in milliseconds.
func (f *Follower) SetTimes(attackMs, releaseMs float64) error {
	if attackMs <= 0 || !core.IsFinite(attackMs) {
		return fmt.Errorf("envelope attack must be > 0 ms: %f", attackMs)
	}

	if releaseMs <= 0 || !core.IsFinite(releaseMs) {
		return fmt.Errorf("envelope release must be > 0 ms: %f", releaseMs)
	}

	f.attackMs = attackMs
	f.releaseMs = releaseMs
	f.recalculate()

	return nil
}

// ProcessSample feeds one sample and returns the updated envelope.
func (f *Follower) ProcessSample(in float64) float64 {
	a := math.Abs(in)

	coef := f.releaseCoef
	if a > f.envelope {
		coef = f.attackCoef
	}

	f.envelope = core.FlushDenormals(a + coef*(f.envelope-a))

	return f.envelope
}

// Envelope returns the current envelope value.
func (f *Follower) Envelope() float64 { return f.envelope }

// SampleRate returns the sample rate in Hz.
func (f *Follower) SampleRate() float64 { return f.sampleRate }

// AttackMs returns the attack time in milliseconds.
func (f *Follower) AttackMs() float64 { return f.attackMs }

// ReleaseMs returns the release time in milliseconds.
func (f *Follower) ReleaseMs() float64 { return f.releaseMs }

// AttackCoef returns the attack smoothing coefficient.
func (f *Follower) AttackCoef() float64 { return f.attackCoef }

// ReleaseCoef returns the release smoothing coefficient.
func (f *Follower) ReleaseCoef() float64 { return f.releaseCoef }

// Reset zeroes the envelope; coefficients are unchanged.
func (f *Follower) Reset() {
	f.envelope = 0
}

// recalculate derives the one-pole coefficients from the time constants:
// coef = exp(-1000 / (timeMs * sampleRate)), approaching 1 for slow
// times and 0 for instant response.
func (f *Follower) recalculate() {
	f.attackCoef = math.Exp(-1000 / (f.attackMs * f.sampleRate))
	f.releaseCoef = math.Exp(-1000 / (f.releaseMs * f.sampleRate))
}
