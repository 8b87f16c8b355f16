package diffusion

import (
	"fmt"

	"github.com/cwbudde/algo-diffuse/dsp/core"
	"github.com/cwbudde/algo-diffuse/dsp/envelope"
)

const (
	defaultLength      = 0.5
	defaultDensity     = 4
	defaultThresholdDB = -30.0
	defaultMix         = 0.5
	defaultVolumeDB    = 0.0

	minThresholdDB = -60.0
	maxThresholdDB = 0.0
	minVolumeDB    = -12.0
	maxVolumeDB    = 12.0

	// Envelope times driving the dynamic mix.
	envelopeAttackMs  = 10.0
	envelopeReleaseMs = 200.0

	// dynamicMixRangeDB maps the envelope overshoot above the threshold
	// linearly onto the dynamic mix: fully wet 12 dB past the gate.
	dynamicMixRangeDB = 12.0
)

// channelState is the value-owned per-channel processing state. No
// state is shared across channels.
type channelState struct {
	network  *Network
	follower *envelope.Follower
}

// Diffuser applies the diffusion network with an envelope-gated dynamic
// mix, a static wet/dry mix, and an output volume trim. Each channel
// carries its own network and envelope follower.
type Diffuser struct {
	sampleRate     float64
	maxDiffusionMs float64

	length      float64
	density     int
	thresholdDB float64
	mix         float64
	volumeDB    float64
	volumeGain  float64

	channels []channelState
}

// New creates a diffuser for the given sample rate. By default it
// processes two channels with a 5 ms maximum diffusion time.
func New(sampleRate float64, opts ...Option) (*Diffuser, error) {
	cfg := applyOptions(opts...)

	d := &Diffuser{
		maxDiffusionMs: cfg.maxDiffusionMs,
		length:         defaultLength,
		density:        defaultDensity,
		thresholdDB:    defaultThresholdDB,
		mix:            defaultMix,
		volumeDB:       defaultVolumeDB,
		volumeGain:     core.DBToLinear(defaultVolumeDB),
		channels:       make([]channelState, cfg.channels),
	}

	err := d.SetSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// SetSampleRate reallocates the per-channel delay grids for the new
// rate and clears all state. It must not run concurrently with
// processing on the same instance.
func (d *Diffuser) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("diffuser sample rate must be > 0: %f", sampleRate)
	}

	for i := range d.channels {
		network, err := NewNetwork(d.maxDiffusionMs, sampleRate)
		if err != nil {
			return err
		}

		follower, err := envelope.New(sampleRate)
		if err != nil {
			return err
		}

		err = follower.SetTimes(envelopeAttackMs, envelopeReleaseMs)
		if err != nil {
			return err
		}

		d.channels[i] = channelState{network: network, follower: follower}
	}

	d.sampleRate = sampleRate

	return nil
}

// SetLength sets the normalized diffusion delay-time factor in [0,1].
func (d *Diffuser) SetLength(length float64) error {
	if length < 0 || length > 1 || !core.IsFinite(length) {
		return fmt.Errorf("diffuser length must be in [0, 1]: %f", length)
	}

	d.length = length

	return nil
}

// SetDensity sets the number of active diffusion stages. Values outside
// [MinDensity, MaxDensity] are clamped, not rejected.
func (d *Diffuser) SetDensity(density int) {
	d.density = core.ClampInt(density, MinDensity, MaxDensity)
}

// SetThreshold sets the dynamic-mix gate level in dB, in [-60, 0].
func (d *Diffuser) SetThreshold(db float64) error {
	if db < minThresholdDB || db > maxThresholdDB || !core.IsFinite(db) {
		return fmt.Errorf("diffuser threshold must be in [%v, %v] dB: %f", minThresholdDB, maxThresholdDB, db)
	}

	d.thresholdDB = db

	return nil
}

// SetMix sets the static wet/dry blend in [0, 1].
func (d *Diffuser) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || !core.IsFinite(mix) {
		return fmt.Errorf("diffuser mix must be in [0, 1]: %f", mix)
	}

	d.mix = mix

	return nil
}

// SetVolume sets the output trim in dB, in [-12, 12]. The linear gain
// is derived once here, not per sample.
func (d *Diffuser) SetVolume(db float64) error {
	if db < minVolumeDB || db > maxVolumeDB || !core.IsFinite(db) {
		return fmt.Errorf("diffuser volume must be in [%v, %v] dB: %f", minVolumeDB, maxVolumeDB, db)
	}

	d.volumeDB = db
	d.volumeGain = core.DBToLinear(db)

	return nil
}

// SampleRate returns the sample rate in Hz.
func (d *Diffuser) SampleRate() float64 { return d.sampleRate }

// Channels returns the configured channel count.
func (d *Diffuser) Channels() int { return len(d.channels) }

// MaxDiffusionMs returns the maximum diffusion time in milliseconds.
func (d *Diffuser) MaxDiffusionMs() float64 { return d.maxDiffusionMs }

// Length returns the normalized diffusion delay-time factor.
func (d *Diffuser) Length() float64 { return d.length }

// Density returns the number of active diffusion stages.
func (d *Diffuser) Density() int { return d.density }

// Threshold returns the dynamic-mix gate level in dB.
func (d *Diffuser) Threshold() float64 { return d.thresholdDB }

// Mix returns the static wet/dry blend.
func (d *Diffuser) Mix() float64 { return d.mix }

// Volume returns the output trim in dB.
func (d *Diffuser) Volume() float64 { return d.volumeDB }

// ProcessSample processes one sample on the given channel. The channel
// index must be in [0, Channels()).
func (d *Diffuser) ProcessSample(channel int, in float64) float64 {
	return d.processSample(&d.channels[channel], in)
}

// ProcessInPlace applies the diffuser to a mono buffer in place using
// channel 0.
func (d *Diffuser) ProcessInPlace(buf []float64) {
	state := &d.channels[0]
	for i := range buf {
		buf[i] = d.processSample(state, buf[i])
	}
}

// Process applies the diffuser to a planar block in place, one
// independent channel state per buffer. The block must not carry more
// channels than the diffuser was configured with.
func (d *Diffuser) Process(block [][]float64) error {
	if len(block) > len(d.channels) {
		return fmt.Errorf("diffuser configured for %d channels, got %d", len(d.channels), len(block))
	}

	for ch := range block {
		buf := block[ch]
		state := &d.channels[ch]

		for i := range buf {
			buf[i] = d.processSample(state, buf[i])
		}
	}

	return nil
}

// Reset clears all delay lines and envelopes without reallocating.
func (d *Diffuser) Reset() {
	for i := range d.channels {
		d.channels[i].network.Reset()
		d.channels[i].follower.Reset()
	}
}

func (d *Diffuser) processSample(ch *channelState, in float64) float64 {
	diffused := ch.network.ProcessSample(in, d.length, d.density)

	envelopeDB := gainToDB(ch.follower.ProcessSample(diffused))

	// Level gate: dry at or below the threshold, fully wet 12 dB above.
	dynamicMix := core.Clamp((envelopeDB-d.thresholdDB)/dynamicMixRangeDB, 0, 1)

	wet := dynamicMix*diffused + (1-dynamicMix)*in

	return d.volumeGain * (d.mix*wet + (1-d.mix)*in)
}
