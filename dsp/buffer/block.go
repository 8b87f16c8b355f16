// Package buffer provides planar multichannel sample buffers bridging
// interleaved host I/O and per-channel DSP processing.
package buffer

import (
	"fmt"

	"github.com/cwbudde/algo-diffuse/dsp/core"
)

// Block is a planar multichannel sample buffer. All channels share one
// backing allocation and have equal length.
type Block struct {
	channels [][]float64
	length   int
}

// NewBlock returns a zero-filled block with the given channel count and
// per-channel length.
func NewBlock(channels, length int) (*Block, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("block channel count must be > 0: %d", channels)
	}

	if length < 0 {
		return nil, fmt.Errorf("block length must be >= 0: %d", length)
	}

	backing := make([]float64, channels*length)

	chs := make([][]float64, channels)
	for i := range chs {
		chs[i] = backing[i*length : (i+1)*length : (i+1)*length]
	}

	return &Block{channels: chs, length: length}, nil
}

// FromSlices wraps existing per-channel slices without copying. All
// slices must have the same length. Mutations through the block are
// visible in the slices and vice versa.
func FromSlices(channels [][]float64) (*Block, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("block needs at least one channel")
	}

	length := len(channels[0])
	for i, ch := range channels {
		if len(ch) != length {
			return nil, fmt.Errorf("channel %d length %d differs from channel 0 length %d", i, len(ch), length)
		}
	}

	return &Block{channels: channels, length: length}, nil
}

// Channels returns the channel count.
func (b *Block) Channels() int {
	return len(b.channels)
}

// Len returns the per-channel sample count.
func (b *Block) Len() int {
	return b.length
}

// Channel returns the sample slice of channel i.
func (b *Block) Channel(i int) []float64 {
	return b.channels[i]
}

// Samples returns the planar channel slices, suitable for in-place
// processing APIs.
func (b *Block) Samples() [][]float64 {
	return b.channels
}

// Zero sets all samples on all channels to 0.
func (b *Block) Zero() {
	for _, ch := range b.channels {
		core.Zero(ch)
	}
}

// Interleave writes the block into dst in frame order
// (ch0[0], ch1[0], ch0[1], ...). dst must hold Channels()*Len() samples.
func (b *Block) Interleave(dst []float64) error {
	if len(dst) != len(b.channels)*b.length {
		return fmt.Errorf("interleave needs %d samples, got %d", len(b.channels)*b.length, len(dst))
	}

	stride := len(b.channels)
	for ch, samples := range b.channels {
		for i, v := range samples {
			dst[i*stride+ch] = v
		}
	}

	return nil
}

// Deinterleave fills the block from interleaved frames in src. src must
// hold Channels()*Len() samples.
func (b *Block) Deinterleave(src []float64) error {
	if len(src) != len(b.channels)*b.length {
		return fmt.Errorf("deinterleave needs %d samples, got %d", len(b.channels)*b.length, len(src))
	}

	stride := len(b.channels)
	for ch, samples := range b.channels {
		for i := range samples {
			samples[i] = src[i*stride+ch]
		}
	}

	return nil
}
