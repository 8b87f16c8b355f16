package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuse/dsp/core"
)

const (
	// minFactorDelay keeps factor-based reads at least two samples
	// behind the write head so the interpolation pair never straddles it.
	minFactorDelay = 2.0
	// factorSpan limits factor-based reads to 98% of the buffer,
	// leaving headroom at the far end of the delay range.
	factorSpan = 0.98
)

// Line is a fixed-size circular delay line with linearly interpolated
// fractional reads. The size is set once at construction; processing
// never reallocates.
type Line struct {
	buffer []float64
	head   int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write stores one sample at the head and advances it, wrapping at the
// buffer end.
func (d *Line) Write(sample float64) {
	d.buffer[d.head] = sample

	d.head++
	if d.head >= len(d.buffer) {
		d.head = 0
	}
}

// Read returns the sample currently under the write head, i.e. the
// oldest sample in the line (a full-length delay tap when called
// before Write).
func (d *Line) Read() float64 {
	return d.buffer[d.head]
}

// ReadAt reads at a fractional delay in samples behind the write head,
// linearly interpolating between the two neighbouring stored samples.
func (d *Line) ReadAt(delay float64) float64 {
	size := len(d.buffer)
	pos := float64(d.head) + float64(size) - delay

	floor := int(math.Floor(pos))
	weight := pos - float64(floor)

	prev := wrapIndex(floor, size)

	next := prev + 1
	if next >= size {
		next = 0
	}

	return d.buffer[prev]*(1-weight) + d.buffer[next]*weight
}

// ReadAtFactor maps a normalized factor in [0,1] onto an actual delay
// of 2 + size*factor*0.98 samples and reads there. The offset and span
// keep the read position away from the write head at both extremes.
func (d *Line) ReadAtFactor(factor float64) float64 {
	return d.ReadAt(minFactorDelay + float64(len(d.buffer))*factor*factorSpan)
}

// Reset zeroes the buffer and rewinds the head; the size is unchanged.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.head = 0
}

// wrapIndex reduces i into [0, size) with floored modulo semantics.
func wrapIndex(i, size int) int {
	i %= size
	if i < 0 {
		i += size
	}

	return i
}
