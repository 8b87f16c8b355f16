package delay

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestNewZeroed(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}

	for delay := 0; delay < 16; delay++ {
		if got := d.ReadAt(float64(delay)); got != 0 {
			t.Fatalf("fresh line ReadAt(%d): got %v want 0", delay, got)
		}
	}
}

// --- write/read semantics ---

func TestReadReturnsOldest(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 4; i++ {
		d.Write(float64(i))
	}
	// Head wrapped back to 0; the sample under it is the oldest (1).
	if got := d.Read(); got != 1 {
		t.Fatalf("got %v want 1", got)
	}

	d.Write(5)
	// Oldest is now 2.
	if got := d.Read(); got != 2 {
		t.Fatalf("after overwrite: got %v want 2", got)
	}
}

func TestReadAtIntegerDelays(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 8; i++ {
		d.Write(float64(i))
	}
	// ReadAt(k) for integer k in [1, size-1] returns the sample written
	// k steps ago.
	for k := 1; k < 8; k++ {
		want := float64(8 - k + 1)
		if got := d.ReadAt(float64(k)); got != want {
			t.Fatalf("ReadAt(%d): got %v want %v", k, got, want)
		}
	}
	// ReadAt(0) lands on the write head: the oldest sample, same as Read.
	if got := d.ReadAt(0); got != d.Read() {
		t.Fatalf("ReadAt(0): got %v want %v", got, d.Read())
	}
}

// TestReadAtMatchesWriteHistory checks the linear-interpolation contract
// against a directly computed reference: ReadAt(k+w) must equal
// (1-w)*written[k ago] + w*written[k+1 ago].
func TestReadAtMatchesWriteHistory(t *testing.T) {
	const size = 24

	d, err := New(size)
	if err != nil {
		t.Fatal(err)
	}

	history := make([]float64, 0, 3*size)
	for i := 0; i < 3*size; i++ {
		v := math.Sin(0.7*float64(i)) + 0.25*float64(i%5)
		d.Write(v)
		history = append(history, v)
	}

	ago := func(k int) float64 { return history[len(history)-k] }

	for k := 1; k < size-1; k++ {
		for _, w := range []float64{0, 0.25, 0.5, 0.99} {
			want := (1-w)*ago(k) + w*ago(k+1)

			got := d.ReadAt(float64(k) + w)
			if !approxEqual(got, want, 1e-12) {
				t.Fatalf("ReadAt(%d+%v): got %v want %v", k, w, got, want)
			}
		}
	}
}

func TestReadAtWrapsNegativePositions(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	// Head is 0 here, so delays above the size push the raw read
	// position negative; the index math must wrap it back in range.
	for _, delay := range []float64{8.5, 9, 9.9} {
		got := d.ReadAt(delay)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("ReadAt(%v): got %v", delay, got)
		}
	}
}

// --- factor mapping ---

func TestReadAtFactorDelegates(t *testing.T) {
	const size = 200

	d, err := New(size)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < size; i++ {
		d.Write(float64(i))
	}

	for _, factor := range []float64{0, 0.1, 0.5, 0.75, 1} {
		want := d.ReadAt(2 + float64(size)*factor*0.98)

		got := d.ReadAtFactor(factor)
		if got != want {
			t.Fatalf("factor %v: got %v want %v", factor, got, want)
		}
	}
}

func TestReadAtFactorZeroIsTwoSampleDelay(t *testing.T) {
	d, err := New(64)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 64; i++ {
		d.Write(float64(i))
	}
	// Factor 0 maps to an exact two-sample delay.
	if got := d.ReadAtFactor(0); got != 63 {
		t.Fatalf("got %v want 63", got)
	}
}

func TestReadAtFactorFullRangeStaysInside(t *testing.T) {
	const size = 512

	d, err := New(size)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < size; i++ {
		d.Write(1)
	}
	// On a DC-filled buffer every in-range read must return exactly 1.
	for _, factor := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if got := d.ReadAtFactor(factor); !approxEqual(got, 1, 1e-12) {
			t.Fatalf("factor %v: got %v want 1", factor, got)
		}
	}
}

// --- reset ---

func TestReset(t *testing.T) {
	d, err := New(6)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		d.Write(float64(i + 1))
	}

	d.Reset()

	if d.Len() != 6 {
		t.Fatalf("Len after reset: got %d want 6", d.Len())
	}

	for k := 0; k < 6; k++ {
		if got := d.ReadAt(float64(k)); got != 0 {
			t.Fatalf("after reset ReadAt(%d): got %v want 0", k, got)
		}
	}

	if got := d.Read(); got != 0 {
		t.Fatalf("after reset Read: got %v want 0", got)
	}
}

// --- benchmarks ---

func BenchmarkWriteReadAtFactor(b *testing.B) {
	d, _ := New(2048)
	for i := 0; i < 2048; i++ {
		d.Write(float64(i))
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Write(float64(i))
		_ = d.ReadAtFactor(0.5)
	}
}
