//go:build !fastmath

package diffusion

import "math"

// gainToDB converts linear amplitude to dB using the standard library.
// Returns -Inf for non-positive input so the gate comparison treats
// silence as fully below any threshold.
func gainToDB(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(x)
}
