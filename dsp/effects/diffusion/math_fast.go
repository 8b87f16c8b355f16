//go:build fastmath

package diffusion

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// dbPerNat converts natural log to dB: 20/ln(10).
const dbPerNat = 8.685889638065035

// gainToDB converts linear amplitude to dB using a fast log
// approximation. Returns -Inf for non-positive input so the gate
// comparison treats silence as fully below any threshold.
func gainToDB(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}

	return dbPerNat * approx.FastLog(x)
}
