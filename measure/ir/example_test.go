package ir_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuse/measure/ir"
)

func ExampleAnalyzer_Analyze() {
	// Synthetic exponential tail with a known -60 dB time.
	response := make([]float64, 16384)
	for i := range response {
		response[i] = math.Exp(-float64(i) / 1000)
	}

	analyzer := &ir.Analyzer{SampleRate: 48000}

	metrics, err := analyzer.Analyze(response)
	if err != nil {
		fmt.Println("error")
		return
	}

	fmt.Printf("peak=%.0f decay=%.2fs\n", metrics.Peak, metrics.DecayTime)
	// Output:
	// peak=1 decay=0.14s
}
