// Package diffusion implements a multi-stage delay-line diffuser with
// an envelope-gated wet/dry mix.
//
// Network is the diffusion kernel: a fixed grid of 8 stages with 4
// fractional delay lines each, recombined per stage through a 4-point
// Hadamard-style sign-pattern mix that doubles echo density per stage
// while conserving total energy. Diffuser wraps one Network and one
// envelope follower per channel and applies the full per-sample
// pipeline: diffuse, derive a level-dependent dynamic mix against a
// threshold, blend with the static mix, and apply the output gain.
//
// All delay buffers are sized once at construction (or on sample-rate
// changes); the processing path performs no allocation and no locking.
// Initialization and Reset must not run concurrently with processing
// on the same instance — that exclusion is the caller's responsibility.
package diffusion
