// Package ir analyzes impulse responses and echo trains.
//
// It provides broadband metrics (peak, RMS, total energy), a Schroeder
// backward-integrated decay curve with -60 dB decay time extrapolation,
// a normalized echo density profile, and a power spectrum with spectral
// flatness for coloration checks.
package ir
