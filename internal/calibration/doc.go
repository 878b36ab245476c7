// Package calibration measures the exptmod reductions on this machine and
// persists the fastest one per modulus size in a TOML profile.
//
// The profile is only trusted when it was produced on the same hardware
// (CPU count, architecture, word size) by the same profile format.
package calibration
