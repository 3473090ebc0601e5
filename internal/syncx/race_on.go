//go:build race

package syncx

// RaceDetectorEnabled reports whether the binary was built with -race.
// The deliberately unsafe lock configuration trips the detector by
// design, so callers use this to skip or gate those paths.
const RaceDetectorEnabled = true
