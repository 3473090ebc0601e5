//go:build !race

package syncx

// RaceDetectorEnabled reports whether the binary was built with -race.
const RaceDetectorEnabled = false
