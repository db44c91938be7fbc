//go:build race

package convolve

const raceEnabled = true
