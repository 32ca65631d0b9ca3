package tmc

import "math"

// Bitrate computes bits per second for a transaction that started at sample
// start, stopped at sample end and carried bits clock pulses. The elapsed time
// is (end - start - 1) sample periods. ok is false when no rate can be derived.
func Bitrate(start, end uint64, bits int, samplerate float64) (bps int64, ok bool) {
	if samplerate <= 0 || end <= start+1 {
		return 0, false
	}
	elapsed := float64(end-start-1) / samplerate
	return int64(math.Round(float64(bits) / elapsed)), true
}
