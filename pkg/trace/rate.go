package trace

import (
	"fmt"
	"strconv"
	"strings"
)

var rateUnits = []struct {
	suffix string
	scale  float64
}{
	{"GHz", 1e9},
	{"MHz", 1e6},
	{"kHz", 1e3},
	{"Hz", 1},
}

// ParseRate parses a samplerate such as "1MHz", "250kHz", "8000000Hz" or a
// bare number of Hz.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	for _, u := range rateUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			scale = u.scale
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("trace: invalid samplerate %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("trace: samplerate must be positive, got %q", s)
	}
	return v * scale, nil
}

// FormatRate prints hz with the largest unit that keeps it readable.
func FormatRate(hz float64) string {
	for _, u := range rateUnits {
		if hz >= u.scale {
			return strconv.FormatFloat(hz/u.scale, 'f', -1, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(hz, 'f', -1, 64) + "Hz"
}
