package wave

import (
	"errors"
	"io"
)

// MaxChannels is the number of pins a Sample can carry.
const MaxChannels = 64

// Sample is one snapshot of pin levels. Bit i holds the level of channel i.
type Sample uint64

// Level returns the level (0 or 1) of channel ch.
func (s Sample) Level(ch int) uint8 {
	if ch < 0 || ch >= MaxChannels {
		return 0
	}
	return uint8(s>>uint(ch)) & 1
}

// High reports whether channel ch is high.
func (s Sample) High(ch int) bool {
	return s.Level(ch) == 1
}

// With returns a copy of s with channel ch driven to the given level.
func (s Sample) With(ch int, high bool) Sample {
	if ch < 0 || ch >= MaxChannels {
		return s
	}
	if high {
		return s | 1<<uint(ch)
	}
	return s &^ (1 << uint(ch))
}

// Run is a stretch of Len consecutive samples that share the same pin levels.
type Run struct {
	Pins Sample
	Len  uint64
}

// Source produces consecutive runs of samples. Next returns io.EOF once the
// input is exhausted.
type Source interface {
	Next() (Run, error)
}

// ErrEndOfInput is returned by Cursor.Wait when the source has no more samples.
var ErrEndOfInput = errors.New("wave: end of input")

// Runs is an in-memory Source backed by a slice of runs.
type Runs struct {
	runs []Run
	pos  int
}

// NewRuns returns a Source replaying the given runs in order.
func NewRuns(runs ...Run) *Runs {
	return &Runs{runs: append([]Run(nil), runs...)}
}

// FromSamples builds a Source from individual samples, merging repeats.
func FromSamples(samples ...Sample) *Runs {
	var runs []Run
	for _, s := range samples {
		if n := len(runs); n > 0 && runs[n-1].Pins == s {
			runs[n-1].Len++
			continue
		}
		runs = append(runs, Run{Pins: s, Len: 1})
	}
	return &Runs{runs: runs}
}

// Next implements Source.
func (r *Runs) Next() (Run, error) {
	if r.pos >= len(r.runs) {
		return Run{}, io.EOF
	}
	run := r.runs[r.pos]
	r.pos++
	return run, nil
}

// Len returns the total number of samples held by r.
func (r *Runs) Len() uint64 {
	var n uint64
	for _, run := range r.runs {
		n += run.Len
	}
	return n
}
