// Package trace reads and writes the .ott text trace format: a small,
// diff-friendly change list of digital channel levels.
//
//	# TM1637 display write
//	samplerate 1MHz
//	channels clk dio
//	@0 11
//	@100 10
//	end 4000
//
// "@N levels" sets every channel, in declaration order, from sample N until
// the next change. Samples before the first change hold its levels.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/wave"
)

const maxTraceChannels = wave.MaxChannels

// Change is a level change at sample At. Bit i of Levels is channel i.
type Change struct {
	At     uint64
	Levels uint64
}

// Trace is a parsed capture.
type Trace struct {
	SampleRate float64 // Hz, 0 if not given
	Channels   []string
	Changes    []Change
	End        uint64 // total number of samples
}

// Index returns the position of the named channel, or wave.Unconnected.
func (t *Trace) Index(name string) int {
	for i, ch := range t.Channels {
		if strings.EqualFold(ch, name) {
			return i
		}
	}
	return wave.Unconnected
}

// Runs converts the change list into sample runs starting at sample 0.
func (t *Trace) Runs() []wave.Run {
	runs := make([]wave.Run, 0, len(t.Changes))
	for i, c := range t.Changes {
		start := c.At
		if i == 0 {
			start = 0
		}
		next := t.End
		if i+1 < len(t.Changes) {
			next = t.Changes[i+1].At
		}
		if next <= start {
			continue
		}
		runs = append(runs, wave.Run{Pins: wave.Sample(c.Levels), Len: next - start})
	}
	return runs
}

// Source returns a source replaying the trace.
func (t *Trace) Source() *wave.Runs {
	return wave.NewRuns(t.Runs()...)
}

// FromRuns builds a trace out of sample runs.
func FromRuns(rate float64, channels []string, runs []wave.Run) *Trace {
	t := &Trace{SampleRate: rate, Channels: append([]string(nil), channels...)}
	var at uint64
	for _, r := range runs {
		if r.Len == 0 {
			continue
		}
		if n := len(t.Changes); n == 0 || t.Changes[n-1].Levels != uint64(r.Pins) {
			t.Changes = append(t.Changes, Change{At: at, Levels: uint64(r.Pins)})
		}
		at += r.Len
	}
	t.End = at
	return t
}

// Write prints t in .ott format.
func Write(w io.Writer, t *Trace) error {
	bw := bufio.NewWriter(w)
	if t.SampleRate > 0 {
		fmt.Fprintf(bw, "samplerate %s\n", FormatRate(t.SampleRate))
	}
	if len(t.Channels) > 0 {
		fmt.Fprintf(bw, "channels %s\n", strings.Join(t.Channels, " "))
	}
	levels := make([]byte, len(t.Channels))
	for _, c := range t.Changes {
		for i := range levels {
			levels[i] = '0' + byte(c.Levels>>uint(i)&1)
		}
		fmt.Fprintf(bw, "@%d %s\n", c.At, levels)
	}
	if len(t.Changes) > 0 {
		fmt.Fprintf(bw, "end %d\n", t.End)
	}
	return bw.Flush()
}
