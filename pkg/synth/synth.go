// Package synth generates TM163x bus waveforms. It is used to build test
// captures and by the "tmc synth" command.
package synth

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/trace"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/wave"
)

// Physical channel numbers of generated waveforms.
const (
	CLK = 0
	DIO = 1
	STB = 2
)

// ChannelNames are the trace channel names, indexed by physical channel.
var ChannelNames = []string{"clk", "dio", "stb"}

// DefaultHalfPeriod is the number of samples each line level is held for.
const DefaultHalfPeriod = 10

// Builder appends line changes to a waveform. Every step holds the new
// levels for one half period.
type Builder struct {
	halfPeriod uint64
	pins       wave.Sample
	runs       []wave.Run
}

// NewBuilder creates a builder whose lines start at idle.
func NewBuilder(halfPeriod uint64, idle wave.Sample) *Builder {
	if halfPeriod == 0 {
		halfPeriod = DefaultHalfPeriod
	}
	return &Builder{halfPeriod: halfPeriod, pins: idle}
}

// Set drives channel ch and holds for a half period.
func (b *Builder) Set(ch int, high bool) *Builder {
	b.pins = b.pins.With(ch, high)
	return b.Hold(b.halfPeriod)
}

// Hold keeps the current levels for n samples.
func (b *Builder) Hold(n uint64) *Builder {
	if n == 0 {
		return b
	}
	if last := len(b.runs) - 1; last >= 0 && b.runs[last].Pins == b.pins {
		b.runs[last].Len += n
		return b
	}
	b.runs = append(b.runs, wave.Run{Pins: b.pins, Len: n})
	return b
}

// Clock shifts one bit out: CLK low, DIO to the bit, CLK high.
func (b *Builder) Clock(bit uint8) *Builder {
	return b.Set(CLK, false).Set(DIO, bit&1 == 1).Set(CLK, true)
}

// Byte clocks v out LSB first.
func (b *Builder) Byte(v byte) *Builder {
	for i := 0; i < 8; i++ {
		b.Clock(v >> uint(i) & 1)
	}
	return b
}

// Pins returns the current line levels.
func (b *Builder) Pins() wave.Sample {
	return b.pins
}

// Len returns the number of samples generated so far.
func (b *Builder) Len() uint64 {
	var n uint64
	for _, r := range b.runs {
		n += r.Len
	}
	return n
}

// Runs returns a copy of the generated runs.
func (b *Builder) Runs() []wave.Run {
	return append([]wave.Run(nil), b.runs...)
}

// Source returns a replayable source of the waveform.
func (b *Builder) Source() *wave.Runs {
	return wave.NewRuns(b.runs...)
}

// Trace converts the waveform into a .ott trace.
func (b *Builder) Trace(samplerate float64, channels int) *trace.Trace {
	if channels > len(ChannelNames) {
		channels = len(ChannelNames)
	}
	return trace.FromRuns(samplerate, ChannelNames[:channels], b.Runs())
}

// AckFrame is one TM1636/37 transaction: a command byte followed by data
// bytes, each acknowledged by the device.
type AckFrame struct {
	Bytes []byte
	// Nack lists byte indexes the device does not acknowledge.
	Nack []int
}

func (f AckFrame) nacked(i int) bool {
	for _, n := range f.Nack {
		if n == i {
			return true
		}
	}
	return false
}

// StrobeFrame is one TM1638 transaction.
type StrobeFrame struct {
	Bytes []byte
	// TrailingBits are clocked after the last full byte, before STOP.
	TrailingBits []uint8
}

// AckIdle is the idle level of a TM1636/37 bus.
const AckIdle = wave.Sample(1<<CLK | 1<<DIO)

// StrobeIdle is the idle level of a TM1638 bus.
const StrobeIdle = wave.Sample(1<<CLK | 1<<DIO | 1<<STB)

// AckFrame appends a TM1636/37 transaction. The bus must be idle.
func (b *Builder) AckFrame(f AckFrame) *Builder {
	// START: DIO falls while CLK is high.
	b.Set(DIO, false)
	for i, v := range f.Bytes {
		b.Byte(v)
		var ack uint8
		if f.nacked(i) {
			ack = 1
		}
		// The following CLK falling edge samples the acknowledge.
		b.Clock(ack)
	}
	// STOP: one last clock with DIO low, then DIO rises while CLK is high.
	b.Set(CLK, false).Set(DIO, false).Set(CLK, true).Set(DIO, true)
	return b
}

// StrobeFrame appends a TM1638 transaction. The bus must be idle.
func (b *Builder) StrobeFrame(f StrobeFrame) *Builder {
	b.Set(STB, false)
	for _, v := range f.Bytes {
		b.Byte(v)
	}
	for _, bit := range f.TrailingBits {
		b.Clock(bit)
	}
	b.Set(STB, true).Set(DIO, true)
	return b
}

// Ack builds a complete TM1636/37 capture holding frames separated by idle
// time.
func Ack(halfPeriod uint64, frames ...AckFrame) *Builder {
	b := NewBuilder(halfPeriod, AckIdle)
	b.Hold(b.halfPeriod)
	for _, f := range frames {
		b.AckFrame(f).Hold(2 * b.halfPeriod)
	}
	return b
}

// Strobe builds a complete TM1638 capture.
func Strobe(halfPeriod uint64, frames ...StrobeFrame) *Builder {
	b := NewBuilder(halfPeriod, StrobeIdle)
	b.Hold(b.halfPeriod)
	for _, f := range frames {
		b.StrobeFrame(f).Hold(2 * b.halfPeriod)
	}
	return b
}

// ParseBits converts a string such as "101" into bit values.
func ParseBits(s string) ([]uint8, error) {
	bits := make([]uint8, 0, len(s))
	for i, c := range s {
		switch c {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		default:
			return nil, fmt.Errorf("synth: invalid bit %q at position %d", c, i)
		}
	}
	return bits, nil
}
