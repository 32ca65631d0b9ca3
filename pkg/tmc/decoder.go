package tmc

import (
	"context"
	"errors"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/annot"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/wave"
)

// Waiter is the sample source a Decoder pulls from. wave.Cursor implements it.
type Waiter interface {
	// Wait blocks until one of conds holds. Match.Matched should carry one
	// entry per condition; missing entries count as not matched.
	Wait(conds ...wave.Condition) (wave.Match, error)
	HasChannel(ch int) bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithRadix sets the number format of byte values in annotation text.
func WithRadix(r annot.Radix) Option {
	return func(d *Decoder) {
		d.emit.radix = r
	}
}

// WithSampleRate sets the samplerate in Hz.
func WithSampleRate(hz float64) Option {
	return func(d *Decoder) {
		d.samplerate = hz
	}
}

// Decoder is the TM163x protocol state machine. A Decoder is not safe for
// concurrent use; Decode may be called again for a new capture.
type Decoder struct {
	emit       emitter
	samplerate float64

	state State
	tx    *txContext
}

// New creates a decoder writing to out.
func New(out Outputs, opts ...Option) *Decoder {
	d := &Decoder{emit: emitter{out: out, radix: annot.Hex}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SampleRate returns the configured samplerate in Hz.
func (d *Decoder) SampleRate() float64 {
	return d.samplerate
}

// State reports the current state machine state.
func (d *Decoder) State() State {
	return d.state
}

// Reset drops any transaction in progress and returns to StateFindStart.
func (d *Decoder) Reset() {
	d.state = StateFindStart
	d.tx = nil
}

// Prepare checks the preconditions for decoding from w without consuming any
// sample: a samplerate must be set and CLK and DIO must be connected.
func (d *Decoder) Prepare(w Waiter) error {
	if d.samplerate <= 0 {
		return ErrSampleRate
	}
	var missing []string
	if !w.HasChannel(CLK) {
		missing = append(missing, "CLK")
	}
	if !w.HasChannel(DIO) {
		missing = append(missing, "DIO")
	}
	if len(missing) > 0 {
		return &ChannelError{Missing: missing}
	}
	return nil
}

// Decode runs the state machine until w reports wave.ErrEndOfInput, which is
// a normal end and yields nil. A transaction still open at that point is
// dropped. Cancelling ctx stops decoding between two waits.
func (d *Decoder) Decode(ctx context.Context, w Waiter) error {
	if err := d.Prepare(w); err != nil {
		return err
	}
	d.Reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var err error
		switch d.state {
		case StateFindStart:
			err = d.findStart(w)
		case StateFindData:
			err = d.findData(w)
		case StateFindAck:
			err = d.findAck(w)
		}
		if errors.Is(err, wave.ErrEndOfInput) {
			d.Reset()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// findStart waits for either START condition:
//
//	TM1636/37: CLK high, DIO falling
//	TM1638:    CLK high, STB falling
func (d *Decoder) findStart(w Waiter) error {
	m, err := w.Wait(
		wave.Condition{CLK: wave.High, DIO: wave.Falling},
		wave.Condition{CLK: wave.High, STB: wave.Falling},
	)
	if err != nil {
		return err
	}
	switch {
	case matched(m, 0):
		d.openTransaction(AckPerByte, m.Sample)
	case matched(m, 1):
		d.openTransaction(StrobeFramed, m.Sample)
	}
	return nil
}

// findData waits for a clock pulse or either STOP condition:
//
//	clock:     CLK rising
//	TM1636/37: CLK high, DIO rising
//	TM1638:    STB rising
func (d *Decoder) findData(w Waiter) error {
	m, err := w.Wait(
		wave.Condition{CLK: wave.Rising},
		wave.Condition{CLK: wave.High, DIO: wave.Rising},
		wave.Condition{STB: wave.Rising},
	)
	if err != nil {
		return err
	}
	switch {
	case matched(m, 0):
		d.tx.BitCount++
		d.state = d.tx.strategy.bit(d, m.Sample, m.Pins.Level(DIO))
	case matched(m, 1) || matched(m, 2):
		d.tx.strategy.stop(d, m.Sample)
	}
	return nil
}

// findAck samples DIO on the falling edge of the acknowledge clock.
func (d *Decoder) findAck(w Waiter) error {
	m, err := w.Wait(wave.Condition{CLK: wave.Falling})
	if err != nil {
		return err
	}
	tag := TagAck
	if m.Pins.Level(DIO) == 1 {
		tag = TagNack
	}
	d.emit.condition(tag, d.tx.ackStart, m.Sample)
	d.state = StateFindData
	return nil
}

func matched(m wave.Match, i int) bool {
	return i < len(m.Matched) && m.Matched[i]
}

func (d *Decoder) openTransaction(v Variant, sample uint64) {
	d.tx = newTxContext(strategyFor(v), sample)
	d.emit.condition(TagStart, sample, sample)
	d.state = StateFindData
}

// bitrate emits the bitrate of the open transaction as if it stopped at sample.
func (d *Decoder) bitrate(sample uint64) {
	bps, ok := Bitrate(d.tx.Start, sample, d.tx.BitCount, d.samplerate)
	if !ok {
		return
	}
	d.emit.bitrate(d.tx.firstByteStart, sample, bps)
}

func (d *Decoder) closeTransaction(sample uint64) {
	d.emit.condition(TagStop, sample, sample)
	d.tx.End = sample
	d.tx.clearBits()
	d.emit.transaction(d.tx.Transaction)
	d.tx = nil
	d.state = StateFindStart
}
