package tmc

// strategy captures what differs between the two wirings: where a byte ends,
// whether an acknowledge follows, and what STOP has to flush.
type strategy interface {
	variant() Variant
	// bit handles a CLK rising edge at sample with the DIO level and returns
	// the next state.
	bit(d *Decoder, sample uint64, dio uint8) State
	// stop handles a STOP condition at sample.
	stop(d *Decoder, sample uint64)
}

func strategyFor(v Variant) strategy {
	switch v {
	case StrobeFramed:
		return strobeFramed{}
	default:
		return ackPerByte{}
	}
}

// ackPerByte handles the TM1636/37 wiring. Every ninth clock is the
// acknowledge clock; its rising edge completes the byte.
type ackPerByte struct{}

func (ackPerByte) variant() Variant { return AckPerByte }

func (ackPerByte) bit(d *Decoder, sample uint64, dio uint8) State {
	tx := d.tx
	prevCount := tx.nbits
	prev, ok := tx.pushBit(dio, sample)
	// A bit is shown once the next clock fixes its end. The acknowledge
	// clock is registered like a data bit but never shown.
	if ok && prevCount <= 8 {
		d.emit.bit(prev)
	}
	if tx.nbits <= 8 {
		tx.accumulate(dio)
		return StateFindData
	}

	b := tx.takeByte(8, sample)
	d.emit.byteDone(b)
	tx.ackStart = sample
	return StateFindAck
}

func (ackPerByte) stop(d *Decoder, sample uint64) {
	d.bitrate(sample)
	d.closeTransaction(sample)
}

// strobeFramed handles the TM1638 wiring. Bytes are closed lazily when the
// ninth bit arrives, or by STOP with whatever bits are pending.
type strobeFramed struct{}

func (strobeFramed) variant() Variant { return StrobeFramed }

func (s strobeFramed) bit(d *Decoder, sample uint64, dio uint8) State {
	tx := d.tx
	if tx.nbits >= 8 {
		s.flush(d, sample)
	}
	tx.pushBit(dio, sample)
	tx.accumulate(dio)
	return StateFindData
}

func (s strobeFramed) stop(d *Decoder, sample uint64) {
	d.bitrate(sample)
	s.flush(d, sample)
	d.closeTransaction(sample)
}

// flush closes the pending byte at sample, including a short or empty one.
func (strobeFramed) flush(d *Decoder, sample uint64) {
	tx := d.tx
	if tx.nbits > 0 {
		tx.bits[tx.nbits-1].End = sample
	}
	for _, b := range tx.bits[:tx.nbits] {
		d.emit.bit(b)
	}
	d.emit.byteDone(tx.takeByte(tx.nbits, sample))
}
