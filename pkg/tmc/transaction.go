package tmc

// maxPendingBits covers eight data bits plus the acknowledge clock.
const maxPendingBits = 9

// txContext holds the state of the transaction in progress. It is created at
// START, owned by the Decoder and dropped at STOP.
type txContext struct {
	Transaction

	strategy strategy

	acc       uint8 // byte accumulator, LSB-first
	bits      [maxPendingBits]Bit
	nbits     int
	byteCount int

	byteStart      uint64
	firstByteStart uint64
	haveFirstBit   bool
	ackStart       uint64
}

func newTxContext(s strategy, start uint64) *txContext {
	return &txContext{
		Transaction: Transaction{
			Variant: s.variant(),
			Start:   start,
			End:     start,
		},
		strategy:       s,
		byteStart:      start,
		firstByteStart: start,
	}
}

// pushBit registers a bit observed at sample. The previous bit, if any, has
// its end fixed to sample and is returned for display.
func (tx *txContext) pushBit(value uint8, sample uint64) (prev Bit, ok bool) {
	if tx.nbits == 0 {
		tx.byteStart = sample
		if !tx.haveFirstBit {
			tx.firstByteStart = sample
			tx.haveFirstBit = true
		}
	}
	if tx.nbits > 0 {
		tx.bits[tx.nbits-1].End = sample
		prev, ok = tx.bits[tx.nbits-1], true
	}
	if tx.nbits < len(tx.bits) {
		tx.bits[tx.nbits] = Bit{Value: value, Start: sample, End: sample}
		tx.nbits++
	}
	return prev, ok
}

// accumulate shifts value into the top of the accumulator. After eight calls
// the first bit sits in bit 0.
func (tx *txContext) accumulate(value uint8) {
	tx.acc = tx.acc>>1 | (value&1)<<7
}

// takeByte finalizes the first n pending bits as a byte spanning
// [byteStart, end] and resets the accumulator.
func (tx *txContext) takeByte(n int, end uint64) Byte {
	if n > tx.nbits {
		n = tx.nbits
	}
	b := Byte{
		Value: tx.acc,
		Start: tx.byteStart,
		End:   end,
		Role:  Data,
		Bits:  append([]Bit(nil), tx.bits[:n]...),
	}
	if tx.byteCount == 0 {
		b.Role = Command
	}
	tx.byteCount++
	tx.Bytes = append(tx.Bytes, b)
	tx.clearBits()
	return b
}

func (tx *txContext) clearBits() {
	tx.acc = 0
	tx.nbits = 0
}
