// Package tmc decodes the serial bus used by the Titan Micro TM163x family of
// LED/digit display drivers from sampled logic levels.
//
// The bus has a clock (CLK) and a bidirectional data line (DIO), plus an
// optional strobe (STB). Bytes are sent least-significant bit first and there
// is no address field. Two wirings exist:
//
//   - Ack-per-byte (TM1636/TM1637): CLK+DIO only. START is DIO falling while
//     CLK is high, STOP is DIO rising while CLK is high, and every byte is
//     followed by an acknowledge clock on which the chip pulls DIO low.
//   - Strobe-framed (TM1638): CLK+DIO+STB. STB low frames the transaction and
//     no acknowledge is sent.
//
// # Overview
//
// A Decoder runs a small state machine against a Waiter (normally a
// wave.Cursor):
//
//	FindStart -> FindData -> (FindAck <-> FindData) -> FindStart  ack-per-byte
//	FindStart -> FindData -> FindStart                             strobe-framed
//
// The wiring is picked once, when START is seen, and held until STOP. The
// first byte after START is classified as COMMAND and the rest as DATA.
//
// # Outputs
//
// Results go to up to four independent sinks, any of which may be nil:
//   - Annotations: spans with class and display text variants
//   - Packets: START/STOP/ACK/NACK/COMMAND/DATA/BITS records
//   - Binary: raw DATA bytes (COMMAND bytes are never written here)
//   - Bitrate: one bits-per-second figure per transaction
//
// A fifth, optional TransactionSink receives each closed transaction.
//
// # Usage
//
//	rec := &sink.Recorder{}
//	dec := tmc.New(rec.Outputs(), tmc.WithSampleRate(1e6), tmc.WithRadix(annot.Hex))
//	cur := wave.NewCursor(src, clkBit, dioBit, wave.Unconnected)
//	if err := dec.Decode(ctx, cur); err != nil {
//		return err
//	}
//
// # Limitations
//
// Traffic is assumed to be well formed. Out-of-order edges are absorbed by
// whichever rule matches next; nothing is reported. Command byte values are
// not interpreted. A transaction still open when the input ends is dropped.
package tmc
