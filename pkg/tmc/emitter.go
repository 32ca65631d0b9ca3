package tmc

import "github.com/OpenTraceLab/OpenTraceTMC/pkg/annot"

// emitter formats decoder events and fans them out to the configured sinks.
type emitter struct {
	out   Outputs
	radix annot.Radix
}

func (e *emitter) annotate(start, end uint64, c Class, texts []string) {
	if e.out.Annotations == nil {
		return
	}
	e.out.Annotations.Annotate(Annotation{Start: start, End: end, Class: c, Texts: texts})
}

func (e *emitter) packet(p Packet) {
	if e.out.Packets == nil {
		return
	}
	e.out.Packets.Packet(p)
}

// condition emits one of the payload-less events START, STOP, ACK and NACK.
func (e *emitter) condition(tag Tag, start, end uint64) {
	var c Class
	switch tag {
	case TagStart:
		c = ClassStart
	case TagStop:
		c = ClassStop
	case TagAck:
		c = ClassAck
	case TagNack:
		c = ClassNack
	default:
		return
	}
	e.packet(Packet{Start: start, End: end, Tag: tag})
	e.annotate(start, end, c, Labels(c))
}

// bit shows a single finalized bit.
func (e *emitter) bit(b Bit) {
	e.annotate(b.Start, b.End, ClassBit, annot.Compose(nil, bitText(b.Value)))
}

// byteDone emits the BITS and COMMAND/DATA packets, the raw byte for DATA and
// the byte annotation.
func (e *emitter) byteDone(b Byte) {
	tag, c := TagData, ClassData
	if b.Role == Command {
		tag, c = TagCommand, ClassCommand
	}
	e.packet(Packet{Start: b.Start, End: b.End, Tag: TagBits, Bits: append([]Bit(nil), b.Bits...)})
	e.packet(Packet{Start: b.Start, End: b.End, Tag: tag, Value: b.Value})
	if b.Role == Data && e.out.Binary != nil {
		e.out.Binary.Binary(BinaryData{Start: b.Start, End: b.End, Data: []byte{b.Value}})
	}
	e.annotate(b.Start, b.End, c, annot.Compose(labels[c], annot.FormatByte(b.Value, e.radix)))
}

func (e *emitter) bitrate(start, end uint64, bps int64) {
	if e.out.Bitrate == nil {
		return
	}
	e.out.Bitrate.Bitrate(BitrateMeta{Start: start, End: end, BitsPerSecond: bps})
}

func (e *emitter) transaction(t Transaction) {
	if e.out.Transactions == nil {
		return
	}
	e.out.Transactions.Transaction(t)
}

func bitText(v uint8) string {
	if v != 0 {
		return "1"
	}
	return "0"
}
