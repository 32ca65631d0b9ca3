package tmc

import "fmt"

// Logical channel numbers expected from the Waiter.
const (
	CLK = 0 // serial clock
	DIO = 1 // data input/output
	STB = 2 // strobe, optional
)

// Variant identifies the bus wiring of a transaction.
type Variant uint8

const (
	// AckPerByte is the two-wire CLK/DIO bus with an acknowledge after each byte.
	AckPerByte Variant = iota
	// StrobeFramed is the three-wire CLK/DIO/STB bus without acknowledge.
	StrobeFramed
)

var variantNames = map[Variant]string{
	AckPerByte:   "ack-per-byte",
	StrobeFramed: "strobe-framed",
}

var variantChips = map[Variant]string{
	AckPerByte:   "TM1636/37",
	StrobeFramed: "TM1638",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", v)
}

// Chip names the driver family that uses this wiring.
func (v Variant) Chip() string {
	if name, ok := variantChips[v]; ok {
		return name
	}
	return "unknown"
}

// Role is the structural position of a byte within a transaction.
type Role uint8

const (
	Command Role = iota
	Data
)

func (r Role) String() string {
	switch r {
	case Command:
		return "COMMAND"
	case Data:
		return "DATA"
	}
	return fmt.Sprintf("Role(%d)", r)
}

// Bit is one observed data bit. End is only final once a later event (next
// bit, acknowledge or stop) has been seen.
type Bit struct {
	Value uint8
	Start uint64
	End   uint64
}

// Byte is an assembled byte with its bits in wire order.
type Byte struct {
	Value uint8
	Start uint64
	End   uint64
	Role  Role
	Bits  []Bit
}

// Transaction is one START-to-STOP span of bus activity.
type Transaction struct {
	Variant  Variant
	Start    uint64
	End      uint64
	Bytes    []Byte
	BitCount int // clock pulses seen between START and STOP
}

// Tag identifies a packet on the semantic output.
type Tag uint8

const (
	TagStart Tag = iota
	TagStop
	TagAck
	TagNack
	TagCommand
	TagData
	TagBits
)

var tagNames = map[Tag]string{
	TagStart:   "START",
	TagStop:    "STOP",
	TagAck:     "ACK",
	TagNack:    "NACK",
	TagCommand: "COMMAND",
	TagData:    "DATA",
	TagBits:    "BITS",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", t)
}

// Class is the annotation class of a span.
type Class uint8

const (
	ClassStart Class = iota
	ClassStop
	ClassAck
	ClassNack
	ClassCommand
	ClassData
	ClassBit
	ClassWarning
)

var classNames = map[Class]string{
	ClassStart:   "start",
	ClassStop:    "stop",
	ClassAck:     "ack",
	ClassNack:    "nack",
	ClassCommand: "command",
	ClassData:    "data",
	ClassBit:     "bit",
	ClassWarning: "warning",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Class(%d)", c)
}

// labels are the display labels per class, longest first.
var labels = map[Class][]string{
	ClassStart:   {"Start", "S"},
	ClassStop:    {"Stop", "P"},
	ClassAck:     {"ACK", "A"},
	ClassNack:    {"NACK", "N"},
	ClassCommand: {"Command", "C"},
	ClassData:    {"Data", "D"},
	ClassBit:     {"Bit", "B"},
	ClassWarning: {"Warnings", "Warn", "W"},
}

// Labels returns the display labels of c, longest first.
func Labels(c Class) []string {
	return append([]string(nil), labels[c]...)
}

// Row groups annotation classes that a viewer draws on one line.
type Row struct {
	ID      string
	Name    string
	Classes []Class
}

// Rows lists the annotation rows in display order.
var Rows = []Row{
	{ID: "bits", Name: "Bits", Classes: []Class{ClassBit}},
	{ID: "data", Name: "Cmd/Data", Classes: []Class{ClassStart, ClassStop, ClassAck, ClassNack, ClassCommand, ClassData}},
	{ID: "warnings", Name: "Warnings", Classes: []Class{ClassWarning}},
}

// RowOf returns the row that draws class c.
func RowOf(c Class) Row {
	for _, r := range Rows {
		for _, rc := range r.Classes {
			if rc == c {
				return r
			}
		}
	}
	return Row{}
}

// Annotation is a display span.
type Annotation struct {
	Start uint64
	End   uint64
	Class Class
	Texts []string // longest first
}

// Packet is a semantic output record. Value is set for COMMAND and DATA, Bits
// for BITS; other tags carry no payload.
type Packet struct {
	Start uint64
	End   uint64
	Tag   Tag
	Value uint8
	Bits  []Bit
}

// HasValue reports whether p carries a byte value.
func (p Packet) HasValue() bool {
	return p.Tag == TagCommand || p.Tag == TagData
}

// BinaryData is a raw byte written to the binary output.
type BinaryData struct {
	Start uint64
	End   uint64
	Data  []byte
}

// BitrateMeta is the bitrate of one transaction.
type BitrateMeta struct {
	Start         uint64
	End           uint64
	BitsPerSecond int64
}

// AnnotationSink receives display annotations.
type AnnotationSink interface {
	Annotate(Annotation)
}

// PacketSink receives semantic packets.
type PacketSink interface {
	Packet(Packet)
}

// BinarySink receives raw DATA bytes.
type BinarySink interface {
	Binary(BinaryData)
}

// BitrateSink receives per-transaction bitrates.
type BitrateSink interface {
	Bitrate(BitrateMeta)
}

// TransactionSink receives each transaction once STOP closes it.
type TransactionSink interface {
	Transaction(Transaction)
}

// Outputs bundles the sinks a Decoder writes to. Nil sinks are skipped.
type Outputs struct {
	Annotations  AnnotationSink
	Packets      PacketSink
	Binary       BinarySink
	Bitrate      BitrateSink
	Transactions TransactionSink
}
