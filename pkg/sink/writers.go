package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/annot"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/tmc"
)

// TextWriter prints annotations and bitrates as aligned text lines.
type TextWriter struct {
	w   io.Writer
	err error
}

// NewTextWriter creates a TextWriter on w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Err returns the first write error, if any.
func (t *TextWriter) Err() error { return t.err }

func (t *TextWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// Annotate implements tmc.AnnotationSink.
func (t *TextWriter) Annotate(a tmc.Annotation) {
	text := ""
	if len(a.Texts) > 0 {
		text = a.Texts[0]
	}
	t.printf("%10d-%-10d %-9s %-8s %s\n", a.Start, a.End, tmc.RowOf(a.Class).Name, a.Class, text)
}

// Bitrate implements tmc.BitrateSink.
func (t *TextWriter) Bitrate(b tmc.BitrateMeta) {
	t.printf("%10d-%-10d %-9s %-8s %d bps\n", b.Start, b.End, "Meta", "bitrate", b.BitsPerSecond)
}

// JSONWriter writes one JSON object per packet and bitrate.
type JSONWriter struct {
	enc *json.Encoder
	err error
}

// NewJSONWriter creates a JSONWriter on w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

// Err returns the first encoding error, if any.
func (j *JSONWriter) Err() error { return j.err }

type jsonBit struct {
	Value uint8  `json:"value"`
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

type jsonPacket struct {
	Start   uint64    `json:"start"`
	End     uint64    `json:"end"`
	Type    string    `json:"type"`
	Value   *uint8    `json:"value,omitempty"`
	Bits    []jsonBit `json:"bits,omitempty"`
	Bitrate int64     `json:"bitrate,omitempty"`
}

func (j *JSONWriter) encode(v any) {
	if j.err != nil {
		return
	}
	j.err = j.enc.Encode(v)
}

// Packet implements tmc.PacketSink.
func (j *JSONWriter) Packet(p tmc.Packet) {
	jp := jsonPacket{Start: p.Start, End: p.End, Type: p.Tag.String()}
	if p.HasValue() {
		v := p.Value
		jp.Value = &v
	}
	for _, b := range p.Bits {
		jp.Bits = append(jp.Bits, jsonBit{Value: b.Value, Start: b.Start, End: b.End})
	}
	j.encode(jp)
}

// Bitrate implements tmc.BitrateSink.
func (j *JSONWriter) Bitrate(b tmc.BitrateMeta) {
	j.encode(jsonPacket{Start: b.Start, End: b.End, Type: "BITRATE", Bitrate: b.BitsPerSecond})
}

// SummaryWriter prints one line per closed transaction.
type SummaryWriter struct {
	w     io.Writer
	radix annot.Radix
	count int
	err   error
}

// NewSummaryWriter creates a SummaryWriter on w printing bytes in radix r.
func NewSummaryWriter(w io.Writer, r annot.Radix) *SummaryWriter {
	return &SummaryWriter{w: w, radix: r}
}

// Err returns the first write error, if any.
func (s *SummaryWriter) Err() error { return s.err }

// Count returns the number of transactions written.
func (s *SummaryWriter) Count() int { return s.count }

// Transaction implements tmc.TransactionSink.
func (s *SummaryWriter) Transaction(t tmc.Transaction) {
	if s.err != nil {
		return
	}
	s.count++

	var data []string
	cmd := "-"
	for _, b := range t.Bytes {
		v := annot.FormatByte(b.Value, s.radix)
		if len(b.Bits) < 8 {
			v = fmt.Sprintf("%s/%d", v, len(b.Bits))
		}
		if b.Role == tmc.Command {
			cmd = v
			continue
		}
		data = append(data, v)
	}
	_, s.err = fmt.Fprintf(s.w, "#%-4d %-9s %10d-%-10d bits=%-4d cmd=%s data=[%s]\n",
		s.count, t.Variant.Chip(), t.Start, t.End, t.BitCount, cmd, strings.Join(data, " "))
}

// BinaryWriter writes raw DATA bytes to w.
type BinaryWriter struct {
	w   io.Writer
	n   int64
	err error
}

// NewBinaryWriter creates a BinaryWriter on w.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w}
}

// Err returns the first write error, if any.
func (b *BinaryWriter) Err() error { return b.err }

// Written returns the number of bytes written so far.
func (b *BinaryWriter) Written() int64 { return b.n }

// Binary implements tmc.BinarySink.
func (b *BinaryWriter) Binary(d tmc.BinaryData) {
	if b.err != nil {
		return
	}
	n, err := b.w.Write(d.Data)
	b.n += int64(n)
	b.err = err
}
