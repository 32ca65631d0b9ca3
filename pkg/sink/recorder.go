// Package sink provides tmc output sinks: an in-memory recorder and writers
// for text annotations, JSON packets, transaction summaries and raw bytes.
package sink

import "github.com/OpenTraceLab/OpenTraceTMC/pkg/tmc"

// Recorder keeps everything a decoder emits, in order. It is mostly useful in
// tests and for post-processing a whole capture.
type Recorder struct {
	Annotations  []tmc.Annotation
	Packets      []tmc.Packet
	Bytes        []tmc.BinaryData
	Rates        []tmc.BitrateMeta
	Transactions []tmc.Transaction
}

// Outputs wires every output of a decoder into r.
func (r *Recorder) Outputs() tmc.Outputs {
	return tmc.Outputs{
		Annotations:  r,
		Packets:      r,
		Binary:       r,
		Bitrate:      r,
		Transactions: r,
	}
}

func (r *Recorder) Annotate(a tmc.Annotation)     { r.Annotations = append(r.Annotations, a) }
func (r *Recorder) Packet(p tmc.Packet)           { r.Packets = append(r.Packets, p) }
func (r *Recorder) Binary(b tmc.BinaryData)       { r.Bytes = append(r.Bytes, b) }
func (r *Recorder) Bitrate(b tmc.BitrateMeta)     { r.Rates = append(r.Rates, b) }
func (r *Recorder) Transaction(t tmc.Transaction) { r.Transactions = append(r.Transactions, t) }

// PacketsByTag returns the recorded packets carrying tag.
func (r *Recorder) PacketsByTag(tag tmc.Tag) []tmc.Packet {
	var out []tmc.Packet
	for _, p := range r.Packets {
		if p.Tag == tag {
			out = append(out, p)
		}
	}
	return out
}

// AnnotationsByClass returns the recorded annotations of class c.
func (r *Recorder) AnnotationsByClass(c tmc.Class) []tmc.Annotation {
	var out []tmc.Annotation
	for _, a := range r.Annotations {
		if a.Class == c {
			out = append(out, a)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	*r = Recorder{}
}
