package wave

import (
	"errors"
	"io"
)

// ByteSource decodes a packed stream with one byte per sample, bit i of each
// byte being the level of physical channel i. This is the layout of sigrok's
// "binary" output for up to eight channels and of simple USB-serial sniffers.
type ByteSource struct {
	r   io.Reader
	buf []byte
	n   int
	pos int
	err error

	pending    Run
	hasPending bool
}

// NewByteSource wraps r. bufSize <= 0 selects a 4 KiB read buffer.
func NewByteSource(r io.Reader, bufSize int) *ByteSource {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &ByteSource{r: r, buf: make([]byte, bufSize)}
}

// Next implements Source. Repeated bytes are merged into a single run, also
// across read boundaries.
func (b *ByteSource) Next() (Run, error) {
	for {
		for b.pos < b.n {
			s := Sample(b.buf[b.pos])
			b.pos++
			if !b.hasPending {
				b.pending = Run{Pins: s, Len: 1}
				b.hasPending = true
				continue
			}
			if b.pending.Pins == s {
				b.pending.Len++
				continue
			}
			out := b.pending
			b.pending = Run{Pins: s, Len: 1}
			return out, nil
		}

		if b.err != nil {
			if b.hasPending {
				b.hasPending = false
				return b.pending, nil
			}
			if errors.Is(b.err, io.EOF) {
				return Run{}, io.EOF
			}
			return Run{}, b.err
		}

		n, err := b.r.Read(b.buf)
		b.n, b.pos = n, 0
		if err != nil {
			b.err = err
		}
		// A live port may return a short or empty read while the line is
		// quiet. Flush what we have so decoding keeps up with the stream.
		if n == 0 && err == nil && b.hasPending {
			b.hasPending = false
			return b.pending, nil
		}
	}
}
