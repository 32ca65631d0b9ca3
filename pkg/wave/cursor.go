package wave

import (
	"errors"
	"fmt"
	"io"
)

// Term is a predicate on a single channel.
type Term uint8

const (
	High Term = iota
	Low
	Rising
	Falling
	Edge
)

var termNames = map[Term]string{
	High:    "h",
	Low:     "l",
	Rising:  "r",
	Falling: "f",
	Edge:    "e",
}

func (t Term) String() string {
	if name, ok := termNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Term(%d)", t)
}

// Condition is a set of per-channel terms that must all hold at the same
// sample. Keys are logical channel numbers.
type Condition map[int]Term

// Match describes where a Wait call stopped.
type Match struct {
	Sample  uint64 // sample index
	Pins    Sample // logical pin levels at Sample
	Matched []bool // one entry per condition passed to Wait
}

// Unconnected marks a logical channel with no physical pin behind it.
const Unconnected = -1

// Cursor walks a Source one sample at a time and implements the blocking
// "wait for condition set" primitive used by protocol decoders.
//
// Logical channel i reads physical bit channels[i] of the source. Channels
// mapped to Unconnected read as constant low.
type Cursor struct {
	src      Source
	channels []int

	prev, cur Sample
	index     uint64
	left      uint64 // samples remaining in the current run after index
	started   bool
	done      bool
}

// NewCursor creates a cursor over src. channels maps logical channel numbers
// to physical bits; with no mapping the identity mapping for all bits is used.
func NewCursor(src Source, channels ...int) *Cursor {
	if len(channels) == 0 {
		channels = make([]int, MaxChannels)
		for i := range channels {
			channels[i] = i
		}
	}
	return &Cursor{src: src, channels: append([]int(nil), channels...)}
}

// HasChannel reports whether logical channel ch is connected.
func (c *Cursor) HasChannel(ch int) bool {
	return ch >= 0 && ch < len(c.channels) && c.channels[ch] >= 0 && c.channels[ch] < MaxChannels
}

// Sample returns the index of the most recently examined sample.
func (c *Cursor) Sample() uint64 {
	return c.index
}

func (c *Cursor) logical(raw Sample) Sample {
	var out Sample
	for i, phys := range c.channels {
		if phys < 0 || phys >= MaxChannels || i >= MaxChannels {
			continue
		}
		if raw.High(phys) {
			out |= 1 << uint(i)
		}
	}
	return out
}

// advance moves to the next sample.
func (c *Cursor) advance() error {
	if c.done {
		return ErrEndOfInput
	}
	if c.started && c.left > 0 {
		c.prev = c.cur
		c.index++
		c.left--
		return nil
	}
	for {
		run, err := c.src.Next()
		if errors.Is(err, io.EOF) {
			c.done = true
			return ErrEndOfInput
		}
		if err != nil {
			return fmt.Errorf("wave: read source: %w", err)
		}
		if run.Len == 0 {
			continue
		}
		pins := c.logical(run.Pins)
		if !c.started {
			c.started = true
			c.prev, c.cur = pins, pins
			c.index = 0
		} else {
			c.prev, c.cur = c.cur, pins
			c.index++
		}
		c.left = run.Len - 1
		return nil
	}
}

// Wait advances until at least one of conds holds and returns the match. The
// first call may stop on sample 0; every later call advances by at least one
// sample. ErrEndOfInput is returned once the source is exhausted.
func (c *Cursor) Wait(conds ...Condition) (Match, error) {
	matched := make([]bool, len(conds))
	for {
		if err := c.advance(); err != nil {
			return Match{}, err
		}
		if evaluate(conds, c.prev, c.cur, matched) {
			return Match{Sample: c.index, Pins: c.cur, Matched: matched}, nil
		}
		// The rest of the run repeats c.cur. If nothing holds on a stable
		// level there is no point visiting those samples one by one.
		if c.left > 0 && !evaluate(conds, c.cur, c.cur, matched) {
			c.index += c.left
			c.prev = c.cur
			c.left = 0
		}
	}
}

func evaluate(conds []Condition, prev, cur Sample, matched []bool) bool {
	hit := false
	for i, cond := range conds {
		matched[i] = holds(cond, prev, cur)
		if matched[i] {
			hit = true
		}
	}
	return hit
}

func holds(cond Condition, prev, cur Sample) bool {
	for ch, term := range cond {
		was, is := prev.High(ch), cur.High(ch)
		switch term {
		case High:
			if !is {
				return false
			}
		case Low:
			if is {
				return false
			}
		case Rising:
			if was || !is {
				return false
			}
		case Falling:
			if !was || is {
				return false
			}
		case Edge:
			if was == is {
				return false
			}
		default:
			return false
		}
	}
	return true
}
