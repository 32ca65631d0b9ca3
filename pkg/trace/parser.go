package trace

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
)

// Parser reads .ott text traces.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new trace parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(TraceLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses a trace from a reader
func (p *Parser) Parse(r io.Reader) (*Trace, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("trace: parse error: %w", err)
	}
	return Build(f)
}

// ParseString parses a trace from a string
func (p *Parser) ParseString(input string) (*Trace, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("trace: parse error: %w", err)
	}
	return Build(f)
}

// ParseFile parses a trace from a file path
func (p *Parser) ParseFile(filename string) (*Trace, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Build checks a parse tree and converts it into a Trace.
func Build(f *File) (*Trace, error) {
	t := &Trace{}
	var end *uint64

	for _, e := range f.Entries {
		switch {
		case e.SampleRate != nil:
			hz, err := ParseRate(e.SampleRate.Value)
			if err != nil {
				return nil, err
			}
			t.SampleRate = hz

		case len(e.Channels) > 0:
			if t.Channels != nil {
				return nil, fmt.Errorf("trace: channels declared twice")
			}
			if len(e.Channels) > maxTraceChannels {
				return nil, fmt.Errorf("trace: %d channels declared, at most %d supported", len(e.Channels), maxTraceChannels)
			}
			seen := map[string]bool{}
			for _, name := range e.Channels {
				if seen[name] {
					return nil, fmt.Errorf("trace: channel %q declared twice", name)
				}
				seen[name] = true
			}
			t.Channels = e.Channels

		case e.Change != nil:
			if t.Channels == nil {
				return nil, fmt.Errorf("trace: sample @%s before channels declaration", e.Change.At)
			}
			at, err := strconv.ParseUint(e.Change.At, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("trace: invalid sample index %q: %w", e.Change.At, err)
			}
			if n := len(t.Changes); n > 0 && at <= t.Changes[n-1].At {
				return nil, fmt.Errorf("trace: sample @%d is not after @%d", at, t.Changes[n-1].At)
			}
			levels, err := parseLevels(e.Change.Levels, len(t.Channels))
			if err != nil {
				return nil, fmt.Errorf("trace: sample @%d: %w", at, err)
			}
			t.Changes = append(t.Changes, Change{At: at, Levels: levels})

		case e.End != nil:
			v, err := strconv.ParseUint(e.End.At, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("trace: invalid end %q: %w", e.End.At, err)
			}
			end = &v
		}
	}

	if n := len(t.Changes); n > 0 {
		t.End = t.Changes[n-1].At + 1
		if end != nil {
			if *end < t.End {
				return nil, fmt.Errorf("trace: end %d is before last sample @%d", *end, t.Changes[n-1].At)
			}
			t.End = *end
		}
	}
	return t, nil
}

func parseLevels(s string, channels int) (uint64, error) {
	if len(s) != channels {
		return 0, fmt.Errorf("got %d levels for %d channels", len(s), channels)
	}
	var levels uint64
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			levels |= 1 << uint(i)
		default:
			return 0, fmt.Errorf("level %q of channel %d is not 0 or 1", c, i)
		}
	}
	return levels, nil
}
