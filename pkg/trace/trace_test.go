package trace

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/wave"
)

const sampleTrace = `
# TM1637 start condition
samplerate 1MHz
channels clk dio
@10 11
@20 10   # DIO falls while CLK is high
@30 00
end 40
`

func TestParseTrace(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	tr, err := parser.ParseString(sampleTrace)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if tr.SampleRate != 1e6 {
		t.Errorf("Expected samplerate 1e6, got %v", tr.SampleRate)
	}
	if len(tr.Channels) != 2 || tr.Channels[0] != "clk" || tr.Channels[1] != "dio" {
		t.Fatalf("Unexpected channels %v", tr.Channels)
	}
	if tr.Index("DIO") != 1 {
		t.Errorf("Expected DIO at index 1, got %d", tr.Index("DIO"))
	}
	if tr.Index("stb") != wave.Unconnected {
		t.Errorf("Expected stb unconnected, got %d", tr.Index("stb"))
	}
	if len(tr.Changes) != 3 {
		t.Fatalf("Expected 3 changes, got %d", len(tr.Changes))
	}
	if tr.Changes[1].Levels != 0b01 {
		t.Errorf("Expected levels 0b01 at @20, got %02b", tr.Changes[1].Levels)
	}
	if tr.End != 40 {
		t.Errorf("Expected end 40, got %d", tr.End)
	}
}

func TestBuildFromParseTree(t *testing.T) {
	f := &File{Entries: []*Entry{
		{Channels: []string{"clk", "dio"}},
		{Change: &ChangeEntry{At: "0", Levels: "11"}},
		{Change: &ChangeEntry{At: "7", Levels: "10"}},
	}}

	tr, err := Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []Change{{At: 0, Levels: 0b11}, {At: 7, Levels: 0b01}}
	if len(tr.Changes) != len(want) {
		t.Fatalf("Expected %d changes, got %+v", len(want), tr.Changes)
	}
	for i := range want {
		if tr.Changes[i] != want[i] {
			t.Errorf("Change %d: expected %+v, got %+v", i, want[i], tr.Changes[i])
		}
	}
	if tr.End != 8 {
		t.Errorf("Expected end 8, got %d", tr.End)
	}
}

func TestTraceRuns(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	tr, err := parser.ParseString(sampleTrace)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	want := []wave.Run{
		{Pins: 0b11, Len: 20}, // samples 0..19, first row held backwards
		{Pins: 0b01, Len: 10},
		{Pins: 0b00, Len: 10},
	}
	got := tr.Runs()
	if len(got) != len(want) {
		t.Fatalf("Expected %d runs, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Run %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	src := tr.Source()
	var total uint64
	for {
		r, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		total += r.Len
	}
	if total != 40 {
		t.Errorf("Expected 40 samples, got %d", total)
	}
}

func TestEndDefaultsAfterLastChange(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	tr, err := parser.ParseString("channels a\n@0 1\n@5 0\n")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if tr.End != 6 {
		t.Errorf("Expected end 6, got %d", tr.End)
	}
	if tr.SampleRate != 0 {
		t.Errorf("Expected no samplerate, got %v", tr.SampleRate)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no channels", "@0 1\n", "before channels"},
		{"wrong width", "channels a b\n@0 1\n", "got 1 levels for 2 channels"},
		{"bad level", "channels a b\n@0 12\n", "not 0 or 1"},
		{"not increasing", "channels a\n@5 1\n@5 0\n", "is not after"},
		{"end too early", "channels a\n@5 1\nend 3\n", "before last sample"},
		{"duplicate channel", "channels a a\n", "declared twice"},
		{"zero rate", "samplerate 0\nchannels a\n", "must be positive"},
		{"syntax", "channels a\n@@0 1\n", "parse error"},
	}

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseString(tt.input)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1MHz", 1e6},
		{"250kHz", 250e3},
		{"2.5GHz", 2.5e9},
		{"8000Hz", 8000},
		{"1000000", 1e6},
	}
	for _, tt := range tests {
		got, err := ParseRate(tt.in)
		if err != nil {
			t.Errorf("ParseRate(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if FormatRate(1e6) != "1MHz" {
		t.Errorf("FormatRate(1e6) = %q", FormatRate(1e6))
	}
	if FormatRate(12.5e3) != "12.5kHz" {
		t.Errorf("FormatRate(12.5e3) = %q", FormatRate(12.5e3))
	}
}

func TestWriteRoundTrip(t *testing.T) {
	runs := []wave.Run{
		{Pins: 0b111, Len: 5},
		{Pins: 0b111, Len: 5},
		{Pins: 0b011, Len: 3},
		{Pins: 0b000, Len: 0},
		{Pins: 0b110, Len: 2},
	}
	tr := FromRuns(2e6, []string{"clk", "dio", "stb"}, runs)
	if len(tr.Changes) != 3 {
		t.Fatalf("Expected repeated runs merged into 3 changes, got %d", len(tr.Changes))
	}

	var buf bytes.Buffer
	if err := Write(&buf, tr); err != nil {
		t.Fatalf("Write: %v", err)
	}
	text := buf.String()
	for _, line := range []string{"samplerate 2MHz", "channels clk dio stb", "@0 111", "@10 110", "@13 011", "end 15"} {
		if !strings.Contains(text, line+"\n") {
			t.Errorf("Output missing %q:\n%s", line, text)
		}
	}

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	back, err := parser.ParseString(text)
	if err != nil {
		t.Fatalf("Failed to parse written trace: %v\n%s", err, text)
	}
	if back.End != tr.End || len(back.Changes) != len(tr.Changes) {
		t.Fatalf("Round trip mismatch: %+v vs %+v", back, tr)
	}
	for i := range tr.Changes {
		if back.Changes[i] != tr.Changes[i] {
			t.Errorf("Change %d: expected %+v, got %+v", i, tr.Changes[i], back.Changes[i])
		}
	}
}
