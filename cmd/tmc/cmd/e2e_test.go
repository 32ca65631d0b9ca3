package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/synth"
)

// resetFlags restores flag variables between runs of the shared root command.
func resetFlags() {
	verbose = false
	configPath = ""

	outputFormat = ""
	radixName = ""
	sampleRateText = ""
	binaryPath = ""

	inputKind = "ott"
	clkName = ""
	dioName = ""
	stbName = ""

	serialDevice = ""
	serialBaud = 0
	captureDuration = 0
	rawPath = ""

	synthVariant = "tm1637"
	synthBytes = nil
	synthNack = nil
	synthTrailing = ""
	synthHalfPeriod = synth.DefaultHalfPeriod
	synthRate = "1MHz"
	synthOutput = ""
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTrace(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.ott")
	if _, _, err := execute(t, append([]string{"synth", "-o", path}, args...)...); err != nil {
		t.Fatalf("synth failed: %v", err)
	}
	return path
}

// TestDecodeE2E tests synth followed by decode end-to-end
func TestDecodeE2E(t *testing.T) {
	ack := writeTrace(t, "--variant", "tm1637", "--bytes", "0x40,0x3f,0x06")
	nack := writeTrace(t, "--variant", "tm1637", "--bytes", "0x44,0x00", "--nack", "1")
	strobe := writeTrace(t, "--variant", "tm1638", "--bytes", "0x8f", "--trailing-bits", "101")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "text annotations",
			args:        []string{"decode", ack},
			wantContain: []string{"Start", "Command: 0x40", "Data: 0x3F", "Data: 0x06", "ACK", "Stop", "bps"},
		},
		{
			name:        "decimal radix",
			args:        []string{"decode", "--radix", "dec", ack},
			wantContain: []string{"Command: 64", "Data: 63"},
		},
		{
			name:        "json packets",
			args:        []string{"decode", "--format", "json", ack},
			wantContain: []string{`"type":"START"`, `"type":"COMMAND","value":64`, `"type":"BITRATE"`},
		},
		{
			name:        "summary",
			args:        []string{"decode", "-f", "summary", ack},
			wantContain: []string{"TM1636/37", "cmd=0x40 data=[0x3F 0x06]"},
		},
		{
			name:        "nack",
			args:        []string{"decode", nack},
			wantContain: []string{"nack", "NACK"},
		},
		{
			name:        "strobe partial byte",
			args:        []string{"decode", "--format", "summary", strobe},
			wantContain: []string{"TM1638", "cmd=0x8F data=[0xA0/3]"},
		},
		{
			name:        "strobe without stb channel",
			args:        []string{"decode", "--format", "summary", "--stb", "-", strobe},
			wantContain: []string{},
		},
		{
			name:    "unknown clk channel",
			args:    []string{"decode", "--clk", "scl", ack},
			wantErr: true,
		},
		{
			name:    "bad format",
			args:    []string{"decode", "--format", "xml", ack},
			wantErr: true,
		},
		{
			name:    "bad input kind",
			args:    []string{"decode", "--input", "vcd", ack},
			wantErr: true,
		},
		{
			name:    "missing file",
			args:    []string{"decode", "/nonexistent/capture.ott"},
			wantErr: true,
		},
		{
			name:    "missing argument",
			args:    []string{"decode"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, _, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestDecodeErrorsE2E(t *testing.T) {
	ack := writeTrace(t, "--bytes", "0x40")

	_, _, err := execute(t, "decode", "--clk", "scl", ack)
	if err == nil || !strings.Contains(err.Error(), "missing CLK") {
		t.Errorf("Expected missing CLK error, got %v", err)
	}

	noRate := filepath.Join(t.TempDir(), "norate.ott")
	if err := os.WriteFile(noRate, []byte("channels clk dio\n@0 11\n@10 10\nend 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err = execute(t, "decode", noRate)
	if err == nil || !strings.Contains(err.Error(), "samplerate") {
		t.Errorf("Expected samplerate error, got %v", err)
	}
	if _, _, err := execute(t, "decode", "--samplerate", "1MHz", noRate); err != nil {
		t.Errorf("--samplerate should satisfy the decoder, got %v", err)
	}
}

func TestBinaryOutputE2E(t *testing.T) {
	ack := writeTrace(t, "--bytes", "0x40,0x3f,0x06")
	bin := filepath.Join(t.TempDir(), "data.bin")

	if _, _, err := execute(t, "decode", "--binary", bin, ack); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(bin)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0x3f, 0x06}) {
		t.Errorf("Expected DATA bytes 3f 06, got % x", data)
	}
}

func TestDecodeBinInputE2E(t *testing.T) {
	// One byte per sample: bit0 CLK, bit1 DIO. START, then one byte
	// 0x01 never completes; only START is expected.
	samples := []byte{3, 3, 1, 1, 0, 0, 2, 2, 3, 3}
	path := filepath.Join(t.TempDir(), "sniff.bin")
	if err := os.WriteFile(path, samples, 0o644); err != nil {
		t.Fatal(err)
	}

	output, _, err := execute(t, "decode", "--input", "bin", "--samplerate", "1MHz", path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "Start") {
		t.Errorf("Expected START annotation, got:\n%s", output)
	}
	if strings.Contains(output, "Stop") {
		t.Errorf("Unexpected STOP annotation:\n%s", output)
	}
}

func TestConfigFileE2E(t *testing.T) {
	ack := writeTrace(t, "--bytes", "0x40,0x0a")
	cfg := filepath.Join(t.TempDir(), "tmc.yaml")
	if err := os.WriteFile(cfg, []byte("decoder:\n  radix: bin\noutput:\n  format: summary\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, _, err := execute(t, "--config", cfg, "decode", ack)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "cmd=0b01000000 data=[0b00001010]") {
		t.Errorf("Config not applied:\n%s", output)
	}

	output, _, err = execute(t, "--config", cfg, "decode", "--radix", "hex", ack)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "cmd=0x40") {
		t.Errorf("Flag should override config:\n%s", output)
	}
}

func TestSynthE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "tm1637 to stdout",
			args:        []string{"synth", "--bytes", "0x40"},
			wantContain: []string{"samplerate 1MHz", "channels clk dio\n", "@0 11", "end "},
		},
		{
			name:        "tm1638 channels",
			args:        []string{"synth", "--variant", "tm1638", "--bytes", "0x8f", "--samplerate", "4MHz"},
			wantContain: []string{"samplerate 4MHz", "channels clk dio stb", "@0 111"},
		},
		{name: "unknown variant", args: []string{"synth", "--variant", "tm1650"}, wantErr: true},
		{name: "bad byte", args: []string{"synth", "--bytes", "0x100"}, wantErr: true},
		{name: "nack out of range", args: []string{"synth", "--bytes", "0x40", "--nack", "3"}, wantErr: true},
		{name: "trailing bits on tm1637", args: []string{"synth", "--trailing-bits", "1"}, wantErr: true},
		{name: "bad trailing bits", args: []string{"synth", "--variant", "tm1638", "--trailing-bits", "12"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, _, err := execute(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

// TestVerboseFlag tests that verbose flag works across commands
func TestVerboseFlag(t *testing.T) {
	ack := writeTrace(t, "--bytes", "0x40")

	_, stderr, err := execute(t, "decode", "-v", "--format", "summary", ack)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"Parsing trace", "Decoding with CLK=0 DIO=1 STB=-1", "1 transaction(s)"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("Verbose output missing: %q\nGot:\n%s", want, stderr)
		}
	}
}

func TestCaptureRequiresDevice(t *testing.T) {
	_, _, err := execute(t, "capture", "--samplerate", "1MHz")
	if err == nil || !strings.Contains(err.Error(), "no serial device") {
		t.Errorf("Expected missing device error, got %v", err)
	}

	_, _, err = execute(t, "capture", "--device", "/nonexistent/tty-tmc")
	if err == nil || !strings.Contains(err.Error(), "samplerate") {
		t.Errorf("Expected samplerate error, got %v", err)
	}
}
