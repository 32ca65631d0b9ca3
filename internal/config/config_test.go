// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
decoder:
  radix: Dec
  samplerate: 2MHz
channels:
  clk: D0
output:
  format: JSON
serial:
  device: /dev/ttyACM0
  stb_bit: -1
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	Normalize(cfg)

	if cfg.Decoder.Radix != "dec" || cfg.Decoder.SampleRate != "2MHz" {
		t.Errorf("unexpected decoder config %+v", cfg.Decoder)
	}
	if cfg.Channels.CLK != "d0" || cfg.Channels.DIO != "dio" {
		t.Errorf("unexpected channel config %+v", cfg.Channels)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("unexpected format %q", cfg.Output.Format)
	}
	if cfg.Serial.Device != "/dev/ttyACM0" || cfg.Serial.Baud != 115200 || cfg.Serial.STBBit != -1 {
		t.Errorf("unexpected serial config %+v", cfg.Serial)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmc.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: summary\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "summary" || cfg.Decoder.Radix != "hex" {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse([]byte("decoder: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"radix", func(c *Config) { c.Decoder.Radix = "base64" }, "decoder.radix"},
		{"samplerate", func(c *Config) { c.Decoder.SampleRate = "fast" }, "decoder.samplerate"},
		{"no clk", func(c *Config) { c.Channels.CLK = " " }, "channels.clk"},
		{"shared name", func(c *Config) { c.Channels.STB = "CLK" }, "already used"},
		{"format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"baud", func(c *Config) { c.Serial.Baud = 0 }, "serial.baud"},
		{"timeout", func(c *Config) { c.Serial.ReadTimeoutMs = -1 }, "read_timeout_ms"},
		{"clk bit", func(c *Config) { c.Serial.CLKBit = 8 }, "clk_bit"},
		{"stb bit", func(c *Config) { c.Serial.STBBit = -2 }, "stb_bit"},
		{"same bits", func(c *Config) { c.Serial.DIOBit = 0 }, "distinct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = " TEXT "
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != " TEXT " {
		t.Errorf("Validate mutated format to %q", cfg.Output.Format)
	}
}
