// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/annot"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/trace"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "summary"}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil configuration")
	}

	// ------------------------------------------------------------
	// DECODER
	// ------------------------------------------------------------

	if _, err := annot.ParseRadix(cfg.Decoder.Radix); err != nil {
		return fmt.Errorf("decoder.radix: %w", err)
	}
	if cfg.Decoder.SampleRate != "" {
		if _, err := trace.ParseRate(cfg.Decoder.SampleRate); err != nil {
			return fmt.Errorf("decoder.samplerate: %w", err)
		}
	}

	// ------------------------------------------------------------
	// CHANNELS
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Channels.CLK) == "" {
		return fmt.Errorf("channels.clk must be set")
	}
	if strings.TrimSpace(cfg.Channels.DIO) == "" {
		return fmt.Errorf("channels.dio must be set")
	}
	names := map[string]string{}
	for _, c := range []struct{ line, name string }{
		{"clk", cfg.Channels.CLK},
		{"dio", cfg.Channels.DIO},
		{"stb", cfg.Channels.STB},
	} {
		key := strings.ToLower(strings.TrimSpace(c.name))
		if key == "" {
			continue
		}
		if prev, exists := names[key]; exists {
			return fmt.Errorf("channels.%s: %q already used by channels.%s", c.line, c.name, prev)
		}
		names[key] = c.line
	}

	// ------------------------------------------------------------
	// OUTPUT
	// ------------------------------------------------------------

	if !validFormat(cfg.Output.Format) {
		return fmt.Errorf("output.format: %q is not one of %s", cfg.Output.Format, strings.Join(Formats, ", "))
	}

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	s := cfg.Serial
	if s.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", s.Baud)
	}
	if s.ReadTimeoutMs < 0 {
		return fmt.Errorf("serial.read_timeout_ms must not be negative, got %d", s.ReadTimeoutMs)
	}
	if s.CLKBit < 0 || s.CLKBit > 7 {
		return fmt.Errorf("serial.clk_bit must be 0..7, got %d", s.CLKBit)
	}
	if s.DIOBit < 0 || s.DIOBit > 7 {
		return fmt.Errorf("serial.dio_bit must be 0..7, got %d", s.DIOBit)
	}
	if s.STBBit < -1 || s.STBBit > 7 {
		return fmt.Errorf("serial.stb_bit must be -1..7, got %d", s.STBBit)
	}
	if s.CLKBit == s.DIOBit || s.CLKBit == s.STBBit || s.DIOBit == s.STBBit {
		return fmt.Errorf("serial: clk_bit=%d dio_bit=%d stb_bit=%d must be distinct", s.CLKBit, s.DIOBit, s.STBBit)
	}

	return nil
}

func validFormat(f string) bool {
	for _, ok := range Formats {
		if strings.EqualFold(strings.TrimSpace(f), ok) {
			return true
		}
	}
	return false
}
