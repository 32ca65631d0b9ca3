// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Decoder  DecoderConfig `yaml:"decoder"`
	Channels ChannelConfig `yaml:"channels"`
	Output   OutputConfig  `yaml:"output"`
	Serial   SerialConfig  `yaml:"serial"`
}

// ---- DECODER ----

type DecoderConfig struct {
	Radix      string `yaml:"radix"`      // hex | dec | oct | bin
	SampleRate string `yaml:"samplerate"` // e.g. 1MHz; a trace header wins when empty
}

// ---- CHANNELS ----

// ChannelConfig maps trace channel names to bus lines.
type ChannelConfig struct {
	CLK string `yaml:"clk"`
	DIO string `yaml:"dio"`
	STB string `yaml:"stb"` // optional
}

// ---- OUTPUT ----

type OutputConfig struct {
	Format string `yaml:"format"` // text | json | summary
	Binary string `yaml:"binary"` // file receiving raw DATA bytes, optional
}

// ---- SERIAL SAMPLER ----

type SerialConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`

	// Bit positions of the lines in each sample byte. -1 leaves STB unconnected.
	CLKBit int `yaml:"clk_bit"`
	DIOBit int `yaml:"dio_bit"`
	STBBit int `yaml:"stb_bit"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{
			Radix: "hex",
		},
		Channels: ChannelConfig{
			CLK: "clk",
			DIO: "dio",
			STB: "stb",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Serial: SerialConfig{
			Baud:          115200,
			ReadTimeoutMs: 100,
			CLKBit:        0,
			DIOBit:        1,
			STBBit:        2,
		},
	}
}

// Load reads a YAML file on top of Default. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}
