// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Decoder.Radix = strings.ToLower(strings.TrimSpace(cfg.Decoder.Radix))
	cfg.Decoder.SampleRate = strings.TrimSpace(cfg.Decoder.SampleRate)

	// Trace channel names are matched case-insensitively.
	cfg.Channels.CLK = strings.ToLower(strings.TrimSpace(cfg.Channels.CLK))
	cfg.Channels.DIO = strings.ToLower(strings.TrimSpace(cfg.Channels.DIO))
	cfg.Channels.STB = strings.ToLower(strings.TrimSpace(cfg.Channels.STB))

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
}
