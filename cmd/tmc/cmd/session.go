package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceTMC/internal/config"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/annot"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/sink"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/tmc"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/trace"
	"github.com/spf13/cobra"
)

// Output flags shared by decode and capture. Empty values keep the config.
var (
	outputFormat   string
	radixName      string
	sampleRateText string
	binaryPath     string
)

func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVarP(&outputFormat, "format", "f", "",
		"output format: text, json or summary (default text)")
	c.Flags().StringVarP(&radixName, "radix", "r", "",
		"byte value format: hex, dec, oct or bin (default hex)")
	c.Flags().StringVar(&sampleRateText, "samplerate", "",
		"capture samplerate, e.g. 1MHz (overrides the trace header)")
	c.Flags().StringVar(&binaryPath, "binary", "",
		"write raw DATA bytes to this file")
}

// loadConfig reads --config, applies flag overrides, then validates and
// normalizes the result.
func loadConfig(cmd *cobra.Command, override func(*config.Config)) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		logf(cmd, "Loading config from: %s\n", configPath)
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if radixName != "" {
		cfg.Decoder.Radix = radixName
	}
	if sampleRateText != "" {
		cfg.Decoder.SampleRate = sampleRateText
	}
	if binaryPath != "" {
		cfg.Output.Binary = binaryPath
	}
	if override != nil {
		override(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// configRate returns the samplerate configured in cfg, or 0.
func configRate(cfg *config.Config) float64 {
	if cfg.Decoder.SampleRate == "" {
		return 0
	}
	hz, _ := trace.ParseRate(cfg.Decoder.SampleRate) // checked by Validate
	return hz
}

// outputs is the set of sinks one decode run writes to.
type outputs struct {
	tmc.Outputs

	errs    []interface{ Err() error }
	binFile *os.File
	binary  *sink.BinaryWriter
	summary *sink.SummaryWriter
}

func openOutputs(cfg *config.Config, w io.Writer) (*outputs, error) {
	radix, err := annot.ParseRadix(cfg.Decoder.Radix)
	if err != nil {
		return nil, err
	}

	o := &outputs{}
	switch cfg.Output.Format {
	case "json":
		jw := sink.NewJSONWriter(w)
		o.Packets, o.Bitrate = jw, jw
		o.errs = append(o.errs, jw)
	case "summary":
		sw := sink.NewSummaryWriter(w, radix)
		o.Transactions = sw
		o.summary = sw
		o.errs = append(o.errs, sw)
	default:
		tw := sink.NewTextWriter(w)
		o.Annotations, o.Bitrate = tw, tw
		o.errs = append(o.errs, tw)
	}

	if cfg.Output.Binary != "" {
		f, err := os.Create(cfg.Output.Binary)
		if err != nil {
			return nil, fmt.Errorf("failed to create binary output: %w", err)
		}
		o.binFile = f
		o.binary = sink.NewBinaryWriter(f)
		o.Binary = o.binary
		o.errs = append(o.errs, o.binary)
	}
	return o, nil
}

// Close reports the first sink error and closes the binary file.
func (o *outputs) Close() error {
	var errs []error
	for _, e := range o.errs {
		if err := e.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if o.binFile != nil {
		if err := o.binFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newDecoder(cfg *config.Config, out *outputs, rate float64) (*tmc.Decoder, error) {
	radix, err := annot.ParseRadix(cfg.Decoder.Radix)
	if err != nil {
		return nil, err
	}
	return tmc.New(out.Outputs, tmc.WithRadix(radix), tmc.WithSampleRate(rate)), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
