package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/synth"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/trace"
	"github.com/spf13/cobra"
)

var (
	synthVariant    string
	synthBytes      []string
	synthNack       []int
	synthTrailing   string
	synthHalfPeriod uint64
	synthRate       string
	synthOutput     string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Generate a bus trace",
	Long: `Write a .ott trace of one transaction. The first byte is the command, the
rest are data bytes, clocked LSB first.

Examples:
  tmc synth --variant tm1637 --bytes 0x40,0x3f,0x06 -o demo.ott
  tmc synth --variant tm1637 --bytes 0x44,0x00 --nack 1
  tmc synth --variant tm1638 --bytes 0x8f --trailing-bits 101`,
	Args: cobra.NoArgs,
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().StringVar(&synthVariant, "variant", "tm1637",
		"bus wiring: tm1637 (CLK/DIO with ACK) or tm1638 (CLK/DIO/STB)")
	synthCmd.Flags().StringSliceVarP(&synthBytes, "bytes", "b", nil,
		"bytes to send, e.g. 0x40,0xc0 (command first)")
	synthCmd.Flags().IntSliceVar(&synthNack, "nack", nil,
		"tm1637: indexes of bytes the device does not acknowledge")
	synthCmd.Flags().StringVar(&synthTrailing, "trailing-bits", "",
		"tm1638: extra bits clocked before STOP, e.g. 101")
	synthCmd.Flags().Uint64Var(&synthHalfPeriod, "half-period", synth.DefaultHalfPeriod,
		"samples per clock half period")
	synthCmd.Flags().StringVar(&synthRate, "samplerate", "1MHz",
		"samplerate written to the trace header")
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "",
		"output file (default stdout)")
}

func runSynth(cmd *cobra.Command, args []string) error {
	rate, err := trace.ParseRate(synthRate)
	if err != nil {
		return err
	}
	data, err := parseByteList(synthBytes)
	if err != nil {
		return err
	}

	var (
		b        *synth.Builder
		channels int
	)
	switch strings.ToLower(synthVariant) {
	case "tm1637", "tm1636", "ack":
		if synthTrailing != "" {
			return fmt.Errorf("--trailing-bits applies to tm1638 only")
		}
		for _, n := range synthNack {
			if n < 0 || n >= len(data) {
				return fmt.Errorf("--nack index %d out of range (%d bytes)", n, len(data))
			}
		}
		b = synth.Ack(synthHalfPeriod, synth.AckFrame{Bytes: data, Nack: synthNack})
		channels = 2
	case "tm1638", "strobe":
		if len(synthNack) > 0 {
			return fmt.Errorf("--nack applies to tm1637 only")
		}
		bits, err := synth.ParseBits(synthTrailing)
		if err != nil {
			return err
		}
		b = synth.Strobe(synthHalfPeriod, synth.StrobeFrame{Bytes: data, TrailingBits: bits})
		channels = 3
	default:
		return fmt.Errorf("unknown variant %q (want tm1637 or tm1638)", synthVariant)
	}

	logf(cmd, "Generated %d samples on %d channels\n", b.Len(), channels)

	var w io.Writer = cmd.OutOrStdout()
	if synthOutput != "" {
		f, err := os.Create(synthOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := trace.Write(w, b.Trace(rate, channels)); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	if synthOutput != "" {
		logf(cmd, "Trace written to: %s\n", synthOutput)
	}
	return nil
}

func parseByteList(items []string) ([]byte, error) {
	out := make([]byte, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q: %w", s, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
