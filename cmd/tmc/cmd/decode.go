package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceTMC/internal/config"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/trace"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/wave"
	"github.com/spf13/cobra"
)

var (
	inputKind string
	clkName   string
	dioName   string
	stbName   string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode a captured trace",
	Long: `Decode TM1636/37/38 bus traffic from a capture file and print annotations,
JSON packets or a per-transaction summary.

Input formats:
  ott  text trace (see "tmc synth"), channels picked by name with --clk/--dio/--stb
  bin  one byte per sample, bit positions from the serial section of --config;
       needs --samplerate

Examples:
  tmc decode capture.ott
  tmc decode --format json --radix dec capture.ott
  tmc decode --input bin --samplerate 2MHz sniff.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	addOutputFlags(decodeCmd)
	decodeCmd.Flags().StringVarP(&inputKind, "input", "i", "ott",
		"input format: ott or bin")
	decodeCmd.Flags().StringVar(&clkName, "clk", "",
		"trace channel carrying CLK (default clk)")
	decodeCmd.Flags().StringVar(&dioName, "dio", "",
		"trace channel carrying DIO (default dio)")
	decodeCmd.Flags().StringVar(&stbName, "stb", "",
		"trace channel carrying STB (default stb, \"-\" for none)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if clkName != "" {
			cfg.Channels.CLK = clkName
		}
		if dioName != "" {
			cfg.Channels.DIO = dioName
		}
		if stbName == "-" {
			cfg.Channels.STB = ""
		} else if stbName != "" {
			cfg.Channels.STB = stbName
		}
	})
	if err != nil {
		return err
	}

	var (
		src      wave.Source
		channels []int
		rate     float64
	)

	switch inputKind {
	case "ott":
		logf(cmd, "Parsing trace: %s\n", args[0])
		parser, err := trace.NewParser()
		if err != nil {
			return err
		}
		tr, err := parser.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read trace: %w", err)
		}
		stb := wave.Unconnected
		if cfg.Channels.STB != "" {
			stb = tr.Index(cfg.Channels.STB)
		}
		channels = []int{tr.Index(cfg.Channels.CLK), tr.Index(cfg.Channels.DIO), stb}
		rate = tr.SampleRate
		runs := tr.Source()
		src = runs
		logf(cmd, "Trace: %d channels %v, %d samples, samplerate %s\n",
			len(tr.Channels), tr.Channels, runs.Len(), trace.FormatRate(tr.SampleRate))

	case "bin":
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open capture: %w", err)
		}
		defer f.Close()
		channels = []int{cfg.Serial.CLKBit, cfg.Serial.DIOBit, cfg.Serial.STBBit}
		src = wave.NewByteSource(f, 0)

	default:
		return fmt.Errorf("unknown input format %q (want ott or bin)", inputKind)
	}

	if r := configRate(cfg); r > 0 {
		rate = r
	}

	out, err := openOutputs(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	dec, err := newDecoder(cfg, out, rate)
	if err != nil {
		out.Close()
		return err
	}

	logf(cmd, "Decoding with CLK=%d DIO=%d STB=%d at %s\n",
		channels[0], channels[1], channels[2], trace.FormatRate(dec.SampleRate()))

	decodeErr := dec.Decode(commandContext(cmd), wave.NewCursor(src, channels...))
	closeErr := out.Close()
	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", args[0], decodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("write output: %w", closeErr)
	}

	if out.summary != nil {
		logf(cmd, "%d transaction(s)\n", out.summary.Count())
	}
	if out.binary != nil {
		logf(cmd, "Wrote %d DATA byte(s) to %s\n", out.binary.Written(), cfg.Output.Binary)
	}
	return nil
}
