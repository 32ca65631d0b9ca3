package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/OpenTraceLab/OpenTraceTMC/internal/config"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/serialport"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/tmc"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/trace"
	"github.com/OpenTraceLab/OpenTraceTMC/pkg/wave"
	"github.com/spf13/cobra"
)

var (
	serialDevice    string
	serialBaud      int
	captureDuration time.Duration
	rawPath         string
	clkBit          int
	dioBit          int
	stbBit          int
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Decode a live sampler stream from a serial port",
	Long: `Read one byte per sample from a USB-serial sampler (e.g. a Pico running a
GPIO sniffer) and decode it as it arrives. Capture runs until --duration elapses,
the port goes quiet past its read timeout, or Ctrl-C.

Examples:
  tmc capture --device /dev/ttyACM0 --samplerate 1MHz
  tmc capture --device /dev/ttyACM0 --samplerate 1MHz --stb-bit -1 --duration 10s
  tmc capture --device COM4 --samplerate 500kHz --raw sniff.bin --format summary`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	addOutputFlags(captureCmd)
	captureCmd.Flags().StringVarP(&serialDevice, "device", "d", "",
		"serial device of the sampler")
	captureCmd.Flags().IntVar(&serialBaud, "baud", 0,
		"baud rate (default from config, 115200)")
	captureCmd.Flags().DurationVar(&captureDuration, "duration", 0,
		"stop after this long (0 = until interrupted)")
	captureCmd.Flags().StringVar(&rawPath, "raw", "",
		"also save the raw sample bytes for \"tmc decode --input bin\"")
	captureCmd.Flags().IntVar(&clkBit, "clk-bit", 0, "sample bit carrying CLK")
	captureCmd.Flags().IntVar(&dioBit, "dio-bit", 1, "sample bit carrying DIO")
	captureCmd.Flags().IntVar(&stbBit, "stb-bit", 2, "sample bit carrying STB (-1 for none)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if serialDevice != "" {
			cfg.Serial.Device = serialDevice
		}
		if serialBaud > 0 {
			cfg.Serial.Baud = serialBaud
		}
		if cmd.Flags().Changed("clk-bit") {
			cfg.Serial.CLKBit = clkBit
		}
		if cmd.Flags().Changed("dio-bit") {
			cfg.Serial.DIOBit = dioBit
		}
		if cmd.Flags().Changed("stb-bit") {
			cfg.Serial.STBBit = stbBit
		}
	})
	if err != nil {
		return err
	}

	if cfg.Serial.Device == "" {
		return fmt.Errorf("no serial device (use --device or serial.device in the config)")
	}
	rate := configRate(cfg)
	if rate <= 0 {
		return tmc.ErrSampleRate
	}

	portCfg := serialport.DefaultConfig(cfg.Serial.Device)
	if cfg.Serial.Baud > 0 {
		portCfg.Baud = cfg.Serial.Baud
	}
	portCfg.ReadTimeout = cfg.Serial.ReadTimeoutMs

	logf(cmd, "Opening %s at %d baud...\n", portCfg.Device, portCfg.Baud)
	port, err := serialport.Open(portCfg)
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()
	if captureDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, captureDuration)
		defer cancel()
	}
	stopWatch := serialport.CloseOnDone(ctx, port)
	defer stopWatch()

	var r io.Reader = port
	if rawPath != "" {
		f, err := os.Create(rawPath)
		if err != nil {
			return fmt.Errorf("failed to create raw output: %w", err)
		}
		defer f.Close()
		r = io.TeeReader(port, f)
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

	channels := []int{cfg.Serial.CLKBit, cfg.Serial.DIOBit, cfg.Serial.STBBit}
	logf(cmd, "Capturing from %s at %s with CLK=bit%d DIO=bit%d STB=bit%d\n",
		port.Device(), trace.FormatRate(dec.SampleRate()), channels[0], channels[1], channels[2])

	start := time.Now()
	decodeErr := dec.Decode(ctx, wave.NewCursor(wave.NewByteSource(r, 0), channels...))
	closeErr := out.Close()

	// Closing the port on cancel makes the pending read fail; that is the
	// normal way a capture ends.
	if decodeErr != nil && ctx.Err() == nil {
		return fmt.Errorf("capture %s: %w", port.Device(), decodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("write output: %w", closeErr)
	}
	logf(cmd, "Capture stopped after %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
