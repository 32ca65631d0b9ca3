package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "tmc",
	Short: "TM1636/37/38 LED driver bus decoder",
	Long: `Decode the two-wire (CLK/DIO, TM1636/TM1637) and three-wire (CLK/DIO/STB,
TM1638) serial bus of Titan Micro LED drivers from logic analyzer captures.

Examples:
  tmc synth --variant tm1637 --bytes 0x40,0x3f,0x06 -o demo.ott   # Generate a trace
  tmc decode demo.ott                                            # Annotate it
  tmc decode --format summary --binary data.bin demo.ott         # One line per transaction
  tmc capture --device /dev/ttyACM0 --samplerate 1MHz            # Decode a live sampler
  tmc probes                                                     # List capture hardware`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML session config file")
}

// logf prints progress information when --verbose is set.
func logf(cmd *cobra.Command, format string, args ...any) {
	if !verbose {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}
