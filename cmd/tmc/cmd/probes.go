package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceTMC/pkg/probe"
	"github.com/spf13/cobra"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List available capture devices",
	Long: `Scan the host for USB logic analyzers (fx2lafw, Saleae, bare FX2) and
Pico-class sniffers, and list the non-USB inputs that are always available.`,
	Args: cobra.NoArgs,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

func runProbes(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), 5*time.Second)
	defer cancel()

	infos, err := probe.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover probes: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Capture devices:")
	for _, p := range infos {
		if p.VendorID == 0 && p.ProductID == 0 {
			fmt.Fprintf(out, "  - %s [%s]\n", p.Label(), p.Kind)
			continue
		}
		fmt.Fprintf(out, "  - %s [%s] (VID:PID %04X:%04X, bus %d addr %d)\n",
			p.Label(), p.Kind, p.VendorID, p.ProductID, p.Bus, p.Address)
	}
	return nil
}
