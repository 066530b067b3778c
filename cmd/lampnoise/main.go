package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lampnoise",
	Short: "Noise and spike analysis for lamp-stability data",
	Long: `lampnoise ingests chronologically-ordered lamp-stability measurement
files, computes the convex-hull noise metric over 30-second windows,
flags high-noise intervals, and detects bell-curve spike events in a
denoised residual signal.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
