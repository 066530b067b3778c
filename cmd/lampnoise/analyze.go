package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/photonworks/lampnoise/internal/catalog"
	"github.com/photonworks/lampnoise/internal/engine"
	"github.com/photonworks/lampnoise/internal/noise"
)

var (
	flagIntervals     bool
	flagNIntervals    int
	flagThreshold     float64
	flagMaxPlot       int
	flagWindowSeconds float64
	flagQuota         int
	flagPadding       float64
	flagNoCSV         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <seed-file>",
	Short: "Compute noise statistics from a run of data files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := noise.DefaultConfig()
		cfg.WindowSeconds = flagWindowSeconds
		cfg.Quota = flagQuota
		cfg.PaddingSeconds = flagPadding

		req := engine.Request{
			FilePath:           args[0],
			Mode:               engine.ModeStandard,
			Noise:              cfg,
			NIntervals:         flagNIntervals,
			MaxIntervalsToPlot: flagMaxPlot,
		}
		if flagIntervals || flagNIntervals > 0 || cmd.Flags().Changed("noise-threshold") {
			req.Mode = engine.ModeHighNoiseInterval
		}
		if cmd.Flags().Changed("noise-threshold") {
			t := flagThreshold
			req.NoiseThreshold = &t
		}

		result, err := engine.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		printResults(result)

		if !flagNoCSV {
			path, err := engine.WriteReport(filepath.Dir(args[0]), result)
			if err != nil {
				return err
			}
			fmt.Printf("\n✓ Results exported to %s\n", path)
		}
		return nil
	},
}

func printResults(result *engine.Result) {
	fmt.Printf("\n==================================================\n")
	fmt.Printf("ANALYSIS RESULTS\n")
	fmt.Printf("==================================================\n")
	for _, c := range catalog.Channels {
		st := result.Channels[c].Noise
		fmt.Printf("%s Channel:\n", c)
		fmt.Printf("  Mean Noise: %.3f\n", st.Mean)
		fmt.Printf("  Max Noise:  %.3f\n", st.Max)
		fmt.Printf("  Windows:    %d\n", st.Count)
	}
	if result.UnderQuota {
		fmt.Printf("\n⚠️  Under-quota collection: file set exhausted early\n")
	}

	if len(result.Intervals) > 0 {
		fmt.Printf("\nHigh noise intervals (%d selected, %d in detail view):\n",
			len(result.Intervals), len(result.PlotIntervals))
		for i, iv := range result.Intervals {
			fmt.Printf("%2d. %s %.1f–%.1f min  noise=%.3f  (%s)\n",
				i+1, iv.Channel,
				iv.WindowStart/60.0, iv.WindowEnd/60.0,
				iv.NoiseValue, filepath.Base(iv.FileName))
		}
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagIntervals, "intervals", false, "select high-noise intervals (top 5 unless -n or threshold given)")
	analyzeCmd.Flags().IntVarP(&flagNIntervals, "n-intervals", "n", 0, "number of highest-noise intervals to select")
	analyzeCmd.Flags().Float64Var(&flagThreshold, "noise-threshold", 0, "select all intervals with noise above this value")
	analyzeCmd.Flags().IntVar(&flagMaxPlot, "max-intervals-to-plot", 8, "cap on intervals exposed for detail rendering")
	analyzeCmd.Flags().Float64Var(&flagWindowSeconds, "window", 30, "noise window duration in seconds")
	analyzeCmd.Flags().IntVar(&flagQuota, "quota", 120, "noise samples to collect per channel")
	analyzeCmd.Flags().Float64Var(&flagPadding, "padding", 10, "detail-view padding around intervals in seconds")
	analyzeCmd.Flags().BoolVar(&flagNoCSV, "no-csv", false, "skip writing the results CSV")
	rootCmd.AddCommand(analyzeCmd)
}
