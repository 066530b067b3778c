package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photonworks/lampnoise/internal/catalog"
	"github.com/photonworks/lampnoise/internal/denoise"
	"github.com/photonworks/lampnoise/internal/engine"
	"github.com/photonworks/lampnoise/internal/events"
)

var (
	flagUseModel     bool
	flagModelKind    string
	flagEpochs       int
	flagLR           float64
	flagNFreq        int
	flagHidden       int
	flagPatience     int
	flagMinDelta     float64
	flagMinAmplitude float64
	flagMinWidth     float64
	flagMinProb      float64
)

var eventsCmd = &cobra.Command{
	Use:   "events <seed-file>",
	Short: "Denoise the stitched series and detect bell-curve spike events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dcfg := denoise.DefaultConfig()
		dcfg.UseModel = flagUseModel
		dcfg.Kind = denoise.ModelKind(flagModelKind)
		dcfg.Epochs = flagEpochs
		dcfg.LearningRate = flagLR
		dcfg.NFreq = flagNFreq
		dcfg.HiddenSize = flagHidden
		dcfg.Patience = flagPatience
		dcfg.MinDelta = flagMinDelta

		req := engine.Request{
			FilePath: args[0],
			Mode:     engine.ModeCompleteDataset,
			Denoise:  &dcfg,
			Events: events.Config{
				MinAmplitude:   flagMinAmplitude,
				MinWidth:       flagMinWidth,
				MinProbability: flagMinProb,
			},
		}

		result, err := engine.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		for _, c := range catalog.Channels {
			cr := result.Channels[c]
			if cr.Stats == nil {
				continue
			}
			fmt.Printf("\n%s Channel:\n", c)
			if cr.Denoised.UsedFallback {
				fmt.Printf("  (fallback smoother used)\n")
			}
			fmt.Printf("  Events:           %d\n", cr.Stats.EventCount)
			fmt.Printf("  Events per hour:  %.2f\n", cr.Stats.EventsPerHour)
			fmt.Printf("  Mean probability: %.3f\n", cr.Stats.MeanProbability)
			for _, ev := range cr.Events {
				dir := "+"
				if ev.Orientation < 0 {
					dir = "-"
				}
				fmt.Printf("    %s t=%.1fs amp=%.3f width=%.1fs p=%.2f\n",
					dir, ev.CenterTime, ev.Amplitude, ev.Width, ev.Probability)
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().BoolVar(&flagUseModel, "use-model", false, "train the Fourier-feature model before event detection")
	eventsCmd.Flags().StringVar(&flagModelKind, "model", string(denoise.ModelFourier), "trainable model kind")
	eventsCmd.Flags().IntVar(&flagEpochs, "epochs", 4000, "max training epochs")
	eventsCmd.Flags().Float64Var(&flagLR, "lr", 1e-4, "learning rate")
	eventsCmd.Flags().IntVar(&flagNFreq, "n-freq", 256, "Fourier feature count")
	eventsCmd.Flags().IntVar(&flagHidden, "hidden", 32, "hidden width")
	eventsCmd.Flags().IntVar(&flagPatience, "patience", 80, "early-stop patience in epochs")
	eventsCmd.Flags().Float64Var(&flagMinDelta, "min-delta", 1e-4, "early-stop improvement threshold")
	eventsCmd.Flags().Float64Var(&flagMinAmplitude, "min-event-amplitude", 0.5, "minimum spike amplitude")
	eventsCmd.Flags().Float64Var(&flagMinWidth, "min-event-width", 1.0, "minimum spike width in seconds")
	eventsCmd.Flags().Float64Var(&flagMinProb, "min-event-probability", 0.5, "minimum spike probability")
	rootCmd.AddCommand(eventsCmd)
}
