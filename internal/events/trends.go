package events

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrendSummary describes the slow behavior of a processed channel signal,
// for the channel-level report alongside spike statistics.
type TrendSummary struct {
	StartIntensity  float64 `json:"start_intensity"`
	EndIntensity    float64 `json:"end_intensity"`
	DeltaIntensity  float64 `json:"delta_intensity"`
	MeanIntensity   float64 `json:"mean_intensity"`
	SignalStd       float64 `json:"signal_std"`
	SignalRange     float64 `json:"signal_range"`
	SteepSegments   int     `json:"steep_segments"`
	Discontinuities int     `json:"discontinuities"`
}

// SummarizeTrends computes trend metrics over a processed signal. The
// start intensity averages the first 30 seconds so a single noisy first
// sample cannot skew it.
func SummarizeTrends(times, signal []float64) TrendSummary {
	n := len(signal)
	if n == 0 || len(times) != n {
		return TrendSummary{}
	}

	// Early window mean (first 30 s)
	earlyEnd := 1
	for earlyEnd < n && times[earlyEnd]-times[0] <= 30.0 {
		earlyEnd++
	}
	start := stat.Mean(signal[:earlyEnd], nil)
	end := signal[n-1]

	summary := TrendSummary{
		StartIntensity: start,
		EndIntensity:   end,
		DeltaIntensity: end - start,
		MeanIntensity:  stat.Mean(signal, nil),
		SignalRange:    floats.Max(signal) - floats.Min(signal),
	}
	if n > 1 {
		summary.SignalStd = stat.StdDev(signal, nil)
	}
	if n < 2 {
		return summary
	}

	// Steep segments: local slope beyond 3x its own spread.
	slopes := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dt := times[i] - times[i-1]
		slopes[i-1] = (signal[i] - signal[i-1]) / (dt + 1e-9)
	}
	slopeStd := stat.StdDev(slopes, nil) + 1e-9
	for _, s := range slopes {
		if math.Abs(s) > 3.0*slopeStd {
			summary.SteepSegments++
		}
	}

	// Discontinuities: jumps above the 99th percentile of step sizes.
	jumps := make([]float64, n-1)
	for i := 1; i < n; i++ {
		jumps[i-1] = math.Abs(signal[i] - signal[i-1])
	}
	sorted := make([]float64, len(jumps))
	copy(sorted, jumps)
	sort.Float64s(sorted)
	threshold := stat.Quantile(0.99, stat.Empirical, sorted, nil)
	if threshold > 0 {
		for _, j := range jumps {
			if j > threshold {
				summary.Discontinuities++
			}
		}
	}

	return summary
}
