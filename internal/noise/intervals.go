package noise

import (
	"math"
	"sort"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// SelectTopN returns, per channel, the n noise samples with the largest
// values, promoted to padded intervals. Within a channel the result is
// ordered by descending value, ties broken by earliest window start.
// Asking for more intervals than exist returns all available.
func SelectTopN(state *AccumulatorState, n int, cfg Config) []Interval {
	if n <= 0 {
		return nil
	}

	var out []Interval
	for _, c := range catalog.Channels {
		candidates := complianceCandidates(state.Series[c], cfg)
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Value != candidates[j].Value {
				return candidates[i].Value > candidates[j].Value
			}
			return candidates[i].WindowStart < candidates[j].WindowStart
		})
		if len(candidates) > n {
			candidates = candidates[:n]
		}
		for _, ns := range candidates {
			out = append(out, promote(ns, state, cfg))
		}
	}
	return out
}

// SelectThreshold returns every noise sample with value strictly above t,
// across both channels, ordered by window start.
func SelectThreshold(state *AccumulatorState, t float64, cfg Config) []Interval {
	var selected []NoiseSample
	for _, c := range catalog.Channels {
		for _, ns := range complianceCandidates(state.Series[c], cfg) {
			if ns.Value > t {
				selected = append(selected, ns)
			}
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].WindowStart < selected[j].WindowStart
	})

	out := make([]Interval, len(selected))
	for i, ns := range selected {
		out[i] = promote(ns, state, cfg)
	}
	return out
}

// CapForPlot limits how many intervals are exposed for detailed rendering.
// The full slice stays in the summary report; only the detail view is
// truncated.
func CapForPlot(intervals []Interval, maxIntervals int) []Interval {
	if maxIntervals <= 0 || len(intervals) <= maxIntervals {
		return intervals
	}
	return intervals[:maxIntervals]
}

// complianceCandidates restricts selection to windows starting inside the
// standard compliance span when one is configured.
func complianceCandidates(series []NoiseSample, cfg Config) []NoiseSample {
	if cfg.ComplianceSpanSeconds <= 0 {
		out := make([]NoiseSample, len(series))
		copy(out, series)
		return out
	}
	var out []NoiseSample
	for _, ns := range series {
		if ns.WindowStart >= 0 && ns.WindowStart <= cfg.ComplianceSpanSeconds {
			out = append(out, ns)
		}
	}
	return out
}

// promote builds the padded interval, clamping the padded bounds to the
// owning file's span on the global axis so detail views never reach past
// the recorded data.
func promote(ns NoiseSample, state *AccumulatorState, cfg Config) Interval {
	iv := Interval{
		Channel:     ns.Channel,
		FileIndex:   ns.FileIndex,
		NoiseValue:  ns.Value,
		WindowStart: ns.WindowStart,
		WindowEnd:   ns.WindowEnd,
		PaddedStart: ns.WindowStart - cfg.PaddingSeconds,
		PaddedEnd:   ns.WindowEnd + cfg.PaddingSeconds,
	}
	if span, ok := state.FileSpanFor(ns.FileIndex); ok {
		iv.FileName = span.Name
		iv.PaddedStart = math.Max(iv.PaddedStart, span.Start)
		iv.PaddedEnd = math.Min(iv.PaddedEnd, span.End)
	} else {
		iv.PaddedStart = math.Max(iv.PaddedStart, 0)
	}
	return iv
}
