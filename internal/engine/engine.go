// Package engine ties the analysis pipeline together: catalog discovery,
// quota-driven noise accumulation, high-noise interval selection and the
// optional denoise + spike-detection pass. It is the in-process surface
// consumed by the CLI shell and the external control panel; it exposes
// pure data and never renders anything itself.
package engine

import (
	"context"
	"fmt"

	"github.com/photonworks/lampnoise/internal/catalog"
	"github.com/photonworks/lampnoise/internal/denoise"
	"github.com/photonworks/lampnoise/internal/events"
	"github.com/photonworks/lampnoise/internal/noise"
)

// Analysis modes.
const (
	ModeStandard          = "standard"
	ModeCompleteDataset   = "complete_dataset"
	ModeHighNoiseInterval = "high_noise_intervals"
)

// ConfigError is fatal: the request itself is invalid and no analysis ran.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Request is one analysis invocation from the control surface. Interval
// selection runs in exactly one of two modes: top-N (NIntervals > 0) or
// threshold (NoiseThreshold set); requesting both is a ConfigError.
type Request struct {
	FilePath string `json:"file_path"`
	Mode     string `json:"mode"`

	NIntervals         int      `json:"n_intervals,omitempty"`
	NoiseThreshold     *float64 `json:"noise_threshold,omitempty"`
	MaxIntervalsToPlot int      `json:"max_intervals_to_plot,omitempty"`

	Noise   noise.Config    `json:"-"`
	Denoise *denoise.Config `json:"denoise_config,omitempty"`
	Events  events.Config   `json:"-"`
}

// ChannelResult bundles everything produced for one channel.
type ChannelResult struct {
	Noise noise.SeriesStats `json:"noise"`

	// Populated only when the request carried a denoise config.
	Denoised *denoise.Result      `json:"-"`
	Events   []events.Event       `json:"events,omitempty"`
	Stats    *events.ChannelStats `json:"event_stats,omitempty"`
	Trends   *events.TrendSummary `json:"trends,omitempty"`
}

// Result is the full outcome of a run. Partial results are always
/// preferred over failure: short series and skipped files are reported,
// never fatal.
type Result struct {
	Channels map[catalog.Channel]*ChannelResult `json:"-"`

	// Intervals holds every selected high-noise interval;
	// PlotIntervals is the capped slice for detailed rendering.
	Intervals     []noise.Interval `json:"intervals,omitempty"`
	PlotIntervals []noise.Interval `json:"plot_intervals,omitempty"`

	// Raw stitched series for the complete-dataset view.
	RawTime   []float64                     `json:"-"`
	RawSeries map[catalog.Channel][]float64 `json:"-"`

	// UnderQuota marks that ingestion ran out of files before both
	// channels reached the quota.
	UnderQuota   bool     `json:"under_quota"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
	FilesUsed    int      `json:"files_used"`
}

// Validate checks the request without running anything.
func (r *Request) Validate() error {
	switch r.Mode {
	case "", ModeStandard, ModeCompleteDataset, ModeHighNoiseInterval:
	default:
		return &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", r.Mode)}
	}
	if r.FilePath == "" {
		return &ConfigError{Field: "file_path", Reason: "seed file is required"}
	}
	if r.NIntervals < 0 {
		return &ConfigError{Field: "n_intervals", Reason: "must not be negative"}
	}
	if r.NoiseThreshold != nil && *r.NoiseThreshold < 0 {
		return &ConfigError{Field: "noise_threshold", Reason: "must not be negative"}
	}
	if r.NIntervals > 0 && r.NoiseThreshold != nil {
		return &ConfigError{Field: "n_intervals", Reason: "top-N and threshold selection are mutually exclusive"}
	}
	if r.MaxIntervalsToPlot < 0 {
		return &ConfigError{Field: "max_intervals_to_plot", Reason: "must not be negative"}
	}
	return nil
}

// Run executes one analysis. Fatal errors (bad request, unparsable seed
// filename) abort the run; everything else degrades to a partial result.
func Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Noise == (noise.Config{}) {
		req.Noise = noise.DefaultConfig()
	}

	files, err := catalog.Discover(req.FilePath)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Total files to process: %d\n", len(files))

	state := noise.Accumulate(files, req.Noise)

	result := &Result{
		Channels:     map[catalog.Channel]*ChannelResult{},
		RawTime:      state.RawTime,
		RawSeries:    state.RawSeries,
		UnderQuota:   state.UnderQuota(),
		SkippedFiles: state.SkippedFiles,
		FilesUsed:    len(state.Files),
	}
	for _, c := range catalog.Channels {
		result.Channels[c] = &ChannelResult{Noise: state.Stats(c)}
	}
	if result.UnderQuota {
		fmt.Printf("⚠️  Collection stopped under quota (%d per channel); results are partial\n", req.Noise.Quota)
	}

	if req.Mode == ModeHighNoiseInterval {
		selectIntervals(state, &req, result)
	}

	if req.Denoise != nil {
		analyzeChannels(ctx, state, &req, result)
	}

	return result, nil
}

func selectIntervals(state *noise.AccumulatorState, req *Request, result *Result) {
	switch {
	case req.NoiseThreshold != nil:
		result.Intervals = noise.SelectThreshold(state, *req.NoiseThreshold, req.Noise)
	case req.NIntervals > 0:
		result.Intervals = noise.SelectTopN(state, req.NIntervals, req.Noise)
	default:
		// Neither knob set: top 5 is the operator-facing default.
		result.Intervals = noise.SelectTopN(state, 5, req.Noise)
	}

	maxPlot := req.MaxIntervalsToPlot
	if maxPlot == 0 {
		maxPlot = 8
	}
	result.PlotIntervals = noise.CapForPlot(result.Intervals, maxPlot)
}

// analyzeChannels runs the denoise + spike-detection pass over the full
// stitched series of each channel. The trainable path is CPU-bound and
// honors ctx between epochs; cancellation degrades to the fallback
// transform inside denoise.Denoise.
func analyzeChannels(ctx context.Context, state *noise.AccumulatorState, req *Request, result *Result) {
	if req.Events == (events.Config{}) {
		req.Events = events.DefaultConfig()
	}
	for _, c := range catalog.Channels {
		values := state.RawSeries[c]
		if len(values) == 0 {
			continue
		}
		fmt.Printf("Denoising %s channel (%d samples)...\n", c, len(values))

		res := denoise.Denoise(ctx, c, state.RawTime, values, *req.Denoise)
		evs := events.Detect(res, req.Events)
		stats := events.Summarize(evs, res.Time)
		trends := events.SummarizeTrends(res.Time, res.Processed)

		cr := result.Channels[c]
		cr.Denoised = &res
		cr.Events = evs
		cr.Stats = &stats
		cr.Trends = &trends
	}
}
