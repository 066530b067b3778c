// Package noise implements the windowed noise metric for lamp-stability
// data: fixed-duration window extraction, the convex-hull peak-deviation
// noise value, quota-driven accumulation across stitched files, and
// high-noise interval selection.
package noise

import (
	"github.com/photonworks/lampnoise/internal/catalog"
)

// Window is a contiguous, time-ordered slice of one file's channel samples
// spanning roughly the target duration. Samples keep file-local times.
type Window struct {
	Channel   catalog.Channel
	FileIndex int
	StartTime float64
	EndTime   float64
	Samples   []catalog.Sample
}

// NoiseSample is one window's noise value. WindowStart/WindowEnd are on the
// global stitched time axis, so samples from consecutive files line up.
type NoiseSample struct {
	Channel     catalog.Channel
	FileIndex   int
	WindowStart float64
	WindowEnd   float64
	Value       float64
}

// Interval is a NoiseSample promoted by the selector, with padding applied
// for detail views. Padded bounds are clamped to the owning file's span on
// the global axis.
type Interval struct {
	Channel     catalog.Channel `json:"channel"`
	FileIndex   int             `json:"file_index"`
	FileName    string          `json:"file_name"`
	NoiseValue  float64         `json:"noise_value"`
	WindowStart float64         `json:"window_start_s"`
	WindowEnd   float64         `json:"window_end_s"`
	PaddedStart float64         `json:"padded_start_s"`
	PaddedEnd   float64         `json:"padded_end_s"`
}

// SeriesStats summarizes one channel's collected noise series.
type SeriesStats struct {
	Channel string  `json:"channel"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
}

// Config holds the analysis parameters for windowing, accumulation and
// interval selection.
type Config struct {
	// WindowSeconds is the target window duration, measured on the time
	// column so irregular sampling rates still produce ~30s windows.
	WindowSeconds float64

	// Quota is the number of noise samples to collect per channel before
	// ingestion stops consuming further files.
	Quota int

	// PaddingSeconds extends selected intervals symmetrically for
	// detail views.
	PaddingSeconds float64

	// ComplianceSpanSeconds restricts interval candidates to windows
	// starting inside the standard compliance span (the first hour of
	// the stitched axis). Zero disables the restriction.
	ComplianceSpanSeconds float64
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		WindowSeconds:         30.0,
		Quota:                 120,
		PaddingSeconds:        10.0,
		ComplianceSpanSeconds: 3600.0,
	}
}
