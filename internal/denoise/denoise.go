// Package denoise maps an original channel series to a (processed,
// residual) pair. Two variants sit behind one interface: a trainable
// Fourier-feature model and a deterministic smoothing fallback. The
// trainable path fails closed: any training problem degrades to the
// fallback transform instead of surfacing an error.
package denoise

import (
	"context"
	"fmt"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// ModelKind selects the trainable backbone.
type ModelKind string

const (
	// ModelFourier fits a Fourier-feature linear model to the series.
	ModelFourier ModelKind = "fourier"
)

// Config carries the denoising knobs. Zero values mean "use the default".
type Config struct {
	// UseModel enables the trainable path; when false the fallback
	// smoother runs directly.
	UseModel bool      `json:"use_model"`
	Kind     ModelKind `json:"model_kind"`

	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	NFreq        int     `json:"n_freq"`

	// HiddenSize is reserved for backbones with a hidden layer; the
	// Fourier linear model ignores it.
	HiddenSize int `json:"hidden_size"`

	// Early stopping: training halts once the best loss fails to improve
	// by MinDelta for Patience consecutive epochs.
	Patience int     `json:"patience"`
	MinDelta float64 `json:"min_delta"`

	// SmoothWindow is the fallback's centered median kernel, in samples.
	SmoothWindow int `json:"smooth_window"`
}

// DefaultConfig returns the production training parameters.
func DefaultConfig() Config {
	return Config{
		UseModel:     false,
		Kind:         ModelFourier,
		Epochs:       4000,
		LearningRate: 1e-4,
		NFreq:        256,
		HiddenSize:   32,
		Patience:     80,
		MinDelta:     1e-4,
		SmoothWindow: 51,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Kind == "" {
		c.Kind = def.Kind
	}
	if c.Epochs <= 0 {
		c.Epochs = def.Epochs
	}
	if c.LearningRate <= 0 {
		c.LearningRate = def.LearningRate
	}
	if c.NFreq <= 0 {
		c.NFreq = def.NFreq
	}
	if c.Patience <= 0 {
		c.Patience = def.Patience
	}
	if c.MinDelta <= 0 {
		c.MinDelta = def.MinDelta
	}
	if c.SmoothWindow <= 0 {
		c.SmoothWindow = def.SmoothWindow
	}
	return c
}

// Result holds the time-aligned decomposition of one channel series.
// Residual[i] = Original[i] - Processed[i] for every sample.
type Result struct {
	Channel   catalog.Channel
	Time      []float64
	Original  []float64
	Processed []float64
	Residual  []float64

	// UsedFallback is set when the trainable path was requested but the
	// fallback transform produced the result (training failure or
	// cancellation).
	UsedFallback bool

	// EpochsRun counts completed training epochs (0 for the fallback).
	EpochsRun int
	FinalLoss float64
}

// Denoise decomposes the series according to cfg. The context is checked
// between training epochs; cancellation degrades to the fallback transform
// rather than leaving partial state. The fallback is total for any
// non-empty series, so Denoise never fails on real data.
func Denoise(ctx context.Context, channel catalog.Channel, times, values []float64, cfg Config) Result {
	cfg = cfg.withDefaults()

	if cfg.UseModel {
		res, err := fitModel(ctx, channel, times, values, cfg)
		if err == nil {
			return res
		}
		fmt.Printf("  ⚠️  %s: model training failed (%v), using fallback smoother\n", channel, err)
		res = fallback(channel, times, values, cfg)
		res.UsedFallback = true
		return res
	}

	return fallback(channel, times, values, cfg)
}
